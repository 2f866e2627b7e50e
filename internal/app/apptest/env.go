// Package apptest wires the application services over in-memory adapters for tests.
package apptest

import (
	"context"
	"fmt"
	"testing"
	"time"

	memcatalog "github.com/Overland-East-Bay/itinerary-planner-api/internal/adapters/memory/catalog"
	memclock "github.com/Overland-East-Bay/itinerary-planner-api/internal/adapters/memory/clock"
	memitemrepo "github.com/Overland-East-Bay/itinerary-planner-api/internal/adapters/memory/itemrepo"
	mempartyoverride "github.com/Overland-East-Bay/itinerary-planner-api/internal/adapters/memory/partyoverride"
	memplanrepo "github.com/Overland-East-Bay/itinerary-planner-api/internal/adapters/memory/planrepo"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/itinerary"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/itemrepo"
)

// Epoch is the manual clock's starting time.
var Epoch = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

type Env struct {
	Plans     *memplanrepo.Repo
	Items     *memitemrepo.Repo
	Overrides *mempartyoverride.Store
	Catalog   *memcatalog.Catalog
	Clock     *memclock.ManualClock
	Itinerary *itinerary.Service
}

// NewEnv returns services over empty in-memory adapters with sequential ids
// ("plan-1", "day-1", "item-1", ...).
func NewEnv(t *testing.T) *Env {
	t.Helper()
	e := &Env{
		Plans:     memplanrepo.NewRepo(),
		Items:     memitemrepo.NewRepo(),
		Overrides: mempartyoverride.NewStore(),
		Catalog:   memcatalog.NewCatalog(),
		Clock:     memclock.NewManualClock(Epoch),
	}
	e.Itinerary = itinerary.NewService(e.Plans, e.Items, e.Overrides, e.Clock)

	var planN, dayN, itemN int
	e.Itinerary.SetNewIDsForTest(
		func() domain.PlanID { planN++; return domain.PlanID(fmt.Sprintf("plan-%d", planN)) },
		func() domain.DayID { dayN++; return domain.DayID(fmt.Sprintf("day-%d", dayN)) },
		func() domain.ItemID { itemN++; return domain.ItemID(fmt.Sprintf("item-%d", itemN)) },
	)
	return e
}

// SeedPlan creates a plan starting on start with the given number of generated days.
func (e *Env) SeedPlan(t *testing.T, start time.Time, days int, party domain.Party) (domain.Plan, []domain.PlanDay) {
	t.Helper()
	end := start.AddDate(0, 0, days-1)
	p, err := e.Itinerary.CreatePlan(context.Background(), itinerary.CreatePlanInput{
		Title:     "Cyprus loop",
		StartDate: &start,
		EndDate:   &end,
		BaseCity:  "Paphos",
		Party:     party,
	})
	if err != nil {
		t.Fatalf("CreatePlan() err=%v", err)
	}
	ds, err := e.Itinerary.GenerateDays(context.Background(), p.ID, false)
	if err != nil {
		t.Fatalf("GenerateDays() err=%v", err)
	}
	return p, ds
}

// AddItem adds a titled item of type t to a day.
func (e *Env) AddItem(t *testing.T, dayID domain.DayID, typ domain.ItemType, title string) domain.PlanItem {
	t.Helper()
	var details domain.ItemDetails
	if typ == domain.ItemTypeNote {
		details = domain.NoteDetails{Text: title}
	}
	it, err := e.Itinerary.AddItem(context.Background(), itinerary.AddItemInput{
		DayID:    dayID,
		Type:     typ,
		Snapshot: domain.Snapshot{Title: title},
		Details:  details,
	})
	if err != nil {
		t.Fatalf("AddItem(%s) err=%v", title, err)
	}
	return it
}

// SeedRange writes a hotel or car range covering days directly through the item repository.
// Rows are named "<rangeID>-<dayIndex>".
func (e *Env) SeedRange(t *testing.T, planID domain.PlanID, rangeID domain.RangeID, typ domain.ItemType, days []domain.PlanDay, title string) []domain.PlanItem {
	t.Helper()
	first, last := days[0], days[len(days)-1]
	meta := domain.RangeMeta{
		RangeID:       rangeID,
		StartDayID:    first.ID,
		StartDayIndex: first.DayIndex,
		EndDayID:      last.ID,
		EndDayIndex:   last.DayIndex,
	}
	rows := make([]domain.PlanItem, 0, len(days))
	for _, d := range days {
		rows = append(rows, domain.PlanItem{
			ID:        domain.ItemID(fmt.Sprintf("%s-%d", rangeID, d.DayIndex)),
			DayID:     d.ID,
			Type:      typ,
			Snapshot:  domain.Snapshot{Title: title},
			Details:   domain.WithRange(domain.EmptyDetails(typ), meta),
			SortOrder: 1_000_000,
			CreatedAt: e.Clock.Now(),
		})
	}
	err := e.Items.InsertRange(context.Background(), itemrepo.Range{ID: rangeID, PlanID: planID, Type: typ, Meta: meta}, rows)
	if err != nil {
		t.Fatalf("InsertRange(%s) err=%v", rangeID, err)
	}
	return rows
}
