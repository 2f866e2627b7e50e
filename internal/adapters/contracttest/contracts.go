package contracttest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
	bookingsinkport "github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/bookingsink"
	idempotencyport "github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/idempotency"
	itemrepoport "github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/itemrepo"
	planrepoport "github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/planrepo"
)

type CleanupFunc = func()

type PlanRepoFactory func(t *testing.T) (planrepoport.Repository, CleanupFunc)
type ItemRepoFactory func(t *testing.T) (itemrepoport.Repository, CleanupFunc)
type IdemStoreFactory func(t *testing.T) (idempotencyport.Store, CleanupFunc)
type BookingSinkFactory func(t *testing.T) (bookingsinkport.Sink, CleanupFunc)

func RunIdempotencyStore(t *testing.T, newStore IdemStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	fp := idempotencyport.Fingerprint{
		Key:      "k-1",
		PlanID:   domain.PlanID(uuid.NewString()),
		Kind:   "hotel",
		Target: "range-1",
	}
	if _, ok, err := store.Get(ctx, fp); err != nil || ok {
		t.Fatalf("Get before Put ok=%v err=%v", ok, err)
	}

	rec := idempotencyport.Record{
		BodyHash:  "hash-abc",
		BookingID: "booking-1",
		CreatedAt: time.Unix(123, 0).UTC(),
	}
	if err := store.Put(ctx, fp, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, fp)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if got.BookingID != "booking-1" || got.BodyHash != "hash-abc" || !got.CreatedAt.Equal(rec.CreatedAt) {
		t.Fatalf("unexpected record: %+v", got)
	}

	// Another selection under the same key is a different submission.
	other := fp
	other.Target = "range-2"
	if _, ok, err := store.Get(ctx, other); err != nil || ok {
		t.Fatalf("Get(other target) ok=%v err=%v", ok, err)
	}

	// Overwrite semantics.
	rec2 := rec
	rec2.BodyHash = "hash-other"
	rec2.BookingID = "booking-2"
	if err := store.Put(ctx, fp, rec2); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, ok, err = store.Get(ctx, fp)
	if err != nil || !ok || got.BookingID != "booking-2" || got.BodyHash != "hash-other" {
		t.Fatalf("expected overwritten record, got ok=%v err=%v rec=%+v", ok, err, got)
	}
}

func RunBookingSink(t *testing.T, newSink BookingSinkFactory) {
	t.Helper()
	ctx := context.Background()

	sink, cleanup := newSink(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	ref := domain.CatalogRef(uuid.NewString())
	req := bookingsinkport.Request{
		Kind:           bookingsinkport.KindHotel,
		PlanID:         domain.PlanID(uuid.NewString()),
		Key:            uuid.NewString(),
		CatalogRef:     &ref,
		Title:          "Sea View",
		StartDate:      time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC),
		Nights:         2,
		Party:          domain.Party{Adults: 2},
		EstimatedTotal: 200,
		Currency:       "EUR",
		Customer: bookingsinkport.Customer{
			Name:  "Maria Georgiou",
			Email: "maria@example.com",
			Phone: "+35799123456",
		},
	}
	a, err := sink.Submit(ctx, req)
	if err != nil {
		t.Fatalf("Submit a: %v", err)
	}
	req.Kind = bookingsinkport.KindCar
	req.CatalogRef = nil
	req.Customer.Country = "CY"
	b, err := sink.Submit(ctx, req)
	if err != nil {
		t.Fatalf("Submit b: %v", err)
	}
	if a == "" || b == "" || a == b {
		t.Fatalf("expected distinct booking ids, got %q and %q", a, b)
	}
}

func RunItineraryRepos(t *testing.T, newPlanRepo PlanRepoFactory, newItemRepo ItemRepoFactory) {
	t.Helper()
	ctx := context.Background()

	plans, cleanup := newPlanRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}
	items, cleanup2 := newItemRepo(t)
	if cleanup2 != nil {
		t.Cleanup(cleanup2)
	}

	now := time.Unix(1000, 0).UTC()
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 2)
	planID := domain.PlanID(uuid.NewString())
	plan := domain.Plan{
		ID:        planID,
		Title:     "Cyprus loop",
		StartDate: &start,
		EndDate:   &end,
		BaseCity:  "Paphos",
		Currency:  "EUR",
		Party:     domain.Party{Adults: 2, Children: 1},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := plans.Create(ctx, plan); err != nil {
		t.Fatalf("Create plan: %v", err)
	}
	if err := plans.Create(ctx, plan); !errors.Is(err, planrepoport.ErrAlreadyExists) {
		t.Fatalf("Create duplicate err=%v, want ErrAlreadyExists", err)
	}
	got, err := plans.GetByID(ctx, planID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != "Cyprus loop" || got.Party.Total() != 3 || got.StartDate == nil || !got.StartDate.Equal(start) {
		t.Fatalf("unexpected plan: %+v", got)
	}

	plan.Title = "Cyprus loop (final)"
	plan.AllowCrossBorder = true
	if err := plans.Save(ctx, plan); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got, _ := plans.GetByID(ctx, planID); got.Title != "Cyprus loop (final)" || !got.AllowCrossBorder {
		t.Fatalf("Save not persisted: %+v", got)
	}
	missing := plan
	missing.ID = domain.PlanID(uuid.NewString())
	if err := plans.Save(ctx, missing); !errors.Is(err, planrepoport.ErrNotFound) {
		t.Fatalf("Save missing err=%v, want ErrNotFound", err)
	}

	// Days come back in index order regardless of insert order.
	dayIDs := []domain.DayID{
		domain.DayID(uuid.NewString()),
		domain.DayID(uuid.NewString()),
		domain.DayID(uuid.NewString()),
	}
	days := make([]domain.PlanDay, 0, 3)
	for i := 2; i >= 0; i-- {
		date := start.AddDate(0, 0, i)
		days = append(days, domain.PlanDay{ID: dayIDs[i], PlanID: planID, DayIndex: i + 1, Date: &date, CreatedAt: now})
	}
	if err := plans.ReplaceDays(ctx, planID, days); err != nil {
		t.Fatalf("ReplaceDays: %v", err)
	}
	listed, err := plans.ListDays(ctx, planID)
	if err != nil {
		t.Fatalf("ListDays: %v", err)
	}
	if len(listed) != 3 || listed[0].ID != dayIDs[0] || listed[2].DayIndex != 3 {
		t.Fatalf("unexpected days: %+v", listed)
	}

	city := "Limassol"
	day2 := listed[1]
	day2.City = &city
	day2.Notes = "market morning"
	if err := plans.UpdateDay(ctx, day2); err != nil {
		t.Fatalf("UpdateDay: %v", err)
	}
	d, err := plans.GetDay(ctx, dayIDs[1])
	if err != nil {
		t.Fatalf("GetDay: %v", err)
	}
	if d.City == nil || *d.City != "Limassol" || d.Notes != "market morning" {
		t.Fatalf("UpdateDay not persisted: %+v", d)
	}
	if _, err := plans.GetDay(ctx, domain.DayID(uuid.NewString())); !errors.Is(err, planrepoport.ErrDayNotFound) {
		t.Fatalf("GetDay missing err=%v, want ErrDayNotFound", err)
	}

	// Items list by sort order.
	note := domain.PlanItem{
		ID:        domain.ItemID(uuid.NewString()),
		DayID:     dayIDs[0],
		Type:      domain.ItemTypeNote,
		Details:   domain.NoteDetails{Text: "pack sunscreen"},
		SortOrder: 20,
		CreatedAt: now,
	}
	ref := domain.CatalogRef(uuid.NewString())
	poi := domain.PlanItem{
		ID:         domain.ItemID(uuid.NewString()),
		DayID:      dayIDs[0],
		Type:       domain.ItemTypePOI,
		CatalogRef: &ref,
		Snapshot:   domain.Snapshot{Title: "Tombs of the Kings"},
		Details:    domain.POIDetails{StartTime: "09:00", EndTime: "11:00"},
		SortOrder:  10,
		CreatedAt:  now,
	}
	for _, it := range []domain.PlanItem{note, poi} {
		if err := items.Insert(ctx, it); err != nil {
			t.Fatalf("Insert %s: %v", it.Type, err)
		}
	}
	if err := items.Insert(ctx, note); !errors.Is(err, itemrepoport.ErrAlreadyExists) {
		t.Fatalf("Insert duplicate err=%v, want ErrAlreadyExists", err)
	}
	onDay, err := items.ListByDays(ctx, []domain.DayID{dayIDs[0]})
	if err != nil {
		t.Fatalf("ListByDays: %v", err)
	}
	if len(onDay) != 2 || onDay[0].ID != poi.ID || onDay[1].ID != note.ID {
		t.Fatalf("unexpected order: %+v", onDay)
	}
	gotPOI, err := items.GetByID(ctx, poi.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if gotPOI.CatalogRef == nil || *gotPOI.CatalogRef != ref || gotPOI.Snapshot.Title != "Tombs of the Kings" {
		t.Fatalf("unexpected item: %+v", gotPOI)
	}
	if det, ok := gotPOI.Details.(domain.POIDetails); !ok || det.StartTime != "09:00" {
		t.Fatalf("unexpected details: %#v", gotPOI.Details)
	}

	// UpdateData keeps type and position.
	poi.Snapshot.Title = "Tombs of the Kings (guided)"
	if err := items.UpdateData(ctx, poi); err != nil {
		t.Fatalf("UpdateData: %v", err)
	}
	if it, _ := items.GetByID(ctx, poi.ID); it.Snapshot.Title != "Tombs of the Kings (guided)" || it.SortOrder != 10 {
		t.Fatalf("UpdateData not persisted: %+v", it)
	}

	// A range materialises one row per covered day.
	rangeID := domain.RangeID(uuid.NewString())
	meta := domain.RangeMeta{
		RangeID:       rangeID,
		StartDayID:    dayIDs[0],
		StartDayIndex: 1,
		EndDayID:      dayIDs[1],
		EndDayIndex:   2,
	}
	rows := []domain.PlanItem{
		{ID: domain.ItemID(uuid.NewString()), DayID: dayIDs[0], Type: domain.ItemTypeHotel, Details: domain.HotelDetails{Range: meta}, SortOrder: 1_000_000, CreatedAt: now},
		{ID: domain.ItemID(uuid.NewString()), DayID: dayIDs[1], Type: domain.ItemTypeHotel, Details: domain.HotelDetails{Range: meta}, SortOrder: 1_000_000, CreatedAt: now},
	}
	if err := items.InsertRange(ctx, itemrepoport.Range{ID: rangeID, PlanID: planID, Type: domain.ItemTypeHotel, Meta: meta}, rows); err != nil {
		t.Fatalf("InsertRange: %v", err)
	}
	inRange, err := items.ListByRange(ctx, rangeID)
	if err != nil {
		t.Fatalf("ListByRange: %v", err)
	}
	if len(inRange) != 2 {
		t.Fatalf("ListByRange len=%d, want 2", len(inRange))
	}
	if rm, ok := inRange[0].Range(); !ok || rm.RangeID != rangeID || rm.Span() != 2 {
		t.Fatalf("unexpected range meta: %+v", rm)
	}

	// Positions move items between days.
	if err := items.UpdatePositions(ctx, []itemrepoport.Position{{ItemID: note.ID, DayID: dayIDs[2], SortOrder: 0}}); err != nil {
		t.Fatalf("UpdatePositions: %v", err)
	}
	if it, _ := items.GetByID(ctx, note.ID); it.DayID != dayIDs[2] || it.SortOrder != 0 {
		t.Fatalf("UpdatePositions not persisted: %+v", it)
	}
	err = items.UpdatePositions(ctx, []itemrepoport.Position{
		{ItemID: poi.ID, DayID: dayIDs[1], SortOrder: 5},
		{ItemID: domain.ItemID(uuid.NewString()), DayID: dayIDs[1], SortOrder: 6},
	})
	if !errors.Is(err, itemrepoport.ErrNotFound) {
		t.Fatalf("UpdatePositions missing err=%v, want ErrNotFound", err)
	}
	if it, _ := items.GetByID(ctx, poi.ID); it.DayID != dayIDs[0] {
		t.Fatalf("failed UpdatePositions must not apply partially: %+v", it)
	}

	n, err := items.DeleteByRange(ctx, rangeID)
	if err != nil || n != 2 {
		t.Fatalf("DeleteByRange n=%d err=%v, want 2", n, err)
	}
	if n, err := items.DeleteByRange(ctx, rangeID); err != nil || n != 0 {
		t.Fatalf("DeleteByRange again n=%d err=%v, want 0", n, err)
	}

	if err := items.Delete(ctx, poi.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := items.Delete(ctx, poi.ID); !errors.Is(err, itemrepoport.ErrNotFound) {
		t.Fatalf("Delete again err=%v, want ErrNotFound", err)
	}
	if _, err := items.GetByID(ctx, poi.ID); !errors.Is(err, itemrepoport.ErrNotFound) {
		t.Fatalf("GetByID deleted err=%v, want ErrNotFound", err)
	}

	if err := items.DeleteByDays(ctx, dayIDs); err != nil {
		t.Fatalf("DeleteByDays: %v", err)
	}
	if left, _ := items.ListByDays(ctx, dayIDs); len(left) != 0 {
		t.Fatalf("DeleteByDays left %d items", len(left))
	}

	if err := plans.Delete(ctx, planID); err != nil {
		t.Fatalf("Delete plan: %v", err)
	}
	if _, err := plans.GetByID(ctx, planID); !errors.Is(err, planrepoport.ErrNotFound) {
		t.Fatalf("GetByID deleted err=%v, want ErrNotFound", err)
	}
	if left, _ := plans.ListDays(ctx, planID); len(left) != 0 {
		t.Fatalf("days survived plan delete: %d", len(left))
	}
	if err := plans.Delete(ctx, planID); !errors.Is(err, planrepoport.ErrNotFound) {
		t.Fatalf("Delete again err=%v, want ErrNotFound", err)
	}
}
