package itinerary_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/apperr"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/apptest"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/itinerary"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
)

var may1 = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

func requireKind(t *testing.T, err error, kind apperr.Kind, code string) {
	t.Helper()
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("err=%v, want *apperr.Error", err)
	}
	if ae.Kind != kind || (code != "" && ae.Code != code) {
		t.Fatalf("kind/code=%s/%s, want %s/%s", ae.Kind, ae.Code, kind, code)
	}
}

func TestService_CreatePlan_NormalizesAndDefaults(t *testing.T) {
	t.Parallel()
	env := apptest.NewEnv(t)

	start := time.Date(2026, 5, 1, 18, 30, 0, 0, time.UTC)
	p, err := env.Itinerary.CreatePlan(context.Background(), itinerary.CreatePlanInput{
		Title:     "  Island   hop ",
		StartDate: &start,
		Currency:  " usd",
	})
	if err != nil {
		t.Fatalf("CreatePlan() err=%v", err)
	}
	if p.ID != "plan-1" || p.Title != "Island hop" || p.Currency != "USD" {
		t.Fatalf("plan=%+v", p)
	}
	if p.Party != (domain.Party{Adults: 1}) {
		t.Fatalf("party=%+v, want one adult", p.Party)
	}
	if !p.StartDate.Equal(may1) {
		t.Fatalf("start=%v, want date-only", p.StartDate)
	}

	p2, err := env.Itinerary.CreatePlan(context.Background(), itinerary.CreatePlanInput{Title: "x"})
	if err != nil {
		t.Fatalf("CreatePlan() err=%v", err)
	}
	if p2.Currency != domain.DefaultCurrency {
		t.Fatalf("currency=%s, want default", p2.Currency)
	}
}

func TestService_CreatePlan_Validation(t *testing.T) {
	t.Parallel()
	env := apptest.NewEnv(t)

	end := may1.AddDate(0, 0, -1)
	cases := map[string]itinerary.CreatePlanInput{
		"blank_title":    {Title: "   "},
		"reversed_dates": {Title: "x", StartDate: &may1, EndDate: &end},
		"negative_party": {Title: "x", Party: domain.Party{Adults: 2, Children: -1}},
		"bad_currency":   {Title: "x", Currency: "EURO"},
	}
	for name, in := range cases {
		_, err := env.Itinerary.CreatePlan(context.Background(), in)
		if !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("%s: err=%v, want validation", name, err)
		}
	}
}

func TestService_GenerateDays_ContiguousAndConfirmed(t *testing.T) {
	t.Parallel()
	env := apptest.NewEnv(t)
	ctx := context.Background()

	p, days := env.SeedPlan(t, may1, 4, domain.Party{Adults: 2})
	if len(days) != 4 {
		t.Fatalf("len(days)=%d, want 4", len(days))
	}
	for i, d := range days {
		if d.DayIndex != i+1 {
			t.Fatalf("days[%d].DayIndex=%d", i, d.DayIndex)
		}
		if d.Date == nil || !d.Date.Equal(may1.AddDate(0, 0, i)) {
			t.Fatalf("days[%d].Date=%v", i, d.Date)
		}
	}
	env.AddItem(t, days[1].ID, domain.ItemTypeNote, "pack snorkel")

	_, err := env.Itinerary.GenerateDays(ctx, p.ID, false)
	requireKind(t, err, apperr.KindValidation, "REGENERATION_NOT_CONFIRMED")

	b, err := env.Itinerary.LoadBoard(ctx, p.ID)
	if err != nil {
		t.Fatalf("LoadBoard() err=%v", err)
	}
	if len(b.Days) != 4 || len(b.ItemsFor(days[1].ID)) != 1 {
		t.Fatalf("unconfirmed regeneration changed the board: %+v", b)
	}

	end := may1.AddDate(0, 0, 1)
	if _, err := env.Itinerary.UpdatePlan(ctx, p.ID, itinerary.UpdatePlanInput{EndDate: itinerary.Some(end)}); err != nil {
		t.Fatalf("UpdatePlan() err=%v", err)
	}
	regenerated, err := env.Itinerary.GenerateDays(ctx, p.ID, true)
	if err != nil {
		t.Fatalf("GenerateDays(confirm) err=%v", err)
	}
	if len(regenerated) != 2 || regenerated[0].DayIndex != 1 || regenerated[1].DayIndex != 2 {
		t.Fatalf("regenerated=%+v", regenerated)
	}
	if _, err := env.Items.GetByID(ctx, "item-1"); err == nil {
		t.Fatalf("items of replaced days must be deleted")
	}
}

func TestService_GenerateDays_RequiresDates(t *testing.T) {
	t.Parallel()
	env := apptest.NewEnv(t)

	p, err := env.Itinerary.CreatePlan(context.Background(), itinerary.CreatePlanInput{Title: "open ended", StartDate: &may1})
	if err != nil {
		t.Fatalf("CreatePlan() err=%v", err)
	}
	_, err = env.Itinerary.GenerateDays(context.Background(), p.ID, false)
	requireKind(t, err, apperr.KindValidation, "PLAN_DATES_REQUIRED")

	_, err = env.Itinerary.GenerateDays(context.Background(), "missing", false)
	requireKind(t, err, apperr.KindNotFound, "PLAN_NOT_FOUND")
}

func TestService_GenerateDays_RejectsHugeSpanUpFront(t *testing.T) {
	t.Parallel()
	env := apptest.NewEnv(t)
	ctx := context.Background()

	start := time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	p, err := env.Itinerary.CreatePlan(ctx, itinerary.CreatePlanInput{Title: "forever", StartDate: &start, EndDate: &end})
	if err != nil {
		t.Fatalf("CreatePlan() err=%v", err)
	}
	_, err = env.Itinerary.GenerateDays(ctx, p.ID, false)
	requireKind(t, err, apperr.KindValidation, "PLAN_TOO_LONG")

	days, err := env.Plans.ListDays(ctx, p.ID)
	if err != nil || len(days) != 0 {
		t.Fatalf("ListDays() len=%d err=%v, want none", len(days), err)
	}
}

func TestService_UpdatePlan_TriState(t *testing.T) {
	t.Parallel()
	env := apptest.NewEnv(t)
	ctx := context.Background()

	p, _ := env.SeedPlan(t, may1, 2, domain.Party{Adults: 2})
	env.Clock.Advance(time.Hour)

	got, err := env.Itinerary.UpdatePlan(ctx, p.ID, itinerary.UpdatePlanInput{
		Title:    itinerary.Some(" Cyprus  west "),
		EndDate:  itinerary.Null[time.Time](),
		BaseCity: itinerary.Null[string](),
		Party:    itinerary.Some(domain.Party{Adults: 2, Children: 2}),
	})
	if err != nil {
		t.Fatalf("UpdatePlan() err=%v", err)
	}
	if got.Title != "Cyprus west" || got.EndDate != nil || got.BaseCity != "" || got.Party.Total() != 4 {
		t.Fatalf("plan=%+v", got)
	}
	if got.StartDate == nil || !got.StartDate.Equal(may1) {
		t.Fatalf("unspecified start date changed: %v", got.StartDate)
	}
	if !got.UpdatedAt.Equal(apptest.Epoch.Add(time.Hour)) {
		t.Fatalf("UpdatedAt=%v", got.UpdatedAt)
	}

	_, err = env.Itinerary.UpdatePlan(ctx, p.ID, itinerary.UpdatePlanInput{Title: itinerary.Null[string]()})
	requireKind(t, err, apperr.KindValidation, "")
	_, err = env.Itinerary.UpdatePlan(ctx, p.ID, itinerary.UpdatePlanInput{Party: itinerary.Some(domain.Party{})})
	requireKind(t, err, apperr.KindValidation, "")
}

func TestService_DeletePlan_Cascades(t *testing.T) {
	t.Parallel()
	env := apptest.NewEnv(t)
	ctx := context.Background()

	p, days := env.SeedPlan(t, may1, 2, domain.Party{Adults: 1})
	it := env.AddItem(t, days[0].ID, domain.ItemTypeTrip, "Boat trip")
	if _, err := env.Itinerary.SetPartyOverride(ctx, p.ID, domain.Party{Adults: 3}); err != nil {
		t.Fatalf("SetPartyOverride() err=%v", err)
	}

	if err := env.Itinerary.DeletePlan(ctx, p.ID); err != nil {
		t.Fatalf("DeletePlan() err=%v", err)
	}
	if _, err := env.Items.GetByID(ctx, it.ID); err == nil {
		t.Fatalf("item survived plan deletion")
	}
	if _, err := env.Plans.GetDay(ctx, days[0].ID); err == nil {
		t.Fatalf("day survived plan deletion")
	}
	if _, ok, _ := env.Overrides.Get(ctx, p.ID); ok {
		t.Fatalf("party override survived plan deletion")
	}
	requireKind(t, env.Itinerary.DeletePlan(ctx, p.ID), apperr.KindNotFound, "PLAN_NOT_FOUND")
}

func TestService_AddItem_SortOrderIncreases(t *testing.T) {
	t.Parallel()
	env := apptest.NewEnv(t)

	_, days := env.SeedPlan(t, may1, 1, domain.Party{Adults: 1})
	a := env.AddItem(t, days[0].ID, domain.ItemTypeTrip, "a")
	b := env.AddItem(t, days[0].ID, domain.ItemTypeTrip, "b")
	env.Clock.Set(apptest.Epoch.Add(-time.Hour)) // clock moving backwards
	c := env.AddItem(t, days[0].ID, domain.ItemTypeTrip, "c")

	if !(a.SortOrder < b.SortOrder && b.SortOrder < c.SortOrder) {
		t.Fatalf("sort orders=%d,%d,%d, want strictly increasing", a.SortOrder, b.SortOrder, c.SortOrder)
	}
	if a.SortOrder != apptest.Epoch.UnixMilli() {
		t.Fatalf("first sort order=%d, want clock millis", a.SortOrder)
	}
}

func TestService_AddItem_CatalogRefHandling(t *testing.T) {
	t.Parallel()
	env := apptest.NewEnv(t)
	ctx := context.Background()
	_, days := env.SeedPlan(t, may1, 1, domain.Party{Adults: 1})

	good, err := env.Itinerary.AddItem(ctx, itinerary.AddItemInput{
		DayID:      days[0].ID,
		Type:       domain.ItemTypePOI,
		CatalogRef: "6F1C2A7E-3B0D-4C55-9A1E-2D4B7C9E0F11",
	})
	if err != nil {
		t.Fatalf("AddItem(uuid) err=%v", err)
	}
	if good.CatalogRef == nil || *good.CatalogRef != "6f1c2a7e-3b0d-4c55-9a1e-2d4b7c9e0f11" {
		t.Fatalf("ref=%v", good.CatalogRef)
	}

	legacy, err := env.Itinerary.AddItem(ctx, itinerary.AddItemInput{
		DayID:      days[0].ID,
		Type:       domain.ItemTypeRecommendation,
		CatalogRef: "legacy-42",
	})
	if err != nil {
		t.Fatalf("AddItem(legacy) err=%v", err)
	}
	if legacy.CatalogRef != nil || legacy.Snapshot.SourceID != "legacy-42" {
		t.Fatalf("legacy item ref=%v source=%q", legacy.CatalogRef, legacy.Snapshot.SourceID)
	}

	_, err = env.Itinerary.AddItem(ctx, itinerary.AddItemInput{DayID: days[0].ID, Type: domain.ItemTypeTrip})
	requireKind(t, err, apperr.KindValidation, "CATALOG_REF_REQUIRED")
}

func TestService_AddItem_Rejections(t *testing.T) {
	t.Parallel()
	env := apptest.NewEnv(t)
	ctx := context.Background()
	_, days := env.SeedPlan(t, may1, 1, domain.Party{Adults: 1})
	snap := domain.Snapshot{Title: "x"}

	_, err := env.Itinerary.AddItem(ctx, itinerary.AddItemInput{DayID: "nope", Type: domain.ItemTypeTrip, Snapshot: snap})
	requireKind(t, err, apperr.KindValidation, "DAY_NOT_FOUND")

	_, err = env.Itinerary.AddItem(ctx, itinerary.AddItemInput{DayID: days[0].ID, Type: "boat", Snapshot: snap})
	requireKind(t, err, apperr.KindValidation, "INVALID_ITEM_TYPE")

	_, err = env.Itinerary.AddItem(ctx, itinerary.AddItemInput{DayID: days[0].ID, Type: domain.ItemTypeTrip, Snapshot: snap, Details: domain.NoteDetails{Text: "x"}})
	requireKind(t, err, apperr.KindValidation, "DETAILS_TYPE_MISMATCH")

	_, err = env.Itinerary.AddItem(ctx, itinerary.AddItemInput{DayID: days[0].ID, Type: domain.ItemTypeNote})
	requireKind(t, err, apperr.KindValidation, "")

	_, err = env.Itinerary.AddItem(ctx, itinerary.AddItemInput{
		DayID: days[0].ID, Type: domain.ItemTypePOI, Snapshot: snap,
		Details: domain.POIDetails{StartTime: "14:00", EndTime: "09:30"},
	})
	requireKind(t, err, apperr.KindValidation, "")

	_, err = env.Itinerary.AddItem(ctx, itinerary.AddItemInput{
		DayID: days[0].ID, Type: domain.ItemTypeHotel, Snapshot: snap,
		Details: domain.HotelDetails{Range: domain.RangeMeta{RangeID: "r1"}},
	})
	requireKind(t, err, apperr.KindValidation, "")
}

func TestService_UpdateDayFields(t *testing.T) {
	t.Parallel()
	env := apptest.NewEnv(t)
	ctx := context.Background()
	p, days := env.SeedPlan(t, may1, 1, domain.Party{Adults: 1})

	d, err := env.Itinerary.UpdateDayFields(ctx, days[0].ID, itinerary.DayPatch{
		City:  itinerary.Some("  Limassol "),
		Notes: itinerary.Some("early start"),
	})
	if err != nil {
		t.Fatalf("UpdateDayFields() err=%v", err)
	}
	if d.EffectiveCity(p) != "Limassol" || d.Notes != "early start" {
		t.Fatalf("day=%+v", d)
	}

	d, err = env.Itinerary.UpdateDayFields(ctx, days[0].ID, itinerary.DayPatch{City: itinerary.Null[string]()})
	if err != nil {
		t.Fatalf("UpdateDayFields() err=%v", err)
	}
	if d.City != nil || d.EffectiveCity(p) != "Paphos" || d.Notes != "early start" {
		t.Fatalf("day=%+v", d)
	}

	_, err = env.Itinerary.UpdateDayFields(ctx, "missing", itinerary.DayPatch{})
	requireKind(t, err, apperr.KindNotFound, "DAY_NOT_FOUND")
}

func TestService_UpdateItemData_KeepsTypeAndSource(t *testing.T) {
	t.Parallel()
	env := apptest.NewEnv(t)
	ctx := context.Background()
	_, days := env.SeedPlan(t, may1, 1, domain.Party{Adults: 1})

	it, err := env.Itinerary.AddItem(ctx, itinerary.AddItemInput{DayID: days[0].ID, Type: domain.ItemTypeTrip, CatalogRef: "legacy-7"})
	if err != nil {
		t.Fatalf("AddItem() err=%v", err)
	}

	got, err := env.Itinerary.UpdateItemData(ctx, it.ID, itinerary.ItemDataPatch{
		Snapshot: itinerary.Some(domain.Snapshot{Title: "Sunset cruise"}),
		Details:  itinerary.Some[domain.ItemDetails](domain.TripDetails{Hours: 3, Notes: "vegan lunch"}),
	})
	if err != nil {
		t.Fatalf("UpdateItemData() err=%v", err)
	}
	if got.Snapshot.Title != "Sunset cruise" || got.Snapshot.SourceID != "legacy-7" || got.Notes() != "vegan lunch" {
		t.Fatalf("item=%+v", got)
	}

	_, err = env.Itinerary.UpdateItemData(ctx, it.ID, itinerary.ItemDataPatch{
		Details: itinerary.Some[domain.ItemDetails](domain.CarDetails{}),
	})
	requireKind(t, err, apperr.KindValidation, "DETAILS_TYPE_MISMATCH")

	_, err = env.Itinerary.UpdateItemData(ctx, "missing", itinerary.ItemDataPatch{})
	requireKind(t, err, apperr.KindNotFound, "ITEM_NOT_FOUND")
}

func TestService_DeleteItem_Idempotent(t *testing.T) {
	t.Parallel()
	env := apptest.NewEnv(t)
	_, days := env.SeedPlan(t, may1, 1, domain.Party{Adults: 1})
	it := env.AddItem(t, days[0].ID, domain.ItemTypeNote, "n")

	for i := 0; i < 2; i++ {
		if err := env.Itinerary.DeleteItem(context.Background(), it.ID); err != nil {
			t.Fatalf("DeleteItem() #%d err=%v", i, err)
		}
	}
}

func TestService_UpdateItemData_RangeRowUpdatesWholeRange(t *testing.T) {
	t.Parallel()
	env := apptest.NewEnv(t)
	ctx := context.Background()
	p, days := env.SeedPlan(t, may1, 3, domain.Party{Adults: 2})
	rows := env.SeedRange(t, p.ID, "stay-1", domain.ItemTypeHotel, days, "Sea View")

	_, err := env.Itinerary.UpdateItemData(ctx, rows[1].ID, itinerary.ItemDataPatch{
		Snapshot: itinerary.Some(domain.Snapshot{Title: "Sea View Deluxe"}),
		Details:  itinerary.Some[domain.ItemDetails](domain.HotelDetails{Notes: "late check-in"}),
	})
	if err != nil {
		t.Fatalf("UpdateItemData() err=%v", err)
	}
	for _, row := range rows {
		got, err := env.Itinerary.GetItem(ctx, row.ID)
		if err != nil {
			t.Fatalf("GetItem(%s) err=%v", row.ID, err)
		}
		rm, ok := got.Range()
		if got.Snapshot.Title != "Sea View Deluxe" || got.Notes() != "late check-in" || !ok || rm.RangeID != "stay-1" || rm.Span() != 3 {
			t.Fatalf("row %s=%+v", row.ID, got)
		}
	}
}

func TestService_DeleteItem_RangeRowDeletesWholeRange(t *testing.T) {
	t.Parallel()
	env := apptest.NewEnv(t)
	ctx := context.Background()
	p, days := env.SeedPlan(t, may1, 3, domain.Party{Adults: 2})
	rows := env.SeedRange(t, p.ID, "car-1", domain.ItemTypeCar, days, "Compact")
	note := env.AddItem(t, days[0].ID, domain.ItemTypeNote, "pick up at airport")

	if err := env.Itinerary.DeleteItem(ctx, rows[2].ID); err != nil {
		t.Fatalf("DeleteItem() err=%v", err)
	}
	b, err := env.Itinerary.LoadBoard(ctx, p.ID)
	if err != nil {
		t.Fatalf("LoadBoard() err=%v", err)
	}
	all := b.AllItems()
	if len(all) != 1 || all[0].ID != note.ID {
		t.Fatalf("items=%d, want only the note", len(all))
	}
}

func TestService_LoadBoard_PartitionsByDay(t *testing.T) {
	t.Parallel()
	env := apptest.NewEnv(t)
	p, days := env.SeedPlan(t, may1, 3, domain.Party{Adults: 1})

	env.AddItem(t, days[2].ID, domain.ItemTypeTrip, "c")
	env.AddItem(t, days[0].ID, domain.ItemTypeTrip, "a1")
	env.AddItem(t, days[0].ID, domain.ItemTypeNote, "a2")

	b, err := env.Itinerary.LoadBoard(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("LoadBoard() err=%v", err)
	}
	if len(b.Days) != 3 || b.Days[0].ID != days[0].ID {
		t.Fatalf("days=%+v", b.Days)
	}
	first := b.ItemsFor(days[0].ID)
	if len(first) != 2 || first[0].Snapshot.Title != "a1" || first[1].Snapshot.Title != "a2" {
		t.Fatalf("day 1 items=%+v", first)
	}
	if len(b.ItemsFor(days[1].ID)) != 0 || len(b.ItemsFor(days[2].ID)) != 1 {
		t.Fatalf("items=%+v", b.Items)
	}
	if all := b.AllItems(); len(all) != 3 || all[2].Snapshot.Title != "c" {
		t.Fatalf("AllItems()=%+v", all)
	}
}

func TestService_ResolveParty(t *testing.T) {
	t.Parallel()
	env := apptest.NewEnv(t)
	ctx := context.Background()
	p, _ := env.SeedPlan(t, may1, 1, domain.Party{Adults: 2})

	got, err := env.Itinerary.ResolveParty(ctx, p.ID)
	if err != nil || got != (domain.Party{Adults: 2}) {
		t.Fatalf("ResolveParty()=%+v err=%v", got, err)
	}

	if _, err := env.Itinerary.SetPartyOverride(ctx, p.ID, domain.Party{Adults: 2, Children: 1}); err != nil {
		t.Fatalf("SetPartyOverride() err=%v", err)
	}
	if got, _ := env.Itinerary.ResolveParty(ctx, p.ID); got.Total() != 3 {
		t.Fatalf("ResolveParty()=%+v, want override", got)
	}

	// An empty override stored by another writer does not win.
	if err := env.Overrides.Put(ctx, p.ID, domain.Party{}); err != nil {
		t.Fatalf("Put() err=%v", err)
	}
	if got, _ := env.Itinerary.ResolveParty(ctx, p.ID); got.Total() != 2 {
		t.Fatalf("ResolveParty()=%+v, want stored party", got)
	}

	_, err = env.Itinerary.SetPartyOverride(ctx, p.ID, domain.Party{})
	requireKind(t, err, apperr.KindValidation, "INVALID_PARTY")

	if _, err := env.Itinerary.ClearPartyOverride(ctx, p.ID); err != nil {
		t.Fatalf("ClearPartyOverride() err=%v", err)
	}
	if _, ok, _ := env.Overrides.Get(ctx, p.ID); ok {
		t.Fatalf("override still stored")
	}
}
