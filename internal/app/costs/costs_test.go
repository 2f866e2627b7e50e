package costs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/apptest"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/costs"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/itinerary"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/ranges"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/catalog"
)

const (
	tripRef  = "0b9f3c52-6c1e-4e0a-9d54-2a1f7e8c4b01"
	hotelRef = "0b9f3c52-6c1e-4e0a-9d54-2a1f7e8c4b02"
	carRef   = "0b9f3c52-6c1e-4e0a-9d54-2a1f7e8c4b03"
	goneRef  = "0b9f3c52-6c1e-4e0a-9d54-2a1f7e8c4b04"
)

var aug1 = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

func seedCatalog(env *apptest.Env) {
	env.Catalog.PutTrip(domain.TripOffer{
		ID:      tripRef,
		Title:   "Akamas jeep safari",
		Pricing: domain.TripPricing{Model: domain.TripPricingPerPerson, UnitPrice: 45},
	})
	env.Catalog.PutHotel(domain.HotelOffer{
		ID:   hotelRef,
		Name: "Harbour Inn",
		Pricing: domain.HotelPricing{
			Model: domain.HotelPricingPerPersonPerNight,
			Tiers: []domain.HotelTier{{Persons: 2, PricePerNight: 80}, {Persons: 4, MinNights: 3, PricePerNight: 140}},
		},
	})
	env.Catalog.PutCar(domain.CarOffer{
		ID:    carRef,
		Model: "Yaris",
		Rates: domain.CarRates{Location: "Paphos", Price3Days: 90, PricePerDay: 25},
	})
}

func TestService_Aggregate_PricesEachRangeOnce(t *testing.T) {
	t.Parallel()
	env := apptest.NewEnv(t)
	seedCatalog(env)
	ctx := context.Background()
	p, days := env.SeedPlan(t, aug1, 5, domain.Party{Adults: 2})
	rs := ranges.NewService(env.Plans, env.Items, env.Itinerary, env.Clock)

	// Three-day hotel: two nights at 80.
	if _, err := rs.AddRange(ctx, ranges.AddRangeInput{StartDayID: days[0].ID, EndDayID: days[2].ID, Type: domain.ItemTypeHotel, CatalogRef: hotelRef}); err != nil {
		t.Fatalf("AddRange(hotel) err=%v", err)
	}
	// Five-day car in Paphos: 5 x 25.
	if _, err := rs.AddRange(ctx, ranges.AddRangeInput{StartDayID: days[0].ID, EndDayID: days[4].ID, Type: domain.ItemTypeCar, CatalogRef: carRef}); err != nil {
		t.Fatalf("AddRange(car) err=%v", err)
	}
	// Same trip on two days is two occurrences.
	for _, d := range []domain.PlanDay{days[1], days[3]} {
		if _, err := env.Itinerary.AddItem(ctx, itinerary.AddItemInput{DayID: d.ID, Type: domain.ItemTypeTrip, CatalogRef: tripRef}); err != nil {
			t.Fatalf("AddItem(trip) err=%v", err)
		}
	}
	env.AddItem(t, days[1].ID, domain.ItemTypeNote, "not priced")

	got, err := costs.NewService(env.Itinerary, env.Catalog).Aggregate(ctx, p.ID)
	if err != nil {
		t.Fatalf("Aggregate() err=%v", err)
	}
	if got.HotelsTotal != 160 {
		t.Fatalf("HotelsTotal=%v, want 160 counted once", got.HotelsTotal)
	}
	if got.CarsTotal != 125 {
		t.Fatalf("CarsTotal=%v, want 125", got.CarsTotal)
	}
	if got.TripsTotal != 180 {
		t.Fatalf("TripsTotal=%v, want 2 x 90", got.TripsTotal)
	}
	if got.Total != 465 || got.Currency != "EUR" || got.People != 2 {
		t.Fatalf("breakdown=%+v", got)
	}
	if len(got.Lines) != 4 {
		t.Fatalf("len(Lines)=%d, want 4", len(got.Lines))
	}
}

func TestService_Aggregate_UsesPartyOverride(t *testing.T) {
	t.Parallel()
	env := apptest.NewEnv(t)
	seedCatalog(env)
	ctx := context.Background()
	p, days := env.SeedPlan(t, aug1, 3, domain.Party{Adults: 2})
	rs := ranges.NewService(env.Plans, env.Items, env.Itinerary, env.Clock)

	if _, err := rs.AddRange(ctx, ranges.AddRangeInput{StartDayID: days[0].ID, EndDayID: days[2].ID, Type: domain.ItemTypeHotel, CatalogRef: hotelRef}); err != nil {
		t.Fatalf("AddRange() err=%v", err)
	}
	if _, err := env.Itinerary.SetPartyOverride(ctx, p.ID, domain.Party{Adults: 2, Children: 2}); err != nil {
		t.Fatalf("SetPartyOverride() err=%v", err)
	}

	got, err := costs.NewService(env.Itinerary, env.Catalog).Aggregate(ctx, p.ID)
	if err != nil {
		t.Fatalf("Aggregate() err=%v", err)
	}
	// Party of four, two nights: four-person tier billed at its three-night floor.
	if got.HotelsTotal != 420 || got.People != 4 {
		t.Fatalf("breakdown=%+v, want 420 for four people", got)
	}
	if got.Lines[0].Nights != 3 {
		t.Fatalf("Nights=%d, want billable 3", got.Lines[0].Nights)
	}
}

func TestService_Aggregate_MissingCatalogPricesZero(t *testing.T) {
	t.Parallel()
	env := apptest.NewEnv(t)
	ctx := context.Background()
	p, days := env.SeedPlan(t, aug1, 1, domain.Party{Adults: 1})

	for _, ref := range []string{goneRef, "legacy-id"} {
		if _, err := env.Itinerary.AddItem(ctx, itinerary.AddItemInput{DayID: days[0].ID, Type: domain.ItemTypeTrip, CatalogRef: ref}); err != nil {
			t.Fatalf("AddItem(%s) err=%v", ref, err)
		}
	}

	got, err := costs.NewService(env.Itinerary, env.Catalog).Aggregate(ctx, p.ID)
	if err != nil {
		t.Fatalf("Aggregate() err=%v", err)
	}
	if got.Total != 0 || len(got.Lines) != 2 || got.Lines[0].Priced || got.Lines[1].Priced {
		t.Fatalf("breakdown=%+v", got)
	}
}

type brokenCatalog struct{ catalog.Reader }

func (brokenCatalog) Trip(context.Context, domain.CatalogRef) (domain.TripOffer, error) {
	return domain.TripOffer{}, errors.New("catalog offline")
}

func TestService_Aggregate_CatalogOutageDoesNotFail(t *testing.T) {
	t.Parallel()
	env := apptest.NewEnv(t)
	ctx := context.Background()
	p, days := env.SeedPlan(t, aug1, 1, domain.Party{Adults: 1})
	if _, err := env.Itinerary.AddItem(ctx, itinerary.AddItemInput{DayID: days[0].ID, Type: domain.ItemTypeTrip, CatalogRef: tripRef}); err != nil {
		t.Fatalf("AddItem() err=%v", err)
	}

	got, err := costs.NewService(env.Itinerary, brokenCatalog{Reader: env.Catalog}).Aggregate(ctx, p.ID)
	if err != nil {
		t.Fatalf("Aggregate() err=%v", err)
	}
	if got.Total != 0 {
		t.Fatalf("Total=%v, want 0", got.Total)
	}

	if _, err := costs.NewService(env.Itinerary, env.Catalog).Aggregate(ctx, "missing"); err == nil {
		t.Fatalf("Aggregate(missing plan) err=nil")
	}
}

func TestCompute_UnrangedHotelRowsAreSingleDays(t *testing.T) {
	t.Parallel()

	ref := domain.CatalogRef(hotelRef)
	day := domain.PlanDay{ID: "d1", DayIndex: 1}
	board := domain.Board{
		Days: []domain.PlanDay{day},
		Items: map[domain.DayID][]domain.PlanItem{
			"d1": {
				{ID: "h1", DayID: "d1", Type: domain.ItemTypeHotel, CatalogRef: &ref, Details: domain.HotelDetails{}},
				{ID: "h2", DayID: "d1", Type: domain.ItemTypeHotel, CatalogRef: &ref, Details: domain.HotelDetails{}},
			},
		},
	}
	got := costs.Compute(costs.Input{
		Board:    board,
		Party:    domain.Party{Adults: 2},
		Currency: "EUR",
		Hotels: map[domain.CatalogRef]domain.HotelOffer{
			ref: {Pricing: domain.HotelPricing{Model: domain.HotelPricingFlatPerNight, Tiers: []domain.HotelTier{{PricePerNight: 70}}}},
		},
	})
	// Each unranged row is its own one-night stay.
	if got.HotelsTotal != 140 || len(got.Lines) != 2 {
		t.Fatalf("breakdown=%+v", got)
	}
}
