package booking_test

import (
	"context"
	"errors"
	"testing"
	"time"

	membookingsink "github.com/Overland-East-Bay/itinerary-planner-api/internal/adapters/memory/bookingsink"
	memidempotency "github.com/Overland-East-Bay/itinerary-planner-api/internal/adapters/memory/idempotency"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/apperr"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/apptest"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/booking"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/itinerary"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/ranges"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/bookingsink"
)

const (
	tripRef  = "5d0c8a11-2f4b-4f3e-8a6d-1c9b7e2a3f01"
	hotelRef = "5d0c8a11-2f4b-4f3e-8a6d-1c9b7e2a3f02"
	carRef   = "5d0c8a11-2f4b-4f3e-8a6d-1c9b7e2a3f03"
)

var sep1 = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	env      *apptest.Env
	sink     *membookingsink.Sink
	compiler *booking.Compiler
	plan     domain.Plan
	days     []domain.PlanDay
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	env := apptest.NewEnv(t)
	env.Catalog.PutTrip(domain.TripOffer{ID: tripRef, Title: "Wine tour", Pricing: domain.TripPricing{Model: domain.TripPricingPerPerson, UnitPrice: 30}})
	env.Catalog.PutHotel(domain.HotelOffer{ID: hotelRef, Name: "Olive Grove", Pricing: domain.HotelPricing{Model: domain.HotelPricingFlatPerNight, Tiers: []domain.HotelTier{{PricePerNight: 100}}}})
	env.Catalog.PutCar(domain.CarOffer{ID: carRef, Model: "Duster", Rates: domain.CarRates{Location: "Larnaca", PricePerDay: 40}})

	p, days := env.SeedPlan(t, sep1, 4, domain.Party{Adults: 2, Children: 1})
	sink := membookingsink.NewSink()
	c := booking.NewCompiler(env.Itinerary, env.Catalog, sink, memidempotency.NewStore(), env.Clock)
	return &fixture{env: env, sink: sink, compiler: c, plan: p, days: days}
}

func (f *fixture) addTrip(t *testing.T, day int) {
	t.Helper()
	if _, err := f.env.Itinerary.AddItem(context.Background(), itinerary.AddItemInput{
		DayID:      f.days[day].ID,
		Type:       domain.ItemTypeTrip,
		CatalogRef: tripRef,
		Details:    domain.TripDetails{Notes: "pick-up at hotel"},
	}); err != nil {
		t.Fatalf("AddItem(trip) err=%v", err)
	}
}

func (f *fixture) addRange(t *testing.T, typ domain.ItemType, ref string, from, to int, start *time.Time) {
	t.Helper()
	rs := ranges.NewService(f.env.Plans, f.env.Items, f.env.Itinerary, f.env.Clock)
	if _, err := rs.AddRange(context.Background(), ranges.AddRangeInput{
		StartDayID: f.days[from].ID,
		EndDayID:   f.days[to].ID,
		Type:       typ,
		CatalogRef: ref,
		StartDate:  start,
	}); err != nil {
		t.Fatalf("AddRange(%s) err=%v", typ, err)
	}
}

func validRequest() booking.Request {
	return booking.Request{
		Customer: booking.Customer{Name: " Ana  Silva ", Email: "ana@example.com", Phone: "+357 99 123456", Country: "cy"},
		Note:     "celebrating an anniversary",
	}
}

func TestCompiler_Compile_BuildsOnePerSelection(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.addTrip(t, 1)
	f.addRange(t, domain.ItemTypeHotel, hotelRef, 0, 2, nil)
	carStart := sep1.AddDate(0, 0, 1)
	f.addRange(t, domain.ItemTypeCar, carRef, 1, 3, &carStart)

	subs, err := f.compiler.Compile(context.Background(), f.plan.ID, validRequest())
	if err != nil {
		t.Fatalf("Compile() err=%v", err)
	}
	if len(subs) != 3 {
		t.Fatalf("len(subs)=%d, want 3", len(subs))
	}
	byKind := map[bookingsink.Kind]booking.Submission{}
	for _, s := range subs {
		byKind[s.Kind] = s
	}

	hotel := byKind[bookingsink.KindHotel]
	if !hotel.StartDate.Equal(sep1) || !hotel.EndDate.Equal(sep1.AddDate(0, 0, 2)) || hotel.Nights != 2 {
		t.Fatalf("hotel=%+v", hotel)
	}
	if hotel.EstimatedTotal != 200 || hotel.Title != "Olive Grove" {
		t.Fatalf("hotel total/title=%v/%q", hotel.EstimatedTotal, hotel.Title)
	}

	car := byKind[bookingsink.KindCar]
	if !car.StartDate.Equal(carStart) || !car.EndDate.Equal(sep1.AddDate(0, 0, 3)) || car.Days != 3 || car.EstimatedTotal != 120 {
		t.Fatalf("car=%+v", car)
	}

	trip := byKind[bookingsink.KindTrip]
	if !trip.StartDate.Equal(sep1.AddDate(0, 0, 1)) || trip.EstimatedTotal != 90 {
		t.Fatalf("trip=%+v", trip)
	}
	if trip.Notes != "pick-up at hotel\ncelebrating an anniversary" {
		t.Fatalf("trip notes=%q", trip.Notes)
	}
	if trip.Customer.Name != "Ana Silva" || trip.Customer.Country != "CY" || trip.Party.Total() != 3 {
		t.Fatalf("trip customer/party=%+v/%+v", trip.Customer, trip.Party)
	}
}

func TestCompiler_Compile_CustomerValidation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.addTrip(t, 0)
	ctx := context.Background()

	_, err := f.compiler.Compile(ctx, f.plan.ID, booking.Request{Customer: booking.Customer{Email: "not-an-email"}})
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Kind != apperr.KindValidation {
		t.Fatalf("err=%v, want validation", err)
	}
	for _, field := range []string{"name", "email", "phone"} {
		if _, ok := ae.Details[field]; !ok {
			t.Fatalf("details=%v, missing %s", ae.Details, field)
		}
	}
	if _, ok := ae.Details["country"]; ok {
		t.Fatalf("country required without a car: %v", ae.Details)
	}

	// Trips only: country is optional.
	req := validRequest()
	req.Customer.Country = ""
	if _, err := f.compiler.Compile(ctx, f.plan.ID, req); err != nil {
		t.Fatalf("Compile(no country, no car) err=%v", err)
	}

	// Any car makes it mandatory.
	f.addRange(t, domain.ItemTypeCar, carRef, 0, 2, nil)
	_, err = f.compiler.Compile(ctx, f.plan.ID, req)
	if !errors.As(err, &ae) || ae.Details["country"] != "required" {
		t.Fatalf("err=%v, want country required", err)
	}
}

func TestCompiler_Compile_NothingToBook(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.env.AddItem(t, f.days[0].ID, domain.ItemTypeNote, "just a note")

	_, err := f.compiler.Compile(context.Background(), f.plan.ID, validRequest())
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err=%v, want validation", err)
	}
}

func TestCompiler_Submit_PartialFailureDoesNotAbort(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.addTrip(t, 0)
	f.addRange(t, domain.ItemTypeHotel, hotelRef, 0, 1, nil)
	f.addRange(t, domain.ItemTypeCar, carRef, 0, 2, nil)
	f.sink.FailWith = func(r bookingsink.Request) error {
		if r.Kind == bookingsink.KindHotel {
			return bookingsink.ErrRejected
		}
		return nil
	}

	res, err := f.compiler.Submit(context.Background(), f.plan.ID, validRequest())
	if err != nil {
		t.Fatalf("Submit() err=%v", err)
	}
	if len(res.Accepted) != 2 || len(res.Failed) != 1 || len(res.Replayed) != 0 {
		t.Fatalf("result accepted=%d failed=%d replayed=%d", len(res.Accepted), len(res.Failed), len(res.Replayed))
	}
	if !errors.Is(res.Failed[0].Err, bookingsink.ErrRejected) || res.Failed[0].Submission.Kind != bookingsink.KindHotel {
		t.Fatalf("failed=%+v", res.Failed[0])
	}
	if n := len(f.sink.Accepted()); n != 2 {
		t.Fatalf("sink accepted=%d, want 2", n)
	}
}

func TestCompiler_Submit_RetryReplaysAccepted(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.addTrip(t, 0)
	f.addRange(t, domain.ItemTypeHotel, hotelRef, 1, 2, nil)
	ctx := context.Background()

	failHotel := true
	f.sink.FailWith = func(r bookingsink.Request) error {
		if r.Kind == bookingsink.KindHotel && failHotel {
			return errors.New("connection reset")
		}
		return nil
	}
	req := validRequest()
	req.IdempotencyKey = "batch-1"

	first, err := f.compiler.Submit(ctx, f.plan.ID, req)
	if err != nil {
		t.Fatalf("Submit() err=%v", err)
	}
	if len(first.Accepted) != 1 || len(first.Failed) != 1 {
		t.Fatalf("first accepted=%d failed=%d", len(first.Accepted), len(first.Failed))
	}
	if !apperr.Is(first.Failed[0].Err, apperr.KindTransport) {
		t.Fatalf("failed err=%v, want transport", first.Failed[0].Err)
	}

	failHotel = false
	second, err := f.compiler.Submit(ctx, f.plan.ID, req)
	if err != nil {
		t.Fatalf("Submit() retry err=%v", err)
	}
	if len(second.Replayed) != 1 || len(second.Accepted) != 1 || len(second.Failed) != 0 {
		t.Fatalf("second accepted=%d replayed=%d failed=%d", len(second.Accepted), len(second.Replayed), len(second.Failed))
	}
	if second.Replayed[0].BookingID != first.Accepted[0].BookingID {
		t.Fatalf("replayed id=%s, want %s", second.Replayed[0].BookingID, first.Accepted[0].BookingID)
	}
	if n := len(f.sink.Accepted()); n != 2 {
		t.Fatalf("sink accepted=%d, want trip once and hotel once", n)
	}
}

func TestCompiler_Submit_KeyReuseWithChangedRequestIsRejected(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.addTrip(t, 0)
	f.addRange(t, domain.ItemTypeHotel, hotelRef, 1, 2, nil)
	ctx := context.Background()

	req := validRequest()
	req.IdempotencyKey = "batch-1"
	first, err := f.compiler.Submit(ctx, f.plan.ID, req)
	if err != nil {
		t.Fatalf("Submit() err=%v", err)
	}
	if len(first.Accepted) != 2 {
		t.Fatalf("first accepted=%d, want 2", len(first.Accepted))
	}

	changed := req
	changed.Note = "actually, a birthday"
	_, err = f.compiler.Submit(ctx, f.plan.ID, changed)
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Kind != apperr.KindConflict || ae.Code != "IDEMPOTENCY_KEY_REUSE" || ae.Status != 409 {
		t.Fatalf("err=%v, want IDEMPOTENCY_KEY_REUSE conflict", err)
	}
	if len(ae.Details) != 2 {
		t.Fatalf("details=%v, want both selections", ae.Details)
	}
	if n := len(f.sink.Accepted()); n != 2 {
		t.Fatalf("sink accepted=%d, want 2", n)
	}

	// The unchanged request still replays.
	again, err := f.compiler.Submit(ctx, f.plan.ID, req)
	if err != nil {
		t.Fatalf("Submit() replay err=%v", err)
	}
	if len(again.Replayed) != 2 || len(again.Accepted) != 0 {
		t.Fatalf("replay accepted=%d replayed=%d", len(again.Accepted), len(again.Replayed))
	}
	if n := len(f.sink.Accepted()); n != 2 {
		t.Fatalf("sink accepted=%d, want 2", n)
	}
}

func TestCompiler_Compile_AcceptsCountryName(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.addTrip(t, 0)

	req := validRequest()
	req.Customer.Country = "Cyprus"
	subs, err := f.compiler.Compile(context.Background(), f.plan.ID, req)
	if err != nil {
		t.Fatalf("Compile() err=%v", err)
	}
	if got := subs[0].Customer.Country; got != "CYPRUS" {
		t.Fatalf("country=%q, want CYPRUS", got)
	}
}
