package httpapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/adapters/httpapi"
	membookingsink "github.com/Overland-East-Bay/itinerary-planner-api/internal/adapters/memory/bookingsink"
	memcatalog "github.com/Overland-East-Bay/itinerary-planner-api/internal/adapters/memory/catalog"
	memclock "github.com/Overland-East-Bay/itinerary-planner-api/internal/adapters/memory/clock"
	memidempotency "github.com/Overland-East-Bay/itinerary-planner-api/internal/adapters/memory/idempotency"
	memitemrepo "github.com/Overland-East-Bay/itinerary-planner-api/internal/adapters/memory/itemrepo"
	mempartyoverride "github.com/Overland-East-Bay/itinerary-planner-api/internal/adapters/memory/partyoverride"
	memplanrepo "github.com/Overland-East-Bay/itinerary-planner-api/internal/adapters/memory/planrepo"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/booking"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/costs"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/itinerary"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/ordering"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/ranges"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
)

type harness struct {
	h       http.Handler
	catalog *memcatalog.Catalog
	sink    *membookingsink.Sink
}

func newHarness(t *testing.T, opts httpapi.RouterOptions) *harness {
	t.Helper()

	clk := memclock.NewManualClock(time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC))
	plans := memplanrepo.NewRepo()
	items := memitemrepo.NewRepo()
	cat := memcatalog.NewCatalog()
	sink := membookingsink.NewSink()

	itin := itinerary.NewService(plans, items, mempartyoverride.NewStore(), clk)
	srv := httpapi.NewServer(
		itin,
		ranges.NewService(plans, items, itin, clk),
		ordering.NewRegistry(itin, items),
		costs.NewService(itin, cat),
		booking.NewCompiler(itin, cat, sink, memidempotency.NewStore(), clk),
	)
	opts.Logger = zerolog.Nop()
	return &harness{h: httpapi.NewRouter(srv, opts), catalog: cat, sink: sink}
}

func (h *harness) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	h.h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

type planResp struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	BaseCity  string `json:"baseCity"`
	Currency  string `json:"currency"`
	StartDate string `json:"startDate"`
}

type itemResp struct {
	ID        string `json:"id"`
	DayID     string `json:"dayId"`
	Type      string `json:"type"`
	SortOrder int64  `json:"sortOrder"`
	Snapshot  struct {
		Title string `json:"title"`
	} `json:"snapshot"`
}

type dayResp struct {
	ID       string     `json:"id"`
	DayIndex int        `json:"dayIndex"`
	Date     string     `json:"date"`
	Items    []itemResp `json:"items"`
}

type boardResp struct {
	Plan planResp  `json:"plan"`
	Days []dayResp `json:"days"`
}

type errResp struct {
	Error struct {
		Code      string         `json:"code"`
		Details   map[string]any `json:"details"`
		RequestID string         `json:"requestId"`
	} `json:"error"`
}

// seedPlan creates a plan with days through the API and returns the board.
func (h *harness) seedPlan(t *testing.T, days int) boardResp {
	t.Helper()
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	rr := h.do(t, http.MethodPost, "/v1/plans", map[string]any{
		"title":     "  Cyprus   loop ",
		"startDate": start.Format("2006-01-02"),
		"endDate":   start.AddDate(0, 0, days-1).Format("2006-01-02"),
		"baseCity":  "Paphos",
		"party":     map[string]int{"adults": 2, "children": 0},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create plan status=%d body=%s", rr.Code, rr.Body.String())
	}
	p := decode[planResp](t, rr)
	if rr := h.do(t, http.MethodPost, "/v1/plans/"+p.ID+"/days/generate", map[string]any{}); rr.Code != http.StatusOK {
		t.Fatalf("generate days status=%d body=%s", rr.Code, rr.Body.String())
	}
	return h.board(t, p.ID)
}

func (h *harness) board(t *testing.T, planID string) boardResp {
	t.Helper()
	rr := h.do(t, http.MethodGet, "/v1/plans/"+planID+"/board", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("board status=%d body=%s", rr.Code, rr.Body.String())
	}
	return decode[boardResp](t, rr)
}

func (h *harness) addNote(t *testing.T, planID, dayID, text string) itemResp {
	t.Helper()
	rr := h.do(t, http.MethodPost, "/v1/plans/"+planID+"/items", map[string]any{
		"dayId":    dayID,
		"type":     "note",
		"details":  map[string]any{"text": text},
		"snapshot": map[string]any{"title": text},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("add note status=%d body=%s", rr.Code, rr.Body.String())
	}
	return decode[itemResp](t, rr)
}

func titlesOf(items []itemResp) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Snapshot.Title)
	}
	return out
}

func TestPlans_CreateGenerateAndBoard(t *testing.T) {
	t.Parallel()
	h := newHarness(t, httpapi.RouterOptions{})

	b := h.seedPlan(t, 3)
	if b.Plan.Title != "Cyprus loop" || b.Plan.Currency != "EUR" || b.Plan.StartDate != "2026-07-01" {
		t.Fatalf("plan=%+v", b.Plan)
	}
	if len(b.Days) != 3 || b.Days[0].DayIndex != 1 || b.Days[2].Date != "2026-07-03" {
		t.Fatalf("days=%+v", b.Days)
	}

	// Regenerating over existing days needs confirmation.
	rr := h.do(t, http.MethodPost, "/v1/plans/"+b.Plan.ID+"/days/generate", map[string]any{"confirm": false})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d, want 422", rr.Code)
	}
	if got := decode[errResp](t, rr); got.Error.Code != "REGENERATION_NOT_CONFIRMED" {
		t.Fatalf("code=%q", got.Error.Code)
	}
}

func TestPlans_ValidationErrorCarriesRequestID(t *testing.T) {
	t.Parallel()
	h := newHarness(t, httpapi.RouterOptions{})

	rr := h.do(t, http.MethodPost, "/v1/plans", map[string]any{"baseCity": "Paphos"})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d, want 422", rr.Code)
	}
	got := decode[errResp](t, rr)
	if got.Error.Code != "VALIDATION_ERROR" || got.Error.Details["title"] != "required" {
		t.Fatalf("error=%+v", got.Error)
	}
	if got.Error.RequestID == "" {
		t.Fatalf("requestId missing")
	}

	rr = h.do(t, http.MethodPost, "/v1/plans", map[string]any{"title": "x", "colour": "blue"})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unknown field status=%d, want 422", rr.Code)
	}
}

func TestPlans_PatchDistinguishesNullFromAbsent(t *testing.T) {
	t.Parallel()
	h := newHarness(t, httpapi.RouterOptions{})
	b := h.seedPlan(t, 2)

	rr := h.do(t, http.MethodPatch, "/v1/plans/"+b.Plan.ID, map[string]any{"baseCity": nil})
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	got := decode[planResp](t, rr)
	if got.BaseCity != "" || got.Title != "Cyprus loop" {
		t.Fatalf("plan=%+v, want cleared base city and unchanged title", got)
	}
}

func TestPlans_UnknownPlanIsNotFound(t *testing.T) {
	t.Parallel()
	h := newHarness(t, httpapi.RouterOptions{})

	rr := h.do(t, http.MethodGet, "/v1/plans/"+uuid.NewString(), nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status=%d, want 404", rr.Code)
	}
	if got := decode[errResp](t, rr); got.Error.Code != "PLAN_NOT_FOUND" {
		t.Fatalf("code=%q", got.Error.Code)
	}
}

func TestItems_ReorderThroughBoard(t *testing.T) {
	t.Parallel()
	h := newHarness(t, httpapi.RouterOptions{})
	b := h.seedPlan(t, 2)
	planID, day1, day2 := b.Plan.ID, b.Days[0].ID, b.Days[1].ID

	a := h.addNote(t, planID, day1, "A")
	bb := h.addNote(t, planID, day1, "B")

	rr := h.do(t, http.MethodPost, "/v1/plans/"+planID+"/items/"+bb.ID+"/move", map[string]any{"direction": "up"})
	if rr.Code != http.StatusOK {
		t.Fatalf("move status=%d body=%s", rr.Code, rr.Body.String())
	}
	got := decode[boardResp](t, rr)
	if titles := titlesOf(got.Days[0].Items); len(titles) != 2 || titles[0] != "B" || titles[1] != "A" {
		t.Fatalf("day1=%v, want [B A]", titles)
	}

	rr = h.do(t, http.MethodPost, "/v1/plans/"+planID+"/items/"+a.ID+"/drop", map[string]any{"dayId": day2, "index": 0})
	if rr.Code != http.StatusOK {
		t.Fatalf("drop status=%d body=%s", rr.Code, rr.Body.String())
	}
	got = decode[boardResp](t, rr)
	if len(got.Days[0].Items) != 1 || len(got.Days[1].Items) != 1 || got.Days[1].Items[0].ID != a.ID {
		t.Fatalf("board=%+v", got.Days)
	}

	rr = h.do(t, http.MethodPost, "/v1/plans/"+planID+"/items/"+a.ID+"/move", map[string]any{"direction": "sideways"})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad direction status=%d, want 422", rr.Code)
	}
}

func TestItems_AddToDayOfAnotherPlanIsRejected(t *testing.T) {
	t.Parallel()
	h := newHarness(t, httpapi.RouterOptions{})
	a := h.seedPlan(t, 1)
	other := h.seedPlan(t, 1)

	rr := h.do(t, http.MethodPost, "/v1/plans/"+a.Plan.ID+"/items", map[string]any{
		"dayId":   other.Days[0].ID,
		"type":    "note",
		"details": map[string]any{"text": "wrong plan"},
	})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d, want 422", rr.Code)
	}
	if got := decode[errResp](t, rr); got.Error.Code != "DAY_NOT_FOUND" {
		t.Fatalf("code=%q", got.Error.Code)
	}
}

func TestItems_OtherPlansItemsAreNotFound(t *testing.T) {
	t.Parallel()
	h := newHarness(t, httpapi.RouterOptions{})
	a := h.seedPlan(t, 2)
	other := h.seedPlan(t, 2)
	note := h.addNote(t, other.Plan.ID, other.Days[0].ID, "keep me")

	rr := h.do(t, http.MethodPost, "/v1/plans/"+other.Plan.ID+"/ranges", map[string]any{
		"startDayId": other.Days[0].ID,
		"endDayId":   other.Days[1].ID,
		"type":       "hotel",
		"snapshot":   map[string]any{"title": "Harbour Inn"},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("add range status=%d body=%s", rr.Code, rr.Body.String())
	}
	rg := decode[struct {
		ID string `json:"id"`
	}](t, rr)

	itemPath := "/v1/plans/" + a.Plan.ID + "/items/" + note.ID
	rangePath := "/v1/plans/" + a.Plan.ID + "/ranges/" + rg.ID
	cases := []struct {
		method, path string
		body         any
		code         string
	}{
		{http.MethodPatch, itemPath, map[string]any{"details": map[string]any{"text": "hijacked"}}, "ITEM_NOT_FOUND"},
		{http.MethodDelete, itemPath, nil, "ITEM_NOT_FOUND"},
		{http.MethodGet, rangePath, nil, "RANGE_NOT_FOUND"},
		{http.MethodDelete, rangePath, nil, "RANGE_NOT_FOUND"},
	}
	for _, tc := range cases {
		rr := h.do(t, tc.method, tc.path, tc.body)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("%s %s status=%d, want 404", tc.method, tc.path, rr.Code)
		}
		if got := decode[errResp](t, rr); got.Error.Code != tc.code {
			t.Fatalf("%s %s code=%q, want %s", tc.method, tc.path, got.Error.Code, tc.code)
		}
	}

	b := h.board(t, other.Plan.ID)
	if got := titlesOf(b.Days[0].Items); len(got) != 2 {
		t.Fatalf("day 1 items=%v, want note and hotel row", got)
	}
	if len(b.Days[1].Items) != 1 {
		t.Fatalf("day 2 items=%d, want the hotel row", len(b.Days[1].Items))
	}
	for _, it := range b.Days[0].Items {
		if it.ID == note.ID && it.Snapshot.Title != "keep me" {
			t.Fatalf("note title=%q, want unchanged", it.Snapshot.Title)
		}
	}

	// Through its own plan the item is still reachable.
	if rr := h.do(t, http.MethodDelete, "/v1/plans/"+other.Plan.ID+"/items/"+note.ID, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("own delete status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestRanges_CostsAndBookings(t *testing.T) {
	t.Parallel()
	h := newHarness(t, httpapi.RouterOptions{})
	b := h.seedPlan(t, 3)
	planID := b.Plan.ID

	hotelRef := uuid.NewString()
	h.catalog.PutHotel(domain.HotelOffer{
		ID:   domain.CatalogRef(hotelRef),
		Name: "Sea View",
		Pricing: domain.HotelPricing{
			Model: domain.HotelPricingFlatPerNight,
			Tiers: []domain.HotelTier{{MinNights: 1, PricePerNight: 100}},
		},
	})

	rr := h.do(t, http.MethodPost, "/v1/plans/"+planID+"/ranges", map[string]any{
		"startDayId": b.Days[2].ID,
		"endDayId":   b.Days[0].ID,
		"type":       "hotel",
		"catalogRef": hotelRef,
		"snapshot":   map[string]any{"title": "Sea View"},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("add range status=%d body=%s", rr.Code, rr.Body.String())
	}
	rg := decode[struct {
		ID    string     `json:"id"`
		Items []itemResp `json:"items"`
	}](t, rr)
	if len(rg.Items) != 3 {
		t.Fatalf("range items=%d, want 3", len(rg.Items))
	}

	rr = h.do(t, http.MethodGet, "/v1/plans/"+planID+"/costs", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("costs status=%d body=%s", rr.Code, rr.Body.String())
	}
	cost := decode[struct {
		HotelsTotal float64 `json:"hotelsTotal"`
		Total       float64 `json:"total"`
		People      int     `json:"people"`
	}](t, rr)
	if cost.HotelsTotal != 200 || cost.Total != 200 || cost.People != 2 {
		t.Fatalf("costs=%+v, want hotels 200 for 2 nights", cost)
	}

	body := map[string]any{
		"customer": map[string]any{"name": "maria  georgiou", "email": "maria@example.com", "phone": "+35799123456"},
	}
	rr = h.do(t, http.MethodPost, "/v1/plans/"+planID+"/bookings", body, httpapi.IdempotencyKeyHeader, "batch-1")
	if rr.Code != http.StatusOK {
		t.Fatalf("bookings status=%d body=%s", rr.Code, rr.Body.String())
	}
	type result struct {
		Accepted []struct {
			BookingID string `json:"bookingId"`
			Nights    int    `json:"nights"`
		} `json:"accepted"`
		Replayed []struct {
			BookingID string `json:"bookingId"`
		} `json:"replayed"`
	}
	first := decode[result](t, rr)
	if len(first.Accepted) != 1 || first.Accepted[0].BookingID == "" || first.Accepted[0].Nights != 2 {
		t.Fatalf("first=%+v", first)
	}

	rr = h.do(t, http.MethodPost, "/v1/plans/"+planID+"/bookings", body, httpapi.IdempotencyKeyHeader, "batch-1")
	retry := decode[result](t, rr)
	if len(retry.Accepted) != 0 || len(retry.Replayed) != 1 || retry.Replayed[0].BookingID != first.Accepted[0].BookingID {
		t.Fatalf("retry=%+v, want one replay", retry)
	}
	if n := len(h.sink.Accepted()); n != 1 {
		t.Fatalf("sink accepted %d requests, want 1", n)
	}

	body["note"] = "late check-in"
	rr = h.do(t, http.MethodPost, "/v1/plans/"+planID+"/bookings", body, httpapi.IdempotencyKeyHeader, "batch-1")
	if rr.Code != http.StatusConflict {
		t.Fatalf("reused key status=%d, want 409", rr.Code)
	}
	if got := decode[errResp](t, rr); got.Error.Code != "IDEMPOTENCY_KEY_REUSE" {
		t.Fatalf("code=%q", got.Error.Code)
	}
	if n := len(h.sink.Accepted()); n != 1 {
		t.Fatalf("sink accepted %d requests after key reuse, want 1", n)
	}

	rr = h.do(t, http.MethodDelete, "/v1/plans/"+planID+"/ranges/"+rg.ID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("delete range status=%d body=%s", rr.Code, rr.Body.String())
	}
	if got := h.board(t, planID); len(got.Days[0].Items)+len(got.Days[1].Items)+len(got.Days[2].Items) != 0 {
		t.Fatalf("range rows survived delete: %+v", got.Days)
	}
}

func TestBookings_InvalidEmailIsRejected(t *testing.T) {
	t.Parallel()
	h := newHarness(t, httpapi.RouterOptions{})
	b := h.seedPlan(t, 1)

	rr := h.do(t, http.MethodPost, "/v1/plans/"+b.Plan.ID+"/bookings/preview", map[string]any{
		"customer": map[string]any{"name": "Maria", "email": "not-an-email", "phone": "+35799123456"},
	})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d, want 422", rr.Code)
	}
	if got := decode[errResp](t, rr); got.Error.Details["email"] == nil {
		t.Fatalf("details=%v, want email", got.Error.Details)
	}
}

func TestPartyOverride_RoundTrip(t *testing.T) {
	t.Parallel()
	h := newHarness(t, httpapi.RouterOptions{})
	b := h.seedPlan(t, 1)
	base := "/v1/plans/" + b.Plan.ID

	if rr := h.do(t, http.MethodPut, base+"/party-override", map[string]int{"adults": 2, "children": 2}); rr.Code != http.StatusOK {
		t.Fatalf("set status=%d body=%s", rr.Code, rr.Body.String())
	}
	party := decode[map[string]int](t, h.do(t, http.MethodGet, base+"/party", nil))
	if party["adults"] != 2 || party["children"] != 2 {
		t.Fatalf("party=%v, want 2+2", party)
	}
	if rr := h.do(t, http.MethodPut, base+"/party-override", map[string]int{"adults": 0, "children": 0}); rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("empty party status=%d, want 422", rr.Code)
	}
	if rr := h.do(t, http.MethodDelete, base+"/party-override", nil); rr.Code != http.StatusOK {
		t.Fatalf("clear status=%d", rr.Code)
	}
	party = decode[map[string]int](t, h.do(t, http.MethodGet, base+"/party", nil))
	if party["adults"] != 2 || party["children"] != 0 {
		t.Fatalf("party=%v, want plan party 2+0", party)
	}
}

func TestRouter_RateLimitSparesHealthz(t *testing.T) {
	t.Parallel()
	h := newHarness(t, httpapi.RouterOptions{RateLimiter: httpapi.NewRateLimiter(0.001, 1)})

	path := "/v1/plans/" + uuid.NewString()
	if rr := h.do(t, http.MethodGet, path, nil); rr.Code != http.StatusNotFound {
		t.Fatalf("first status=%d, want 404", rr.Code)
	}
	rr := h.do(t, http.MethodGet, path, nil)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second status=%d, want 429", rr.Code)
	}
	if got := decode[errResp](t, rr); got.Error.Code != "RATE_LIMITED" {
		t.Fatalf("code=%q", got.Error.Code)
	}
	if rr := h.do(t, http.MethodGet, "/healthz", nil); rr.Code != http.StatusOK {
		t.Fatalf("healthz status=%d, want 200", rr.Code)
	}
}
