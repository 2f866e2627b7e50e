// Package booking compiles a plan into concrete booking requests and submits them.
package booking

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/apperr"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/costs"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/bookingsink"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/catalog"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/clock"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/idempotency"
)

type Compiler struct {
	plans  costs.PlanReader
	offers *costs.Service
	sink   bookingsink.Sink
	idem   idempotency.Store
	clock  clock.Clock
	log    zerolog.Logger

	validate *validator.Validate
}

func NewCompiler(plans costs.PlanReader, cat catalog.Reader, sink bookingsink.Sink, idem idempotency.Store, clk clock.Clock) *Compiler {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return &Compiler{
		plans:    plans,
		offers:   costs.NewService(plans, cat),
		sink:     sink,
		idem:     idem,
		clock:    clk,
		log:      zerolog.Nop(),
		validate: v,
	}
}

// WithLogger sets the compiler logger and returns the compiler.
func (c *Compiler) WithLogger(l zerolog.Logger) *Compiler {
	c.log = l.With().Str("component", "booking").Logger()
	c.offers.WithLogger(l)
	return c
}

// Compile builds one submission per trip occurrence, hotel range and car range of the plan.
// Nothing is written.
func (c *Compiler) Compile(ctx context.Context, planID domain.PlanID, req Request) ([]Submission, error) {
	b, err := c.plans.LoadBoard(ctx, planID)
	if err != nil {
		return nil, err
	}
	party, err := c.plans.ResolveParty(ctx, planID)
	if err != nil {
		return nil, err
	}

	sels := costs.Selections(b)
	if len(sels) == 0 {
		return nil, apperr.Validation("NOTHING_TO_BOOK", "plan has no trips, hotels or cars", nil)
	}
	customer := normalizeCustomer(req.Customer)
	if err := c.validateCustomer(customer, hasCar(sels)); err != nil {
		return nil, err
	}

	in := c.offers.LoadOffers(ctx, sels)
	in.Board, in.Party, in.Currency = b, party, b.Plan.Currency
	totals := make(map[string]costs.Line, len(sels))
	for _, l := range costs.Compute(in).Lines {
		totals[l.Key] = l
	}

	out := make([]Submission, 0, len(sels))
	undated := map[string]any{}
	for _, sel := range sels {
		s := Submission{
			Key:            sel.Key,
			ItemID:         sel.Item.ID,
			CatalogRef:     sel.Item.CatalogRef,
			Title:          title(sel, in),
			Party:          party,
			EstimatedTotal: totals[sel.Key].Total,
			Currency:       b.Plan.Currency,
			Customer:       customer,
			Notes:          mergeNotes(sel.Item.Notes(), req.Note),
		}
		var ok bool
		switch sel.Type {
		case domain.ItemTypeTrip:
			s.Kind = bookingsink.KindTrip
			s.Days = 1
			if d, _ := sel.Item.Details.(domain.TripDetails); d.Days > 0 {
				s.Days = d.Days
			}
			s.StartDate, ok = dayDate(b, sel.Day)
			s.EndDate = s.StartDate.AddDate(0, 0, s.Days-1)
		case domain.ItemTypeHotel:
			s.Kind = bookingsink.KindHotel
			s.Nights = sel.Nights()
			s.StartDate, ok = rangeStart(b, sel.Range)
			s.EndDate = s.StartDate.AddDate(0, 0, sel.Nights())
			if sel.Range.EndDate != nil && sel.Range.EndDate.After(s.StartDate) {
				s.EndDate = *sel.Range.EndDate
			}
		case domain.ItemTypeCar:
			s.Kind = bookingsink.KindCar
			s.Days = sel.Span()
			s.StartDate, ok = rangeStart(b, sel.Range)
			s.EndDate = s.StartDate.AddDate(0, 0, sel.Span()-1)
			if sel.Range.EndDate != nil && !sel.Range.EndDate.Before(s.StartDate) {
				s.EndDate = *sel.Range.EndDate
			} else if end, found := b.DayAt(sel.Range.EndDayIndex); found && end.Date != nil {
				s.EndDate = *end.Date
			}
		}
		if !ok {
			undated[sel.Key] = "no date on the range or its days"
		}
		out = append(out, s)
	}
	if len(undated) > 0 {
		return nil, apperr.Validation("PLAN_DATES_REQUIRED", "bookings need dated days", undated)
	}
	return out, nil
}

// Submit compiles the plan and writes each submission independently through the sink.
// Submissions accepted under the same idempotency key are replayed, not re-sent. Reusing a
// key with a changed submission fails with IDEMPOTENCY_KEY_REUSE before anything is sent.
func (c *Compiler) Submit(ctx context.Context, planID domain.PlanID, req Request) (Result, error) {
	subs, err := c.Compile(ctx, planID, req)
	if err != nil {
		return Result{}, err
	}

	type prior struct {
		rec   idempotency.Record
		found bool
	}
	fps := make([]idempotency.Fingerprint, len(subs))
	hashes := make([]string, len(subs))
	priors := make([]prior, len(subs))
	keyed := req.IdempotencyKey != ""
	if keyed {
		conflicts := map[string]any{}
		for i, s := range subs {
			fps[i], hashes[i] = fingerprint(planID, req.IdempotencyKey, s)
			rec, found, err := c.idem.Get(ctx, fps[i])
			if err != nil {
				c.log.Warn().Err(err).Str("key", s.Key).Msg("idempotency lookup failed")
				continue
			}
			if found && rec.BodyHash != hashes[i] {
				conflicts[s.Key] = "submission changed since the key was first used"
				continue
			}
			priors[i] = prior{rec: rec, found: found}
		}
		if len(conflicts) > 0 {
			return Result{}, apperr.Conflict("IDEMPOTENCY_KEY_REUSE", "idempotency key reused with a different request", conflicts)
		}
	}

	var res Result
	for i, s := range subs {
		if priors[i].found {
			res.Replayed = append(res.Replayed, Outcome{Submission: s, BookingID: bookingsink.BookingID(priors[i].rec.BookingID)})
			continue
		}

		id, err := c.sink.Submit(ctx, toRequest(planID, s))
		if err != nil {
			c.log.Warn().Err(err).Str("planId", string(planID)).Str("kind", string(s.Kind)).Str("key", s.Key).Msg("booking submission failed")
			if !errors.Is(err, bookingsink.ErrRejected) {
				err = apperr.Transport("submit booking", err)
			}
			res.Failed = append(res.Failed, Outcome{Submission: s, Err: err})
			continue
		}
		if keyed {
			rec := idempotency.Record{BodyHash: hashes[i], BookingID: string(id), CreatedAt: c.clock.Now().UTC()}
			if err := c.idem.Put(ctx, fps[i], rec); err != nil {
				c.log.Warn().Err(err).Str("key", s.Key).Msg("idempotency record not stored")
			}
		}
		res.Accepted = append(res.Accepted, Outcome{Submission: s, BookingID: id})
	}

	c.log.Info().
		Str("planId", string(planID)).
		Int("accepted", len(res.Accepted)).
		Int("replayed", len(res.Replayed)).
		Int("failed", len(res.Failed)).
		Msg("booking batch submitted")
	return res, nil
}

func (c *Compiler) validateCustomer(cu Customer, needsCountry bool) error {
	details := map[string]any{}
	if err := c.validate.Struct(cu); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return apperr.Validation("VALIDATION_ERROR", "invalid customer", map[string]any{"customer": err.Error()})
		}
		for _, fe := range verrs {
			details[fe.Field()] = fe.Tag()
		}
	}
	if needsCountry && cu.Country == "" {
		details["country"] = "required"
	}
	if len(details) > 0 {
		return apperr.Validation("VALIDATION_ERROR", "invalid customer", details)
	}
	return nil
}

// fingerprint identifies the submission under key and hashes its body.
func fingerprint(planID domain.PlanID, key idempotency.Key, s Submission) (idempotency.Fingerprint, string) {
	fp := idempotency.Fingerprint{Key: key, PlanID: planID, Kind: string(s.Kind), Target: s.Key}
	body, err := json.Marshal(s)
	if err != nil {
		return fp, ""
	}
	sum := sha256.Sum256(body)
	return fp, hex.EncodeToString(sum[:])
}

func toRequest(planID domain.PlanID, s Submission) bookingsink.Request {
	return bookingsink.Request{
		Kind:           s.Kind,
		PlanID:         planID,
		Key:            s.Key,
		CatalogRef:     s.CatalogRef,
		Title:          s.Title,
		StartDate:      s.StartDate,
		EndDate:        s.EndDate,
		Nights:         s.Nights,
		Days:           s.Days,
		Party:          s.Party,
		EstimatedTotal: s.EstimatedTotal,
		Currency:       s.Currency,
		Customer: bookingsink.Customer{
			Name:    s.Customer.Name,
			Email:   s.Customer.Email,
			Phone:   s.Customer.Phone,
			Country: s.Customer.Country,
		},
		Notes: s.Notes,
	}
}

func normalizeCustomer(c Customer) Customer {
	return Customer{
		Name:    domain.NormalizeHumanName(c.Name),
		Email:   strings.TrimSpace(c.Email),
		Phone:   strings.TrimSpace(c.Phone),
		Country: strings.ToUpper(strings.TrimSpace(c.Country)),
	}
}

func hasCar(sels []costs.Selection) bool {
	for _, s := range sels {
		if s.Type == domain.ItemTypeCar {
			return true
		}
	}
	return false
}

func title(sel costs.Selection, in costs.Input) string {
	if t := strings.TrimSpace(sel.Item.Snapshot.Title); t != "" {
		return t
	}
	ref := sel.Item.CatalogRef
	if ref == nil {
		return sel.Item.Snapshot.SourceID
	}
	switch sel.Type {
	case domain.ItemTypeTrip:
		return in.Trips[*ref].Title
	case domain.ItemTypeHotel:
		return in.Hotels[*ref].Name
	case domain.ItemTypeCar:
		return in.Cars[*ref].Model
	}
	return ""
}

func mergeNotes(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}

// dayDate returns the day's date, falling back to the plan start offset by the day index.
func dayDate(b domain.Board, d domain.PlanDay) (time.Time, bool) {
	if d.Date != nil {
		return *d.Date, true
	}
	if b.Plan.StartDate != nil && d.DayIndex > 0 {
		return b.Plan.StartDate.AddDate(0, 0, d.DayIndex-1), true
	}
	return time.Time{}, false
}

// rangeStart returns the range's stored start date, falling back to its first day's date.
func rangeStart(b domain.Board, r domain.RangeMeta) (time.Time, bool) {
	if r.StartDate != nil {
		return *r.StartDate, true
	}
	if d, ok := b.DayAt(r.StartDayIndex); ok {
		return dayDate(b, d)
	}
	return time.Time{}, false
}
