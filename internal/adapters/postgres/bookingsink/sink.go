package bookingsink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/Overland-East-Bay/itinerary-planner-api/internal/adapters/postgres"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/bookingsink"
)

// Sink writes booking requests into the booking_requests table, where the back office
// picks them up. Every accepted request starts in the pending status.
type Sink struct {
	pool *pgxpool.Pool
}

func NewSink(pool *pgxpool.Pool) *Sink {
	return &Sink{pool: pool}
}

func (s *Sink) Submit(ctx context.Context, r bookingsink.Request) (bookingsink.BookingID, error) {
	if s.pool == nil {
		return "", errors.New("nil postgres pool")
	}
	planUUID, err := uuid.Parse(string(r.PlanID))
	if err != nil {
		return "", fmt.Errorf("%w: invalid plan id", bookingsink.ErrRejected)
	}
	var ref pgtype.UUID
	if r.CatalogRef != nil {
		u, err := uuid.Parse(string(*r.CatalogRef))
		if err != nil {
			return "", fmt.Errorf("%w: invalid catalog ref", bookingsink.ErrRejected)
		}
		ref = pgtype.UUID{Bytes: u, Valid: true}
	}

	id := uuid.New()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO booking_requests (
			id,
			plan_id,
			kind,
			selection_key,
			catalog_ref,
			title,
			start_date,
			end_date,
			nights,
			days,
			adults,
			children,
			estimated_total,
			currency,
			customer_name,
			customer_email,
			customer_phone,
			customer_country,
			notes
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
	`,
		id,
		planUUID,
		string(r.Kind),
		r.Key,
		ref,
		r.Title,
		dateParam(r.StartDate),
		dateParam(r.EndDate),
		r.Nights,
		r.Days,
		r.Party.Adults,
		r.Party.Children,
		r.EstimatedTotal,
		r.Currency,
		r.Customer.Name,
		r.Customer.Email,
		r.Customer.Phone,
		r.Customer.Country,
		r.Notes,
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.CheckViolationCode {
			return "", fmt.Errorf("%w: %s", bookingsink.ErrRejected, pe.ConstraintName)
		}
		return "", err
	}
	return bookingsink.BookingID(id.String()), nil
}

func dateParam(t time.Time) pgtype.Date {
	if t.IsZero() {
		return pgtype.Date{}
	}
	return postgres.DateParam(&t)
}
