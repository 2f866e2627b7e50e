package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/idempotency"
)

// Store is a Postgres implementation of idempotency.Store.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Get(ctx context.Context, fp idempotency.Fingerprint) (idempotency.Record, bool, error) {
	if s.pool == nil {
		return idempotency.Record{}, false, errors.New("nil postgres pool")
	}
	planUUID, err := uuid.Parse(string(fp.PlanID))
	if err != nil {
		return idempotency.Record{}, false, nil
	}
	row := s.pool.QueryRow(ctx, `
		SELECT body_hash, booking_id, created_at
		FROM idempotency_keys
		WHERE idempotency_key = $1
		  AND plan_id = $2
		  AND kind = $3
		  AND target = $4
	`,
		string(fp.Key),
		planUUID,
		fp.Kind,
		fp.Target,
	)
	var rec idempotency.Record
	if err := row.Scan(&rec.BodyHash, &rec.BookingID, &rec.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return idempotency.Record{}, false, nil
		}
		return idempotency.Record{}, false, err
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, true, nil
}

func (s *Store) Put(ctx context.Context, fp idempotency.Fingerprint, rec idempotency.Record) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	planUUID, err := uuid.Parse(string(fp.PlanID))
	if err != nil {
		return err
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO idempotency_keys (
			idempotency_key,
			plan_id,
			kind,
			target,
			body_hash,
			booking_id,
			created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (idempotency_key, plan_id, kind, target)
		DO UPDATE SET
			body_hash = EXCLUDED.body_hash,
			booking_id = EXCLUDED.booking_id,
			created_at = EXCLUDED.created_at
	`,
		string(fp.Key),
		planUUID,
		fp.Kind,
		fp.Target,
		rec.BodyHash,
		rec.BookingID,
		createdAt.UTC(),
	)
	return err
}
