package planrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/Overland-East-Bay/itinerary-planner-api/internal/adapters/postgres"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/planrepo"
)

// Repo is a Postgres implementation of planrepo.Repository.
// Day deletion cascades to items and ranges through foreign keys.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, p domain.Plan) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(p.ID))
	if err != nil {
		return fmt.Errorf("invalid plan id: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO plans (
			id,
			title,
			start_date,
			end_date,
			base_city,
			allow_cross_border,
			currency,
			adults,
			children,
			created_at,
			updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		id,
		p.Title,
		postgres.DateParam(p.StartDate),
		postgres.DateParam(p.EndDate),
		p.BaseCity,
		p.AllowCrossBorder,
		p.Currency,
		p.Party.Adults,
		p.Party.Children,
		p.CreatedAt.UTC(),
		p.UpdatedAt.UTC(),
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return planrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) Save(ctx context.Context, p domain.Plan) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(p.ID))
	if err != nil {
		return planrepo.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE plans
		SET title = $2,
		    start_date = $3,
		    end_date = $4,
		    base_city = $5,
		    allow_cross_border = $6,
		    currency = $7,
		    adults = $8,
		    children = $9,
		    updated_at = $10
		WHERE id = $1
	`,
		id,
		p.Title,
		postgres.DateParam(p.StartDate),
		postgres.DateParam(p.EndDate),
		p.BaseCity,
		p.AllowCrossBorder,
		p.Currency,
		p.Party.Adults,
		p.Party.Children,
		p.UpdatedAt.UTC(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return planrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.PlanID) (domain.Plan, error) {
	if r.pool == nil {
		return domain.Plan{}, errors.New("nil postgres pool")
	}
	planUUID, err := uuid.Parse(string(id))
	if err != nil {
		return domain.Plan{}, planrepo.ErrNotFound
	}
	var (
		p         domain.Plan
		extID     uuid.UUID
		startDate pgtype.Date
		endDate   pgtype.Date
	)
	err = r.pool.QueryRow(ctx, `
		SELECT id, title, start_date, end_date, base_city, allow_cross_border, currency,
		       adults, children, created_at, updated_at
		FROM plans
		WHERE id = $1
	`, planUUID).Scan(
		&extID,
		&p.Title,
		&startDate,
		&endDate,
		&p.BaseCity,
		&p.AllowCrossBorder,
		&p.Currency,
		&p.Party.Adults,
		&p.Party.Children,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Plan{}, planrepo.ErrNotFound
		}
		return domain.Plan{}, err
	}
	p.ID = domain.PlanID(extID.String())
	p.StartDate = postgres.DateValue(startDate)
	p.EndDate = postgres.DateValue(endDate)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func (r *Repo) Delete(ctx context.Context, id domain.PlanID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	planUUID, err := uuid.Parse(string(id))
	if err != nil {
		return planrepo.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM plans WHERE id = $1`, planUUID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return planrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) ListDays(ctx context.Context, planID domain.PlanID) ([]domain.PlanDay, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	planUUID, err := uuid.Parse(string(planID))
	if err != nil {
		return []domain.PlanDay{}, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, plan_id, day_index, date, city, notes, created_at
		FROM plan_days
		WHERE plan_id = $1
		ORDER BY day_index ASC
	`, planUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.PlanDay, 0)
	for rows.Next() {
		d, err := scanDay(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *Repo) GetDay(ctx context.Context, id domain.DayID) (domain.PlanDay, error) {
	if r.pool == nil {
		return domain.PlanDay{}, errors.New("nil postgres pool")
	}
	dayUUID, err := uuid.Parse(string(id))
	if err != nil {
		return domain.PlanDay{}, planrepo.ErrDayNotFound
	}
	row := r.pool.QueryRow(ctx, `
		SELECT id, plan_id, day_index, date, city, notes, created_at
		FROM plan_days
		WHERE id = $1
	`, dayUUID)
	d, err := scanDay(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PlanDay{}, planrepo.ErrDayNotFound
		}
		return domain.PlanDay{}, err
	}
	return d, nil
}

func (r *Repo) ReplaceDays(ctx context.Context, planID domain.PlanID, days []domain.PlanDay) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	planUUID, err := uuid.Parse(string(planID))
	if err != nil {
		return planrepo.ErrNotFound
	}
	ids := make([]uuid.UUID, 0, len(days))
	for _, d := range days {
		id, err := uuid.Parse(string(d.ID))
		if err != nil {
			return fmt.Errorf("invalid day id: %w", err)
		}
		ids = append(ids, id)
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var locked uuid.UUID
		if err := tx.QueryRow(ctx, `SELECT id FROM plans WHERE id = $1 FOR UPDATE`, planUUID).Scan(&locked); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return planrepo.ErrNotFound
			}
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM plan_days WHERE plan_id = $1`, planUUID); err != nil {
			return err
		}

		b := &pgx.Batch{}
		for i, d := range days {
			b.Queue(`
				INSERT INTO plan_days (id, plan_id, day_index, date, city, notes, created_at)
				VALUES ($1,$2,$3,$4,$5,$6,$7)
			`, ids[i], planUUID, d.DayIndex, postgres.DateParam(d.Date), d.City, d.Notes, d.CreatedAt.UTC())
		}
		br := tx.SendBatch(ctx, b)
		for range days {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
					return planrepo.ErrAlreadyExists
				}
				return err
			}
		}
		return br.Close()
	})
}

func (r *Repo) UpdateDay(ctx context.Context, d domain.PlanDay) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	dayUUID, err := uuid.Parse(string(d.ID))
	if err != nil {
		return planrepo.ErrDayNotFound
	}
	tag, err := r.pool.Exec(ctx, `UPDATE plan_days SET city = $2, notes = $3 WHERE id = $1`, dayUUID, d.City, d.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return planrepo.ErrDayNotFound
	}
	return nil
}

func scanDay(row pgx.Row) (domain.PlanDay, error) {
	var (
		d         domain.PlanDay
		id        uuid.UUID
		planID    uuid.UUID
		date      pgtype.Date
		createdAt time.Time
	)
	if err := row.Scan(&id, &planID, &d.DayIndex, &date, &d.City, &d.Notes, &createdAt); err != nil {
		return domain.PlanDay{}, err
	}
	d.ID = domain.DayID(id.String())
	d.PlanID = domain.PlanID(planID.String())
	d.Date = postgres.DateValue(date)
	d.CreatedAt = createdAt.UTC()
	return d, nil
}
