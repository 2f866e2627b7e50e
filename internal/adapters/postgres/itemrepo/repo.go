package itemrepo

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
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/itemrepo"
)

// Repo is a Postgres implementation of itemrepo.Repository.
//
// Ranges are first-class rows in plan_ranges; their per-day items reference them and are
// removed with them. Multi-row writes run in one transaction.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const selectItems = `
	SELECT id, day_id, item_type, catalog_ref, data, sort_order, created_at
	FROM plan_items
`

const orderItems = ` ORDER BY sort_order ASC, created_at ASC, id ASC`

const insertItem = `
	INSERT INTO plan_items (id, day_id, item_type, catalog_ref, range_id, data, sort_order, created_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`

func (r *Repo) Insert(ctx context.Context, it domain.PlanItem) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	args, err := insertArgs(it)
	if err != nil {
		return err
	}
	if _, err := r.pool.Exec(ctx, insertItem, args...); err != nil {
		return mapInsertErr(err)
	}
	return nil
}

func (r *Repo) InsertRange(ctx context.Context, rg itemrepo.Range, items []domain.PlanItem) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	rangeUUID, err := uuid.Parse(string(rg.ID))
	if err != nil {
		return fmt.Errorf("invalid range id: %w", err)
	}
	planUUID, err := uuid.Parse(string(rg.PlanID))
	if err != nil {
		return fmt.Errorf("invalid plan id: %w", err)
	}
	startDay, err := uuid.Parse(string(rg.Meta.StartDayID))
	if err != nil {
		return fmt.Errorf("invalid start day id: %w", err)
	}
	endDay, err := uuid.Parse(string(rg.Meta.EndDayID))
	if err != nil {
		return fmt.Errorf("invalid end day id: %w", err)
	}
	rows := make([][]any, 0, len(items))
	for _, it := range items {
		args, err := insertArgs(it)
		if err != nil {
			return err
		}
		rows = append(rows, args)
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO plan_ranges (
				id,
				plan_id,
				item_type,
				start_day_id,
				end_day_id,
				start_day_index,
				end_day_index,
				start_date,
				end_date
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		`,
			rangeUUID,
			planUUID,
			string(rg.Type),
			startDay,
			endDay,
			rg.Meta.StartDayIndex,
			rg.Meta.EndDayIndex,
			postgres.DateParam(rg.Meta.StartDate),
			postgres.DateParam(rg.Meta.EndDate),
		)
		if err != nil {
			return mapInsertErr(err)
		}

		b := &pgx.Batch{}
		for _, args := range rows {
			b.Queue(insertItem, args...)
		}
		br := tx.SendBatch(ctx, b)
		for range rows {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return mapInsertErr(err)
			}
		}
		return br.Close()
	})
}

func (r *Repo) GetByID(ctx context.Context, id domain.ItemID) (domain.PlanItem, error) {
	if r.pool == nil {
		return domain.PlanItem{}, errors.New("nil postgres pool")
	}
	itemUUID, err := uuid.Parse(string(id))
	if err != nil {
		return domain.PlanItem{}, itemrepo.ErrNotFound
	}
	it, err := scanItem(r.pool.QueryRow(ctx, selectItems+` WHERE id = $1`, itemUUID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PlanItem{}, itemrepo.ErrNotFound
		}
		return domain.PlanItem{}, err
	}
	return it, nil
}

func (r *Repo) ListByDays(ctx context.Context, dayIDs []domain.DayID) ([]domain.PlanItem, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	ids := parseIDs(dayIDs)
	if len(ids) == 0 {
		return []domain.PlanItem{}, nil
	}
	return r.list(ctx, selectItems+` WHERE day_id = ANY($1)`+orderItems, ids)
}

func (r *Repo) ListByRange(ctx context.Context, id domain.RangeID) ([]domain.PlanItem, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rangeUUID, err := uuid.Parse(string(id))
	if err != nil {
		return []domain.PlanItem{}, nil
	}
	return r.list(ctx, selectItems+` WHERE range_id = $1`+orderItems, rangeUUID)
}

func (r *Repo) UpdateData(ctx context.Context, it domain.PlanItem) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	itemUUID, err := uuid.Parse(string(it.ID))
	if err != nil {
		return itemrepo.ErrNotFound
	}
	data, err := domain.MarshalItemData(it.Snapshot, it.Details)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `UPDATE plan_items SET data = $2 WHERE id = $1`, itemUUID, data)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return itemrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) UpdatePositions(ctx context.Context, ps []itemrepo.Position) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	if len(ps) == 0 {
		return nil
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		b := &pgx.Batch{}
		for _, p := range ps {
			itemUUID, err := uuid.Parse(string(p.ItemID))
			if err != nil {
				return itemrepo.ErrNotFound
			}
			dayUUID, err := uuid.Parse(string(p.DayID))
			if err != nil {
				return fmt.Errorf("invalid day id: %w", err)
			}
			b.Queue(`UPDATE plan_items SET day_id = $2, sort_order = $3 WHERE id = $1`, itemUUID, dayUUID, p.SortOrder)
		}
		br := tx.SendBatch(ctx, b)
		for range ps {
			tag, err := br.Exec()
			if err == nil && tag.RowsAffected() == 0 {
				err = itemrepo.ErrNotFound
			}
			if err != nil {
				_ = br.Close()
				return err
			}
		}
		return br.Close()
	})
}

func (r *Repo) Delete(ctx context.Context, id domain.ItemID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	itemUUID, err := uuid.Parse(string(id))
	if err != nil {
		return itemrepo.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM plan_items WHERE id = $1`, itemUUID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return itemrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) DeleteByRange(ctx context.Context, id domain.RangeID) (int, error) {
	if r.pool == nil {
		return 0, errors.New("nil postgres pool")
	}
	rangeUUID, err := uuid.Parse(string(id))
	if err != nil {
		return 0, nil
	}
	var n int
	err = pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM plan_items WHERE range_id = $1`, rangeUUID)
		if err != nil {
			return err
		}
		n = int(tag.RowsAffected())
		_, err = tx.Exec(ctx, `DELETE FROM plan_ranges WHERE id = $1`, rangeUUID)
		return err
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (r *Repo) DeleteByDays(ctx context.Context, dayIDs []domain.DayID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	ids := parseIDs(dayIDs)
	if len(ids) == 0 {
		return nil
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM plan_items WHERE day_id = ANY($1)`, ids); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `DELETE FROM plan_ranges WHERE start_day_id = ANY($1) OR end_day_id = ANY($1)`, ids)
		return err
	})
}

func (r *Repo) list(ctx context.Context, query string, args ...any) ([]domain.PlanItem, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.PlanItem, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func insertArgs(it domain.PlanItem) ([]any, error) {
	itemUUID, err := uuid.Parse(string(it.ID))
	if err != nil {
		return nil, fmt.Errorf("invalid item id: %w", err)
	}
	dayUUID, err := uuid.Parse(string(it.DayID))
	if err != nil {
		return nil, fmt.Errorf("invalid day id: %w", err)
	}
	var ref pgtype.UUID
	if it.CatalogRef != nil {
		u, err := uuid.Parse(string(*it.CatalogRef))
		if err != nil {
			return nil, fmt.Errorf("invalid catalog ref: %w", err)
		}
		ref = pgtype.UUID{Bytes: u, Valid: true}
	}
	var rangeID pgtype.UUID
	if rm, ok := it.Range(); ok {
		u, err := uuid.Parse(string(rm.RangeID))
		if err != nil {
			return nil, fmt.Errorf("invalid range id: %w", err)
		}
		rangeID = pgtype.UUID{Bytes: u, Valid: true}
	}
	data, err := domain.MarshalItemData(it.Snapshot, it.Details)
	if err != nil {
		return nil, err
	}
	return []any{itemUUID, dayUUID, string(it.Type), ref, rangeID, data, it.SortOrder, it.CreatedAt.UTC()}, nil
}

func scanItem(row pgx.Row) (domain.PlanItem, error) {
	var (
		id        uuid.UUID
		dayID     uuid.UUID
		itemType  string
		ref       pgtype.UUID
		data      []byte
		sortOrder int64
		createdAt time.Time
	)
	if err := row.Scan(&id, &dayID, &itemType, &ref, &data, &sortOrder, &createdAt); err != nil {
		return domain.PlanItem{}, err
	}
	t := domain.ItemType(itemType)
	snap, details, err := domain.UnmarshalItemData(t, data)
	if err != nil {
		return domain.PlanItem{}, err
	}
	it := domain.PlanItem{
		ID:        domain.ItemID(id.String()),
		DayID:     domain.DayID(dayID.String()),
		Type:      t,
		Snapshot:  snap,
		Details:   details,
		SortOrder: sortOrder,
		CreatedAt: createdAt.UTC(),
	}
	if ref.Valid {
		v := domain.CatalogRef(uuid.UUID(ref.Bytes).String())
		it.CatalogRef = &v
	}
	return it, nil
}

func parseIDs(dayIDs []domain.DayID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(dayIDs))
	for _, id := range dayIDs {
		if u, err := uuid.Parse(string(id)); err == nil {
			out = append(out, u)
		}
	}
	return out
}

func mapInsertErr(err error) error {
	if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
		return itemrepo.ErrAlreadyExists
	}
	return err
}
