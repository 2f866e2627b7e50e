// Package ranges manages hotel stays and car rentals that span consecutive plan days.
//
// A range is materialised as one item per covered day, every row carrying identical range
// metadata under one shared range id. Rows are written and removed as one unit.
package ranges

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/apperr"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/itinerary"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/pricing"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/clock"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/itemrepo"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/planrepo"
)

// Sequencer issues display sort orders for new items.
type Sequencer interface {
	NextSortOrder() int64
}

type Service struct {
	plans planrepo.Repository
	items itemrepo.Repository
	seq   Sequencer
	clock clock.Clock
	log   zerolog.Logger

	newRangeID func() domain.RangeID
	newItemID  func() domain.ItemID
}

func NewService(plans planrepo.Repository, items itemrepo.Repository, seq Sequencer, clk clock.Clock) *Service {
	return &Service{
		plans:      plans,
		items:      items,
		seq:        seq,
		clock:      clk,
		log:        zerolog.Nop(),
		newRangeID: func() domain.RangeID { return domain.RangeID(uuid.NewString()) },
		newItemID:  func() domain.ItemID { return domain.ItemID(uuid.NewString()) },
	}
}

// WithLogger sets the service logger and returns the service.
func (s *Service) WithLogger(l zerolog.Logger) *Service {
	s.log = l.With().Str("component", "ranges").Logger()
	return s
}

// SetNewIDsForTest overrides ID generation for deterministic tests. Nil functions are ignored.
// It should not be used in production code.
func (s *Service) SetNewIDsForTest(rangeID func() domain.RangeID, itemID func() domain.ItemID) {
	if rangeID != nil {
		s.newRangeID = rangeID
	}
	if itemID != nil {
		s.newItemID = itemID
	}
}

type AddRangeInput struct {
	// StartDayID and EndDayID may be given in either order.
	StartDayID domain.DayID
	EndDayID   domain.DayID
	Type       domain.ItemType

	CatalogRef string
	Snapshot   domain.Snapshot
	Notes      string

	// Optional explicit dates; when blank, the covered days' dates apply.
	StartDate *time.Time
	EndDate   *time.Time
}

// Range is a created or listed range with its per-day rows in day order.
type Range struct {
	ID    domain.RangeID
	Type  domain.ItemType
	Meta  domain.RangeMeta
	Items []domain.PlanItem
}

// AddRange creates one row per day between the two days inclusive, sharing a fresh range id.
func (s *Service) AddRange(ctx context.Context, in AddRangeInput) (Range, error) {
	if !in.Type.RangeLinked() {
		return Range{}, apperr.Validation("INVALID_RANGE_TYPE", "only hotel and car items span days", map[string]any{"type": string(in.Type)})
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return Range{}, apperr.Validation("VALIDATION_ERROR", "invalid range dates", map[string]any{"endDate": "must not be before startDate"})
	}

	first, err := s.getDay(ctx, in.StartDayID)
	if err != nil {
		return Range{}, err
	}
	last, err := s.getDay(ctx, in.EndDayID)
	if err != nil {
		return Range{}, err
	}
	if first.PlanID != last.PlanID {
		return Range{}, apperr.Validation("VALIDATION_ERROR", "range days belong to different plans", map[string]any{
			"startDayId": string(first.ID),
			"endDayId":   string(last.ID),
		})
	}
	if last.DayIndex < first.DayIndex {
		first, last = last, first
	}

	span := last.DayIndex - first.DayIndex + 1
	if in.Type == domain.ItemTypeCar && span < pricing.CarMinimumDays {
		return Range{}, apperr.Validation("CAR_MINIMUM_STAY", "car rentals cover at least 3 days", map[string]any{
			"days":    span,
			"minimum": pricing.CarMinimumDays,
		})
	}

	ref, snap := itinerary.ResolveCatalogRef(in.CatalogRef, in.Snapshot)
	if ref == nil && snap.SourceID == "" && snap.Title == "" {
		return Range{}, apperr.Validation("CATALOG_REF_REQUIRED", "range needs a catalog reference or a title", map[string]any{
			"catalogRef": "must be set when the snapshot has no title",
		})
	}

	covered, err := s.coveredDays(ctx, first, last)
	if err != nil {
		return Range{}, err
	}

	meta := domain.RangeMeta{
		RangeID:       s.newRangeID(),
		StartDayID:    first.ID,
		StartDayIndex: first.DayIndex,
		EndDayID:      last.ID,
		EndDayIndex:   last.DayIndex,
		StartDate:     dateOnlyPtr(in.StartDate),
		EndDate:       dateOnlyPtr(in.EndDate),
	}
	var details domain.ItemDetails = domain.HotelDetails{Range: meta, Notes: in.Notes}
	if in.Type == domain.ItemTypeCar {
		details = domain.CarDetails{Range: meta, Notes: in.Notes}
	}

	now := s.clock.Now().UTC()
	rows := make([]domain.PlanItem, 0, len(covered))
	for _, d := range covered {
		it := domain.PlanItem{
			ID:        s.newItemID(),
			DayID:     d.ID,
			Type:      in.Type,
			Snapshot:  snap,
			Details:   details,
			SortOrder: s.seq.NextSortOrder(),
			CreatedAt: now,
		}
		if ref != nil {
			r := *ref
			it.CatalogRef = &r
		}
		rows = append(rows, it)
	}

	rg := itemrepo.Range{ID: meta.RangeID, PlanID: first.PlanID, Type: in.Type, Meta: meta}
	if err := s.items.InsertRange(ctx, rg, rows); err != nil {
		var be *itemrepo.BatchError
		if errors.As(err, &be) {
			s.logPartial("insert", meta.RangeID, be.Requested, be.Applied)
			return Range{}, apperr.PartialBatch("range insert partially applied", be.Requested, be.Applied, map[string]any{"rangeId": string(meta.RangeID)})
		}
		return Range{}, apperr.Transport("insert range", err)
	}

	// Verify the store kept every row.
	stored, err := s.items.ListByRange(ctx, meta.RangeID)
	if err != nil {
		return Range{}, apperr.Transport("verify range", err)
	}
	if len(stored) != len(rows) {
		s.logPartial("insert", meta.RangeID, len(rows), len(stored))
		return Range{}, apperr.PartialBatch("range insert partially applied", len(rows), len(stored), map[string]any{"rangeId": string(meta.RangeID)})
	}

	s.log.Info().Str("rangeId", string(meta.RangeID)).Str("type", string(in.Type)).Int("days", span).Msg("range added")
	return Range{ID: meta.RangeID, Type: in.Type, Meta: meta, Items: stored}, nil
}

// DeleteRange removes every row of the range and returns how many were removed.
// Deleting a range that has no rows is a no-op.
func (s *Service) DeleteRange(ctx context.Context, id domain.RangeID) (int, error) {
	rows, err := s.items.ListByRange(ctx, id)
	if err != nil {
		return 0, apperr.Transport("list range", err)
	}
	removed, err := s.items.DeleteByRange(ctx, id)
	if err != nil {
		var be *itemrepo.BatchError
		if errors.As(err, &be) {
			s.logPartial("delete", id, be.Requested, be.Applied)
			return be.Applied, apperr.PartialBatch("range delete partially applied", be.Requested, be.Applied, map[string]any{"rangeId": string(id)})
		}
		return 0, apperr.Transport("delete range", err)
	}
	if removed < len(rows) {
		s.logPartial("delete", id, len(rows), removed)
		return removed, apperr.PartialBatch("range delete partially applied", len(rows), removed, map[string]any{"rangeId": string(id)})
	}
	if removed > 0 {
		s.log.Info().Str("rangeId", string(id)).Int("rows", removed).Msg("range deleted")
	}
	return removed, nil
}

// ListRange returns the rows of a range in day order.
func (s *Service) ListRange(ctx context.Context, id domain.RangeID) (Range, error) {
	rows, err := s.items.ListByRange(ctx, id)
	if err != nil {
		return Range{}, apperr.Transport("list range", err)
	}
	if len(rows) == 0 {
		return Range{}, apperr.NotFound("RANGE_NOT_FOUND", "range not found")
	}
	meta, _ := rows[0].Range()
	if err := s.sortByDayIndex(ctx, rows); err != nil {
		return Range{}, err
	}
	return Range{ID: id, Type: rows[0].Type, Meta: meta, Items: rows}, nil
}

func (s *Service) getDay(ctx context.Context, id domain.DayID) (domain.PlanDay, error) {
	d, err := s.plans.GetDay(ctx, id)
	if err != nil {
		if errors.Is(err, planrepo.ErrDayNotFound) {
			return domain.PlanDay{}, apperr.Validation("DAY_NOT_FOUND", "day does not exist", map[string]any{"dayId": string(id)})
		}
		return domain.PlanDay{}, apperr.Transport("get day", err)
	}
	return d, nil
}

// coveredDays returns the plan's days from first to last inclusive.
func (s *Service) coveredDays(ctx context.Context, first, last domain.PlanDay) ([]domain.PlanDay, error) {
	all, err := s.plans.ListDays(ctx, first.PlanID)
	if err != nil {
		return nil, apperr.Transport("list days", err)
	}
	out := make([]domain.PlanDay, 0, last.DayIndex-first.DayIndex+1)
	for _, d := range all {
		if d.DayIndex >= first.DayIndex && d.DayIndex <= last.DayIndex {
			out = append(out, d)
		}
	}
	if len(out) != last.DayIndex-first.DayIndex+1 {
		return nil, apperr.Validation("DAYS_NOT_CONTIGUOUS", "plan days are not contiguous", map[string]any{
			"startDayIndex": first.DayIndex,
			"endDayIndex":   last.DayIndex,
		})
	}
	return out, nil
}

func (s *Service) logPartial(op string, id domain.RangeID, requested, applied int) {
	s.log.Warn().
		Str("op", op).
		Str("rangeId", string(id)).
		Int("requested", requested).
		Int("applied", applied).
		Msg("range write partially applied")
}

// sortByDayIndex orders rows by the index of the day they sit on. Sort orders follow display
// order, which a cross-day drag may have changed.
func (s *Service) sortByDayIndex(ctx context.Context, rows []domain.PlanItem) error {
	first, err := s.plans.GetDay(ctx, rows[0].DayID)
	if err != nil {
		return apperr.Transport("get day", err)
	}
	days, err := s.plans.ListDays(ctx, first.PlanID)
	if err != nil {
		return apperr.Transport("list days", err)
	}
	index := make(map[domain.DayID]int, len(days))
	for _, d := range days {
		index[d.ID] = d.DayIndex
	}
	sort.SliceStable(rows, func(i, j int) bool { return index[rows[i].DayID] < index[rows[j].DayID] })
	return nil
}

func dateOnlyPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := domain.DateOnly(*t)
	return &v
}
