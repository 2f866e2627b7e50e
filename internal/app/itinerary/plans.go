package itinerary

import (
	"context"
	"errors"
	"time"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/apperr"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/planrepo"
)

func (s *Service) CreatePlan(ctx context.Context, in CreatePlanInput) (domain.Plan, error) {
	now := s.clock.Now().UTC()
	p := domain.Plan{
		ID:               s.newPlanID(),
		Title:            domain.NormalizeHumanName(in.Title),
		StartDate:        dateOnlyPtr(in.StartDate),
		EndDate:          dateOnlyPtr(in.EndDate),
		BaseCity:         domain.NormalizeHumanName(in.BaseCity),
		AllowCrossBorder: in.AllowCrossBorder,
		Currency:         domain.NormalizeCurrency(in.Currency),
		Party:            in.Party,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if p.Currency == "" {
		p.Currency = s.currency
	}
	if p.Party == (domain.Party{}) {
		p.Party = domain.Party{Adults: 1}
	}
	if err := validatePlan(p); err != nil {
		return domain.Plan{}, err
	}
	if err := s.plans.Create(ctx, p); err != nil {
		return domain.Plan{}, apperr.Transport("create plan", err)
	}
	s.log.Info().Str("planId", string(p.ID)).Msg("plan created")
	return p, nil
}

func (s *Service) GetPlan(ctx context.Context, id domain.PlanID) (domain.Plan, error) {
	p, err := s.plans.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, planrepo.ErrNotFound) {
			return domain.Plan{}, planNotFound()
		}
		return domain.Plan{}, apperr.Transport("get plan", err)
	}
	return p, nil
}

// UpdatePlan applies a partial update. Days are not regenerated when the dates change.
func (s *Service) UpdatePlan(ctx context.Context, id domain.PlanID, in UpdatePlanInput) (domain.Plan, error) {
	p, err := s.GetPlan(ctx, id)
	if err != nil {
		return domain.Plan{}, err
	}

	if in.Title.IsSpecified() {
		if in.Title.IsNull() {
			return domain.Plan{}, apperr.Validation("VALIDATION_ERROR", "invalid title", map[string]any{"title": "must not be null"})
		}
		p.Title = domain.NormalizeHumanName(in.Title.Value())
	}
	if in.StartDate.IsSpecified() {
		p.StartDate = nil
		if !in.StartDate.IsNull() {
			v := domain.DateOnly(in.StartDate.Value())
			p.StartDate = &v
		}
	}
	if in.EndDate.IsSpecified() {
		p.EndDate = nil
		if !in.EndDate.IsNull() {
			v := domain.DateOnly(in.EndDate.Value())
			p.EndDate = &v
		}
	}
	if in.BaseCity.IsSpecified() {
		p.BaseCity = ""
		if !in.BaseCity.IsNull() {
			p.BaseCity = domain.NormalizeHumanName(in.BaseCity.Value())
		}
	}
	if in.AllowCrossBorder.IsSpecified() {
		p.AllowCrossBorder = !in.AllowCrossBorder.IsNull() && in.AllowCrossBorder.Value()
	}
	if in.Currency.IsSpecified() {
		p.Currency = s.currency
		if !in.Currency.IsNull() {
			p.Currency = domain.NormalizeCurrency(in.Currency.Value())
		}
	}
	if in.Party.IsSpecified() {
		if in.Party.IsNull() {
			return domain.Plan{}, apperr.Validation("VALIDATION_ERROR", "invalid party", map[string]any{"party": "must not be null"})
		}
		p.Party = in.Party.Value()
	}

	if err := validatePlan(p); err != nil {
		return domain.Plan{}, err
	}
	p.UpdatedAt = s.clock.Now().UTC()
	if err := s.plans.Save(ctx, p); err != nil {
		if errors.Is(err, planrepo.ErrNotFound) {
			return domain.Plan{}, planNotFound()
		}
		return domain.Plan{}, apperr.Transport("save plan", err)
	}
	return p, nil
}

// DeletePlan removes the plan with its days, their items and any party override.
func (s *Service) DeletePlan(ctx context.Context, id domain.PlanID) error {
	days, err := s.listDays(ctx, id)
	if err != nil {
		return err
	}
	if err := s.items.DeleteByDays(ctx, dayIDs(days)); err != nil {
		return apperr.Transport("delete plan items", err)
	}
	if err := s.plans.Delete(ctx, id); err != nil {
		if errors.Is(err, planrepo.ErrNotFound) {
			return planNotFound()
		}
		return apperr.Transport("delete plan", err)
	}
	if err := s.overrides.Delete(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("planId", string(id)).Msg("party override not cleared")
	}
	s.log.Info().Str("planId", string(id)).Int("days", len(days)).Msg("plan deleted")
	return nil
}

// GenerateDays creates one day per calendar date of the plan's date range, numbered from 1.
// Existing days and their items are deleted first, which requires confirm.
func (s *Service) GenerateDays(ctx context.Context, planID domain.PlanID, confirm bool) ([]domain.PlanDay, error) {
	p, err := s.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if p.StartDate == nil || p.EndDate == nil {
		return nil, apperr.Validation("PLAN_DATES_REQUIRED", "plan start and end dates are required", map[string]any{
			"startDate": p.StartDate == nil,
			"endDate":   p.EndDate == nil,
		})
	}
	span := domain.DaySpan(*p.StartDate, *p.EndDate)
	if span == 0 {
		return nil, apperr.Validation("VALIDATION_ERROR", "invalid date range", map[string]any{"endDate": "must not be before startDate"})
	}
	if span > MaxPlanDays {
		return nil, apperr.Validation("PLAN_TOO_LONG", "plan spans too many days", map[string]any{"days": span, "max": MaxPlanDays})
	}
	dates := domain.DaysInRange(*p.StartDate, *p.EndDate)

	existing, err := s.listDays(ctx, planID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		if !confirm {
			return nil, apperr.Validation("REGENERATION_NOT_CONFIRMED", "regenerating days deletes every existing item", map[string]any{"existingDays": len(existing)})
		}
		if err := s.items.DeleteByDays(ctx, dayIDs(existing)); err != nil {
			return nil, apperr.Transport("delete day items", err)
		}
	}

	now := s.clock.Now().UTC()
	days := make([]domain.PlanDay, 0, len(dates))
	for i, d := range dates {
		date := d
		days = append(days, domain.PlanDay{
			ID:        s.newDayID(),
			PlanID:    planID,
			DayIndex:  i + 1,
			Date:      &date,
			CreatedAt: now,
		})
	}
	if err := s.plans.ReplaceDays(ctx, planID, days); err != nil {
		if errors.Is(err, planrepo.ErrNotFound) {
			return nil, planNotFound()
		}
		return nil, apperr.Transport("replace days", err)
	}
	s.log.Info().Str("planId", string(planID)).Int("days", len(days)).Int("replaced", len(existing)).Msg("days generated")
	return days, nil
}

// LoadBoard reads the plan, its days in index order and every item of those days in one batch.
func (s *Service) LoadBoard(ctx context.Context, planID domain.PlanID) (domain.Board, error) {
	p, err := s.GetPlan(ctx, planID)
	if err != nil {
		return domain.Board{}, err
	}
	days, err := s.plans.ListDays(ctx, planID)
	if err != nil {
		return domain.Board{}, apperr.Transport("list days", err)
	}
	b := domain.Board{Plan: p, Days: days, Items: make(map[domain.DayID][]domain.PlanItem, len(days))}
	if len(days) == 0 {
		return b, nil
	}
	items, err := s.items.ListByDays(ctx, dayIDs(days))
	if err != nil {
		return domain.Board{}, apperr.Transport("list items", err)
	}
	for _, it := range items {
		b.Items[it.DayID] = append(b.Items[it.DayID], it)
	}
	return b, nil
}

func (s *Service) listDays(ctx context.Context, planID domain.PlanID) ([]domain.PlanDay, error) {
	if _, err := s.GetPlan(ctx, planID); err != nil {
		return nil, err
	}
	days, err := s.plans.ListDays(ctx, planID)
	if err != nil {
		return nil, apperr.Transport("list days", err)
	}
	return days, nil
}

func validatePlan(p domain.Plan) error {
	details := map[string]any{}
	if p.Title == "" {
		details["title"] = "must be non-empty"
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		details["endDate"] = "must not be before startDate"
	}
	if !p.Party.Valid() {
		details["party"] = "adults and children must be non-negative with at least one traveler"
	}
	if len(p.Currency) != 3 {
		details["currency"] = "must be a 3-letter ISO 4217 code"
	}
	if len(details) > 0 {
		return apperr.Validation("VALIDATION_ERROR", "invalid plan", details)
	}
	return nil
}

func planNotFound() error {
	return apperr.NotFound("PLAN_NOT_FOUND", "plan not found")
}

func dayIDs(days []domain.PlanDay) []domain.DayID {
	out := make([]domain.DayID, 0, len(days))
	for _, d := range days {
		out = append(out, d.ID)
	}
	return out
}

func dateOnlyPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := domain.DateOnly(*t)
	return &v
}
