package itinerary

import (
	"context"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/apperr"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
)

// ResolveParty returns the party used for pricing and booking: a stored override with at least
// one traveler wins over the plan's own party. An unreachable override store is logged and the
// plan's party is used.
func (s *Service) ResolveParty(ctx context.Context, planID domain.PlanID) (domain.Party, error) {
	p, err := s.GetPlan(ctx, planID)
	if err != nil {
		return domain.Party{}, err
	}
	return s.resolveParty(ctx, p), nil
}

func (s *Service) resolveParty(ctx context.Context, p domain.Plan) domain.Party {
	o, ok, err := s.overrides.Get(ctx, p.ID)
	if err != nil {
		s.log.Warn().Err(err).Str("planId", string(p.ID)).Msg("party override unavailable")
		return p.Party
	}
	if ok && o.Valid() {
		return o
	}
	return p.Party
}

func (s *Service) SetPartyOverride(ctx context.Context, planID domain.PlanID, party domain.Party) (domain.Party, error) {
	if !party.Valid() {
		return domain.Party{}, apperr.Validation("INVALID_PARTY", "invalid party", map[string]any{
			"party": "adults and children must be non-negative with at least one traveler",
		})
	}
	if _, err := s.GetPlan(ctx, planID); err != nil {
		return domain.Party{}, err
	}
	if err := s.overrides.Put(ctx, planID, party); err != nil {
		return domain.Party{}, apperr.Transport("store party override", err)
	}
	return party, nil
}

// ClearPartyOverride removes the override; the plan's own party applies again.
func (s *Service) ClearPartyOverride(ctx context.Context, planID domain.PlanID) (domain.Party, error) {
	p, err := s.GetPlan(ctx, planID)
	if err != nil {
		return domain.Party{}, err
	}
	if err := s.overrides.Delete(ctx, planID); err != nil {
		return domain.Party{}, apperr.Transport("clear party override", err)
	}
	return p.Party, nil
}
