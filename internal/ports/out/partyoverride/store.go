package partyoverride

import (
	"context"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
)

// Store caches a party composition per plan, independent of the plan's persisted party.
type Store interface {
	// Get returns ok=false when no override is stored for the plan.
	Get(ctx context.Context, planID domain.PlanID) (domain.Party, bool, error)
	Put(ctx context.Context, planID domain.PlanID, p domain.Party) error
	Delete(ctx context.Context, planID domain.PlanID) error
}
