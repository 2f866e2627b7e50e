package planrepo

import (
	"context"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
)

// Repository provides access to persisted plans and their days.
//
// Result ordering expectations:
// - ListDays returns days ordered by DayIndex ascending.
type Repository interface {
	Create(ctx context.Context, p domain.Plan) error
	Save(ctx context.Context, p domain.Plan) error
	GetByID(ctx context.Context, id domain.PlanID) (domain.Plan, error)

	// Delete removes the plan and cascades to its days and their items.
	// Deleting a missing plan returns ErrNotFound.
	Delete(ctx context.Context, id domain.PlanID) error

	ListDays(ctx context.Context, planID domain.PlanID) ([]domain.PlanDay, error)
	GetDay(ctx context.Context, id domain.DayID) (domain.PlanDay, error)

	// ReplaceDays deletes every existing day of the plan (cascading their items) and inserts days.
	ReplaceDays(ctx context.Context, planID domain.PlanID, days []domain.PlanDay) error

	// UpdateDay persists the day's City and Notes.
	UpdateDay(ctx context.Context, d domain.PlanDay) error
}
