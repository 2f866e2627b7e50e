package itemrepo

import (
	"context"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
)

// Position is the (day, sort order) pair of one item after a reorder.
type Position struct {
	ItemID    domain.ItemID
	DayID     domain.DayID
	SortOrder int64
}

// Range is the first-class record behind a set of range-linked items.
type Range struct {
	ID     domain.RangeID
	PlanID domain.PlanID
	Type   domain.ItemType
	Meta   domain.RangeMeta
}

// Repository provides access to persisted plan items.
//
// Result ordering expectations:
// - ListByDays and ListByRange return items ordered by SortOrder, then CreatedAt, then ID.
type Repository interface {
	Insert(ctx context.Context, it domain.PlanItem) error

	// InsertRange writes the range record and all of its rows as one unit.
	InsertRange(ctx context.Context, r Range, items []domain.PlanItem) error

	GetByID(ctx context.Context, id domain.ItemID) (domain.PlanItem, error)
	ListByDays(ctx context.Context, dayIDs []domain.DayID) ([]domain.PlanItem, error)
	ListByRange(ctx context.Context, id domain.RangeID) ([]domain.PlanItem, error)

	// UpdateData replaces the snapshot and details of an item. The item type is not changed.
	UpdateData(ctx context.Context, it domain.PlanItem) error
	UpdatePositions(ctx context.Context, ps []Position) error

	// Delete returns ErrNotFound when the item does not exist.
	Delete(ctx context.Context, id domain.ItemID) error
	// DeleteByRange removes the range and its rows, returning the number of rows removed.
	DeleteByRange(ctx context.Context, id domain.RangeID) (int, error)
	// DeleteByDays removes every item attached to the given days.
	DeleteByDays(ctx context.Context, dayIDs []domain.DayID) error
}
