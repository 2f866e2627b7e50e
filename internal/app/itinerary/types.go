package itinerary

import (
	"time"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
)

// Optional is a tri-state field used to distinguish:
// - unspecified (omitted)
// - specified as null
// - specified with a value
type Optional[T any] struct {
	specified bool
	isNull    bool
	value     T
}

func Unspecified[T any]() Optional[T] { return Optional[T]{} }
func Null[T any]() Optional[T]        { return Optional[T]{specified: true, isNull: true} }
func Some[T any](v T) Optional[T]     { return Optional[T]{specified: true, value: v} }

func (o Optional[T]) IsSpecified() bool { return o.specified }
func (o Optional[T]) IsNull() bool      { return o.specified && o.isNull }
func (o Optional[T]) Value() T          { return o.value }

type CreatePlanInput struct {
	Title     string
	StartDate *time.Time
	EndDate   *time.Time

	BaseCity         string
	AllowCrossBorder bool
	// Currency defaults to the service currency (EUR unless configured) when empty.
	Currency string
	// Party defaults to one adult when both counts are zero.
	Party domain.Party
}

type UpdatePlanInput struct {
	// Title is optional and cannot be null.
	Title Optional[string]

	StartDate Optional[time.Time] // null clears
	EndDate   Optional[time.Time] // null clears

	BaseCity         Optional[string]
	AllowCrossBorder Optional[bool]
	Currency         Optional[string]
	Party            Optional[domain.Party]
}

type AddItemInput struct {
	DayID domain.DayID
	Type  domain.ItemType

	// CatalogRef is the raw catalog identifier as received. Identifiers that are not
	// well-formed references are kept in Snapshot.SourceID instead.
	CatalogRef string
	Snapshot   domain.Snapshot
	// Details defaults to the empty variant of Type.
	Details domain.ItemDetails
}

type DayPatch struct {
	City  Optional[string] // null or empty clears the override
	Notes Optional[string] // null clears
}

type ItemDataPatch struct {
	Snapshot Optional[domain.Snapshot]
	Details  Optional[domain.ItemDetails]
}
