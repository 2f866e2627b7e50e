package domain

import "time"

// ItemType is the kind of a plan item. It is immutable after creation.
type ItemType string

const (
	ItemTypeTrip           ItemType = "trip"
	ItemTypeHotel          ItemType = "hotel"
	ItemTypeCar            ItemType = "car"
	ItemTypePOI            ItemType = "poi"
	ItemTypeRecommendation ItemType = "recommendation"
	ItemTypeNote           ItemType = "note"
)

// Valid reports whether t is a known item type.
func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeTrip, ItemTypeHotel, ItemTypeCar, ItemTypePOI, ItemTypeRecommendation, ItemTypeNote:
		return true
	default:
		return false
	}
}

// CatalogBacked reports whether items of this type normally reference a catalog entry.
func (t ItemType) CatalogBacked() bool {
	return t != ItemTypeNote && t.Valid()
}

// RangeLinked reports whether items of this type span multiple days as a range.
func (t ItemType) RangeLinked() bool {
	return t == ItemTypeHotel || t == ItemTypeCar
}

// Snapshot is the point-in-time display copy of a catalog entry taken when the item was added.
type Snapshot struct {
	Title       string
	Subtitle    string
	Description string
	Link        string
	Price       *float64
	Image       string

	// SourceID keeps a catalog identifier that was not a well-formed reference.
	SourceID string
}

// RangeMeta is shared, identically, by every row of one range.
type RangeMeta struct {
	RangeID       RangeID
	StartDayID    DayID
	StartDayIndex int
	EndDayID      DayID
	EndDayIndex   int

	// Optional explicit dates; blank means "use the plan's day dates".
	StartDate *time.Time
	EndDate   *time.Time
}

// Span returns the inclusive number of days covered by the range.
func (r RangeMeta) Span() int {
	n := r.EndDayIndex - r.StartDayIndex + 1
	if n < 1 {
		return 1
	}
	return n
}

// ItemDetails is the type-specific payload of a plan item.
// The set of implementations is closed; each one belongs to exactly one ItemType.
type ItemDetails interface {
	ItemType() ItemType
	isItemDetails()
}

type TripDetails struct {
	// Hours and Days are the requested duration for hourly and daily trip pricing.
	Hours int
	Days  int
	Notes string
}

type HotelDetails struct {
	Range RangeMeta
	Notes string
}

type CarDetails struct {
	Range RangeMeta
	Notes string
}

// POIDetails carries a same-day schedule as "HH:MM" strings.
type POIDetails struct {
	StartTime string
	EndTime   string
}

type RecommendationDetails struct {
	Notes string
}

type NoteDetails struct {
	Text string
}

func (TripDetails) ItemType() ItemType           { return ItemTypeTrip }
func (HotelDetails) ItemType() ItemType          { return ItemTypeHotel }
func (CarDetails) ItemType() ItemType            { return ItemTypeCar }
func (POIDetails) ItemType() ItemType            { return ItemTypePOI }
func (RecommendationDetails) ItemType() ItemType { return ItemTypeRecommendation }
func (NoteDetails) ItemType() ItemType           { return ItemTypeNote }

func (TripDetails) isItemDetails()           {}
func (HotelDetails) isItemDetails()          {}
func (CarDetails) isItemDetails()            {}
func (POIDetails) isItemDetails()            {}
func (RecommendationDetails) isItemDetails() {}
func (NoteDetails) isItemDetails()           {}

// EmptyDetails returns the zero-value variant for t.
func EmptyDetails(t ItemType) ItemDetails {
	switch t {
	case ItemTypeTrip:
		return TripDetails{}
	case ItemTypeHotel:
		return HotelDetails{}
	case ItemTypeCar:
		return CarDetails{}
	case ItemTypePOI:
		return POIDetails{}
	case ItemTypeRecommendation:
		return RecommendationDetails{}
	case ItemTypeNote:
		return NoteDetails{}
	default:
		return nil
	}
}

// PlanItem is one schedulable entry attached to a plan day.
type PlanItem struct {
	ID    ItemID
	DayID DayID
	Type  ItemType

	CatalogRef *CatalogRef
	Snapshot   Snapshot
	Details    ItemDetails

	// SortOrder is used purely for display ordering within a day.
	SortOrder int64

	CreatedAt time.Time
}

// Range returns the item's range metadata when it is range-linked and has a range id.
func (it PlanItem) Range() (RangeMeta, bool) {
	switch d := it.Details.(type) {
	case HotelDetails:
		return d.Range, d.Range.RangeID != ""
	case CarDetails:
		return d.Range, d.Range.RangeID != ""
	default:
		return RangeMeta{}, false
	}
}

// Notes returns the free-text notes attached to the item, if any.
func (it PlanItem) Notes() string {
	switch d := it.Details.(type) {
	case TripDetails:
		return d.Notes
	case HotelDetails:
		return d.Notes
	case CarDetails:
		return d.Notes
	case RecommendationDetails:
		return d.Notes
	case NoteDetails:
		return d.Text
	default:
		return ""
	}
}

// WithRange returns a copy of details with range metadata merged in.
// Details that are not range-linked are returned unchanged.
func WithRange(details ItemDetails, r RangeMeta) ItemDetails {
	switch d := details.(type) {
	case HotelDetails:
		d.Range = r
		return d
	case CarDetails:
		d.Range = r
		return d
	default:
		return details
	}
}
