package ordering

import "github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"

// Partition is a category band of a day. Items are only ever reordered inside their own band.
type Partition int

const (
	PartitionNotes Partition = iota
	PartitionServices
	PartitionPOI
)

// Step is the gap between consecutive sort orders after a renumber.
const Step int64 = 10

const (
	notesBase    int64 = 0
	servicesBase int64 = 1_000_000
	poiBase      int64 = 2_000_000
)

// PartitionOf returns the band an item type renders in.
func PartitionOf(t domain.ItemType) Partition {
	switch t {
	case domain.ItemTypeNote:
		return PartitionNotes
	case domain.ItemTypePOI:
		return PartitionPOI
	default:
		return PartitionServices
	}
}

// Base is the first sort order of the band.
func (p Partition) Base() int64 {
	switch p {
	case PartitionNotes:
		return notesBase
	case PartitionPOI:
		return poiBase
	default:
		return servicesBase
	}
}

func (p Partition) String() string {
	switch p {
	case PartitionNotes:
		return "notes"
	case PartitionPOI:
		return "poi"
	default:
		return "services"
	}
}
