package costs

import "github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"

// Selection is one bookable unit of a plan: a trip occurrence, or a hotel or car range.
type Selection struct {
	// Key is the item id for trips and the range id for ranges. Hotel and car rows without a
	// range id count as single-day ranges keyed by their item id.
	Key  string
	Type domain.ItemType
	// Item is the first row encountered, in day order then display order.
	Item  domain.PlanItem
	Range domain.RangeMeta
	// Day is the day the first row sits on.
	Day domain.PlanDay
}

// Span is the number of days the selection covers.
func (s Selection) Span() int {
	if s.Type == domain.ItemTypeTrip {
		return 1
	}
	return s.Range.Span()
}

// Nights is the number of hotel nights: span minus one, at least one.
func (s Selection) Nights() int {
	return max(1, s.Span()-1)
}

// Selections walks every item of the board once and returns the trips, hotel ranges and car
// ranges. Each range id appears once; the first occurrence wins.
func Selections(b domain.Board) []Selection {
	var out []Selection
	seen := make(map[string]struct{})
	for _, d := range b.Days {
		for _, it := range b.ItemsFor(d.ID) {
			switch it.Type {
			case domain.ItemTypeTrip:
				out = append(out, Selection{Key: string(it.ID), Type: it.Type, Item: it, Day: d})
			case domain.ItemTypeHotel, domain.ItemTypeCar:
				rm, ok := it.Range()
				key := string(rm.RangeID)
				if !ok {
					key = string(it.ID)
					rm = domain.RangeMeta{
						StartDayID:    d.ID,
						StartDayIndex: d.DayIndex,
						EndDayID:      d.ID,
						EndDayIndex:   d.DayIndex,
					}
				}
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				out = append(out, Selection{Key: key, Type: it.Type, Item: it, Range: rm, Day: d})
			}
		}
	}
	return out
}
