package domain

// Board is a plan with its days and each day's items, as loaded for rendering.
// Items per day are ordered by SortOrder, then CreatedAt.
type Board struct {
	Plan  Plan
	Days  []PlanDay
	Items map[DayID][]PlanItem
}

// ItemsFor returns the items of one day, or nil when the day has none.
func (b Board) ItemsFor(dayID DayID) []PlanItem {
	return b.Items[dayID]
}

// Day returns the day with the given id.
func (b Board) Day(id DayID) (PlanDay, bool) {
	for _, d := range b.Days {
		if d.ID == id {
			return d, true
		}
	}
	return PlanDay{}, false
}

// DayAt returns the day with the given 1-based index.
func (b Board) DayAt(index int) (PlanDay, bool) {
	for _, d := range b.Days {
		if d.DayIndex == index {
			return d, true
		}
	}
	return PlanDay{}, false
}

// AllItems returns every item on the board in day order, then display order.
func (b Board) AllItems() []PlanItem {
	var out []PlanItem
	for _, d := range b.Days {
		out = append(out, b.Items[d.ID]...)
	}
	return out
}
