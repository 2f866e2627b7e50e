package domain

import "time"

// DefaultCurrency is used when a plan is created without a currency code.
const DefaultCurrency = "EUR"

// Party is the traveling party composition.
type Party struct {
	Adults   int
	Children int
}

// Total returns the number of travelers.
func (p Party) Total() int {
	return p.Adults + p.Children
}

// Valid reports whether the party has non-negative counts and at least one traveler.
func (p Party) Valid() bool {
	return p.Adults >= 0 && p.Children >= 0 && p.Total() >= 1
}

// Plan is one user trip spanning a date range.
type Plan struct {
	ID    PlanID
	Title string

	StartDate *time.Time // date-only semantics at the edges
	EndDate   *time.Time // date-only semantics at the edges

	BaseCity         string
	AllowCrossBorder bool
	Currency         string

	Party Party

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PlanDay is one calendar day of a plan.
type PlanDay struct {
	ID     DayID
	PlanID PlanID

	// DayIndex is 1-based and contiguous within a plan.
	DayIndex int
	Date     *time.Time

	// City overrides the plan's base city when set.
	City  *string
	Notes string

	CreatedAt time.Time
}

// EffectiveCity returns the day's city, falling back to the plan's base city.
func (d PlanDay) EffectiveCity(p Plan) string {
	if d.City != nil && *d.City != "" {
		return *d.City
	}
	return p.BaseCity
}

// DateOnly truncates t to midnight UTC.
func DateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DaySpan returns the number of calendar dates from start to end inclusive, 0 when end is
// before start. Spans beyond the range of time.Duration saturate.
func DaySpan(start, end time.Time) int {
	s, e := DateOnly(start), DateOnly(end)
	if e.Before(s) {
		return 0
	}
	return int(e.Sub(s)/(24*time.Hour)) + 1
}

// DaysInRange returns every calendar date from start to end inclusive.
// It returns nil when end is before start.
func DaysInRange(start, end time.Time) []time.Time {
	s, e := DateOnly(start), DateOnly(end)
	if e.Before(s) {
		return nil
	}
	var out []time.Time
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}
