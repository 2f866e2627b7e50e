package pricing

import "github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"

// TripQuery is the requested party and duration for one trip occurrence.
type TripQuery struct {
	Party domain.Party
	Hours int
	Days  int
}

// Trip prices one trip occurrence under the offer's pricing model.
// An unknown or absent model falls back to the flat base price.
func Trip(p domain.TripPricing, q TripQuery) float64 {
	people := nonNeg(q.Party.Adults) + nonNeg(q.Party.Children)
	switch p.Model {
	case domain.TripPricingPerPerson:
		return p.UnitPrice * float64(people)
	case domain.TripPricingBasePlusExtra:
		extra := max(0, people-nonNeg(p.IncludedPeople))
		return p.BasePrice + p.ExtraPersonRate*float64(extra)
	case domain.TripPricingPerHour:
		return p.HourlyRate * float64(max(nonNeg(p.MinHours), nonNeg(q.Hours)))
	case domain.TripPricingPerDay:
		return p.DailyRate * float64(max(1, q.Days))
	default:
		return p.BasePrice
	}
}

func nonNeg(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
