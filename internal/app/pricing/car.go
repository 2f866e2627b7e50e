package pricing

import (
	"strings"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
)

// CarMinimumDays is the car-rental minimum stay. Shorter rentals are billed as this many days.
const CarMinimumDays = 3

// PaphosLocation is the one location with a banded rate card.
const PaphosLocation = "paphos"

// CarQuote is the outcome of pricing a rental.
type CarQuote struct {
	BillableDays int
	// Rate is the effective daily rate; for the flat three-day package it is the package price / 3.
	Rate  float64
	Flat  bool
	Total float64
}

// Car prices a rental of days under the offer's rate card.
func Car(r domain.CarRates, days int) CarQuote {
	billable := max(CarMinimumDays, days)

	if isPaphos(r.Location) {
		if billable == CarMinimumDays && r.Price3Days > 0 {
			return CarQuote{
				BillableDays: billable,
				Rate:         r.Price3Days / CarMinimumDays,
				Flat:         true,
				Total:        r.Price3Days,
			}
		}
		rate := firstPositive(bandRate(r, billable), r.PricePerDay, r.Price3Days/CarMinimumDays)
		return CarQuote{BillableDays: billable, Rate: rate, Total: rate * float64(billable)}
	}

	rate := firstPositive(r.PricePerDay, r.Price4To6Days, r.Price7To10Days, r.Price10PlusDays, r.Price3Days/CarMinimumDays)
	return CarQuote{BillableDays: billable, Rate: rate, Total: rate * float64(billable)}
}

// bandRate returns the daily rate of the band containing days: 4–6, 7–10, or 11 and above.
// Three-day rentals have no band rate.
func bandRate(r domain.CarRates, days int) float64 {
	switch {
	case days >= 4 && days <= 6:
		return r.Price4To6Days
	case days >= 7 && days <= 10:
		return r.Price7To10Days
	case days > 10:
		return r.Price10PlusDays
	default:
		return 0
	}
}

func isPaphos(location string) bool {
	return strings.EqualFold(strings.TrimSpace(location), PaphosLocation)
}

func firstPositive(vs ...float64) float64 {
	for _, v := range vs {
		if v > 0 {
			return v
		}
	}
	return 0
}
