package pricing

import "github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"

// HotelQuote is the outcome of pricing a hotel stay.
type HotelQuote struct {
	Tier domain.HotelTier
	// Matched is false when no rule matched and the globally cheapest rule was used.
	Matched        bool
	BillableNights int
	Total          float64
}

// Hotel prices a stay of nights for a party of persons.
// Hotels without tier rules price as zero.
func Hotel(p domain.HotelPricing, persons, nights int) HotelQuote {
	if len(p.Tiers) == 0 {
		return HotelQuote{}
	}
	nights = max(1, nights)
	tier, matched := SelectHotelTier(p, persons, nights)
	billable := nights
	if tier.MinNights > 0 {
		billable = max(tier.MinNights, nights)
	}
	return HotelQuote{
		Tier:           tier,
		Matched:        matched,
		BillableNights: billable,
		Total:          float64(billable) * tier.PricePerNight,
	}
}

// SelectHotelTier picks the tier rule for a party size and stay length.
//
// Order of preference: exact party match, then the closest party size below, then the longest
// qualifying minimum stay within that party bracket. A party bracket whose minimum stays are all
// longer than the request still wins; the stay is then billed up to the rule's floor.
// flat_per_night ignores party size. When nothing matches, the globally cheapest rule is
// returned with matched=false.
func SelectHotelTier(p domain.HotelPricing, persons, nights int) (tier domain.HotelTier, matched bool) {
	switch p.Model {
	case domain.HotelPricingPerPersonPerNight, domain.HotelPricingCategoryPerNight:
		if bracket := partyBracket(p.Tiers, persons); len(bracket) > 0 {
			if t, ok := longestQualifyingStay(bracket, nights); ok {
				return t, true
			}
			return bracket[0], true
		}
	case domain.HotelPricingFlatPerNight:
		if t, ok := longestQualifyingStay(p.Tiers, nights); ok {
			return t, true
		}
	case domain.HotelPricingTieredByNights:
		if bracket := partyBracket(p.Tiers, persons); len(bracket) > 0 {
			if t, ok := longestQualifyingStay(bracket, nights); ok {
				return t, true
			}
			// Minimum stay not met: bill the shortest minimum stay of the bracket up to its floor.
			return shortestStay(bracket), true
		}
	}
	return cheapestTier(p.Tiers), false
}

// partyBracket returns the rules whose Persons equals persons, or failing that the rules with the
// largest Persons not exceeding persons. Input order is preserved.
func partyBracket(tiers []domain.HotelTier, persons int) []domain.HotelTier {
	var exact []domain.HotelTier
	best := -1
	for _, t := range tiers {
		if t.Persons == persons {
			exact = append(exact, t)
		}
		if t.Persons <= persons && t.Persons > best {
			best = t.Persons
		}
	}
	if len(exact) > 0 {
		return exact
	}
	if best < 0 {
		return nil
	}
	var below []domain.HotelTier
	for _, t := range tiers {
		if t.Persons == best {
			below = append(below, t)
		}
	}
	return below
}

// longestQualifyingStay returns the rule with the largest MinNights not exceeding nights.
// Ties keep the first rule.
func longestQualifyingStay(tiers []domain.HotelTier, nights int) (domain.HotelTier, bool) {
	var (
		out   domain.HotelTier
		found bool
	)
	for _, t := range tiers {
		if t.MinNights > nights {
			continue
		}
		if !found || t.MinNights > out.MinNights {
			out, found = t, true
		}
	}
	return out, found
}

func shortestStay(tiers []domain.HotelTier) domain.HotelTier {
	out := tiers[0]
	for _, t := range tiers[1:] {
		if t.MinNights < out.MinNights {
			out = t
		}
	}
	return out
}

func cheapestTier(tiers []domain.HotelTier) domain.HotelTier {
	out := tiers[0]
	for _, t := range tiers[1:] {
		if t.PricePerNight < out.PricePerNight {
			out = t
		}
	}
	return out
}
