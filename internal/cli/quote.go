package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/pricing"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
)

func newQuoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a trip, hotel stay or car rental",
		Args:  cobra.NoArgs,
	}
	cmd.AddCommand(newQuoteTripCmd(), newQuoteHotelCmd(), newQuoteCarCmd())
	return cmd
}

type tripQuoteJSON struct {
	Model    string  `json:"model"`
	Adults   int     `json:"adults"`
	Children int     `json:"children"`
	Hours    int     `json:"hours,omitempty"`
	Days     int     `json:"days,omitempty"`
	Total    float64 `json:"total"`
}

func newQuoteTripCmd() *cobra.Command {
	var (
		model string
		p     domain.TripPricing
		q     pricing.TripQuery
	)
	cmd := &cobra.Command{
		Use:   "trip",
		Short: "Price one trip occurrence",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Model = domain.TripPricingModel(model)
			if !q.Party.Valid() {
				return fmt.Errorf("party needs at least one traveler, got %d adults and %d children", q.Party.Adults, q.Party.Children)
			}
			return outputJSON(cmd.OutOrStdout(), tripQuoteJSON{
				Model:    model,
				Adults:   q.Party.Adults,
				Children: q.Party.Children,
				Hours:    q.Hours,
				Days:     q.Days,
				Total:    pricing.Trip(p, q),
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&model, "model", string(domain.TripPricingPerPerson), "pricing model: per_person, base_plus_extra, per_hour or per_day")
	f.Float64Var(&p.BasePrice, "base-price", 0, "flat base price")
	f.Float64Var(&p.UnitPrice, "unit-price", 0, "price per person")
	f.Float64Var(&p.ExtraPersonRate, "extra-person-rate", 0, "price per person above the included count")
	f.IntVar(&p.IncludedPeople, "included-people", 0, "people covered by the base price")
	f.Float64Var(&p.HourlyRate, "hourly-rate", 0, "price per hour")
	f.IntVar(&p.MinHours, "min-hours", 0, "minimum billable hours")
	f.Float64Var(&p.DailyRate, "daily-rate", 0, "price per day")
	f.IntVar(&q.Party.Adults, "adults", 2, "adults in the party")
	f.IntVar(&q.Party.Children, "children", 0, "children in the party")
	f.IntVar(&q.Hours, "hours", 0, "requested hours")
	f.IntVar(&q.Days, "days", 0, "requested days")
	return cmd
}

type hotelQuoteJSON struct {
	Model          string  `json:"model"`
	Persons        int     `json:"persons"`
	Nights         int     `json:"nights"`
	BillableNights int     `json:"billableNights"`
	PricePerNight  float64 `json:"pricePerNight"`
	Matched        bool    `json:"matched"`
	Total          float64 `json:"total"`
}

func newQuoteHotelCmd() *cobra.Command {
	var (
		model   string
		tiers   []string
		persons int
		nights  int
	)
	cmd := &cobra.Command{
		Use:   "hotel",
		Short: "Price a hotel stay",
		Long: `Price a hotel stay against a set of tier rules.

Each --tier is persons:min_nights:price_per_night, e.g. --tier 2:1:90 --tier 2:7:75.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hp := domain.HotelPricing{Model: domain.HotelPricingModel(model)}
			for _, raw := range tiers {
				t, err := parseTier(raw)
				if err != nil {
					return err
				}
				hp.Tiers = append(hp.Tiers, t)
			}
			q := pricing.Hotel(hp, persons, nights)
			return outputJSON(cmd.OutOrStdout(), hotelQuoteJSON{
				Model:          model,
				Persons:        persons,
				Nights:         nights,
				BillableNights: q.BillableNights,
				PricePerNight:  q.Tier.PricePerNight,
				Matched:        q.Matched,
				Total:          q.Total,
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&model, "model", string(domain.HotelPricingPerPersonPerNight), "pricing model: per_person_per_night, category_per_night, flat_per_night or tiered_by_nights")
	f.StringArrayVar(&tiers, "tier", nil, "tier rule persons:min_nights:price_per_night (repeatable)")
	f.IntVar(&persons, "persons", 2, "party size")
	f.IntVar(&nights, "nights", 1, "nights of the stay")
	return cmd
}

func parseTier(raw string) (domain.HotelTier, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return domain.HotelTier{}, fmt.Errorf("tier %q: want persons:min_nights:price_per_night", raw)
	}
	persons, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return domain.HotelTier{}, fmt.Errorf("tier %q: persons: %w", raw, err)
	}
	minNights, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return domain.HotelTier{}, fmt.Errorf("tier %q: min nights: %w", raw, err)
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return domain.HotelTier{}, fmt.Errorf("tier %q: price: %w", raw, err)
	}
	return domain.HotelTier{Persons: persons, MinNights: minNights, PricePerNight: price}, nil
}

type carQuoteJSON struct {
	Location     string  `json:"location"`
	Days         int     `json:"days"`
	BillableDays int     `json:"billableDays"`
	Rate         float64 `json:"rate"`
	Flat         bool    `json:"flat"`
	Total        float64 `json:"total"`
}

func newQuoteCarCmd() *cobra.Command {
	var (
		r    domain.CarRates
		days int
	)
	cmd := &cobra.Command{
		Use:   "car",
		Short: "Price a car rental",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := pricing.Car(r, days)
			return outputJSON(cmd.OutOrStdout(), carQuoteJSON{
				Location:     r.Location,
				Days:         days,
				BillableDays: q.BillableDays,
				Rate:         q.Rate,
				Flat:         q.Flat,
				Total:        q.Total,
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&r.Location, "location", "", "pickup location")
	f.Float64Var(&r.Price3Days, "price-3-days", 0, "flat price for a three-day rental")
	f.Float64Var(&r.Price4To6Days, "price-4-6-days", 0, "daily rate for 4-6 days")
	f.Float64Var(&r.Price7To10Days, "price-7-10-days", 0, "daily rate for 7-10 days")
	f.Float64Var(&r.Price10PlusDays, "price-10-plus-days", 0, "daily rate beyond 10 days")
	f.Float64Var(&r.PricePerDay, "price-per-day", 0, "fallback daily rate")
	f.IntVar(&days, "days", 3, "rental days")
	return cmd
}
