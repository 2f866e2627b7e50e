package catalog

import "github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"

type tripDoc struct {
	ID          string         `bson:"_id"`
	Title       string         `bson:"title"`
	Description string         `bson:"description"`
	City        string         `bson:"city"`
	Country     string         `bson:"country"`
	ImageURL    string         `bson:"image_url"`
	Pricing     tripPricingDoc `bson:"pricing"`
}

type tripPricingDoc struct {
	Model           string  `bson:"model"`
	BasePrice       float64 `bson:"base_price"`
	UnitPrice       float64 `bson:"unit_price"`
	ExtraPersonRate float64 `bson:"extra_person_rate"`
	IncludedPeople  int     `bson:"included_people"`
	HourlyRate      float64 `bson:"hourly_rate"`
	MinHours        int     `bson:"min_hours"`
	DailyRate       float64 `bson:"daily_rate"`
}

type hotelDoc struct {
	ID       string         `bson:"_id"`
	Name     string         `bson:"name"`
	City     string         `bson:"city"`
	Country  string         `bson:"country"`
	Stars    int            `bson:"stars"`
	ImageURL string         `bson:"image_url"`
	Model    string         `bson:"pricing_model"`
	Tiers    []hotelTierDoc `bson:"tiers"`
}

type hotelTierDoc struct {
	Persons       int     `bson:"persons"`
	MinNights     int     `bson:"min_nights"`
	PricePerNight float64 `bson:"price_per_night"`
}

type carDoc struct {
	ID              string  `bson:"_id"`
	Model           string  `bson:"model"`
	Category        string  `bson:"category"`
	Seats           int     `bson:"seats"`
	ImageURL        string  `bson:"image_url"`
	Location        string  `bson:"location"`
	Price3Days      float64 `bson:"price_3_days"`
	Price4To6Days   float64 `bson:"price_4_6_days"`
	Price7To10Days  float64 `bson:"price_7_10_days"`
	Price10PlusDays float64 `bson:"price_10_plus_days"`
	PricePerDay     float64 `bson:"price_per_day"`
}

type poiDoc struct {
	ID          string   `bson:"_id"`
	Name        string   `bson:"name"`
	City        string   `bson:"city"`
	Category    string   `bson:"category"`
	Description string   `bson:"description"`
	Latitude    *float64 `bson:"lat,omitempty"`
	Longitude   *float64 `bson:"lng,omitempty"`
}

type recommendationDoc struct {
	ID          string `bson:"_id"`
	Title       string `bson:"title"`
	City        string `bson:"city"`
	Description string `bson:"description"`
	Link        string `bson:"link"`
}

func (d tripDoc) toDomain() domain.TripOffer {
	return domain.TripOffer{
		ID:          domain.CatalogRef(d.ID),
		Title:       d.Title,
		Description: d.Description,
		City:        d.City,
		Country:     d.Country,
		ImageURL:    d.ImageURL,
		Pricing: domain.TripPricing{
			Model:           domain.TripPricingModel(d.Pricing.Model),
			BasePrice:       d.Pricing.BasePrice,
			UnitPrice:       d.Pricing.UnitPrice,
			ExtraPersonRate: d.Pricing.ExtraPersonRate,
			IncludedPeople:  d.Pricing.IncludedPeople,
			HourlyRate:      d.Pricing.HourlyRate,
			MinHours:        d.Pricing.MinHours,
			DailyRate:       d.Pricing.DailyRate,
		},
	}
}

func (d hotelDoc) toDomain() domain.HotelOffer {
	tiers := make([]domain.HotelTier, 0, len(d.Tiers))
	for _, t := range d.Tiers {
		tiers = append(tiers, domain.HotelTier{Persons: t.Persons, MinNights: t.MinNights, PricePerNight: t.PricePerNight})
	}
	return domain.HotelOffer{
		ID:       domain.CatalogRef(d.ID),
		Name:     d.Name,
		City:     d.City,
		Country:  d.Country,
		Stars:    d.Stars,
		ImageURL: d.ImageURL,
		Pricing:  domain.HotelPricing{Model: domain.HotelPricingModel(d.Model), Tiers: tiers},
	}
}

func (d carDoc) toDomain() domain.CarOffer {
	return domain.CarOffer{
		ID:       domain.CatalogRef(d.ID),
		Model:    d.Model,
		Category: d.Category,
		Seats:    d.Seats,
		ImageURL: d.ImageURL,
		Rates: domain.CarRates{
			Location:        d.Location,
			Price3Days:      d.Price3Days,
			Price4To6Days:   d.Price4To6Days,
			Price7To10Days:  d.Price7To10Days,
			Price10PlusDays: d.Price10PlusDays,
			PricePerDay:     d.PricePerDay,
		},
	}
}

func (d poiDoc) toDomain() domain.PointOfInterest {
	return domain.PointOfInterest{
		ID:          domain.CatalogRef(d.ID),
		Name:        d.Name,
		City:        d.City,
		Category:    d.Category,
		Description: d.Description,
		Latitude:    d.Latitude,
		Longitude:   d.Longitude,
	}
}

func (d recommendationDoc) toDomain() domain.Recommendation {
	return domain.Recommendation{
		ID:          domain.CatalogRef(d.ID),
		Title:       d.Title,
		City:        d.City,
		Description: d.Description,
		Link:        d.Link,
	}
}
