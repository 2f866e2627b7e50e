package domain

// TripPricingModel selects how a trip offer is priced.
type TripPricingModel string

const (
	TripPricingPerPerson     TripPricingModel = "per_person"
	TripPricingBasePlusExtra TripPricingModel = "base_plus_extra"
	TripPricingPerHour       TripPricingModel = "per_hour"
	TripPricingPerDay        TripPricingModel = "per_day"
)

// TripPricing holds the parameters of every trip pricing model; only the fields of the
// selected model are meaningful.
type TripPricing struct {
	Model TripPricingModel

	BasePrice       float64
	UnitPrice       float64
	ExtraPersonRate float64
	IncludedPeople  int
	HourlyRate      float64
	MinHours        int
	DailyRate       float64
}

// HotelPricingModel selects how a hotel's tier rules are matched.
type HotelPricingModel string

const (
	HotelPricingPerPersonPerNight HotelPricingModel = "per_person_per_night"
	HotelPricingCategoryPerNight  HotelPricingModel = "category_per_night"
	HotelPricingFlatPerNight      HotelPricingModel = "flat_per_night"
	HotelPricingTieredByNights    HotelPricingModel = "tiered_by_nights"
)

// HotelTier is one pricing rule of a hotel.
type HotelTier struct {
	Persons       int
	MinNights     int
	PricePerNight float64
}

type HotelPricing struct {
	Model HotelPricingModel
	Tiers []HotelTier
}

// CarRates is the rate card of a car offer. Zero means "not priced".
type CarRates struct {
	Location string

	Price3Days      float64 // flat total for exactly three days
	Price4To6Days   float64 // per day
	Price7To10Days  float64 // per day
	Price10PlusDays float64 // per day
	PricePerDay     float64
}

// TripOffer is a read-only trip catalog entry.
type TripOffer struct {
	ID          CatalogRef
	Title       string
	Description string
	City        string
	Country     string
	ImageURL    string
	Pricing     TripPricing
}

// HotelOffer is a read-only hotel catalog entry.
type HotelOffer struct {
	ID       CatalogRef
	Name     string
	City     string
	Country  string
	Stars    int
	ImageURL string
	Pricing  HotelPricing
}

// CarOffer is a read-only car rental catalog entry.
type CarOffer struct {
	ID       CatalogRef
	Model    string
	Category string
	Seats    int
	ImageURL string
	Rates    CarRates
}

// PointOfInterest is a read-only place catalog entry.
type PointOfInterest struct {
	ID          CatalogRef
	Name        string
	City        string
	Category    string
	Description string
	Latitude    *float64
	Longitude   *float64
}

// Recommendation is a read-only editorial catalog entry.
type Recommendation struct {
	ID          CatalogRef
	Title       string
	City        string
	Description string
	Link        string
}
