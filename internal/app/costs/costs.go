// Package costs aggregates the estimated price of a plan.
package costs

import (
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/pricing"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
)

// Input is everything Compute needs. Catalog maps hold the offers referenced by the board;
// a missing entry prices as zero.
type Input struct {
	Board    domain.Board
	Party    domain.Party
	Currency string

	Trips  map[domain.CatalogRef]domain.TripOffer
	Hotels map[domain.CatalogRef]domain.HotelOffer
	Cars   map[domain.CatalogRef]domain.CarOffer
}

// Line is the priced contribution of one selection.
type Line struct {
	Key    string
	Type   domain.ItemType
	ItemID domain.ItemID
	Title  string

	// Nights is set for hotels, Days for cars and day-priced trips.
	Nights int
	Days   int

	Total float64
	// Priced is false when the catalog entry was unavailable and the line counts as zero.
	Priced bool
}

type Breakdown struct {
	TripsTotal  float64
	HotelsTotal float64
	CarsTotal   float64
	Total       float64
	Currency    string
	People      int
	Lines       []Line
}

// Compute prices every selection of the board once. It never fails.
func Compute(in Input) Breakdown {
	out := Breakdown{Currency: in.Currency, People: in.Party.Total()}
	for _, sel := range Selections(in.Board) {
		line := Line{
			Key:    sel.Key,
			Type:   sel.Type,
			ItemID: sel.Item.ID,
			Title:  sel.Item.Snapshot.Title,
		}
		ref := sel.Item.CatalogRef

		switch sel.Type {
		case domain.ItemTypeTrip:
			d, _ := sel.Item.Details.(domain.TripDetails)
			line.Days = d.Days
			if ref != nil {
				if offer, ok := in.Trips[*ref]; ok {
					line.Total = pricing.Trip(offer.Pricing, pricing.TripQuery{Party: in.Party, Hours: d.Hours, Days: d.Days})
					line.Priced = true
				}
			}
			out.TripsTotal += line.Total
		case domain.ItemTypeHotel:
			line.Nights = sel.Nights()
			if ref != nil {
				if offer, ok := in.Hotels[*ref]; ok {
					q := pricing.Hotel(offer.Pricing, in.Party.Total(), line.Nights)
					line.Total = q.Total
					line.Nights = q.BillableNights
					line.Priced = true
				}
			}
			out.HotelsTotal += line.Total
		case domain.ItemTypeCar:
			line.Days = sel.Span()
			if ref != nil {
				if offer, ok := in.Cars[*ref]; ok {
					q := pricing.Car(offer.Rates, line.Days)
					line.Total = q.Total
					line.Days = q.BillableDays
					line.Priced = true
				}
			}
			out.CarsTotal += line.Total
		}
		out.Lines = append(out.Lines, line)
	}
	out.Total = out.TripsTotal + out.HotelsTotal + out.CarsTotal
	return out
}
