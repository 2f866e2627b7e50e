package catalog

import (
	"context"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
)

// Reader is the read-only lookup into the trip, hotel, car, place and recommendation catalogs.
// Every method returns ErrNotFound when no entry matches.
type Reader interface {
	Trip(ctx context.Context, ref domain.CatalogRef) (domain.TripOffer, error)
	Hotel(ctx context.Context, ref domain.CatalogRef) (domain.HotelOffer, error)
	Car(ctx context.Context, ref domain.CatalogRef) (domain.CarOffer, error)
	PointOfInterest(ctx context.Context, ref domain.CatalogRef) (domain.PointOfInterest, error)
	Recommendation(ctx context.Context, ref domain.CatalogRef) (domain.Recommendation, error)
}
