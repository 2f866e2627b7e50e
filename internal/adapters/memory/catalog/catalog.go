package catalog

import (
	"context"
	"sync"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/catalog"
)

// Catalog is an in-memory implementation of catalog.Reader, seeded through its Put methods.
// It is safe for concurrent use.
type Catalog struct {
	mu sync.RWMutex

	trips  map[domain.CatalogRef]domain.TripOffer
	hotels map[domain.CatalogRef]domain.HotelOffer
	cars   map[domain.CatalogRef]domain.CarOffer
	pois   map[domain.CatalogRef]domain.PointOfInterest
	recs   map[domain.CatalogRef]domain.Recommendation
}

func NewCatalog() *Catalog {
	return &Catalog{
		trips:  make(map[domain.CatalogRef]domain.TripOffer),
		hotels: make(map[domain.CatalogRef]domain.HotelOffer),
		cars:   make(map[domain.CatalogRef]domain.CarOffer),
		pois:   make(map[domain.CatalogRef]domain.PointOfInterest),
		recs:   make(map[domain.CatalogRef]domain.Recommendation),
	}
}

func (c *Catalog) PutTrip(t domain.TripOffer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trips[t.ID] = t
}

func (c *Catalog) PutHotel(h domain.HotelOffer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h.Pricing.Tiers = append([]domain.HotelTier(nil), h.Pricing.Tiers...)
	c.hotels[h.ID] = h
}

func (c *Catalog) PutCar(car domain.CarOffer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cars[car.ID] = car
}

func (c *Catalog) PutPointOfInterest(p domain.PointOfInterest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pois[p.ID] = p
}

func (c *Catalog) PutRecommendation(r domain.Recommendation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recs[r.ID] = r
}

func (c *Catalog) Trip(ctx context.Context, ref domain.CatalogRef) (domain.TripOffer, error) {
	_ = ctx
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.trips[ref]
	if !ok {
		return domain.TripOffer{}, catalog.ErrNotFound
	}
	return t, nil
}

func (c *Catalog) Hotel(ctx context.Context, ref domain.CatalogRef) (domain.HotelOffer, error) {
	_ = ctx
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.hotels[ref]
	if !ok {
		return domain.HotelOffer{}, catalog.ErrNotFound
	}
	h.Pricing.Tiers = append([]domain.HotelTier(nil), h.Pricing.Tiers...)
	return h, nil
}

func (c *Catalog) Car(ctx context.Context, ref domain.CatalogRef) (domain.CarOffer, error) {
	_ = ctx
	c.mu.RLock()
	defer c.mu.RUnlock()
	car, ok := c.cars[ref]
	if !ok {
		return domain.CarOffer{}, catalog.ErrNotFound
	}
	return car, nil
}

func (c *Catalog) PointOfInterest(ctx context.Context, ref domain.CatalogRef) (domain.PointOfInterest, error) {
	_ = ctx
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.pois[ref]
	if !ok {
		return domain.PointOfInterest{}, catalog.ErrNotFound
	}
	return p, nil
}

func (c *Catalog) Recommendation(ctx context.Context, ref domain.CatalogRef) (domain.Recommendation, error) {
	_ = ctx
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.recs[ref]
	if !ok {
		return domain.Recommendation{}, catalog.ErrNotFound
	}
	return r, nil
}
