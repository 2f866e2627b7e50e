package costs

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/catalog"
)

// PlanReader reads the board and the resolved party of a plan.
type PlanReader interface {
	LoadBoard(ctx context.Context, planID domain.PlanID) (domain.Board, error)
	ResolveParty(ctx context.Context, planID domain.PlanID) (domain.Party, error)
}

type Service struct {
	plans   PlanReader
	catalog catalog.Reader
	log     zerolog.Logger
}

func NewService(plans PlanReader, cat catalog.Reader) *Service {
	return &Service{plans: plans, catalog: cat, log: zerolog.Nop()}
}

// WithLogger sets the service logger and returns the service.
func (s *Service) WithLogger(l zerolog.Logger) *Service {
	s.log = l.With().Str("component", "costs").Logger()
	return s
}

// Aggregate loads the plan and the catalog entries it references and computes its breakdown.
// Unavailable catalog entries price as zero; only plan store failures are returned.
func (s *Service) Aggregate(ctx context.Context, planID domain.PlanID) (Breakdown, error) {
	b, err := s.plans.LoadBoard(ctx, planID)
	if err != nil {
		return Breakdown{}, err
	}
	party, err := s.plans.ResolveParty(ctx, planID)
	if err != nil {
		return Breakdown{}, err
	}
	in := s.LoadOffers(ctx, Selections(b))
	in.Board = b
	in.Party = party
	in.Currency = b.Plan.Currency
	return Compute(in), nil
}

// LoadOffers reads each referenced catalog entry once.
func (s *Service) LoadOffers(ctx context.Context, sels []Selection) Input {
	in := Input{
		Trips:  make(map[domain.CatalogRef]domain.TripOffer),
		Hotels: make(map[domain.CatalogRef]domain.HotelOffer),
		Cars:   make(map[domain.CatalogRef]domain.CarOffer),
	}
	tried := make(map[string]struct{})
	for _, sel := range sels {
		ref := sel.Item.CatalogRef
		if ref == nil {
			continue
		}
		key := string(sel.Type) + ":" + string(*ref)
		if _, ok := tried[key]; ok {
			continue
		}
		tried[key] = struct{}{}

		var err error
		switch sel.Type {
		case domain.ItemTypeTrip:
			var o domain.TripOffer
			if o, err = s.catalog.Trip(ctx, *ref); err == nil {
				in.Trips[*ref] = o
			}
		case domain.ItemTypeHotel:
			var o domain.HotelOffer
			if o, err = s.catalog.Hotel(ctx, *ref); err == nil {
				in.Hotels[*ref] = o
			}
		case domain.ItemTypeCar:
			var o domain.CarOffer
			if o, err = s.catalog.Car(ctx, *ref); err == nil {
				in.Cars[*ref] = o
			}
		}
		if err != nil && !errors.Is(err, catalog.ErrNotFound) {
			s.log.Warn().Err(err).Str("catalogRef", string(*ref)).Str("type", string(sel.Type)).Msg("catalog lookup failed; pricing as zero")
		}
	}
	return in
}
