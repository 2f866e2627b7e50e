package itinerary

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/clock"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/itemrepo"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/partyoverride"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/planrepo"
)

// MaxPlanDays bounds day generation.
const MaxPlanDays = 366

type Service struct {
	plans     planrepo.Repository
	items     itemrepo.Repository
	overrides partyoverride.Store
	clock     clock.Clock
	log       zerolog.Logger
	currency  string

	seqMu     sync.Mutex
	lastOrder int64

	newPlanID func() domain.PlanID
	newDayID  func() domain.DayID
	newItemID func() domain.ItemID
}

func NewService(plans planrepo.Repository, items itemrepo.Repository, overrides partyoverride.Store, clk clock.Clock) *Service {
	return &Service{
		plans:     plans,
		items:     items,
		overrides: overrides,
		clock:     clk,
		log:       zerolog.Nop(),
		currency:  domain.DefaultCurrency,
		newPlanID: func() domain.PlanID { return domain.PlanID(uuid.NewString()) },
		newDayID:  func() domain.DayID { return domain.DayID(uuid.NewString()) },
		newItemID: func() domain.ItemID { return domain.ItemID(uuid.NewString()) },
	}
}

// WithLogger sets the service logger and returns the service.
func (s *Service) WithLogger(l zerolog.Logger) *Service {
	s.log = l.With().Str("component", "itinerary").Logger()
	return s
}

// WithDefaultCurrency sets the currency given to plans created or updated without one.
func (s *Service) WithDefaultCurrency(code string) *Service {
	if c := domain.NormalizeCurrency(code); len(c) == 3 {
		s.currency = c
	}
	return s
}

// SetNewIDsForTest overrides ID generation for deterministic tests. Nil functions are ignored.
// It should not be used in production code.
func (s *Service) SetNewIDsForTest(plan func() domain.PlanID, day func() domain.DayID, item func() domain.ItemID) {
	if plan != nil {
		s.newPlanID = plan
	}
	if day != nil {
		s.newDayID = day
	}
	if item != nil {
		s.newItemID = item
	}
}

// NextSortOrder returns a display sort order for a newly added item: the clock in
// milliseconds, bumped so that every value is strictly greater than the previous one.
func (s *Service) NextSortOrder() int64 {
	v := s.clock.Now().UnixMilli()
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	if v <= s.lastOrder {
		v = s.lastOrder + 1
	}
	s.lastOrder = v
	return v
}
