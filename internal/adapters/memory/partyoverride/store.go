package partyoverride

import (
	"context"
	"sync"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
)

// Store is an in-memory implementation of partyoverride.Store.
// It is safe for concurrent use.
type Store struct {
	mu sync.RWMutex
	m  map[domain.PlanID]domain.Party
}

func NewStore() *Store {
	return &Store{m: make(map[domain.PlanID]domain.Party)}
}

func (s *Store) Get(ctx context.Context, planID domain.PlanID) (domain.Party, bool, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.m[planID]
	return p, ok, nil
}

func (s *Store) Put(ctx context.Context, planID domain.PlanID, p domain.Party) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[planID] = p
	return nil
}

func (s *Store) Delete(ctx context.Context, planID domain.PlanID) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, planID)
	return nil
}
