// Package partyoverride keeps per-plan party overrides in Redis.
package partyoverride

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
)

// KeyPrefix namespaces override keys; the plan id follows it.
const KeyPrefix = "planner:party:"

type partyDoc struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
}

// Store is a Redis implementation of partyoverride.Store.
// A zero TTL stores overrides without expiry.
type Store struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewStore(client redis.Cmdable, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func Key(planID domain.PlanID) string {
	return KeyPrefix + string(planID)
}

func (s *Store) Get(ctx context.Context, planID domain.PlanID) (domain.Party, bool, error) {
	if s.client == nil {
		return domain.Party{}, false, errors.New("nil redis client")
	}
	raw, err := s.client.Get(ctx, Key(planID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Party{}, false, nil
		}
		return domain.Party{}, false, err
	}
	p, err := decodeParty(raw)
	if err != nil {
		return domain.Party{}, false, err
	}
	return p, true, nil
}

func (s *Store) Put(ctx context.Context, planID domain.PlanID, p domain.Party) error {
	if s.client == nil {
		return errors.New("nil redis client")
	}
	raw, err := json.Marshal(partyDoc{Adults: p.Adults, Children: p.Children})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, Key(planID), raw, s.ttl).Err()
}

func (s *Store) Delete(ctx context.Context, planID domain.PlanID) error {
	if s.client == nil {
		return errors.New("nil redis client")
	}
	return s.client.Del(ctx, Key(planID)).Err()
}

func decodeParty(raw []byte) (domain.Party, error) {
	var doc partyDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.Party{}, fmt.Errorf("decode party override: %w", err)
	}
	return domain.Party{Adults: doc.Adults, Children: doc.Children}, nil
}
