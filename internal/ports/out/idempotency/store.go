package idempotency

import (
	"context"
	"time"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
)

// Key is the caller-provided idempotency key for one booking batch (Idempotency-Key header).
type Key string

// Fingerprint identifies one booking submission for idempotency purposes:
// key + plan + submission kind + selection key.
//
// The submission body hash lives on the Record, so a retry under the same key with a
// different payload is found and can be told apart from a replay.
type Fingerprint struct {
	Key    Key
	PlanID domain.PlanID
	Kind   string
	Target string
}

// Record is the stored outcome we can replay for a duplicate submission.
type Record struct {
	BodyHash  string
	BookingID string
	CreatedAt time.Time
}

// Store persists idempotency records for replaying accepted submissions on retries.
type Store interface {
	Get(ctx context.Context, fp Fingerprint) (Record, bool, error)
	Put(ctx context.Context, fp Fingerprint, rec Record) error
}
