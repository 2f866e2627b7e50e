package bookingsink

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/bookingsink"
)

// Sink is an in-memory implementation of bookingsink.Sink that records every accepted request.
// It is safe for concurrent use.
type Sink struct {
	mu       sync.Mutex
	accepted []bookingsink.Request

	// FailWith, when set, is consulted before accepting a request; a non-nil error rejects it.
	FailWith func(r bookingsink.Request) error
}

func NewSink() *Sink {
	return &Sink{}
}

func (s *Sink) Submit(ctx context.Context, r bookingsink.Request) (bookingsink.BookingID, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		if err := s.FailWith(r); err != nil {
			return "", err
		}
	}
	s.accepted = append(s.accepted, r)
	return bookingsink.BookingID(uuid.NewString()), nil
}

// Accepted returns a copy of every accepted request in submission order.
func (s *Sink) Accepted() []bookingsink.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]bookingsink.Request(nil), s.accepted...)
}
