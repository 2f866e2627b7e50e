package bookingsink

import (
	"context"
	"errors"
	"time"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
)

// ErrRejected indicates the downstream booking system refused the request.
var ErrRejected = errors.New("booking request rejected")

type Kind string

const (
	KindTrip  Kind = "trip"
	KindHotel Kind = "hotel"
	KindCar   Kind = "car"
)

// BookingID identifies an accepted booking request downstream.
type BookingID string

type Customer struct {
	Name    string
	Email   string
	Phone   string
	Country string
}

// Request is one concrete booking request for a single service.
type Request struct {
	Kind   Kind
	PlanID domain.PlanID
	// Key identifies the planner selection behind the request (item id or range id).
	Key        string
	CatalogRef *domain.CatalogRef
	Title      string

	StartDate time.Time
	EndDate   time.Time
	Nights    int
	Days      int

	Party          domain.Party
	EstimatedTotal float64
	Currency       string

	Customer Customer
	Notes    string
}

// Sink writes booking requests. Each call is one independent write.
type Sink interface {
	Submit(ctx context.Context, r Request) (BookingID, error)
}
