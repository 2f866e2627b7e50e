package booking

import (
	"time"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/bookingsink"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/idempotency"
)

type Customer struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,min=6"`
	// Country is free text, required when the batch contains a car rental.
	Country string `json:"country" validate:"omitempty,max=64"`
}

type Request struct {
	Customer Customer
	// Note is appended to every submission's notes.
	Note string
	// IdempotencyKey, when set, makes retries of the same batch replay accepted submissions.
	IdempotencyKey idempotency.Key
}

// Submission is one compiled booking request.
type Submission struct {
	Kind       bookingsink.Kind
	Key        string
	ItemID     domain.ItemID
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

type Outcome struct {
	Submission Submission
	BookingID  bookingsink.BookingID
	Err        error
}

// Result groups submission outcomes. A failed submission does not stop the others.
type Result struct {
	Accepted []Outcome
	Replayed []Outcome
	Failed   []Outcome
}
