package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type RouterOptions struct {
	Logger zerolog.Logger
	// RateLimiter is optional; nil disables rate limiting.
	RateLimiter *RateLimiter
}

// NewRouter constructs the API HTTP router.
func NewRouter(s *Server, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(opts.Logger))
	r.Use(middleware.Recoverer)

	// Health endpoint is not rate limited (used for infra checks).
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/v1/plans", func(r chi.Router) {
		if opts.RateLimiter != nil {
			r.Use(opts.RateLimiter.Middleware)
		}
		r.Post("/", s.CreatePlan)
		r.Route("/{planID}", func(r chi.Router) {
			r.Get("/", s.GetPlan)
			r.Patch("/", s.UpdatePlan)
			r.Delete("/", s.DeletePlan)

			r.Post("/days/generate", s.GenerateDays)
			r.Patch("/days/{dayID}", s.UpdateDay)
			r.Get("/board", s.GetBoard)

			r.Get("/party", s.GetParty)
			r.Put("/party-override", s.SetPartyOverride)
			r.Delete("/party-override", s.ClearPartyOverride)

			r.Post("/items", s.AddItem)
			r.Patch("/items/{itemID}", s.UpdateItem)
			r.Delete("/items/{itemID}", s.DeleteItem)
			r.Post("/items/{itemID}/move", s.MoveItem)
			r.Post("/items/{itemID}/drop", s.DropItem)

			r.Post("/ranges", s.AddRange)
			r.Get("/ranges/{rangeID}", s.GetRange)
			r.Delete("/ranges/{rangeID}", s.DeleteRange)

			r.Get("/costs", s.GetCosts)

			r.Post("/bookings/preview", s.PreviewBookings)
			r.Post("/bookings", s.SubmitBookings)
		})
	})
	return r
}
