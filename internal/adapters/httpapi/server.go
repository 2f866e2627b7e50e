package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/rs/zerolog"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/booking"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/costs"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/itinerary"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/ordering"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/ranges"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// Server is the HTTP adapter over the planner services.
type Server struct {
	Itinerary *itinerary.Service
	Ranges    *ranges.Service
	Boards    *ordering.Registry
	Costs     *costs.Service
	Bookings  *booking.Compiler

	log      zerolog.Logger
	validate *validator.Validate
}

func NewServer(itin *itinerary.Service, rng *ranges.Service, boards *ordering.Registry, cst *costs.Service, bk *booking.Compiler) *Server {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return &Server{
		Itinerary: itin,
		Ranges:    rng,
		Boards:    boards,
		Costs:     cst,
		Bookings:  bk,
		log:       zerolog.Nop(),
		validate:  v,
	}
}

// WithLogger sets the adapter logger and returns the server.
func (s *Server) WithLogger(l zerolog.Logger) *Server {
	s.log = l.With().Str("component", "httpapi").Logger()
	return s
}

// decode reads a JSON body into dst and validates it. It writes the error response itself
// and returns false when the request cannot proceed.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		switch {
		case errors.Is(err, io.EOF):
			writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "missing request body", nil)
		case errors.Is(err, openapi_types.ErrValidationEmail):
			writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid request", map[string]any{"email": "email"})
		default:
			writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "malformed request body", map[string]any{"body": err.Error()})
		}
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeValidationErrors(w, r, err)
		return false
	}
	return true
}
