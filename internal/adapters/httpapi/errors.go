package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/oapi-codegen/nullable"
	"github.com/rs/zerolog"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/apperr"
)

type errorBody struct {
	Code      string                            `json:"code"`
	Message   string                            `json:"message"`
	Details   nullable.Nullable[map[string]any] `json:"details,omitempty"`
	RequestID nullable.Nullable[string]         `json:"requestId,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, message string, details map[string]any) {
	var er errorResponse
	er.Error.Code = code
	er.Error.Message = message
	if details != nil {
		er.Error.Details = nullable.NewNullableWithValue(details)
	}
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		er.Error.RequestID = nullable.NewNullableWithValue(rid)
	}
	writeJSON(w, status, er)
}

// writeAppError maps application errors onto the error envelope. Anything else is a 500.
func writeAppError(w http.ResponseWriter, r *http.Request, log zerolog.Logger, err error) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		if ae.Kind == apperr.KindTransport || ae.Kind == apperr.KindPartialBatch {
			log.Warn().Err(err).Str("code", ae.Code).Str("requestId", middleware.GetReqID(r.Context())).Msg("request failed")
		}
		writeError(w, r, ae.Status, ae.Code, ae.Message, ae.Details)
		return
	}
	log.Error().Err(err).Str("requestId", middleware.GetReqID(r.Context())).Msg("unhandled error")
	writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error", nil)
}

func writeValidationErrors(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid request", map[string]any{"body": err.Error()})
		return
	}
	details := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = fe.Tag()
	}
	writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid request", details)
}
