package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/apperr"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/booking"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/ports/out/idempotency"
)

// IdempotencyKeyHeader carries the caller's key for a booking batch.
const IdempotencyKeyHeader = "Idempotency-Key"

func idempotencyKey(raw string) idempotency.Key {
	return idempotency.Key(strings.TrimSpace(raw))
}

func (s *Server) PreviewBookings(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if !s.decode(w, r, &req) {
		return
	}
	subs, err := s.Bookings.Compile(r.Context(), planID(r), req.toRequest(""))
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	out := make([]submissionJSON, 0, len(subs))
	for _, sub := range subs {
		out = append(out, toSubmissionJSON(sub))
	}
	writeJSON(w, http.StatusOK, map[string]any{"submissions": out})
}

func (s *Server) SubmitBookings(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.Bookings.Submit(r.Context(), planID(r), req.toRequest(r.Header.Get(IdempotencyKeyHeader)))
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, bookingStatus(res), toBookingResultJSON(res))
}

// bookingStatus is 200 when every submission went through, 207 when some failed and 502 when all did.
func bookingStatus(res booking.Result) int {
	switch {
	case len(res.Failed) == 0:
		return http.StatusOK
	case len(res.Accepted)+len(res.Replayed) == 0:
		return http.StatusBadGateway
	default:
		return http.StatusMultiStatus
	}
}

func toBookingResultJSON(res booking.Result) bookingResultJSON {
	conv := func(outs []booking.Outcome) []submissionJSON {
		list := make([]submissionJSON, 0, len(outs))
		for _, o := range outs {
			sj := toSubmissionJSON(o.Submission)
			sj.BookingID = string(o.BookingID)
			if o.Err != nil {
				sj.Error = outcomeError(o.Err)
			}
			list = append(list, sj)
		}
		return list
	}
	return bookingResultJSON{
		Accepted: conv(res.Accepted),
		Replayed: conv(res.Replayed),
		Failed:   conv(res.Failed),
	}
}

func outcomeError(err error) *submissionErrorJSON {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return &submissionErrorJSON{Code: ae.Code, Message: ae.Message}
	}
	return &submissionErrorJSON{Code: "BOOKING_REJECTED", Message: err.Error()}
}
