package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/apperr"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
)

func rangeID(r *http.Request) domain.RangeID {
	return domain.RangeID(chi.URLParam(r, "rangeID"))
}

func (s *Server) AddRange(w http.ResponseWriter, r *http.Request) {
	var req addRangeRequest
	if !s.decode(w, r, &req) {
		return
	}
	id := planID(r)
	b, err := s.Itinerary.LoadBoard(r.Context(), id)
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	for _, dayID := range []string{req.StartDayID, req.EndDayID} {
		if _, ok := b.Day(domain.DayID(dayID)); !ok {
			writeError(w, r, http.StatusUnprocessableEntity, "DAY_NOT_FOUND", "day is not part of this plan", map[string]any{"dayId": dayID})
			return
		}
	}
	rg, err := s.Ranges.AddRange(r.Context(), req.toInput())
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	s.Boards.Invalidate(id)
	writeJSON(w, http.StatusCreated, toRangeJSON(rg))
}

func (s *Server) GetRange(w http.ResponseWriter, r *http.Request) {
	rg, err := s.Ranges.ListRange(r.Context(), rangeID(r))
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	if !s.onPlan(w, r, rg.Items[0].DayID, "RANGE_NOT_FOUND", "range not found") {
		return
	}
	writeJSON(w, http.StatusOK, toRangeJSON(rg))
}

func (s *Server) DeleteRange(w http.ResponseWriter, r *http.Request) {
	rg, err := s.Ranges.ListRange(r.Context(), rangeID(r))
	if apperr.Is(err, apperr.KindNotFound) {
		writeJSON(w, http.StatusOK, map[string]any{"deleted": 0})
		return
	}
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	if !s.onPlan(w, r, rg.Items[0].DayID, "RANGE_NOT_FOUND", "range not found") {
		return
	}
	n, err := s.Ranges.DeleteRange(r.Context(), rg.ID)
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	s.Boards.Invalidate(planID(r))
	writeJSON(w, http.StatusOK, map[string]any{"deleted": n})
}

func (s *Server) GetCosts(w http.ResponseWriter, r *http.Request) {
	b, err := s.Costs.Aggregate(r.Context(), planID(r))
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toCostsJSON(b))
}
