package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/itinerary"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
)

func planID(r *http.Request) domain.PlanID {
	return domain.PlanID(chi.URLParam(r, "planID"))
}

func (s *Server) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req createPlanRequest
	if !s.decode(w, r, &req) {
		return
	}
	p, err := s.Itinerary.CreatePlan(r.Context(), req.toInput())
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPlanJSON(p))
}

func (s *Server) GetPlan(w http.ResponseWriter, r *http.Request) {
	p, err := s.Itinerary.GetPlan(r.Context(), planID(r))
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlanJSON(p))
}

func (s *Server) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	var req updatePlanRequest
	if !s.decode(w, r, &req) {
		return
	}
	p, err := s.Itinerary.UpdatePlan(r.Context(), planID(r), req.toInput())
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	s.Boards.Invalidate(p.ID)
	writeJSON(w, http.StatusOK, toPlanJSON(p))
}

func (s *Server) DeletePlan(w http.ResponseWriter, r *http.Request) {
	id := planID(r)
	if err := s.Itinerary.DeletePlan(r.Context(), id); err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	s.Boards.Close(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) GenerateDays(w http.ResponseWriter, r *http.Request) {
	var req generateDaysRequest
	if !s.decode(w, r, &req) {
		return
	}
	id := planID(r)
	days, err := s.Itinerary.GenerateDays(r.Context(), id, req.Confirm)
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	s.Boards.Invalidate(id)

	p, err := s.Itinerary.GetPlan(r.Context(), id)
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	out := make([]dayJSON, 0, len(days))
	for _, d := range days {
		out = append(out, toDayJSON(p, d))
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": out})
}

func (s *Server) UpdateDay(w http.ResponseWriter, r *http.Request) {
	var req updateDayRequest
	if !s.decode(w, r, &req) {
		return
	}
	id := planID(r)
	dayID := domain.DayID(chi.URLParam(r, "dayID"))
	b, err := s.Itinerary.LoadBoard(r.Context(), id)
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	if _, ok := b.Day(dayID); !ok {
		writeError(w, r, http.StatusNotFound, "DAY_NOT_FOUND", "day not found", nil)
		return
	}
	d, err := s.Itinerary.UpdateDayFields(r.Context(), dayID, itinerary.DayPatch{
		City:  optional(req.City, same[string]),
		Notes: optional(req.Notes, same[string]),
	})
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	s.Boards.Invalidate(id)
	writeJSON(w, http.StatusOK, toDayJSON(b.Plan, d))
}

func (s *Server) GetBoard(w http.ResponseWriter, r *http.Request) {
	b, err := s.Boards.Open(planID(r)).Load(r.Context())
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toBoardJSON(b))
}

func (s *Server) GetParty(w http.ResponseWriter, r *http.Request) {
	p, err := s.Itinerary.ResolveParty(r.Context(), planID(r))
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toPartyJSON(p))
}

func (s *Server) SetPartyOverride(w http.ResponseWriter, r *http.Request) {
	var req partyJSON
	if !s.decode(w, r, &req) {
		return
	}
	p, err := s.Itinerary.SetPartyOverride(r.Context(), planID(r), req.toDomain())
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toPartyJSON(p))
}

func (s *Server) ClearPartyOverride(w http.ResponseWriter, r *http.Request) {
	p, err := s.Itinerary.ClearPartyOverride(r.Context(), planID(r))
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toPartyJSON(p))
}
