package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Overland-East-Bay/itinerary-planner-api/internal/app/apperr"
	"github.com/Overland-East-Bay/itinerary-planner-api/internal/domain"
)

func itemID(r *http.Request) domain.ItemID {
	return domain.ItemID(chi.URLParam(r, "itemID"))
}

// onPlan writes a 404 with code unless dayID is a day of the plan in the URL.
func (s *Server) onPlan(w http.ResponseWriter, r *http.Request, dayID domain.DayID, code, message string) bool {
	b, err := s.Itinerary.LoadBoard(r.Context(), planID(r))
	if err != nil {
		writeAppError(w, r, s.log, err)
		return false
	}
	if _, ok := b.Day(dayID); !ok {
		writeError(w, r, http.StatusNotFound, code, message, nil)
		return false
	}
	return true
}

func (s *Server) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !s.decode(w, r, &req) {
		return
	}
	id := planID(r)
	b, err := s.Itinerary.LoadBoard(r.Context(), id)
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	if _, ok := b.Day(domain.DayID(req.DayID)); !ok {
		writeError(w, r, http.StatusUnprocessableEntity, "DAY_NOT_FOUND", "day is not part of this plan", map[string]any{"dayId": req.DayID})
		return
	}
	it, err := s.Itinerary.AddItem(r.Context(), req.toInput())
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	s.Boards.Invalidate(id)
	writeJSON(w, http.StatusCreated, toItemJSON(it))
}

func (s *Server) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if !s.decode(w, r, &req) {
		return
	}
	existing, err := s.Itinerary.GetItem(r.Context(), itemID(r))
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	if !s.onPlan(w, r, existing.DayID, "ITEM_NOT_FOUND", "item not found") {
		return
	}
	it, err := s.Itinerary.UpdateItemData(r.Context(), existing.ID, req.toPatch(existing.Type))
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	s.Boards.Invalidate(planID(r))
	writeJSON(w, http.StatusOK, toItemJSON(it))
}

func (s *Server) DeleteItem(w http.ResponseWriter, r *http.Request) {
	existing, err := s.Itinerary.GetItem(r.Context(), itemID(r))
	if apperr.Is(err, apperr.KindNotFound) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	if !s.onPlan(w, r, existing.DayID, "ITEM_NOT_FOUND", "item not found") {
		return
	}
	if err := s.Itinerary.DeleteItem(r.Context(), existing.ID); err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	s.Boards.Invalidate(planID(r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) MoveItem(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if !s.decode(w, r, &req) {
		return
	}
	ctl := s.Boards.Open(planID(r))
	var (
		b   domain.Board
		err error
	)
	if req.Direction == "up" {
		b, err = ctl.MoveUp(r.Context(), itemID(r))
	} else {
		b, err = ctl.MoveDown(r.Context(), itemID(r))
	}
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toBoardJSON(b))
}

func (s *Server) DropItem(w http.ResponseWriter, r *http.Request) {
	var req dropRequest
	if !s.decode(w, r, &req) {
		return
	}
	b, err := s.Boards.Open(planID(r)).Drop(r.Context(), itemID(r), domain.DayID(req.DayID), req.Index)
	if err != nil {
		writeAppError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toBoardJSON(b))
}
