package web

import (
	"net/http"

	"league-app/internal/league"

	"github.com/go-chi/chi/v5"
)

type submitGoalRequest struct {
	PlayerID string `json:"player_id"`
	Count    int    `json:"count"`
	IsHome   bool   `json:"is_home"`
}

type editGoalRequest struct {
	Count  *int  `json:"count"`
	IsHome *bool `json:"is_home"`
}

type editGoalResponse struct {
	Delta int `json:"delta"`
}

func (s *Server) handleFightShow(w http.ResponseWriter, r *http.Request) {
	fight, err := s.engine.GetFight(r.Context(), chi.URLParam(r, "fightID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fightView(fight))
}

func (s *Server) handleFightUpdate(w http.ResponseWriter, r *http.Request) {
	var req scoreFields
	if !decode(w, r, &req) {
		return
	}
	score1, score2, ok := req.scores(w)
	if !ok {
		return
	}
	if err := s.engine.EditFightResult(r.Context(), chi.URLParam(r, "fightID"), score1, score2); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFightDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.DeleteFight(r.Context(), chi.URLParam(r, "fightID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGoalList(w http.ResponseWriter, r *http.Request) {
	goals, err := s.engine.ListFightGoals(r.Context(), chi.URLParam(r, "fightID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views(goals, goalView))
}

func (s *Server) handleGoalCreate(w http.ResponseWriter, r *http.Request) {
	var req submitGoalRequest
	if !decode(w, r, &req) {
		return
	}
	id, err := s.engine.SubmitGoal(r.Context(), chi.URLParam(r, "fightID"), req.PlayerID, req.Count, req.IsHome)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (s *Server) handleGoalUpdate(w http.ResponseWriter, r *http.Request) {
	var req editGoalRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Count == nil && req.IsHome == nil {
		badRequest(w, "count or is_home is required")
		return
	}
	delta, err := s.engine.UpdateGoal(r.Context(), chi.URLParam(r, "goalID"), league.GoalEdit{Count: req.Count, IsHome: req.IsHome})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, editGoalResponse{Delta: delta})
}

func (s *Server) handleGoalDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.DeleteGoal(r.Context(), chi.URLParam(r, "goalID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
