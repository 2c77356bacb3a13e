package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type createRoundRequest struct {
	Name string `json:"name"`
}

type archiveRoundRequest struct {
	Archived *bool `json:"archived"`
}

type submitFightRequest struct {
	TableID string `json:"table_id"`
	Team1ID string `json:"team1_id"`
	Team2ID string `json:"team2_id"`
	scoreFields
}

func (s *Server) handleRoundList(w http.ResponseWriter, r *http.Request) {
	archived, err := parseArchived(r)
	if err != nil {
		badRequest(w, "archived must be a boolean")
		return
	}
	rounds, err := s.engine.ListRounds(r.Context(), archived)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views(rounds, roundView))
}

func (s *Server) handleRoundCreate(w http.ResponseWriter, r *http.Request) {
	var req createRoundRequest
	if !decode(w, r, &req) {
		return
	}
	round, err := s.engine.CreateRound(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, roundView(round))
}

func (s *Server) handleRoundRename(w http.ResponseWriter, r *http.Request) {
	var req createRoundRequest
	if !decode(w, r, &req) {
		return
	}
	round, err := s.engine.RenameRound(r.Context(), chi.URLParam(r, "roundID"), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, roundView(round))
}

// handleRoundArchive archives by default; {"archived": false} restores.
func (s *Server) handleRoundArchive(w http.ResponseWriter, r *http.Request) {
	var req archiveRoundRequest
	if !decode(w, r, &req) {
		return
	}
	archived := req.Archived == nil || *req.Archived
	if err := s.engine.ArchiveRound(r.Context(), chi.URLParam(r, "roundID"), archived); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRoundDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.DeleteRound(r.Context(), chi.URLParam(r, "roundID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFightList(w http.ResponseWriter, r *http.Request) {
	fights, err := s.engine.ListRoundFights(r.Context(), chi.URLParam(r, "roundID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views(fights, fightView))
}

func (s *Server) handleFightCreate(w http.ResponseWriter, r *http.Request) {
	var req submitFightRequest
	if !decode(w, r, &req) {
		return
	}
	score1, score2, ok := req.scores(w)
	if !ok {
		return
	}
	id, err := s.engine.SubmitFightResult(r.Context(), chi.URLParam(r, "roundID"), req.TableID, req.Team1ID, req.Team2ID, score1, score2)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}
