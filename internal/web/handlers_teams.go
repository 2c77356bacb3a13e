package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type createTeamRequest struct {
	Name string `json:"name"`
}

type createPlayerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (s *Server) handleTeamList(w http.ResponseWriter, r *http.Request) {
	teams, err := s.engine.ListTeams(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views(teams, teamView))
}

func (s *Server) handleTeamCreate(w http.ResponseWriter, r *http.Request) {
	var req createTeamRequest
	if !decode(w, r, &req) {
		return
	}
	team, err := s.engine.CreateTeam(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, teamView(team))
}

func (s *Server) handleTeamRename(w http.ResponseWriter, r *http.Request) {
	var req createTeamRequest
	if !decode(w, r, &req) {
		return
	}
	team, err := s.engine.RenameTeam(r.Context(), chi.URLParam(r, "teamID"), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, teamView(team))
}

func (s *Server) handlePlayerList(w http.ResponseWriter, r *http.Request) {
	players, err := s.engine.ListTeamPlayers(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views(players, playerView))
}

func (s *Server) handlePlayerCreate(w http.ResponseWriter, r *http.Request) {
	var req createPlayerRequest
	if !decode(w, r, &req) {
		return
	}
	player, err := s.engine.CreatePlayer(r.Context(), chi.URLParam(r, "teamID"), req.FirstName, req.LastName)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, playerView(player))
}

func (s *Server) handlePlayerShow(w http.ResponseWriter, r *http.Request) {
	player, err := s.engine.GetPlayer(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, playerView(player))
}

func (s *Server) handlePlayerRebuild(w http.ResponseWriter, r *http.Request) {
	changed, err := s.engine.RebuildPlayerTotal(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, changedResponse{Changed: changed})
}
