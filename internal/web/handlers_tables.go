package web

import (
	"net/http"

	"league-app/internal/league"
	"league-app/internal/model"

	"github.com/go-chi/chi/v5"
)

type createTableRequest struct {
	Name     string       `json:"name"`
	Group    string       `json:"group"`
	Formula  *FormulaView `json:"formula"`
	TieBreak []string     `json:"tie_break"`
}

func (req createTableRequest) spec() league.TableSpec {
	spec := league.TableSpec{Name: req.Name, Group: req.Group}
	if req.Formula != nil {
		spec.Formula = &model.PointsFormula{Win: req.Formula.Win, Draw: req.Formula.Draw, Loss: req.Formula.Loss}
	}
	for _, k := range req.TieBreak {
		spec.TieBreak = append(spec.TieBreak, model.RankKey(k))
	}
	return spec
}

func (s *Server) handleTableList(w http.ResponseWriter, r *http.Request) {
	tables, err := s.engine.ListTables(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views(tables, tableView))
}

func (s *Server) handleTableCreate(w http.ResponseWriter, r *http.Request) {
	var req createTableRequest
	if !decode(w, r, &req) {
		return
	}
	table, err := s.engine.CreateTable(r.Context(), req.spec())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tableView(table))
}

func (s *Server) handleTableShow(w http.ResponseWriter, r *http.Request) {
	table, err := s.engine.GetTable(r.Context(), chi.URLParam(r, "tableID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tableView(table))
}

func (s *Server) handleStandings(w http.ResponseWriter, r *http.Request) {
	entries, err := s.engine.GetStandings(r.Context(), chi.URLParam(r, "tableID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	teams, err := s.engine.ListTeams(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, BuildStandings(teams, entries))
}

func (s *Server) handleTableRebuild(w http.ResponseWriter, r *http.Request) {
	changed, err := s.engine.RebuildTable(r.Context(), chi.URLParam(r, "tableID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, changedResponse{Changed: changed})
}
