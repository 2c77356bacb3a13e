package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"league-app/internal/league"
	"league-app/internal/model"
	"league-app/internal/store"

	"github.com/rs/zerolog"
)

type testServer struct {
	t       *testing.T
	store   *store.MemoryStore
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	st := store.NewMemoryStore()
	return newTestServerOn(t, st, st)
}

// newTestServerOn serves an engine over backend while tests inspect mem.
func newTestServerOn(t *testing.T, mem *store.MemoryStore, backend store.Store) *testServer {
	t.Helper()
	engine := league.NewEngine(backend, league.Options{Logger: zerolog.Nop()})
	return &testServer{t: t, store: mem, handler: NewServer(engine, Options{Logger: zerolog.Nop()}).Routes()}
}

// fixedSideStore refuses to move a stored goal to the other side.
type fixedSideStore struct{ store.Store }

func (s fixedSideStore) RunInTx(ctx context.Context, fn func(q store.Queries) error) error {
	return s.Store.RunInTx(ctx, func(q store.Queries) error {
		return fn(fixedSideQueries{q})
	})
}

type fixedSideQueries struct{ store.Queries }

func (q fixedSideQueries) UpdateGoal(ctx context.Context, goal model.Goal) error {
	prev, err := q.Queries.GetGoal(ctx, goal.ID)
	if err != nil {
		return err
	}
	if prev.IsHome != goal.IsHome {
		return errors.New("goal side is fixed")
	}
	return q.Queries.UpdateGoal(ctx, goal)
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// call performs the request, checks the status and decodes the reply into
// out when out is non-nil.
func (s *testServer) call(method, path string, body any, status int, out any) {
	s.t.Helper()
	rec := s.do(method, path, body)
	if rec.Code != status {
		s.t.Fatalf("%s %s: status %d, want %d, body %s", method, path, rec.Code, status, rec.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			s.t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
		}
	}
}

type league1 struct {
	table  TableView
	round  RoundView
	a, b   TeamView
	pa, pb PlayerView
}

func (s *testServer) setup() league1 {
	s.t.Helper()
	var l league1
	s.call(http.MethodPost, "/tables", map[string]any{"name": "Premier"}, http.StatusCreated, &l.table)
	s.call(http.MethodPost, "/rounds", map[string]any{"name": "Round 1"}, http.StatusCreated, &l.round)
	s.call(http.MethodPost, "/teams", map[string]any{"name": "Alpha"}, http.StatusCreated, &l.a)
	s.call(http.MethodPost, "/teams", map[string]any{"name": "Bravo"}, http.StatusCreated, &l.b)
	s.call(http.MethodPost, "/teams/"+l.a.ID+"/players", map[string]any{"first_name": "Adam", "last_name": "Nowak"}, http.StatusCreated, &l.pa)
	s.call(http.MethodPost, "/teams/"+l.b.ID+"/players", map[string]any{"first_name": "Bruno"}, http.StatusCreated, &l.pb)
	return l
}

func (s *testServer) submitFight(l league1, score1, score2 int) string {
	s.t.Helper()
	var created idResponse
	s.call(http.MethodPost, "/rounds/"+l.round.ID+"/fights", map[string]any{
		"table_id": l.table.ID, "team1_id": l.a.ID, "team2_id": l.b.ID, "score1": score1, "score2": score2,
	}, http.StatusCreated, &created)
	return created.ID
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status %d", rec.Code)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("missing request id header")
	}
}

func TestFightAndGoalFlow(t *testing.T) {
	s := newTestServer(t)
	l := s.setup()
	fightID := s.submitFight(l, 3, 1)

	var standings []StandingView
	s.call(http.MethodGet, "/tables/"+l.table.ID+"/standings", nil, http.StatusOK, &standings)
	if len(standings) != 2 || standings[0].TeamName != "Alpha" || standings[0].Rank != 1 {
		t.Fatalf("standings = %+v", standings)
	}
	if got := standings[0]; got.Points != 2 || got.GoalDifference != 2 || got.Played != 1 {
		t.Fatalf("leader = %+v", got)
	}

	var goal idResponse
	s.call(http.MethodPost, "/fights/"+fightID+"/goals", map[string]any{"player_id": l.pa.ID, "count": 3, "is_home": true}, http.StatusCreated, &goal)

	var edited editGoalResponse
	s.call(http.MethodPut, "/goals/"+goal.ID, map[string]any{"count": 2, "is_home": false}, http.StatusOK, &edited)
	if edited.Delta != -1 {
		t.Fatalf("delta = %d, want -1", edited.Delta)
	}
	var goals []GoalView
	s.call(http.MethodGet, "/fights/"+fightID+"/goals", nil, http.StatusOK, &goals)
	if len(goals) != 1 || goals[0].Count != 2 || goals[0].IsHome {
		t.Fatalf("goals = %+v", goals)
	}

	var player PlayerView
	s.call(http.MethodGet, "/players/"+l.pa.ID, nil, http.StatusOK, &player)
	if player.TotalGoals != 2 || player.FullName != "Adam Nowak" {
		t.Fatalf("player = %+v", player)
	}

	s.call(http.MethodPut, "/fights/"+fightID, map[string]any{"score1": 0, "score2": 0}, http.StatusNoContent, nil)
	var fight FightView
	s.call(http.MethodGet, "/fights/"+fightID, nil, http.StatusOK, &fight)
	if fight.Score1 != 0 || fight.Score2 != 0 {
		t.Fatalf("fight = %+v", fight)
	}

	s.call(http.MethodDelete, "/fights/"+fightID, nil, http.StatusNoContent, nil)
	s.call(http.MethodGet, "/players/"+l.pa.ID, nil, http.StatusOK, &player)
	if player.TotalGoals != 0 {
		t.Fatalf("total after fight delete = %d", player.TotalGoals)
	}
	s.call(http.MethodGet, "/tables/"+l.table.ID+"/standings", nil, http.StatusOK, &standings)
	for _, row := range standings {
		if row.Played != 0 || row.Points != 0 {
			t.Fatalf("row after delete = %+v", row)
		}
	}
}

func TestGoalUpdateIsAllOrNothing(t *testing.T) {
	mem := store.NewMemoryStore()
	s := newTestServerOn(t, mem, fixedSideStore{mem})
	l := s.setup()
	fightID := s.submitFight(l, 2, 0)
	var goal idResponse
	s.call(http.MethodPost, "/fights/"+fightID+"/goals", map[string]any{"player_id": l.pa.ID, "count": 2, "is_home": true}, http.StatusCreated, &goal)

	var resp errorResponse
	s.call(http.MethodPut, "/goals/"+goal.ID, map[string]any{"count": 5, "is_home": false}, http.StatusInternalServerError, &resp)
	if resp.Code != "INTERNAL" {
		t.Fatalf("error body = %+v", resp)
	}

	var goals []GoalView
	s.call(http.MethodGet, "/fights/"+fightID+"/goals", nil, http.StatusOK, &goals)
	if len(goals) != 1 || goals[0].Count != 2 || !goals[0].IsHome {
		t.Fatalf("goals after failed edit = %+v", goals)
	}
	var player PlayerView
	s.call(http.MethodGet, "/players/"+l.pa.ID, nil, http.StatusOK, &player)
	if player.TotalGoals != 2 {
		t.Fatalf("total after failed edit = %d, want 2", player.TotalGoals)
	}

	var edited editGoalResponse
	s.call(http.MethodPut, "/goals/"+goal.ID, map[string]any{"count": 5}, http.StatusOK, &edited)
	if edited.Delta != 3 {
		t.Fatalf("delta = %d, want 3", edited.Delta)
	}
}

func TestRenameTeamAndRound(t *testing.T) {
	s := newTestServer(t)
	l := s.setup()

	var team TeamView
	s.call(http.MethodPut, "/teams/"+l.a.ID, map[string]any{"name": "  Zulu "}, http.StatusOK, &team)
	if team.ID != l.a.ID || team.Name != "Zulu" {
		t.Fatalf("team = %+v", team)
	}
	var teams []TeamView
	s.call(http.MethodGet, "/teams", nil, http.StatusOK, &teams)
	if len(teams) != 2 || teams[1].Name != "Zulu" {
		t.Fatalf("teams = %+v", teams)
	}

	s.call(http.MethodPost, "/rounds/"+l.round.ID+"/archive", nil, http.StatusNoContent, nil)
	var round RoundView
	s.call(http.MethodPut, "/rounds/"+l.round.ID, map[string]any{"name": "Final"}, http.StatusOK, &round)
	if round.Name != "Final" || !round.Archived {
		t.Fatalf("round = %+v", round)
	}

	s.call(http.MethodPut, "/teams/"+l.a.ID, map[string]any{"name": " "}, http.StatusBadRequest, nil)
	s.call(http.MethodPut, "/teams/nope", map[string]any{"name": "X"}, http.StatusNotFound, nil)
	s.call(http.MethodPut, "/rounds/nope", map[string]any{"name": "X"}, http.StatusNotFound, nil)
}

func TestRoundArchiveAndDelete(t *testing.T) {
	s := newTestServer(t)
	l := s.setup()
	s.submitFight(l, 1, 0)

	s.call(http.MethodPost, "/rounds/"+l.round.ID+"/archive", nil, http.StatusNoContent, nil)
	var rounds []RoundView
	s.call(http.MethodGet, "/rounds?archived=true", nil, http.StatusOK, &rounds)
	if len(rounds) != 1 || !rounds[0].Archived {
		t.Fatalf("archived rounds = %+v", rounds)
	}
	s.call(http.MethodPost, "/rounds/"+l.round.ID+"/fights", map[string]any{
		"table_id": l.table.ID, "team1_id": l.a.ID, "team2_id": l.b.ID, "score1": 0, "score2": 0,
	}, http.StatusBadRequest, nil)
	s.call(http.MethodGet, "/rounds?archived=maybe", nil, http.StatusBadRequest, nil)

	s.call(http.MethodDelete, "/rounds/"+l.round.ID, nil, http.StatusNoContent, nil)
	s.call(http.MethodGet, "/rounds/"+l.round.ID+"/fights", nil, http.StatusNotFound, nil)
}

func TestErrorStatuses(t *testing.T) {
	s := newTestServer(t)
	l := s.setup()
	fightID := s.submitFight(l, 2, 0)

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"same team", http.MethodPost, "/rounds/" + l.round.ID + "/fights",
			map[string]any{"table_id": l.table.ID, "team1_id": l.a.ID, "team2_id": l.a.ID, "score1": 1, "score2": 0},
			http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"missing score", http.MethodPost, "/rounds/" + l.round.ID + "/fights",
			map[string]any{"table_id": l.table.ID, "team1_id": l.a.ID, "team2_id": l.b.ID, "score1": 1},
			http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"unknown field", http.MethodPost, "/teams", map[string]any{"title": "x"}, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"zero goal", http.MethodPost, "/fights/" + fightID + "/goals",
			map[string]any{"player_id": l.pa.ID, "count": 0}, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"empty goal edit", http.MethodPut, "/goals/whatever", map[string]any{}, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"missing table", http.MethodGet, "/tables/nope/standings", nil, http.StatusNotFound, "NOT_FOUND"},
		{"missing goal", http.MethodDelete, "/goals/nope", nil, http.StatusNotFound, "NOT_FOUND"},
		{"missing team", http.MethodGet, "/teams/nope/players", nil, http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var resp errorResponse
			s.call(tc.method, tc.path, tc.body, tc.status, &resp)
			if resp.Code != tc.code || resp.Error == "" {
				t.Fatalf("error body = %+v", resp)
			}
		})
	}
}

func TestConsistencyConflictAndRebuild(t *testing.T) {
	s := newTestServer(t)
	l := s.setup()
	fightID := s.submitFight(l, 2, 0)

	err := s.store.RunInTx(t.Context(), func(q store.Queries) error {
		e, err := q.GetEntry(t.Context(), l.table.ID, l.a.ID)
		if err != nil {
			return err
		}
		e.Win, e.Points, e.Counter = 0, 0, 0
		return q.UpdateEntry(t.Context(), e)
	})
	if err != nil {
		t.Fatalf("corrupt: %v", err)
	}

	var resp errorResponse
	s.call(http.MethodDelete, "/fights/"+fightID, nil, http.StatusConflict, &resp)
	if resp.Code != "CONSISTENCY" {
		t.Fatalf("error body = %+v", resp)
	}

	var changed changedResponse
	s.call(http.MethodPost, "/tables/"+l.table.ID+"/rebuild", nil, http.StatusOK, &changed)
	if changed.Changed != 1 {
		t.Fatalf("changed = %d, want 1", changed.Changed)
	}
	s.call(http.MethodDelete, "/fights/"+fightID, nil, http.StatusNoContent, nil)
	s.call(http.MethodPost, "/players/"+l.pa.ID+"/rebuild", nil, http.StatusOK, &changed)
	if changed.Changed != 0 {
		t.Fatalf("player changed = %d, want 0", changed.Changed)
	}
}

func TestCatalogRoutes(t *testing.T) {
	s := newTestServer(t)
	l := s.setup()

	var teams []TeamView
	s.call(http.MethodGet, "/teams", nil, http.StatusOK, &teams)
	if len(teams) != 2 || teams[0].Name != "Alpha" {
		t.Fatalf("teams = %+v", teams)
	}
	var players []PlayerView
	s.call(http.MethodGet, "/teams/"+l.b.ID+"/players", nil, http.StatusOK, &players)
	if len(players) != 1 || players[0].FullName != "Bruno" {
		t.Fatalf("players = %+v", players)
	}

	var cup TableView
	s.call(http.MethodPost, "/tables", map[string]any{
		"name":      "Cup",
		"formula":   map[string]int{"win": 3, "draw": 1, "loss": 0},
		"tie_break": []string{"points", "wins"},
	}, http.StatusCreated, &cup)
	if cup.Formula.Win != 3 || len(cup.TieBreak) != 2 || cup.TieBreak[1] != "wins" {
		t.Fatalf("cup = %+v", cup)
	}
	var shown TableView
	s.call(http.MethodGet, "/tables/"+l.table.ID, nil, http.StatusOK, &shown)
	if shown.Formula.Win != 2 || len(shown.TieBreak) != 2 || shown.TieBreak[0] != "points" {
		t.Fatalf("default table = %+v", shown)
	}
	var tables []TableView
	s.call(http.MethodGet, "/tables", nil, http.StatusOK, &tables)
	if len(tables) != 2 {
		t.Fatalf("tables = %+v", tables)
	}
	s.call(http.MethodPost, "/tables", map[string]any{"name": "Bad", "tie_break": []string{"luck"}}, http.StatusBadRequest, nil)
}

func TestCORSPreflight(t *testing.T) {
	st := store.NewMemoryStore()
	engine := league.NewEngine(st, league.Options{Logger: zerolog.Nop()})
	handler := NewServer(engine, Options{Logger: zerolog.Nop(), CORSOrigins: []string{"https://league.example"}}).Routes()

	req := httptest.NewRequest(http.MethodOptions, "/teams", nil)
	req.Header.Set("Origin", "https://league.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://league.example" {
		t.Fatalf("allow origin = %q", got)
	}
}
