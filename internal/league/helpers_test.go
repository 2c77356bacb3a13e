package league

import (
	"context"
	"path/filepath"
	"testing"

	"league-app/internal/model"
	"league-app/internal/store"

	"github.com/rs/zerolog"
)

var backends = []struct {
	name string
	open func(t *testing.T) store.Store
}{
	{"memory", func(t *testing.T) store.Store { return store.NewMemoryStore() }},
	{"sqlite", func(t *testing.T) store.Store {
		st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "league.db"), store.SQLiteOptions{})
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		t.Cleanup(func() { _ = st.Close() })
		return st
	}},
}

type fixture struct {
	ctx     context.Context
	e       *Engine
	store   store.Store
	table   model.Table
	round   model.Round
	a, b, c model.Team
	// pa plays for a, pb for b, pc for c.
	pa, pb, pc model.Player
}

func eachBackend(t *testing.T, fn func(t *testing.T, f *fixture)) {
	t.Helper()
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			fn(t, newFixture(t, b.open(t)))
		})
	}
}

func newFixture(t *testing.T, st store.Store) *fixture {
	t.Helper()
	f := &fixture{ctx: context.Background(), store: st}
	f.e = NewEngine(st, Options{Logger: zerolog.Nop()})

	var err error
	if f.table, err = f.e.CreateTable(f.ctx, TableSpec{Name: "Premier", Group: "2024"}); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if f.round, err = f.e.CreateRound(f.ctx, "Round 1"); err != nil {
		t.Fatalf("create round: %v", err)
	}
	f.a, f.pa = f.team(t, "Alpha", "Adam")
	f.b, f.pb = f.team(t, "Bravo", "Bruno")
	f.c, f.pc = f.team(t, "Charlie", "Cezary")
	return f
}

func (f *fixture) team(t *testing.T, name, playerName string) (model.Team, model.Player) {
	t.Helper()
	team, err := f.e.CreateTeam(f.ctx, name)
	if err != nil {
		t.Fatalf("create team %s: %v", name, err)
	}
	player, err := f.e.CreatePlayer(f.ctx, team.ID, playerName, name)
	if err != nil {
		t.Fatalf("create player %s: %v", playerName, err)
	}
	return team, player
}

func (f *fixture) submit(t *testing.T, team1, team2 model.Team, score1, score2 int) string {
	t.Helper()
	id, err := f.e.SubmitFightResult(f.ctx, f.round.ID, f.table.ID, team1.ID, team2.ID, score1, score2)
	if err != nil {
		t.Fatalf("submit %s vs %s: %v", team1.Name, team2.Name, err)
	}
	return id
}

func (f *fixture) goal(t *testing.T, fightID string, player model.Player, count int, isHome bool) string {
	t.Helper()
	id, err := f.e.SubmitGoal(f.ctx, fightID, player.ID, count, isHome)
	if err != nil {
		t.Fatalf("goal for %s: %v", player.FullName(), err)
	}
	return id
}

func (f *fixture) standings(t *testing.T) []model.TableEntry {
	t.Helper()
	entries, err := f.e.GetStandings(f.ctx, f.table.ID)
	if err != nil {
		t.Fatalf("standings: %v", err)
	}
	return entries
}

func (f *fixture) entry(t *testing.T, team model.Team) model.TableEntry {
	t.Helper()
	for _, e := range f.standings(t) {
		if e.TeamID == team.ID {
			return e
		}
	}
	t.Fatalf("no entry for %s", team.Name)
	return model.TableEntry{}
}

func (f *fixture) total(t *testing.T, player model.Player) int {
	t.Helper()
	total, err := f.e.GetPlayerTotal(f.ctx, player.ID)
	if err != nil {
		t.Fatalf("player total: %v", err)
	}
	return total
}

func (f *fixture) order(t *testing.T) []string {
	t.Helper()
	ids := []string{}
	for _, e := range f.standings(t) {
		ids = append(ids, e.TeamID)
	}
	return ids
}

// corrupt rewrites stored rows behind the engine's back.
func (f *fixture) corrupt(t *testing.T, fn func(q store.Queries) error) {
	t.Helper()
	if err := f.store.RunInTx(f.ctx, fn); err != nil {
		t.Fatalf("corrupt: %v", err)
	}
}

type stats struct{ win, draw, loss, points, scoreFor, scoreAgainst int }

func statsOf(e model.TableEntry) stats {
	return stats{e.Win, e.Draw, e.Loss, e.Points, e.ScoreFor, e.ScoreAgainst}
}

// checkInvariants verifies the derived fields of every entry and every
// player total against the rows they are derived from.
func (f *fixture) checkInvariants(t *testing.T) {
	t.Helper()
	for _, e := range f.standings(t) {
		if e.Counter != e.Win+e.Draw+e.Loss {
			t.Fatalf("team %s: counter %d != %d+%d+%d", e.TeamID, e.Counter, e.Win, e.Draw, e.Loss)
		}
		if want := f.table.Formula.Points(e.Win, e.Draw, e.Loss); e.Points != want {
			t.Fatalf("team %s: points %d, formula gives %d", e.TeamID, e.Points, want)
		}
	}
	err := f.store.View(f.ctx, func(q store.Queries) error {
		for _, p := range []model.Player{f.pa, f.pb, f.pc} {
			player, err := q.GetPlayer(f.ctx, p.ID)
			if err != nil {
				return err
			}
			goals, err := q.ListPlayerGoals(f.ctx, p.ID)
			if err != nil {
				return err
			}
			sum := 0
			for _, g := range goals {
				sum += g.Count
			}
			if player.TotalGoals != sum {
				t.Errorf("player %s: total %d, goals sum to %d", p.ID, player.TotalGoals, sum)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("check players: %v", err)
	}
}
