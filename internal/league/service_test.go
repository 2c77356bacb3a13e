package league

import (
	"errors"
	"slices"
	"testing"

	"league-app/internal/model"
	"league-app/internal/store"

	"github.com/rs/zerolog"
)

func TestSubmitFightResultWin(t *testing.T) {
	eachBackend(t, func(t *testing.T, f *fixture) {
		f.submit(t, f.a, f.b, 3, 1)

		if got, want := statsOf(f.entry(t, f.a)), (stats{win: 1, points: 2, scoreFor: 3, scoreAgainst: 1}); got != want {
			t.Fatalf("entry A = %+v, want %+v", got, want)
		}
		if got, want := statsOf(f.entry(t, f.b)), (stats{loss: 1, scoreFor: 1, scoreAgainst: 3}); got != want {
			t.Fatalf("entry B = %+v, want %+v", got, want)
		}
		if got := f.order(t); !slices.Equal(got, []string{f.a.ID, f.b.ID}) {
			t.Fatalf("standings order = %v", got)
		}
		f.checkInvariants(t)
	})
}

func TestSubmitFightResultDrawKeepsInsertionOrder(t *testing.T) {
	eachBackend(t, func(t *testing.T, f *fixture) {
		f.submit(t, f.a, f.b, 2, 2)

		want := stats{draw: 1, points: 1, scoreFor: 2, scoreAgainst: 2}
		for _, team := range []model.Team{f.a, f.b} {
			if got := statsOf(f.entry(t, team)); got != want {
				t.Fatalf("entry %s = %+v, want %+v", team.Name, got, want)
			}
		}
		for i := 0; i < 3; i++ {
			if got := f.order(t); !slices.Equal(got, []string{f.a.ID, f.b.ID}) {
				t.Fatalf("tie order = %v", got)
			}
		}
	})
}

func TestSubmitFightResultRejectsInvalid(t *testing.T) {
	eachBackend(t, func(t *testing.T, f *fixture) {
		cases := []struct {
			name           string
			round, table   string
			team1, team2   string
			score1, score2 int
			code           Code
		}{
			{"same team", f.round.ID, f.table.ID, f.a.ID, f.a.ID, 1, 0, CodeInvalidArgument},
			{"negative score", f.round.ID, f.table.ID, f.a.ID, f.b.ID, -1, 0, CodeInvalidArgument},
			{"missing round", "nope", f.table.ID, f.a.ID, f.b.ID, 1, 0, CodeNotFound},
			{"missing table", f.round.ID, "nope", f.a.ID, f.b.ID, 1, 0, CodeNotFound},
			{"missing team", f.round.ID, f.table.ID, f.a.ID, "nope", 1, 0, CodeNotFound},
		}
		for _, tc := range cases {
			_, err := f.e.SubmitFightResult(f.ctx, tc.round, tc.table, tc.team1, tc.team2, tc.score1, tc.score2)
			if CodeOf(err) != tc.code {
				t.Fatalf("%s: expected %s, got %v", tc.name, tc.code, err)
			}
		}
		if got := f.standings(t); len(got) != 0 {
			t.Fatalf("rejected submissions created entries: %+v", got)
		}
		fights, err := f.e.ListRoundFights(f.ctx, f.round.ID)
		if err != nil {
			t.Fatalf("list fights: %v", err)
		}
		if len(fights) != 0 {
			t.Fatalf("rejected submissions created fights: %+v", fights)
		}
	})
}

func TestErrorsMatchSentinels(t *testing.T) {
	eachBackend(t, func(t *testing.T, f *fixture) {
		_, err := f.e.SubmitFightResult(f.ctx, f.round.ID, f.table.ID, f.a.ID, f.a.ID, 1, 0)
		if !errors.Is(err, ErrInvalidArgument) || errors.Is(err, ErrNotFound) {
			t.Fatalf("expected invalid argument, got %v", err)
		}
		if _, err := f.e.GetPlayerTotal(f.ctx, "ghost"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}

func TestArchivedRoundRejectsFights(t *testing.T) {
	eachBackend(t, func(t *testing.T, f *fixture) {
		fightID := f.submit(t, f.a, f.b, 1, 0)
		if err := f.e.ArchiveRound(f.ctx, f.round.ID, true); err != nil {
			t.Fatalf("archive: %v", err)
		}

		_, err := f.e.SubmitFightResult(f.ctx, f.round.ID, f.table.ID, f.a.ID, f.c.ID, 1, 0)
		if CodeOf(err) != CodeInvalidArgument {
			t.Fatalf("expected invalid argument for archived round, got %v", err)
		}
		if got := f.entry(t, f.a).Counter; got != 1 {
			t.Fatalf("archived fight must still count, counter=%d", got)
		}
		if err := f.e.EditFightResult(f.ctx, fightID, 0, 1); err != nil {
			t.Fatalf("edit fight in archived round: %v", err)
		}

		archived, err := f.e.ListRounds(f.ctx, true)
		if err != nil || len(archived) != 1 || archived[0].ID != f.round.ID {
			t.Fatalf("archived rounds = %+v, err=%v", archived, err)
		}
		present, err := f.e.ListRounds(f.ctx, false)
		if err != nil || len(present) != 0 {
			t.Fatalf("present rounds = %+v, err=%v", present, err)
		}

		if err := f.e.ArchiveRound(f.ctx, f.round.ID, false); err != nil {
			t.Fatalf("unarchive: %v", err)
		}
		f.submit(t, f.a, f.c, 1, 0)
		if err := f.e.ArchiveRound(f.ctx, "nope", true); CodeOf(err) != CodeNotFound {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}

func TestCatalog(t *testing.T) {
	eachBackend(t, func(t *testing.T, f *fixture) {
		if _, err := f.e.CreateTeam(f.ctx, "  "); CodeOf(err) != CodeInvalidArgument {
			t.Fatalf("blank team name: %v", err)
		}
		if _, err := f.e.CreatePlayer(f.ctx, "nope", "Jan", "Kowalski"); CodeOf(err) != CodeNotFound {
			t.Fatalf("player for missing team: %v", err)
		}
		if _, err := f.e.CreatePlayer(f.ctx, f.a.ID, " ", ""); CodeOf(err) != CodeInvalidArgument {
			t.Fatalf("blank player name: %v", err)
		}
		if _, err := f.e.CreateRound(f.ctx, ""); CodeOf(err) != CodeInvalidArgument {
			t.Fatalf("blank round name: %v", err)
		}

		teams, err := f.e.ListTeams(f.ctx)
		if err != nil {
			t.Fatalf("list teams: %v", err)
		}
		names := []string{}
		for _, team := range teams {
			names = append(names, team.Name)
		}
		if !slices.Equal(names, []string{"Alpha", "Bravo", "Charlie"}) {
			t.Fatalf("teams = %v", names)
		}

		players, err := f.e.ListTeamPlayers(f.ctx, f.a.ID)
		if err != nil || len(players) != 1 || players[0].ID != f.pa.ID {
			t.Fatalf("players of A = %+v, err=%v", players, err)
		}

		fightID := f.submit(t, f.a, f.b, 1, 1)
		fight, err := f.e.GetFight(f.ctx, fightID)
		if err != nil {
			t.Fatalf("get fight: %v", err)
		}
		if fight.RoundID != f.round.ID || fight.TableID != f.table.ID || fight.Score1 != 1 || fight.Score2 != 1 {
			t.Fatalf("stored fight = %+v", fight)
		}
		if _, err := f.e.GetFight(f.ctx, "nope"); CodeOf(err) != CodeNotFound {
			t.Fatalf("missing fight: %v", err)
		}
		if _, err := f.e.ListRoundFights(f.ctx, "nope"); CodeOf(err) != CodeNotFound {
			t.Fatalf("fights of missing round: %v", err)
		}
	})
}

func TestCreateTable(t *testing.T) {
	eachBackend(t, func(t *testing.T, f *fixture) {
		if f.table.Formula != model.DefaultPointsFormula {
			t.Fatalf("default formula = %+v", f.table.Formula)
		}
		if !slices.Equal(f.table.RankKeys(), model.DefaultTieBreak) {
			t.Fatalf("default tie-break = %v", f.table.RankKeys())
		}

		custom := model.PointsFormula{Win: 3, Draw: 1, Loss: 0}
		table, err := f.e.CreateTable(f.ctx, TableSpec{
			Name:     "Cup",
			Formula:  &custom,
			TieBreak: []model.RankKey{model.RankPoints, model.RankScoreFor},
		})
		if err != nil {
			t.Fatalf("create table: %v", err)
		}
		got, err := f.e.GetTable(f.ctx, table.ID)
		if err != nil {
			t.Fatalf("get table: %v", err)
		}
		if got.Formula != custom || !slices.Equal(got.TieBreak, []model.RankKey{model.RankPoints, model.RankScoreFor}) {
			t.Fatalf("stored table = %+v", got)
		}

		bad := []TableSpec{
			{Name: ""},
			{Name: "Neg", Formula: &model.PointsFormula{Win: -1}},
			{Name: "Key", TieBreak: []model.RankKey{"alphabetical"}},
		}
		for _, spec := range bad {
			if _, err := f.e.CreateTable(f.ctx, spec); CodeOf(err) != CodeInvalidArgument {
				t.Fatalf("table %+v: expected invalid argument, got %v", spec, err)
			}
		}

		tables, err := f.e.ListTables(f.ctx)
		if err != nil || len(tables) != 2 {
			t.Fatalf("tables = %+v, err=%v", tables, err)
		}
	})
}

func TestEngineUsesConfiguredFormula(t *testing.T) {
	st := store.NewMemoryStore()
	f := newFixture(t, st)
	f.e = NewEngine(st, Options{DefaultFormula: model.PointsFormula{Win: 3, Draw: 1}, Logger: zerolog.Nop()})

	table, err := f.e.CreateTable(f.ctx, TableSpec{Name: "Three"})
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	f.table = table
	f.submit(t, f.a, f.b, 2, 0)
	if got := f.entry(t, f.a).Points; got != 3 {
		t.Fatalf("win with 3/1/0 formula gave %d points", got)
	}
	f.checkInvariants(t)
}

func TestRenameTeamAndRound(t *testing.T) {
	eachBackend(t, func(t *testing.T, f *fixture) {
		f.submit(t, f.a, f.b, 1, 0)
		team, err := f.e.RenameTeam(f.ctx, f.a.ID, " Ajax ")
		if err != nil {
			t.Fatalf("rename team: %v", err)
		}
		if team.Name != "Ajax" {
			t.Fatalf("team = %+v", team)
		}
		if got := f.entry(t, f.a); got.Win != 1 {
			t.Fatalf("rename touched the entry: %+v", got)
		}

		if err := f.e.ArchiveRound(f.ctx, f.round.ID, true); err != nil {
			t.Fatalf("archive: %v", err)
		}
		round, err := f.e.RenameRound(f.ctx, f.round.ID, "Opening")
		if err != nil {
			t.Fatalf("rename round: %v", err)
		}
		if round.Name != "Opening" || !round.Archived {
			t.Fatalf("round = %+v", round)
		}
		rounds, err := f.e.ListRounds(f.ctx, true)
		if err != nil || len(rounds) != 1 || rounds[0].Name != "Opening" {
			t.Fatalf("archived rounds = %+v, %v", rounds, err)
		}

		if _, err := f.e.RenameTeam(f.ctx, f.a.ID, ""); CodeOf(err) != CodeInvalidArgument {
			t.Fatalf("empty team name: %v", err)
		}
		if _, err := f.e.RenameTeam(f.ctx, "nope", "X"); CodeOf(err) != CodeNotFound {
			t.Fatalf("missing team: %v", err)
		}
		if _, err := f.e.RenameRound(f.ctx, "nope", "X"); CodeOf(err) != CodeNotFound {
			t.Fatalf("missing round: %v", err)
		}
	})
}
