package league

import (
	"context"
	"fmt"
	"strings"

	"league-app/internal/model"
	"league-app/internal/store"
)

// SubmitFightResult records a fight in a round and applies its result to
// the table. Archived rounds accept no new fights.
func (e *Engine) SubmitFightResult(ctx context.Context, roundID, tableID, team1ID, team2ID string, score1, score2 int) (string, error) {
	r := Result{TableID: tableID, Team1ID: team1ID, Team2ID: team2ID, Score1: score1, Score2: score2}
	if roundID == "" {
		return "", invalidArgument("round is required")
	}
	if err := r.validate(); err != nil {
		return "", err
	}
	var fightID string
	err := e.locked(ctx, append(r.keys(), roundKey(roundID)), func(q store.Queries) error {
		round, err := q.GetRound(ctx, roundID)
		if err != nil {
			return lookup(err, "round", roundID)
		}
		if round.Archived {
			return invalidArgument("round %s is archived", roundID)
		}
		if _, err := q.GetTable(ctx, tableID); err != nil {
			return lookup(err, "table", tableID)
		}
		if err := requireTeams(ctx, q, team1ID, team2ID); err != nil {
			return err
		}
		fight, err := q.CreateFight(ctx, model.Fight{
			RoundID: roundID,
			TableID: tableID,
			Team1ID: team1ID,
			Team2ID: team2ID,
			Score1:  score1,
			Score2:  score2,
		})
		if err != nil {
			return fmt.Errorf("create fight: %w", err)
		}
		if _, _, err := e.applyResult(ctx, q, r); err != nil {
			return err
		}
		fightID = fight.ID
		return nil
	})
	if err != nil {
		return "", e.fail("submit fight result", err)
	}
	return fightID, nil
}

func (e *Engine) EditFightResult(ctx context.Context, fightID string, score1, score2 int) error {
	return e.EditFight(ctx, fightID, score1, score2)
}

func (e *Engine) DeleteFight(ctx context.Context, fightID string) error {
	return e.RemoveFight(ctx, fightID)
}

func (e *Engine) DeleteRound(ctx context.Context, roundID string) error {
	return e.RemoveRound(ctx, roundID)
}

func (e *Engine) SubmitGoal(ctx context.Context, fightID, playerID string, count int, isHome bool) (string, error) {
	goal, err := e.RecordGoal(ctx, fightID, playerID, count, isHome)
	return goal.ID, err
}

func (e *Engine) DeleteGoal(ctx context.Context, goalID string) error {
	return e.RemoveGoal(ctx, goalID)
}

func (e *Engine) GetFight(ctx context.Context, fightID string) (model.Fight, error) {
	var fight model.Fight
	err := e.store.View(ctx, func(q store.Queries) error {
		var err error
		fight, err = q.GetFight(ctx, fightID)
		return lookup(err, "fight", fightID)
	})
	return fight, err
}

func (e *Engine) ListRoundFights(ctx context.Context, roundID string) ([]model.Fight, error) {
	var fights []model.Fight
	err := e.store.View(ctx, func(q store.Queries) error {
		if _, err := q.GetRound(ctx, roundID); err != nil {
			return lookup(err, "round", roundID)
		}
		var err error
		fights, err = q.ListRoundFights(ctx, roundID)
		return err
	})
	return fights, err
}

func (e *Engine) CreateTeam(ctx context.Context, name string) (model.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Team{}, invalidArgument("team name is required")
	}
	var team model.Team
	err := e.store.RunInTx(ctx, func(q store.Queries) error {
		var err error
		team, err = q.CreateTeam(ctx, model.Team{Name: name})
		return err
	})
	return team, err
}

func (e *Engine) ListTeams(ctx context.Context) ([]model.Team, error) {
	var teams []model.Team
	err := e.store.View(ctx, func(q store.Queries) error {
		var err error
		teams, err = q.ListTeams(ctx)
		return err
	})
	return teams, err
}

func (e *Engine) RenameTeam(ctx context.Context, teamID, name string) (model.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Team{}, invalidArgument("team name is required")
	}
	team := model.Team{ID: teamID, Name: name}
	err := e.store.RunInTx(ctx, func(q store.Queries) error {
		return lookup(q.UpdateTeam(ctx, team), "team", teamID)
	})
	if err != nil {
		return model.Team{}, err
	}
	return team, nil
}

func (e *Engine) CreatePlayer(ctx context.Context, teamID, firstName, lastName string) (model.Player, error) {
	player := model.Player{
		TeamID:    teamID,
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
	}
	if player.FullName() == "" {
		return model.Player{}, invalidArgument("player name is required")
	}
	err := e.store.RunInTx(ctx, func(q store.Queries) error {
		if err := requireTeams(ctx, q, teamID); err != nil {
			return err
		}
		var err error
		player, err = q.CreatePlayer(ctx, player)
		return err
	})
	return player, err
}

func (e *Engine) GetPlayer(ctx context.Context, playerID string) (model.Player, error) {
	var player model.Player
	err := e.store.View(ctx, func(q store.Queries) error {
		var err error
		player, err = q.GetPlayer(ctx, playerID)
		return lookup(err, "player", playerID)
	})
	return player, err
}

func (e *Engine) ListTeamPlayers(ctx context.Context, teamID string) ([]model.Player, error) {
	var players []model.Player
	err := e.store.View(ctx, func(q store.Queries) error {
		if err := requireTeams(ctx, q, teamID); err != nil {
			return err
		}
		var err error
		players, err = q.ListTeamPlayers(ctx, teamID)
		return err
	})
	return players, err
}

func (e *Engine) CreateRound(ctx context.Context, name string) (model.Round, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Round{}, invalidArgument("round name is required")
	}
	var round model.Round
	err := e.store.RunInTx(ctx, func(q store.Queries) error {
		var err error
		round, err = q.CreateRound(ctx, model.Round{Name: name})
		return err
	})
	return round, err
}

func (e *Engine) ListRounds(ctx context.Context, archived bool) ([]model.Round, error) {
	var rounds []model.Round
	err := e.store.View(ctx, func(q store.Queries) error {
		var err error
		rounds, err = q.ListRounds(ctx, archived)
		return err
	})
	return rounds, err
}

// ArchiveRound moves a round in or out of the archive. Its fights keep
// counting in the standings either way.
func (e *Engine) ArchiveRound(ctx context.Context, roundID string, archived bool) error {
	return e.locked(ctx, []string{roundKey(roundID)}, func(q store.Queries) error {
		round, err := q.GetRound(ctx, roundID)
		if err != nil {
			return lookup(err, "round", roundID)
		}
		round.Archived = archived
		return q.UpdateRound(ctx, round)
	})
}

func (e *Engine) RenameRound(ctx context.Context, roundID, name string) (model.Round, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Round{}, invalidArgument("round name is required")
	}
	var round model.Round
	err := e.locked(ctx, []string{roundKey(roundID)}, func(q store.Queries) error {
		var err error
		if round, err = q.GetRound(ctx, roundID); err != nil {
			return lookup(err, "round", roundID)
		}
		round.Name = name
		return q.UpdateRound(ctx, round)
	})
	if err != nil {
		return model.Round{}, err
	}
	return round, nil
}

type TableSpec struct {
	Name  string
	Group string
	// Formula defaults to the engine's formula when nil.
	Formula  *model.PointsFormula
	TieBreak []model.RankKey
}

func (e *Engine) CreateTable(ctx context.Context, spec TableSpec) (model.Table, error) {
	table := model.Table{
		Name:     strings.TrimSpace(spec.Name),
		Group:    strings.TrimSpace(spec.Group),
		Formula:  e.formula,
		TieBreak: spec.TieBreak,
	}
	if table.Name == "" {
		return model.Table{}, invalidArgument("table name is required")
	}
	if spec.Formula != nil {
		table.Formula = *spec.Formula
	}
	if f := table.Formula; f.Win < 0 || f.Draw < 0 || f.Loss < 0 {
		return model.Table{}, invalidArgument("points formula must be non-negative, got %d/%d/%d", f.Win, f.Draw, f.Loss)
	}
	for _, k := range table.TieBreak {
		if !validRankKey(k) {
			return model.Table{}, invalidArgument("unknown tie-break key %q", k)
		}
	}
	err := e.store.RunInTx(ctx, func(q store.Queries) error {
		var err error
		table, err = q.CreateTable(ctx, table)
		return err
	})
	return table, err
}

func (e *Engine) GetTable(ctx context.Context, tableID string) (model.Table, error) {
	var table model.Table
	err := e.store.View(ctx, func(q store.Queries) error {
		var err error
		table, err = q.GetTable(ctx, tableID)
		return lookup(err, "table", tableID)
	})
	return table, err
}

func (e *Engine) ListTables(ctx context.Context) ([]model.Table, error) {
	var tables []model.Table
	err := e.store.View(ctx, func(q store.Queries) error {
		var err error
		tables, err = q.ListTables(ctx)
		return err
	})
	return tables, err
}
