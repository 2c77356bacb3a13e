package store

import (
	"context"
	"errors"

	"league-app/internal/model"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// Queries is the row-level persistence surface. Inside RunInTx every call
// belongs to one transaction; inside View calls must not write.
type Queries interface {
	CreateTeam(ctx context.Context, team model.Team) (model.Team, error)
	GetTeam(ctx context.Context, id string) (model.Team, error)
	ListTeams(ctx context.Context) ([]model.Team, error)
	UpdateTeam(ctx context.Context, team model.Team) error

	CreatePlayer(ctx context.Context, player model.Player) (model.Player, error)
	GetPlayer(ctx context.Context, id string) (model.Player, error)
	ListTeamPlayers(ctx context.Context, teamID string) ([]model.Player, error)
	UpdatePlayer(ctx context.Context, player model.Player) error

	CreateRound(ctx context.Context, round model.Round) (model.Round, error)
	GetRound(ctx context.Context, id string) (model.Round, error)
	ListRounds(ctx context.Context, archived bool) ([]model.Round, error)
	UpdateRound(ctx context.Context, round model.Round) error
	DeleteRound(ctx context.Context, id string) error

	CreateTable(ctx context.Context, table model.Table) (model.Table, error)
	GetTable(ctx context.Context, id string) (model.Table, error)
	ListTables(ctx context.Context) ([]model.Table, error)

	CreateFight(ctx context.Context, fight model.Fight) (model.Fight, error)
	GetFight(ctx context.Context, id string) (model.Fight, error)
	ListRoundFights(ctx context.Context, roundID string) ([]model.Fight, error)
	ListTableFights(ctx context.Context, tableID string) ([]model.Fight, error)
	UpdateFight(ctx context.Context, fight model.Fight) error
	DeleteFight(ctx context.Context, id string) error

	// CreateEntry returns ErrConflict when the (table, team) pair exists
	// and leaves the transaction usable.
	CreateEntry(ctx context.Context, entry model.TableEntry) (model.TableEntry, error)
	GetEntry(ctx context.Context, tableID, teamID string) (model.TableEntry, error)
	ListEntries(ctx context.Context, tableID string) ([]model.TableEntry, error)
	UpdateEntry(ctx context.Context, entry model.TableEntry) error

	CreateGoal(ctx context.Context, goal model.Goal) (model.Goal, error)
	GetGoal(ctx context.Context, id string) (model.Goal, error)
	ListFightGoals(ctx context.Context, fightID string) ([]model.Goal, error)
	ListPlayerGoals(ctx context.Context, playerID string) ([]model.Goal, error)
	UpdateGoal(ctx context.Context, goal model.Goal) error
	DeleteGoal(ctx context.Context, id string) error
}

type Store interface {
	// View runs fn against committed state.
	View(ctx context.Context, fn func(q Queries) error) error
	// RunInTx runs fn in one transaction; any error rolls back every write.
	RunInTx(ctx context.Context, fn func(q Queries) error) error
	Close() error
}
