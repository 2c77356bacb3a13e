package store

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"

	"league-app/internal/model"

	"github.com/google/uuid"
)

var errReadOnly = errors.New("write inside read-only view")

type entryKey struct {
	tableID string
	teamID  string
}

type MemoryStore struct {
	mu      sync.RWMutex
	seq     int64
	teams   map[string]model.Team
	players map[string]model.Player
	rounds  map[string]model.Round
	tables  map[string]model.Table
	fights  map[string]model.Fight
	entries map[entryKey]model.TableEntry
	goals   map[string]model.Goal
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		teams:   make(map[string]model.Team),
		players: make(map[string]model.Player),
		rounds:  make(map[string]model.Round),
		tables:  make(map[string]model.Table),
		fights:  make(map[string]model.Fight),
		entries: make(map[entryKey]model.TableEntry),
		goals:   make(map[string]model.Goal),
	}
}

func (s *MemoryStore) View(ctx context.Context, fn func(q Queries) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(&memoryQueries{s: s, readOnly: true})
}

func (s *MemoryStore) RunInTx(ctx context.Context, fn func(q Queries) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryQueries{s: s}
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// memoryQueries runs with the store lock already held. Every write records
// an undo step so a failed transaction leaves the maps untouched.
type memoryQueries struct {
	s        *MemoryStore
	readOnly bool
	undo     []func()
}

func (q *memoryQueries) rollback() {
	for i := len(q.undo) - 1; i >= 0; i-- {
		q.undo[i]()
	}
	q.undo = nil
}

func remember[K comparable, V any](q *memoryQueries, m map[K]V, key K) error {
	if q.readOnly {
		return errReadOnly
	}
	prev, existed := m[key]
	q.undo = append(q.undo, func() {
		if existed {
			m[key] = prev
		} else {
			delete(m, key)
		}
	})
	return nil
}

func (q *memoryQueries) nextSeq() int64 {
	q.s.seq++
	return q.s.seq
}

func (q *memoryQueries) CreateTeam(ctx context.Context, team model.Team) (model.Team, error) {
	if team.ID == "" {
		team.ID = uuid.NewString()
	}
	if _, ok := q.s.teams[team.ID]; ok {
		return model.Team{}, ErrConflict
	}
	if err := remember(q, q.s.teams, team.ID); err != nil {
		return model.Team{}, err
	}
	q.s.teams[team.ID] = team
	return team, nil
}

func (q *memoryQueries) GetTeam(ctx context.Context, id string) (model.Team, error) {
	t, ok := q.s.teams[id]
	if !ok {
		return model.Team{}, ErrNotFound
	}
	return t, nil
}

func (q *memoryQueries) ListTeams(ctx context.Context) ([]model.Team, error) {
	teams := make([]model.Team, 0, len(q.s.teams))
	for _, t := range q.s.teams {
		teams = append(teams, t)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].Name < teams[j].Name })
	return teams, nil
}

func (q *memoryQueries) UpdateTeam(ctx context.Context, team model.Team) error {
	if _, ok := q.s.teams[team.ID]; !ok {
		return ErrNotFound
	}
	if err := remember(q, q.s.teams, team.ID); err != nil {
		return err
	}
	q.s.teams[team.ID] = team
	return nil
}

func (q *memoryQueries) CreatePlayer(ctx context.Context, player model.Player) (model.Player, error) {
	if player.ID == "" {
		player.ID = uuid.NewString()
	}
	if _, ok := q.s.players[player.ID]; ok {
		return model.Player{}, ErrConflict
	}
	if err := remember(q, q.s.players, player.ID); err != nil {
		return model.Player{}, err
	}
	q.s.players[player.ID] = player
	return player, nil
}

func (q *memoryQueries) GetPlayer(ctx context.Context, id string) (model.Player, error) {
	p, ok := q.s.players[id]
	if !ok {
		return model.Player{}, ErrNotFound
	}
	return p, nil
}

func (q *memoryQueries) ListTeamPlayers(ctx context.Context, teamID string) ([]model.Player, error) {
	players := make([]model.Player, 0)
	for _, p := range q.s.players {
		if p.TeamID == teamID {
			players = append(players, p)
		}
	}
	sort.Slice(players, func(i, j int) bool { return players[i].FullName() < players[j].FullName() })
	return players, nil
}

func (q *memoryQueries) UpdatePlayer(ctx context.Context, player model.Player) error {
	if _, ok := q.s.players[player.ID]; !ok {
		return ErrNotFound
	}
	if err := remember(q, q.s.players, player.ID); err != nil {
		return err
	}
	q.s.players[player.ID] = player
	return nil
}

func (q *memoryQueries) CreateRound(ctx context.Context, round model.Round) (model.Round, error) {
	if round.ID == "" {
		round.ID = uuid.NewString()
	}
	if _, ok := q.s.rounds[round.ID]; ok {
		return model.Round{}, ErrConflict
	}
	if err := remember(q, q.s.rounds, round.ID); err != nil {
		return model.Round{}, err
	}
	round.Seq = q.nextSeq()
	q.s.rounds[round.ID] = round
	return round, nil
}

func (q *memoryQueries) GetRound(ctx context.Context, id string) (model.Round, error) {
	r, ok := q.s.rounds[id]
	if !ok {
		return model.Round{}, ErrNotFound
	}
	return r, nil
}

func (q *memoryQueries) ListRounds(ctx context.Context, archived bool) ([]model.Round, error) {
	rounds := make([]model.Round, 0)
	for _, r := range q.s.rounds {
		if r.Archived == archived {
			rounds = append(rounds, r)
		}
	}
	sort.Slice(rounds, func(i, j int) bool { return rounds[i].Seq < rounds[j].Seq })
	return rounds, nil
}

func (q *memoryQueries) UpdateRound(ctx context.Context, round model.Round) error {
	prev, ok := q.s.rounds[round.ID]
	if !ok {
		return ErrNotFound
	}
	if err := remember(q, q.s.rounds, round.ID); err != nil {
		return err
	}
	round.Seq = prev.Seq
	q.s.rounds[round.ID] = round
	return nil
}

func (q *memoryQueries) DeleteRound(ctx context.Context, id string) error {
	if _, ok := q.s.rounds[id]; !ok {
		return ErrNotFound
	}
	if err := remember(q, q.s.rounds, id); err != nil {
		return err
	}
	delete(q.s.rounds, id)
	return nil
}

func (q *memoryQueries) CreateTable(ctx context.Context, table model.Table) (model.Table, error) {
	if table.ID == "" {
		table.ID = uuid.NewString()
	}
	if _, ok := q.s.tables[table.ID]; ok {
		return model.Table{}, ErrConflict
	}
	if err := remember(q, q.s.tables, table.ID); err != nil {
		return model.Table{}, err
	}
	table.TieBreak = slices.Clone(table.TieBreak)
	q.s.tables[table.ID] = table
	return table, nil
}

func (q *memoryQueries) GetTable(ctx context.Context, id string) (model.Table, error) {
	t, ok := q.s.tables[id]
	if !ok {
		return model.Table{}, ErrNotFound
	}
	t.TieBreak = slices.Clone(t.TieBreak)
	return t, nil
}

func (q *memoryQueries) ListTables(ctx context.Context) ([]model.Table, error) {
	tables := make([]model.Table, 0, len(q.s.tables))
	for _, t := range q.s.tables {
		t.TieBreak = slices.Clone(t.TieBreak)
		tables = append(tables, t)
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })
	return tables, nil
}

func (q *memoryQueries) CreateFight(ctx context.Context, fight model.Fight) (model.Fight, error) {
	if fight.ID == "" {
		fight.ID = uuid.NewString()
	}
	if _, ok := q.s.fights[fight.ID]; ok {
		return model.Fight{}, ErrConflict
	}
	if err := remember(q, q.s.fights, fight.ID); err != nil {
		return model.Fight{}, err
	}
	fight.Seq = q.nextSeq()
	q.s.fights[fight.ID] = fight
	return fight, nil
}

func (q *memoryQueries) GetFight(ctx context.Context, id string) (model.Fight, error) {
	f, ok := q.s.fights[id]
	if !ok {
		return model.Fight{}, ErrNotFound
	}
	return f, nil
}

func (q *memoryQueries) ListRoundFights(ctx context.Context, roundID string) ([]model.Fight, error) {
	return q.filterFights(func(f model.Fight) bool { return f.RoundID == roundID }), nil
}

func (q *memoryQueries) ListTableFights(ctx context.Context, tableID string) ([]model.Fight, error) {
	return q.filterFights(func(f model.Fight) bool { return f.TableID == tableID }), nil
}

func (q *memoryQueries) filterFights(keep func(model.Fight) bool) []model.Fight {
	fights := make([]model.Fight, 0)
	for _, f := range q.s.fights {
		if keep(f) {
			fights = append(fights, f)
		}
	}
	sort.Slice(fights, func(i, j int) bool { return fights[i].Seq < fights[j].Seq })
	return fights
}

func (q *memoryQueries) UpdateFight(ctx context.Context, fight model.Fight) error {
	prev, ok := q.s.fights[fight.ID]
	if !ok {
		return ErrNotFound
	}
	if err := remember(q, q.s.fights, fight.ID); err != nil {
		return err
	}
	fight.Seq = prev.Seq
	q.s.fights[fight.ID] = fight
	return nil
}

func (q *memoryQueries) DeleteFight(ctx context.Context, id string) error {
	if _, ok := q.s.fights[id]; !ok {
		return ErrNotFound
	}
	if err := remember(q, q.s.fights, id); err != nil {
		return err
	}
	delete(q.s.fights, id)
	return nil
}

func (q *memoryQueries) CreateEntry(ctx context.Context, entry model.TableEntry) (model.TableEntry, error) {
	key := entryKey{tableID: entry.TableID, teamID: entry.TeamID}
	if _, ok := q.s.entries[key]; ok {
		return model.TableEntry{}, ErrConflict
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if err := remember(q, q.s.entries, key); err != nil {
		return model.TableEntry{}, err
	}
	entry.Seq = q.nextSeq()
	q.s.entries[key] = entry
	return entry, nil
}

func (q *memoryQueries) GetEntry(ctx context.Context, tableID, teamID string) (model.TableEntry, error) {
	e, ok := q.s.entries[entryKey{tableID: tableID, teamID: teamID}]
	if !ok {
		return model.TableEntry{}, ErrNotFound
	}
	return e, nil
}

func (q *memoryQueries) ListEntries(ctx context.Context, tableID string) ([]model.TableEntry, error) {
	entries := make([]model.TableEntry, 0)
	for key, e := range q.s.entries {
		if key.tableID == tableID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Seq < entries[j].Seq })
	return entries, nil
}

func (q *memoryQueries) UpdateEntry(ctx context.Context, entry model.TableEntry) error {
	key := entryKey{tableID: entry.TableID, teamID: entry.TeamID}
	prev, ok := q.s.entries[key]
	if !ok {
		return ErrNotFound
	}
	if err := remember(q, q.s.entries, key); err != nil {
		return err
	}
	entry.ID = prev.ID
	entry.Seq = prev.Seq
	q.s.entries[key] = entry
	return nil
}

func (q *memoryQueries) CreateGoal(ctx context.Context, goal model.Goal) (model.Goal, error) {
	if goal.ID == "" {
		goal.ID = uuid.NewString()
	}
	if _, ok := q.s.goals[goal.ID]; ok {
		return model.Goal{}, ErrConflict
	}
	if err := remember(q, q.s.goals, goal.ID); err != nil {
		return model.Goal{}, err
	}
	goal.Seq = q.nextSeq()
	q.s.goals[goal.ID] = goal
	return goal, nil
}

func (q *memoryQueries) GetGoal(ctx context.Context, id string) (model.Goal, error) {
	g, ok := q.s.goals[id]
	if !ok {
		return model.Goal{}, ErrNotFound
	}
	return g, nil
}

func (q *memoryQueries) ListFightGoals(ctx context.Context, fightID string) ([]model.Goal, error) {
	return q.filterGoals(func(g model.Goal) bool { return g.FightID == fightID }), nil
}

func (q *memoryQueries) ListPlayerGoals(ctx context.Context, playerID string) ([]model.Goal, error) {
	return q.filterGoals(func(g model.Goal) bool { return g.PlayerID == playerID }), nil
}

func (q *memoryQueries) filterGoals(keep func(model.Goal) bool) []model.Goal {
	goals := make([]model.Goal, 0)
	for _, g := range q.s.goals {
		if keep(g) {
			goals = append(goals, g)
		}
	}
	sort.Slice(goals, func(i, j int) bool { return goals[i].Seq < goals[j].Seq })
	return goals
}

func (q *memoryQueries) UpdateGoal(ctx context.Context, goal model.Goal) error {
	prev, ok := q.s.goals[goal.ID]
	if !ok {
		return ErrNotFound
	}
	if err := remember(q, q.s.goals, goal.ID); err != nil {
		return err
	}
	goal.Seq = prev.Seq
	q.s.goals[goal.ID] = goal
	return nil
}

func (q *memoryQueries) DeleteGoal(ctx context.Context, id string) error {
	if _, ok := q.s.goals[id]; !ok {
		return ErrNotFound
	}
	if err := remember(q, q.s.goals, id); err != nil {
		return err
	}
	delete(q.s.goals, id)
	return nil
}
