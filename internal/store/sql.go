package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"league-app/internal/model"

	"github.com/google/uuid"
)

// dialect captures what differs between the SQLite and Postgres backends.
type dialect struct {
	name              string
	rebind            func(query string) string
	forUpdate         string
	isUniqueViolation func(err error) bool
}

func questionMarks(query string) string { return query }

func dollarPlaceholders(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// sqlStore is shared by SQLiteStore and PostgresStore.
type sqlStore struct {
	db *sql.DB
	d  dialect
}

func (s *sqlStore) View(ctx context.Context, fn func(q Queries) error) error {
	return fn(&sqlQueries{db: s.db, d: s.d})
}

func (s *sqlStore) RunInTx(ctx context.Context, fn func(q Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s tx: %w", s.d.name, err)
	}
	if err := fn(&sqlQueries{db: tx, d: s.d, inTx: true}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s tx: %w", s.d.name, err)
	}
	return nil
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

type sqlQueries struct {
	db   dbtx
	d    dialect
	inTx bool
}

func (q *sqlQueries) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := q.db.ExecContext(ctx, q.d.rebind(query), args...)
	return res, q.translate(err)
}

func (q *sqlQueries) execOne(ctx context.Context, query string, args ...any) error {
	res, err := q.exec(ctx, query, args...)
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (q *sqlQueries) insertSeq(ctx context.Context, query string, args ...any) (int64, error) {
	var seq int64
	err := q.db.QueryRowContext(ctx, q.d.rebind(query+" RETURNING seq"), args...).Scan(&seq)
	return seq, q.translate(err)
}

func (q *sqlQueries) row(ctx context.Context, query string, args ...any) *sql.Row {
	return q.db.QueryRowContext(ctx, q.d.rebind(query), args...)
}

func (q *sqlQueries) rows(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := q.db.QueryContext(ctx, q.d.rebind(query), args...)
	return rows, q.translate(err)
}

// lockRow makes read-modify-write rows exclusive for the rest of the
// transaction on backends that support row locks.
func (q *sqlQueries) lockRow(query string) string {
	if q.inTx && q.d.forUpdate != "" {
		return query + " " + q.d.forUpdate
	}
	return query
}

func (q *sqlQueries) translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case q.d.isUniqueViolation(err):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

type scanner interface{ Scan(dest ...any) error }

func collect[T any](rows *sql.Rows, scan func(scanner) (T, error)) ([]T, error) {
	defer rows.Close()

	items := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

const teamColumns = `id, name`

func scanTeam(s scanner) (model.Team, error) {
	var t model.Team
	err := s.Scan(&t.ID, &t.Name)
	return t, err
}

func (q *sqlQueries) CreateTeam(ctx context.Context, team model.Team) (model.Team, error) {
	if team.ID == "" {
		team.ID = uuid.NewString()
	}
	if _, err := q.exec(ctx, `INSERT INTO teams (id, name) VALUES (?,?)`, team.ID, team.Name); err != nil {
		return model.Team{}, err
	}
	return team, nil
}

func (q *sqlQueries) GetTeam(ctx context.Context, id string) (model.Team, error) {
	t, err := scanTeam(q.row(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = ?`, id))
	return t, q.translate(err)
}

func (q *sqlQueries) ListTeams(ctx context.Context) ([]model.Team, error) {
	rows, err := q.rows(ctx, `SELECT `+teamColumns+` FROM teams ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanTeam)
}

func (q *sqlQueries) UpdateTeam(ctx context.Context, team model.Team) error {
	return q.execOne(ctx, `UPDATE teams SET name = ? WHERE id = ?`, team.Name, team.ID)
}

const playerColumns = `id, team_id, first_name, last_name, total_goals`

func scanPlayer(s scanner) (model.Player, error) {
	var p model.Player
	err := s.Scan(&p.ID, &p.TeamID, &p.FirstName, &p.LastName, &p.TotalGoals)
	return p, err
}

func (q *sqlQueries) CreatePlayer(ctx context.Context, player model.Player) (model.Player, error) {
	if player.ID == "" {
		player.ID = uuid.NewString()
	}
	_, err := q.exec(ctx, `INSERT INTO players (id, team_id, first_name, last_name, total_goals) VALUES (?,?,?,?,?)`,
		player.ID, player.TeamID, player.FirstName, player.LastName, player.TotalGoals,
	)
	if err != nil {
		return model.Player{}, err
	}
	return player, nil
}

func (q *sqlQueries) GetPlayer(ctx context.Context, id string) (model.Player, error) {
	p, err := scanPlayer(q.row(ctx, q.lockRow(`SELECT `+playerColumns+` FROM players WHERE id = ?`), id))
	return p, q.translate(err)
}

func (q *sqlQueries) ListTeamPlayers(ctx context.Context, teamID string) ([]model.Player, error) {
	rows, err := q.rows(ctx, `SELECT `+playerColumns+` FROM players WHERE team_id = ? ORDER BY first_name, last_name`, teamID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPlayer)
}

func (q *sqlQueries) UpdatePlayer(ctx context.Context, player model.Player) error {
	return q.execOne(ctx, `UPDATE players SET team_id = ?, first_name = ?, last_name = ?, total_goals = ? WHERE id = ?`,
		player.TeamID, player.FirstName, player.LastName, player.TotalGoals, player.ID,
	)
}

const roundColumns = `id, name, archived, seq`

func scanRound(s scanner) (model.Round, error) {
	var r model.Round
	err := s.Scan(&r.ID, &r.Name, &r.Archived, &r.Seq)
	return r, err
}

func (q *sqlQueries) CreateRound(ctx context.Context, round model.Round) (model.Round, error) {
	if round.ID == "" {
		round.ID = uuid.NewString()
	}
	seq, err := q.insertSeq(ctx, `INSERT INTO rounds (id, name, archived) VALUES (?,?,?)`, round.ID, round.Name, round.Archived)
	if err != nil {
		return model.Round{}, err
	}
	round.Seq = seq
	return round, nil
}

func (q *sqlQueries) GetRound(ctx context.Context, id string) (model.Round, error) {
	r, err := scanRound(q.row(ctx, `SELECT `+roundColumns+` FROM rounds WHERE id = ?`, id))
	return r, q.translate(err)
}

func (q *sqlQueries) ListRounds(ctx context.Context, archived bool) ([]model.Round, error) {
	rows, err := q.rows(ctx, `SELECT `+roundColumns+` FROM rounds WHERE archived = ? ORDER BY seq`, archived)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanRound)
}

func (q *sqlQueries) UpdateRound(ctx context.Context, round model.Round) error {
	return q.execOne(ctx, `UPDATE rounds SET name = ?, archived = ? WHERE id = ?`, round.Name, round.Archived, round.ID)
}

func (q *sqlQueries) DeleteRound(ctx context.Context, id string) error {
	return q.execOne(ctx, `DELETE FROM rounds WHERE id = ?`, id)
}

const tableColumns = `id, name, group_name, win_points, draw_points, loss_points, tie_break`

func scanTable(s scanner) (model.Table, error) {
	var t model.Table
	var tieBreak sql.NullString
	if err := s.Scan(&t.ID, &t.Name, &t.Group, &t.Formula.Win, &t.Formula.Draw, &t.Formula.Loss, &tieBreak); err != nil {
		return model.Table{}, err
	}
	if tieBreak.Valid && strings.TrimSpace(tieBreak.String) != "" {
		if err := json.Unmarshal([]byte(tieBreak.String), &t.TieBreak); err != nil {
			return model.Table{}, fmt.Errorf("decode tie_break of table %s: %w", t.ID, err)
		}
	}
	return t, nil
}

func (q *sqlQueries) CreateTable(ctx context.Context, table model.Table) (model.Table, error) {
	if table.ID == "" {
		table.ID = uuid.NewString()
	}
	tieBreak, err := json.Marshal(table.TieBreak)
	if err != nil {
		return model.Table{}, fmt.Errorf("encode tie_break of table %s: %w", table.ID, err)
	}
	_, err = q.exec(ctx, `INSERT INTO standings_tables (id, name, group_name, win_points, draw_points, loss_points, tie_break) VALUES (?,?,?,?,?,?,?)`,
		table.ID, table.Name, table.Group, table.Formula.Win, table.Formula.Draw, table.Formula.Loss, string(tieBreak),
	)
	if err != nil {
		return model.Table{}, err
	}
	return table, nil
}

func (q *sqlQueries) GetTable(ctx context.Context, id string) (model.Table, error) {
	t, err := scanTable(q.row(ctx, `SELECT `+tableColumns+` FROM standings_tables WHERE id = ?`, id))
	return t, q.translate(err)
}

func (q *sqlQueries) ListTables(ctx context.Context) ([]model.Table, error) {
	rows, err := q.rows(ctx, `SELECT `+tableColumns+` FROM standings_tables ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanTable)
}

const fightColumns = `id, round_id, table_id, team1_id, team2_id, score1, score2, seq`

func scanFight(s scanner) (model.Fight, error) {
	var f model.Fight
	err := s.Scan(&f.ID, &f.RoundID, &f.TableID, &f.Team1ID, &f.Team2ID, &f.Score1, &f.Score2, &f.Seq)
	return f, err
}

func (q *sqlQueries) CreateFight(ctx context.Context, fight model.Fight) (model.Fight, error) {
	if fight.ID == "" {
		fight.ID = uuid.NewString()
	}
	seq, err := q.insertSeq(ctx, `INSERT INTO fights (id, round_id, table_id, team1_id, team2_id, score1, score2) VALUES (?,?,?,?,?,?,?)`,
		fight.ID, fight.RoundID, fight.TableID, fight.Team1ID, fight.Team2ID, fight.Score1, fight.Score2,
	)
	if err != nil {
		return model.Fight{}, err
	}
	fight.Seq = seq
	return fight, nil
}

func (q *sqlQueries) GetFight(ctx context.Context, id string) (model.Fight, error) {
	f, err := scanFight(q.row(ctx, `SELECT `+fightColumns+` FROM fights WHERE id = ?`, id))
	return f, q.translate(err)
}

func (q *sqlQueries) ListRoundFights(ctx context.Context, roundID string) ([]model.Fight, error) {
	rows, err := q.rows(ctx, `SELECT `+fightColumns+` FROM fights WHERE round_id = ? ORDER BY seq`, roundID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanFight)
}

func (q *sqlQueries) ListTableFights(ctx context.Context, tableID string) ([]model.Fight, error) {
	rows, err := q.rows(ctx, `SELECT `+fightColumns+` FROM fights WHERE table_id = ? ORDER BY seq`, tableID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanFight)
}

func (q *sqlQueries) UpdateFight(ctx context.Context, fight model.Fight) error {
	return q.execOne(ctx, `UPDATE fights SET round_id = ?, table_id = ?, team1_id = ?, team2_id = ?, score1 = ?, score2 = ? WHERE id = ?`,
		fight.RoundID, fight.TableID, fight.Team1ID, fight.Team2ID, fight.Score1, fight.Score2, fight.ID,
	)
}

func (q *sqlQueries) DeleteFight(ctx context.Context, id string) error {
	return q.execOne(ctx, `DELETE FROM fights WHERE id = ?`, id)
}

const entryColumns = `id, table_id, team_id, win, draw, loss, counter, points, score_for, score_against, seq`

func scanEntry(s scanner) (model.TableEntry, error) {
	var e model.TableEntry
	err := s.Scan(&e.ID, &e.TableID, &e.TeamID, &e.Win, &e.Draw, &e.Loss, &e.Counter, &e.Points, &e.ScoreFor, &e.ScoreAgainst, &e.Seq)
	return e, err
}

func (q *sqlQueries) CreateEntry(ctx context.Context, entry model.TableEntry) (model.TableEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	// DO NOTHING keeps a Postgres transaction usable after losing the race
	// for the pair, so the caller can read the winner's row instead.
	seq, err := q.insertSeq(ctx, `INSERT INTO table_entries (id, table_id, team_id, win, draw, loss, counter, points, score_for, score_against) VALUES (?,?,?,?,?,?,?,?,?,?) ON CONFLICT (table_id, team_id) DO NOTHING`,
		entry.ID, entry.TableID, entry.TeamID, entry.Win, entry.Draw, entry.Loss, entry.Counter, entry.Points, entry.ScoreFor, entry.ScoreAgainst,
	)
	if errors.Is(err, ErrNotFound) {
		return model.TableEntry{}, fmt.Errorf("%w: entry for team %s in table %s", ErrConflict, entry.TeamID, entry.TableID)
	}
	if err != nil {
		return model.TableEntry{}, err
	}
	entry.Seq = seq
	return entry, nil
}

func (q *sqlQueries) GetEntry(ctx context.Context, tableID, teamID string) (model.TableEntry, error) {
	e, err := scanEntry(q.row(ctx, q.lockRow(`SELECT `+entryColumns+` FROM table_entries WHERE table_id = ? AND team_id = ?`), tableID, teamID))
	return e, q.translate(err)
}

func (q *sqlQueries) ListEntries(ctx context.Context, tableID string) ([]model.TableEntry, error) {
	rows, err := q.rows(ctx, `SELECT `+entryColumns+` FROM table_entries WHERE table_id = ? ORDER BY seq`, tableID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanEntry)
}

func (q *sqlQueries) UpdateEntry(ctx context.Context, entry model.TableEntry) error {
	return q.execOne(ctx, `UPDATE table_entries SET win = ?, draw = ?, loss = ?, counter = ?, points = ?, score_for = ?, score_against = ? WHERE table_id = ? AND team_id = ?`,
		entry.Win, entry.Draw, entry.Loss, entry.Counter, entry.Points, entry.ScoreFor, entry.ScoreAgainst, entry.TableID, entry.TeamID,
	)
}

const goalColumns = `id, fight_id, player_id, count, is_home, seq`

func scanGoal(s scanner) (model.Goal, error) {
	var g model.Goal
	err := s.Scan(&g.ID, &g.FightID, &g.PlayerID, &g.Count, &g.IsHome, &g.Seq)
	return g, err
}

func (q *sqlQueries) CreateGoal(ctx context.Context, goal model.Goal) (model.Goal, error) {
	if goal.ID == "" {
		goal.ID = uuid.NewString()
	}
	seq, err := q.insertSeq(ctx, `INSERT INTO goals (id, fight_id, player_id, count, is_home) VALUES (?,?,?,?,?)`,
		goal.ID, goal.FightID, goal.PlayerID, goal.Count, goal.IsHome,
	)
	if err != nil {
		return model.Goal{}, err
	}
	goal.Seq = seq
	return goal, nil
}

func (q *sqlQueries) GetGoal(ctx context.Context, id string) (model.Goal, error) {
	g, err := scanGoal(q.row(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = ?`, id))
	return g, q.translate(err)
}

func (q *sqlQueries) ListFightGoals(ctx context.Context, fightID string) ([]model.Goal, error) {
	rows, err := q.rows(ctx, `SELECT `+goalColumns+` FROM goals WHERE fight_id = ? ORDER BY seq`, fightID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanGoal)
}

func (q *sqlQueries) ListPlayerGoals(ctx context.Context, playerID string) ([]model.Goal, error) {
	rows, err := q.rows(ctx, `SELECT `+goalColumns+` FROM goals WHERE player_id = ? ORDER BY seq`, playerID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanGoal)
}

func (q *sqlQueries) UpdateGoal(ctx context.Context, goal model.Goal) error {
	return q.execOne(ctx, `UPDATE goals SET count = ?, is_home = ? WHERE id = ?`, goal.Count, goal.IsHome, goal.ID)
}

func (q *sqlQueries) DeleteGoal(ctx context.Context, id string) error {
	return q.execOne(ctx, `DELETE FROM goals WHERE id = ?`, id)
}
