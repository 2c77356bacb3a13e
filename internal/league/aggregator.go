package league

import (
	"context"
	"errors"
	"fmt"

	"league-app/internal/model"
	"league-app/internal/store"
)

// Result is a fight outcome as the standings table sees it.
type Result struct {
	TableID string
	Team1ID string
	Team2ID string
	Score1  int
	Score2  int
}

func resultOf(f model.Fight) Result {
	return Result{TableID: f.TableID, Team1ID: f.Team1ID, Team2ID: f.Team2ID, Score1: f.Score1, Score2: f.Score2}
}

func (r Result) validate() error {
	if r.TableID == "" || r.Team1ID == "" || r.Team2ID == "" {
		return invalidArgument("table and both teams are required")
	}
	if r.Team1ID == r.Team2ID {
		return invalidArgument("team1 and team2 must differ, got %q twice", r.Team1ID)
	}
	if r.Score1 < 0 || r.Score2 < 0 {
		return invalidArgument("scores must be non-negative, got %d:%d", r.Score1, r.Score2)
	}
	return nil
}

func (r Result) keys() []string {
	return []string{entryKey(r.TableID, r.Team1ID), entryKey(r.TableID, r.Team2ID)}
}

func outcomes(score1, score2 int) (model.Outcome, model.Outcome) {
	switch {
	case score1 > score2:
		return model.OutcomeWin, model.OutcomeLoss
	case score2 > score1:
		return model.OutcomeLoss, model.OutcomeWin
	}
	return model.OutcomeDraw, model.OutcomeDraw
}

// entryDelta is what one fight contributes to one team's row.
type entryDelta struct {
	win, draw, loss        int
	points                 int
	scoreFor, scoreAgainst int
}

func deltaFor(o model.Outcome, own, opponent int, formula model.PointsFormula) entryDelta {
	d := entryDelta{points: formula.For(o), scoreFor: own, scoreAgainst: opponent}
	switch o {
	case model.OutcomeWin:
		d.win = 1
	case model.OutcomeDraw:
		d.draw = 1
	default:
		d.loss = 1
	}
	return d
}

func (r Result) deltas(formula model.PointsFormula) (entryDelta, entryDelta) {
	o1, o2 := outcomes(r.Score1, r.Score2)
	return deltaFor(o1, r.Score1, r.Score2, formula), deltaFor(o2, r.Score2, r.Score1, formula)
}

// applyTo returns e moved by sign*d. Counter is recomputed, never stored
// independently.
func (d entryDelta) applyTo(e model.TableEntry, sign int) model.TableEntry {
	e.Win += sign * d.win
	e.Draw += sign * d.draw
	e.Loss += sign * d.loss
	e.Points += sign * d.points
	e.ScoreFor += sign * d.scoreFor
	e.ScoreAgainst += sign * d.scoreAgainst
	e.Counter = e.Win + e.Draw + e.Loss
	return e
}

func hasNegative(e model.TableEntry) bool {
	return e.Win < 0 || e.Draw < 0 || e.Loss < 0 || e.Points < 0 || e.ScoreFor < 0 || e.ScoreAgainst < 0
}

// ApplyFightResult adds r to both teams' rows, creating missing rows.
func (e *Engine) ApplyFightResult(ctx context.Context, r Result) (model.TableEntry, model.TableEntry, error) {
	if err := r.validate(); err != nil {
		return model.TableEntry{}, model.TableEntry{}, err
	}
	var entry1, entry2 model.TableEntry
	err := e.locked(ctx, r.keys(), func(q store.Queries) error {
		if err := requireTeams(ctx, q, r.Team1ID, r.Team2ID); err != nil {
			return err
		}
		var err error
		entry1, entry2, err = e.applyResult(ctx, q, r)
		return err
	})
	return entry1, entry2, e.fail("apply fight result", err)
}

// ReverseFightResult removes r from both teams' rows. r must be the result
// that was applied, not a newly supplied one.
func (e *Engine) ReverseFightResult(ctx context.Context, r Result) (model.TableEntry, model.TableEntry, error) {
	if err := r.validate(); err != nil {
		return model.TableEntry{}, model.TableEntry{}, err
	}
	var entry1, entry2 model.TableEntry
	err := e.locked(ctx, r.keys(), func(q store.Queries) error {
		var err error
		entry1, entry2, err = e.reverseResult(ctx, q, r)
		return err
	})
	return entry1, entry2, e.fail("reverse fight result", err)
}

func (e *Engine) applyResult(ctx context.Context, q store.Queries, r Result) (model.TableEntry, model.TableEntry, error) {
	return e.moveResult(ctx, q, r, 1)
}

func (e *Engine) reverseResult(ctx context.Context, q store.Queries, r Result) (model.TableEntry, model.TableEntry, error) {
	return e.moveResult(ctx, q, r, -1)
}

func (e *Engine) moveResult(ctx context.Context, q store.Queries, r Result, sign int) (model.TableEntry, model.TableEntry, error) {
	table, err := q.GetTable(ctx, r.TableID)
	if err != nil {
		return model.TableEntry{}, model.TableEntry{}, lookup(err, "table", r.TableID)
	}
	d1, d2 := r.deltas(table.Formula)
	entry1, err := adjustEntry(ctx, q, r.TableID, r.Team1ID, d1, sign)
	if err != nil {
		return model.TableEntry{}, model.TableEntry{}, err
	}
	entry2, err := adjustEntry(ctx, q, r.TableID, r.Team2ID, d2, sign)
	if err != nil {
		return model.TableEntry{}, model.TableEntry{}, err
	}
	return entry1, entry2, nil
}

func adjustEntry(ctx context.Context, q store.Queries, tableID, teamID string, d entryDelta, sign int) (model.TableEntry, error) {
	entry, err := q.GetEntry(ctx, tableID, teamID)
	switch {
	case errors.Is(err, store.ErrNotFound) && sign > 0:
		entry, err = q.CreateEntry(ctx, model.TableEntry{TableID: tableID, TeamID: teamID})
		if errors.Is(err, store.ErrConflict) {
			// another process created the row after our read
			entry, err = q.GetEntry(ctx, tableID, teamID)
		}
		if err != nil {
			return model.TableEntry{}, fmt.Errorf("create entry for team %s in table %s: %w", teamID, tableID, err)
		}
	case errors.Is(err, store.ErrNotFound):
		return model.TableEntry{}, consistency(err, "no entry for team %s in table %s to reverse", teamID, tableID)
	case err != nil:
		return model.TableEntry{}, fmt.Errorf("load entry for team %s in table %s: %w", teamID, tableID, err)
	}
	next := d.applyTo(entry, sign)
	if hasNegative(next) {
		return model.TableEntry{}, consistency(nil, "reversal would leave team %s in table %s with negative totals", teamID, tableID)
	}
	if err := q.UpdateEntry(ctx, next); err != nil {
		return model.TableEntry{}, fmt.Errorf("update entry for team %s in table %s: %w", teamID, tableID, err)
	}
	return next, nil
}

func requireTeams(ctx context.Context, q store.Queries, ids ...string) error {
	for _, id := range ids {
		if _, err := q.GetTeam(ctx, id); err != nil {
			return lookup(err, "team", id)
		}
	}
	return nil
}
