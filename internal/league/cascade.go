package league

import (
	"context"
	"errors"
	"fmt"

	"league-app/internal/model"
	"league-app/internal/store"
)

// RemoveFight reverses a fight and deletes it, in this order:
//  1. every goal of the fight (player totals go back)
//  2. the stored result (both table entries go back)
//  3. the fight row
//
// Everything runs in one transaction under the locks of every touched row.
func (e *Engine) RemoveFight(ctx context.Context, fightID string) error {
	if fightID == "" {
		return invalidArgument("fight is required")
	}
	err := e.planned(ctx, "remove fight",
		func(q store.Queries) ([]string, error) {
			fight, err := q.GetFight(ctx, fightID)
			if err != nil {
				return nil, lookup(err, "fight", fightID)
			}
			return fightCascadeKeys(ctx, q, fight)
		},
		func(q store.Queries, held keySet) error {
			fight, err := q.GetFight(ctx, fightID)
			if err != nil {
				return lookup(err, "fight", fightID)
			}
			return e.removeFight(ctx, q, held, fight)
		},
	)
	return e.fail("remove fight", err)
}

// RemoveRound runs the fight cascade for each fight of the round, one fight
// at a time, then deletes the round. The round is all-or-nothing.
func (e *Engine) RemoveRound(ctx context.Context, roundID string) error {
	if roundID == "" {
		return invalidArgument("round is required")
	}
	err := e.planned(ctx, "remove round",
		func(q store.Queries) ([]string, error) {
			if _, err := q.GetRound(ctx, roundID); err != nil {
				return nil, lookup(err, "round", roundID)
			}
			fights, err := q.ListRoundFights(ctx, roundID)
			if err != nil {
				return nil, fmt.Errorf("list fights of round %s: %w", roundID, err)
			}
			keys := []string{roundKey(roundID)}
			for _, f := range fights {
				fk, err := fightCascadeKeys(ctx, q, f)
				if err != nil {
					return nil, err
				}
				keys = append(keys, fk...)
			}
			return keys, nil
		},
		func(q store.Queries, held keySet) error {
			if _, err := q.GetRound(ctx, roundID); err != nil {
				return lookup(err, "round", roundID)
			}
			fights, err := q.ListRoundFights(ctx, roundID)
			if err != nil {
				return fmt.Errorf("list fights of round %s: %w", roundID, err)
			}
			for _, f := range fights {
				if err := e.removeFight(ctx, q, held, f); err != nil {
					return err
				}
			}
			if err := q.DeleteRound(ctx, roundID); err != nil {
				return fmt.Errorf("delete round %s: %w", roundID, err)
			}
			e.log.Info().Str("round", roundID).Int("fights", len(fights)).Msg("round removed")
			return nil
		},
	)
	return e.fail("remove round", err)
}

// EditFight replaces the stored score: the old result is reversed and the
// new one applied against the same pair of entries.
func (e *Engine) EditFight(ctx context.Context, fightID string, score1, score2 int) error {
	if fightID == "" {
		return invalidArgument("fight is required")
	}
	if score1 < 0 || score2 < 0 {
		return invalidArgument("scores must be non-negative, got %d:%d", score1, score2)
	}
	err := e.planned(ctx, "edit fight",
		func(q store.Queries) ([]string, error) {
			fight, err := q.GetFight(ctx, fightID)
			if err != nil {
				return nil, lookup(err, "fight", fightID)
			}
			return append(resultOf(fight).keys(), fightKey(fightID)), nil
		},
		func(q store.Queries, held keySet) error {
			fight, err := q.GetFight(ctx, fightID)
			if err != nil {
				return lookup(err, "fight", fightID)
			}
			if err := require(held, append(resultOf(fight).keys(), fightKey(fightID))...); err != nil {
				return err
			}
			if _, _, err := e.reverseResult(ctx, q, resultOf(fight)); err != nil {
				return err
			}
			fight.Score1, fight.Score2 = score1, score2
			if _, _, err := e.applyResult(ctx, q, resultOf(fight)); err != nil {
				return err
			}
			if err := q.UpdateFight(ctx, fight); err != nil {
				return fmt.Errorf("update fight %s: %w", fightID, err)
			}
			return nil
		},
	)
	return e.fail("edit fight", err)
}

func fightCascadeKeys(ctx context.Context, q store.Queries, fight model.Fight) ([]string, error) {
	goals, err := q.ListFightGoals(ctx, fight.ID)
	if err != nil {
		return nil, fmt.Errorf("list goals of fight %s: %w", fight.ID, err)
	}
	keys := append(resultOf(fight).keys(), fightKey(fight.ID))
	for _, g := range goals {
		keys = append(keys, playerKey(g.PlayerID))
	}
	return keys, nil
}

func (e *Engine) removeFight(ctx context.Context, q store.Queries, held keySet, fight model.Fight) error {
	goals, err := q.ListFightGoals(ctx, fight.ID)
	if err != nil {
		return fmt.Errorf("list goals of fight %s: %w", fight.ID, err)
	}
	if err := require(held, append(resultOf(fight).keys(), fightKey(fight.ID))...); err != nil {
		return err
	}
	for _, g := range goals {
		if err := require(held, playerKey(g.PlayerID)); err != nil {
			return err
		}
	}

	for _, g := range goals {
		if err := removeGoal(ctx, q, g); err != nil {
			return err
		}
	}
	if _, _, err := e.reverseResult(ctx, q, resultOf(fight)); err != nil {
		return err
	}
	if err := q.DeleteFight(ctx, fight.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return consistency(err, "fight %s vanished during removal", fight.ID)
		}
		return fmt.Errorf("delete fight %s: %w", fight.ID, err)
	}
	return nil
}
