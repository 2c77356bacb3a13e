package league

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"league-app/internal/model"
	"league-app/internal/store"
)

// RecordGoal stores a scoring entry and adds count to the player's total.
// A player may score several entries in the same fight.
func (e *Engine) RecordGoal(ctx context.Context, fightID, playerID string, count int, isHome bool) (model.Goal, error) {
	if fightID == "" || playerID == "" {
		return model.Goal{}, invalidArgument("fight and player are required")
	}
	if count <= 0 {
		return model.Goal{}, invalidArgument("goal count must be positive, got %d", count)
	}
	var goal model.Goal
	err := e.locked(ctx, []string{fightKey(fightID), playerKey(playerID)}, func(q store.Queries) error {
		fight, err := q.GetFight(ctx, fightID)
		if err != nil {
			return lookup(err, "fight", fightID)
		}
		player, err := q.GetPlayer(ctx, playerID)
		if err != nil {
			return lookup(err, "player", playerID)
		}
		if player.TeamID != fight.Team1ID && player.TeamID != fight.Team2ID {
			return invalidArgument("player %s does not play for either team of fight %s", playerID, fightID)
		}
		goal, err = q.CreateGoal(ctx, model.Goal{FightID: fightID, PlayerID: playerID, Count: count, IsHome: isHome})
		if err != nil {
			return fmt.Errorf("create goal: %w", err)
		}
		_, err = adjustPlayer(ctx, q, playerID, count)
		return err
	})
	if err != nil {
		return model.Goal{}, e.fail("record goal", err)
	}
	return goal, nil
}

// GoalEdit names the fields of a goal to change; nil fields keep their
// stored value.
type GoalEdit struct {
	Count  *int
	IsHome *bool
}

// UpdateGoal applies every field of edit in one transaction and moves the
// player's total by the count difference, which it returns.
func (e *Engine) UpdateGoal(ctx context.Context, goalID string, edit GoalEdit) (int, error) {
	if edit.Count == nil && edit.IsHome == nil {
		return 0, invalidArgument("count or side is required")
	}
	if edit.Count != nil && *edit.Count <= 0 {
		return 0, invalidArgument("goal count must be positive, got %d", *edit.Count)
	}
	var delta int
	err := e.goalOp(ctx, "update goal", goalID, func(q store.Queries, goal model.Goal) error {
		if edit.Count != nil {
			delta = *edit.Count - goal.Count
			goal.Count = *edit.Count
		}
		if edit.IsHome != nil {
			goal.IsHome = *edit.IsHome
		}
		if err := q.UpdateGoal(ctx, goal); err != nil {
			return fmt.Errorf("update goal %s: %w", goal.ID, err)
		}
		if delta == 0 {
			return nil
		}
		_, err := adjustPlayer(ctx, q, goal.PlayerID, delta)
		return err
	})
	if err != nil {
		return 0, err
	}
	return delta, nil
}

// EditGoal sets a new count and returns the change in the player's total.
func (e *Engine) EditGoal(ctx context.Context, goalID string, newCount int) (int, error) {
	return e.UpdateGoal(ctx, goalID, GoalEdit{Count: &newCount})
}

// EditGoalSide changes only the home flag; totals are unaffected.
func (e *Engine) EditGoalSide(ctx context.Context, goalID string, isHome bool) error {
	_, err := e.UpdateGoal(ctx, goalID, GoalEdit{IsHome: &isHome})
	return err
}

// RemoveGoal subtracts the stored count from the player, then deletes it.
func (e *Engine) RemoveGoal(ctx context.Context, goalID string) error {
	return e.goalOp(ctx, "remove goal", goalID, func(q store.Queries, goal model.Goal) error {
		return removeGoal(ctx, q, goal)
	})
}

func (e *Engine) goalOp(ctx context.Context, op, goalID string, fn func(q store.Queries, goal model.Goal) error) error {
	if goalID == "" {
		return invalidArgument("goal is required")
	}
	err := e.planned(ctx, op,
		func(q store.Queries) ([]string, error) {
			goal, err := q.GetGoal(ctx, goalID)
			if err != nil {
				return nil, lookup(err, "goal", goalID)
			}
			return []string{fightKey(goal.FightID), playerKey(goal.PlayerID)}, nil
		},
		func(q store.Queries, held keySet) error {
			goal, err := q.GetGoal(ctx, goalID)
			if err != nil {
				return lookup(err, "goal", goalID)
			}
			if err := require(held, fightKey(goal.FightID), playerKey(goal.PlayerID)); err != nil {
				return err
			}
			return fn(q, goal)
		},
	)
	return e.fail(op, err)
}

func removeGoal(ctx context.Context, q store.Queries, goal model.Goal) error {
	if _, err := adjustPlayer(ctx, q, goal.PlayerID, -goal.Count); err != nil {
		return err
	}
	if err := q.DeleteGoal(ctx, goal.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return consistency(err, "goal %s vanished during removal", goal.ID)
		}
		return fmt.Errorf("delete goal %s: %w", goal.ID, err)
	}
	return nil
}

func adjustPlayer(ctx context.Context, q store.Queries, playerID string, delta int) (model.Player, error) {
	player, err := q.GetPlayer(ctx, playerID)
	if errors.Is(err, store.ErrNotFound) {
		return model.Player{}, consistency(err, "player %s of a recorded goal is missing", playerID)
	}
	if err != nil {
		return model.Player{}, fmt.Errorf("load player %s: %w", playerID, err)
	}
	player.TotalGoals += delta
	if player.TotalGoals < 0 {
		return model.Player{}, consistency(nil, "player %s total would drop to %d", playerID, player.TotalGoals)
	}
	if err := q.UpdatePlayer(ctx, player); err != nil {
		return model.Player{}, fmt.Errorf("update player %s: %w", playerID, err)
	}
	return player, nil
}

// ListFightGoals returns home goals first, bigger counts first, then in
// recording order.
func (e *Engine) ListFightGoals(ctx context.Context, fightID string) ([]model.Goal, error) {
	var goals []model.Goal
	err := e.store.View(ctx, func(q store.Queries) error {
		if _, err := q.GetFight(ctx, fightID); err != nil {
			return lookup(err, "fight", fightID)
		}
		var err error
		goals, err = q.ListFightGoals(ctx, fightID)
		return err
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(goals, func(a, b model.Goal) int {
		if a.IsHome != b.IsHome {
			if a.IsHome {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})
	return goals, nil
}

func (e *Engine) GetPlayerTotal(ctx context.Context, playerID string) (int, error) {
	var total int
	err := e.store.View(ctx, func(q store.Queries) error {
		player, err := q.GetPlayer(ctx, playerID)
		if err != nil {
			return lookup(err, "player", playerID)
		}
		total = player.TotalGoals
		return nil
	})
	return total, err
}
