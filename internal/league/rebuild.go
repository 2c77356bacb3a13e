package league

import (
	"context"
	"fmt"

	"league-app/internal/model"
	"league-app/internal/store"
)

// RebuildTable recomputes every entry of the table from its surviving
// fights and returns how many entries were corrected. It is the repair path
// after an interrupted cascade and never runs on its own.
func (e *Engine) RebuildTable(ctx context.Context, tableID string) (int, error) {
	var changed int
	err := e.planned(ctx, "rebuild table",
		func(q store.Queries) ([]string, error) {
			fights, entries, err := loadTable(ctx, q, tableID)
			if err != nil {
				return nil, err
			}
			keys := make([]string, 0, len(entries)+2*len(fights))
			for _, entry := range entries {
				keys = append(keys, entryKey(tableID, entry.TeamID))
			}
			for _, f := range fights {
				keys = append(keys, resultOf(f).keys()...)
			}
			return keys, nil
		},
		func(q store.Queries, held keySet) error {
			changed = 0
			table, err := q.GetTable(ctx, tableID)
			if err != nil {
				return lookup(err, "table", tableID)
			}
			fights, entries, err := loadTable(ctx, q, tableID)
			if err != nil {
				return err
			}

			want := map[string]model.TableEntry{}
			order := []string{}
			for _, entry := range entries {
				want[entry.TeamID] = model.TableEntry{}
				order = append(order, entry.TeamID)
			}
			for _, f := range fights {
				r := resultOf(f)
				if err := require(held, r.keys()...); err != nil {
					return err
				}
				d1, d2 := r.deltas(table.Formula)
				for _, side := range []struct {
					team string
					d    entryDelta
				}{{f.Team1ID, d1}, {f.Team2ID, d2}} {
					if _, ok := want[side.team]; !ok {
						order = append(order, side.team)
					}
					want[side.team] = side.d.applyTo(want[side.team], 1)
				}
			}

			current := map[string]model.TableEntry{}
			for _, entry := range entries {
				current[entry.TeamID] = entry
			}
			for _, teamID := range order {
				next := want[teamID]
				entry, ok := current[teamID]
				if !ok {
					entry, err = q.CreateEntry(ctx, model.TableEntry{TableID: tableID, TeamID: teamID})
					if err != nil {
						return fmt.Errorf("create entry for team %s in table %s: %w", teamID, tableID, err)
					}
				}
				next.ID, next.TableID, next.TeamID, next.Seq = entry.ID, entry.TableID, entry.TeamID, entry.Seq
				if next == entry {
					continue
				}
				if err := q.UpdateEntry(ctx, next); err != nil {
					return fmt.Errorf("update entry for team %s in table %s: %w", teamID, tableID, err)
				}
				e.log.Warn().
					Str("table", tableID).
					Str("team", teamID).
					Int("points_was", entry.Points).
					Int("points", next.Points).
					Int("counter_was", entry.Counter).
					Int("counter", next.Counter).
					Msg("table entry rebuilt")
				changed++
			}
			return nil
		},
	)
	return changed, e.fail("rebuild table", err)
}

func loadTable(ctx context.Context, q store.Queries, tableID string) ([]model.Fight, []model.TableEntry, error) {
	if _, err := q.GetTable(ctx, tableID); err != nil {
		return nil, nil, lookup(err, "table", tableID)
	}
	fights, err := q.ListTableFights(ctx, tableID)
	if err != nil {
		return nil, nil, fmt.Errorf("list fights of table %s: %w", tableID, err)
	}
	entries, err := q.ListEntries(ctx, tableID)
	if err != nil {
		return nil, nil, fmt.Errorf("list entries of table %s: %w", tableID, err)
	}
	return fights, entries, nil
}

// RebuildPlayerTotal resets the player's total to the sum of their
// surviving goals. It returns 1 when the total had drifted, 0 otherwise.
func (e *Engine) RebuildPlayerTotal(ctx context.Context, playerID string) (int, error) {
	var changed int
	err := e.locked(ctx, []string{playerKey(playerID)}, func(q store.Queries) error {
		player, err := q.GetPlayer(ctx, playerID)
		if err != nil {
			return lookup(err, "player", playerID)
		}
		goals, err := q.ListPlayerGoals(ctx, playerID)
		if err != nil {
			return fmt.Errorf("list goals of player %s: %w", playerID, err)
		}
		total := 0
		for _, g := range goals {
			total += g.Count
		}
		if total == player.TotalGoals {
			return nil
		}
		e.log.Warn().Str("player", playerID).Int("total_was", player.TotalGoals).Int("total", total).Msg("player total rebuilt")
		player.TotalGoals = total
		changed = 1
		return q.UpdatePlayer(ctx, player)
	})
	return changed, e.fail("rebuild player total", err)
}
