package league

import (
	"cmp"
	"context"
	"iter"
	"slices"

	"league-app/internal/model"
	"league-app/internal/store"
)

// Standings yields the table's entries in ranking order. Nothing is read
// until the sequence is ranged over, and every range reads the latest
// committed entries again.
func (e *Engine) Standings(ctx context.Context, tableID string) iter.Seq2[model.TableEntry, error] {
	return func(yield func(model.TableEntry, error) bool) {
		var (
			table   model.Table
			entries []model.TableEntry
		)
		err := e.store.View(ctx, func(q store.Queries) error {
			var err error
			if table, err = q.GetTable(ctx, tableID); err != nil {
				return lookup(err, "table", tableID)
			}
			entries, err = q.ListEntries(ctx, tableID)
			return err
		})
		if err != nil {
			yield(model.TableEntry{}, err)
			return
		}
		rank(entries, table.RankKeys())
		for _, entry := range entries {
			if !yield(entry, nil) {
				return
			}
		}
	}
}

func (e *Engine) GetStandings(ctx context.Context, tableID string) ([]model.TableEntry, error) {
	standings := []model.TableEntry{}
	for entry, err := range e.Standings(ctx, tableID) {
		if err != nil {
			return nil, err
		}
		standings = append(standings, entry)
	}
	return standings, nil
}

// rank sorts by each key descending; entries equal on every key keep the
// order they were created in.
func rank(entries []model.TableEntry, keys []model.RankKey) {
	slices.SortStableFunc(entries, func(a, b model.TableEntry) int {
		for _, k := range keys {
			if c := cmp.Compare(rankValue(b, k), rankValue(a, k)); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.Seq, b.Seq)
	})
}

func rankValue(e model.TableEntry, k model.RankKey) int {
	switch k {
	case model.RankPoints:
		return e.Points
	case model.RankGoalDifference:
		return e.GoalDifference()
	case model.RankScoreFor:
		return e.ScoreFor
	case model.RankWins:
		return e.Win
	}
	return 0
}

func validRankKey(k model.RankKey) bool {
	switch k {
	case model.RankPoints, model.RankGoalDifference, model.RankScoreFor, model.RankWins:
		return true
	}
	return false
}
