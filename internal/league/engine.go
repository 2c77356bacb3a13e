// Package league keeps standings tables and player goal totals in step with
// the recorded fights and goals. Aggregates are adjusted incrementally on
// every write; the full recompute in rebuild.go is an explicit repair path.
package league

import (
	"context"
	"errors"

	"league-app/internal/model"
	"league-app/internal/store"

	"github.com/rs/zerolog"
)

const maxPlanAttempts = 5

// errStalePlan means rows appeared between planning and locking; the
// operation is retried with a fresh plan.
var errStalePlan = errors.New("row set changed while acquiring locks")

type Options struct {
	// DefaultFormula applies to tables created without their own formula.
	DefaultFormula model.PointsFormula
	Logger         zerolog.Logger
}

type Engine struct {
	store   store.Store
	locks   *rowLocks
	formula model.PointsFormula
	log     zerolog.Logger
}

func NewEngine(st store.Store, opts Options) *Engine {
	formula := opts.DefaultFormula
	if formula == (model.PointsFormula{}) {
		formula = model.DefaultPointsFormula
	}
	return &Engine{
		store:   st,
		locks:   newRowLocks(),
		formula: formula,
		log:     opts.Logger.With().Str("component", "league").Logger(),
	}
}

// locked runs fn in one store transaction while holding keys.
func (e *Engine) locked(ctx context.Context, keys []string, fn func(q store.Queries) error) error {
	release := e.locks.acquire(keys...)
	defer release()
	return e.store.RunInTx(ctx, fn)
}

// planned is locked for operations whose key set depends on stored rows.
// plan reads committed state and names the keys; run re-reads under those
// keys and returns errStalePlan if it needs a key it does not hold.
func (e *Engine) planned(
	ctx context.Context,
	op string,
	plan func(q store.Queries) ([]string, error),
	run func(q store.Queries, held keySet) error,
) error {
	for attempt := 1; attempt <= maxPlanAttempts; attempt++ {
		var keys []string
		err := e.store.View(ctx, func(q store.Queries) error {
			var err error
			keys, err = plan(q)
			return err
		})
		if err != nil {
			return err
		}
		held := newKeySet(keys)
		err = e.locked(ctx, keys, func(q store.Queries) error { return run(q, held) })
		if !errors.Is(err, errStalePlan) {
			return err
		}
		e.log.Debug().Str("op", op).Int("attempt", attempt).Msg("row set changed, replanning")
	}
	return consistency(errStalePlan, "%s: rows kept changing after %d attempts", op, maxPlanAttempts)
}

func require(held keySet, keys ...string) error {
	for _, k := range keys {
		if !held.has(k) {
			return errStalePlan
		}
	}
	return nil
}

// fail logs consistency failures for out-of-band repair and passes err on.
func (e *Engine) fail(op string, err error) error {
	if err == nil {
		return nil
	}
	if CodeOf(err) == CodeConsistency {
		e.log.Error().Err(err).Str("op", op).Msg("aggregates diverged from ledger; rebuild required")
	}
	return err
}
