package league

import (
	"slices"
	"sync"
)

func entryKey(tableID, teamID string) string { return "entry:" + tableID + ":" + teamID }
func playerKey(playerID string) string       { return "player:" + playerID }
func fightKey(fightID string) string         { return "fight:" + fightID }
func roundKey(roundID string) string         { return "round:" + roundID }

// rowLocks serializes read-modify-write cycles per row. A caller takes its
// whole key set at once; keys are locked in sorted order so two callers can
// never wait on each other.
type rowLocks struct {
	mu   sync.Mutex
	rows map[string]*rowLock
}

type rowLock struct {
	mu   sync.Mutex
	refs int
}

func newRowLocks() *rowLocks {
	return &rowLocks{rows: make(map[string]*rowLock)}
}

func (l *rowLocks) acquire(keys ...string) (release func()) {
	keys = slices.Clone(keys)
	slices.Sort(keys)
	keys = slices.Compact(keys)

	held := make([]*rowLock, 0, len(keys))
	for _, key := range keys {
		row := l.ref(key)
		row.mu.Lock()
		held = append(held, row)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
			l.unref(keys[i], held[i])
		}
	}
}

func (l *rowLocks) ref(key string) *rowLock {
	l.mu.Lock()
	defer l.mu.Unlock()

	row, ok := l.rows[key]
	if !ok {
		row = &rowLock{}
		l.rows[key] = row
	}
	row.refs++
	return row
}

func (l *rowLocks) unref(key string, row *rowLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	row.refs--
	if row.refs == 0 {
		delete(l.rows, key)
	}
}

// keySet is the set of row keys an operation holds.
type keySet map[string]struct{}

func newKeySet(keys []string) keySet {
	set := make(keySet, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

func (s keySet) has(key string) bool {
	_, ok := s[key]
	return ok
}
