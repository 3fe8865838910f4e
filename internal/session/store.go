package session

import (
	"sync"
	"time"

	"statview/domain/core"
	"statview/domain/stats"
	"statview/domain/table"
	"statview/internal"
	"statview/internal/correlate"
	"statview/internal/errors"
)

// Context is the per-session state the UI collaborator owns: the single
// active table, the user's numeric-column subset, and the correlation
// matrix cached for that subset. It is never shared across sessions and
// all access goes through the store's lock.
type Context struct {
	ID         core.SessionID
	CreatedAt  core.Timestamp
	LastActive core.Timestamp

	table       *table.Table
	fingerprint core.TableFingerprint
	active      []core.ColumnName // nil means every numeric column
	matrix      *stats.CorrelationMatrix
}

// Store holds all live session contexts
type Store struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*Context
	ttl      time.Duration
	log      *internal.Logger
}

// NewStore creates a session store. Sessions idle longer than ttl are
// removed by Sweep.
func NewStore(ttl time.Duration, logger *internal.Logger) *Store {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Store{
		sessions: make(map[core.SessionID]*Context),
		ttl:      ttl,
		log:      logger.Named("session"),
	}
}

// Create registers a new session owning the given table
func (s *Store) Create(t *table.Table, fp core.TableFingerprint) core.SessionID {
	id := core.SessionID(core.NewID())
	now := core.Now()

	s.mu.Lock()
	s.sessions[id] = &Context{
		ID:          id,
		CreatedAt:   now,
		LastActive:  now,
		table:       t,
		fingerprint: fp,
	}
	s.mu.Unlock()

	s.log.Info("session %s created: %d columns, %d rows, data %s", id, t.ColumnCount(), t.RowCount(), fp.Short())
	return id
}

// Replace swaps in a newly uploaded table, discarding the old table,
// the column subset, and the cached correlation matrix.
func (s *Store) Replace(id core.SessionID, t *table.Table, fp core.TableFingerprint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, ok := s.sessions[id]
	if !ok {
		return errors.NotFound("session")
	}
	if fp == ctx.fingerprint {
		s.log.Debug("session %s: replacement upload matches current data %s", id, fp.Short())
	}
	ctx.table = t
	ctx.fingerprint = fp
	ctx.active = nil
	ctx.matrix = nil
	ctx.LastActive = core.Now()
	return nil
}

// Fingerprint returns the fingerprint of the session's current upload
func (s *Store) Fingerprint(id core.SessionID) (core.TableFingerprint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, ok := s.sessions[id]
	if !ok {
		return "", errors.NotFound("session")
	}
	return ctx.fingerprint, nil
}

// Table returns the session's full table
func (s *Store) Table(id core.SessionID) (*table.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, ok := s.sessions[id]
	if !ok {
		return nil, errors.NotFound("session")
	}
	ctx.LastActive = core.Now()
	return ctx.table, nil
}

// ActiveTable returns the table restricted to the session's column
// subset, or the full table when no subset is set.
func (s *Store) ActiveTable(id core.SessionID) (*table.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, ok := s.sessions[id]
	if !ok {
		return nil, errors.NotFound("session")
	}
	ctx.LastActive = core.Now()
	if ctx.active == nil {
		return ctx.table, nil
	}
	return ctx.table.Select(ctx.active)
}

// SetActiveColumns narrows stats, correlation, and plots to the named
// numeric columns. An empty selection resets to all numeric columns.
// Changing the subset invalidates the cached correlation matrix.
func (s *Store) SetActiveColumns(id core.SessionID, names []core.ColumnName) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, ok := s.sessions[id]
	if !ok {
		return errors.NotFound("session")
	}
	for _, name := range names {
		col, ok := ctx.table.Column(name)
		if !ok {
			return core.NewInvalidColumnError(name, "not present in table")
		}
		if !col.IsNumeric() {
			return core.NewInvalidColumnError(name, "not numeric")
		}
	}
	if len(names) == 0 {
		ctx.active = nil
	} else {
		ctx.active = append([]core.ColumnName(nil), names...)
	}
	ctx.matrix = nil
	ctx.LastActive = core.Now()
	return nil
}

// ActiveColumns returns the current subset, nil when unset
func (s *Store) ActiveColumns(id core.SessionID) ([]core.ColumnName, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, ok := s.sessions[id]
	if !ok {
		return nil, errors.NotFound("session")
	}
	return append([]core.ColumnName(nil), ctx.active...), nil
}

// Correlation returns the session's correlation matrix, computing and
// caching it on first use. The cache lives until the subset or table
// changes.
func (s *Store) Correlation(id core.SessionID, method stats.Method) (*stats.CorrelationMatrix, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, ok := s.sessions[id]
	if !ok {
		return nil, errors.NotFound("session")
	}
	ctx.LastActive = core.Now()

	if ctx.matrix != nil && ctx.matrix.Method == method {
		return ctx.matrix, nil
	}

	t := ctx.table
	if ctx.active != nil {
		selected, err := t.Select(ctx.active)
		if err != nil {
			return nil, err
		}
		t = selected
	}
	matrix, err := correlate.Matrix(t, method)
	if err != nil {
		return nil, err
	}
	ctx.matrix = matrix
	return matrix, nil
}

// Delete removes a session
func (s *Store) Delete(id core.SessionID) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep drops sessions idle longer than the store TTL and returns how
// many were removed
func (s *Store) Sweep(now time.Time) int {
	cutoff := now.Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, ctx := range s.sessions {
		if ctx.LastActive.Time().Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.log.Info("swept %d expired sessions, %d remain", removed, len(s.sessions))
	}
	return removed
}
