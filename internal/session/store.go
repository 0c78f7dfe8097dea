// Package session holds per-user conversational state for the lifetime of the process.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/margdarshak/schemeseek/internal/models"
)

// Options bound session memory. Zero values disable the corresponding limit.
type Options struct {
	// MaxTurns caps the history length per session; older turns are dropped
	// once the cap is exceeded.
	MaxTurns int
	// TTL evicts sessions not touched for this long.
	TTL time.Duration
}

// Session is one user's accumulated conversational state. All access goes
// through its methods; the embedded mutex makes a session safe for concurrent
// use without blocking other users' sessions.
type Session struct {
	ID     string
	UserID string

	mu          sync.RWMutex
	profile     *models.UserProfile
	eligibleIDs []string
	history     []models.HistoryTurn
	maxTurns    int
	lastSeen    time.Time
}

// SetProfile replaces the stored profile and the cached eligible scheme IDs.
// History is untouched.
func (s *Session) SetProfile(profile *models.UserProfile, eligibleIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *profile
	s.profile = &p
	s.eligibleIDs = append([]string(nil), eligibleIDs...)
}

// Profile returns a copy of the stored profile, or nil if none has been supplied.
func (s *Session) Profile() *models.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

// EligibleCount returns the size of the cached eligible-scheme set.
func (s *Session) EligibleCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.eligibleIDs)
}

// AppendTurn appends one completed exchange, trimming the oldest turns when
// the per-session cap is exceeded.
func (s *Session) AppendTurn(turn models.HistoryTurn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, turn)
	if s.maxTurns > 0 && len(s.history) > s.maxTurns {
		s.history = s.history[len(s.history)-s.maxTurns:]
	}
}

// History returns a copy of the turn history.
func (s *Session) History() []models.HistoryTurn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.HistoryTurn, len(s.history))
	copy(out, s.history)
	return out
}

// TurnCount returns the number of stored turns.
func (s *Session) TurnCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history)
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) expired(now time.Time, ttl time.Duration) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return now.Sub(s.lastSeen) > ttl
}

// Store maps user IDs to sessions. Sessions are created lazily on first use
// and evicted only by TTL; requests for distinct users do not contend beyond
// the map lookup.
type Store struct {
	opts     Options
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty session store.
func NewStore(opts Options) *Store {
	return &Store{
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// GetOrCreate returns the session for userID, creating it if absent, and
// refreshes its last-seen time.
func (st *Store) GetOrCreate(userID string) *Session {
	now := time.Now()

	st.mu.RLock()
	s, ok := st.sessions[userID]
	st.mu.RUnlock()
	if ok {
		s.touch(now)
		return s
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[userID]; ok {
		s.touch(now)
		return s
	}
	s = &Session{
		ID:       uuid.NewString(),
		UserID:   userID,
		maxTurns: st.opts.MaxTurns,
		lastSeen: now,
	}
	st.sessions[userID] = s
	return s
}

// Count returns the number of live sessions, sweeping out expired ones first.
func (st *Store) Count() int {
	st.sweep()
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// sweep removes sessions past the TTL. No-op when TTL is disabled.
func (st *Store) sweep() {
	if st.opts.TTL <= 0 {
		return
	}
	now := time.Now()
	st.mu.Lock()
	defer st.mu.Unlock()
	for id, s := range st.sessions {
		if s.expired(now, st.opts.TTL) {
			delete(st.sessions, id)
		}
	}
}
