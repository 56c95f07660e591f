package orchestrator

import (
	"context"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/dusk-indust/dualopinion/internal/opinion"
)

// State is the phase of a conversation.
type State string

const (
	// StateAwaitingOpinions: no comparison is available yet.
	StateAwaitingOpinions State = "awaiting-opinions"
	// StateOpinionsReady: both opinions and their diff are available and the
	// user may merge.
	StateOpinionsReady State = "opinions-ready"
)

const defaultMaxSessions = 1024

// Session is one conversation with the engine. It remembers the last
// comparison so the user's merge choice can be applied to it later. A Session
// is safe for concurrent use; calls are serialized.
type Session struct {
	id       string
	pipeline Orchestrator
	logger   *zap.Logger

	mu           sync.Mutex
	state        State
	comparison   *Comparison
	consolidated *opinion.Consolidated
}

// NewSession starts a conversation on p with a random ID.
func NewSession(p Orchestrator, logger *zap.Logger) *Session {
	id := uuid.NewString()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		id:       id,
		pipeline: p,
		logger:   logger.With(zap.String("session", id)),
		state:    StateAwaitingOpinions,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Ask runs a comparison for query. Asking again replaces the previous
// comparison and any merge made from it. On error the session returns to
// StateAwaitingOpinions.
func (s *Session) Ask(ctx context.Context, query string) (*Comparison, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateAwaitingOpinions
	s.comparison = nil
	s.consolidated = nil

	c, err := s.pipeline.Compare(ctx, query)
	if err != nil {
		s.logger.Info("ask failed", zap.Error(err))
		return nil, err
	}
	s.comparison = c
	s.state = StateOpinionsReady
	return c, nil
}

// Comparison returns the current comparison, or ErrNotReady.
func (s *Session) Comparison() (*Comparison, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateOpinionsReady {
		return nil, opinion.Errorf(opinion.KindNotReady, "session %s has no opinions yet", s.id)
	}
	return s.comparison, nil
}

// Merge applies the user's preference to the current comparison. It may be
// called again with a different preference; the latest result is kept.
func (s *Session) Merge(pref opinion.Preference) (opinion.Consolidated, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateOpinionsReady {
		return opinion.Consolidated{}, opinion.Errorf(opinion.KindNotReady, "session %s has no opinions to merge", s.id)
	}
	out, err := s.pipeline.Merge(s.comparison, pref)
	if err != nil {
		return opinion.Consolidated{}, err
	}
	s.consolidated = &out
	s.logger.Info("merged", zap.String("preference", string(pref)))
	return out, nil
}

// Consolidated returns the latest merge result, if any.
func (s *Session) Consolidated() (opinion.Consolidated, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.consolidated == nil {
		return opinion.Consolidated{}, false
	}
	return *s.consolidated, true
}

// SessionStore keeps the most recently used sessions for transports that
// address them by ID. Older sessions are evicted.
type SessionStore struct {
	pipeline Orchestrator
	logger   *zap.Logger
	onStart  func()
	cache    *lru.Cache[string, *Session]
}

// NewSessionStore creates a store holding up to size sessions on p. A
// non-positive size uses the default. onStart, if set, runs for every new
// session.
func NewSessionStore(p Orchestrator, size int, logger *zap.Logger, onStart func()) *SessionStore {
	if size <= 0 {
		size = defaultMaxSessions
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	// lru.New only errors on a non-positive size, which is guarded above.
	c, _ := lru.New[string, *Session](size)
	return &SessionStore{pipeline: p, logger: logger, onStart: onStart, cache: c}
}

// Start creates and stores a new session.
func (st *SessionStore) Start() *Session {
	s := NewSession(st.pipeline, st.logger)
	st.cache.Add(s.ID(), s)
	if st.onStart != nil {
		st.onStart()
	}
	return s
}

// Get returns the session with id, or a NotFound error.
func (st *SessionStore) Get(id string) (*Session, error) {
	s, ok := st.cache.Get(id)
	if !ok {
		return nil, opinion.Errorf(opinion.KindNotFound, "session %q not found", id)
	}
	return s, nil
}

// Len reports the number of live sessions.
func (st *SessionStore) Len() int { return st.cache.Len() }
