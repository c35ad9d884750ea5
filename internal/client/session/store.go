// Package session holds the process-wide view of the signed-in identity.
//
// A Store is seeded once from the identity client and then follows the
// client's session change events. Observers read snapshots with State or
// follow them with Watch.
package session

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/dmitrijs2005/resourcehub/internal/client/client"
	"github.com/dmitrijs2005/resourcehub/internal/client/models"
	"github.com/dmitrijs2005/resourcehub/internal/logging"
)

// Source is the part of the identity client the store depends on.
type Source interface {
	GetSession(ctx context.Context) (*models.Session, error)
	OnSessionChange(fn func(models.SessionEvent)) client.Subscription
}

// Snapshot is a copy of the store state. Identity is set iff Session is.
type Snapshot struct {
	Identity *models.Identity
	Session  *models.Session
	Loading  bool
}

// clone deep-copies the snapshot so callers cannot reach the store's state.
func (sn Snapshot) clone() Snapshot {
	out := Snapshot{Loading: sn.Loading}
	if sn.Session == nil || sn.Session.Identity == nil {
		return out
	}
	id := *sn.Session.Identity
	if id.Metadata != nil {
		id.Metadata = maps.Clone(id.Metadata)
	}
	sess := *sn.Session
	sess.Identity = &id
	out.Session = &sess
	out.Identity = &id
	return out
}

type Store struct {
	src    Source
	logger logging.Logger

	mu       sync.Mutex
	state    Snapshot
	seen     bool // an event arrived before the initial fetch finished
	sub      client.Subscription
	watchers map[int]chan Snapshot
	nextID   int
	closed   bool
}

// New returns a store in the loading state. src may be nil when the identity
// service is not configured.
func New(src Source, logger logging.Logger) *Store {
	return &Store{
		src:      src,
		logger:   logger.With("module", "session"),
		state:    Snapshot{Loading: true},
		watchers: make(map[int]chan Snapshot),
	}
}

// Init subscribes to session changes and then fetches the current session
// once. Any failure resolves to "no session". Loading is false on return.
func (s *Store) Init(ctx context.Context, timeout time.Duration) {
	if s.src == nil {
		s.mu.Lock()
		s.setLocked(nil)
		s.mu.Unlock()
		return
	}

	sub := s.src.OnSessionChange(s.handleEvent)
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		sub.Unsubscribe()
		return
	}
	s.sub = sub
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sess, err := s.src.GetSession(ctx)
	if err != nil {
		s.logger.Warn(ctx, "initial session fetch failed", "error", err)
		sess = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen {
		// a change event is newer than the fetch result
		s.state.Loading = false
		s.broadcastLocked()
		return
	}
	s.setLocked(sess)
}

func (s *Store) handleEvent(ev models.SessionEvent) {
	s.logger.Debug(context.Background(), "session event", "kind", string(ev.Kind))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = true
	if ev.Kind == models.EventSignedOut {
		s.setLocked(nil)
		return
	}
	s.setLocked(ev.Session)
}

func (s *Store) setLocked(sess *models.Session) {
	if sess != nil && sess.Identity == nil {
		sess = nil
	}
	s.state = Snapshot{Loading: false}
	if sess != nil {
		cp := *sess
		id := *sess.Identity
		cp.Identity = &id
		s.state.Session = &cp
		s.state.Identity = &id
	}
	s.broadcastLocked()
}

func (s *Store) broadcastLocked() {
	for _, ch := range s.watchers {
		// keep only the latest snapshot for slow watchers
		select {
		case <-ch:
		default:
		}
		ch <- s.state.clone()
	}
}

// State returns the current snapshot.
func (s *Store) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Watch returns a channel that receives the current snapshot and every later
// one. A slow reader only sees the latest. cancel stops delivery and closes
// the channel.
func (s *Store) Watch() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Snapshot, 1)
	ch <- s.state.clone()
	if s.closed {
		close(ch)
		return ch, func() {}
	}

	id := s.nextID
	s.nextID++
	s.watchers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if w, ok := s.watchers[id]; ok {
				delete(s.watchers, id)
				close(w)
			}
		})
	}
}

// Close unsubscribes from the client and closes all watch channels. It is
// safe to call more than once.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	sub := s.sub
	s.sub = nil
	for id, ch := range s.watchers {
		delete(s.watchers, id)
		close(ch)
	}
	s.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}
