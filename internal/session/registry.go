package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Elavasaran/yummie-mart-porta/internal/cache"
	"github.com/Elavasaran/yummie-mart-porta/internal/lifecycle"
	"github.com/Elavasaran/yummie-mart-porta/internal/metrics"
)

const (
	// DefaultIdleTTL is how long an untouched session stays in memory.
	DefaultIdleTTL = 30 * time.Minute

	// CleanupInterval is how often idle sessions are evicted.
	CleanupInterval = time.Minute
)

// Factory builds an empty manager for a session id.
type Factory func(sessionID string) *lifecycle.Manager

type entry struct {
	manager  *lifecycle.Manager
	lastSeen time.Time
}

// Registry hands out the lifecycle manager that owns each session. Idle
// sessions are written to the cache and dropped from memory; the next
// request for them is served from the cached snapshot.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*entry
	loads    singleflight.Group

	cache   cache.SessionCache
	factory Factory
	idleTTL time.Duration
	now     func() time.Time
	logger  *slog.Logger

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

type Option func(*Registry)

func WithIdleTTL(d time.Duration) Option {
	return func(r *Registry) { r.idleTTL = d }
}

func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// NewRegistry starts the background eviction loop; call Close to stop it.
func NewRegistry(c cache.SessionCache, factory Factory, opts ...Option) *Registry {
	r := &Registry{
		sessions:    make(map[string]*entry),
		cache:       c,
		factory:     factory,
		idleTTL:     DefaultIdleTTL,
		now:         time.Now,
		logger:      slog.Default(),
		stopCleanup: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cache == nil {
		r.cache = cache.NopCache{}
	}

	r.wg.Add(1)
	go r.cleanupLoop()
	return r
}

// Get returns the session's manager, rehydrating it from the cache or
// creating an empty one as needed.
func (r *Registry) Get(ctx context.Context, sessionID string) *lifecycle.Manager {
	r.mu.Lock()
	if e, ok := r.sessions[sessionID]; ok {
		e.lastSeen = r.now()
		r.mu.Unlock()
		return e.manager
	}
	r.mu.Unlock()

	// One load per session id at a time: a second loader could miss the
	// snapshot the first one is restoring and shadow it with an empty cart.
	v, _, _ := r.loads.Do(sessionID, func() (interface{}, error) {
		return r.load(context.WithoutCancel(ctx), sessionID), nil
	})
	return v.(*lifecycle.Manager)
}

func (r *Registry) load(ctx context.Context, sessionID string) *lifecycle.Manager {
	r.mu.Lock()
	if e, ok := r.sessions[sessionID]; ok {
		e.lastSeen = r.now()
		r.mu.Unlock()
		return e.manager
	}
	r.mu.Unlock()

	// Build outside the lock: the cache lookup may hit the network.
	m := r.factory(sessionID)
	snap, err := r.cache.Get(ctx, sessionID)
	restored := err == nil
	switch {
	case restored:
		m.Restore(*snap)
	case !errors.Is(err, cache.ErrCacheMiss):
		r.logger.WarnContext(ctx, "session cache get failed", "session_id", sessionID, "error", err)
	}

	r.mu.Lock()
	r.sessions[sessionID] = &entry{manager: m, lastSeen: r.now()}
	metrics.SetActiveSessions(len(r.sessions))
	r.mu.Unlock()

	if restored {
		// the live manager is authoritative until it is parked again
		if err := r.cache.Delete(ctx, sessionID); err != nil {
			r.logger.WarnContext(ctx, "session cache delete failed", "session_id", sessionID, "error", err)
		}
		r.logger.DebugContext(ctx, "session restored from cache", "session_id", sessionID)
	}
	return m
}

// Len reports how many sessions are held in memory.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) cleanupLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.EvictIdle(context.Background())
		case <-r.stopCleanup:
			return
		}
	}
}

// EvictIdle moves sessions that have been idle longer than the TTL from
// memory to the cache. It returns the number of evicted sessions.
func (r *Registry) EvictIdle(ctx context.Context) int {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	idle := make(map[string]*lifecycle.Manager)
	for id, e := range r.sessions {
		if e.lastSeen.Before(cutoff) {
			idle[id] = e.manager
			delete(r.sessions, id)
		}
	}
	metrics.SetActiveSessions(len(r.sessions))
	r.mu.Unlock()

	for id, m := range idle {
		r.park(ctx, id, m)
	}
	return len(idle)
}

// Close stops eviction and parks every live session in the cache.
func (r *Registry) Close() error {
	close(r.stopCleanup)
	r.wg.Wait()

	r.mu.Lock()
	live := r.sessions
	r.sessions = make(map[string]*entry)
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for id, e := range live {
		r.park(ctx, id, e.manager)
	}
	return nil
}

func (r *Registry) park(ctx context.Context, id string, m *lifecycle.Manager) {
	if err := m.Close(); err != nil {
		r.logger.WarnContext(ctx, "session scheduler close failed", "session_id", id, "error", err)
	}
	snap := m.Snapshot()
	if err := r.cache.Set(ctx, id, &snap); err != nil {
		r.logger.WarnContext(ctx, "session cache set failed", "session_id", id, "error", err)
		return
	}
	r.logger.DebugContext(ctx, "session parked", "session_id", id)
}
