package claim

import (
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "passit-client/internal/common/errors"
	dc "passit-client/internal/domain/claim"
	"passit-client/internal/metrics"
)

// Registry owns the live flows of the display API. Flows idle for longer than the TTL
// are torn down by a periodic sweep so that no poller outlives its view.
type Registry struct {
	deps     Deps
	opts     FlowOptions
	capacity int
	idleTTL  time.Duration
	log      zerolog.Logger

	mu    sync.RWMutex
	flows map[string]*Flow

	scheduler *gocron.Scheduler
}

func NewRegistry(deps Deps, opts FlowOptions, capacity int, idleTTL time.Duration) *Registry {
	return &Registry{
		deps:      deps,
		opts:      opts,
		capacity:  capacity,
		idleTTL:   idleTTL,
		log:       deps.Log.With().Str("component", "registry").Logger(),
		flows:     make(map[string]*Flow),
		scheduler: gocron.NewScheduler(time.UTC),
	}
}

// Create registers a new flow for token in the loading phase, owned by the given user.
// Owner 0 means an unauthenticated caller.
func (r *Registry) Create(token dc.Token, owner int64) (*Flow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.capacity > 0 && len(r.flows) >= r.capacity {
		return nil, apperrors.NewRateLimitError("claim flows")
	}
	id := uuid.NewString()
	f := NewFlow(id, token, r.deps, r.opts)
	f.owner = owner
	r.flows[id] = f
	metrics.FlowsActive(len(r.flows))
	return f, nil
}

func (r *Registry) Get(id string) (*Flow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.flows[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("flow", id)
	}
	return f, nil
}

// GetOwned is Get restricted to flows created by owner. Other users' flows are reported
// as missing.
func (r *Registry) GetOwned(id string, owner int64) (*Flow, error) {
	f, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if f.owner != owner {
		r.log.Warn().Str("flow_id", id).Int64("user_id", owner).Msg("Flow requested by another user")
		return nil, apperrors.NewNotFoundError("flow", id)
	}
	return f, nil
}

// Remove tears the flow down and forgets it.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	f, ok := r.flows[id]
	delete(r.flows, id)
	metrics.FlowsActive(len(r.flows))
	r.mu.Unlock()
	if !ok {
		return apperrors.NewNotFoundError("flow", id)
	}
	f.Teardown()
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.flows)
}

// Sweep removes flows untouched since now minus the idle TTL and returns how many went.
func (r *Registry) Sweep(now time.Time) int {
	var stale []*Flow
	r.mu.Lock()
	for id, f := range r.flows {
		if now.Sub(f.IdleSince()) >= r.idleTTL {
			stale = append(stale, f)
			delete(r.flows, id)
		}
	}
	metrics.FlowsActive(len(r.flows))
	r.mu.Unlock()

	for _, f := range stale {
		f.Teardown()
	}
	if len(stale) > 0 {
		r.log.Info().Int("removed", len(stale)).Msg("Swept idle flows")
	}
	return len(stale)
}

// StartSweeper runs Sweep every interval in the background.
func (r *Registry) StartSweeper(interval time.Duration) error {
	secs := int(interval / time.Second)
	if secs < 1 {
		secs = 1
	}
	if _, err := r.scheduler.Every(secs).Seconds().SingletonMode().Do(func() {
		r.Sweep(time.Now())
	}); err != nil {
		return err
	}
	r.scheduler.StartAsync()
	return nil
}

// Close stops the sweeper and tears down every flow.
func (r *Registry) Close() {
	r.scheduler.Stop()

	r.mu.Lock()
	flows := r.flows
	r.flows = make(map[string]*Flow)
	metrics.FlowsActive(0)
	r.mu.Unlock()

	for _, f := range flows {
		f.Teardown()
	}
}
