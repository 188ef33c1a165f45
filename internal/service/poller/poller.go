package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "passit-client/internal/common/errors"
	"passit-client/internal/domain/claim"
	"passit-client/internal/metrics"
)

const (
	DefaultInterval    = 5 * time.Second
	DefaultMaxAttempts = 60
)

// Options configures one polling run. Zero Interval and MaxAttempts take the poller defaults.
//
// Callbacks run on the polling goroutine, one at a time. They must not call the cancel
// function of their own run synchronously.
type Options struct {
	OnUpdate    func(claim.TxStatus)
	OnComplete  func(claim.TxStatus)
	OnError     func(error)
	Interval    time.Duration
	MaxAttempts int
}

// Poller watches claim transactions until they leave the pending state.
type Poller struct {
	fetcher     claim.StatusFetcher
	interval    time.Duration
	maxAttempts int
	log         zerolog.Logger
}

func New(fetcher claim.StatusFetcher, interval time.Duration, maxAttempts int, log zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Poller{
		fetcher:     fetcher,
		interval:    interval,
		maxAttempts: maxAttempts,
		log:         log.With().Str("component", "poller").Logger(),
	}
}

// run is the private state of one Start call.
type run struct {
	mu       sync.Mutex
	stopped  bool
	attempts int

	ctx    context.Context
	cancel context.CancelFunc
}

func (r *run) stop() {
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()
	r.cancel()
}

// Start queries the status of claimID immediately and then every interval after the
// previous response was handled. The returned cancel is idempotent; once it returns
// no callback of this run starts, even for a query that was already in flight.
func (p *Poller) Start(claimID string, opts Options) (cancel func()) {
	if opts.Interval <= 0 {
		opts.Interval = p.interval
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = p.maxAttempts
	}

	ctx, ctxCancel := context.WithCancel(context.Background())
	r := &run{ctx: ctx, cancel: ctxCancel}
	go p.loop(r, claimID, opts)
	return r.stop
}

func (p *Poller) loop(r *run, claimID string, opts Options) {
	defer r.cancel()
	log := p.log.With().Str("claim_id", claimID).Logger()

	for {
		st, err := p.fetch(r.ctx, claimID)

		r.mu.Lock()
		if r.stopped {
			r.mu.Unlock()
			log.Debug().Msg("Polling cancelled, dropping response")
			return
		}
		done := p.handle(r, log, st, err, opts)
		r.mu.Unlock()
		if done {
			return
		}

		timer := time.NewTimer(opts.Interval)
		select {
		case <-timer.C:
		case <-r.ctx.Done():
			timer.Stop()
			return
		}
	}
}

// fetch queries the ledger once. A panicking fetcher ends the run like a transport failure.
func (p *Poller) fetch(ctx context.Context, claimID string) (st claim.TxStatus, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("status query panicked: %v", rec)
		}
	}()
	return p.fetcher.ClaimStatus(ctx, claimID)
}

// handle delivers the callbacks for one response with r.mu held and reports whether polling ends.
func (p *Poller) handle(r *run, log zerolog.Logger, st claim.TxStatus, err error, opts Options) bool {
	if err != nil {
		metrics.PollQuery("error")
		log.Warn().Err(err).Int("attempt", r.attempts+1).Msg("Status query failed")
		r.stopped = true
		if !apperrors.IsAppError(err) {
			err = apperrors.NewTransportError("status", err)
		}
		p.deliver(r, log, opts, func() { call1(opts.OnError, err) }, true)
		return true
	}

	metrics.PollQuery(string(st.Status))
	log.Debug().Str("status", string(st.Status)).Int("attempt", r.attempts+1).Msg("Status received")

	if !p.deliver(r, log, opts, func() { call1(opts.OnUpdate, st) }, false) {
		return true
	}
	if st.Status.Terminal() {
		r.stopped = true
		p.deliver(r, log, opts, func() { call1(opts.OnComplete, st) }, false)
		return true
	}

	r.attempts++
	if r.attempts >= opts.MaxAttempts {
		r.stopped = true
		log.Warn().Int("attempts", r.attempts).Msg("Polling timed out")
		p.deliver(r, log, opts, func() { call1(opts.OnError, error(apperrors.NewPollingTimeoutError(r.attempts))) }, true)
		return true
	}
	return false
}

// deliver runs fn, turning a panic into a stopped run reported through OnError.
func (p *Poller) deliver(r *run, log zerolog.Logger, opts Options, fn func(), isOnError bool) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			ok = false
			r.stopped = true
			log.Error().Interface("panic", rec).Msg("Polling callback panicked")
			if !isOnError && opts.OnError != nil {
				func() {
					defer func() { _ = recover() }()
					opts.OnError(apperrors.New(apperrors.ErrCodeInternal, apperrors.FallbackMessage).
						WithDetail("panic", fmt.Sprint(rec)))
				}()
			}
		}
	}()
	fn()
	return true
}

func call1[T any](fn func(T), v T) {
	if fn != nil {
		fn(v)
	}
}
