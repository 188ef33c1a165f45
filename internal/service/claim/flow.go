package claim

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "passit-client/internal/common/errors"
	dc "passit-client/internal/domain/claim"
	dw "passit-client/internal/domain/wallet"
	"passit-client/internal/metrics"
	"passit-client/internal/service/poller"
	"passit-client/internal/service/wallet"
)

var (
	ErrAlreadySubmitted = stderrors.New("claim already submitted")
	ErrNotReady         = stderrors.New("flow is not in a state that allows this action")
	ErrClosed           = stderrors.New("flow is closed")
	ErrSkipDisabled     = stderrors.New("skip waiting is disabled")
)

// TokenValidator is the preflight step run by Start.
type TokenValidator interface {
	Validate(ctx context.Context, token dc.Token) error
}

// ClaimSubmitter sends one claim.
type ClaimSubmitter interface {
	Submit(ctx context.Context, req dc.Request) (dc.Record, error)
}

// StatusPoller watches a claim until its transaction settles.
type StatusPoller interface {
	Start(claimID string, opts poller.Options) (cancel func())
}

// Deps are the collaborators shared by every flow.
type Deps struct {
	Preflight TokenValidator
	Submitter ClaimSubmitter
	Poller    StatusPoller
	Log       zerolog.Logger
}

// FlowOptions tune a single flow.
type FlowOptions struct {
	PollInterval     time.Duration
	PollMaxAttempts  int
	AllowSkipWaiting bool
}

const (
	msgValidating = "Validating code..."
	msgReady      = "Code verified. Connect a wallet and complete verification to claim."
	msgSubmitting = "Submitting claim..."
	msgPending    = "Claim accepted. Waiting for on-chain confirmation..."
	msgSuccess    = "Transfer confirmed."
	msgSkipped    = "Skipped waiting for confirmation."
	msgTxFailed   = "The transaction failed on chain."
)

// Flow is the state machine of one redemption attempt. All state is guarded by mu;
// poller callbacks and caller methods serialize on it.
type Flow struct {
	id    string
	token dc.Token
	owner int64
	deps  Deps
	opts  FlowOptions
	log   zerolog.Logger

	mu         sync.Mutex
	phase      dc.Phase
	message    string
	errCode    apperrors.ErrorCode
	address    dw.CanonicalAddress
	hasAddress bool
	chain      dw.Chain
	proof      string
	submitted  bool
	record     dc.Record
	tx         *dc.TxStatus
	cancelPoll func()
	closed     bool
	subs       map[int]chan dc.Snapshot
	nextSub    int
	updatedAt  time.Time
	touchedAt  time.Time
}

// NewFlow creates a flow in the loading phase. Call Start to run the preflight.
func NewFlow(id string, token dc.Token, deps Deps, opts FlowOptions) *Flow {
	now := time.Now()
	return &Flow{
		id:        id,
		token:     token,
		deps:      deps,
		opts:      opts,
		log:       deps.Log.With().Str("component", "flow").Str("flow_id", id).Logger(),
		phase:     dc.PhaseLoading,
		message:   msgValidating,
		subs:      make(map[int]chan dc.Snapshot),
		updatedAt: now,
		touchedAt: now,
	}
}

func (f *Flow) ID() string { return f.id }

// Owner is the user the flow was created for, 0 when unauthenticated.
func (f *Flow) Owner() int64 { return f.owner }

// Start runs the token preflight: loading → idle, or loading → error.
func (f *Flow) Start(ctx context.Context) (err error) {
	defer f.guard(&err)

	if err := f.withLock(func() error {
		if f.closed {
			return ErrClosed
		}
		if f.phase != dc.PhaseLoading {
			return ErrNotReady
		}
		return nil
	}); err != nil {
		return err
	}

	verr := f.deps.Preflight.Validate(ctx, f.token)

	return f.withLock(func() error {
		if f.closed || f.phase != dc.PhaseLoading {
			return ErrClosed
		}
		if verr != nil {
			f.fail(verr)
			return verr
		}
		f.transition(dc.PhaseIdle, msgReady)
		return nil
	})
}

// SetIdentity recomputes the destination from the user's accounts. A nil identity means
// the user logged out. Only allowed before submission.
func (f *Flow) SetIdentity(id *dw.Identity) (err error) {
	defer f.guard(&err)
	return f.withLock(func() error {
		if err := f.editable(); err != nil {
			return err
		}
		ca, ok, rerr := wallet.ResolveIdentity(id)
		f.address, f.hasAddress = ca, ok && rerr == nil
		f.chain = wallet.DefaultChain(ca.Family)
		f.changed()
		return nil
	})
}

// SetProof stores the human-verification proof.
func (f *Flow) SetProof(proof string) (err error) {
	defer f.guard(&err)
	return f.withLock(func() error {
		if err := f.editable(); err != nil {
			return err
		}
		f.proof = proof
		f.changed()
		return nil
	})
}

// SelectChain picks one of the networks offered for the resolved family.
func (f *Flow) SelectChain(chain dw.Chain) (err error) {
	defer f.guard(&err)
	return f.withLock(func() error {
		if err := f.editable(); err != nil {
			return err
		}
		if !wallet.Supports(f.address.Family, chain) {
			return apperrors.NewValidationError("chain", fmt.Sprintf("%q is not offered for this wallet", chain))
		}
		f.chain = chain
		f.changed()
		return nil
	})
}

// SubmitClaim sends the claim once: idle → submitting → pending_confirmation, or → error.
// Missing proof or wallet is reported without leaving idle.
func (f *Flow) SubmitClaim(ctx context.Context) (err error) {
	defer f.guard(&err)

	var req dc.Request
	if err := f.withLock(func() error {
		switch {
		case f.closed:
			return ErrClosed
		case f.submitted:
			return ErrAlreadySubmitted
		case f.phase != dc.PhaseIdle:
			return ErrNotReady
		}
		req = dc.Request{Token: f.token, Address: f.address.Address, Chain: f.chain.String(), Proof: f.proof}
		if err := CheckRequest(req); err != nil {
			return err
		}
		if !f.hasAddress || f.address.Family == dw.FamilyUnknown || f.chain == "" {
			return apperrors.NewMissingWalletError().WithDetail("family", string(f.address.Family))
		}
		f.submitted = true
		f.transition(dc.PhaseSubmitting, msgSubmitting)
		return nil
	}); err != nil {
		return err
	}

	rec, serr := f.deps.Submitter.Submit(ctx, req)

	return f.withLock(func() error {
		if f.closed {
			return ErrClosed
		}
		if serr != nil {
			f.fail(serr)
			return serr
		}
		if rec.ChildTokens == nil {
			rec.ChildTokens = []string{}
		}
		f.record = rec
		f.transition(dc.PhasePendingConfirmation, msgPending)
		f.cancelPoll = f.deps.Poller.Start(rec.ClaimID, poller.Options{
			OnUpdate:    f.onUpdate,
			OnComplete:  f.onComplete,
			OnError:     f.onPollError,
			Interval:    f.opts.PollInterval,
			MaxAttempts: f.opts.PollMaxAttempts,
		})
		return nil
	})
}

// SkipWaiting is a debug action: it stops polling and marks a pending claim successful.
func (f *Flow) SkipWaiting() (err error) {
	defer f.guard(&err)
	if !f.opts.AllowSkipWaiting {
		return ErrSkipDisabled
	}

	var cancel func()
	if err := f.withLock(func() error {
		if f.closed {
			return ErrClosed
		}
		if f.phase != dc.PhasePendingConfirmation {
			return ErrNotReady
		}
		cancel, f.cancelPoll = f.cancelPoll, nil
		return nil
	}); err != nil {
		return err
	}
	if cancel != nil {
		cancel()
	}

	return f.withLock(func() error {
		if f.closed {
			return ErrClosed
		}
		if f.phase != dc.PhasePendingConfirmation {
			return ErrNotReady
		}
		f.log.Warn().Msg("Confirmation wait skipped")
		f.transition(dc.PhaseSuccess, msgSkipped)
		return nil
	})
}

// Teardown stops polling and detaches subscribers. Later callbacks are ignored. Idempotent.
func (f *Flow) Teardown() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	cancel := f.cancelPoll
	f.cancelPoll = nil
	for id, ch := range f.subs {
		close(ch)
		delete(f.subs, id)
	}
	f.mu.Unlock()

	// The flow lock is released first: poller callbacks take it while holding the run lock.
	if cancel != nil {
		cancel()
	}
	f.log.Debug().Msg("Flow torn down")
}

// Snapshot returns the current view state.
func (f *Flow) Snapshot() dc.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot()
}

// Subscribe returns a channel that receives the current snapshot and then one after every
// change. Slow readers only see the latest state. The channel is closed by unsubscribe or Teardown.
func (f *Flow) Subscribe() (<-chan dc.Snapshot, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan dc.Snapshot, 1)
	ch <- f.snapshot()
	if f.closed {
		close(ch)
		return ch, func() {}
	}
	id := f.nextSub
	f.nextSub++
	f.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if c, ok := f.subs[id]; ok {
				close(c)
				delete(f.subs, id)
			}
		})
	}
}

// IdleSince is the last time a caller or the poller touched the flow.
func (f *Flow) IdleSince() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.touchedAt
}

// Record returns the ledger's claim record once the claim was accepted.
func (f *Flow) Record() (dc.Record, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.record.ClaimID == "" {
		return dc.Record{}, false
	}
	return dc.Record{ClaimID: f.record.ClaimID, ChildTokens: append([]string{}, f.record.ChildTokens...)}, true
}

func (f *Flow) onUpdate(st dc.TxStatus) {
	f.callback(func() {
		if f.closed || f.phase != dc.PhasePendingConfirmation {
			return
		}
		f.tx = &st
		f.changed()
	})
}

func (f *Flow) onComplete(st dc.TxStatus) {
	f.callback(func() {
		if f.closed || f.phase != dc.PhasePendingConfirmation {
			return
		}
		f.tx = &st
		f.cancelPoll = nil
		if st.Status == dc.TxSuccess {
			f.transition(dc.PhaseSuccess, msgSuccess)
			return
		}
		f.fail(apperrors.NewClaimRejectedError(orDefault(st.Error, msgTxFailed)).WithDetail("tx_status", string(st.Status)))
	})
}

func (f *Flow) onPollError(err error) {
	f.callback(func() {
		if f.closed || f.phase != dc.PhasePendingConfirmation {
			return
		}
		f.cancelPoll = nil
		f.fail(err)
	})
}

// callback runs fn under the flow lock and turns a panic into the error phase.
func (f *Flow) callback(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	defer func() {
		if rec := recover(); rec != nil {
			f.log.Error().Interface("panic", rec).Msg("Flow callback panicked")
			if !f.phase.Terminal() {
				f.fail(apperrors.New(apperrors.ErrCodeInternal, apperrors.FallbackMessage))
			}
		}
	}()
	f.touchedAt = time.Now()
	fn()
}

// guard converts a panic in a caller-facing method into the error phase. It must be
// deferred before any lock is taken.
func (f *Flow) guard(errp *error) {
	rec := recover()
	if rec == nil {
		return
	}
	f.log.Error().Interface("panic", rec).Msg("Flow transition panicked")
	appErr := apperrors.New(apperrors.ErrCodeInternal, apperrors.FallbackMessage).
		WithDetail("panic", fmt.Sprint(rec))
	f.mu.Lock()
	if !f.phase.Terminal() {
		f.fail(appErr)
	}
	f.mu.Unlock()
	*errp = appErr
}

func (f *Flow) withLock(fn func() error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touchedAt = time.Now()
	return fn()
}

func (f *Flow) editable() error {
	switch {
	case f.closed:
		return ErrClosed
	case f.submitted:
		return ErrAlreadySubmitted
	case f.phase.Terminal():
		return ErrNotReady
	}
	return nil
}

// fail moves to the error phase. The message shown is always UserMessage(err).
func (f *Flow) fail(err error) {
	f.errCode = apperrors.CodeOf(err)
	f.transition(dc.PhaseError, apperrors.UserMessage(err))
}

func (f *Flow) transition(to dc.Phase, message string) {
	from := f.phase
	f.phase = to
	f.message = message
	if to != dc.PhaseError {
		f.errCode = ""
	}
	f.log.Info().Str("from", string(from)).Str("to", string(to)).Msg("Flow transition")
	if to.Terminal() {
		metrics.FlowFinished(string(to), string(f.errCode))
	}
	f.changed()
}

func (f *Flow) changed() {
	f.updatedAt = time.Now()
	if len(f.subs) == 0 {
		return
	}
	snap := f.snapshot()
	for _, ch := range f.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

func (f *Flow) snapshot() dc.Snapshot {
	snap := dc.Snapshot{
		ID:          f.id,
		Token:       f.token,
		Phase:       f.phase,
		Message:     f.message,
		ErrorCode:   string(f.errCode),
		HasProof:    f.proof != "",
		ClaimID:     f.record.ClaimID,
		ChildTokens: append([]string{}, f.record.ChildTokens...),
		UpdatedAt:   f.updatedAt,
	}
	if f.hasAddress {
		snap.Address = f.address.Address
		snap.Family = string(f.address.Family)
		snap.Chain = f.chain.String()
		for _, c := range wallet.Networks(f.address.Family) {
			snap.Networks = append(snap.Networks, c.String())
		}
	}
	if f.tx != nil {
		tx := *f.tx
		snap.Tx = &tx
	}
	return snap
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
