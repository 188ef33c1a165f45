package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "passit-client/internal/common/errors"
	"passit-client/internal/domain/claim"
	"passit-client/internal/platform/ledger"
	"passit-client/internal/platform/ledger/ledgertest"
)

// scriptFetcher answers from a fixed sequence; the last entry repeats.
type scriptFetcher struct {
	mu    sync.Mutex
	seq   []claim.TxStatus
	err   error
	block chan struct{}
	calls int32
}

func (f *scriptFetcher) ClaimStatus(ctx context.Context, claimID string) (claim.TxStatus, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return claim.TxStatus{}, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return claim.TxStatus{}, f.err
	}
	st := f.seq[0]
	if len(f.seq) > 1 {
		f.seq = f.seq[1:]
	}
	st.ClaimID = claimID
	return st, nil
}

func (f *scriptFetcher) Calls() int {
	return int(atomic.LoadInt32(&f.calls))
}

type recorder struct {
	mu        sync.Mutex
	updates   []claim.TxStatus
	completes []claim.TxStatus
	errs      []error
	done      chan struct{}
	once      sync.Once
}

func newRecorder() *recorder {
	return &recorder{done: make(chan struct{})}
}

func (r *recorder) options(interval time.Duration, maxAttempts int) Options {
	return Options{
		OnUpdate: func(s claim.TxStatus) {
			r.mu.Lock()
			r.updates = append(r.updates, s)
			r.mu.Unlock()
		},
		OnComplete: func(s claim.TxStatus) {
			r.mu.Lock()
			r.completes = append(r.completes, s)
			r.mu.Unlock()
			r.once.Do(func() { close(r.done) })
		},
		OnError: func(err error) {
			r.mu.Lock()
			r.errs = append(r.errs, err)
			r.mu.Unlock()
			r.once.Do(func() { close(r.done) })
		},
		Interval:    interval,
		MaxAttempts: maxAttempts,
	}
}

func (r *recorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not finish")
	}
}

func (r *recorder) counts() (updates, completes, errs int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.updates), len(r.completes), len(r.errs)
}

func pending(n int) []claim.TxStatus {
	out := make([]claim.TxStatus, n)
	for i := range out {
		out[i] = claim.TxStatus{Status: claim.TxPending}
	}
	return out
}

func TestCompletesAfterPendingResponses(t *testing.T) {
	f := &scriptFetcher{seq: append(pending(4), claim.TxStatus{Status: claim.TxSuccess, TxHash: "0xabc"})}
	rec := newRecorder()

	cancel := New(f, 0, 0, zerolog.Nop()).Start("c1", rec.options(time.Millisecond, 60))
	defer cancel()
	rec.wait(t)

	// let a buggy extra tick show up
	time.Sleep(20 * time.Millisecond)
	updates, completes, errs := rec.counts()
	assert.Equal(t, 5, updates)
	assert.Equal(t, 1, completes)
	assert.Zero(t, errs)
	assert.Equal(t, "0xabc", rec.completes[0].TxHash)
	assert.Equal(t, 5, f.Calls())
}

func TestFailedStatusCompletes(t *testing.T) {
	f := &scriptFetcher{seq: []claim.TxStatus{{Status: claim.TxFailed, Error: "reverted"}}}
	rec := newRecorder()

	cancel := New(f, time.Millisecond, 5, zerolog.Nop()).Start("c1", rec.options(0, 0))
	defer cancel()
	rec.wait(t)

	_, completes, _ := rec.counts()
	require.Equal(t, 1, completes)
	assert.Equal(t, claim.TxFailed, rec.completes[0].Status)
}

func TestTimeoutAfterMaxAttempts(t *testing.T) {
	f := &scriptFetcher{seq: pending(1)}
	rec := newRecorder()

	cancel := New(f, 0, 0, zerolog.Nop()).Start("c1", rec.options(time.Millisecond, 60))
	defer cancel()
	rec.wait(t)
	time.Sleep(20 * time.Millisecond)

	updates, completes, errs := rec.counts()
	assert.Equal(t, 60, updates)
	assert.Zero(t, completes)
	require.Equal(t, 1, errs)
	assert.Equal(t, apperrors.ErrCodePollingTimeout, apperrors.CodeOf(rec.errs[0]))
	assert.Equal(t, "Polling timeout: transaction took too long to process.", apperrors.UserMessage(rec.errs[0]))
	assert.Equal(t, 60, f.Calls(), "no query after the last allowed attempt")
}

func TestTransportErrorStopsPolling(t *testing.T) {
	f := &scriptFetcher{err: errors.New("connection reset")}
	rec := newRecorder()

	cancel := New(f, 0, 0, zerolog.Nop()).Start("c1", rec.options(time.Millisecond, 10))
	defer cancel()
	rec.wait(t)
	time.Sleep(20 * time.Millisecond)

	updates, completes, errs := rec.counts()
	assert.Zero(t, updates)
	assert.Zero(t, completes)
	require.Equal(t, 1, errs)
	assert.Equal(t, apperrors.ErrCodeTransport, apperrors.CodeOf(rec.errs[0]))
	assert.Equal(t, 1, f.Calls())
}

func TestCancelDiscardsInFlightQuery(t *testing.T) {
	f := &scriptFetcher{seq: []claim.TxStatus{{Status: claim.TxSuccess}}, block: make(chan struct{})}
	rec := newRecorder()

	cancel := New(f, 0, 0, zerolog.Nop()).Start("c1", rec.options(time.Millisecond, 10))
	require.Eventually(t, func() bool { return f.Calls() == 1 }, time.Second, time.Millisecond)

	cancel()
	close(f.block)
	time.Sleep(30 * time.Millisecond)

	updates, completes, errs := rec.counts()
	assert.Zero(t, updates)
	assert.Zero(t, completes)
	assert.Zero(t, errs)
}

func TestCancelStopsFurtherQueriesAndIsIdempotent(t *testing.T) {
	f := &scriptFetcher{seq: pending(1)}
	rec := newRecorder()

	cancel := New(f, 0, 0, zerolog.Nop()).Start("c1", rec.options(10*time.Millisecond, 1000))
	require.Eventually(t, func() bool { return f.Calls() >= 2 }, time.Second, time.Millisecond)

	cancel()
	cancel()
	updatesAtCancel, _, _ := rec.counts()
	// a timer that fired together with cancel may still issue one discarded query
	time.Sleep(15 * time.Millisecond)
	callsAtCancel := f.Calls()
	time.Sleep(50 * time.Millisecond)

	updates, completes, errs := rec.counts()
	assert.Equal(t, updatesAtCancel, updates)
	assert.Zero(t, completes)
	assert.Zero(t, errs)
	assert.Equal(t, callsAtCancel, f.Calls())
}

func TestQueriesDoNotOverlap(t *testing.T) {
	var inFlight, maxInFlight int32
	f := fetcherFunc(func(ctx context.Context, id string) (claim.TxStatus, error) {
		n := atomic.AddInt32(&inFlight, 1)
		defer atomic.AddInt32(&inFlight, -1)
		for {
			m := atomic.LoadInt32(&maxInFlight)
			if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		return claim.TxStatus{Status: claim.TxPending}, nil
	})
	rec := newRecorder()

	cancel := New(f, 0, 0, zerolog.Nop()).Start("c1", rec.options(time.Millisecond, 8))
	defer cancel()
	rec.wait(t)

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxInFlight))
}

func TestCallbackPanicIsReported(t *testing.T) {
	f := &scriptFetcher{seq: pending(1)}
	rec := newRecorder()
	opts := rec.options(time.Millisecond, 10)
	opts.OnUpdate = func(claim.TxStatus) { panic("boom") }

	cancel := New(f, 0, 0, zerolog.Nop()).Start("c1", opts)
	defer cancel()
	rec.wait(t)
	time.Sleep(20 * time.Millisecond)

	_, _, errs := rec.counts()
	require.Equal(t, 1, errs)
	assert.Equal(t, apperrors.FallbackMessage, apperrors.UserMessage(rec.errs[0]))
	assert.Equal(t, 1, f.Calls())
}

type panicFetcher struct{}

func (panicFetcher) ClaimStatus(context.Context, string) (claim.TxStatus, error) {
	panic("invalid request context")
}

func TestFetcherPanicIsReported(t *testing.T) {
	rec := newRecorder()

	cancel := New(panicFetcher{}, time.Millisecond, 5, zerolog.Nop()).Start("c1", rec.options(0, 0))
	defer cancel()
	rec.wait(t)

	updates, completes, errs := rec.counts()
	assert.Zero(t, updates)
	assert.Zero(t, completes)
	require.Equal(t, 1, errs)
	assert.Equal(t, apperrors.ErrCodeTransport, apperrors.CodeOf(rec.errs[0]))
}

func TestAgainstLedgerAPI(t *testing.T) {
	srv := ledgertest.New(t)
	srv.ScriptStatus("claim-9",
		claim.TxStatus{Status: claim.TxPending},
		claim.TxStatus{Status: claim.TxPending},
		claim.TxStatus{Status: claim.TxSuccess, TxHash: "0xfeed", Blockchain: "base"},
	)
	rec := newRecorder()

	p := New(ledger.New(srv.URL, time.Second, zerolog.Nop()), time.Millisecond, 10, zerolog.Nop())
	cancel := p.Start("claim-9", rec.options(0, 0))
	defer cancel()
	rec.wait(t)

	updates, completes, _ := rec.counts()
	assert.Equal(t, 3, updates)
	require.Equal(t, 1, completes)
	assert.Equal(t, "0xfeed", rec.completes[0].TxHash)
	assert.Equal(t, 3, srv.Calls(ledgertest.RouteStatus))
}

type fetcherFunc func(ctx context.Context, claimID string) (claim.TxStatus, error)

func (f fetcherFunc) ClaimStatus(ctx context.Context, claimID string) (claim.TxStatus, error) {
	return f(ctx, claimID)
}
