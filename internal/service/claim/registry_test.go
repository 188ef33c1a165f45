package claim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "passit-client/internal/common/errors"
	dc "passit-client/internal/domain/claim"
	dw "passit-client/internal/domain/wallet"
	"passit-client/internal/platform/ledger/ledgertest"
)

func TestRegistryLifecycle(t *testing.T) {
	e := newEnv(t, 60)
	r := NewRegistry(e.deps, FlowOptions{}, 2, time.Minute)
	defer r.Close()

	f1, err := r.Create("T1", 0)
	require.NoError(t, err)
	_, err = r.Create("T2", 0)
	require.NoError(t, err)
	assert.NotEqual(t, "", f1.ID())
	assert.Equal(t, 2, r.Len())

	_, err = r.Create("T3", 0)
	assert.Equal(t, apperrors.ErrCodeTooManyRequests, apperrors.CodeOf(err))

	got, err := r.Get(f1.ID())
	require.NoError(t, err)
	assert.Same(t, f1, got)

	require.NoError(t, r.Remove(f1.ID()))
	_, err = r.Get(f1.ID())
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.CodeOf(err))
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.CodeOf(r.Remove(f1.ID())))
	assert.ErrorIs(t, f1.Start(context.Background()), ErrClosed)
}

func TestFlowsAreScopedToTheirOwner(t *testing.T) {
	e := newEnv(t, 60)
	r := NewRegistry(e.deps, FlowOptions{}, 10, time.Minute)
	defer r.Close()

	f, err := r.Create("T1", 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), f.Owner())

	got, err := r.GetOwned(f.ID(), 42)
	require.NoError(t, err)
	assert.Same(t, f, got)

	_, err = r.GetOwned(f.ID(), 7)
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.CodeOf(err))
	_, err = r.GetOwned(f.ID(), 0)
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.CodeOf(err))
}

func TestSweepTearsDownIdleFlows(t *testing.T) {
	e := newEnv(t, 1000)
	e.srv.AddTokens("T1")
	e.srv.ScriptStatus("claim-1", dc.TxStatus{Status: dc.TxPending})
	r := NewRegistry(e.deps, FlowOptions{PollInterval: 5 * time.Millisecond}, 10, time.Minute)
	defer r.Close()

	f, err := r.Create("T1", 0)
	require.NoError(t, err)
	require.NoError(t, f.Start(context.Background()))
	require.NoError(t, f.SetIdentity(&dw.Identity{Subject: "u", Accounts: []dw.Account{
		{Kind: dw.KindLinked, Family: dw.FamilySolana, Address: solAddr},
	}}))
	require.NoError(t, f.SetProof("p"))
	require.NoError(t, f.SubmitClaim(context.Background()))
	require.Eventually(t, func() bool { return e.srv.Calls(ledgertest.RouteStatus) > 0 }, time.Second, time.Millisecond)

	assert.Zero(t, r.Sweep(time.Now()))
	assert.Equal(t, 1, r.Sweep(time.Now().Add(2*time.Minute)))
	assert.Zero(t, r.Len())

	time.Sleep(20 * time.Millisecond)
	calls := e.srv.Calls(ledgertest.RouteStatus)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, e.srv.Calls(ledgertest.RouteStatus))
}

func TestSweeperRunsInBackground(t *testing.T) {
	e := newEnv(t, 60)
	r := NewRegistry(e.deps, FlowOptions{}, 10, time.Nanosecond)
	defer r.Close()

	_, err := r.Create("T1", 0)
	require.NoError(t, err)
	require.NoError(t, r.StartSweeper(time.Second))
	require.Eventually(t, func() bool { return r.Len() == 0 }, 3*time.Second, 10*time.Millisecond)
}
