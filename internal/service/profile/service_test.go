package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rcache "passit-client/internal/cache/redis"
	apperrors "passit-client/internal/common/errors"
	"passit-client/internal/domain/profile"
	"passit-client/internal/platform/ledger"
	"passit-client/internal/platform/ledger/ledgertest"
	rplatform "passit-client/internal/platform/redis"
)

func setup(t *testing.T, cached bool) (*Service, *ledgertest.Server) {
	t.Helper()
	srv := ledgertest.New(t)
	client := ledger.New(srv.URL, time.Second, zerolog.Nop())
	if !cached {
		return NewService(client, nil, zerolog.Nop()), srv
	}

	mr := miniredis.RunT(t)
	rdb, err := rplatform.Open(context.Background(), rplatform.Options{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })
	return NewService(client, rcache.NewProfileCache(rdb, time.Minute), zerolog.Nop()), srv
}

func TestProfileUncached(t *testing.T) {
	svc, srv := setup(t, false)
	ctx := context.Background()
	srv.SetLeaderboard(profile.Entry{Address: "a", Points: 9})
	srv.SetProfile("a", profile.Profile{Rank: 1, Points: 9})

	p, err := svc.Profile(ctx, " a ")
	require.NoError(t, err)
	assert.Equal(t, "a", p.Address)
	assert.Equal(t, 1, p.Rank)
	assert.Equal(t, []string{}, p.ActiveTokens)
	assert.Equal(t, []profile.Entry{{Address: "a", Points: 9}}, p.Leaderboard)

	_, err = svc.Profile(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, srv.Calls(ledgertest.RouteProfile))
}

func TestProfileCachedHitsLedgerOnce(t *testing.T) {
	svc, srv := setup(t, true)
	ctx := context.Background()
	srv.SetProfile("a", profile.Profile{Rank: 2, Points: 40, ActiveTokens: []string{"t1"}})

	for i := 0; i < 3; i++ {
		p, err := svc.Profile(ctx, "a")
		require.NoError(t, err)
		assert.EqualValues(t, 40, p.Points)
	}
	assert.Equal(t, 1, srv.Calls(ledgertest.RouteProfile))

	svc.Forget(ctx, "a")
	_, err := svc.Profile(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, srv.Calls(ledgertest.RouteProfile))
}

func TestProfileErrors(t *testing.T) {
	svc, srv := setup(t, true)
	ctx := context.Background()

	_, err := svc.Profile(ctx, "  ")
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.CodeOf(err))
	assert.Zero(t, srv.Calls(ledgertest.RouteProfile))

	_, err = svc.Profile(ctx, "nobody")
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.CodeOf(err))

	srv.Stub(ledgertest.RouteProfile, 502, map[string]string{"error": "bad gateway"})
	_, err = svc.Profile(ctx, "nobody")
	assert.Equal(t, apperrors.ErrCodeTransport, apperrors.CodeOf(err))
}

func TestLeaderboard(t *testing.T) {
	svc, srv := setup(t, true)
	ctx := context.Background()

	entries, err := svc.Leaderboard(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// the empty board is cached as well
	srv.SetLeaderboard(profile.Entry{Address: "a", Points: 1})
	entries, err = svc.Leaderboard(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, 1, srv.Calls(ledgertest.RouteLeaderboard))
}

type brokenSource struct{}

func (brokenSource) Profile(context.Context, string) (profile.Profile, error) {
	return profile.Profile{}, errors.New("dial tcp: refused")
}

func (brokenSource) Leaderboard(context.Context) ([]profile.Entry, error) {
	return nil, errors.New("dial tcp: refused")
}

func TestForeignErrorsAreTransport(t *testing.T) {
	svc := NewService(brokenSource{}, nil, zerolog.Nop())
	_, err := svc.Leaderboard(context.Background())
	assert.Equal(t, apperrors.ErrCodeTransport, apperrors.CodeOf(err))
	assert.Equal(t, "Could not reach the ledger. Check your connection and try again.", apperrors.UserMessage(err))
}
