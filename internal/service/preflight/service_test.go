package preflight

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "passit-client/internal/common/errors"
	"passit-client/internal/domain/claim"
	"passit-client/internal/platform/ledger"
	"passit-client/internal/platform/ledger/ledgertest"
)

func newService(t *testing.T) (*Service, *ledgertest.Server, *ledger.Client) {
	srv := ledgertest.New(t)
	cli := ledger.New(srv.URL, time.Second, zerolog.Nop())
	return NewService(cli, zerolog.Nop()), srv, cli
}

func TestBlankTokenFailsLocally(t *testing.T) {
	svc, srv, _ := newService(t)

	for _, tok := range []string{"", "   ", "\n"} {
		err := svc.Validate(context.Background(), tok)
		assert.Equal(t, apperrors.ErrCodeInvalidToken, apperrors.CodeOf(err))
	}
	assert.Zero(t, srv.Calls(ledgertest.RouteValidate))
}

func TestRejectionMessageComesFromServer(t *testing.T) {
	svc, srv, _ := newService(t)
	srv.Stub(ledgertest.RouteValidate, http.StatusBadRequest, gin.H{"error": "Token expired"})

	err := svc.Validate(context.Background(), "T1")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidToken, apperrors.CodeOf(err))
	assert.Equal(t, "Token expired", apperrors.UserMessage(err))
	assert.NotContains(t, apperrors.UserMessage(err), "[object Object]")
}

func TestDoubleRedemption(t *testing.T) {
	svc, srv, cli := newService(t)
	srv.AddTokens("T1")
	ctx := context.Background()

	require.NoError(t, svc.Validate(ctx, "T1"))
	_, err := cli.SubmitClaim(ctx, claim.Request{Token: "T1", Address: "addr", Chain: "solana", Proof: "p"})
	require.NoError(t, err)

	err = svc.Validate(ctx, "T1")
	assert.Equal(t, apperrors.ErrCodeInvalidToken, apperrors.CodeOf(err))
	assert.Equal(t, "Token already used", apperrors.UserMessage(err))
}

type foreignValidator struct{ err error }

func (f foreignValidator) ValidateToken(context.Context, claim.Token) error { return f.err }

func TestForeignErrorsBecomeTransport(t *testing.T) {
	svc := NewService(foreignValidator{err: errors.New("dial tcp: refused")}, zerolog.Nop())

	err := svc.Validate(context.Background(), "T1")
	assert.Equal(t, apperrors.ErrCodeTransport, apperrors.CodeOf(err))
	assert.NotContains(t, apperrors.UserMessage(err), "dial tcp")
}
