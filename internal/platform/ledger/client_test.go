package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "passit-client/internal/common/errors"
	"passit-client/internal/domain/claim"
	"passit-client/internal/domain/profile"
	"passit-client/internal/platform/ledger/ledgertest"
)

func newClient(t *testing.T) (*Client, *ledgertest.Server) {
	t.Helper()
	srv := ledgertest.New(t)
	return New(srv.URL, 2*time.Second, zerolog.Nop()), srv
}

func TestValidateToken(t *testing.T) {
	c, srv := newClient(t)
	srv.AddTokens("T1")
	ctx := context.Background()

	require.NoError(t, c.ValidateToken(ctx, "T1"))

	err := c.ValidateToken(ctx, "nope")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidToken, apperrors.CodeOf(err))
	assert.Equal(t, "Token not found", apperrors.UserMessage(err))
}

func TestValidateTokenWithReservedCharacters(t *testing.T) {
	c, srv := newClient(t)
	srv.AddTokens("a b+c", "x%2Fy")
	ctx := context.Background()

	require.NotPanics(t, func() {
		assert.NoError(t, c.ValidateToken(ctx, "a b+c"))
	})
	assert.NoError(t, c.ValidateToken(ctx, "x%2Fy"))
	assert.Equal(t, 2, srv.Calls(ledgertest.RouteValidate))
}

func TestValidateTokenServerError(t *testing.T) {
	c, srv := newClient(t)
	srv.Stub(ledgertest.RouteValidate, http.StatusBadGateway, gin.H{"error": "upstream down"})

	err := c.ValidateToken(context.Background(), "T1")
	assert.Equal(t, apperrors.ErrCodeTransport, apperrors.CodeOf(err))
}

func TestValidateTokenObjectErrorIsNeverRenderedRaw(t *testing.T) {
	c, srv := newClient(t)
	srv.Stub(ledgertest.RouteValidate, http.StatusBadRequest, gin.H{"error": gin.H{"code": 7}})

	err := c.ValidateToken(context.Background(), "T1")
	assert.Equal(t, apperrors.ErrCodeInvalidToken, apperrors.CodeOf(err))
	msg := apperrors.UserMessage(err)
	assert.NotContains(t, msg, "[object")
	assert.NotContains(t, msg, "{")
}

func TestSubmitClaim(t *testing.T) {
	c, srv := newClient(t)
	srv.AddTokens("T1")
	srv.SetNewTokens("a", gin.H{"token": "b"}, 42, true, gin.H{"id": 1})

	rec, err := c.SubmitClaim(context.Background(), claim.Request{
		Token: "T1", Address: "So11111111111111111111111111111111111111112", Chain: "solana", Proof: "p",
	})
	require.NoError(t, err)
	assert.Equal(t, "claim-1", rec.ClaimID)
	assert.Equal(t, []string{"a", "b", "42", "true", `{"id":1}`}, rec.ChildTokens)

	got := srv.Claims()
	require.Len(t, got, 1)
	assert.Equal(t, "solana", got[0].Chain)
	assert.Equal(t, "p", got[0].Proof)
}

func TestSubmitClaimErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   interface{}
		code   apperrors.ErrorCode
		msg    string
	}{
		{"consumed token", http.StatusGone, gin.H{"error": "Token already used"}, apperrors.ErrCodeInvalidToken, "Token already used"},
		{"rejected", http.StatusBadRequest, gin.H{"error": "Captcha failed"}, apperrors.ErrCodeClaimRejected, "Captcha failed"},
		{"nested message", http.StatusForbidden, gin.H{"error": gin.H{"message": "Blocked"}}, apperrors.ErrCodeClaimRejected, "Blocked"},
		{"success false", http.StatusOK, gin.H{"success": false, "error": "Out of stock"}, apperrors.ErrCodeClaimRejected, "Out of stock"},
		{"server error", http.StatusInternalServerError, gin.H{"error": "boom"}, apperrors.ErrCodeTransport, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, srv := newClient(t)
			srv.Stub(ledgertest.RouteClaim, tc.status, tc.body)

			_, err := c.SubmitClaim(context.Background(), claim.Request{Token: "T1", Address: "x", Proof: "p"})
			require.Error(t, err)
			assert.Equal(t, tc.code, apperrors.CodeOf(err))
			if tc.msg != "" {
				assert.Equal(t, tc.msg, apperrors.UserMessage(err))
			}
		})
	}
}

func TestStubbedClaimIsStillRecorded(t *testing.T) {
	c, srv := newClient(t)
	srv.Stub(ledgertest.RouteClaim, http.StatusOK, gin.H{"success": true, "claimId": "c9", "newTokens": []string{}})

	rec, err := c.SubmitClaim(context.Background(), claim.Request{Token: "T1", Address: "addr", Chain: "base", Proof: "p"})
	require.NoError(t, err)
	assert.Equal(t, "c9", rec.ClaimID)
	assert.Equal(t, []claim.Request{{Token: "T1", Address: "addr", Chain: "base", Proof: "p"}}, srv.Claims())
}

func TestSubmitClaimNetworkFailure(t *testing.T) {
	c, srv := newClient(t)
	srv.Close()

	_, err := c.SubmitClaim(context.Background(), claim.Request{Token: "T1", Address: "x", Proof: "p"})
	assert.Equal(t, apperrors.ErrCodeTransport, apperrors.CodeOf(err))
}

func TestClaimStatus(t *testing.T) {
	c, srv := newClient(t)
	srv.ScriptStatus("c1",
		claim.TxStatus{Status: claim.TxPending},
		claim.TxStatus{Status: claim.TxSuccess, TxHash: "0xabc", ExplorerLink: "https://explorer/tx/0xabc"},
	)
	ctx := context.Background()

	st, err := c.ClaimStatus(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, claim.TxPending, st.Status)
	assert.Equal(t, "c1", st.ClaimID)

	st, err = c.ClaimStatus(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, claim.TxSuccess, st.Status)
	assert.Equal(t, "0xabc", st.TxHash)
}

func TestClaimStatusUnknownState(t *testing.T) {
	c, srv := newClient(t)
	srv.ScriptStatus("c1", claim.TxStatus{Status: "weird"})

	_, err := c.ClaimStatus(context.Background(), "c1")
	assert.Equal(t, apperrors.ErrCodeTransport, apperrors.CodeOf(err))
}

func TestClaimStatusHonoursContext(t *testing.T) {
	c, srv := newClient(t)
	srv.Delay(ledgertest.RouteStatus, time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := c.ClaimStatus(ctx, "c1")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}

func TestProfileAndLeaderboard(t *testing.T) {
	c, srv := newClient(t)
	board := []profile.Entry{{Address: "A", Points: 30}, {Address: "B", Points: 10}}
	srv.SetLeaderboard(board...)
	srv.SetProfile("A", profile.Profile{Rank: 1, Points: 30, ActiveTokens: []string{"x1"}})
	ctx := context.Background()

	p, err := c.Profile(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "A", p.Address)
	assert.Equal(t, 1, p.Rank)
	assert.Equal(t, []string{"x1"}, p.ActiveTokens)
	assert.Equal(t, board, p.Leaderboard)

	_, err = c.Profile(ctx, "missing")
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.CodeOf(err))

	entries, err := c.Leaderboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, board, entries)
}

func TestNormalizeToken(t *testing.T) {
	cases := map[string]string{
		`"abc"`:                 "abc",
		`{"token":"xyz","n":1}`: "xyz",
		`{"code": "q", "n": 2}`: `{"code":"q","n":2}`,
		`12`:                    "12",
		`false`:                 "false",
		`null`:                  "",
		`[1, 2]`:                "[1,2]",
		`{"token": 5}`:          `{"token":5}`,
	}
	for raw, want := range cases {
		assert.Equal(t, want, NormalizeToken(json.RawMessage(raw)), raw)
	}
}
