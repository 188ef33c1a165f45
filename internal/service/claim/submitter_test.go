package claim

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "passit-client/internal/common/errors"
	dc "passit-client/internal/domain/claim"
)

type countingLedger struct {
	calls int
	rec   dc.Record
	err   error
}

func (l *countingLedger) SubmitClaim(_ context.Context, _ dc.Request) (dc.Record, error) {
	l.calls++
	return l.rec, l.err
}

func TestSubmitPreconditions(t *testing.T) {
	cases := []struct {
		name string
		req  dc.Request
		code apperrors.ErrorCode
	}{
		{"missing proof", dc.Request{Token: "T", Address: solAddr, Chain: "solana"}, apperrors.ErrCodeMissingProof},
		{"blank proof", dc.Request{Token: "T", Address: solAddr, Chain: "solana", Proof: "  "}, apperrors.ErrCodeMissingProof},
		{"missing address", dc.Request{Token: "T", Chain: "solana", Proof: "p"}, apperrors.ErrCodeMissingWallet},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := &countingLedger{}
			_, err := NewSubmitter(l, zerolog.Nop()).Submit(context.Background(), tc.req)
			assert.Equal(t, tc.code, apperrors.CodeOf(err))
			assert.Zero(t, l.calls)
		})
	}
}

func TestSubmitSendsOnce(t *testing.T) {
	l := &countingLedger{rec: dc.Record{ClaimID: "c1"}}
	rec, err := NewSubmitter(l, zerolog.Nop()).Submit(context.Background(),
		dc.Request{Token: "T", Address: solAddr, Chain: "solana", Proof: "p"})
	require.NoError(t, err)
	assert.Equal(t, 1, l.calls)
	assert.Equal(t, "c1", rec.ClaimID)
	assert.NotNil(t, rec.ChildTokens)
}

func TestSubmitDoesNotRetry(t *testing.T) {
	l := &countingLedger{err: errors.New("connection refused")}
	_, err := NewSubmitter(l, zerolog.Nop()).Submit(context.Background(),
		dc.Request{Token: "T", Address: solAddr, Chain: "solana", Proof: "p"})
	assert.Equal(t, apperrors.ErrCodeTransport, apperrors.CodeOf(err))
	assert.Equal(t, 1, l.calls)

	l = &countingLedger{err: apperrors.NewClaimRejectedError("Captcha failed")}
	_, err = NewSubmitter(l, zerolog.Nop()).Submit(context.Background(),
		dc.Request{Token: "T", Address: solAddr, Chain: "solana", Proof: "p"})
	assert.Equal(t, "Captcha failed", apperrors.UserMessage(err))
	assert.Equal(t, 1, l.calls)
}
