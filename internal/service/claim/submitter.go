package claim

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	apperrors "passit-client/internal/common/errors"
	dc "passit-client/internal/domain/claim"
	"passit-client/internal/service/wallet"
)

// Submitter executes a claim against the ledger exactly once per call.
type Submitter struct {
	ledger dc.Submitter
	log    zerolog.Logger
}

func NewSubmitter(ledger dc.Submitter, log zerolog.Logger) *Submitter {
	return &Submitter{ledger: ledger, log: log.With().Str("component", "submitter").Logger()}
}

// CheckRequest verifies the local preconditions of a claim without contacting the ledger.
func CheckRequest(req dc.Request) error {
	if strings.TrimSpace(req.Proof) == "" {
		return apperrors.NewMissingProofError()
	}
	if strings.TrimSpace(req.Address) == "" {
		return apperrors.NewMissingWalletError()
	}
	return nil
}

// Submit sends req and returns the created record. The token is not re-validated and
// the request is never retried; ledger failures come back as CLAIM_REJECTED,
// INVALID_TOKEN or TRANSPORT_ERROR.
func (s *Submitter) Submit(ctx context.Context, req dc.Request) (dc.Record, error) {
	if err := CheckRequest(req); err != nil {
		return dc.Record{}, err
	}

	log := s.log.With().Str("address", wallet.ShortAddress(req.Address)).Str("chain", req.Chain).Logger()
	log.Info().Msg("Submitting claim")

	rec, err := s.ledger.SubmitClaim(ctx, req)
	if err != nil {
		if !apperrors.IsAppError(err) {
			err = apperrors.NewTransportError("claim", err)
		}
		log.Warn().Err(err).Msg("Claim failed")
		return dc.Record{}, err
	}
	if rec.ChildTokens == nil {
		rec.ChildTokens = []string{}
	}
	log.Info().Str("claim_id", rec.ClaimID).Int("child_tokens", len(rec.ChildTokens)).Msg("Claim submitted")
	return rec, nil
}
