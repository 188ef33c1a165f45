package claim

import "context"

// Validator checks a token before any claim UI is shown.
type Validator interface {
	ValidateToken(ctx context.Context, token Token) error
}

// Submitter executes a claim on the ledger.
type Submitter interface {
	SubmitClaim(ctx context.Context, req Request) (Record, error)
}

// StatusFetcher returns the current transaction status of a claim.
type StatusFetcher interface {
	ClaimStatus(ctx context.Context, claimID string) (TxStatus, error)
}

// Ledger is the full set of ledger operations the claim core consumes.
type Ledger interface {
	Validator
	Submitter
	StatusFetcher
}
