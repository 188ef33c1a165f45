package claim

import "time"

// Token is a single-use redemption code. Its state lives only on the ledger.
type Token = string

// TxState is the ledger-reported state of a claim's on-chain transaction.
type TxState string

const (
	TxPending TxState = "pending"
	TxSuccess TxState = "success"
	TxFailed  TxState = "failed"
)

// Terminal reports whether no further polling is meaningful.
func (s TxState) Terminal() bool {
	return s != TxPending
}

// Request is one claim attempt. Built once and never mutated after submission.
type Request struct {
	Token   Token  `json:"token"`
	Address string `json:"address"`
	Chain   string `json:"chain"`
	Proof   string `json:"proof"`
}

// Record is the client's read-only copy of a ledger claim record.
type Record struct {
	ClaimID     string   `json:"claimId"`
	ChildTokens []string `json:"newTokens"`
}

// TxStatus is one snapshot of a claim's transaction status.
type TxStatus struct {
	ClaimID      string  `json:"claimId"`
	Status       TxState `json:"status"`
	TxHash       string  `json:"txHash,omitempty"`
	ExplorerLink string  `json:"explorerLink,omitempty"`
	Blockchain   string  `json:"blockchain,omitempty"`
	Error        string  `json:"error,omitempty"`
}

// Phase is the claim state machine's current state.
type Phase string

const (
	PhaseLoading             Phase = "loading"
	PhaseIdle                Phase = "idle"
	PhaseSubmitting          Phase = "submitting"
	PhasePendingConfirmation Phase = "pending_confirmation"
	PhaseSuccess             Phase = "success"
	PhaseError               Phase = "error"
)

// Terminal reports whether the flow can no longer change.
func (p Phase) Terminal() bool {
	return p == PhaseSuccess || p == PhaseError
}

// Snapshot is the view state handed to the display layer.
type Snapshot struct {
	ID          string    `json:"id"`
	Token       Token     `json:"token"`
	Phase       Phase     `json:"phase"`
	Message     string    `json:"message"`
	ErrorCode   string    `json:"error_code,omitempty"`
	Address     string    `json:"address,omitempty"`
	Family      string    `json:"family,omitempty"`
	Chain       string    `json:"chain,omitempty"`
	Networks    []string  `json:"networks,omitempty"`
	HasProof    bool      `json:"has_proof"`
	ClaimID     string    `json:"claim_id,omitempty"`
	ChildTokens []string  `json:"child_tokens"`
	Tx          *TxStatus `json:"tx,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}
