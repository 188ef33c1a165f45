package wallet

// Family is the category of destination network. It governs address format and offered chains.
type Family string

const (
	FamilySolana  Family = "solana" // account-model family, preferred
	FamilyEVM     Family = "evm"
	FamilyUnknown Family = "unknown"
)

// Chain is a concrete destination network offered for a family.
type Chain string

const (
	ChainSolana   Chain = "solana"
	ChainBase     Chain = "base"
	ChainEthereum Chain = "ethereum"
	ChainBNB      Chain = "bnb"
)

func (c Chain) String() string {
	return string(c)
}

// AccountKind distinguishes wallets the user linked from the custodial one created on login.
type AccountKind string

const (
	KindLinked   AccountKind = "linked"
	KindEmbedded AccountKind = "embedded"
)

// Account is one address attached to an identity, tagged with its kind and family.
// Embedded accounts may arrive without a family; it is then inferred from the address.
type Account struct {
	Kind    AccountKind `json:"kind"`
	Family  Family      `json:"family,omitempty"`
	Address string      `json:"address"`
}

// Identity is the authenticated user as reported by the auth provider. Read-only to the core.
type Identity struct {
	Subject  string    `json:"subject"`
	Accounts []Account `json:"accounts"`
}

// CanonicalAddress is the single destination chosen for a claim. Derived, never stored.
type CanonicalAddress struct {
	Address string `json:"address"`
	Family  Family `json:"family"`
}
