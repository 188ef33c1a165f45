package wallet

import (
	"errors"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/ethereum/go-ethereum/common"
	"github.com/xssnick/tonutils-go/address"

	dw "passit-client/internal/domain/wallet"
)

// ErrNotAuthenticated is returned when there is no identity at all.
var ErrNotAuthenticated = errors.New("not_authenticated")

const solanaPubkeyLen = 32

// Resolve picks the canonical destination from a list of tagged accounts.
// Priority: linked solana, linked evm, embedded (family inferred when untagged).
// ok is false when no account carries a usable address.
func Resolve(accounts []dw.Account) (dw.CanonicalAddress, bool) {
	if acc, ok := firstLinked(accounts, dw.FamilySolana); ok {
		return dw.CanonicalAddress{Address: acc.Address, Family: dw.FamilySolana}, true
	}
	if acc, ok := firstLinked(accounts, dw.FamilyEVM); ok {
		return dw.CanonicalAddress{Address: acc.Address, Family: dw.FamilyEVM}, true
	}
	for _, acc := range accounts {
		addr := strings.TrimSpace(acc.Address)
		if acc.Kind != dw.KindEmbedded || addr == "" {
			continue
		}
		family := acc.Family
		if family == "" || family == dw.FamilyUnknown {
			family = Classify(addr)
		}
		return dw.CanonicalAddress{Address: addr, Family: family}, true
	}
	return dw.CanonicalAddress{}, false
}

// ResolveIdentity is Resolve over an optional identity.
// A nil identity yields ErrNotAuthenticated, which is distinct from ok == false.
func ResolveIdentity(id *dw.Identity) (dw.CanonicalAddress, bool, error) {
	if id == nil {
		return dw.CanonicalAddress{}, false, ErrNotAuthenticated
	}
	ca, ok := Resolve(id.Accounts)
	return ca, ok, nil
}

func firstLinked(accounts []dw.Account, family dw.Family) (dw.Account, bool) {
	for _, acc := range accounts {
		if acc.Kind != dw.KindLinked || acc.Family != family {
			continue
		}
		if addr := strings.TrimSpace(acc.Address); addr != "" {
			acc.Address = addr
			return acc, true
		}
	}
	return dw.Account{}, false
}

// Classify infers the chain family from an address string.
func Classify(addr string) dw.Family {
	addr = strings.TrimSpace(addr)
	switch {
	case addr == "":
		return dw.FamilyUnknown
	case (strings.HasPrefix(addr, "0x") || strings.HasPrefix(addr, "0X")) && common.IsHexAddress(addr):
		return dw.FamilyEVM
	case IsTONAddress(addr):
		// Recognised, but the ledger pays out on solana and evm networks only.
		return dw.FamilyUnknown
	case len(base58.Decode(addr)) == solanaPubkeyLen:
		return dw.FamilySolana
	default:
		return dw.FamilyUnknown
	}
}

// IsTONAddress reports whether addr is a TON address in user-friendly or raw form.
func IsTONAddress(addr string) bool {
	if _, err := address.ParseAddr(addr); err == nil {
		return true
	}
	if strings.Contains(addr, ":") {
		if _, err := address.ParseRawAddr(addr); err == nil {
			return true
		}
	}
	return false
}

// Networks lists the chains offered for a family, default first.
func Networks(family dw.Family) []dw.Chain {
	switch family {
	case dw.FamilySolana:
		return []dw.Chain{dw.ChainSolana}
	case dw.FamilyEVM:
		return []dw.Chain{dw.ChainBase, dw.ChainEthereum, dw.ChainBNB}
	default:
		return nil
	}
}

// DefaultChain returns the preselected chain for a family, or "" when none is offered.
func DefaultChain(family dw.Family) dw.Chain {
	if nets := Networks(family); len(nets) > 0 {
		return nets[0]
	}
	return ""
}

// Supports reports whether chain is offered for family.
func Supports(family dw.Family, chain dw.Chain) bool {
	for _, c := range Networks(family) {
		if c == chain {
			return true
		}
	}
	return false
}

// ShortAddress renders 0x1234...abcd style abbreviations for logs and views.
func ShortAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}
