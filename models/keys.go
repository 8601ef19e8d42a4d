package models

import (
	"fmt"
	"strings"
)

// Address identifies an account on the ledger (a wallet public key or a contract id).
type Address string

func (a Address) String() string {
	return string(a)
}

// IsZero reports whether the address is empty.
func (a Address) IsZero() bool {
	return strings.TrimSpace(string(a)) == ""
}

// KeyKind discriminates the typed storage keys.
type KeyKind string

const (
	KeyChallenge          KeyKind = "challenge"
	KeyChallengeCount     KeyKind = "challenge_count"
	KeyDonation           KeyKind = "donation"
	KeyDonationCount      KeyKind = "donation_count"
	KeyRecipientDonations KeyKind = "recipient_donations"
	KeyBalance            KeyKind = "balance"
)

// DataKey is a typed key into the host key-value store. Keys are either
// singletons (counters), keyed by an integer id, or keyed by an address.
type DataKey struct {
	Kind  KeyKind
	ID    uint32
	Addr  Address
	Asset string
}

func ChallengeKey(id uint32) DataKey {
	return DataKey{Kind: KeyChallenge, ID: id}
}

func ChallengeCountKey() DataKey {
	return DataKey{Kind: KeyChallengeCount}
}

func DonationKey(id uint32) DataKey {
	return DataKey{Kind: KeyDonation, ID: id}
}

func DonationCountKey() DataKey {
	return DataKey{Kind: KeyDonationCount}
}

// RecipientDonationsKey indexes the donation ids received by an address.
func RecipientDonationsKey(recipient Address) DataKey {
	return DataKey{Kind: KeyRecipientDonations, Addr: recipient}
}

// BalanceKey is only used by the sandbox token ledger.
func BalanceKey(asset string, owner Address) DataKey {
	return DataKey{Kind: KeyBalance, Asset: asset, Addr: owner}
}

// String renders the key as stored, e.g. "challenge/7" or "donation_count".
func (k DataKey) String() string {
	switch k.Kind {
	case KeyChallenge, KeyDonation:
		return fmt.Sprintf("%s/%d", k.Kind, k.ID)
	case KeyRecipientDonations:
		return fmt.Sprintf("%s/%s", k.Kind, k.Addr)
	case KeyBalance:
		return fmt.Sprintf("%s/%s/%s", k.Kind, k.Asset, k.Addr)
	default:
		return string(k.Kind)
	}
}
