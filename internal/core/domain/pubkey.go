package domain

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
)

// PubkeySize is the width of an account address in bytes.
const PubkeySize = 32

// Pubkey is a fixed-width account address.
type Pubkey [PubkeySize]byte

// Well-known program ids.
var (
	SystemProgramID      = MustPubkey("11111111111111111111111111111111")
	VoteProgramID        = MustPubkey("Vote111111111111111111111111111111111111111")
	StakeProgramID       = MustPubkey("Stake11111111111111111111111111111111111111")
	StakeConfigProgramID = MustPubkey("StakeConfig11111111111111111111111111111111")
	SysvarOwnerID        = MustPubkey("Sysvar1111111111111111111111111111111111111")
)

// ParsePubkey decodes a base58 address.
func ParsePubkey(s string) (Pubkey, error) {
	var pk Pubkey
	raw := base58.Decode(s)
	if len(raw) != PubkeySize {
		return pk, ErrInvalidArgument.WithDetails(fmt.Sprintf("pubkey %q decodes to %d bytes, want %d", s, len(raw), PubkeySize))
	}
	copy(pk[:], raw)
	return pk, nil
}

// MustPubkey is like ParsePubkey but panics on malformed input.
// Only use it for compile-time constants.
func MustPubkey(s string) Pubkey {
	pk, err := ParsePubkey(s)
	if err != nil {
		panic(err)
	}
	return pk
}

// PubkeyFromBytes copies b into a Pubkey.
func PubkeyFromBytes(b []byte) (Pubkey, error) {
	var pk Pubkey
	if len(b) != PubkeySize {
		return pk, fmt.Errorf("pubkey: got %d bytes, want %d", len(b), PubkeySize)
	}
	copy(pk[:], b)
	return pk, nil
}

// String returns the base58 form.
func (p Pubkey) String() string {
	return base58.Encode(p[:])
}

// Compare orders addresses by raw bytes.
func (p Pubkey) Compare(other Pubkey) int {
	return bytes.Compare(p[:], other[:])
}

// IsZero reports whether p is the all-zero address.
func (p Pubkey) IsZero() bool {
	return p == Pubkey{}
}

// MarshalText implements encoding.TextMarshaler.
func (p Pubkey) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Pubkey) UnmarshalText(text []byte) error {
	pk, err := ParsePubkey(string(text))
	if err != nil {
		return err
	}
	*p = pk
	return nil
}

// AddressSet is a set of addresses.
type AddressSet map[Pubkey]struct{}

// NewAddressSet builds a set from the given addresses.
func NewAddressSet(keys ...Pubkey) AddressSet {
	s := make(AddressSet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Add inserts k.
func (s AddressSet) Add(k Pubkey) {
	s[k] = struct{}{}
}

// Has reports membership. A nil set has no members.
func (s AddressSet) Has(k Pubkey) bool {
	_, ok := s[k]
	return ok
}
