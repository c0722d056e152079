package domain

import (
	"fmt"
	"math/bits"
	"slices"
)

// Store holds one ledger's accounts together with its slot and the
// capitalization recorded for it.
//
// Insert is not safe for concurrent use. Once built, a Store is only read,
// and concurrent readers are safe. Transforms (WithSlot, WithCapitalization)
// return new Store values that share the account map.
type Store struct {
	slot           uint64
	capitalization uint64
	accounts       map[Pubkey]*Account
}

// NewStore creates an empty store.
func NewStore(slot, capitalization uint64) *Store {
	return NewStoreWithCapacity(slot, capitalization, 0)
}

// NewStoreWithCapacity creates an empty store sized for n accounts.
func NewStoreWithCapacity(slot, capitalization uint64, n int) *Store {
	return &Store{
		slot:           slot,
		capitalization: capitalization,
		accounts:       make(map[Pubkey]*Account, n),
	}
}

// Insert adds an account. The store keeps the pointer; callers that share
// the account elsewhere must pass a Clone.
func (s *Store) Insert(a *Account) error {
	if _, ok := s.accounts[a.Address]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateAddress, a.Address)
	}
	s.accounts[a.Address] = a
	return nil
}

// Get returns the account at addr.
func (s *Store) Get(addr Pubkey) (*Account, bool) {
	a, ok := s.accounts[addr]
	return a, ok
}

// Has reports whether addr is present.
func (s *Store) Has(addr Pubkey) bool {
	_, ok := s.accounts[addr]
	return ok
}

// Len returns the number of accounts.
func (s *Store) Len() int {
	return len(s.accounts)
}

// Slot returns the store's slot.
func (s *Store) Slot() uint64 {
	return s.slot
}

// Capitalization returns the recorded capitalization. It is only
// trustworthy after verification.
func (s *Store) Capitalization() uint64 {
	return s.capitalization
}

// WithSlot returns a store with the same accounts at a different slot.
func (s *Store) WithSlot(slot uint64) *Store {
	return &Store{slot: slot, capitalization: s.capitalization, accounts: s.accounts}
}

// WithCapitalization returns a store with the same accounts and a new
// recorded capitalization.
func (s *Store) WithCapitalization(capitalization uint64) *Store {
	return &Store{slot: s.slot, capitalization: capitalization, accounts: s.accounts}
}

// Addresses returns all addresses in ascending byte order.
func (s *Store) Addresses() []Pubkey {
	keys := make([]Pubkey, 0, len(s.accounts))
	for k := range s.accounts {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, Pubkey.Compare)
	return keys
}

// Accounts returns all accounts in ascending address order.
func (s *Store) Accounts() []*Account {
	keys := s.Addresses()
	out := make([]*Account, len(keys))
	for i, k := range keys {
		out[i] = s.accounts[k]
	}
	return out
}

// Range calls fn for every account in ascending address order until fn
// returns false.
func (s *Store) Range(fn func(a *Account) bool) {
	for _, k := range s.Addresses() {
		if !fn(s.accounts[k]) {
			return
		}
	}
}

// LamportsSum returns the exact sum of all balances. It fails with
// ErrCapitalizationOverflow, naming the address at which the running sum
// overflowed, instead of wrapping.
func (s *Store) LamportsSum() (uint64, error) {
	var sum uint64
	for _, k := range s.Addresses() {
		var carry uint64
		sum, carry = bits.Add64(sum, s.accounts[k].Lamports, 0)
		if carry != 0 {
			return 0, ErrCapitalizationOverflow.WithDetailsf("running sum overflowed at account %s (%d lamports)", k, s.accounts[k].Lamports)
		}
	}
	return sum, nil
}
