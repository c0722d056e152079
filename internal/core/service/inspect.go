package service

import (
	"errors"

	"github.com/yndnr/snapshot-merger/internal/core/domain"
)

// LedgerSummary describes a loaded ledger.
type LedgerSummary struct {
	Dir             string `json:"dir" yaml:"dir"`
	Slot            uint64 `json:"slot" yaml:"slot"`
	Accounts        int    `json:"accounts" yaml:"accounts"`
	VoteAccounts    int    `json:"vote_accounts" yaml:"vote_accounts"`
	StakeAccounts   int    `json:"stake_accounts" yaml:"stake_accounts"`
	SystemAccounts  int    `json:"system_accounts" yaml:"system_accounts"`
	GenesisAccounts int    `json:"genesis_accounts" yaml:"genesis_accounts"`

	StoredCapitalization uint64 `json:"stored_capitalization" yaml:"stored_capitalization" table:"sol"`
	// ComputedCapitalization is nil when the balances overflow 64 bits.
	ComputedCapitalization *uint64 `json:"computed_capitalization" yaml:"computed_capitalization" table:"sol"`
	Consistent             bool    `json:"consistent" yaml:"consistent"`
}

// Summarize counts a ledger's accounts by owner and checks its recorded
// capitalization. An overflowing balance sum is reported in the summary,
// not as an error.
func Summarize(ledger *domain.Ledger) (*LedgerSummary, error) {
	if ledger == nil || ledger.Store == nil {
		return nil, domain.ErrInvalidArgument.WithDetails("nil ledger")
	}
	store := ledger.Store
	s := &LedgerSummary{
		Dir:                  ledger.Dir,
		Slot:                 store.Slot(),
		Accounts:             store.Len(),
		GenesisAccounts:      len(ledger.GenesisAccounts),
		StoredCapitalization: store.Capitalization(),
	}

	store.Range(func(a *domain.Account) bool {
		switch a.Owner {
		case domain.VoteProgramID:
			s.VoteAccounts++
		case domain.StakeProgramID:
			s.StakeAccounts++
		case domain.SystemProgramID:
			s.SystemAccounts++
		}
		return true
	})

	sum, err := store.LamportsSum()
	switch {
	case err == nil:
		s.ComputedCapitalization = &sum
		s.Consistent = sum == store.Capitalization()
	case errors.Is(err, domain.ErrCapitalizationOverflow):
	default:
		return nil, err
	}
	return s, nil
}
