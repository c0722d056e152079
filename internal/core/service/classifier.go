package service

import (
	"github.com/yndnr/snapshot-merger/internal/core/domain"
)

// Exclusion reasons for source accounts dropped as validator identity state.
const (
	ReasonVote     = "vote"
	ReasonStake    = "stake"
	ReasonProgram  = "validator_program"
	ReasonDeclared = "declared"
)

// DefaultValidatorPrograms returns the programs whose accounts describe the
// validator set: the vote program and the stake program.
func DefaultValidatorPrograms() []domain.Pubkey {
	return []domain.Pubkey{domain.VoteProgramID, domain.StakeProgramID}
}

// Classifier tags accounts as ValidatorIdentity or General.
// It is immutable and safe for concurrent use.
type Classifier struct {
	programs domain.AddressSet
}

// NewClassifier creates a classifier for the given validator programs.
// An empty list selects DefaultValidatorPrograms.
func NewClassifier(programs []domain.Pubkey) *Classifier {
	if len(programs) == 0 {
		programs = DefaultValidatorPrograms()
	}
	return &Classifier{programs: domain.NewAddressSet(programs...)}
}

var defaultClassifier = NewClassifier(nil)

// Classify tags a with the default validator programs.
func Classify(a *domain.Account, declared domain.AddressSet) domain.ClassificationTag {
	return defaultClassifier.Classify(a, declared)
}

// Classify returns ValidatorIdentity when a is owned by a validator program
// or its address is in declared, and General otherwise. A nil declared set
// is treated as empty.
func (c *Classifier) Classify(a *domain.Account, declared domain.AddressSet) domain.ClassificationTag {
	if c.programs.Has(a.Owner) || declared.Has(a.Address) {
		return domain.ValidatorIdentity
	}
	return domain.General
}

// IsValidatorProgram reports whether owner is one of the classifier's programs.
func (c *Classifier) IsValidatorProgram(owner domain.Pubkey) bool {
	return c.programs.Has(owner)
}

// Reason names why a ValidatorIdentity account was tagged, for stats and metrics.
func (c *Classifier) Reason(a *domain.Account) string {
	switch {
	case a.Owner == domain.VoteProgramID && c.programs.Has(a.Owner):
		return ReasonVote
	case a.Owner == domain.StakeProgramID && c.programs.Has(a.Owner):
		return ReasonStake
	case c.programs.Has(a.Owner):
		return ReasonProgram
	default:
		return ReasonDeclared
	}
}

// DeclaredPolicy selects which target accounts, beyond validator program
// ownership, are preserved.
type DeclaredPolicy struct {
	// PreserveOwners keeps every target account owned by one of these programs.
	PreserveOwners []domain.Pubkey
	// PreserveAddresses keeps these target addresses.
	PreserveAddresses []domain.Pubkey
}

// DefaultDeclaredPolicy preserves the target's sysvar accounts.
func DefaultDeclaredPolicy() DeclaredPolicy {
	return DeclaredPolicy{
		PreserveOwners: []domain.Pubkey{domain.SysvarOwnerID},
	}
}

// DeclaredSet builds the target declared set: the target's genesis
// accounts, every target account owned by a preserved owner, and the
// explicitly preserved addresses.
func DeclaredSet(target *domain.Ledger, policy DeclaredPolicy) domain.AddressSet {
	declared := domain.NewAddressSet(target.GenesisAccounts...)
	for _, addr := range policy.PreserveAddresses {
		declared.Add(addr)
	}

	if len(policy.PreserveOwners) == 0 || target.Store == nil {
		return declared
	}
	owners := domain.NewAddressSet(policy.PreserveOwners...)
	target.Store.Range(func(a *domain.Account) bool {
		if owners.Has(a.Owner) {
			declared.Add(a.Address)
		}
		return true
	})
	return declared
}
