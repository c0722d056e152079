package service

import (
	"github.com/yndnr/snapshot-merger/internal/core/domain"
)

// RecomputeCapitalization returns store with its capitalization replaced by
// the exact sum of its balances. The recorded value is never reused.
func RecomputeCapitalization(store *domain.Store) (*domain.Store, error) {
	sum, err := store.LamportsSum()
	if err != nil {
		return nil, err
	}
	return store.WithCapitalization(sum), nil
}

// VerifyCapitalization checks that the capitalization recorded for an input
// store matches its balances. side names the store in the error.
func VerifyCapitalization(side string, store *domain.Store) error {
	sum, err := store.LamportsSum()
	if err != nil {
		return domain.ErrInconsistentInput.
			WithDetailsf("%s store: recorded %d, balances overflow", side, store.Capitalization()).
			WithCause(err)
	}
	if sum != store.Capitalization() {
		return domain.ErrInconsistentInput.
			WithDetailsf("%s store: recorded %d, computed %d", side, store.Capitalization(), sum)
	}
	return nil
}
