package service

import (
	"github.com/yndnr/snapshot-merger/internal/core/domain"
)

// Warp advances store to slot. Moving backwards fails with
// ErrInvalidWarpTarget; warping to the current slot is a no-op.
func Warp(store *domain.Store, slot uint64) (*domain.Store, error) {
	if slot < store.Slot() {
		return nil, domain.ErrInvalidWarpTarget.
			WithDetailsf("current slot %d, requested %d", store.Slot(), slot)
	}
	if slot == store.Slot() {
		return store, nil
	}
	return store.WithSlot(slot), nil
}
