package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yndnr/snapshot-merger/internal/core/domain"
)

func key(b byte) domain.Pubkey {
	var p domain.Pubkey
	p[0] = b
	p[31] = 0xAA
	return p
}

var ownerGeneral = key(200)

func account(addr domain.Pubkey, owner domain.Pubkey, lamports uint64, data ...byte) *domain.Account {
	return &domain.Account{
		Address:   addr,
		Lamports:  lamports,
		Owner:     owner,
		RentEpoch: 361,
		Data:      data,
	}
}

// storeOf builds a store whose recorded capitalization matches its balances.
func storeOf(t *testing.T, slot uint64, accounts ...*domain.Account) *domain.Store {
	t.Helper()
	s := domain.NewStore(slot, 0)
	for _, a := range accounts {
		require.NoError(t, s.Insert(a))
	}
	sum, err := s.LamportsSum()
	require.NoError(t, err)
	return s.WithCapitalization(sum)
}
