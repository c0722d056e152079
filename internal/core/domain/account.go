package domain

import "bytes"

// Account is a single on-chain account record.
type Account struct {
	Address    Pubkey `json:"address"`
	Lamports   uint64 `json:"lamports"`
	Owner      Pubkey `json:"owner"`
	Executable bool   `json:"executable"`
	RentEpoch  uint64 `json:"rent_epoch"`
	Data       []byte `json:"data"`
}

// Clone returns a deep copy, so the copy never aliases the original's data.
func (a *Account) Clone() *Account {
	out := *a
	if a.Data != nil {
		out.Data = append([]byte(nil), a.Data...)
	}
	return &out
}

// Equal reports whether two accounts are byte-identical.
func (a *Account) Equal(b *Account) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Address == b.Address &&
		a.Lamports == b.Lamports &&
		a.Owner == b.Owner &&
		a.Executable == b.Executable &&
		a.RentEpoch == b.RentEpoch &&
		bytes.Equal(a.Data, b.Data)
}
