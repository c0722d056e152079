package ledger

import (
	"encoding/binary"
	"fmt"

	"github.com/yndnr/snapshot-merger/internal/core/domain"
)

var (
	accountPrefix      = []byte("a/")
	keySlot            = []byte("m/slot")
	keyCapitalization  = []byte("m/capitalization")
	keyGenesisAccounts = []byte("m/genesis_accounts")
)

// accountHeaderSize is owner(32) + lamports(8) + rent_epoch(8) + executable(1).
const accountHeaderSize = domain.PubkeySize + 8 + 8 + 1

func accountKey(addr domain.Pubkey) []byte {
	k := make([]byte, 0, len(accountPrefix)+domain.PubkeySize)
	k = append(k, accountPrefix...)
	return append(k, addr[:]...)
}

func encodeAccount(a *domain.Account) []byte {
	buf := make([]byte, accountHeaderSize+len(a.Data))
	copy(buf[0:32], a.Owner[:])
	binary.BigEndian.PutUint64(buf[32:40], a.Lamports)
	binary.BigEndian.PutUint64(buf[40:48], a.RentEpoch)
	if a.Executable {
		buf[48] = 1
	}
	copy(buf[accountHeaderSize:], a.Data)
	return buf
}

// decodeAccount decodes an account value. value must not be reused by the
// caller afterwards; Data aliases it.
func decodeAccount(key, value []byte) (*domain.Account, error) {
	if len(key) != len(accountPrefix)+domain.PubkeySize {
		return nil, fmt.Errorf("account key has %d bytes", len(key))
	}
	if len(value) < accountHeaderSize {
		return nil, fmt.Errorf("account value has %d bytes, want at least %d", len(value), accountHeaderSize)
	}
	if value[48] > 1 {
		return nil, fmt.Errorf("invalid executable flag %d", value[48])
	}

	a := &domain.Account{
		Lamports:   binary.BigEndian.Uint64(value[32:40]),
		RentEpoch:  binary.BigEndian.Uint64(value[40:48]),
		Executable: value[48] == 1,
	}
	copy(a.Address[:], key[len(accountPrefix):])
	copy(a.Owner[:], value[0:32])
	if len(value) > accountHeaderSize {
		a.Data = value[accountHeaderSize:]
	}
	return a, nil
}

func encodeUint64(v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return b[:]
}

func decodeUint64(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("want 8 bytes, got %d", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

func encodeAddresses(addrs []domain.Pubkey) []byte {
	buf := make([]byte, 0, len(addrs)*domain.PubkeySize)
	for _, a := range addrs {
		buf = append(buf, a[:]...)
	}
	return buf
}

func decodeAddresses(b []byte) ([]domain.Pubkey, error) {
	if len(b)%domain.PubkeySize != 0 {
		return nil, fmt.Errorf("address list has %d bytes, not a multiple of %d", len(b), domain.PubkeySize)
	}
	out := make([]domain.Pubkey, len(b)/domain.PubkeySize)
	for i := range out {
		copy(out[i][:], b[i*domain.PubkeySize:])
	}
	return out, nil
}
