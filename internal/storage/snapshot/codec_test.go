package snapshot

import (
	"bytes"
	"testing"

	"github.com/yndnr/snapshot-merger/internal/core/domain"
)

func testKey(b byte) domain.Pubkey {
	var p domain.Pubkey
	p[0] = b
	p[31] = 0x33
	return p
}

func testAccount(b byte, lamports uint64, dataLen int) *domain.Account {
	return &domain.Account{
		Address:   testKey(b),
		Lamports:  lamports,
		Owner:     domain.SystemProgramID,
		RentEpoch: 18,
		Data:      bytes.Repeat([]byte{b}, dataLen),
	}
}

func TestStoredSize(t *testing.T) {
	tests := []struct {
		dataLen int
		want    uint64
	}{
		{0, 96},
		{1, 104},
		{8, 104},
		{9, 112},
		{165, 96 + 168},
	}
	for _, tt := range tests {
		if got := StoredSize(testAccount(1, 0, tt.dataLen)); got != tt.want {
			t.Errorf("StoredSize(data=%d) = %d, want %d", tt.dataLen, got, tt.want)
		}
	}
}

func TestEncodeDecodeRecords(t *testing.T) {
	accounts := []*domain.Account{
		testAccount(1, 10, 0),
		testAccount(2, 20, 3),
		testAccount(3, 30, 16),
	}
	accounts[2].Executable = true
	accounts[2].Owner = domain.VoteProgramID

	var buf bytes.Buffer
	var want uint64
	for _, a := range accounts {
		if err := EncodeRecord(&buf, a); err != nil {
			t.Fatal(err)
		}
		want += StoredSize(a)
	}
	if uint64(buf.Len()) != want {
		t.Fatalf("encoded %d bytes, StoredSize says %d", buf.Len(), want)
	}

	var got []*domain.Account
	if err := DecodeRecords(&buf, func(a *domain.Account) error {
		got = append(got, a)
		return nil
	}); err != nil {
		t.Fatalf("DecodeRecords() error = %v", err)
	}
	if len(got) != len(accounts) {
		t.Fatalf("decoded %d records, want %d", len(got), len(accounts))
	}
	for i := range accounts {
		if !got[i].Equal(accounts[i]) {
			t.Errorf("record %d = %+v, want %+v", i, got[i], accounts[i])
		}
	}
}

func TestDecodeRecords_Truncated(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeRecord(&buf, testAccount(1, 1, 20)); err != nil {
		t.Fatal(err)
	}
	truncated := buf.Bytes()[:buf.Len()-5]

	err := DecodeRecords(bytes.NewReader(truncated), func(*domain.Account) error { return nil })
	if err == nil {
		t.Fatal("expected error for truncated record")
	}
}
