package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParsePubkey_RoundTrip(t *testing.T) {
	for _, s := range []string{
		"11111111111111111111111111111111",
		"Vote111111111111111111111111111111111111111",
		"Stake11111111111111111111111111111111111111",
		"Sysvar1111111111111111111111111111111111111",
	} {
		pk, err := ParsePubkey(s)
		if err != nil {
			t.Fatalf("ParsePubkey(%q): %v", s, err)
		}
		if got := pk.String(); got != s {
			t.Errorf("String() = %q, want %q", got, s)
		}
	}
}

func TestParsePubkey_Invalid(t *testing.T) {
	for _, s := range []string{"", "abc", "0OIl"} {
		if _, err := ParsePubkey(s); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("ParsePubkey(%q) err = %v, want ErrInvalidArgument", s, err)
		}
	}
}

func TestSystemProgramIsZero(t *testing.T) {
	if !SystemProgramID.IsZero() {
		t.Fatal("system program id should be the zero address")
	}
	if VoteProgramID.IsZero() {
		t.Fatal("vote program id should not be zero")
	}
}

func TestPubkey_JSON(t *testing.T) {
	in := struct {
		Owner Pubkey `json:"owner"`
	}{Owner: StakeProgramID}

	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(raw) != `{"owner":"Stake11111111111111111111111111111111111111"}` {
		t.Fatalf("Marshal = %s", raw)
	}

	var out struct {
		Owner Pubkey `json:"owner"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Owner != StakeProgramID {
		t.Fatalf("Owner = %s, want %s", out.Owner, StakeProgramID)
	}
}

func TestAddressSet(t *testing.T) {
	var nilSet AddressSet
	if nilSet.Has(VoteProgramID) {
		t.Fatal("nil set should have no members")
	}

	s := NewAddressSet(VoteProgramID)
	s.Add(StakeProgramID)
	if !s.Has(VoteProgramID) || !s.Has(StakeProgramID) || s.Has(SysvarOwnerID) {
		t.Fatalf("unexpected membership: %v", s)
	}
}
