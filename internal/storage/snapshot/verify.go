package snapshot

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/bits"

	"golang.org/x/crypto/blake2b"

	"github.com/yndnr/snapshot-merger/internal/core/domain"
	"github.com/yndnr/snapshot-merger/internal/storage/archive"
)

// Report summarizes a verified archive.
type Report struct {
	Path           string    `json:"path" yaml:"path"`
	Manifest       *Manifest `json:"-" yaml:"-" table:"-"`
	Slot           uint64    `json:"slot" yaml:"slot"`
	Capitalization uint64    `json:"capitalization" yaml:"capitalization" table:"sol"`
	Accounts       int       `json:"accounts" yaml:"accounts"`
	Segments       int       `json:"segments" yaml:"segments"`
	Bytes          int64     `json:"bytes" yaml:"bytes"`
}

// Verify re-reads the archive at path and checks every segment against
// the manifest: digest, size, account count, strict address order and
// the total capitalization. Mismatches are domain.ErrCorruptArchive,
// read failures domain.ErrIOFailure.
func Verify(ctx context.Context, path string) (*Report, error) {
	return scan(ctx, path, nil)
}

// ReadArchive verifies the archive at path and returns its accounts as a
// store at the manifest's slot and capitalization.
func ReadArchive(ctx context.Context, path string) (*domain.Store, *Report, error) {
	var store *domain.Store
	report, err := scan(ctx, path, func(m *Manifest, a *domain.Account) error {
		if store == nil {
			store = domain.NewStoreWithCapacity(m.Slot, m.Capitalization, m.AccountCount)
		}
		return store.Insert(a)
	})
	if err != nil {
		return nil, nil, err
	}
	if store == nil {
		store = domain.NewStore(report.Slot, report.Capitalization)
	}
	return store, report, nil
}

func mismatch(path, format string, args ...any) error {
	return domain.ErrCorruptArchive.WithDetailsf("archive %s: %s", path, fmt.Sprintf(format, args...))
}

func scan(ctx context.Context, path string, fn func(m *Manifest, a *domain.Account) error) (*Report, error) {
	r, err := archive.Open(path)
	if err != nil {
		return nil, domain.ErrIOFailure.WithDetails(path).WithCause(err)
	}
	defer r.Close()

	name, _, err := r.Next()
	if err != nil {
		return nil, domain.ErrIOFailure.WithDetails(path).WithCause(err)
	}
	if name != archive.ManifestName {
		return nil, mismatch(path, "first entry is %q, want %q", name, archive.ManifestName)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, domain.ErrIOFailure.WithDetails(path).WithCause(err)
	}
	m, err := ParseManifest(raw)
	if err != nil {
		return nil, mismatch(path, "%v", err)
	}

	var (
		sum      uint64
		accounts int
		prev     *domain.Pubkey
	)
	for i, seg := range m.Segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name, size, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil, mismatch(path, "missing segment %s", seg.Name)
		}
		if err != nil {
			return nil, domain.ErrIOFailure.WithDetails(path).WithCause(err)
		}
		if name != seg.Name || size != seg.Size {
			return nil, mismatch(path, "entry %d is %s (%d bytes), want %s (%d bytes)", i+1, name, size, seg.Name, seg.Size)
		}

		h, _ := blake2b.New256(nil)
		count := 0
		err = DecodeRecords(io.TeeReader(r, h), func(a *domain.Account) error {
			if prev != nil && prev.Compare(a.Address) >= 0 {
				return mismatch(path, "%s: address %s out of order", seg.Name, a.Address)
			}
			addr := a.Address
			prev = &addr

			var carry uint64
			sum, carry = bits.Add64(sum, a.Lamports, 0)
			if carry != 0 {
				return domain.ErrCapitalizationOverflow.WithDetailsf("archive %s: at account %s", path, a.Address)
			}
			count++
			if fn != nil {
				return fn(m, a)
			}
			return nil
		})
		if err != nil {
			if domain.IsDomainError(err, "") {
				return nil, err
			}
			return nil, mismatch(path, "%s: %v", seg.Name, err)
		}

		if got := hex.EncodeToString(h.Sum(nil)); got != seg.Blake2b {
			return nil, mismatch(path, "%s: digest %s, manifest says %s", seg.Name, got, seg.Blake2b)
		}
		if count != seg.Accounts {
			return nil, mismatch(path, "%s: %d accounts, manifest says %d", seg.Name, count, seg.Accounts)
		}
		accounts += count
	}

	if name, _, err := r.Next(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, domain.ErrIOFailure.WithDetails(path).WithCause(err)
		}
		return nil, mismatch(path, "unexpected entry %s", name)
	}
	if accounts != m.AccountCount {
		return nil, mismatch(path, "%d accounts, manifest says %d", accounts, m.AccountCount)
	}
	if sum != m.Capitalization {
		return nil, mismatch(path, "capitalization %d, manifest says %d", sum, m.Capitalization)
	}

	return &Report{
		Path:           path,
		Manifest:       m,
		Slot:           m.Slot,
		Capitalization: m.Capitalization,
		Accounts:       accounts,
		Segments:       len(m.Segments),
		Bytes:          m.SegmentBytes(),
	}, nil
}
