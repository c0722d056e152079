package snapshot

import (
	"fmt"

	"github.com/yndnr/snapshot-merger/internal/core/domain"
)

// DefaultMaxSegmentSize is the per-segment ceiling consuming nodes accept.
const DefaultMaxSegmentSize = 4 << 30

// Segment is an ordered batch of accounts written to one storage file.
type Segment struct {
	ID       int
	Accounts []*domain.Account
	// Size is the serialized size of all records.
	Size uint64
}

// FileName returns the segment's file name for slot.
func (s *Segment) FileName(slot uint64) string {
	return fmt.Sprintf("%d.%d", slot, s.ID)
}

// Partition splits store into segments no larger than ceiling. Accounts
// are taken in ascending address order and appended to the current
// segment until the next one would not fit. An account larger than the
// ceiling, or carrying more than MaxRecordData bytes of data, fails with
// domain.ErrSegmentOverflow.
func Partition(store *domain.Store, ceiling uint64) ([]*Segment, error) {
	if ceiling < RecordHeaderSize {
		return nil, domain.ErrInvalidArgument.WithDetailsf("segment ceiling %d is smaller than a record header", ceiling)
	}

	var (
		segments []*Segment
		cur      *Segment
		err      error
	)
	store.Range(func(a *domain.Account) bool {
		if len(a.Data) > MaxRecordData {
			err = domain.ErrSegmentOverflow.WithDetailsf("account %s carries %d data bytes, a record holds at most %d", a.Address, len(a.Data), MaxRecordData)
			return false
		}
		size := StoredSize(a)
		if size > ceiling {
			err = domain.ErrSegmentOverflow.WithDetailsf("account %s needs %d bytes, ceiling is %d", a.Address, size, ceiling)
			return false
		}
		if cur == nil || cur.Size+size > ceiling {
			cur = &Segment{ID: len(segments)}
			segments = append(segments, cur)
		}
		cur.Accounts = append(cur.Accounts, a)
		cur.Size += size
		return true
	})
	if err != nil {
		return nil, err
	}
	return segments, nil
}
