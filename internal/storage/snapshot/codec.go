package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/yndnr/snapshot-merger/internal/core/domain"
)

// RecordHeaderSize is the fixed part of a segment record.
const RecordHeaderSize = 96

// MaxRecordData is the largest account data a record may carry. Partition
// rejects larger accounts and DecodeRecords rejects larger data_len values.
const MaxRecordData = 10 << 20

var zeroPad [8]byte

func align8(n uint64) uint64 {
	return (n + 7) &^ 7
}

// StoredSize returns the serialized size of a's record.
func StoredSize(a *domain.Account) uint64 {
	return RecordHeaderSize + align8(uint64(len(a.Data)))
}

// EncodeRecord writes a's record to w.
func EncodeRecord(w io.Writer, a *domain.Account) error {
	var hdr [RecordHeaderSize]byte
	binary.LittleEndian.PutUint64(hdr[0:8], uint64(len(a.Data)))
	copy(hdr[8:40], a.Address[:])
	copy(hdr[40:72], a.Owner[:])
	binary.LittleEndian.PutUint64(hdr[72:80], a.Lamports)
	binary.LittleEndian.PutUint64(hdr[80:88], a.RentEpoch)
	if a.Executable {
		hdr[88] = 1
	}

	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if _, err := w.Write(a.Data); err != nil {
		return err
	}
	if pad := align8(uint64(len(a.Data))) - uint64(len(a.Data)); pad > 0 {
		if _, err := w.Write(zeroPad[:pad]); err != nil {
			return err
		}
	}
	return nil
}

// DecodeRecords reads records from r until EOF and calls fn for each.
func DecodeRecords(r io.Reader, fn func(a *domain.Account) error) error {
	var hdr [RecordHeaderSize]byte
	for {
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read record header: %w", err)
		}

		dataLen := binary.LittleEndian.Uint64(hdr[0:8])
		if dataLen > MaxRecordData {
			return fmt.Errorf("record data_len %d exceeds %d", dataLen, MaxRecordData)
		}
		if hdr[88] > 1 {
			return fmt.Errorf("invalid executable flag %d", hdr[88])
		}

		a := &domain.Account{
			Lamports:   binary.LittleEndian.Uint64(hdr[72:80]),
			RentEpoch:  binary.LittleEndian.Uint64(hdr[80:88]),
			Executable: hdr[88] == 1,
		}
		copy(a.Address[:], hdr[8:40])
		copy(a.Owner[:], hdr[40:72])

		padded := align8(dataLen)
		if padded > 0 {
			buf := make([]byte, padded)
			if _, err := io.ReadFull(r, buf); err != nil {
				return fmt.Errorf("read record data for %s: %w", a.Address, err)
			}
			a.Data = buf[:dataLen:dataLen]
		}

		if err := fn(a); err != nil {
			return err
		}
	}
}
