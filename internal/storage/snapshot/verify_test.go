package snapshot

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yndnr/snapshot-merger/internal/core/domain"
	"github.com/yndnr/snapshot-merger/internal/storage/archive"
)

func writeArchive(t *testing.T, manifest *Manifest, segments map[string][]byte) string {
	t.Helper()
	staging := t.TempDir()
	out := t.TempDir()

	var entries []archive.Entry
	for _, s := range manifest.Segments {
		data := segments[s.Name]
		path := filepath.Join(staging, filepath.Base(s.Name))
		require.NoError(t, writeFile(path, data))
		entries = append(entries, archive.Entry{Name: s.Name, Path: path, Size: int64(len(data))})
	}
	raw, err := manifest.Marshal()
	require.NoError(t, err)

	path, err := archive.NewSerializer(archive.Options{}, nil).Serialize(context.Background(), manifest.Slot, raw, entries, out)
	require.NoError(t, err)
	return path
}

func TestVerify_DetectsTampering(t *testing.T) {
	h, err := NewBatchWriter(&WriterConfig{MaxSegmentSize: 512}, nil, nil).
		Write(context.Background(), mergedSnapshot(t, 10), t.TempDir())
	require.NoError(t, err)

	good, err := Verify(context.Background(), h.Path)
	require.NoError(t, err)

	segments := map[string][]byte{}
	store, _, err := ReadArchive(context.Background(), h.Path)
	require.NoError(t, err)
	parts, err := Partition(store, 512)
	require.NoError(t, err)
	for _, p := range parts {
		segments["accounts/"+p.FileName(store.Slot())] = encodeSegment(t, p)
	}

	t.Run("capitalization", func(t *testing.T) {
		m := *good.Manifest
		m.Capitalization++
		_, err := Verify(context.Background(), writeArchive(t, &m, segments))
		require.ErrorIs(t, err, domain.ErrCorruptArchive)
		require.Contains(t, err.Error(), "capitalization")
	})

	t.Run("digest", func(t *testing.T) {
		m := *good.Manifest
		m.Segments = append([]SegmentInfo(nil), good.Manifest.Segments...)
		m.Segments[0].Blake2b = Digest([]byte("other"))
		_, err := Verify(context.Background(), writeArchive(t, &m, segments))
		require.ErrorIs(t, err, domain.ErrCorruptArchive)
		require.Contains(t, err.Error(), "digest")
		require.Contains(t, err.Error(), "corrupt snapshot archive")
		require.NotErrorIs(t, err, domain.ErrInconsistentInput)
		require.Equal(t, domain.ErrIOFailure.Kind, domain.KindOf(err))
	})

	t.Run("account count", func(t *testing.T) {
		m := *good.Manifest
		m.AccountCount = 11
		_, err := Verify(context.Background(), writeArchive(t, &m, segments))
		require.ErrorIs(t, err, domain.ErrCorruptArchive)
	})

	t.Run("untouched", func(t *testing.T) {
		m := *good.Manifest
		_, err := Verify(context.Background(), writeArchive(t, &m, segments))
		require.NoError(t, err)
	})
}

func TestVerify_Missing(t *testing.T) {
	_, err := Verify(context.Background(), filepath.Join(t.TempDir(), "nope.tar.zst"))
	require.ErrorIs(t, err, domain.ErrIOFailure)
}

func encodeSegment(t *testing.T, s *Segment) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, a := range s.Accounts {
		require.NoError(t, EncodeRecord(&buf, a))
	}
	return buf.Bytes()
}

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0644)
}
