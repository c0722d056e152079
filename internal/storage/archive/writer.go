package archive

import (
	"archive/tar"
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/zstd"

	"github.com/yndnr/snapshot-merger/internal/core/domain"
	"github.com/yndnr/snapshot-merger/internal/infra/fsutil"
)

const (
	// ManifestName is the manifest entry, always first in the archive.
	ManifestName = "snapshot/manifest.json"

	partialSuffix = ".partial"

	// DefaultCompressionLevel is zstd's default level.
	DefaultCompressionLevel = 3
)

// FileName returns the archive file name for slot.
func FileName(slot uint64) string {
	return fmt.Sprintf("snapshot-%d.tar.zst", slot)
}

// Entry is a staged file to copy into the archive.
type Entry struct {
	// Name is the path inside the archive.
	Name string
	// Path is the staged file on disk.
	Path string
	// Size is the expected size of the staged file.
	Size int64
}

// Options configures a Serializer.
type Options struct {
	// CompressionLevel is a zstd level (1-22).
	CompressionLevel int
	// Overwrite allows replacing an existing archive.
	Overwrite bool
}

// Serializer writes archives.
type Serializer struct {
	opts   Options
	logger *slog.Logger
}

// NewSerializer creates a Serializer. A nil logger selects slog.Default().
func NewSerializer(opts Options, logger *slog.Logger) *Serializer {
	if opts.CompressionLevel <= 0 {
		opts.CompressionLevel = DefaultCompressionLevel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Serializer{opts: opts, logger: logger}
}

// Check fails if the archive for slot already exists in outputDir and
// overwriting is disabled.
func (s *Serializer) Check(slot uint64, outputDir string) error {
	if s.opts.Overwrite {
		return nil
	}
	path := filepath.Join(outputDir, FileName(slot))
	exists, err := fsutil.Exists(path)
	if err != nil {
		return domain.ErrIOFailure.WithDetails(path).WithCause(err)
	}
	if exists {
		return domain.ErrIOFailure.WithDetailsf("%s already exists", path)
	}
	return nil
}

// Serialize writes manifest followed by entries, in order, to
// outputDir/snapshot-<slot>.tar.zst and returns the archive path.
// Every failure is a domain.ErrIOFailure.
func (s *Serializer) Serialize(ctx context.Context, slot uint64, manifest []byte, entries []Entry, outputDir string) (string, error) {
	if err := s.Check(slot, outputDir); err != nil {
		return "", err
	}

	final := filepath.Join(outputDir, FileName(slot))
	partial := final + partialSuffix
	start := time.Now()

	if err := s.write(ctx, partial, manifest, entries); err != nil {
		return "", domain.ErrIOFailure.WithDetails(partial).WithCause(err)
	}
	if err := os.Rename(partial, final); err != nil {
		return "", domain.ErrIOFailure.WithDetails(final).WithCause(err)
	}
	if err := fsutil.SyncDir(outputDir); err != nil {
		return "", domain.ErrIOFailure.WithDetails(outputDir).WithCause(err)
	}

	if info, err := os.Stat(final); err == nil {
		s.logger.Info("archive written",
			"path", final,
			"entries", len(entries)+1,
			"size", humanize.IBytes(uint64(info.Size())),
			"elapsed", time.Since(start).Round(time.Millisecond))
	}
	return final, nil
}

func (s *Serializer) write(ctx context.Context, path string, manifest []byte, entries []Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriterSize(f, 1<<20)
	zw, err := zstd.NewWriter(bw, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(s.opts.CompressionLevel)))
	if err != nil {
		return fmt.Errorf("zstd: %w", err)
	}
	tw := tar.NewWriter(zw)
	modTime := time.Now().Truncate(time.Second)

	hdr := &tar.Header{
		Name:     ManifestName,
		Mode:     0644,
		Size:     int64(len(manifest)),
		ModTime:  modTime,
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write manifest header: %w", err)
	}
	if _, err := tw.Write(manifest); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := copyEntry(tw, e, modTime); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("close tar: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close zstd: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	return f.Close()
}

func copyEntry(tw *tar.Writer, e Entry, modTime time.Time) error {
	src, err := os.Open(e.Path)
	if err != nil {
		return err
	}
	defer src.Close()

	hdr := &tar.Header{
		Name:     e.Name,
		Mode:     0644,
		Size:     e.Size,
		ModTime:  modTime,
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write header %s: %w", e.Name, err)
	}
	n, err := io.Copy(tw, src)
	if err != nil {
		return fmt.Errorf("copy %s: %w", e.Name, err)
	}
	if n != e.Size {
		return fmt.Errorf("copy %s: staged file has %d bytes, want %d", e.Name, n, e.Size)
	}
	return nil
}
