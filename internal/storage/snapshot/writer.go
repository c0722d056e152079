package snapshot

import (
	"bufio"
	"context"
	"encoding/hex"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"

	"github.com/yndnr/snapshot-merger/internal/core/domain"
	"github.com/yndnr/snapshot-merger/internal/infra/fsutil"
	"github.com/yndnr/snapshot-merger/internal/storage/archive"
	"github.com/yndnr/snapshot-merger/internal/storage/ledger"
	"github.com/yndnr/snapshot-merger/internal/telemetry/metric"
)

// WriterConfig configures a BatchWriter.
type WriterConfig struct {
	// MaxSegmentSize is the per-segment byte ceiling (default: 4 GiB).
	MaxSegmentSize uint64
	// Workers is the number of segments encoded in parallel (default: GOMAXPROCS).
	Workers int
	// CompressionLevel is the archive's zstd level.
	CompressionLevel int
	// Overwrite allows replacing an existing archive.
	Overwrite bool
}

// DefaultWriterConfig returns default configuration.
func DefaultWriterConfig() *WriterConfig {
	return &WriterConfig{
		MaxSegmentSize:   DefaultMaxSegmentSize,
		Workers:          runtime.GOMAXPROCS(0),
		CompressionLevel: archive.DefaultCompressionLevel,
	}
}

// ProgressFunc receives staged and total segment bytes.
type ProgressFunc func(done, total int64)

// BatchWriter writes merged snapshots.
type BatchWriter struct {
	config     *WriterConfig
	serializer *archive.Serializer
	logger     *slog.Logger
	metrics    *metric.Registry
	progress   ProgressFunc
}

// NewBatchWriter creates a BatchWriter. logger and metrics may be nil.
func NewBatchWriter(config *WriterConfig, logger *slog.Logger, metrics *metric.Registry) *BatchWriter {
	def := DefaultWriterConfig()
	if config == nil {
		config = def
	} else {
		cp := *config
		config = &cp
	}
	if config.MaxSegmentSize == 0 {
		config.MaxSegmentSize = def.MaxSegmentSize
	}
	if config.Workers <= 0 {
		config.Workers = def.Workers
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchWriter{
		config: config,
		serializer: archive.NewSerializer(archive.Options{
			CompressionLevel: config.CompressionLevel,
			Overwrite:        config.Overwrite,
		}, logger),
		logger:  logger,
		metrics: metrics,
	}
}

// OnProgress sets a callback invoked as segments are staged.
func (w *BatchWriter) OnProgress(fn ProgressFunc) *BatchWriter {
	w.progress = fn
	return w
}

// StagingDir returns the staging directory a run uses under outputDir.
func StagingDir(outputDir, runID string) string {
	return filepath.Join(outputDir, ".staging-"+runID)
}

// Write partitions snap's store, stages every segment and genesis.bin,
// assembles the archive and only then moves genesis.bin next to it.
// Partitioning and the overwrite check happen before anything is written.
// On failure the staging directory and any .partial archive are left in
// place and no file in outputDir is replaced.
func (w *BatchWriter) Write(ctx context.Context, snap *domain.MergedSnapshot, outputDir string) (*domain.ArchiveHandle, error) {
	store := snap.Store
	slot := store.Slot()
	log := w.logger.With("run_id", snap.RunID)

	segments, err := Partition(store, w.config.MaxSegmentSize)
	if err != nil {
		return nil, err
	}
	if err := w.serializer.Check(slot, outputDir); err != nil {
		return nil, err
	}

	staging := StagingDir(outputDir, snap.RunID)
	accountsDir := filepath.Join(staging, "accounts")
	if err := os.MkdirAll(accountsDir, 0755); err != nil {
		return nil, domain.ErrIOFailure.WithDetails(accountsDir).WithCause(err)
	}

	var total int64
	for _, s := range segments {
		total += int64(s.Size)
	}
	log.Info("staging segments",
		"segments", len(segments),
		"accounts", store.Len(),
		"bytes", humanize.IBytes(uint64(total)),
		"workers", w.config.Workers)

	infos, err := w.stage(ctx, segments, slot, accountsDir, total)
	if err != nil {
		return nil, err
	}

	stagedGenesis := filepath.Join(staging, ledger.GenesisFile)
	if err := fsutil.WriteFileAtomic(stagedGenesis, snap.Genesis); err != nil {
		return nil, domain.ErrIOFailure.WithDetails(stagedGenesis).WithCause(err)
	}

	manifest := &Manifest{
		Version:        ManifestVersion,
		RunID:          snap.RunID,
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
		Slot:           slot,
		Capitalization: store.Capitalization(),
		AccountCount:   store.Len(),
		SegmentCeiling: w.config.MaxSegmentSize,
		Genesis: FileDigest{
			Name:    ledger.GenesisFile,
			Size:    int64(len(snap.Genesis)),
			Blake2b: Digest(snap.Genesis),
		},
		Segments: infos,
	}
	if snap.WarpSlot != nil {
		manifest.Warp = &WarpInfo{From: snap.WarpedFrom, To: *snap.WarpSlot}
	}
	manifestJSON, err := manifest.Marshal()
	if err != nil {
		return nil, domain.ErrIOFailure.WithDetails("encode manifest").WithCause(err)
	}

	entries := make([]archive.Entry, len(infos))
	for i, info := range infos {
		entries[i] = archive.Entry{
			Name: info.Name,
			Path: filepath.Join(staging, info.Name),
			Size: info.Size,
		}
	}
	path, err := w.serializer.Serialize(ctx, slot, manifestJSON, entries, outputDir)
	if err != nil {
		return nil, err
	}

	genesisPath := filepath.Join(outputDir, ledger.GenesisFile)
	if err := os.Rename(stagedGenesis, genesisPath); err != nil {
		return nil, domain.ErrIOFailure.WithDetails(genesisPath).WithCause(err)
	}
	if err := fsutil.SyncDir(outputDir); err != nil {
		return nil, domain.ErrIOFailure.WithDetails(outputDir).WithCause(err)
	}

	if err := os.RemoveAll(staging); err != nil {
		log.Warn("remove staging directory", "dir", staging, "error", err)
	}

	var size int64
	if fi, err := os.Stat(path); err == nil {
		size = fi.Size()
	}
	return &domain.ArchiveHandle{
		Path:           path,
		GenesisPath:    genesisPath,
		Slot:           slot,
		Capitalization: store.Capitalization(),
		AccountCount:   store.Len(),
		SegmentCount:   len(segments),
		Bytes:          size,
	}, nil
}

// stage encodes segments in parallel. Results keep segment order.
func (w *BatchWriter) stage(ctx context.Context, segments []*Segment, slot uint64, dir string, total int64) ([]SegmentInfo, error) {
	infos := make([]SegmentInfo, len(segments))
	var done atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.config.Workers)
	for i, seg := range segments {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			info, err := writeSegment(seg, slot, dir)
			if err != nil {
				return err
			}
			infos[i] = info
			w.metrics.SegmentWritten(info.Size)
			n := done.Add(info.Size)
			if w.progress != nil {
				w.progress(n, total)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return infos, nil
}

func writeSegment(seg *Segment, slot uint64, dir string) (SegmentInfo, error) {
	name := seg.FileName(slot)
	path := filepath.Join(dir, name)
	info := SegmentInfo{
		ID:       seg.ID,
		Name:     "accounts/" + name,
		Accounts: len(seg.Accounts),
		First:    seg.Accounts[0].Address,
		Last:     seg.Accounts[len(seg.Accounts)-1].Address,
	}

	f, err := os.Create(path)
	if err != nil {
		return info, domain.ErrIOFailure.WithDetails(path).WithCause(err)
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return info, domain.ErrIOFailure.WithDetails(path).WithCause(err)
	}
	cw := &countingWriter{w: io.MultiWriter(f, h)}
	bw := bufio.NewWriterSize(cw, 1<<20)

	for _, a := range seg.Accounts {
		if err := EncodeRecord(bw, a); err != nil {
			return info, domain.ErrIOFailure.WithDetails(path).WithCause(err)
		}
	}
	if err := bw.Flush(); err != nil {
		return info, domain.ErrIOFailure.WithDetails(path).WithCause(err)
	}
	if err := f.Sync(); err != nil {
		return info, domain.ErrIOFailure.WithDetails(path).WithCause(err)
	}
	if err := f.Close(); err != nil {
		return info, domain.ErrIOFailure.WithDetails(path).WithCause(err)
	}
	if uint64(cw.n) != seg.Size {
		return info, domain.ErrIOFailure.WithDetailsf("%s: wrote %d bytes, planned %d", path, cw.n, seg.Size)
	}

	info.Size = cw.n
	info.Blake2b = hex.EncodeToString(h.Sum(nil))
	return info, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
