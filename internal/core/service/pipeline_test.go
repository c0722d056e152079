package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yndnr/snapshot-merger/internal/core/domain"
	"github.com/yndnr/snapshot-merger/internal/telemetry/metric"
)

type fakeLoader map[string]*domain.Ledger

func (f fakeLoader) Load(_ context.Context, dir string) (*domain.Ledger, error) {
	l, ok := f[dir]
	if !ok {
		return nil, domain.ErrLedgerLoad.WithDetails(dir)
	}
	return l, nil
}

type fakeGenesis struct {
	data []byte
	err  error
}

func (f fakeGenesis) GenesisBytes(string) ([]byte, error) {
	return f.data, f.err
}

type fakeWriter struct {
	calls int
	snap  *domain.MergedSnapshot
	err   error
}

func (f *fakeWriter) Write(_ context.Context, snap *domain.MergedSnapshot, outputDir string) (*domain.ArchiveHandle, error) {
	f.calls++
	f.snap = snap
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ArchiveHandle{
		Path:           outputDir + "/snapshot.tar.zst",
		Slot:           snap.Store.Slot(),
		Capitalization: snap.Store.Capitalization(),
		AccountCount:   snap.Store.Len(),
	}, nil
}

func testLedgers(t *testing.T) fakeLoader {
	return fakeLoader{
		"src": {Dir: "src", Store: storeOf(t, 500,
			account(key(1), domain.VoteProgramID, 10),
			account(key(2), ownerGeneral, 100),
		)},
		"tgt": {Dir: "tgt", Store: storeOf(t, 40,
			account(key(3), domain.VoteProgramID, 5),
		)},
	}
}

func u64(v uint64) *uint64 { return &v }

func TestPipeline_Run(t *testing.T) {
	w := &fakeWriter{}
	p := NewPipeline(testLedgers(t), fakeGenesis{data: []byte("genesis")}, w, nil, metric.NewRegistry())

	res, err := p.Run(context.Background(), MergeRequest{SourceDir: "src", TargetDir: "tgt", OutputDir: "out"})
	require.NoError(t, err)

	require.NotEmpty(t, res.RunID)
	require.False(t, res.Warped)
	require.Equal(t, uint64(105), res.Archive.Capitalization)
	require.Equal(t, uint64(40), res.Archive.Slot)
	require.Equal(t, uint64(105), res.Stats.CapitalizationAfter)

	require.Equal(t, 1, w.calls)
	require.Nil(t, w.snap.WarpSlot)
	require.Equal(t, []byte("genesis"), w.snap.Genesis)
	require.Equal(t, res.RunID, w.snap.RunID)
}

func TestPipeline_Warp(t *testing.T) {
	w := &fakeWriter{}
	p := NewPipeline(testLedgers(t), fakeGenesis{}, w, nil, nil)

	res, err := p.Run(context.Background(), MergeRequest{SourceDir: "src", TargetDir: "tgt", OutputDir: "out", WarpSlot: u64(1000)})
	require.NoError(t, err)
	require.True(t, res.Warped)
	require.Equal(t, uint64(1000), res.Archive.Slot)
	require.Equal(t, uint64(1000), *w.snap.WarpSlot)
	require.Equal(t, uint64(40), w.snap.WarpedFrom)
}

func TestPipeline_Failures(t *testing.T) {
	overflow := testLedgers(t)
	overflow["src"] = &domain.Ledger{Store: storeOf(t, 500, account(key(2), ownerGeneral, ^uint64(0)))}

	tests := []struct {
		name      string
		loader    fakeLoader
		genesis   fakeGenesis
		req       MergeRequest
		wantErr   *domain.DomainError
		wantStage Stage
	}{
		{
			name:      "missing argument",
			loader:    testLedgers(t),
			req:       MergeRequest{SourceDir: "src", OutputDir: "out"},
			wantErr:   domain.ErrInvalidArgument,
			wantStage: StageLoad,
		},
		{
			name:      "unknown ledger",
			loader:    testLedgers(t),
			req:       MergeRequest{SourceDir: "nope", TargetDir: "tgt", OutputDir: "out"},
			wantErr:   domain.ErrLedgerLoad,
			wantStage: StageLoad,
		},
		{
			name:      "genesis unreadable",
			loader:    testLedgers(t),
			genesis:   fakeGenesis{err: domain.ErrGenesisRead},
			req:       MergeRequest{SourceDir: "src", TargetDir: "tgt", OutputDir: "out"},
			wantErr:   domain.ErrGenesisRead,
			wantStage: StageLoad,
		},
		{
			name:      "capitalization overflow",
			loader:    overflow,
			req:       MergeRequest{SourceDir: "src", TargetDir: "tgt", OutputDir: "out"},
			wantErr:   domain.ErrCapitalizationOverflow,
			wantStage: StageVerify,
		},
		{
			name:      "backward warp",
			loader:    testLedgers(t),
			req:       MergeRequest{SourceDir: "src", TargetDir: "tgt", OutputDir: "out", WarpSlot: u64(39)},
			wantErr:   domain.ErrInvalidWarpTarget,
			wantStage: StageWarp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &fakeWriter{}
			p := NewPipeline(tt.loader, tt.genesis, w, nil, nil)

			_, err := p.Run(context.Background(), tt.req)
			require.ErrorIs(t, err, tt.wantErr)

			var se *StageError
			require.True(t, errors.As(err, &se))
			require.Equal(t, tt.wantStage, se.Stage)
			require.Zero(t, w.calls, "nothing may be written after a failure")
		})
	}
}

func TestPipeline_WriteFailure(t *testing.T) {
	w := &fakeWriter{err: domain.ErrIOFailure.WithDetails("disk full")}
	p := NewPipeline(testLedgers(t), fakeGenesis{}, w, nil, nil)

	_, err := p.Run(context.Background(), MergeRequest{SourceDir: "src", TargetDir: "tgt", OutputDir: "out"})
	require.ErrorIs(t, err, domain.ErrIOFailure)
	require.Equal(t, "IOFailure", domain.KindOf(err))
}
