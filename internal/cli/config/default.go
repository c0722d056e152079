package config

import (
	"runtime"

	"github.com/yndnr/snapshot-merger/internal/core/domain"
	"github.com/yndnr/snapshot-merger/internal/storage/archive"
	"github.com/yndnr/snapshot-merger/internal/storage/snapshot"
)

// Default configuration values.
const (
	DefaultMaxSegmentSize   = snapshot.DefaultMaxSegmentSize
	DefaultCompressionLevel = archive.DefaultCompressionLevel

	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultOutputFormat = "table"
)

// Default returns the default configuration.
func Default() *MergerConfig {
	workers := runtime.GOMAXPROCS(0)
	return &MergerConfig{
		Merge: MergeSection{
			Workers:        workers,
			PreserveOwners: []string{domain.SysvarOwnerID.String()},
		},
		Writer: WriterSection{
			MaxSegmentSize:   DefaultMaxSegmentSize,
			Workers:          workers,
			CompressionLevel: DefaultCompressionLevel,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Output: OutputSection{
			Format: DefaultOutputFormat,
		},
	}
}
