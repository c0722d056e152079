package config

// MergerConfig is the configuration for snapshot-merger.
type MergerConfig struct {
	Merge   MergeSection   `koanf:"merge" yaml:"merge"`
	Writer  WriterSection  `koanf:"writer" yaml:"writer"`
	Log     LogSection     `koanf:"log" yaml:"log"`
	Metrics MetricsSection `koanf:"metrics" yaml:"metrics"`
	Output  OutputSection  `koanf:"output" yaml:"output"`
}

// MergeSection tunes classification and the declared-set policy.
// Addresses are base58.
type MergeSection struct {
	Workers           int      `koanf:"workers" yaml:"workers"`
	ValidatorPrograms []string `koanf:"validator_programs" yaml:"validator_programs"`
	PreserveOwners    []string `koanf:"preserve_owners" yaml:"preserve_owners"`
	PreserveAddresses []string `koanf:"preserve_addresses" yaml:"preserve_addresses"`
}

// WriterSection configures segment staging and the archive.
type WriterSection struct {
	MaxSegmentSize   uint64 `koanf:"max_segment_size" yaml:"max_segment_size"`
	Workers          int    `koanf:"workers" yaml:"workers"`
	CompressionLevel int    `koanf:"compression_level" yaml:"compression_level"`
	Overwrite        bool   `koanf:"overwrite" yaml:"overwrite"`
}

// LogSection configures the process logger.
type LogSection struct {
	Level  string `koanf:"level" yaml:"level"`   // debug, info, warn, error
	Format string `koanf:"format" yaml:"format"` // text, json
}

// MetricsSection configures the prometheus textfile export.
type MetricsSection struct {
	Textfile string `koanf:"textfile" yaml:"textfile"`
}

// OutputSection configures how command results are printed.
type OutputSection struct {
	Format string `koanf:"format" yaml:"format"` // table, json, yaml
}
