package domain

// Ledger is a loaded ledger directory: its account store plus the
// addresses its genesis configuration declares.
type Ledger struct {
	Dir             string
	Store           *Store
	GenesisAccounts []Pubkey
}

// MergedSnapshot is the merge output handed to the batch writer exactly once.
type MergedSnapshot struct {
	Store *Store

	// WarpSlot is set only when a warp was requested. WarpedFrom then holds
	// the slot the merged store had before the warp.
	WarpSlot   *uint64
	WarpedFrom uint64

	// Genesis is the target ledger's genesis file, shipped verbatim.
	Genesis []byte

	// RunID identifies the merge invocation in logs, staging paths and the manifest.
	RunID string
}

// ArchiveHandle describes a finished snapshot archive.
type ArchiveHandle struct {
	Path           string `json:"path" yaml:"path"`
	GenesisPath    string `json:"genesis_path" yaml:"genesis_path"`
	Slot           uint64 `json:"slot" yaml:"slot"`
	Capitalization uint64 `json:"capitalization" yaml:"capitalization" table:"sol"`
	AccountCount   int    `json:"account_count" yaml:"account_count"`
	SegmentCount   int    `json:"segment_count" yaml:"segment_count"`
	Bytes          int64  `json:"bytes" yaml:"bytes"`
}
