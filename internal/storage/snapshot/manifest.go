package snapshot

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/yndnr/snapshot-merger/internal/core/domain"
)

// ManifestVersion is the current manifest format version.
const ManifestVersion = 1

// Manifest describes an archive's content.
type Manifest struct {
	Version        int       `json:"version"`
	RunID          string    `json:"run_id"`
	CreatedAt      time.Time `json:"created_at"`
	Slot           uint64    `json:"slot"`
	Capitalization uint64    `json:"capitalization"`
	AccountCount   int       `json:"account_count"`
	SegmentCeiling uint64    `json:"segment_ceiling"`

	// Warp is set when the store was warped before writing.
	Warp *WarpInfo `json:"warp,omitempty"`

	Genesis  FileDigest    `json:"genesis"`
	Segments []SegmentInfo `json:"segments"`
}

// WarpInfo records a slot warp.
type WarpInfo struct {
	From uint64 `json:"from"`
	To   uint64 `json:"to"`
}

// FileDigest is a file's size and blake2b-256 digest.
type FileDigest struct {
	Name    string `json:"name"`
	Size    int64  `json:"size"`
	Blake2b string `json:"blake2b"`
}

// SegmentInfo describes one storage segment in the archive.
type SegmentInfo struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Accounts int    `json:"accounts"`
	Size     int64  `json:"size"`
	Blake2b  string `json:"blake2b"`

	First domain.Pubkey `json:"first"`
	Last  domain.Pubkey `json:"last"`
}

// Marshal encodes the manifest as indented JSON.
func (m *Manifest) Marshal() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// ParseManifest decodes a manifest and checks its version.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if m.Version != ManifestVersion {
		return nil, fmt.Errorf("unsupported manifest version %d", m.Version)
	}
	return &m, nil
}

// SegmentBytes returns the total size of all segments.
func (m *Manifest) SegmentBytes() int64 {
	var n int64
	for _, s := range m.Segments {
		n += s.Size
	}
	return n
}

// Digest returns the hex blake2b-256 digest of data.
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
