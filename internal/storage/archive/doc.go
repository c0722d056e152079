// Package archive writes and reads snapshot archives: a tar stream
// compressed with zstd, named snapshot-<slot>.tar.zst.
//
// The archive is written as <name>.partial and renamed into place only
// after it has been fully flushed and synced. A failed write leaves the
// .partial file behind for inspection.
package archive
