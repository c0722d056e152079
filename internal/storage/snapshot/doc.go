// Package snapshot is the batch writer: it partitions a merged store into
// size-bounded storage segments, stages them on disk, and drives the
// archive serializer.
//
//   - codec.go: the account record format inside a segment
//   - partition.go: greedy, address ordered segment planning
//   - manifest.go: the archive manifest
//   - writer.go: staging, digests and archive assembly
//   - verify.go: re-reading an archive against its manifest
//
// Segment record (little endian, 8-byte aligned):
//
//	data_len u64 | address [32] | owner [32] | lamports u64 | rent_epoch u64 |
//	executable u8 | 7 bytes padding | data | padding to 8 bytes
package snapshot
