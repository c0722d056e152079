// Package buildinfo exposes the version of the snapshot-merger binary.
//
// Release builds inject values via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/snapshot-merger/internal/infra/buildinfo.Version=v1.2.0"
//
// Values left unset fall back to what the Go toolchain embedded in the
// binary (module version, VCS revision and time).
package buildinfo
