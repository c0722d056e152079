// Package service implements the merge engine.
//
//   - Classifier: decides whether an account is validator identity state
//   - Planner: combines a source and a target store into a new store
//   - RecomputeCapitalization and Warp: store transforms applied after merge
//   - Pipeline: drives load, merge, verify, warp and write as a state machine
//   - Summarize: per-owner account counts for a single ledger
//
// Services depend on storage through small interfaces (LedgerLoader,
// GenesisProvider, SnapshotWriter) so they can be tested without disk.
package service
