// Package domain defines the core domain models for snapshot-merger.
//
// Domain models are pure value objects without any IO dependencies
// or framework coupling. This package contains:
//
//   - Pubkey: 32-byte account address with base58 text form
//   - Account: a single on-chain account record
//   - Store: one ledger's account set plus slot and capitalization
//   - ClassificationTag: validator-identity vs general accounts
//   - Ledger / MergedSnapshot / ArchiveHandle: pipeline artifacts
//   - Errors: the merge failure taxonomy
//
// Stores handed out by loaders are treated as read-only. Every
// transform builds a new Store value instead of mutating its input.
package domain
