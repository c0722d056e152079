// Package command defines the snapshot-merger command line.
//
// The root action merges two ledgers into a snapshot archive:
//
//	snapshot-merger --mainnet-ledger <dir> --ledger-to-merge <dir> -o <dir> [--warp-slot <slot>]
//
// Subcommands inspect a ledger directory, verify an archive and import an
// archive back into a ledger directory. Every failure maps to a stable exit
// code through ExitCode.
package command
