// Package ledger reads and writes ledger directories.
//
// A ledger directory holds the genesis file and a Badger database with
// one key per account plus a few metadata keys:
//
//	<dir>/genesis.bin             opaque genesis bytes
//	<dir>/accounts/               badger database
//	    a/<32-byte address>       owner | lamports | rent_epoch | executable | data
//	    m/slot                    uint64, big endian
//	    m/capitalization          uint64, big endian
//	    m/genesis_accounts        concatenated 32-byte addresses
package ledger
