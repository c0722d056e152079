package output

import (
	"github.com/shopspring/decimal"
)

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL = 1_000_000_000

// SOL renders a lamport amount in SOL with every significant digit,
// e.g. 1500000000 -> "1.5".
func SOL(lamports uint64) string {
	return decimal.NewFromUint64(lamports).Shift(-9).String()
}

// Lamports renders an amount as "<lamports> (<sol> SOL)".
func Lamports(lamports uint64) string {
	return comma(lamports) + " (" + SOL(lamports) + " SOL)"
}
