// Package output renders command results for snapshot-merger.
//
// Results are printed as an aligned table (the default), JSON or YAML.
// The table formatter flattens nested structs into dotted FIELD rows, so
// a merge summary reads as a single key/value listing. Struct fields may
// carry a `table` tag:
//
//	table:"-"     never shown in tables
//	table:"wide"  shown only in wide mode
//	table:"sol"   lamport amounts, also shown in SOL
//
// ProgressBar draws a byte progress bar on a terminal stream.
package output
