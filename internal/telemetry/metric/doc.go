// Package metric provides Prometheus metrics for snapshot-merger.
//
// A merge is a one-shot batch job, so metrics are not scraped. They are
// collected on a private registry and written once, at exit, in the
// node_exporter textfile format.
//
// Every Registry method is safe to call on a nil *Registry.
package metric
