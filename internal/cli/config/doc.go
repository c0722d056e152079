// Package config defines the snapshot-merger configuration.
//
// Values come from Default(), an optional YAML file, SNAPMERGE_* environment
// variables and command-line flags, in that order of increasing priority.
// Verify rejects values the merge could not run with.
//
// Example file:
//
//	merge:
//	  workers: 8
//	  preserve_owners: [Sysvar1111111111111111111111111111111111111]
//	writer:
//	  max_segment_size: 1073741824
//	  overwrite: false
//	log:
//	  level: info
//	  format: text
//	metrics:
//	  textfile: /var/lib/node_exporter/snapmerge.prom
//	output:
//	  format: table
package config
