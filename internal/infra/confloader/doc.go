// Package confloader loads layered configuration with koanf.
//
// Sources are applied in increasing priority:
//
//  1. Values already present in the target struct (defaults)
//  2. A YAML configuration file
//  3. Environment variables (SNAPMERGE_<SECTION>_<KEY>)
//  4. Overrides supplied as a map, typically from command-line flags
//
// Keys are two levels deep: a section and a snake_case key within it, so
// SNAPMERGE_WRITER_MAX_SEGMENT_SIZE maps to writer.max_segment_size.
package confloader
