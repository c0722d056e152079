package logger

import (
	"fmt"
	"log/slog"
)

// maxBlobLen is the longest byte attribute logged verbatim.
const maxBlobLen = 64

// abbreviateBlob replaces large []byte attributes (account data, genesis
// bytes) with their length so a stray attribute cannot flood the log.
func abbreviateBlob(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindAny:
		if b, ok := a.Value.Any().([]byte); ok && len(b) > maxBlobLen {
			return slog.String(a.Key, Blob(len(b)))
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = abbreviateBlob(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	return a
}

// Blob is the placeholder logged in place of an n-byte blob.
func Blob(n int) string {
	return fmt.Sprintf("<%d bytes>", n)
}
