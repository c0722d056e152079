package archive

import (
	"archive/tar"
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// Reader reads an archive sequentially.
type Reader struct {
	f  *os.File
	zr *zstd.Decoder
	tr *tar.Reader
}

// Open opens the archive at path.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	zr, err := zstd.NewReader(bufio.NewReaderSize(f, 1<<20))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("zstd: %w", err)
	}
	return &Reader{f: f, zr: zr, tr: tar.NewReader(zr)}, nil
}

// Next advances to the next regular file entry and returns its name and
// size. It returns io.EOF at the end of the archive.
func (r *Reader) Next() (string, int64, error) {
	for {
		hdr, err := r.tr.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", 0, io.EOF
			}
			return "", 0, err
		}
		if hdr.Typeflag == tar.TypeReg {
			return hdr.Name, hdr.Size, nil
		}
	}
}

// Read reads from the current entry.
func (r *Reader) Read(p []byte) (int, error) {
	return r.tr.Read(p)
}

// Close releases the archive.
func (r *Reader) Close() error {
	r.zr.Close()
	return r.f.Close()
}
