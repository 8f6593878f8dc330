package model

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Open reads a PDB file from path. Files ending in .gz or .zst are
// decompressed on the fly. When the file has no HEADER id the base name is
// used instead.
func Open(path string) (*Structure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f, path)
}

// Read parses a PDB stream. name selects decompression by suffix and, when
// the stream has no HEADER id, supplies the structure id.
func Read(r io.Reader, name string) (*Structure, error) {
	dr, err := NewDecompressor(r, name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer dr.Close()

	s, err := ReadPDB(dr)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	if s.ID == "" {
		s.ID = baseID(name)
	}
	return s, nil
}

// NewDecompressor wraps r according to the compression suffix of name.
// Unknown suffixes are passed through unchanged.
func NewDecompressor(r io.Reader, name string) (io.ReadCloser, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr, nil
	case ".zst", ".zstd":
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return &zstdReadCloser{dec: dec}, nil
	}
	return io.NopCloser(r), nil
}

type zstdReadCloser struct {
	dec *zstd.Decoder
}

func (z *zstdReadCloser) Read(p []byte) (int, error) {
	return z.dec.Read(p)
}

func (z *zstdReadCloser) Close() error {
	z.dec.Close()
	return nil
}

func baseID(path string) string {
	name := filepath.Base(path)
	for {
		ext := filepath.Ext(name)
		if ext == "" {
			return name
		}
		name = strings.TrimSuffix(name, ext)
	}
}
