package io

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"
	"sync"
	"syscall"

	"github.com/matzehuels/sugarcheck/pkg/pipeline"
)

// Report formats.
const (
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatTSV   = "tsv"
)

// WriterFunc writes a report in one format.
type WriterFunc func(w io.Writer, rep *pipeline.Report) error

var (
	writersMu sync.RWMutex
	writers   = map[string]WriterFunc{}
)

func init() {
	Register(FormatJSON, WriteJSON)
	Register(FormatJSONL, WriteJSONL)
	Register(FormatTSV, WriteTSV)
}

// Register adds or replaces the writer for format.
func Register(format string, fn WriterFunc) {
	writersMu.Lock()
	defer writersMu.Unlock()
	writers[format] = fn
}

// Formats returns the registered format names, sorted.
func Formats() []string {
	writersMu.RLock()
	defer writersMu.RUnlock()
	out := make([]string, 0, len(writers))
	for f := range writers {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Supports reports whether a writer is registered for format.
func Supports(format string) bool {
	return slices.Contains(Formats(), format)
}

// WriteReport writes rep to w in format.
func WriteReport(format string, w io.Writer, rep *pipeline.Report) error {
	writersMu.RLock()
	fn, ok := writers[format]
	writersMu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown report format %q (no writer registered)", format)
	}
	return fn(w, rep)
}

// IsBrokenPipe reports whether an error is a broken pipe / closed pipe.
// Useful when downstream consumers (like `head`) close early.
func IsBrokenPipe(err error) bool {
	return err != nil && (errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe))
}
