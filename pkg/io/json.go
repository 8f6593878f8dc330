package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/sugarcheck/pkg/pipeline"
	"github.com/matzehuels/sugarcheck/pkg/sugar"
)

// WriteJSON encodes the whole report as indented JSON.
func WriteJSON(w io.Writer, rep *pipeline.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Line is one JSONL record.
type Line struct {
	Structure string `json:"structure"`
	Source    string `json:"source,omitempty"`
	*sugar.Sugar
}

// WriteJSONL writes one residue record per line.
func WriteJSONL(w io.Writer, rep *pipeline.Report) error {
	enc := json.NewEncoder(w)
	for _, rec := range rep.Sugars {
		if err := enc.Encode(Line{Structure: rep.Structure, Source: rep.Source, Sugar: rec}); err != nil {
			return fmt.Errorf("encode %s: %w", rec.Residue, err)
		}
	}
	return nil
}

// ReadReport decodes a report written by WriteJSON.
//
// ReadReport returns an error if the JSON is malformed, names no structure,
// or holds a record whose residue has no name. The returned report is
// independent of r; ReadReport does not close r.
func ReadReport(r io.Reader) (*pipeline.Report, error) {
	var rep pipeline.Report
	if err := json.NewDecoder(r).Decode(&rep); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if rep.Structure == "" {
		return nil, fmt.Errorf("report has no structure")
	}
	for i, rec := range rep.Sugars {
		if rec == nil || rec.Residue.Name == "" {
			return nil, fmt.Errorf("record %d: missing residue", i)
		}
	}
	return &rep, nil
}

// ImportReport reads a JSON report file at path.
func ImportReport(path string) (*pipeline.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadReport(f)
}

// ExportReport writes rep to a file at path in format.
func ExportReport(path, format string, rep *pipeline.Report) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteReport(format, f, rep)
}
