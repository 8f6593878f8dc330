package io

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/matzehuels/sugarcheck/pkg/model"
	"github.com/matzehuels/sugarcheck/pkg/pipeline"
	"github.com/matzehuels/sugarcheck/pkg/sugar"
)

func sampleReport() *pipeline.Report {
	return &pipeline.Report{
		Structure: "1BGC",
		Source:    "1bgc.pdb",
		Hash:      "abc",
		Version:   "dev",
		Sugars: []*sugar.Sugar{
			{
				Residue:          model.ResidueID{Chain: "A", Name: "BGC", Seq: 1},
				Supported:        true,
				RingSource:       sugar.SourceTemplate,
				Denomination:     "beta-D-aldopyranose",
				Anomer:           sugar.AnomerBeta,
				Handedness:       sugar.HandednessD,
				Conformation:     "4C1",
				ConformationCode: 1,
				Pucker:           &sugar.Pucker{Q: 0.5944, Theta: 3.74, Phi: 98.4},
				Geometry:         &sugar.RingGeometry{BondRMSD: 0.0012, AngleRMSD: 1.5},
				Sanity:           sugar.Sanity{Matched: true, Sane: true},
			},
			{
				Residue:      model.ResidueID{Chain: "B", Name: "XYZ", Seq: 2},
				Denomination: sugar.DenominationUnsupported,
				Anomer:       sugar.AnomerUnknown,
				Handedness:   sugar.HandednessUnknown,
				Reason:       "no supported ring",
			},
		},
	}
}

func TestFormats(t *testing.T) {
	got := strings.Join(Formats(), ",")
	if got != "json,jsonl,tsv" {
		t.Errorf("Formats() = %s", got)
	}
	if !Supports(FormatTSV) || Supports("xml") {
		t.Error("Supports mismatch")
	}
}

func TestWriteReportUnknownFormat(t *testing.T) {
	err := WriteReport("nope", io.Discard, sampleReport())
	if err == nil || !strings.Contains(err.Error(), "unknown report format") {
		t.Fatalf("want 'unknown report format' error, got: %v", err)
	}
}

func TestRegister(t *testing.T) {
	Register("count", func(w io.Writer, rep *pipeline.Report) error {
		_, err := fmt.Fprintln(w, len(rep.Sugars))
		return err
	})
	t.Cleanup(func() {
		writersMu.Lock()
		delete(writers, "count")
		writersMu.Unlock()
	})

	var buf bytes.Buffer
	if err := WriteReport("count", &buf, sampleReport()); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "2\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(FormatJSON, &buf, sampleReport()); err != nil {
		t.Fatal(err)
	}
	rep, err := ReadReport(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Structure != "1BGC" || len(rep.Sugars) != 2 {
		t.Fatalf("got %+v", rep)
	}
	if rep.Sugars[0].Anomer != sugar.AnomerBeta || rep.Sugars[0].ConformationCode != 1 {
		t.Errorf("record not preserved: %+v", rep.Sugars[0])
	}
}

func TestReadReportRejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"malformed", `{"structure":`},
		{"no structure", `{"sugars":[]}`},
		{"null record", `{"structure":"X","sugars":[null]}`},
		{"no residue", `{"structure":"X","sugars":[{"denomination":"x"}]}`},
	}
	for _, tt := range tests {
		if _, err := ReadReport(strings.NewReader(tt.in)); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestWriteJSONL(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(FormatJSONL, &buf, sampleReport()); err != nil {
		t.Fatal(err)
	}
	sc := bufio.NewScanner(&buf)
	var lines []map[string]any
	for sc.Scan() {
		var m map[string]any
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("line %d: %v", len(lines)+1, err)
		}
		lines = append(lines, m)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0]["structure"] != "1BGC" || lines[0]["denomination"] != "beta-D-aldopyranose" {
		t.Errorf("first line = %v", lines[0])
	}
	if lines[1]["reason"] != "no supported ring" {
		t.Errorf("second line = %v", lines[1])
	}
}

func TestWriteTSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(FormatTSV, &buf, sampleReport()); err != nil {
		t.Fatal(err)
	}
	r := csv.NewReader(&buf)
	r.Comma = '\t'
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(TSVHeader, ",") {
		t.Errorf("header = %v", rows[0])
	}
	want := []string{"1BGC", "BGC/A/1", "", "true", "template", "beta-D-aldopyranose", "4C1", "1",
		"0.594", "3.74", "98.40", "0.001", "1.50", "true", ""}
	if strings.Join(rows[1], "|") != strings.Join(want, "|") {
		t.Errorf("row 1 =\n%v\nwant\n%v", rows[1], want)
	}
	if rows[2][3] != "false" || rows[2][8] != "" || rows[2][14] != "no supported ring" {
		t.Errorf("row 2 = %v", rows[2])
	}
}

func TestExportImport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	if err := ExportReport(path, FormatJSON, sampleReport()); err != nil {
		t.Fatal(err)
	}
	rep, err := ImportReport(path)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Sugars[1].Residue.String() != "XYZ/B/2" {
		t.Errorf("got %s", rep.Sugars[1].Residue)
	}
	if _, err := ImportReport(filepath.Join(t.TempDir(), "none.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestIsBrokenPipe(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("x"), false},
		{syscall.EPIPE, true},
		{fmt.Errorf("write: %w", io.ErrClosedPipe), true},
	}
	for _, tt := range tests {
		if got := IsBrokenPipe(tt.err); got != tt.want {
			t.Errorf("IsBrokenPipe(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
