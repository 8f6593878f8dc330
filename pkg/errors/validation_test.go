package errors

import (
	"strings"
	"testing"
)

func TestValidateResidueCode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"three letters", "NAG", false},
		{"digits", "0MK", false},
		{"five characters", "A2G12", false},
		{"single", "X", false},

		{"empty", "", true},
		{"lower case", "nag", true},
		{"too long", "ABCDEF", true},
		{"space", "NA G", true},
		{"punctuation", "NA-G", true},
		{"path traversal", "../", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateResidueCode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateResidueCode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidResidue) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidResidue)
			}
		})
	}

	if err := ValidateResidueCodes([]string{"NAG", "bad"}); err == nil {
		t.Error("ValidateResidueCodes accepted a lower-case code")
	}
	if err := ValidateResidueCodes(nil); err != nil {
		t.Errorf("ValidateResidueCodes(nil) = %v", err)
	}
}

func TestValidateChainID(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"A", false},
		{"b", false},
		{"1", false},
		{"AAA1", false},
		{"", true},
		{"ABCDE", true},
		{"A B", true},
		{"Ä", true},
	}
	for _, tt := range tests {
		err := ValidateChainID(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateChainID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidateAltLoc(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"", false},
		{"A", false},
		{"1", false},
		{" ", true},
		{"AB", true},
		{"\t", true},
	}
	for _, tt := range tests {
		err := ValidateAltLoc(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateAltLoc(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidateFormat(t *testing.T) {
	formats := []string{"table", "json", "jsonl", "tsv"}
	if err := ValidateFormat("jsonl", formats...); err != nil {
		t.Errorf("ValidateFormat(jsonl) = %v", err)
	}
	err := ValidateFormat("xml", formats...)
	if !Is(err, ErrCodeInvalidFormat) {
		t.Fatalf("ValidateFormat(xml) = %v, want INVALID_FORMAT", err)
	}
	if !strings.Contains(UserMessage(err), "table, json, jsonl, tsv") {
		t.Errorf("message %q does not list the formats", UserMessage(err))
	}
}

func TestValidateFilename(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"pdb", "1abc.pdb", false},
		{"gzip", "1abc.pdb.gz", false},
		{"zstd", "model.ent.zst", false},

		{"empty", "", true},
		{"with path /", "path/to/file.pdb", true},
		{"with path \\", "path\\to\\file.pdb", true},
		{"hidden file", ".model.pdb", true},
		{"control", "a\x01.pdb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilename(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFilename(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "reports/abc.json", false},
		{"nested", "a/b/c/d.json", false},
		{"dotfile", "a/.keep", false},

		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"traversal", "a/../../etc", true},
		{"backslash", "a\\b", true},
		{"null", "a\x00b", true},
		{"too long", strings.Repeat("a", 501), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		url     string
		schemes []string
		wantErr bool
	}{
		{"redis://localhost:6379/0", []string{"redis", "rediss"}, false},
		{"rediss://cache:6380", []string{"redis", "rediss"}, false},
		{"mongodb://localhost:27017", []string{"mongodb", "mongodb+srv"}, false},
		{"mongodb+srv://cluster.example", []string{"mongodb", "mongodb+srv"}, false},
		{"http://localhost", []string{"redis"}, true},
		{"", []string{"redis"}, true},
		{"redis:/localhost", []string{"redis"}, true},
	}
	for _, tt := range tests {
		err := ValidateURL(tt.url, tt.schemes...)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
		}
	}
}
