// Package refdb provides the reference table of known sugars: for each
// three-letter residue code, the expected ring atoms, handedness and anomer.
//
// The built-in table is embedded from sugars.toml and parsed once. Additional
// entries can be loaded from a TOML file of the same shape and merged on top:
//
//	[[sugar]]
//	code = "BGC"
//	name = "beta-D-glucopyranose"
//	ring = ["O5", "C1", "C2", "C3", "C4", "C5"]
//	handedness = "D"
//	anomer = "B"
//
// Tables are immutable after construction and safe for concurrent use.
package refdb

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

//go:embed sugars.toml
var builtin []byte

// Entry describes one reference sugar.
type Entry struct {
	Code       string   `toml:"code" json:"code"`
	Name       string   `toml:"name" json:"name"`
	Ring       []string `toml:"ring" json:"ring"`
	Handedness string   `toml:"handedness" json:"handedness"`
	Anomer     string   `toml:"anomer" json:"anomer"`
}

// Validate checks that the entry is usable for ring lookup and sanity checks.
func (e Entry) Validate() error {
	if strings.TrimSpace(e.Code) == "" {
		return fmt.Errorf("entry without code")
	}
	if n := len(e.Ring); n != 5 && n != 6 {
		return fmt.Errorf("%s: ring must list 5 or 6 atoms, got %d", e.Code, n)
	}
	switch e.Handedness {
	case "D", "L", "N":
	default:
		return fmt.Errorf("%s: handedness %q (want D, L or N)", e.Code, e.Handedness)
	}
	switch e.Anomer {
	case "A", "B", "N":
	default:
		return fmt.Errorf("%s: anomer %q (want A, B or N)", e.Code, e.Anomer)
	}
	return nil
}

// Table maps residue codes to reference entries.
type Table struct {
	entries map[string]Entry
}

type tableFile struct {
	Sugars []Entry `toml:"sugar"`
}

// Parse decodes a TOML reference table.
func Parse(data []byte) (*Table, error) {
	var f tableFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode reference table: %w", err)
	}
	t := &Table{entries: make(map[string]Entry, len(f.Sugars))}
	for _, e := range f.Sugars {
		e.Code = strings.TrimSpace(e.Code)
		if err := e.Validate(); err != nil {
			return nil, err
		}
		if _, dup := t.entries[e.Code]; dup {
			return nil, fmt.Errorf("duplicate entry %s", e.Code)
		}
		t.entries[e.Code] = e
	}
	return t, nil
}

// Load reads a TOML reference table from path.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the built-in table.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := Parse(builtin)
		if err != nil {
			panic(fmt.Sprintf("refdb: built-in table: %v", err))
		}
		defaultTable = t
	})
	return defaultTable
}

// Merge returns a new table holding the entries of t overridden by those of
// other. Neither input is modified.
func (t *Table) Merge(other *Table) *Table {
	out := &Table{entries: make(map[string]Entry, t.Len()+other.Len())}
	for k, e := range t.entries {
		out.entries[k] = e
	}
	for k, e := range other.entries {
		out.entries[k] = e
	}
	return out
}

// Lookup returns the entry for the trimmed residue code.
func (t *Table) Lookup(code string) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	e, ok := t.entries[strings.TrimSpace(code)]
	return e, ok
}

// Codes returns all codes in sorted order.
func (t *Table) Codes() []string {
	codes := make([]string, 0, len(t.entries))
	for k := range t.entries {
		codes = append(codes, k)
	}
	slices.Sort(codes)
	return codes
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}
