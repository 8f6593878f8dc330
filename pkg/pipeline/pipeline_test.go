package pipeline

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/sugarcheck/pkg/cache"
	"github.com/matzehuels/sugarcheck/pkg/errors"
)

func readFixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "bgc.pdb"))
	if err != nil {
		t.Fatal(err)
	}
	return data
}

// countingCache wraps a cache and counts writes.
type countingCache struct {
	cache.Cache
	mu   sync.Mutex
	sets int
}

func (c *countingCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	c.sets++
	c.mu.Unlock()
	return c.Cache.Set(ctx, key, data, ttl)
}

func newFileRunner(t *testing.T) (*Runner, *countingCache) {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cc := &countingCache{Cache: fc}
	return NewRunner(cc, nil, nil), cc
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		wantCode errors.Code
	}{
		{"defaults", Options{}, ""},
		{"altloc", Options{AltLoc: "B"}, ""},
		{"bad altloc", Options{AltLoc: "AB"}, errors.ErrCodeInvalidAltLoc},
		{"altloc with all", Options{AltLoc: "A", AllAltLocs: true}, errors.ErrCodeInvalidAltLoc},
		{"residues", Options{Residues: []string{"NAG", "XYZ"}}, ""},
		{"bad residue", Options{Residues: []string{"nag"}}, errors.ErrCodeInvalidResidue},
		{"bad chain", Options{Chains: []string{"A-1"}}, errors.ErrCodeInvalidChain},
		{"negative workers", Options{Workers: -1}, errors.ErrCodeInvalidInput},
		{"missing refdb", Options{RefDBPath: filepath.Join(t.TempDir(), "none.toml")}, errors.ErrCodeFileNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if tt.opts.Workers != DefaultWorkers || tt.opts.RefDB == nil || tt.opts.Logger == nil {
					t.Errorf("defaults not applied: %+v", tt.opts)
				}
				return
			}
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestOptionsWorkersCapped(t *testing.T) {
	opts := Options{Workers: 1000}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Workers != MaxWorkers {
		t.Errorf("Workers = %d, want %d", opts.Workers, MaxWorkers)
	}
}

func TestReportKeyOptsOrderInsensitive(t *testing.T) {
	a := Options{Residues: []string{"XYZ", "ABC"}, Chains: []string{"B", "A"}}
	b := Options{Residues: []string{"ABC", "XYZ"}, Chains: []string{"A", "B"}}
	k := cache.NewDefaultKeyer()
	if k.ReportKey("h", a.ReportKeyOpts()) != k.ReportKey("h", b.ReportKeyOpts()) {
		t.Error("option order should not change the report key")
	}
	if len(a.Residues) != 2 || a.Residues[0] != "XYZ" {
		t.Error("ReportKeyOpts must not reorder the caller's slices")
	}
	c := Options{AllAltLocs: true}
	if k.ReportKey("h", a.ReportKeyOpts()) == k.ReportKey("h", c.ReportKeyOpts()) {
		t.Error("different options should produce different keys")
	}
}

func TestAnalyze(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	rep, err := r.Analyze(context.Background(), readFixture(t), Options{Source: "bgc.pdb"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if rep.Structure != "1BGC" {
		t.Errorf("Structure = %q, want 1BGC", rep.Structure)
	}
	if rep.Hash != cache.Hash(readFixture(t)) {
		t.Error("Hash should be the content hash of the input")
	}
	want := Stats{Atoms: 15, Residues: 3, Candidates: 1, Sugars: 1, Supported: 1, Sane: 1}
	got := rep.Stats
	got.LoadTime, got.ClassifyTime = 0, 0
	if got != want {
		t.Errorf("Stats = %+v, want %+v", got, want)
	}

	rec := rep.Sugars[0]
	if rec.Residue.String() != "BGC/A/1" {
		t.Errorf("Residue = %s", rec.Residue)
	}
	if rec.Denomination != "beta-D-aldopyranose" || rec.Conformation != "4C1" {
		t.Errorf("got %s %s, want beta-D-aldopyranose 4C1", rec.Denomination, rec.Conformation)
	}
}

func TestAnalyzeChainFilter(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	rep, err := r.Analyze(context.Background(), readFixture(t), Options{Chains: []string{"B"}})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Stats.Candidates != 0 || len(rep.Sugars) != 0 {
		t.Errorf("chain B has no sugars, got %+v", rep.Stats)
	}
}

func TestAnalyzeExtraResidueCodes(t *testing.T) {
	data := bytes.ReplaceAll(readFixture(t), []byte("BGC"), []byte("ZZZ"))
	r := NewRunner(nil, nil, nil)

	rep, err := r.Analyze(context.Background(), data, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Stats.Candidates != 0 {
		t.Fatalf("unknown code should not be a candidate, got %d", rep.Stats.Candidates)
	}

	rep, err = r.Analyze(context.Background(), data, Options{Residues: []string{"ZZZ"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Sugars) != 1 || !rep.Sugars[0].Supported {
		t.Fatalf("expected one supported record, got %+v", rep.Stats)
	}
	if rep.Sugars[0].Sane() {
		t.Error("records without a reference entry are never sane")
	}
}

func TestAnalyzeUserRefDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sugars.toml")
	toml := `[[sugar]]
code = "BGC"
name = "mislabelled glucose"
ring = ["O5", "C1", "C2", "C3", "C4", "C5"]
handedness = "D"
anomer = "A"
`
	if err := os.WriteFile(path, []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}
	r := NewRunner(nil, nil, nil)
	rep, err := r.Analyze(context.Background(), readFixture(t), Options{RefDBPath: path})
	if err != nil {
		t.Fatal(err)
	}
	rec := rep.Sugars[0]
	if rec.Reference == nil || rec.Reference.Name != "mislabelled glucose" {
		t.Fatalf("user entry not used: %+v", rec.Reference)
	}
	if rec.Sanity.Anomer || rep.Stats.Sane != 0 {
		t.Error("beta ring against an alpha reference should fail the anomer check")
	}
}

func TestAnalyzeInvalidRefDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[[sugar]]\ncode = \"X\"\nring = [\"C1\"]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := NewRunner(nil, nil, nil).Analyze(context.Background(), readFixture(t), Options{RefDBPath: path})
	if !errors.Is(err, errors.ErrCodeInvalidRefDB) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeInvalidRefDB)
	}
}

func TestAnalyzeCache(t *testing.T) {
	r, cc := newFileRunner(t)
	data := readFixture(t)
	ctx := context.Background()

	first, err := r.Analyze(ctx, data, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if first.Stats.CacheHit {
		t.Error("first run should miss the cache")
	}

	second, err := r.Analyze(ctx, data, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !second.Stats.CacheHit {
		t.Error("second run should hit the cache")
	}
	if second.Sugars[0].Denomination != first.Sugars[0].Denomination {
		t.Error("cached report differs")
	}
	if cc.sets != 1 {
		t.Errorf("cache writes = %d, want 1", cc.sets)
	}

	third, err := r.Analyze(ctx, data, Options{Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if third.Stats.CacheHit || cc.sets != 2 {
		t.Errorf("refresh should bypass and rewrite the cache (hit=%v, sets=%d)", third.Stats.CacheHit, cc.sets)
	}

	other, err := r.Analyze(ctx, data, Options{AllAltLocs: true})
	if err != nil {
		t.Fatal(err)
	}
	if other.Stats.CacheHit {
		t.Error("different options should not share a cache entry")
	}
}

func TestAnalyzeFileNotFound(t *testing.T) {
	_, err := NewRunner(nil, nil, nil).AnalyzeFile(context.Background(), filepath.Join(t.TempDir(), "missing.pdb"), Options{})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
}

func TestAnalyzeFile(t *testing.T) {
	rep, err := NewRunner(nil, nil, nil).AnalyzeFile(context.Background(), filepath.Join("testdata", "bgc.pdb"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Source != filepath.Join("testdata", "bgc.pdb") {
		t.Errorf("Source = %q", rep.Source)
	}
}

func TestAnalyzeInvalidModel(t *testing.T) {
	_, err := NewRunner(nil, nil, nil).Analyze(context.Background(), []byte("REMARK nothing here\n"), Options{})
	if !errors.Is(err, errors.ErrCodeInvalidModel) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeInvalidModel)
	}
}

func TestClassifyCancelled(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	s, err := r.Load(context.Background(), readFixture(t), "bgc.pdb")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := r.Classify(ctx, s, Options{}); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestArtifactOptionsValidate(t *testing.T) {
	tests := []struct {
		name       string
		opts       ArtifactOptions
		wantFormat string
		wantErr    bool
	}{
		{"bondgraph default", ArtifactOptions{Kind: KindBondGraph, Residue: "BGC/A/1"}, "svg", false},
		{"projection default", ArtifactOptions{Kind: KindProjection, Residue: "BGC/A/1"}, "png", false},
		{"dot", ArtifactOptions{Kind: KindBondGraph, Format: "dot", Residue: "BGC/A/1"}, "dot", false},
		{"projection svg", ArtifactOptions{Kind: KindProjection, Format: "svg", Residue: "BGC/A/1"}, "", true},
		{"unknown kind", ArtifactOptions{Kind: "tower", Residue: "BGC/A/1"}, "", true},
		{"no residue", ArtifactOptions{Kind: KindBondGraph}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && tt.opts.Format != tt.wantFormat {
				t.Errorf("Format = %q, want %q", tt.opts.Format, tt.wantFormat)
			}
		})
	}
}

func TestArtifactBondGraph(t *testing.T) {
	r, cc := newFileRunner(t)
	data := readFixture(t)
	art := ArtifactOptions{Kind: KindBondGraph, Format: "dot", Residue: "BGC/A/1"}

	out, err := r.Artifact(context.Background(), data, Options{}, art)
	if err != nil {
		t.Fatal(err)
	}
	dot := string(out)
	if !strings.HasPrefix(dot, "graph G {") || !strings.Contains(dot, `"C1" -- "C2" [penwidth=3];`) {
		t.Errorf("unexpected DOT:\n%s", dot)
	}

	again, err := r.Artifact(context.Background(), data, Options{}, art)
	if err != nil {
		t.Fatal(err)
	}
	if string(again) != dot || cc.sets != 1 {
		t.Errorf("second call should be served from the cache (sets=%d)", cc.sets)
	}
}

func TestArtifactProjection(t *testing.T) {
	out, err := NewRunner(nil, nil, nil).Artifact(context.Background(), readFixture(t), Options{},
		ArtifactOptions{Kind: KindProjection, Residue: "BGC/A/1", Size: 160})
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 160 {
		t.Errorf("width = %d, want 160", img.Bounds().Dx())
	}
}

func TestArtifactUnknownResidue(t *testing.T) {
	_, err := NewRunner(nil, nil, nil).Artifact(context.Background(), readFixture(t), Options{},
		ArtifactOptions{Kind: KindBondGraph, Residue: "NAG/A/401"})
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeNotFound)
	}
}

func TestArtifactUnsupportedProjection(t *testing.T) {
	_, err := NewRunner(nil, nil, nil).Artifact(context.Background(), readFixture(t), Options{},
		ArtifactOptions{Kind: KindProjection, Residue: "HOH/B/100"})
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeUnsupported)
	}
}

func TestResidueViewAttachesSubstituents(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	s, err := r.Load(context.Background(), readFixture(t), "bgc.pdb")
	if err != nil {
		t.Fatal(err)
	}
	v, err := ResidueView(s, Options{}, "BGC/A/1", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Sites) != 12 || len(v.Bonds) != 12 {
		t.Errorf("got %d sites and %d bonds, want 12 and 12", len(v.Sites), len(v.Bonds))
	}
	if !v.Sugar.Supported {
		t.Errorf("residue unsupported: %s", v.Sugar.Reason)
	}
}
