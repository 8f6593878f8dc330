// Package pipeline provides the analysis pipeline shared by the CLI and the
// HTTP server.
//
// A run loads a coordinate model, finds the candidate sugar residues and
// classifies each of them. The resulting Report is cached under the content
// hash of the model and every option that changes it, so repeated runs over
// the same file are answered from the cache.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	report, err := runner.AnalyzeFile(ctx, "1abc.pdb.gz", pipeline.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, rec := range report.Sugars {
//	    fmt.Println(rec.Residue, rec.Denomination, rec.Conformation)
//	}
//
// Rendered views of a single residue go through the same cache:
//
//	svg, err := runner.Artifact(ctx, data, pipeline.ArtifactOptions{
//	    Kind:    pipeline.KindBondGraph,
//	    Format:  "svg",
//	    Residue: "BGC/A/1",
//	})
package pipeline

import (
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sugarcheck/pkg/buildinfo"
	"github.com/matzehuels/sugarcheck/pkg/cache"
	"github.com/matzehuels/sugarcheck/pkg/errors"
	"github.com/matzehuels/sugarcheck/pkg/refdb"
	"github.com/matzehuels/sugarcheck/pkg/sugar"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultWorkers is the number of residues classified concurrently.
	DefaultWorkers = 4

	// MaxWorkers bounds Workers for requests coming from the server.
	MaxWorkers = 64
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for an analysis run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Source names the input. Its suffix selects decompression and its base
	// name becomes the structure ID when the model has none.
	Source string `json:"source,omitempty"`

	// AltLoc analyses every residue in this alternate conformation instead
	// of the residue's first one.
	AltLoc string `json:"altloc,omitempty"`
	// AllAltLocs emits one record per alternate conformation.
	AllAltLocs bool `json:"all_altlocs,omitempty"`

	// Residues adds residue codes analysed with the bond-graph ring even
	// though the reference table does not know them.
	Residues []string `json:"residues,omitempty"`
	// Chains restricts the analysis to these chain IDs.
	Chains []string `json:"chains,omitempty"`

	Workers int  `json:"workers,omitempty"`
	Refresh bool `json:"refresh,omitempty"`

	// RefDBPath is a TOML reference table merged over the built-in one.
	RefDBPath string `json:"-"`

	// Runtime options (not serialized)
	RefDB  *refdb.Table `json:"-"`
	Logger *log.Logger  `json:"-"`

	refdbHash string
	validated bool
}

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := errors.ValidateAltLoc(o.AltLoc); err != nil {
		return err
	}
	if o.AltLoc != "" && o.AllAltLocs {
		return errors.New(errors.ErrCodeInvalidAltLoc, "altloc and all-altlocs are mutually exclusive")
	}
	if err := errors.ValidateResidueCodes(o.Residues); err != nil {
		return err
	}
	for _, c := range o.Chains {
		if err := errors.ValidateChainID(c); err != nil {
			return err
		}
	}
	if o.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "workers must be positive, got %d", o.Workers)
	}
	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}
	if o.Workers > MaxWorkers {
		o.Workers = MaxWorkers
	}

	if err := o.loadRefDB(); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Copy returns a copy of o whose defaults are applied again by the next
// ValidateAndSetDefaults. Slices are shared with o.
func (o Options) Copy() Options {
	o.validated = false
	return o
}

func (o *Options) loadRefDB() error {
	if o.RefDBPath == "" {
		if o.RefDB == nil {
			o.RefDB = refdb.Default()
		}
		return nil
	}
	data, err := os.ReadFile(o.RefDBPath)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "reference table %s", o.RefDBPath)
		}
		return fmt.Errorf("read reference table: %w", err)
	}
	user, err := refdb.Parse(data)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRefDB, err, "reference table %s", o.RefDBPath)
	}
	base := o.RefDB
	if base == nil {
		base = refdb.Default()
	}
	o.RefDB = base.Merge(user)
	o.refdbHash = cache.Hash(data)
	return nil
}

// ReportKeyOpts returns cache key options for the report of these options.
func (o *Options) ReportKeyOpts() cache.ReportKeyOpts {
	residues := slices.Clone(o.Residues)
	slices.Sort(residues)
	chains := slices.Clone(o.Chains)
	slices.Sort(chains)
	return cache.ReportKeyOpts{
		AltLoc:     o.AltLoc,
		AllAltLocs: o.AllAltLocs,
		Residues:   residues,
		Chains:     chains,
		RefDB:      o.refdbHash,
		Version:    buildinfo.Version,
	}
}

// wantChain reports whether chain id passes the Chains filter.
func (o *Options) wantChain(id string) bool {
	return len(o.Chains) == 0 || slices.Contains(o.Chains, id)
}

// =============================================================================
// Report
// =============================================================================

// Report is the result of one analysis run.
type Report struct {
	// ID is assigned by a report store; empty otherwise.
	ID        string          `json:"id,omitempty"`
	Structure string          `json:"structure"`
	Source    string          `json:"source,omitempty"`
	Hash      string          `json:"hash"`
	Version   string          `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	Sugars    []*sugar.Sugar  `json:"sugars"`
	Stats     Stats           `json:"stats"`
	Options   *ReportSettings `json:"options,omitempty"`
}

// ReportSettings records the options a report was produced with.
type ReportSettings struct {
	AltLoc     string   `json:"altloc,omitempty"`
	AllAltLocs bool     `json:"all_altlocs,omitempty"`
	Residues   []string `json:"residues,omitempty"`
	Chains     []string `json:"chains,omitempty"`
}

// Stats contains run statistics.
type Stats struct {
	Atoms        int           `json:"atoms"`
	Residues     int           `json:"residues"`
	Candidates   int           `json:"candidates"`
	Sugars       int           `json:"sugars"`
	Supported    int           `json:"supported"`
	Sane         int           `json:"sane"`
	LoadTime     time.Duration `json:"load_time"`
	ClassifyTime time.Duration `json:"classify_time"`
	CacheHit     bool          `json:"cache_hit"`
}

func (s *Stats) count(recs []*sugar.Sugar) {
	s.Sugars = len(recs)
	s.Supported, s.Sane = 0, 0
	for _, r := range recs {
		if r.Supported {
			s.Supported++
		}
		if r.Sane() {
			s.Sane++
		}
	}
}
