// Package cache stores serialized analysis reports and rendered artifacts.
//
// Three backends implement Cache: FileCache for the CLI (one JSON envelope
// per key below a directory), RedisCache for deployments that share results
// between server replicas, and NullCache when caching is disabled. Keys are
// built by a Keyer from the content hash of the input model and every option
// that changes the output, so a stale entry is never read after a flag or the
// reference table changes.
package cache

import (
	"context"
	"time"
)

// Time-to-live values per entry kind.
const (
	TTLReport   = 30 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key-value store with expiry.
type Cache interface {
	// Get returns the value stored under key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ReportKeyOpts are the options that change an analysis report.
type ReportKeyOpts struct {
	AltLoc     string   `json:"altloc,omitempty"`
	AllAltLocs bool     `json:"all_altlocs,omitempty"`
	Residues   []string `json:"residues,omitempty"`
	Chains     []string `json:"chains,omitempty"`
	RefDB      string   `json:"refdb,omitempty"` // hash of a user reference table
	Version    string   `json:"version,omitempty"`
}

// ArtifactKeyOpts are the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Kind    string `json:"kind"` // bondgraph or projection
	Format  string `json:"format"`
	Residue string `json:"residue"`
	AltLoc  string `json:"altloc,omitempty"`
	Size    int    `json:"size,omitempty"`
	// Hydrogens is set when hydrogen atoms are drawn.
	Hydrogens bool `json:"hydrogens,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	ReportKey(modelHash string, opts ReportKeyOpts) string
	ArtifactKey(modelHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces "report:<hash>" and "artifact:<hash>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ReportKey returns the key of the report for a model and options.
func (DefaultKeyer) ReportKey(modelHash string, opts ReportKeyOpts) string {
	return hashKey("report", modelHash, opts)
}

// ArtifactKey returns the key of a rendered artifact.
func (DefaultKeyer) ArtifactKey(modelHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", modelHash, opts)
}
