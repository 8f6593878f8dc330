package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/sugarcheck/pkg/buildinfo"
	"github.com/matzehuels/sugarcheck/pkg/cache"
	"github.com/matzehuels/sugarcheck/pkg/errors"
	"github.com/matzehuels/sugarcheck/pkg/model"
	"github.com/matzehuels/sugarcheck/pkg/observability"
	"github.com/matzehuels/sugarcheck/pkg/sugar"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store reports. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// AnalyzeFile reads the model at path and analyses it. opts.Source defaults
// to path.
func (r *Runner) AnalyzeFile(ctx context.Context, path string, opts Options) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "model %s", path)
		}
		return nil, fmt.Errorf("read model: %w", err)
	}
	if opts.Source == "" {
		opts.Source = path
	}
	return r.Analyze(ctx, data, opts)
}

// Analyze classifies every candidate residue of the model held in data.
// Reports are served from the cache unless opts.Refresh is set.
func (r *Runner) Analyze(ctx context.Context, data []byte, opts Options) (*Report, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	hash := cache.Hash(data)
	key := r.Keyer.ReportKey(hash, opts.ReportKeyOpts())

	if !opts.Refresh {
		if rep, ok := r.cachedReport(ctx, key); ok {
			rep.Stats.CacheHit = true
			opts.Logger.Debug("report from cache", "structure", rep.Structure, "key", key)
			return rep, nil
		}
	}

	rep := &Report{
		Source:    opts.Source,
		Hash:      hash,
		Version:   buildinfo.Version,
		CreatedAt: time.Now().UTC(),
		Options: &ReportSettings{
			AltLoc:     opts.AltLoc,
			AllAltLocs: opts.AllAltLocs,
			Residues:   opts.Residues,
			Chains:     opts.Chains,
		},
	}

	start := time.Now()
	s, err := r.Load(ctx, data, opts.Source)
	if err != nil {
		return nil, err
	}
	rep.Structure = s.ID
	rep.Stats.LoadTime = time.Since(start)
	rep.Stats.Atoms = s.AtomCount()
	rep.Stats.Residues = len(s.ResidueRefs())
	opts.Logger.Info("loaded model",
		"structure", s.ID,
		"atoms", rep.Stats.Atoms,
		"duration", rep.Stats.LoadTime)

	start = time.Now()
	recs, candidates, err := r.Classify(ctx, s, opts)
	if err != nil {
		return nil, err
	}
	rep.Sugars = recs
	rep.Stats.Candidates = candidates
	rep.Stats.ClassifyTime = time.Since(start)
	rep.Stats.count(recs)
	opts.Logger.Info("classified residues",
		"structure", s.ID,
		"candidates", candidates,
		"supported", rep.Stats.Supported,
		"sane", rep.Stats.Sane,
		"duration", rep.Stats.ClassifyTime)

	if buf, err := json.Marshal(rep); err == nil {
		if err := r.Cache.Set(ctx, key, buf, cache.TTLReport); err != nil {
			opts.Logger.Warn("cache write failed", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "report", len(buf))
		}
	}
	return rep, nil
}

func (r *Runner) cachedReport(ctx context.Context, key string) (*Report, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "report")
		return nil, false
	}
	var rep Report
	if err := json.Unmarshal(data, &rep); err != nil {
		observability.Cache().OnCacheMiss(ctx, "report")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "report")
	return &rep, true
}

// Load parses a model. name selects decompression and names the structure.
func (r *Runner) Load(ctx context.Context, data []byte, name string) (s *model.Structure, err error) {
	hooks := observability.Analysis()
	ctx = hooks.OnLoadStart(ctx, name)
	start := time.Now()
	defer func() {
		atoms := 0
		if s != nil {
			atoms = s.AtomCount()
		}
		hooks.OnLoadComplete(ctx, name, atoms, time.Since(start), err)
	}()

	if name == "" {
		name = "model.pdb"
	}
	s, err = model.Read(bytes.NewReader(data), name)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidModel, err, "load %s", name)
	}
	if s.AtomCount() == 0 {
		return nil, errors.New(errors.ErrCodeInvalidModel, "%s contains no atoms", name)
	}
	return s, nil
}

// Classify analyses the candidate residues of s on up to opts.Workers
// goroutines. Records keep the chain order of their residues. It returns the
// records and the number of candidate residues.
func (r *Runner) Classify(ctx context.Context, s *model.Structure, opts Options) (recs []*sugar.Sugar, candidates int, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, 0, err
	}

	if s.Cell.Valid() && !s.SpaceGroup.Known() {
		opts.Logger.Warn("unknown space group, symmetry images disabled", "structure", s.ID, "symbol", s.SpaceGroup.Name)
	}
	ix := model.NewNeighborIndex(s, model.DefaultImageMargin)
	c := sugar.NewClassifier(ix, sugar.WithTable(opts.RefDB), sugar.WithResidueCodes(opts.Residues...))

	var refs []model.ResidueRef
	for _, ref := range c.Candidates() {
		if opts.wantChain(s.Chains[ref.Chain].ID) {
			refs = append(refs, ref)
		}
	}

	hooks := observability.Analysis()
	ctx = hooks.OnClassifyStart(ctx, s.ID, len(refs))
	start := time.Now()
	defer func() {
		hooks.OnClassifyComplete(ctx, s.ID, len(recs), time.Since(start), err)
	}()
	opts.Logger.Debug("candidate residues", "structure", s.ID, "count", len(refs), "index", ix.Len())

	slots := make([][]*sugar.Sugar, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, ref := range refs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[i] = classifyResidue(c, ref, opts)
			for _, rec := range slots[i] {
				hooks.OnResidue(gctx, residueEvent(rec))
				if !rec.Supported {
					opts.Logger.Debug("unsupported residue", "residue", rec.Residue, "altloc", rec.AltLoc, "reason", rec.Reason)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, len(refs), errors.Wrap(errors.ErrCodeTimeout, err, "classification of %s interrupted", s.ID)
	}

	for _, slot := range slots {
		recs = append(recs, slot...)
	}
	return recs, len(refs), nil
}

func classifyResidue(c *sugar.Classifier, ref model.ResidueRef, opts Options) []*sugar.Sugar {
	switch {
	case opts.AllAltLocs:
		return c.ClassifyAll(ref)
	case opts.AltLoc != "":
		return []*sugar.Sugar{c.ClassifyAltLoc(ref, opts.AltLoc)}
	default:
		return []*sugar.Sugar{c.Classify(ref)}
	}
}

func residueEvent(rec *sugar.Sugar) observability.ResidueEvent {
	return observability.ResidueEvent{
		Residue:      rec.Residue.String(),
		AltLoc:       rec.AltLoc,
		Supported:    rec.Supported,
		Sane:         rec.Sane(),
		Denomination: rec.Denomination,
		Conformation: rec.Conformation,
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
