package pipeline

import (
	"context"
	"slices"

	"github.com/matzehuels/sugarcheck/pkg/cache"
	"github.com/matzehuels/sugarcheck/pkg/errors"
	"github.com/matzehuels/sugarcheck/pkg/model"
	"github.com/matzehuels/sugarcheck/pkg/observability"
	"github.com/matzehuels/sugarcheck/pkg/render/bondgraph"
	"github.com/matzehuels/sugarcheck/pkg/render/projection"
	"github.com/matzehuels/sugarcheck/pkg/sugar"
)

// Artifact kinds.
const (
	KindBondGraph  = "bondgraph"
	KindProjection = "projection"
)

// ArtifactFormats lists the output formats per artifact kind. The first one
// is the default.
var ArtifactFormats = map[string][]string{
	KindBondGraph:  {bondgraph.FormatSVG, bondgraph.FormatDOT, bondgraph.FormatPNG},
	KindProjection: {"png"},
}

// ArtifactOptions selects one rendered view of one residue.
type ArtifactOptions struct {
	Kind   string `json:"kind"`
	Format string `json:"format,omitempty"`
	// Residue is the printable residue identity, e.g. "NAG/A/401".
	Residue   string `json:"residue"`
	AltLoc    string `json:"altloc,omitempty"`
	Size      int    `json:"size,omitempty"`
	Hydrogens bool   `json:"hydrogens,omitempty"`
}

// Validate checks the options and applies the default format.
func (o *ArtifactOptions) Validate() error {
	formats, ok := ArtifactFormats[o.Kind]
	if !ok {
		return errors.New(errors.ErrCodeInvalidInput, "unknown artifact kind %q", o.Kind)
	}
	if o.Format == "" {
		o.Format = formats[0]
	}
	if err := errors.ValidateFormat(o.Format, formats...); err != nil {
		return err
	}
	if o.Residue == "" {
		return errors.New(errors.ErrCodeInvalidResidue, "residue is required")
	}
	return errors.ValidateAltLoc(o.AltLoc)
}

func (o *ArtifactOptions) keyOpts() cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Kind:      o.Kind,
		Format:    o.Format,
		Residue:   o.Residue,
		AltLoc:    o.AltLoc,
		Size:      o.Size,
		Hydrogens: o.Hydrogens,
	}
}

// Artifact renders one view of a residue of the model held in data. Results
// are cached under the model hash, the artifact options and the user
// reference table, if any.
func (r *Runner) Artifact(ctx context.Context, data []byte, opts Options, art ArtifactOptions) ([]byte, error) {
	if err := art.Validate(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	modelHash := cache.Hash(data)
	if opts.refdbHash != "" {
		modelHash = cache.Hash([]byte(modelHash + opts.refdbHash))
	}
	key := r.Keyer.ArtifactKey(modelHash, art.keyOpts())
	if !opts.Refresh {
		if out, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return out, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	s, err := r.Load(ctx, data, opts.Source)
	if err != nil {
		return nil, err
	}
	out, err := RenderArtifact(ctx, s, opts, art)
	if err != nil {
		return nil, err
	}

	if err := r.Cache.Set(ctx, key, out, cache.TTLArtifact); err != nil {
		opts.Logger.Warn("cache write failed", "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "artifact", len(out))
	}
	return out, nil
}

// RenderArtifact renders one view of a residue of a loaded structure without
// caching.
func RenderArtifact(ctx context.Context, s *model.Structure, opts Options, art ArtifactOptions) ([]byte, error) {
	if err := art.Validate(); err != nil {
		return nil, err
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	v, err := ResidueView(s, opts, art.Residue, art.AltLoc)
	if err != nil {
		return nil, err
	}

	switch art.Kind {
	case KindProjection:
		out, err := projection.Render(v.Sites, v.Bonds, v.Sugar, projection.Options{
			Size:      art.Size,
			Hydrogens: art.Hydrogens,
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeUnsupported, err, "project %s", art.Residue)
		}
		return out, nil
	default:
		dot := bondgraph.ToDOT(v.Sites, v.Bonds, v.Sugar, bondgraph.Options{Hydrogens: art.Hydrogens})
		out, err := bondgraph.Render(ctx, dot, art.Format)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", art.Residue)
		}
		return out, nil
	}
}

// View is a classified residue together with its bond graph. Stereo
// substituents from other residues or symmetry images are appended to Sites
// and bonded to their carbon.
type View struct {
	Sugar *sugar.Sugar
	Sites []sugar.Site
	Bonds []sugar.Bond
}

// ResidueView classifies the residue named id ("NAG/A/401") in conformation
// altLoc, or in its first conformation when altLoc is empty.
func ResidueView(s *model.Structure, opts Options, id, altLoc string) (*View, error) {
	ref, err := FindResidue(s, id)
	if err != nil {
		return nil, err
	}
	if altLoc == "" {
		altLoc = opts.AltLoc
	}
	if altLoc == "" {
		altLoc = sugar.DefaultAltLoc(s.Residue(ref))
	}

	ix := model.NewNeighborIndex(s, model.DefaultImageMargin)
	c := sugar.NewClassifier(ix, sugar.WithTable(opts.RefDB), sugar.WithResidueCodes(opts.Residues...))
	rec := c.ClassifyAltLoc(ref, altLoc)

	sites, bonds := sugar.NewAnalysis(ix, ref, altLoc).ResidueBonds()
	v := &View{Sugar: rec, Sites: sites, Bonds: bonds}
	if rec.Stereo != nil {
		for _, p := range []sugar.StereoPair{rec.Stereo.Anomeric, rec.Stereo.Configurational, rec.Stereo.Terminal} {
			v.attach(p)
		}
	}
	return v, nil
}

// attach adds a substituent that is not part of the residue's own atoms.
func (v *View) attach(p sugar.StereoPair) {
	if !p.Complete() {
		return
	}
	find := func(s sugar.Site) int {
		return slices.IndexFunc(v.Sites, func(o sugar.Site) bool { return o.Same(s) })
	}
	ci := find(*p.Carbon)
	if ci < 0 || find(*p.Substituent) >= 0 {
		return
	}
	v.Sites = append(v.Sites, *p.Substituent)
	v.Bonds = append(v.Bonds, sugar.Bond{I: ci, J: len(v.Sites) - 1})
}

// FindResidue returns the residue whose printable identity is id.
func FindResidue(s *model.Structure, id string) (model.ResidueRef, error) {
	for _, ref := range s.ResidueRefs() {
		if s.ResidueID(ref).String() == id {
			return ref, nil
		}
	}
	return model.ResidueRef{}, errors.New(errors.ErrCodeNotFound, "residue %s not found in %s", id, s.ID)
}
