package sugar

import (
	"fmt"
	"strings"

	"github.com/matzehuels/sugarcheck/pkg/model"
	"github.com/matzehuels/sugarcheck/pkg/refdb"
)

// DenominationUnsupported is the denomination of records whose ring could not
// be established.
const DenominationUnsupported = "unsupported"

// Ring sources.
const (
	SourceTemplate = "template"
	SourceGraph    = "graph"
)

// Sugar is the classification record of one residue conformation.
type Sugar struct {
	Residue    model.ResidueID `json:"residue"`
	AltLoc     string          `json:"altloc,omitempty"`
	Supported  bool            `json:"supported"`
	Reason     string          `json:"reason,omitempty"`
	RingSource string          `json:"ring_source,omitempty"`

	Ring             Ring         `json:"ring,omitempty"`
	Denomination     string       `json:"denomination"`
	Anomer           Anomer       `json:"anomer"`
	Handedness       Handedness   `json:"handedness"`
	Conformation     string       `json:"conformation,omitempty"`
	ConformationCode Conformation `json:"conformation_code"`

	Pucker    *Pucker       `json:"pucker,omitempty"`
	Geometry  *RingGeometry `json:"geometry,omitempty"`
	Stereo    *Stereo       `json:"stereo,omitempty"`
	Sanity    Sanity        `json:"sanity"`
	Reference *refdb.Entry  `json:"reference,omitempty"`
}

// Sane reports whether every sanity flag passed.
func (s *Sugar) Sane() bool { return s.Sanity.Sane }

// Denomination formats the sugar name from its ring, anomer and handedness,
// e.g. "beta-D-aldopyranose".
func Denomination(r Ring, a Anomer, h Handedness) string {
	if !r.Supported() {
		return DenominationUnsupported
	}
	kind := "keto"
	if strings.Contains(r[1].Name, "C1") {
		kind = "aldo"
	}
	form := "pyranose"
	if len(r) == 5 {
		form = "furanose"
	}
	return fmt.Sprintf("%s-%s-%s%s", a, h, kind, form)
}

// Classifier classifies sugar residues of one structure. It is immutable
// after construction and safe for concurrent use.
type Classifier struct {
	nb    Neighborhood
	table *refdb.Table
	extra map[string]bool
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithTable sets the reference table. The default is refdb.Default().
func WithTable(t *refdb.Table) Option {
	return func(c *Classifier) { c.table = t }
}

// WithResidueCodes adds residue codes that are analysed even without a
// reference entry, using the bond-graph ring.
func WithResidueCodes(codes ...string) Option {
	return func(c *Classifier) {
		for _, code := range codes {
			if code = strings.TrimSpace(code); code != "" {
				c.extra[code] = true
			}
		}
	}
}

// NewClassifier returns a classifier over the structure behind nb.
func NewClassifier(nb Neighborhood, opts ...Option) *Classifier {
	c := &Classifier{nb: nb, table: refdb.Default(), extra: make(map[string]bool)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Structure returns the classified structure.
func (c *Classifier) Structure() *model.Structure { return c.nb.Structure() }

// IsCandidate reports whether a residue is analysed: its code is in the
// reference table or was added with WithResidueCodes.
func (c *Classifier) IsCandidate(r *model.Residue) bool {
	code := strings.TrimSpace(r.Name)
	if c.extra[code] {
		return true
	}
	_, ok := c.table.Lookup(code)
	return ok
}

// Candidates returns references to every candidate residue in chain order.
func (c *Classifier) Candidates() []model.ResidueRef {
	s := c.nb.Structure()
	var out []model.ResidueRef
	for _, ref := range s.ResidueRefs() {
		if c.IsCandidate(s.Residue(ref)) {
			out = append(out, ref)
		}
	}
	return out
}

// Classify analyses the residue in its first alternate conformation.
func (c *Classifier) Classify(ref model.ResidueRef) *Sugar {
	return c.ClassifyAltLoc(ref, DefaultAltLoc(c.nb.Structure().Residue(ref)))
}

// ClassifyAll returns one record per alternate conformation of the residue,
// or a single record when it has none.
func (c *Classifier) ClassifyAll(ref model.ResidueRef) []*Sugar {
	tags := c.nb.Structure().Residue(ref).AltLocs()
	if len(tags) == 0 {
		return []*Sugar{c.ClassifyAltLoc(ref, "")}
	}
	out := make([]*Sugar, 0, len(tags))
	for _, tag := range tags {
		out = append(out, c.ClassifyAltLoc(ref, tag))
	}
	return out
}

// ClassifyAltLoc analyses the residue in conformation altLoc. It never fails:
// residues without a usable ring yield an unsupported record.
func (c *Classifier) ClassifyAltLoc(ref model.ResidueRef, altLoc string) *Sugar {
	s := c.nb.Structure()
	res := s.Residue(ref)
	rec := &Sugar{
		Residue:      s.ResidueID(ref),
		AltLoc:       altLoc,
		Denomination: DenominationUnsupported,
		Anomer:       AnomerUnknown,
		Handedness:   HandednessUnknown,
	}

	a := NewAnalysis(c.nb, ref, altLoc)
	var (
		ring Ring
		err  error
	)
	if entry, ok := c.table.Lookup(res.Name); ok {
		rec.Reference = &entry
		rec.RingSource = SourceTemplate
		ring, err = a.RingFromTemplate(entry.Ring)
	} else {
		rec.RingSource = SourceGraph
		ring, err = a.FindRing()
	}
	if err != nil {
		rec.Reason = err.Error()
		return rec
	}

	st := a.Locate()
	pr, err := Analyze(ring, st)
	if err != nil {
		rec.Reason = err.Error()
		return rec
	}
	geom := Measure(ring)

	rec.Supported = true
	rec.Ring = ring
	rec.Stereo = &st
	rec.Pucker = &pr.Pucker
	rec.Geometry = &geom
	rec.Anomer = pr.Anomer
	rec.Handedness = pr.Handedness
	rec.ConformationCode = pr.Pucker.Conformation
	rec.Conformation = pr.Pucker.Conformation.String()
	rec.Denomination = Denomination(ring, pr.Anomer, pr.Handedness)
	rec.Sanity = Validate(ring, geom, pr.Anomer, pr.Handedness, rec.Reference)
	return rec
}
