package sugar

import (
	"strconv"
	"strings"

	"github.com/matzehuels/sugarcheck/pkg/model"
)

// Neighborhood answers radius queries over a structure. References may denote
// symmetry images (AtomRef.Image > 0). *model.NeighborIndex implements it.
type Neighborhood interface {
	Structure() *model.Structure
	Near(p model.Vec3, radius float64) []model.AtomRef
}

var _ Neighborhood = (*model.NeighborIndex)(nil)

// Site is an atom resolved into the frame of the residue under analysis. For
// symmetry images Pos is the transformed position, not the stored one.
type Site struct {
	Ref       model.AtomRef `json:"ref"`
	Name      string        `json:"name"`
	Element   string        `json:"element"`
	AltLoc    string        `json:"altloc,omitempty"`
	Occupancy float64       `json:"occupancy"`
	Pos       model.Vec3    `json:"pos"`
}

// IsCarbon reports whether the site is a carbon atom.
func (s Site) IsCarbon() bool { return s.Element == "C" }

// IsHydrogen reports whether the site is a hydrogen or deuterium atom.
func (s Site) IsHydrogen() bool { return s.Element == "H" || s.Element == "D" }

// Same reports whether s and o denote the same atom copy.
func (s Site) Same(o Site) bool { return s.Ref == o.Ref }

// Label formats the site as its atom name, with the alternate tag and image
// index when present, e.g. "O1", "C1.A" or "O4@2".
func (s Site) Label() string {
	var b strings.Builder
	b.WriteString(s.Name)
	if s.AltLoc != "" {
		b.WriteByte('.')
		b.WriteString(s.AltLoc)
	}
	if s.Ref.Image > 0 {
		b.WriteByte('@')
		b.WriteString(strconv.Itoa(s.Ref.Image))
	}
	return b.String()
}

// Analysis is the per-residue state of one classification: the residue, the
// alternate conformation analysed and, once found, its ring.
type Analysis struct {
	nb     Neighborhood
	s      *model.Structure
	res    model.ResidueRef
	altLoc string
	ring   Ring
}

// NewAnalysis prepares the analysis of residue res in conformation altLoc.
// An empty altLoc admits every atom; DefaultAltLoc picks the residue's first
// tag.
func NewAnalysis(nb Neighborhood, res model.ResidueRef, altLoc string) *Analysis {
	return &Analysis{nb: nb, s: nb.Structure(), res: res, altLoc: altLoc}
}

// DefaultAltLoc returns the first alternate tag used in the residue, or "".
func DefaultAltLoc(r *model.Residue) string {
	if tags := r.AltLocs(); len(tags) > 0 {
		return tags[0]
	}
	return ""
}

// AltLoc returns the analysed conformation.
func (a *Analysis) AltLoc() string { return a.altLoc }

// Residue returns the residue under analysis.
func (a *Analysis) Residue() *model.Residue { return a.s.Residue(a.res) }

// Ring returns the ring set by FindRing, RingFromTemplate or SetRing.
func (a *Analysis) Ring() Ring { return a.ring }

// SetRing fixes the ring used by the stereo search.
func (a *Analysis) SetRing(r Ring) { a.ring = r }

// admits reports whether an atom tagged altLoc belongs to the analysed
// conformation.
func (a *Analysis) admits(altLoc string) bool {
	return altLoc == "" || a.altLoc == "" || altLoc == a.altLoc
}

// Site resolves ref into a Site. Symmetry images are placed at the lattice
// copy nearest to near.
func (a *Analysis) Site(ref model.AtomRef, near model.Vec3) Site {
	at := a.s.Atom(ref)
	return Site{
		Ref:       ref,
		Name:      strings.TrimSpace(at.Name),
		Element:   at.Element,
		AltLoc:    at.AltLoc,
		Occupancy: at.Occupancy,
		Pos:       a.s.ImageNear(near, ref),
	}
}

// residueSites returns the admitted atoms of the residue in file order.
func (a *Analysis) residueSites() []Site {
	r := a.Residue()
	out := make([]Site, 0, len(r.Atoms))
	for i, at := range r.Atoms {
		if !a.admits(at.AltLoc) {
			continue
		}
		ref := model.AtomRef{Chain: a.res.Chain, Residue: a.res.Residue, Atom: i}
		out = append(out, a.Site(ref, at.Pos))
	}
	return out
}

// neighbors returns admitted, non-hydrogen sites within stereo reach of c,
// symmetry images included.
func (a *Analysis) neighbors(c Site) []Site {
	var out []Site
	for _, ref := range a.nb.Near(c.Pos, StereoReachMax) {
		if ref == c.Ref {
			continue
		}
		at := a.s.Atom(ref)
		if at.IsHydrogen() || !a.admits(at.AltLoc) {
			continue
		}
		n := a.Site(ref, c.Pos)
		if !inStereoReach(c.Pos, n.Pos) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// bondedInResidue returns the admitted residue atoms bonded to c.
func (a *Analysis) bondedInResidue(c Site) []Site {
	var out []Site
	for _, ref := range a.nb.Near(c.Pos, StereoReachMax) {
		if ref == c.Ref || !ref.InResidue(a.res) {
			continue
		}
		at := a.s.Atom(ref)
		if at.IsHydrogen() || !a.admits(at.AltLoc) {
			continue
		}
		n := a.Site(ref, c.Pos)
		if Bonded(c, n) {
			out = append(out, n)
		}
	}
	return out
}
