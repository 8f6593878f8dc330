package model

import (
	"fmt"
	"strings"
)

// Atom is a single atom site read from a coordinate file.
type Atom struct {
	Serial    int     `json:"serial"`
	Name      string  `json:"name"`
	Element   string  `json:"element"`
	AltLoc    string  `json:"altloc,omitempty"`
	Occupancy float64 `json:"occupancy"`
	BFactor   float64 `json:"b_factor"`
	Pos       Vec3    `json:"pos"`
}

// IsHydrogen reports whether the atom is a hydrogen or deuterium.
func (a Atom) IsHydrogen() bool {
	return a.Element == "H" || a.Element == "D"
}

// Residue is an ordered group of atoms sharing a residue name and number.
type Residue struct {
	Name   string `json:"name"`
	Seq    int    `json:"seq"`
	ICode  string `json:"icode,omitempty"`
	HetAtm bool   `json:"hetatm,omitempty"`
	Atoms  []Atom `json:"atoms"`
}

// AltLocs returns the distinct alternate conformation tags in order of first
// appearance. Atoms without a tag are ignored.
func (r *Residue) AltLocs() []string {
	var out []string
	seen := make(map[string]bool)
	for _, a := range r.Atoms {
		if a.AltLoc == "" || seen[a.AltLoc] {
			continue
		}
		seen[a.AltLoc] = true
		out = append(out, a.AltLoc)
	}
	return out
}

// Chain is a named sequence of residues.
type Chain struct {
	ID       string    `json:"id"`
	Residues []Residue `json:"residues"`
}

// Structure is a single model of a macromolecular structure together with the
// crystal metadata needed to generate symmetry images.
type Structure struct {
	ID         string     `json:"id"`
	Chains     []Chain    `json:"chains"`
	Cell       Cell       `json:"cell"`
	SpaceGroup SpaceGroup `json:"space_group"`
}

// ResidueRef addresses a residue inside a Structure.
type ResidueRef struct {
	Chain   int
	Residue int
}

// AtomRef addresses an atom inside a Structure. Image 0 denotes the atom
// itself; Image k > 0 denotes the copy generated by space-group operator k-1,
// translated to the lattice position nearest the point of interest.
type AtomRef struct {
	Chain   int `json:"chain"`
	Residue int `json:"residue"`
	Atom    int `json:"atom"`
	Image   int `json:"image,omitempty"`
}

// InResidue reports whether r is an untransformed atom of residue res.
func (r AtomRef) InResidue(res ResidueRef) bool {
	return r.Image == 0 && r.Chain == res.Chain && r.Residue == res.Residue
}

// Residue returns the residue addressed by ref.
func (s *Structure) Residue(ref ResidueRef) *Residue {
	return &s.Chains[ref.Chain].Residues[ref.Residue]
}

// Atom returns the stored atom addressed by ref, ignoring its image index.
func (s *Structure) Atom(ref AtomRef) *Atom {
	return &s.Chains[ref.Chain].Residues[ref.Residue].Atoms[ref.Atom]
}

// ResidueRefs returns references to every residue in chain order.
func (s *Structure) ResidueRefs() []ResidueRef {
	var refs []ResidueRef
	for ci, c := range s.Chains {
		for ri := range c.Residues {
			refs = append(refs, ResidueRef{Chain: ci, Residue: ri})
		}
	}
	return refs
}

// AtomCount returns the number of atoms across all chains.
func (s *Structure) AtomCount() int {
	n := 0
	for _, c := range s.Chains {
		for _, r := range c.Residues {
			n += len(r.Atoms)
		}
	}
	return n
}

// ImageNear returns the position of the atom addressed by ref. For symmetry
// images the operator is applied in fractional space and the lattice copy
// nearest to near is chosen.
func (s *Structure) ImageNear(near Vec3, ref AtomRef) Vec3 {
	pos := s.Atom(ref).Pos
	if ref.Image == 0 || ref.Image > len(s.SpaceGroup.Ops) || !s.Cell.Valid() {
		return pos
	}
	f := s.SpaceGroup.Ops[ref.Image-1].Apply(s.Cell.Fractional(pos))
	f = LatticeCopyNear(f, s.Cell.Fractional(near))
	return s.Cell.Orthogonal(f)
}

// ResidueID is the printable identity of a residue.
type ResidueID struct {
	Chain string `json:"chain"`
	Name  string `json:"name"`
	Seq   int    `json:"seq"`
	ICode string `json:"icode,omitempty"`
}

// ResidueID returns the printable identity of the residue addressed by ref.
func (s *Structure) ResidueID(ref ResidueRef) ResidueID {
	r := s.Residue(ref)
	return ResidueID{
		Chain: s.Chains[ref.Chain].ID,
		Name:  r.Name,
		Seq:   r.Seq,
		ICode: r.ICode,
	}
}

// String formats the identity as "NAG/A/401" with an optional insertion code.
func (id ResidueID) String() string {
	return fmt.Sprintf("%s/%s/%d%s", strings.TrimSpace(id.Name), id.Chain, id.Seq, id.ICode)
}
