package model

import (
	"cmp"
	"math"
	"slices"
)

const (
	// DefaultImageMargin is how far beyond the model's bounding box symmetry
	// images are kept in the index, in Ångström.
	DefaultImageMargin = 5.0

	binSize = 2.0

	// maxImageShifts bounds the lattice translations tried per operator. Cells
	// that are tiny compared to the model (placeholder CRYST1 records) exceed it
	// and are not expanded.
	maxImageShifts = 343
)

// NeighborIndex answers radius queries over a structure and the symmetry
// images surrounding it. It is immutable after construction and safe for
// concurrent readers.
type NeighborIndex struct {
	s    *Structure
	bins map[[3]int][]indexEntry
}

type indexEntry struct {
	ref AtomRef
	pos Vec3
}

// NewNeighborIndex indexes every atom of s. When s carries a valid cell,
// copies generated by its space-group operators and lattice translations are
// indexed too, as long as they land within margin of the model's bounding box.
func NewNeighborIndex(s *Structure, margin float64) *NeighborIndex {
	ix := &NeighborIndex{s: s, bins: make(map[[3]int][]indexEntry)}

	var refs []AtomRef
	var pos []Vec3
	for ci, c := range s.Chains {
		for ri, r := range c.Residues {
			for ai, a := range r.Atoms {
				ref := AtomRef{Chain: ci, Residue: ri, Atom: ai}
				refs = append(refs, ref)
				pos = append(pos, a.Pos)
				ix.insert(ref, a.Pos)
			}
		}
	}
	if len(pos) == 0 || !s.Cell.Valid() || len(s.SpaceGroup.Ops) == 0 {
		return ix
	}

	lo, hi := bounds(pos)
	pad := Vec3{margin, margin, margin}
	lo, hi = lo.Sub(pad), hi.Add(pad)
	tlo, thi := ix.fractionalBox(lo, hi)

	frac := make([]Vec3, len(pos))
	for i, p := range pos {
		frac[i] = s.Cell.Fractional(p)
	}

	img := make([]Vec3, len(frac))
	for k, op := range s.SpaceGroup.Ops {
		for i, f := range frac {
			img[i] = op.Apply(f)
		}
		ilo, ihi := bounds(img)
		nx := math.Floor(thi.X-ilo.X) - math.Ceil(tlo.X-ihi.X) + 1
		ny := math.Floor(thi.Y-ilo.Y) - math.Ceil(tlo.Y-ihi.Y) + 1
		nz := math.Floor(thi.Z-ilo.Z) - math.Ceil(tlo.Z-ihi.Z) + 1
		if nx*ny*nz > maxImageShifts {
			continue
		}
		for tx := math.Ceil(tlo.X - ihi.X); tx <= math.Floor(thi.X-ilo.X); tx++ {
			for ty := math.Ceil(tlo.Y - ihi.Y); ty <= math.Floor(thi.Y-ilo.Y); ty++ {
				for tz := math.Ceil(tlo.Z - ihi.Z); tz <= math.Floor(thi.Z-ilo.Z); tz++ {
					shift := Vec3{tx, ty, tz}
					if op.IsIdentity() && shift == (Vec3{}) {
						continue
					}
					for i, f := range img {
						p := s.Cell.Orthogonal(f.Add(shift))
						if inside(p, lo, hi) {
							ref := refs[i]
							ref.Image = k + 1
							ix.insert(ref, p)
						}
					}
				}
			}
		}
	}
	return ix
}

// Near returns references to all atoms and symmetry images within radius of
// p. The result is sorted by image, chain, residue and atom index.
func (ix *NeighborIndex) Near(p Vec3, radius float64) []AtomRef {
	var out []AtomRef
	lo := binOf(p.Sub(Vec3{radius, radius, radius}))
	hi := binOf(p.Add(Vec3{radius, radius, radius}))
	r2 := radius * radius
	for x := lo[0]; x <= hi[0]; x++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for z := lo[2]; z <= hi[2]; z++ {
				for _, e := range ix.bins[[3]int{x, y, z}] {
					d := e.pos.Sub(p)
					if d.Dot(d) <= r2 {
						out = append(out, e.ref)
					}
				}
			}
		}
	}
	slices.SortFunc(out, compareRefs)
	return slices.Compact(out)
}

// Structure returns the indexed structure.
func (ix *NeighborIndex) Structure() *Structure {
	return ix.s
}

// Len returns the number of indexed sites, symmetry images included.
func (ix *NeighborIndex) Len() int {
	n := 0
	for _, b := range ix.bins {
		n += len(b)
	}
	return n
}

func (ix *NeighborIndex) insert(ref AtomRef, p Vec3) {
	k := binOf(p)
	ix.bins[k] = append(ix.bins[k], indexEntry{ref: ref, pos: p})
}

// fractionalBox returns the fractional bounds of the orthogonal box [lo, hi].
func (ix *NeighborIndex) fractionalBox(lo, hi Vec3) (Vec3, Vec3) {
	corners := make([]Vec3, 0, 8)
	for _, x := range []float64{lo.X, hi.X} {
		for _, y := range []float64{lo.Y, hi.Y} {
			for _, z := range []float64{lo.Z, hi.Z} {
				corners = append(corners, ix.s.Cell.Fractional(Vec3{x, y, z}))
			}
		}
	}
	return bounds(corners)
}

func compareRefs(a, b AtomRef) int {
	return cmp.Or(
		cmp.Compare(a.Image, b.Image),
		cmp.Compare(a.Chain, b.Chain),
		cmp.Compare(a.Residue, b.Residue),
		cmp.Compare(a.Atom, b.Atom),
	)
}

func binOf(p Vec3) [3]int {
	return [3]int{
		int(math.Floor(p.X / binSize)),
		int(math.Floor(p.Y / binSize)),
		int(math.Floor(p.Z / binSize)),
	}
}

func bounds(ps []Vec3) (Vec3, Vec3) {
	lo, hi := ps[0], ps[0]
	for _, p := range ps[1:] {
		lo = Vec3{math.Min(lo.X, p.X), math.Min(lo.Y, p.Y), math.Min(lo.Z, p.Z)}
		hi = Vec3{math.Max(hi.X, p.X), math.Max(hi.Y, p.Y), math.Max(hi.Z, p.Z)}
	}
	return lo, hi
}

func inside(p, lo, hi Vec3) bool {
	return p.X >= lo.X && p.X <= hi.X &&
		p.Y >= lo.Y && p.Y <= hi.Y &&
		p.Z >= lo.Z && p.Z <= hi.Z
}
