package sugar

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/matzehuels/sugarcheck/pkg/model"
)

var (
	// ErrUnsupportedRing is returned when no 5- or 6-membered ring closes.
	ErrUnsupportedRing = errors.New("no 5- or 6-membered ring")

	// ErrMissingRingAtom is returned when a template names an atom that is
	// absent from the residue.
	ErrMissingRingAtom = errors.New("ring atom missing")
)

// Ring is an ordered ring in canonical order: the ring oxygen at index 0 and
// the anomeric carbon at index 1. Consecutive sites, including the last and
// the first, are bonded.
type Ring []Site

// Size returns the number of ring atoms.
func (r Ring) Size() int { return len(r) }

// Supported reports whether the ring is a furanose or pyranose.
func (r Ring) Supported() bool { return len(r) == 5 || len(r) == 6 }

// Contains reports whether s is one of the ring atoms.
func (r Ring) Contains(s Site) bool {
	return r.Index(s) >= 0
}

// Index returns the ring position of s, or -1.
func (r Ring) Index(s Site) int {
	return slices.IndexFunc(r, s.Same)
}

// Last returns the last ring atom.
func (r Ring) Last() Site { return r[len(r)-1] }

// Names returns the ring atom names.
func (r Ring) Names() []string {
	out := make([]string, len(r))
	for i, s := range r {
		out[i] = s.Name
	}
	return out
}

// Positions returns the ring atom coordinates.
func (r Ring) Positions() []model.Vec3 {
	out := make([]model.Vec3, len(r))
	for i, s := range r {
		out[i] = s.Pos
	}
	return out
}

// Bonded reports whether every consecutive pair of ring atoms, the closing
// pair included, passes the bond test.
func (r Ring) Bonded() bool {
	for i := range r {
		if !Bonded(r[i], r[(i+1)%len(r)]) {
			return false
		}
	}
	return len(r) > 2
}

// Canonicalize returns the ring with oxygens first, followed by carbons in
// increasing order of the number in their names. Other elements are dropped.
// Canonicalizing a canonical ring returns it unchanged.
func Canonicalize(r Ring) Ring {
	out := make(Ring, 0, len(r))
	var carbons Ring
	for _, s := range r {
		switch s.Element {
		case "O":
			out = append(out, s)
		case "C":
			carbons = append(carbons, s)
		}
	}
	slices.SortStableFunc(carbons, func(a, b Site) int {
		return cmp.Compare(nameRank(a.Name), nameRank(b.Name))
	})
	return append(out, carbons...)
}

// nameRank parses the number following the element letters of an atom name,
// so "C3" ranks 3 and "C10" ranks 10. Names without a number rank last.
func nameRank(name string) int {
	i := strings.IndexAny(name, "0123456789")
	if i < 0 {
		return math.MaxInt32
	}
	n := 0
	for ; i < len(name) && name[i] >= '0' && name[i] <= '9'; i++ {
		n = n*10 + int(name[i]-'0')
	}
	return n
}

// arc is an undirected edge between two residue atoms, identified by their
// index in the residue.
type arc [2]int

func arcOf(a, b int) arc {
	if a > b {
		a, b = b, a
	}
	return arc{a, b}
}

// frame is one level of the depth-first search.
type frame struct {
	site Site
	next []Site
}

// ringSearch owns the traversal state of one FindRing call.
type ringSearch struct {
	a       *Analysis
	visited map[arc]bool
	seen    map[int]bool
	onPath  map[int]int
	path    []frame
}

// FindRing discovers the residue's ring from bond connectivity alone. The
// search is an iterative depth-first traversal from the first admitted atom;
// the first cycle of 5 or 6 atoms that closes is canonicalized, stored on the
// analysis and returned.
func (a *Analysis) FindRing() (Ring, error) {
	sites := a.residueSites()
	rs := &ringSearch{
		a:       a,
		visited: make(map[arc]bool),
		seen:    make(map[int]bool),
		onPath:  make(map[int]int),
	}
	for _, start := range sites {
		if start.IsHydrogen() || rs.seen[start.Ref.Atom] {
			continue
		}
		if ring := rs.run(start); ring != nil {
			a.ring = ring
			return ring, nil
		}
	}
	return nil, ErrUnsupportedRing
}

func (rs *ringSearch) push(s Site) {
	rs.seen[s.Ref.Atom] = true
	rs.onPath[s.Ref.Atom] = len(rs.path)
	rs.path = append(rs.path, frame{site: s, next: rs.a.bondedInResidue(s)})
}

func (rs *ringSearch) pop() {
	top := rs.path[len(rs.path)-1]
	delete(rs.onPath, top.site.Ref.Atom)
	rs.path = rs.path[:len(rs.path)-1]
}

func (rs *ringSearch) run(start Site) Ring {
	rs.push(start)
	for len(rs.path) > 0 {
		top := &rs.path[len(rs.path)-1]
		if len(top.next) == 0 {
			rs.pop()
			continue
		}
		n := top.next[0]
		top.next = top.next[1:]

		e := arcOf(top.site.Ref.Atom, n.Ref.Atom)
		if rs.visited[e] {
			continue
		}
		rs.visited[e] = true

		if at, ok := rs.onPath[n.Ref.Atom]; ok {
			cycle := make(Ring, 0, len(rs.path)-at)
			for _, f := range rs.path[at:] {
				cycle = append(cycle, f.site)
			}
			if ring := Canonicalize(cycle); ring.Supported() && len(ring) == len(cycle) {
				return ring
			}
			continue
		}
		if rs.seen[n.Ref.Atom] {
			continue
		}
		rs.push(n)
	}
	return nil
}

// RingFromTemplate builds the ring from reference atom names. Each name must
// match an atom of the residue; when several atoms share the name, one of the
// analysed conformation wins, then tag "A", then tag "B". The ring is stored
// on the analysis.
func (a *Analysis) RingFromTemplate(names []string) (Ring, error) {
	if n := len(names); n != 5 && n != 6 {
		return nil, fmt.Errorf("%w: template has %d atoms", ErrUnsupportedRing, n)
	}
	res := a.Residue()
	ring := make(Ring, 0, len(names))
	for _, name := range names {
		idx := a.templateAtom(name)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingRingAtom, name)
		}
		ref := model.AtomRef{Chain: a.res.Chain, Residue: a.res.Residue, Atom: idx}
		ring = append(ring, a.Site(ref, res.Atoms[idx].Pos))
	}
	a.ring = ring
	return ring, nil
}

func (a *Analysis) templateAtom(name string) int {
	res := a.Residue()
	byTag := make(map[string]int)
	for i, at := range res.Atoms {
		if strings.TrimSpace(at.Name) != name {
			continue
		}
		if a.admits(at.AltLoc) {
			return i
		}
		if _, ok := byTag[at.AltLoc]; !ok {
			byTag[at.AltLoc] = i
		}
	}
	for _, tag := range []string{"A", "B"} {
		if i, ok := byTag[tag]; ok {
			return i
		}
	}
	return -1
}
