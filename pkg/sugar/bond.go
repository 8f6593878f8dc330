package sugar

import "github.com/matzehuels/sugarcheck/pkg/model"

// Stereo reach bounds the neighbor search around stereocenters and anomeric
// carbons, in Ångström (exclusive).
const (
	StereoReachMin = 1.2
	StereoReachMax = 1.8
)

// window is an open distance interval in Ångström.
type window struct {
	lo, hi float64
}

func (w window) contains(d float64) bool {
	return d > w.lo && d < w.hi
}

type elementPair [2]string

func pairOf(a, b string) elementPair {
	if a > b {
		a, b = b, a
	}
	return elementPair{a, b}
}

var bondWindows = map[elementPair]window{
	pairOf("C", "C"): {1.18, 1.60},
	pairOf("C", "N"): {1.24, 1.52},
	pairOf("C", "O"): {1.16, 1.50},
	pairOf("C", "H"): {0.96, 1.14},
	pairOf("N", "H"): {0.90, 1.10},
	pairOf("O", "H"): {0.88, 1.04},
}

var defaultWindow = window{StereoReachMin, StereoReachMax}

// BondWindow returns the distance interval within which atoms of the two
// elements count as bonded. The result does not depend on argument order.
func BondWindow(e1, e2 string) (lo, hi float64) {
	w, ok := bondWindows[pairOf(e1, e2)]
	if !ok {
		w = defaultWindow
	}
	return w.lo, w.hi
}

// Bonded reports whether two sites are chemically bonded. Site positions must
// already be resolved to the same frame (see Analysis.Site).
func Bonded(a, b Site) bool {
	return BondedAt(a.Element, b.Element, a.Pos.Dist(b.Pos))
}

// BondedAt reports whether atoms of elements e1 and e2 at distance d count as
// bonded.
func BondedAt(e1, e2 string, d float64) bool {
	w, ok := bondWindows[pairOf(e1, e2)]
	if !ok {
		w = defaultWindow
	}
	return w.contains(d)
}

func inStereoReach(a, b model.Vec3) bool {
	return defaultWindow.contains(a.Dist(b))
}

// Bond joins two sites of a residue bond graph by index.
type Bond struct {
	I, J int
}

// ResidueBonds returns the residue atoms admitted by the analysed
// conformation, in file order, and the bonds between them.
func (a *Analysis) ResidueBonds() ([]Site, []Bond) {
	sites := a.residueSites()
	var bonds []Bond
	for i := range sites {
		for j := i + 1; j < len(sites); j++ {
			if Bonded(sites[i], sites[j]) {
				bonds = append(bonds, Bond{I: i, J: j})
			}
		}
	}
	return sites, bonds
}
