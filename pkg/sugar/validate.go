package sugar

import (
	"math"

	"github.com/matzehuels/sugarcheck/pkg/model"
	"github.com/matzehuels/sugarcheck/pkg/refdb"
)

// Ideal ring geometry.
const (
	IdealBondCO  = 1.430
	IdealBondCC  = 1.530
	IdealAngleO  = 112.0
	IdealAngleCC = 109.0
)

// Sanity thresholds.
const (
	maxBondRMSD5  = 0.040
	maxBondRMSD6  = 0.035
	minAngleRMSD5 = 4.0
	maxAngleRMSD5 = 7.5
	maxAngleRMSD6 = 4.0
)

// RingGeometry holds the measured ring geometry. Bonds[i] joins ring atoms i
// and i+1, Angles[i] is measured at atom i and Torsions[i] is the dihedral
// i-1, i, i+1, i+2, all with wraparound.
type RingGeometry struct {
	Bonds     []float64 `json:"bonds"`
	Angles    []float64 `json:"angles"`
	Torsions  []float64 `json:"torsions"`
	BondRMSD  float64   `json:"bond_rmsd"`
	AngleRMSD float64   `json:"angle_rmsd"`
}

// Measure computes bond lengths, bond angles, torsions and their deviations
// from ideal geometry.
func Measure(r Ring) RingGeometry {
	n := len(r)
	g := RingGeometry{
		Bonds:    make([]float64, n),
		Angles:   make([]float64, n),
		Torsions: make([]float64, n),
	}
	if n < 4 {
		return g
	}
	at := func(i int) model.Vec3 { return r[((i%n)+n)%n].Pos }

	var bondSq, angleSq float64
	for i := 0; i < n; i++ {
		g.Bonds[i] = at(i).Dist(at(i + 1))
		g.Angles[i] = model.Angle(at(i-1), at(i), at(i+1))
		g.Torsions[i] = model.Torsion(at(i-1), at(i), at(i+1), at(i+2))

		d := g.Bonds[i] - idealBond(i, n)
		bondSq += d * d
		a := g.Angles[i] - idealAngle(i, n)
		angleSq += a * a
	}
	g.BondRMSD = math.Sqrt(bondSq / float64(n))
	g.AngleRMSD = math.Sqrt(angleSq / float64(n))
	return g
}

// idealBond returns the reference length of bond i; bonds 0 and n-1 touch
// the ring oxygen.
func idealBond(i, n int) float64 {
	if i == 0 || i == n-1 {
		return IdealBondCO
	}
	return IdealBondCC
}

// idealAngle returns the reference angle at ring atom i.
func idealAngle(i, n int) float64 {
	if i == 0 || i == n-1 {
		return IdealAngleO
	}
	return IdealAngleCC
}

// Sanity holds the diagnostic flags of a classified ring. All flags are false
// when the residue has no reference entry.
type Sanity struct {
	Matched    bool `json:"matched"`
	RingBonded bool `json:"ring_bonded"`
	Chirality  bool `json:"chirality"`
	Anomer     bool `json:"anomer"`
	BondRMSD   bool `json:"bond_rmsd"`
	AngleRMSD  bool `json:"angle_rmsd"`
	Sane       bool `json:"sane"`
}

// Validate derives the sanity flags of a ring from its geometry, the
// observed anomer and handedness and the reference entry, if any.
func Validate(r Ring, g RingGeometry, anomer Anomer, hand Handedness, entry *refdb.Entry) Sanity {
	if entry == nil {
		return Sanity{}
	}
	s := Sanity{
		Matched:    true,
		RingBonded: r.Bonded(),
		Chirality:  chiralityConsistent(hand, entry.Handedness),
		Anomer:     anomerConsistent(anomer, entry.Anomer),
	}
	switch len(r) {
	case 5:
		s.BondRMSD = g.BondRMSD < maxBondRMSD5
		s.AngleRMSD = g.AngleRMSD > minAngleRMSD5 && g.AngleRMSD < maxAngleRMSD5
	case 6:
		s.BondRMSD = g.BondRMSD < maxBondRMSD6
		s.AngleRMSD = g.AngleRMSD < maxAngleRMSD6
	}
	s.Sane = s.RingBonded && s.Chirality && s.Anomer && s.BondRMSD && s.AngleRMSD
	return s
}

// chiralityConsistent passes unless observed and expected handedness name
// opposite defined configurations.
func chiralityConsistent(obs Handedness, want string) bool {
	return (obs != HandednessD && want != "D") || (obs != HandednessL && want != "L")
}

// anomerConsistent passes when a determined anomer is not contradicted by the
// reference.
func anomerConsistent(obs Anomer, want string) bool {
	return (obs == AnomerAlpha && want != "B") || (obs == AnomerBeta && want != "A")
}
