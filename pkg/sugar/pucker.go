package sugar

import (
	"fmt"
	"math"

	"github.com/matzehuels/sugarcheck/pkg/model"
)

// Pucker holds Cremer-Pople puckering parameters. Angles are in degrees and
// lengths in Ångström. Theta and Q3 are -1 for five-membered rings.
type Pucker struct {
	Q            float64      `json:"q"`
	Phi          float64      `json:"phi"`
	Theta        float64      `json:"theta"`
	Q2           float64      `json:"q2"`
	Q3           float64      `json:"q3"`
	Conformation Conformation `json:"conformation"`

	// Centroid and Normal define the mean plane; Z holds the displacement of
	// each ring atom from it, in ring order.
	Centroid model.Vec3 `json:"centroid"`
	Normal   model.Vec3 `json:"normal"`
	Z        []float64  `json:"z"`
}

// Height returns the signed displacement of p from the mean plane.
func (p Pucker) Height(pos model.Vec3) float64 {
	return pos.Sub(p.Centroid).Dot(p.Normal)
}

// Recenter returns ps translated so that their centroid is the origin,
// together with that centroid.
func Recenter(ps []model.Vec3) ([]model.Vec3, model.Vec3) {
	c := model.Centroid(ps)
	out := make([]model.Vec3, len(ps))
	for i, p := range ps {
		out[i] = p.Sub(c)
	}
	return out, c
}

// MeanPlaneNormal returns the Cremer-Pople mean-plane normal of centred ring
// coordinates, the unit vector along R′ × R″.
func MeanPlaneNormal(centred []model.Vec3) model.Vec3 {
	n := float64(len(centred))
	var r1, r2 model.Vec3
	for j, p := range centred {
		a := 2 * math.Pi * float64(j) / n
		r1 = r1.Add(p.Scale(math.Sin(a)))
		r2 = r2.Add(p.Scale(math.Cos(a)))
	}
	return r1.Cross(r2).Unit()
}

// ComputePucker derives Cremer-Pople parameters for a ring given in
// canonical order, ring oxygen first.
func ComputePucker(ring []model.Vec3) (Pucker, error) {
	n := len(ring)
	if n != 5 && n != 6 {
		return Pucker{}, fmt.Errorf("%w: %d atoms", ErrUnsupportedRing, n)
	}
	centred, c := Recenter(ring)
	normal := MeanPlaneNormal(centred)

	p := Pucker{Centroid: c, Normal: normal, Z: make([]float64, n)}
	var sumSq, cosSum, sinSum float64
	for j, r := range centred {
		z := r.Dot(normal)
		p.Z[j] = z
		sumSq += z * z
		a := 4 * math.Pi * float64(j) / float64(n)
		cosSum += z * math.Cos(a)
		sinSum += z * math.Sin(a)
	}
	p.Q = math.Sqrt(sumSq)
	if p.Q < 1e-9 {
		p.Theta, p.Q3 = -1, -1
		if n == 6 {
			p.Theta, p.Q3 = 0, 0
		}
		return p, nil
	}

	switch n {
	case 6:
		var q3 float64
		for j, z := range p.Z {
			if j%2 == 0 {
				q3 += z
			} else {
				q3 -= z
			}
		}
		p.Q3 = math.Sqrt(1.0/6) * q3
		x := math.Sqrt(1.0/3) * cosSum
		y := -math.Sqrt(1.0/3) * sinSum
		p.Q2 = math.Hypot(x, y)
		p.Theta = degrees(math.Acos(model.Clamp(p.Q3/p.Q, -1, 1)))
		p.Phi = normalizeDegrees(degrees(math.Atan2(y, x)))
		p.Conformation = PyranoseConformation(p.Theta, p.Phi)
	case 5:
		x := math.Sqrt(2.0/5) * cosSum
		y := -math.Sqrt(2.0/5) * sinSum
		p.Q2 = math.Hypot(x, y)
		p.Theta, p.Q3 = -1, -1
		p.Phi = normalizeDegrees(degrees(math.Atan2(y, x)))
		p.Conformation = FuranoseConformation(p.Phi)
	}
	return p, nil
}

// PseudorotationPhase returns the furanose pseudorotation phase P = φ + 90°
// in [0, 360).
func (p Pucker) PseudorotationPhase() float64 {
	return normalizeDegrees(p.Phi + 90)
}

func degrees(rad float64) float64 { return rad * 180 / math.Pi }

// Anomer is the alpha/beta descriptor of the anomeric center.
type Anomer string

const (
	AnomerAlpha   Anomer = "alpha"
	AnomerBeta    Anomer = "beta"
	AnomerUnknown Anomer = "X"
)

// Short returns the one-letter form used by reference tables: "A", "B" or
// "X".
func (a Anomer) Short() string {
	switch a {
	case AnomerAlpha:
		return "A"
	case AnomerBeta:
		return "B"
	}
	return "X"
}

// Handedness is the absolute configuration along the puckering axis.
type Handedness string

const (
	HandednessD Handedness = "D"
	HandednessL Handedness = "L"
	// HandednessNone marks a ring carbon without a usable substituent.
	HandednessNone Handedness = "N"
	// HandednessUnknown marks records that were not analysed.
	HandednessUnknown Handedness = "X"
)

// PuckerResult is the outcome of Analyze.
type PuckerResult struct {
	Pucker     Pucker
	Anomer     Anomer
	Handedness Handedness
}

// Analyze computes the ring pucker and assigns anomer and handedness from
// the stereo pairs.
func Analyze(ring Ring, st Stereo) (PuckerResult, error) {
	p, err := ComputePucker(ring.Positions())
	if err != nil {
		return PuckerResult{Anomer: AnomerUnknown, Handedness: HandednessUnknown}, err
	}
	return PuckerResult{
		Pucker:     p,
		Anomer:     AssignAnomer(p, st),
		Handedness: AssignHandedness(p, st),
	}, nil
}

// AssignAnomer compares on which side of its carbon each of the anomeric and
// the configurational substituent lies. The same side means alpha, opposite
// sides beta; the assignment flips when the stereo search reversed direction.
func AssignAnomer(p Pucker, st Stereo) Anomer {
	if !st.Anomeric.Complete() || !st.Configurational.Complete() {
		return AnomerUnknown
	}
	da := p.Height(st.Anomeric.Substituent.Pos) - p.Height(st.Anomeric.Carbon.Pos)
	dc := p.Height(st.Configurational.Substituent.Pos) - p.Height(st.Configurational.Carbon.Pos)
	same := (da > 0) == (dc > 0)
	if st.Reversed {
		same = !same
	}
	if same {
		return AnomerAlpha
	}
	return AnomerBeta
}

// AssignHandedness returns D when the terminal substituent lies above the
// last ring carbon and L otherwise.
func AssignHandedness(p Pucker, st Stereo) Handedness {
	if st.Terminal.Carbon == nil {
		return HandednessUnknown
	}
	if st.Terminal.Substituent == nil {
		return HandednessNone
	}
	if p.Height(st.Terminal.Carbon.Pos)-p.Height(st.Terminal.Substituent.Pos) < 0 {
		return HandednessD
	}
	return HandednessL
}
