package sugar

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/matzehuels/sugarcheck/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ringPositions(t *testing.T, atoms []fixtureAtom, names ...string) []model.Vec3 {
	t.Helper()
	out := make([]model.Vec3, len(names))
	for i, n := range names {
		out[i] = fixturePos(t, atoms, n)
	}
	return out
}

func pyranoseRing(t *testing.T) []model.Vec3 {
	return ringPositions(t, betaGlucose, "O5", "C1", "C2", "C3", "C4", "C5")
}

func furanoseRing(t *testing.T) []model.Vec3 {
	return ringPositions(t, betaFuranose, "O4", "C1", "C2", "C3", "C4")
}

func jitter(rng *rand.Rand, ps []model.Vec3, amount float64) []model.Vec3 {
	out := make([]model.Vec3, len(ps))
	for i, p := range ps {
		out[i] = p.Add(model.Vec3{
			X: (rng.Float64()*2 - 1) * amount,
			Y: (rng.Float64()*2 - 1) * amount,
			Z: (rng.Float64()*2 - 1) * amount,
		})
	}
	return out
}

func TestPuckerChair(t *testing.T) {
	p, err := ComputePucker(pyranoseRing(t))
	require.NoError(t, err)

	assert.InDelta(t, 0.5944, p.Q, 1e-3)
	assert.InDelta(t, 3.74, p.Theta, 0.05)
	assert.InDelta(t, 98.4, p.Phi, 0.5)
	assert.InDelta(t, 0.5931, p.Q3, 1e-3)
	assert.Equal(t, "4C1", p.Conformation.String())
	require.Len(t, p.Z, 6)

	// 4C1: O5, C2 and C4 lie above the mean plane.
	for j, z := range p.Z {
		if j%2 == 0 {
			assert.Greater(t, z, 0.0, "atom %d", j)
		} else {
			assert.Less(t, z, 0.0, "atom %d", j)
		}
	}
}

func TestPuckerPyranoseDecomposition(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	base := pyranoseRing(t)
	for i := 0; i < 200; i++ {
		p, err := ComputePucker(jitter(rng, base, 0.4))
		require.NoError(t, err)
		assert.InDelta(t, p.Q*p.Q, p.Q2*p.Q2+p.Q3*p.Q3, 1e-6)
		assert.InDelta(t, p.Q*math.Sin(p.Theta*math.Pi/180), p.Q2, 1e-6)
		assert.GreaterOrEqual(t, p.Theta, 0.0)
		assert.LessOrEqual(t, p.Theta, 180.0)
		assert.GreaterOrEqual(t, p.Phi, 0.0)
		assert.Less(t, p.Phi, 360.0)
		assert.NotEqual(t, ConformationUnknown, p.Conformation)
		assert.False(t, p.Conformation.Furanose())
	}
}

func TestPuckerFuranoseDecomposition(t *testing.T) {
	p, err := ComputePucker(furanoseRing(t))
	require.NoError(t, err)
	assert.InDelta(t, 0.3606, p.Q, 1e-3)
	assert.InDelta(t, p.Q, p.Q2, 1e-9)
	assert.Equal(t, -1.0, p.Theta)
	assert.Equal(t, -1.0, p.Q3)
	assert.InDelta(t, 222.67, p.PseudorotationPhase(), 0.05)
	assert.Equal(t, "4T3", p.Conformation.String())

	rng := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 200; i++ {
		p, err := ComputePucker(jitter(rng, furanoseRing(t), 0.4))
		require.NoError(t, err)
		assert.InDelta(t, p.Q*p.Q, p.Q2*p.Q2, 1e-6)
		assert.True(t, p.Conformation.Furanose())
	}
}

func TestPuckerMeanPlane(t *testing.T) {
	p, err := ComputePucker(pyranoseRing(t))
	require.NoError(t, err)

	var sum, sumCos, sumSin float64
	for j, z := range p.Z {
		a := 2 * math.Pi * float64(j) / 6
		sum += z
		sumCos += z * math.Cos(a)
		sumSin += z * math.Sin(a)
	}
	assert.InDelta(t, 0, sum, 1e-9)
	assert.InDelta(t, 0, sumCos, 1e-9)
	assert.InDelta(t, 0, sumSin, 1e-9)
	assert.InDelta(t, 1, p.Normal.Norm(), 1e-12)
}

func TestPuckerRejectsOtherSizes(t *testing.T) {
	_, err := ComputePucker(make([]model.Vec3, 4))
	assert.ErrorIs(t, err, ErrUnsupportedRing)
	_, err = ComputePucker(make([]model.Vec3, 7))
	assert.ErrorIs(t, err, ErrUnsupportedRing)
}

func TestPuckerFlatRing(t *testing.T) {
	flat := make([]model.Vec3, 6)
	for j := range flat {
		a := 2 * math.Pi * float64(j) / 6
		flat[j] = model.Vec3{X: 1.5 * math.Cos(a), Y: 1.5 * math.Sin(a)}
	}
	p, err := ComputePucker(flat)
	require.NoError(t, err)
	assert.InDelta(t, 0, p.Q, 1e-9)
	assert.False(t, math.IsNaN(p.Theta))
	assert.False(t, math.IsNaN(p.Phi))
}

func TestRecenterRoundTrip(t *testing.T) {
	ring := pyranoseRing(t)
	centred, c := Recenter(ring)
	assert.InDelta(t, 0, model.Centroid(centred).Norm(), 1e-12)
	for i, p := range centred {
		back := p.Add(c)
		assert.InDelta(t, ring[i].X, back.X, 1e-12)
		assert.InDelta(t, ring[i].Y, back.Y, 1e-12)
		assert.InDelta(t, ring[i].Z, back.Z, 1e-12)
	}
}

func TestAssignAnomerAndHandedness(t *testing.T) {
	p := Pucker{Normal: model.Vec3{Z: 1}}
	site := func(z float64) *Site { return &Site{Element: "C", Pos: model.Vec3{Z: z}} }

	st := Stereo{
		Anomeric:        StereoPair{Carbon: site(0), Substituent: site(1)},
		Configurational: StereoPair{Carbon: site(0), Substituent: site(0.5)},
		Terminal:        StereoPair{Carbon: site(0), Substituent: site(0.5)},
	}
	assert.Equal(t, AnomerAlpha, AssignAnomer(p, st))
	assert.Equal(t, HandednessD, AssignHandedness(p, st))

	st.Reversed = true
	assert.Equal(t, AnomerBeta, AssignAnomer(p, st))

	st.Terminal.Substituent = site(-0.5)
	assert.Equal(t, HandednessL, AssignHandedness(p, st))

	st.Terminal.Substituent = nil
	assert.Equal(t, HandednessNone, AssignHandedness(p, st))
	st.Terminal.Carbon = nil
	assert.Equal(t, HandednessUnknown, AssignHandedness(p, st))

	st.Configurational.Substituent = nil
	assert.Equal(t, AnomerUnknown, AssignAnomer(p, st))
}
