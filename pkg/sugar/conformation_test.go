package sugar

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBandTablesSorted(t *testing.T) {
	for name, bounds := range map[string][]float64{
		"theta":  thetaBounds,
		"phi":    phiBounds,
		"pseudo": pseudoBounds,
	} {
		assert.True(t, sort.Float64sAreSorted(bounds), name)
		for i := 1; i < len(bounds); i++ {
			assert.Less(t, bounds[i-1], bounds[i], "%s bound %d", name, i)
		}
	}
}

func TestPyranoseTablePartition(t *testing.T) {
	seen := make(map[Conformation]bool)
	for theta := 0.0; theta <= 180.0; theta += 0.25 {
		for phi := 0.0; phi < 360.0; phi += 0.25 {
			c := PyranoseConformation(theta, phi)
			require.NotEqual(t, ConformationUnknown, c, "theta=%v phi=%v", theta, phi)
			require.False(t, c.Furanose(), "theta=%v phi=%v", theta, phi)
			seen[c] = true
		}
	}
	assert.Len(t, seen, 38)
	assert.Len(t, Conformations(6), 38)
}

func TestFuranoseTablePartition(t *testing.T) {
	seen := make(map[Conformation]bool)
	for phi := 0.0; phi < 360.0; phi += 0.1 {
		c := FuranoseConformation(phi)
		require.True(t, c.Furanose(), "phi=%v", phi)
		seen[c] = true
	}
	assert.Len(t, seen, 20)
	assert.Len(t, Conformations(5), 20)
}

func TestPyranoseConformation(t *testing.T) {
	tests := []struct {
		theta, phi float64
		want       string
	}{
		{0, 0, "4C1"},
		{22.5, 200, "4C1"},
		{180, 0, "1C4"},
		{157.6, 90, "1C4"},
		{50, 0, "OE"},
		{50, 359, "OE"},
		{50, 30, "OH1"},
		{50, 15, "OE"},
		{50, 15.01, "OH1"},
		{50, 330, "OH5"},
		{90, 0, "3OB"},
		{90, 180, "B3O"},
		{90, 120, "25B"},
		{90, 30, "3S1"},
		{130, 0, "3E"},
		{130, 180, "EO"},
		{157.5, 240, "1E"},
	}
	for _, tt := range tests {
		got := PyranoseConformation(tt.theta, tt.phi)
		assert.Equal(t, tt.want, got.String(), "theta=%v phi=%v", tt.theta, tt.phi)
	}
}

func TestFuranoseConformation(t *testing.T) {
	tests := []struct {
		phi  float64
		want string
	}{
		{0, "OE"},
		{270, "3T2"},
		{288, "3E"},
		{324, "E4"},
		{72, "2E"},
		{216, "1E"},
		{144, "4E"},
		{-90, "3T2"},
	}
	for _, tt := range tests {
		got := FuranoseConformation(tt.phi)
		assert.Equal(t, tt.want, got.String(), "phi=%v", tt.phi)
		assert.True(t, got.Furanose())
	}
}

func TestParseConformation(t *testing.T) {
	for _, size := range []int{5, 6} {
		for _, c := range Conformations(size) {
			got, err := ParseConformation(c.String(), size)
			require.NoError(t, err)
			assert.Equal(t, c, got)
		}
	}
	_, err := ParseConformation("3T2", 6)
	assert.Error(t, err)
	_, err = ParseConformation("4C1", 5)
	assert.Error(t, err)

	c, err := ParseConformation("", 6)
	require.NoError(t, err)
	assert.Equal(t, ConformationUnknown, c)
}
