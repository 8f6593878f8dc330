package sugar

import (
	"fmt"
	"math"
	"sort"
)

// Conformation is an IUPAC ring conformation code. Pyranose codes occupy
// 1..38, furanose codes 39..58; 0 is unknown.
type Conformation uint8

// ConformationUnknown marks rings that were not classified.
const ConformationUnknown Conformation = 0

var conformationNames = []string{
	"unknown",
	// pyranose: chairs
	"4C1", "1C4",
	// pyranose: envelopes and half-chairs, 22.5° < θ ≤ 67.5°
	"OH1", "E1", "2H1", "2E", "2H3", "E3", "4H3", "4E", "4H5", "E5", "OH5", "OE",
	// pyranose: boats and skew-boats, 67.5° < θ ≤ 112.5°
	"3S1", "B14", "5S1", "25B", "2SO", "B3O", "1S3", "14B", "1S5", "B25", "OS2", "3OB",
	// pyranose: envelopes and half-chairs, 112.5° < θ ≤ 157.5°
	"3H4", "E4", "5H4", "5E", "5HO", "EO", "1HO", "1E", "1H2", "E2", "3H2", "3E",
	// furanose: envelopes and twists by pseudorotation phase
	"3T2", "f3E", "3T4", "fE4", "OT4", "fOE", "OT1", "fE1", "2T1", "f2E",
	"2T3", "fE3", "4T3", "f4E", "4TO", "fEO", "1TO", "f1E", "1T2", "fE2",
}

// furanoseBase is the code of the first furanose conformation.
const furanoseBase Conformation = 39

var conformationCodes = func() map[string]Conformation {
	m := make(map[string]Conformation, len(conformationNames))
	for i, n := range conformationNames {
		m[n] = Conformation(i)
	}
	return m
}()

// String returns the IUPAC name. Furanose envelopes share their names with
// pyranose envelopes, e.g. "3E".
func (c Conformation) String() string {
	if int(c) >= len(conformationNames) {
		return fmt.Sprintf("Conformation(%d)", uint8(c))
	}
	n := conformationNames[c]
	if c >= furanoseBase && n[0] == 'f' {
		return n[1:]
	}
	return n
}

// Code returns the numeric conformation code.
func (c Conformation) Code() int { return int(c) }

// Furanose reports whether c is a five-membered ring conformation.
func (c Conformation) Furanose() bool {
	return c >= furanoseBase && int(c) < len(conformationNames)
}

// ParseConformation returns the code named name for a ring of the given size.
func ParseConformation(name string, ringSize int) (Conformation, error) {
	if name == "unknown" || name == "" {
		return ConformationUnknown, nil
	}
	if ringSize == 5 {
		if c, ok := conformationCodes["f"+name]; ok {
			return c, nil
		}
		if c, ok := conformationCodes[name]; ok && c >= furanoseBase {
			return c, nil
		}
		return ConformationUnknown, fmt.Errorf("unknown furanose conformation %q", name)
	}
	if c, ok := conformationCodes[name]; ok && c > 0 && c < furanoseBase {
		return c, nil
	}
	return ConformationUnknown, fmt.Errorf("unknown pyranose conformation %q", name)
}

// Conformations returns every known code for a ring of the given size, in
// code order.
func Conformations(ringSize int) []Conformation {
	var out []Conformation
	for i := 1; i < len(conformationNames); i++ {
		c := Conformation(i)
		if c.Furanose() == (ringSize == 5) {
			out = append(out, c)
		}
	}
	return out
}

// Band tables. Each table lists upper-inclusive bounds in increasing order;
// a value maps to the first band whose bound is not below it. The last bound
// of every table covers the end of its domain, so tables have no gaps and no
// overlaps.
var (
	thetaBounds = []float64{22.5, 67.5, 112.5, 157.5, math.Inf(1)}

	// phiBounds cut φ into 30° bands centred on multiples of 30°. The first
	// and the last band are the two halves of the band centred on 0°.
	phiBounds = []float64{15, 45, 75, 105, 135, 165, 195, 225, 255, 285, 315, 345, math.Inf(1)}

	// pyranoseRows holds, per non-chair θ band, the codes of the φ bands
	// centred on 0°, 30°, ..., 330°.
	pyranoseRows = [3][12]Conformation{
		codes("OE", "OH1", "E1", "2H1", "2E", "2H3", "E3", "4H3", "4E", "4H5", "E5", "OH5"),
		codes("3OB", "3S1", "B14", "5S1", "25B", "2SO", "B3O", "1S3", "14B", "1S5", "B25", "OS2"),
		codes("3E", "3H4", "E4", "5H4", "5E", "5HO", "EO", "1HO", "1E", "1H2", "E2", "3H2"),
	}

	// pseudoBounds cut the pseudorotation phase P into 18° bands centred on
	// multiples of 18°; the first and the last band both belong to P = 0°.
	pseudoBounds = func() []float64 {
		b := make([]float64, 0, 21)
		for k := 0; k < 20; k++ {
			b = append(b, 9+18*float64(k))
		}
		return append(b, math.Inf(1))
	}()
)

func codes(names ...string) (out [12]Conformation) {
	for i, n := range names {
		c, ok := conformationCodes[n]
		if !ok {
			panic("unknown conformation " + n)
		}
		out[i] = c
	}
	return out
}

// band returns the index of the band containing x.
func band(bounds []float64, x float64) int {
	return sort.SearchFloat64s(bounds, x)
}

// PyranoseConformation classifies Cremer-Pople angles θ ∈ [0,180] and
// φ ∈ [0,360) of a six-membered ring.
func PyranoseConformation(theta, phi float64) Conformation {
	if math.IsNaN(theta) || math.IsNaN(phi) {
		return ConformationUnknown
	}
	phi = normalizeDegrees(phi)
	switch row := band(thetaBounds, theta); row {
	case 0:
		return conformationCodes["4C1"]
	case len(thetaBounds) - 1:
		return conformationCodes["1C4"]
	default:
		col := band(phiBounds, phi) % 12
		return pyranoseRows[row-1][col]
	}
}

// FuranoseConformation classifies the Cremer-Pople phase φ of a
// five-membered ring through the pseudorotation phase P = φ + 90°.
func FuranoseConformation(phi float64) Conformation {
	if math.IsNaN(phi) {
		return ConformationUnknown
	}
	p := normalizeDegrees(phi + 90)
	return furanoseBase + Conformation(band(pseudoBounds, p)%20)
}

// normalizeDegrees maps an angle into [0, 360).
func normalizeDegrees(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a -= 360
	}
	return a
}
