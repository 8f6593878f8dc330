package model

import "math"

// Cell is a crystallographic unit cell. Lengths are in Ångström, angles in
// degrees. The zero Cell is invalid and disables symmetry expansion.
type Cell struct {
	A     float64 `json:"a"`
	B     float64 `json:"b"`
	C     float64 `json:"c"`
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
	Gamma float64 `json:"gamma"`
}

// Valid reports whether the cell describes a non-degenerate lattice.
func (c Cell) Valid() bool {
	return c.A > 0 && c.B > 0 && c.C > 0 && c.Alpha > 0 && c.Beta > 0 && c.Gamma > 0 && c.Volume() > 0
}

// Volume returns the cell volume in Å³.
func (c Cell) Volume() float64 {
	ca, cb, cg := cosd(c.Alpha), cosd(c.Beta), cosd(c.Gamma)
	v := 1 - ca*ca - cb*cb - cg*cg + 2*ca*cb*cg
	if v <= 0 {
		return 0
	}
	return c.A * c.B * c.C * math.Sqrt(v)
}

// orth returns the upper-triangular orthogonalization matrix using the PDB
// convention: a along x, b in the xy plane.
func (c Cell) orth() [3][3]float64 {
	ca, cb, cg := cosd(c.Alpha), cosd(c.Beta), cosd(c.Gamma)
	sg := sind(c.Gamma)
	return [3][3]float64{
		{c.A, c.B * cg, c.C * cb},
		{0, c.B * sg, c.C * (ca - cb*cg) / sg},
		{0, 0, c.Volume() / (c.A * c.B * sg)},
	}
}

// Orthogonal converts fractional coordinates to orthogonal Ångström.
func (c Cell) Orthogonal(f Vec3) Vec3 {
	m := c.orth()
	return Vec3{
		m[0][0]*f.X + m[0][1]*f.Y + m[0][2]*f.Z,
		m[1][1]*f.Y + m[1][2]*f.Z,
		m[2][2] * f.Z,
	}
}

// Fractional converts orthogonal coordinates to fractional coordinates by
// back-substitution on the triangular orthogonalization matrix.
func (c Cell) Fractional(p Vec3) Vec3 {
	m := c.orth()
	z := p.Z / m[2][2]
	y := (p.Y - m[1][2]*z) / m[1][1]
	x := (p.X - m[0][1]*y - m[0][2]*z) / m[0][0]
	return Vec3{x, y, z}
}

// LatticeCopyNear returns the lattice translate of f closest to ref, both in
// fractional coordinates.
func LatticeCopyNear(f, ref Vec3) Vec3 {
	return Vec3{
		f.X + math.Round(ref.X-f.X),
		f.Y + math.Round(ref.Y-f.Y),
		f.Z + math.Round(ref.Z-f.Z),
	}
}

func cosd(deg float64) float64 { return math.Cos(deg * math.Pi / 180) }
func sind(deg float64) float64 { return math.Sin(deg * math.Pi / 180) }
