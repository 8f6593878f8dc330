package model

import "math"

// Vec3 is a point or direction in orthogonal Ångström space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(w Vec3) Vec3 { return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z} }

func (v Vec3) Sub(w Vec3) Vec3 { return Vec3{v.X - w.X, v.Y - w.Y, v.Z - w.Z} }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) Dot(w Vec3) float64 { return v.X*w.X + v.Y*w.Y + v.Z*w.Z }

// Cross returns v × w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		v.Y*w.Z - v.Z*w.Y,
		v.Z*w.X - v.X*w.Z,
		v.X*w.Y - v.Y*w.X,
	}
}

func (v Vec3) Norm() float64 { return math.Sqrt(v.Dot(v)) }

// Unit returns v scaled to length 1. The zero vector is returned unchanged.
func (v Vec3) Unit() Vec3 {
	n := v.Norm()
	if n == 0 {
		return v
	}
	return v.Scale(1 / n)
}

// Dist returns the Euclidean distance between v and w.
func (v Vec3) Dist(w Vec3) float64 { return v.Sub(w).Norm() }

// Centroid returns the arithmetic mean of ps. It returns the zero vector for
// an empty slice.
func Centroid(ps []Vec3) Vec3 {
	var c Vec3
	if len(ps) == 0 {
		return c
	}
	for _, p := range ps {
		c = c.Add(p)
	}
	return c.Scale(1 / float64(len(ps)))
}

// Angle returns the angle a-b-c at b in degrees.
func Angle(a, b, c Vec3) float64 {
	u := a.Sub(b)
	w := c.Sub(b)
	cos := u.Dot(w) / (u.Norm() * w.Norm())
	return math.Acos(Clamp(cos, -1, 1)) * 180 / math.Pi
}

// Torsion returns the dihedral angle a-b-c-d in degrees, in (-180, 180].
func Torsion(a, b, c, d Vec3) float64 {
	b1 := b.Sub(a)
	b2 := c.Sub(b)
	b3 := d.Sub(c)
	y := b2.Norm() * b1.Dot(b2.Cross(b3))
	x := b1.Cross(b2).Dot(b2.Cross(b3))
	return math.Atan2(y, x) * 180 / math.Pi
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
