// Package projection draws a sugar ring seen from above its Cremer-Pople mean
// plane. Atoms are placed by their in-plane coordinates and coloured by their
// displacement from the plane: red above, blue below.
package projection

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"math"

	"github.com/fogleman/gg"

	"github.com/matzehuels/sugarcheck/pkg/sugar"
)

// DefaultSize is the canvas edge in pixels.
const DefaultSize = 480

// Displacements below this magnitude (Å) are drawn as in-plane.
const planeTolerance = 0.05

// ErrNoPucker is returned for records without a mean plane, such as
// unsupported rings.
var ErrNoPucker = errors.New("record has no pucker")

// Options configures rendering.
type Options struct {
	Size      int
	Hydrogens bool
	Title     string
}

// Point is a site expressed in the mean-plane frame. X points from the ring
// centroid towards the ring oxygen, Y completes a right-handed frame with the
// plane normal and Z is the signed height above the plane.
type Point struct {
	Site sugar.Site
	X    float64
	Y    float64
	Z    float64
}

// Project expresses sites in the mean-plane frame of rec.
func Project(sites []sugar.Site, rec *sugar.Sugar) ([]Point, error) {
	if rec == nil || rec.Pucker == nil || len(rec.Ring) == 0 {
		return nil, ErrNoPucker
	}
	c, n := rec.Pucker.Centroid, rec.Pucker.Normal
	w := rec.Ring[0].Pos.Sub(c)
	w = w.Sub(n.Scale(w.Dot(n)))
	u := w.Unit()
	v := n.Cross(u)

	out := make([]Point, len(sites))
	for i, s := range sites {
		d := s.Pos.Sub(c)
		out[i] = Point{Site: s, X: d.Dot(u), Y: d.Dot(v), Z: d.Dot(n)}
	}
	return out, nil
}

// Render draws the projection as a PNG image.
func Render(sites []sugar.Site, bonds []sugar.Bond, rec *sugar.Sugar, opts Options) ([]byte, error) {
	pts, err := Project(sites, rec)
	if err != nil {
		return nil, err
	}
	size := opts.Size
	if size <= 0 {
		size = DefaultSize
	}
	title := opts.Title
	if title == "" {
		title = rec.Residue.String() + "  " + rec.Conformation
	}

	keep := make([]bool, len(pts))
	extent := 0.0
	for i, p := range pts {
		if p.Site.IsHydrogen() && !opts.Hydrogens {
			continue
		}
		keep[i] = true
		extent = math.Max(extent, math.Max(math.Abs(p.X), math.Abs(p.Y)))
	}
	if extent == 0 {
		extent = 1
	}

	margin := float64(size) / 10
	scale := (float64(size)/2 - margin) / extent
	mid := float64(size) / 2
	toCanvas := func(p Point) (float64, float64) {
		// Canvas y grows downwards.
		return mid + p.X*scale, mid - p.Y*scale
	}

	dc := gg.NewContext(size, size)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.SetRGB(0.4, 0.4, 0.4)
	dc.DrawStringAnchored(title, mid, margin/2, 0.5, 0.5)

	for _, b := range bonds {
		if !keep[b.I] || !keep[b.J] {
			continue
		}
		a, z := pts[b.I], pts[b.J]
		x1, y1 := toCanvas(a)
		x2, y2 := toCanvas(z)
		if rec.Ring.Contains(a.Site) && rec.Ring.Contains(z.Site) {
			dc.SetRGB(0, 0, 0)
			dc.SetLineWidth(4)
		} else {
			dc.SetRGB(0.5, 0.5, 0.5)
			dc.SetLineWidth(2)
		}
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
	}

	radius := float64(size) / 40
	for i, p := range pts {
		if !keep[i] {
			continue
		}
		x, y := toCanvas(p)
		dc.DrawCircle(x, y, radius)
		dc.SetHexColor(heightColor(p.Z))
		dc.FillPreserve()
		dc.SetRGB(0, 0, 0)
		dc.SetLineWidth(1)
		dc.Stroke()
		dc.DrawStringAnchored(p.Site.Name, x+radius*1.4, y-radius*1.4, 0, 0.5)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func heightColor(z float64) string {
	switch {
	case z > planeTolerance:
		return "#e06666"
	case z < -planeTolerance:
		return "#6fa8dc"
	default:
		return "#cccccc"
	}
}

// Heights returns the ring atom displacements in ring order, keyed by atom
// label.
func Heights(rec *sugar.Sugar) (map[string]float64, error) {
	if rec == nil || rec.Pucker == nil {
		return nil, ErrNoPucker
	}
	out := make(map[string]float64, len(rec.Ring))
	for i, s := range rec.Ring {
		if i < len(rec.Pucker.Z) {
			out[s.Label()] = rec.Pucker.Z[i]
		}
	}
	return out, nil
}
