package model

import (
	"fmt"
	"strconv"
	"strings"
)

// SymOp is a space-group operation acting on fractional coordinates:
// f' = Rot·f + Trans.
type SymOp struct {
	Rot   [3][3]float64 `json:"rot"`
	Trans [3]float64    `json:"trans"`
}

// Apply transforms the fractional coordinate f.
func (op SymOp) Apply(f Vec3) Vec3 {
	v := [3]float64{f.X, f.Y, f.Z}
	var out [3]float64
	for i := 0; i < 3; i++ {
		out[i] = op.Trans[i]
		for j := 0; j < 3; j++ {
			out[i] += op.Rot[i][j] * v[j]
		}
	}
	return Vec3{out[0], out[1], out[2]}
}

// IsIdentity reports whether op maps every point to itself.
func (op SymOp) IsIdentity() bool {
	for i := 0; i < 3; i++ {
		if op.Trans[i] != 0 {
			return false
		}
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			if op.Rot[i][j] != want {
				return false
			}
		}
	}
	return true
}

// ParseSymOp parses an operator written as a coordinate triplet, for example
// "-x,y+1/2,-z" or "x-y,x,z+1/6".
func ParseSymOp(s string) (SymOp, error) {
	var op SymOp
	parts := strings.Split(strings.ReplaceAll(s, " ", ""), ",")
	if len(parts) != 3 {
		return op, fmt.Errorf("symop %q: want 3 components, got %d", s, len(parts))
	}
	for i, p := range parts {
		row, trans, err := parseSymComponent(strings.ToLower(p))
		if err != nil {
			return op, fmt.Errorf("symop %q: %w", s, err)
		}
		op.Rot[i] = row
		op.Trans[i] = trans
	}
	return op, nil
}

func parseSymComponent(p string) ([3]float64, float64, error) {
	var row [3]float64
	var trans float64
	if p == "" {
		return row, 0, fmt.Errorf("empty component")
	}
	i := 0
	for i < len(p) {
		sign := 1.0
		switch p[i] {
		case '+':
			i++
		case '-':
			sign = -1
			i++
		}
		if i >= len(p) {
			return row, 0, fmt.Errorf("dangling sign in %q", p)
		}
		switch c := p[i]; c {
		case 'x', 'y', 'z':
			row[c-'x'] += sign
			i++
		default:
			j := i
			for j < len(p) && p[j] != '+' && p[j] != '-' {
				j++
			}
			v, err := parseFraction(p[i:j])
			if err != nil {
				return row, 0, err
			}
			trans += sign * v
			i = j
		}
	}
	return row, trans, nil
}

func parseFraction(s string) (float64, error) {
	num, den, ok := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("bad translation %q", s)
	}
	if !ok {
		return n, nil
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0, fmt.Errorf("bad translation %q", s)
	}
	return n / d, nil
}

// SpaceGroup is a named list of symmetry operators. The first operator is
// always the identity.
type SpaceGroup struct {
	Name string  `json:"name"`
	Ops  []SymOp `json:"ops,omitempty"`
}

// Known reports whether the group carries operators.
func (sg SpaceGroup) Known() bool {
	return len(sg.Ops) > 0
}

// P1 returns the trivial space group.
func P1() SpaceGroup {
	op, _ := ParseSymOp("x,y,z")
	return SpaceGroup{Name: "P 1", Ops: []SymOp{op}}
}

// LookupSpaceGroup returns the space group for a Hermann-Mauguin symbol as
// written in CRYST1 records. Spacing and case are ignored.
func LookupSpaceGroup(symbol string) (SpaceGroup, bool) {
	key := normalizeSymbol(symbol)
	if alias, ok := spaceGroupAliases[key]; ok {
		key = alias
	}
	triplets, ok := spaceGroupOps[key]
	if !ok {
		return SpaceGroup{}, false
	}
	sg := SpaceGroup{Name: strings.TrimSpace(symbol)}
	for _, t := range triplets {
		op, err := ParseSymOp(t)
		if err != nil {
			return SpaceGroup{}, false
		}
		sg.Ops = append(sg.Ops, op)
	}
	return sg, true
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
}
