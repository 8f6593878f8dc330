package sugar

import (
	"strings"
	"testing"

	"github.com/matzehuels/sugarcheck/pkg/model"
)

type fixtureAtom struct {
	name string
	alt  string
	pos  model.Vec3
}

// betaGlucose is an all-equatorial beta-D-glucopyranose in the 4C1 chair with
// ideal ring bonds (1.43/1.53 Å) and angles (112°/109°). Hydrogens omitted.
var betaGlucose = []fixtureAtom{
	{name: "C1", pos: model.Vec3{X: 12.5178, Y: 9.4107, Z: 21.4555}},
	{name: "C2", pos: model.Vec3{X: 11.4000, Y: 8.5497, Z: 22.0472}},
	{name: "C3", pos: model.Vec3{X: 11.9647, Y: 7.1712, Z: 22.3961}},
	{name: "C4", pos: model.Vec3{X: 12.5517, Y: 6.5390, Z: 21.1325}},
	{name: "C5", pos: model.Vec3{X: 13.5700, Y: 7.5028, Z: 20.5202}},
	{name: "C6", pos: model.Vec3{X: 14.0801, Y: 6.9582, Z: 19.1960}},
	{name: "O1", pos: model.Vec3{X: 12.0341, Y: 10.7131, Z: 21.1169}},
	{name: "O2", pos: model.Vec3{X: 10.8904, Y: 9.1721, Z: 23.2295}},
	{name: "O3", pos: model.Vec3{X: 10.9190, Y: 6.3400, Z: 22.9065}},
	{name: "O4", pos: model.Vec3{X: 13.1983, Y: 5.3085, Z: 21.4683}},
	{name: "O5", pos: model.Vec3{X: 13.0018, Y: 8.7894, Z: 20.2619}},
	{name: "O6", pos: model.Vec3{X: 15.0297, Y: 7.8706, Z: 18.6385}},
}

// betaFuranose is a five-membered ring in a 4T3 twist with substituents
// placed so that it reads as beta-D.
var betaFuranose = []fixtureAtom{
	{name: "C1", pos: model.Vec3{X: 5.4147, Y: -1.8318, Z: 7.4104}},
	{name: "C2", pos: model.Vec3{X: 3.9493, Y: -2.2718, Z: 7.5462}},
	{name: "C3", pos: model.Vec3{X: 4.0337, Y: -3.7316, Z: 7.9960}},
	{name: "C4", pos: model.Vec3{X: 5.3804, Y: -4.1734, Z: 7.4355}},
	{name: "C5", pos: model.Vec3{X: 5.2984, Y: -4.5318, Z: 5.9606}},
	{name: "O1", pos: model.Vec3{X: 5.6885, Y: -1.3031, Z: 6.1103}},
	{name: "O2", pos: model.Vec3{X: 3.2697, Y: -1.4807, Z: 8.5244}},
	{name: "O3", pos: model.Vec3{X: 4.0103, Y: -3.8362, Z: 9.4219}},
	{name: "O4", pos: model.Vec3{X: 6.1969, Y: -3.0165, Z: 7.6087}},
	{name: "O5", pos: model.Vec3{X: 6.5886, Y: -4.9368, Z: 5.4954}},
}

// hexofuranoseTail extends betaFuranose with C6 and O6, turning C5 into a
// stereocenter on the exocyclic chain.
var hexofuranoseTail = []fixtureAtom{
	{name: "C6", pos: model.Vec3{X: 4.3312, Y: -5.6837, Z: 5.7411}},
	{name: "O6", pos: model.Vec3{X: 4.2735, Y: -5.9996, Z: 4.3476}},
}

func newResidue(code string, seq int, atoms []fixtureAtom) model.Residue {
	r := model.Residue{Name: code, Seq: seq, HetAtm: true}
	for i, a := range atoms {
		occ := 1.0
		if a.alt != "" {
			occ = 0.5
		}
		r.Atoms = append(r.Atoms, model.Atom{
			Serial:    i + 1,
			Name:      a.name,
			Element:   a.name[:1],
			AltLoc:    a.alt,
			Occupancy: occ,
			Pos:       a.pos,
		})
	}
	return r
}

func newStructure(residues ...model.Residue) *model.Structure {
	return &model.Structure{
		ID:     "TEST",
		Chains: []model.Chain{{ID: "A", Residues: residues}},
	}
}

func index(s *model.Structure) *model.NeighborIndex {
	return model.NewNeighborIndex(s, model.DefaultImageMargin)
}

func firstResidue() model.ResidueRef { return model.ResidueRef{} }

func copyAtoms(atoms []fixtureAtom) []fixtureAtom {
	return append([]fixtureAtom(nil), atoms...)
}

func fixturePos(t *testing.T, atoms []fixtureAtom, name string) model.Vec3 {
	t.Helper()
	for _, a := range atoms {
		if a.name == name {
			return a.pos
		}
	}
	t.Fatalf("no atom %s", name)
	return model.Vec3{}
}

func setFixturePos(atoms []fixtureAtom, name string, p model.Vec3) {
	for i := range atoms {
		if atoms[i].name == name {
			atoms[i].pos = p
		}
	}
}

func without(atoms []fixtureAtom, name string) []fixtureAtom {
	var out []fixtureAtom
	for _, a := range atoms {
		if a.name != name {
			out = append(out, a)
		}
	}
	return out
}

func siteNames(sites []Site) string {
	names := make([]string, len(sites))
	for i, s := range sites {
		names[i] = s.Name
	}
	return strings.Join(names, " ")
}

func classifyFixture(t *testing.T, code string, atoms []fixtureAtom, opts ...Option) *Sugar {
	t.Helper()
	s := newStructure(newResidue(code, 1, atoms))
	return NewClassifier(index(s), opts...).Classify(firstResidue())
}

// mirrorThroughPlane reflects p through the plane that contains origin and is
// perpendicular to normal.
func mirrorThroughPlane(p, origin, normal model.Vec3) model.Vec3 {
	d := p.Sub(origin).Dot(normal)
	return p.Sub(normal.Scale(2 * d))
}
