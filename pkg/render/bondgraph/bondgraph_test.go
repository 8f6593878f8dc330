package bondgraph

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/sugarcheck/pkg/model"
	"github.com/matzehuels/sugarcheck/pkg/sugar"
)

func site(i int, name string, img int) sugar.Site {
	return sugar.Site{
		Ref:     model.AtomRef{Atom: i, Image: img},
		Name:    name,
		Element: name[:1],
	}
}

func fixture() ([]sugar.Site, []sugar.Bond, *sugar.Sugar) {
	sites := []sugar.Site{
		site(0, "O5", 0), site(1, "C1", 0), site(2, "C2", 0),
		site(3, "C3", 0), site(4, "C4", 0), site(5, "C5", 0),
		site(6, "O1", 0), site(7, "H1", 0), site(8, "O4", 1),
	}
	bonds := []sugar.Bond{
		{I: 0, J: 1}, {I: 1, J: 2}, {I: 2, J: 3}, {I: 3, J: 4}, {I: 4, J: 5}, {I: 0, J: 5},
		{I: 1, J: 6}, {I: 1, J: 7},
	}
	o1 := sites[6]
	rec := &sugar.Sugar{
		Residue:      model.ResidueID{Chain: "A", Name: "BGC", Seq: 1},
		Denomination: "beta-D-aldopyranose",
		Conformation: "4C1",
		Ring:         sugar.Ring(sites[:6]),
		Stereo:       &sugar.Stereo{Anomeric: sugar.StereoPair{Carbon: &sites[1], Substituent: &o1}},
	}
	return sites, bonds, rec
}

func TestToDOT(t *testing.T) {
	sites, bonds, rec := fixture()
	dot := ToDOT(sites, bonds, rec, Options{})

	for _, want := range []string{
		"graph G {",
		`label="BGC/A/1: beta-D-aldopyranose 4C1"`,
		`"C1" -- "C2" [penwidth=3];`,
		`"C1" -- "O1";`,
		`"O1" [label="O1", fillcolor="#ff9b9b", color="red", penwidth=3];`,
		`"C3" [label="C3", fillcolor="#ffd966"];`,
		`style="filled,dashed"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "H1") {
		t.Error("hydrogens should be hidden by default")
	}

	dot = ToDOT(sites, bonds, rec, Options{Hydrogens: true, Title: "custom"})
	if !strings.Contains(dot, `"C1" -- "H1";`) {
		t.Error("hydrogen bond missing with Hydrogens option")
	}
	if !strings.Contains(dot, `label="custom"`) {
		t.Error("title override ignored")
	}
}

func TestToDOTWithoutRecord(t *testing.T) {
	sites, bonds, _ := fixture()
	dot := ToDOT(sites, bonds, nil, Options{})
	if strings.Contains(dot, "penwidth") {
		t.Errorf("nothing should be highlighted without a record:\n%s", dot)
	}
}

func TestRenderDOTPassthrough(t *testing.T) {
	out, err := Render(context.Background(), "graph G {}", FormatDOT)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "graph G {}" {
		t.Errorf("Render(dot) = %q", out)
	}
	if _, err := Render(context.Background(), "graph G {}", "pdf"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestRenderSVG(t *testing.T) {
	sites, bonds, rec := fixture()
	svg, err := RenderSVG(context.Background(), ToDOT(sites, bonds, rec, Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("output is not SVG")
	}
}
