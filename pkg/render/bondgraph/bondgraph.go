// Package bondgraph draws the covalent bond graph of a sugar residue with
// Graphviz. Ring atoms are filled, the anomeric and configurational
// substituents are outlined, and atoms from symmetry images are dashed.
//
//	sites, bonds := analysis.ResidueBonds()
//	dot := bondgraph.ToDOT(sites, bonds, rec, bondgraph.Options{})
//	svg, err := bondgraph.RenderSVG(ctx, dot)
package bondgraph

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/sugarcheck/pkg/sugar"
)

// Output formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
)

// Formats lists the supported output formats.
var Formats = []string{FormatDOT, FormatSVG, FormatPNG}

// Element fill colours for atoms outside the ring.
var elementColors = map[string]string{
	"C": "#d9d9d9",
	"O": "#ff9b9b",
	"N": "#9bb8ff",
	"S": "#ffe680",
	"P": "#ffc080",
}

const ringColor = "#ffd966"

// Options configures DOT generation.
type Options struct {
	// Hydrogens includes hydrogen atoms. They are hidden by default.
	Hydrogens bool
	// Title overrides the graph label. The default is the residue's
	// denomination and conformation.
	Title string
}

// ToDOT converts a residue bond graph into an undirected Graphviz graph.
// rec may be nil, in which case nothing is highlighted.
func ToDOT(sites []sugar.Site, bonds []sugar.Bond, rec *sugar.Sugar, opts Options) string {
	var ring sugar.Ring
	var marked map[string]string
	title := opts.Title
	if rec != nil {
		ring = rec.Ring
		marked = stereoMarks(rec.Stereo)
		if title == "" {
			title = rec.Residue.String() + ": " + rec.Denomination
			if rec.Conformation != "" {
				title += " " + rec.Conformation
			}
		}
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	if title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", title)
	}
	buf.WriteString("  node [shape=circle, style=filled, fontsize=12, width=0.5, fixedsize=true];\n")
	buf.WriteString("\n")

	keep := make([]bool, len(sites))
	for i, s := range sites {
		if s.IsHydrogen() && !opts.Hydrogens {
			continue
		}
		keep[i] = true
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(s), strings.Join(attrs(s, ring, marked), ", "))
	}

	buf.WriteString("\n")
	for _, b := range bonds {
		if !keep[b.I] || !keep[b.J] {
			continue
		}
		a, c := sites[b.I], sites[b.J]
		edge := ""
		if ring.Contains(a) && ring.Contains(c) {
			edge = " [penwidth=3]"
		}
		fmt.Fprintf(&buf, "  %q -- %q%s;\n", nodeID(a), nodeID(c), edge)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(s sugar.Site) string {
	return s.Label()
}

func stereoMarks(st *sugar.Stereo) map[string]string {
	marks := make(map[string]string)
	if st == nil {
		return marks
	}
	add := func(p sugar.StereoPair, color string) {
		if p.Substituent != nil {
			marks[p.Substituent.Label()] = color
		}
	}
	add(st.Terminal, "darkgreen")
	add(st.Configurational, "blue")
	add(st.Anomeric, "red")
	return marks
}

func attrs(s sugar.Site, ring sugar.Ring, marked map[string]string) []string {
	fill := elementColors[s.Element]
	if fill == "" {
		fill = "white"
	}
	if ring.Contains(s) {
		fill = ringColor
	}
	out := []string{fmt.Sprintf("label=%q", s.Name), fmt.Sprintf("fillcolor=%q", fill)}
	if c, ok := marked[s.Label()]; ok {
		out = append(out, fmt.Sprintf("color=%q", c), "penwidth=3")
	}
	if s.Ref.Image > 0 {
		out = append(out, `style="filled,dashed"`)
	}
	return out
}

// Render renders DOT source into format (svg or png). DOT input is returned
// unchanged for format dot.
func Render(ctx context.Context, dot, format string) ([]byte, error) {
	var gf graphviz.Format
	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		gf = graphviz.SVG
	case FormatPNG:
		gf = graphviz.PNG
	default:
		return nil, fmt.Errorf("unsupported bond graph format: %s", format)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, gf, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderSVG renders DOT source to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return Render(ctx, dot, FormatSVG)
}
