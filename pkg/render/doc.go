// Package render holds the visual outputs of a residue classification.
//
// The [bondgraph] subpackage writes the covalent bond graph of a residue as
// Graphviz DOT and renders it to SVG or PNG. Ring atoms are filled and the
// stereo substituents used for anomer and handedness are outlined.
//
//	sites, bonds := analysis.ResidueBonds()
//	dot := bondgraph.ToDOT(sites, bonds, rec, bondgraph.Options{})
//	svg, err := bondgraph.RenderSVG(ctx, dot)
//
// The [projection] subpackage draws the ring seen along its mean-plane
// normal, colouring atoms by their height above or below the plane.
//
//	png, err := projection.Render(sites, bonds, rec, projection.Options{})
//
// [bondgraph]: github.com/matzehuels/sugarcheck/pkg/render/bondgraph
// [projection]: github.com/matzehuels/sugarcheck/pkg/render/projection
package render
