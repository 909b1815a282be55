// Package render draws hybridization networks as node-link diagrams.
//
// [ToDOT] writes a network as Graphviz DOT source. Leaves are boxes with the
// taxon label, reticulations are filled diamonds, and edges are colored by
// the input tree they belong to: black for edges shared by both trees, blue
// for edges of the first tree only and orange for edges of the second.
//
//	dot := render.ToDOT(n, render.Options{Label: taxa.Label})
//	svg, err := render.RenderSVG(ctx, dot)
//
// [RenderSVG] and [RenderPNG] lay out and rasterize DOT in process with
// [github.com/goccy/go-graphviz]; no Graphviz installation is needed.
package render
