// Package render converts rendered graphs between output formats.
//
// SVG is produced in-process by the [nodelink] subpackage. [ToPDF] and
// [ToPNG] convert that SVG with the external rsvg-convert tool (from
// librsvg):
//
//	dot := nodelink.ToDOT(g, names, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//
// [nodelink]: github.com/matzehuels/nodegraph/pkg/render/nodelink
package render
