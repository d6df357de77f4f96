// Package nodelink renders node graphs as Graphviz diagrams.
//
// # Overview
//
// Each node becomes a record: input ports across the top, the node name in
// the middle, output ports across the bottom. Connections are drawn from the
// output field to the input field. Nodes are filled by connectivity
// category: entry nodes green, exit nodes red, loose nodes grey.
//
// # Usage
//
//	dot := nodelink.ToDOT(g, names, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Options
//
//   - Detailed: port labels include the port type and any default value,
//     and node titles include the node's own description (its String form).
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
