package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/nodegraph/pkg/nodegraph"
	"github.com/matzehuels/nodegraph/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds port types, defaults and the node's own description to
	// the labels. When false, only node and port names are shown.
	Detailed bool
}

// Fill colors by connectivity category.
var categoryColors = map[nodegraph.Category]string{
	nodegraph.CategoryLoose: "lightgrey",
	nodegraph.CategoryEntry: "\"#d4edda\"",
	nodegraph.CategoryExit:  "\"#f8d7da\"",
	nodegraph.CategoryNet:   "white",
}

// ToDOT converts a node graph to Graphviz DOT. Every node becomes a record
// with its inputs on the top row and its outputs on the bottom row, and every
// connection an edge between the two port fields. names supplies display
// names; nodes missing from it are labelled with their handle.
func ToDOT[N nodegraph.Node[T, V], T nodegraph.DataType[T], V any](g *nodegraph.Graph[N, T, V], names map[nodegraph.NodeID]string, opts Options) string {
	cats := nodegraph.NewAnalyzer(g).Categorize()

	name := func(id nodegraph.NodeID) string {
		if n, ok := names[id]; ok {
			return n
		}
		return id.String()
	}

	// field locations of every live port, for the edge pass
	inFields := make(map[nodegraph.InputPortID]string)
	outFields := make(map[nodegraph.OutputPortID]string)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=record, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, id := range g.Nodes() {
		nodeName := name(id)

		var ins, outs []string
		for i, p := range g.InputPorts(id) {
			field := "i" + strconv.Itoa(i)
			inFields[p.ID] = strconv.Quote(nodeName) + ":" + field
			label := p.Name
			if opts.Detailed {
				if info, ok := g.InputPortInfo(p.ID.Ref()); ok {
					label = fmtPort(p.Name, info.Type, info.HasDefault, info.Default)
				}
			}
			ins = append(ins, "<"+field+"> "+escape(label))
		}
		for i, p := range g.OutputPorts(id) {
			field := "o" + strconv.Itoa(i)
			outFields[p.ID] = strconv.Quote(nodeName) + ":" + field
			label := p.Name
			if opts.Detailed {
				if info, ok := g.OutputPortInfo(p.ID.Ref()); ok {
					label = fmtPort(p.Name, info.Type, false, info.Default)
				}
			}
			outs = append(outs, "<"+field+"> "+escape(label))
		}

		title := escape(nodeName)
		if opts.Detailed {
			var desc string
			g.View(id, func(n N) { desc = fmt.Sprint(n) })
			if desc != "" && desc != nodeName {
				title += `\n` + escape(desc)
			}
		}

		rows := []string{}
		if len(ins) > 0 {
			rows = append(rows, "{"+strings.Join(ins, "|")+"}")
		}
		rows = append(rows, title)
		if len(outs) > 0 {
			rows = append(rows, "{"+strings.Join(outs, "|")+"}")
		}

		attrs := []string{`label="{` + strings.Join(rows, "|") + `}"`}
		if cat, ok := cats.Of(id); ok {
			attrs = append(attrs, "fillcolor="+categoryColors[cat])
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeName, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, cid := range g.Connections() {
		c, ok := g.Connection(cid)
		if !ok {
			continue
		}
		from, okFrom := outFields[c.From]
		to, okTo := inFields[c.To]
		if okFrom && okTo {
			fmt.Fprintf(&buf, "  %s -> %s;\n", from, to)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtPort[T any, V any](name string, ty T, hasDefault bool, def V) string {
	s := fmt.Sprintf("%s: %v", name, ty)
	if hasDefault {
		s += fmt.Sprintf(" = %v", def)
	}
	return s
}

var recordEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`{`, `\{`,
	`}`, `\}`,
	`|`, `\|`,
	`<`, `\<`,
	`>`, `\>`,
)

// escape makes s safe inside a quoted record label.
func escape(s string) string { return recordEscaper.Replace(s) }

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
