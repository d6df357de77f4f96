// Package pkg holds the libraries behind the nodegraph CLI and server.
//
// # Overview
//
// A scene file declares nodes and the links between their ports. The
// libraries build it into a graph, work out which nodes feed an output,
// and walk them in dependency order while caching what each node produced:
//
//	scene file (TOML, YAML, JSON, HCL)
//	         ↓
//	    [mathgraph/scene] (decode, validate, build)
//	         ↓
//	    [nodegraph] (graph store, analyzer, walker)
//	         ↓
//	    [pipeline] (incremental evaluation, result, rendering)
//	         ↓
//	    JSON result, DOT/SVG/PNG/PDF diagram
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, err := runner.Execute(ctx, pipeline.Options{ScenePath: "examples/clamp.toml"})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Path, res.Recorded)
//
// # Main Packages
//
// [nodegraph] - The engine. Nodes, ports and connections live in arenas and
// are addressed by generational handles. The analyzer splits nodes into
// loose, entry, exit and net categories and computes execution paths; the
// walker runs a callback per node against an output cache.
//
// [arena] - Generational slot arena plus secondary maps keyed by its handles.
//
// [mathgraph] - A small calculator built on the engine: constants,
// arithmetic, aggregates, comparisons and sink nodes.
//
// [mathgraph/scene] - Scene documents and their conversion into a
// mathgraph.
//
// [pipeline] - Load → analyze → evaluate → render, used by both the CLI
// and the HTTP server. Node outputs are stored per node fingerprint so
// incremental runs only walk what changed.
//
// [cache] - Byte caches for node outputs and rendered artifacts: file,
// Redis, MongoDB and a null cache.
//
// [render/nodelink] - Node-link diagrams of a graph via Graphviz.
//
// [render] - SVG to PDF and PNG conversion.
//
// [errors] - Coded errors shared by every package.
//
// [observability] - Hooks for the pipeline and the HTTP server.
//
// # Testing
//
//	go test ./...                        # All tests
//	go test ./pkg/nodegraph/...          # Engine only
//	go test -run Example ./pkg/...       # Examples only
//
// [nodegraph]: https://pkg.go.dev/github.com/matzehuels/nodegraph/pkg/nodegraph
// [arena]: https://pkg.go.dev/github.com/matzehuels/nodegraph/pkg/arena
// [mathgraph]: https://pkg.go.dev/github.com/matzehuels/nodegraph/pkg/mathgraph
// [mathgraph/scene]: https://pkg.go.dev/github.com/matzehuels/nodegraph/pkg/mathgraph/scene
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/nodegraph/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/nodegraph/pkg/cache
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/nodegraph/pkg/render/nodelink
// [render]: https://pkg.go.dev/github.com/matzehuels/nodegraph/pkg/render
// [errors]: https://pkg.go.dev/github.com/matzehuels/nodegraph/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/nodegraph/pkg/observability
package pkg
