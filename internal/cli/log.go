// Package cli implements the nodegraph command-line interface.
//
// This package provides commands for evaluating node graph scenes, printing
// their execution paths and categories, rendering diagrams, stepping through
// a walk interactively and serving the pipeline over HTTP. The CLI is built
// using cobra and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - eval: Walk a scene and print recorded values
//   - path: Print the execution path
//   - categorize: Print loose, entry, exit and net nodes
//   - render: Generate DOT, SVG, PDF, or PNG diagrams
//   - inspect: Browse the walk interactively
//   - cache: Manage the output cache
//   - serve: Run the HTTP API
//
// # Configuration
//
// Settings are read from ~/.config/nodegraph/config.toml, then a .env file in
// the working directory, then NODEGRAPH_* environment variables.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
//
// # Example
//
//	import "github.com/matzehuels/nodegraph/internal/cli"
//
//	func main() {
//	    if err := cli.Execute(ctx); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/matzehuels/nodegraph/pkg/pipeline"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times an evaluation and logs a summary when it finishes. It is
// meant for a single goroutine.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with keyvals and the elapsed time.
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

// walked logs node totals over a batch of results, e.g.
// "Walked 1,204 nodes reused=96 scenes=3 elapsed=41ms".
func (p *progress) walked(results []*pipeline.Result) {
	var walked, reused int
	for _, res := range results {
		walked += res.Stats.Walked
		reused += res.Stats.Reused
	}
	p.done(fmt.Sprintf("Walked %s nodes", humanize.Comma(int64(walked))),
		"reused", reused, "scenes", len(results))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default() when
// none is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
