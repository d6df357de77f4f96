package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nodegraph/pkg/pipeline"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		debug bool
	}{
		{"info", LogInfo, false},
		{"verbose", LogDebug, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := newLogger(&buf, tt.level)

			l.Debug("node walked", "node", "add")
			if got := buf.Len() > 0; got != tt.debug {
				t.Errorf("debug output = %v, want %v", got, tt.debug)
			}
			l.Info("scene loaded")
			if !strings.Contains(buf.String(), "scene loaded") {
				t.Errorf("info line missing:\n%s", buf.String())
			}
		})
	}
}

func TestProgressWalked(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, LogInfo))

	prog.walked([]*pipeline.Result{
		{Stats: pipeline.Stats{Walked: 1200, Reused: 3}},
		{Stats: pipeline.Stats{Walked: 4, Reused: 1}},
	})

	out := buf.String()
	for _, want := range []string{"Walked 1,204 nodes", "reused=4", "scenes=2", "elapsed="} {
		if !strings.Contains(out, want) {
			t.Errorf("progress line missing %q:\n%s", want, out)
		}
	}
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	custom := newLogger(&buf, LogInfo)

	if got := loggerFromContext(withLogger(context.Background(), custom)); got != custom {
		t.Error("loggerFromContext() did not return the attached logger")
	}
	if got := loggerFromContext(context.Background()); got != log.Default() {
		t.Error("loggerFromContext() without a logger should fall back to log.Default()")
	}
}
