package cli

import (
	"strings"
	"testing"

	"github.com/matzehuels/nodegraph/pkg/buildinfo"
)

func TestSetVersion(t *testing.T) {
	v, c, d := buildinfo.Version, buildinfo.Commit, buildinfo.Date
	t.Cleanup(func() { buildinfo.Version, buildinfo.Commit, buildinfo.Date = v, c, d })

	SetVersion("1.0.0", "abc123", "2024-01-01")
	if buildinfo.Version != "1.0.0" || buildinfo.Commit != "abc123" || buildinfo.Date != "2024-01-01" {
		t.Errorf("buildinfo = %s", buildinfo.String())
	}

	// Empty values keep what is there.
	SetVersion("", "", "")
	if buildinfo.Version != "1.0.0" {
		t.Errorf("version = %q, want it unchanged", buildinfo.Version)
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(nil, LogInfo).RootCommand()

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	got := strings.Join(names, ",")
	for _, want := range []string{"eval", "path", "categorize", "render", "inspect", "cache", "serve", "completion"} {
		if !strings.Contains(got, want) {
			t.Errorf("root command missing %q (have %s)", want, got)
		}
	}
}

func TestVersionFlag(t *testing.T) {
	isolate(t)

	out, err := runCLI(t, "--version")
	if err != nil {
		t.Fatalf("--version: %v", err)
	}
	if !strings.Contains(out, buildinfo.Version) {
		t.Errorf("version output %q does not contain %q", out, buildinfo.Version)
	}
}

func TestCompletion(t *testing.T) {
	isolate(t)

	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		out, err := runCLI(t, "completion", shell)
		if err != nil {
			t.Fatalf("completion %s: %v", shell, err)
		}
		if !strings.Contains(out, appName) {
			t.Errorf("%s completion does not mention %s", shell, appName)
		}
	}

	if _, err := runCLI(t, "completion", "tcsh"); err == nil {
		t.Error("unsupported shell should fail")
	}
}
