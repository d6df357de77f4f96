package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	isolate(t)

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if diff := cmp.Diff(defaultConfig(), cfg); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}
}

func TestLoadConfigFile(t *testing.T) {
	isolate(t)

	path := writeConfig(t, `
[cache]
backend = "redis"
redis_addr = "localhost:6379"
ttl = "36h"

[walk]
policy = "lenient"

[server]
addr = ":9090"
`)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	want := Config{
		Cache: CacheConfig{
			Backend:   backendRedis,
			RedisAddr: "localhost:6379",
			TTL:       duration{36 * time.Hour},
		},
		Walk:   WalkConfig{Policy: "lenient"},
		Server: ServerConfig{Addr: ":9090"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}
}

func TestLoadConfigDefaultLocation(t *testing.T) {
	isolate(t)

	home := os.Getenv("XDG_CONFIG_HOME")
	if err := os.MkdirAll(filepath.Join(home, appName), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(home, appName, "config.toml"), []byte("[server]\naddr = \":7070\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Errorf("server addr = %q, want :7070", cfg.Server.Addr)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv(envCache, backendMongo)
	t.Setenv(envMongoURI, "mongodb://db:27017")
	t.Setenv(envAddr, ":1234")
	t.Setenv(envPolicy, "lenient")

	path := writeConfig(t, "[cache]\nbackend = \"file\"\n")
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Cache.Backend != backendMongo || cfg.Cache.MongoURI != "mongodb://db:27017" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Server.Addr != ":1234" || cfg.Walk.Policy != "lenient" {
		t.Errorf("server = %+v, walk = %+v", cfg.Server, cfg.Walk)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	isolate(t)

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown key", "[cache]\nbakend = \"file\"\n", "unknown key"},
		{"bad backend", "[cache]\nbackend = \"memcached\"\n", "invalid cache backend"},
		{"redis without addr", "[cache]\nbackend = \"redis\"\n", "redis_addr"},
		{"mongo without uri", "[cache]\nbackend = \"mongo\"\n", "mongo_uri"},
		{"bad ttl", "[cache]\nttl = \"soon\"\n", "invalid duration"},
		{"bad toml", "[cache\n", "config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("loadConfig() error = %v, want %q", err, tt.want)
			}
		})
	}

	if _, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("an explicit config path that does not exist should fail")
	}
}
