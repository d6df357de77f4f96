package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/matzehuels/nodegraph/pkg/cache"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir(CacheConfig{})
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	// Verify the expected structure: $HOME/.cache/nodegraph
	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", "nodegraph")
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	dir, err := cacheDir(CacheConfig{})
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if dir != filepath.Join(xdg, appName) {
		t.Errorf("cacheDir() = %q, want under %q", dir, xdg)
	}

	// An explicit directory wins over XDG.
	dir, _ = cacheDir(CacheConfig{Dir: "/tmp/custom"})
	if dir != "/tmp/custom" {
		t.Errorf("cacheDir() = %q, want /tmp/custom", dir)
	}
}

func TestNewCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	tests := []struct {
		name    string
		cfg     CacheConfig
		noCache bool
		check   func(cache.Cache) bool
	}{
		{
			name:    "no-cache flag",
			cfg:     CacheConfig{Backend: backendFile, Dir: t.TempDir()},
			noCache: true,
			check:   func(c cache.Cache) bool { _, ok := c.(*cache.NullCache); return ok },
		},
		{
			name:  "none backend",
			cfg:   CacheConfig{Backend: backendNone},
			check: func(c cache.Cache) bool { _, ok := c.(*cache.NullCache); return ok },
		},
		{
			name:  "file backend",
			cfg:   CacheConfig{Backend: backendFile, Dir: t.TempDir()},
			check: func(c cache.Cache) bool { _, ok := c.(*cache.FileCache); return ok },
		},
		{
			name:  "redis backend",
			cfg:   CacheConfig{Backend: backendRedis, RedisAddr: mr.Addr()},
			check: func(c cache.Cache) bool { _, ok := c.(*cache.RedisCache); return ok },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := newCache(ctx, tt.cfg, tt.noCache)
			if err != nil {
				t.Fatalf("newCache() error: %v", err)
			}
			defer c.Close()
			if !tt.check(c) {
				t.Errorf("newCache() = %T", c)
			}
		})
	}
}

func TestNewCacheRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := newCache(context.Background(), CacheConfig{Backend: backendRedis, RedisAddr: addr}, false)
	if err == nil || !strings.Contains(err.Error(), addr) {
		t.Errorf("newCache() error = %v, want one naming %s", err, addr)
	}
}
