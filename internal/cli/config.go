package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Cache backends selectable in the config file or NODEGRAPH_CACHE.
const (
	backendFile  = "file"
	backendRedis = "redis"
	backendMongo = "mongo"
	backendNone  = "none"
)

// Environment variables that override the config file.
const (
	envCache     = "NODEGRAPH_CACHE"
	envCacheDir  = "NODEGRAPH_CACHE_DIR"
	envRedisAddr = "NODEGRAPH_REDIS_ADDR"
	envMongoURI  = "NODEGRAPH_MONGO_URI"
	envAddr      = "NODEGRAPH_ADDR"
	envPolicy    = "NODEGRAPH_POLICY"
)

const defaultAddr = ":8080"

// Config is the on-disk CLI configuration.
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "72h"
//
//	[walk]
//	policy = "lenient"
//
//	[server]
//	addr = ":9090"
type Config struct {
	Cache  CacheConfig  `toml:"cache"`
	Walk   WalkConfig   `toml:"walk"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects and configures the output cache.
type CacheConfig struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	MongoURI  string   `toml:"mongo_uri"`
	TTL       duration `toml:"ttl"`
}

// WalkConfig holds walk defaults.
type WalkConfig struct {
	Policy string `toml:"policy"`
}

// ServerConfig configures "nodegraph serve".
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// duration decodes TOML strings such as "36h".
type duration struct{ time.Duration }

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func defaultConfig() Config {
	return Config{
		Cache:  CacheConfig{Backend: backendFile},
		Walk:   WalkConfig{Policy: "strict"},
		Server: ServerConfig{Addr: defaultAddr},
	}
}

// configPath returns the config file location using XDG standard
// (~/.config/nodegraph/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// loadConfig reads path (or the default location when empty), then applies
// a .env file from the working directory and the NODEGRAPH_* variables. A
// missing config file is not an error.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		p, err := configPath()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		switch {
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		case err != nil:
			return cfg, fmt.Errorf("config %s: %w", path, err)
		default:
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				return cfg, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
			}
		}
	}

	// .env only fills variables the environment does not already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Cache.Backend, envCache)
	set(&c.Cache.Dir, envCacheDir)
	set(&c.Cache.RedisAddr, envRedisAddr)
	set(&c.Cache.MongoURI, envMongoURI)
	set(&c.Server.Addr, envAddr)
	set(&c.Walk.Policy, envPolicy)
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case backendFile, backendNone:
	case backendRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache backend redis requires redis_addr (or %s)", envRedisAddr)
		}
	case backendMongo:
		if c.Cache.MongoURI == "" {
			return fmt.Errorf("cache backend mongo requires mongo_uri (or %s)", envMongoURI)
		}
	default:
		return fmt.Errorf("invalid cache backend: %q (must be one of: file, redis, mongo, none)", c.Cache.Backend)
	}
	return nil
}
