package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

// Cache backends accepted by the cache setting.
const (
	cacheFile  = "file"
	cacheRedis = "redis"
	cacheNone  = "none"
)

// Config holds the settings read from config.toml. Command-line flags take
// precedence over every field.
type Config struct {
	Budget    int           `toml:"budget"`
	MemoSize  int           `toml:"memo_size"`
	Timeout   time.Duration `toml:"timeout"`
	Cache     string        `toml:"cache"`
	RedisAddr string        `toml:"redis_addr"`
	Format    string        `toml:"format"`
	MongoURI  string        `toml:"mongo_uri"`
}

func defaultConfig() Config {
	return Config{
		Cache:     cacheFile,
		RedisAddr: "localhost:6379",
		Format:    "newick",
	}
}

// configPath returns the default config location ($XDG_CONFIG_HOME/hybridnet/config.toml).
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

// loadConfig reads path on top of the defaults. A missing file is not an
// error unless the path was given explicitly.
func loadConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return defaultConfig(), nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Cache {
	case cacheFile, cacheRedis, cacheNone:
	default:
		return fmt.Errorf("invalid cache backend: %s (must be 'file', 'redis', or 'none')", c.Cache)
	}
	if c.Budget < 0 {
		return fmt.Errorf("budget must not be negative")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

// intFlag returns the flag value if it was set, else fallback.
func intFlag(cmd *cobra.Command, name string, fallback int) int {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetInt(name)
		return v
	}
	return fallback
}

func durationFlag(cmd *cobra.Command, name string, fallback time.Duration) time.Duration {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetDuration(name)
		return v
	}
	return fallback
}

func stringFlag(cmd *cobra.Command, name, fallback string) string {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return fallback
}
