package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/klauspost/compress/zlib"
)

// Config stores repository-local settings.
type Config struct {
	Core CoreConfig `toml:"core"`
}

// CoreConfig is the [core] table of config.toml.
type CoreConfig struct {
	// Bare marks a repository without a working tree.
	Bare bool `toml:"bare"`
	// Compression is the zlib level used by the object store (-1..9).
	Compression int `toml:"compression"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Core: CoreConfig{Compression: zlib.DefaultCompression},
	}
}

func configPath(gitDir string) string {
	return filepath.Join(gitDir, "config.toml")
}

// readConfig reads <gitDir>/config.toml. A missing file yields defaults.
func readConfig(gitDir string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(configPath(gitDir), cfg); err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return cfg, nil
}

// WriteConfig atomically writes the repository's config.toml.
func (r *Repo) WriteConfig(cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	tmp, err := os.CreateTemp(r.GitDir, ".config-tmp-*")
	if err != nil {
		return fmt.Errorf("write config: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if err := toml.NewEncoder(tmp).Encode(cfg); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write config: encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: close: %w", err)
	}

	if err := os.Rename(tmpName, configPath(r.GitDir)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: rename: %w", err)
	}
	r.Config = cfg
	return nil
}
