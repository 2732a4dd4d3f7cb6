// Package config loads the tool's defaults from a YAML file under the
// user's XDG config directory. Flags and environment variables layered
// on top by the CLI always win over file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	DefaultProvider   = "openai"
	DefaultModel      = "gpt-4o"
	DefaultAPIURL     = "https://api.openai.com/v1"
	DefaultMaxRetries = 3
)

type Config struct {
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	APIURL     string `yaml:"api_url"`
	MaxRetries uint   `yaml:"max_retries"`
}

func Default() Config {
	return Config{
		Provider:   DefaultProvider,
		Model:      DefaultModel,
		APIURL:     DefaultAPIURL,
		MaxRetries: DefaultMaxRetries,
	}
}

// Store reads the config file through an injected filesystem.
type Store struct {
	fs   *afero.Afero
	path string
}

func NewStore(fs *afero.Afero) *Store {
	return NewStoreWithPath(fs, filepath.Join(xdg.ConfigHome, "ticketsmith", "config.yaml"))
}

func NewStoreWithPath(fs *afero.Afero, path string) *Store {
	return &Store{fs: fs, path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Load returns the built-in defaults overlaid with whatever the config
// file sets. A missing file is not an error; a malformed one is.
func (s *Store) Load() (Config, error) {
	cfg := Default()

	data, err := s.fs.ReadFile(s.path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config file %s: %w", s.path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file %s: %w", s.path, err)
	}
	return cfg, nil
}
