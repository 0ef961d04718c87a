// Package config loads and persists the assistant's YAML configuration.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	// Timezone is the IANA timezone applied to timed events that do not
	// carry one. Empty means "ask the calendar account for its default".
	Timezone string `yaml:"timezone"`

	// Calendar is the calendar events go to when a request does not name
	// one. Accepts an id or a display name.
	Calendar string `yaml:"calendar"`

	// OnConflict picks what happens when an identical event already
	// exists: "skip" (default), "update" or "error".
	OnConflict string `yaml:"on_conflict"`

	// SendUpdates controls invitee notifications on insert and patch:
	// "all", "externalOnly" or "none".
	SendUpdates string `yaml:"send_updates"`

	// DataDir holds per-owner caches, the undo log and recent keys.
	DataDir string `yaml:"data_dir"`

	// CredentialsFile is the OAuth client credentials JSON.
	CredentialsFile string `yaml:"credentials_file"`

	// DatabaseFile is the sqlite file for accounts and action history.
	DatabaseFile string `yaml:"database_file"`
}

func DefaultConfig() *Config {
	return &Config{
		Calendar:        "primary",
		OnConflict:      "skip",
		SendUpdates:     "all",
		DataDir:         "data",
		CredentialsFile: "credentials.json",
		DatabaseFile:    "calassist.db",
	}
}

// Normalize fills zero values and rejects unknown enum values, so
// partially filled configs still behave.
func (c *Config) Normalize() error {
	if c.Calendar == "" {
		c.Calendar = "primary"
	}
	switch c.OnConflict {
	case "skip", "update", "error":
	case "":
		c.OnConflict = "skip"
	default:
		return errors.New("config: on_conflict must be skip, update or error")
	}
	switch c.SendUpdates {
	case "all", "externalOnly", "none":
	case "":
		c.SendUpdates = "all"
	default:
		return errors.New("config: send_updates must be all, externalOnly or none")
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.CredentialsFile == "" {
		c.CredentialsFile = "credentials.json"
	}
	if c.DatabaseFile == "" {
		c.DatabaseFile = "calassist.db"
	}
	return nil
}

// Load reads the config at path. On first run the file does not exist
// yet; a default config is written there and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes cfg atomically: temp file in the same directory, then
// rename, final permissions 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	if err := cfg.Normalize(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".calassist-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
