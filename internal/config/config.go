// Package config loads refsync configuration from config files,
// environment variables, and .env files.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/shelfmark/refsync/pkg/constants"
	"github.com/shelfmark/refsync/pkg/errors"
)

// envPrefix namespaces environment variables, e.g. REFSYNC_ZOTERO_TOKEN.
const envPrefix = "REFSYNC"

// Zotero holds the source library credentials.
type Zotero struct {
	Token   string `yaml:"token"`
	GroupID string `yaml:"group_id"`
	BaseURL string `yaml:"base_url,omitempty"`
}

// Notion holds the target database credentials.
type Notion struct {
	Token      string `yaml:"token"`
	DatabaseID string `yaml:"database_id"`
	BaseURL    string `yaml:"base_url,omitempty"`
}

// Sync holds run behavior knobs.
type Sync struct {
	DryRun        bool          `yaml:"dry_run"`
	Timeout       time.Duration `yaml:"timeout"`
	Concurrency   int           `yaml:"concurrency"`
	LinkBack      bool          `yaml:"link_back"`
	SkipUnchanged bool          `yaml:"skip_unchanged"`
	FailFast      bool          `yaml:"fail_fast"`
}

// Log holds logging configuration.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the full application configuration.
type Config struct {
	Zotero Zotero `yaml:"zotero"`
	Notion Notion `yaml:"notion"`
	Sync   Sync   `yaml:"sync"`
	Log    Log    `yaml:"log"`
}

// Load reads configuration from all sources in order of precedence:
// 1. Environment variables (REFSYNC_*)
// 2. .env files
// 3. Config file (--config flag, or .refsync.yaml in cwd / home)
// 4. Defaults
func Load(configFile string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, &errors.ConfigError{Component: "file", Message: fmt.Sprintf("cannot read %s", configFile), Err: err}
		}
	} else {
		v.SetConfigName(".refsync")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		// A missing config file is fine; env vars may carry everything.
		_ = v.ReadInConfig()
	}

	cfg := &Config{
		Zotero: Zotero{
			Token:   v.GetString("zotero.token"),
			GroupID: v.GetString("zotero.group_id"),
			BaseURL: v.GetString("zotero.base_url"),
		},
		Notion: Notion{
			Token:      v.GetString("notion.token"),
			DatabaseID: v.GetString("notion.database_id"),
			BaseURL:    v.GetString("notion.base_url"),
		},
		Sync: Sync{
			DryRun:        v.GetBool("sync.dry_run"),
			Timeout:       v.GetDuration("sync.timeout"),
			Concurrency:   v.GetInt("sync.concurrency"),
			LinkBack:      v.GetBool("sync.link_back"),
			SkipUnchanged: v.GetBool("sync.skip_unchanged"),
			FailFast:      v.GetBool("sync.fail_fast"),
		},
		Log: Log{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sync.timeout", constants.DefaultRunTimeout)
	v.SetDefault("sync.concurrency", 1)
	v.SetDefault("sync.link_back", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")
}

// Validate checks that every required credential is present.
func (c *Config) Validate() error {
	required := []struct {
		value string
		key   string
	}{
		{c.Zotero.Token, "zotero.token"},
		{c.Zotero.GroupID, "zotero.group_id"},
		{c.Notion.Token, "notion.token"},
		{c.Notion.DatabaseID, "notion.database_id"},
	}
	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.key)
		}
	}
	if len(missing) > 0 {
		return &errors.ConfigError{
			Message: fmt.Sprintf("missing %s", strings.Join(missing, ", ")),
			Err:     errors.ErrInvalidInput,
		}
	}
	if c.Sync.Concurrency < 1 || c.Sync.Concurrency > constants.MaxConcurrency {
		return &errors.ConfigError{
			Component: "sync",
			Message:   fmt.Sprintf("concurrency must be between 1 and %d", constants.MaxConcurrency),
			Err:       errors.ErrInvalidInput,
		}
	}
	return nil
}

// Example returns a commented starter config as YAML.
func Example() ([]byte, error) {
	example := Config{
		Zotero: Zotero{Token: "zotero-api-key", GroupID: "1234567"},
		Notion: Notion{Token: "secret_notion-integration-token", DatabaseID: "0123456789abcdef0123456789abcdef"},
		Sync: Sync{
			Timeout:     constants.DefaultRunTimeout,
			Concurrency: 1,
			LinkBack:    true,
		},
		Log: Log{Level: "info", Format: "auto"},
	}
	out, err := yaml.Marshal(example)
	if err != nil {
		return nil, fmt.Errorf("marshal example config: %w", err)
	}
	return out, nil
}

// WriteExample writes the starter config to path, refusing to clobber
// an existing file.
func WriteExample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return &errors.ConfigError{Message: fmt.Sprintf("%s already exists", path), Err: errors.ErrInvalidInput}
	}
	out, err := Example()
	if err != nil {
		return err
	}
	// The file holds API tokens once filled in; keep it owner-only.
	if err := os.WriteFile(path, out, constants.SecureFilePermissions); err != nil {
		return &errors.ConfigError{Message: fmt.Sprintf("cannot write %s", path), Err: err}
	}
	return nil
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}
