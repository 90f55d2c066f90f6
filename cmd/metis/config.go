package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fwojciec/metis"
	"github.com/fwojciec/metis/gemini"
	"github.com/fwojciec/metis/ingest"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read when no config path is given. It may be absent.
const DefaultConfigFile = "config.yaml"

// Store backends.
const (
	StoreFS     = "fs"
	StoreSQLite = "sqlite"
)

// Config holds the settings of a metis run. Relative Inbox and Collection
// paths are resolved against Vault; the remaining paths against the working
// directory.
type Config struct {
	Vault      string `yaml:"vault"`
	Inbox      string `yaml:"inbox"`
	Collection string `yaml:"collection"`
	Media      string `yaml:"media"`

	Store string `yaml:"store"`
	DB    string `yaml:"db"`

	StatePath string `yaml:"state_path"`
	UserAgent string `yaml:"user_agent"`

	FirecrawlAPIKey string `yaml:"firecrawl_api_key"`
	GeminiAPIKey    string `yaml:"gemini_api_key"`
	Model           string `yaml:"model"`
	SummaryPrompt   string `yaml:"summary_prompt"`
	TargetLanguage  string `yaml:"target_language"`
}

// DefaultConfig returns the settings used when nothing overrides them.
func DefaultConfig() *Config {
	return &Config{
		Vault:          "obsidian-vault",
		Inbox:          "URL_INBOX.md",
		Collection:     "inbox",
		Media:          filepath.Join("data", "media"),
		Store:          StoreFS,
		DB:             filepath.Join("data", "metis.db"),
		StatePath:      filepath.Join("data", "wechat_auth.json"),
		UserAgent:      metis.DefaultUserAgent,
		Model:          gemini.DefaultModel,
		TargetLanguage: ingest.DefaultTargetLanguage,
	}
}

// LoadConfig reads the YAML file at path over the defaults, then applies
// environment overrides read through getenv. An empty path reads
// DefaultConfigFile when it exists.
func LoadConfig(path string, getenv func(string) string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, metis.Errorf(metis.EINVALID, "invalid config %s: %v", path, err)
		}
	}

	cfg.applyEnv(getenv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	for key, dst := range map[string]*string{
		"METIS_VAULT":       &c.Vault,
		"METIS_INBOX":       &c.Inbox,
		"METIS_COLLECTION":  &c.Collection,
		"METIS_MEDIA":       &c.Media,
		"METIS_STORE":       &c.Store,
		"METIS_DB":          &c.DB,
		"METIS_STATE_PATH":  &c.StatePath,
		"METIS_USER_AGENT":  &c.UserAgent,
		"METIS_MODEL":       &c.Model,
		"METIS_TARGET_LANG": &c.TargetLanguage,
		"FIRECRAWL_API_KEY": &c.FirecrawlAPIKey,
		"GEMINI_API_KEY":    &c.GeminiAPIKey,
	} {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	if c.Vault == "" {
		return metis.Errorf(metis.EINVALID, "vault path required")
	}
	if c.Collection == "" {
		return metis.Errorf(metis.EINVALID, "collection folder required")
	}
	switch c.Store {
	case StoreFS:
	case StoreSQLite:
		if c.DB == "" {
			return metis.Errorf(metis.EINVALID, "db path required for the sqlite store")
		}
	default:
		return metis.Errorf(metis.EINVALID, "unknown store %q", c.Store)
	}
	return nil
}

// InboxPath returns the path of the inbox seed file.
func (c *Config) InboxPath() string {
	return c.inVault(c.Inbox)
}

// CollectionDir returns the folder holding stored articles.
func (c *Config) CollectionDir() string {
	return c.inVault(c.Collection)
}

// MediaLink returns the prefix written into image references so that they
// resolve from the collection folder.
func (c *Config) MediaLink() string {
	collection, err := filepath.Abs(c.CollectionDir())
	if err != nil {
		return filepath.ToSlash(c.Media)
	}
	media, err := filepath.Abs(c.Media)
	if err != nil {
		return filepath.ToSlash(c.Media)
	}
	rel, err := filepath.Rel(collection, media)
	if err != nil {
		return filepath.ToSlash(media)
	}
	return filepath.ToSlash(rel)
}

func (c *Config) inVault(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Vault, p)
}

// EnsureDirs creates the folders the configured store and pipeline write to.
func (c *Config) EnsureDirs() error {
	dirs := []string{c.CollectionDir(), c.Media}
	if c.Store == StoreSQLite {
		dirs = append(dirs, filepath.Dir(c.DB))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
