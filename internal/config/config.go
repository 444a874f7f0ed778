package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/dshills/gitmate/internal/budget"
	"github.com/dshills/gitmate/internal/providers"
)

// ErrNotConfigured indicates the config file is missing or incomplete.
// Configuration errors are fatal and never retried.
var ErrNotConfigured = errors.New("not configured")

// Config is the on-disk configuration.
type Config struct {
	Provider string       `toml:"provider"`
	Language string       `toml:"language"`
	LLM      LLMProviders `toml:"llm"`
}

// LLMProviders holds the per-provider connection settings.
type LLMProviders struct {
	OpenAI *ProviderConfig `toml:"openai"`
	Gemini *ProviderConfig `toml:"gemini"`
	Local  *ProviderConfig `toml:"local"`
}

// ProviderConfig configures one backend.
type ProviderConfig struct {
	APIKey       string                 `toml:"api_key"`
	APIBase      string                 `toml:"api_base,omitempty"`
	DefaultModel string                 `toml:"default_model"`
	Proxy        string                 `toml:"proxy,omitempty"`
	Timeout      int                    `toml:"timeout_seconds,omitempty"`
	Models       map[string]ModelConfig `toml:"models"`
}

// ModelConfig is a per-model token profile override.
type ModelConfig struct {
	ContextTokens   int `toml:"context_tokens"`
	MaxOutputTokens int `toml:"max_output_tokens"`
	ReservedTokens  int `toml:"reserved_tokens"`
}

// Default returns the configuration written by `gitmate init`.
func Default() Config {
	return Config{
		Provider: "openai",
		Language: "English",
		LLM: LLMProviders{
			OpenAI: &ProviderConfig{
				APIKey:       "YOUR_OPENAI_API_KEY",
				DefaultModel: "gpt-4o-mini",
				Models: map[string]ModelConfig{
					"default": {ContextTokens: 32768, MaxOutputTokens: 4096, ReservedTokens: 1000},
				},
			},
			Gemini: &ProviderConfig{
				APIKey:       "YOUR_GEMINI_API_KEY",
				DefaultModel: "gemini-2.0-flash",
				Models: map[string]ModelConfig{
					"gemini-2.0-flash": {ContextTokens: 1048576, MaxOutputTokens: 8192, ReservedTokens: 2000},
				},
			},
			Local: &ProviderConfig{
				APIBase:      "http://localhost:11434",
				DefaultModel: "qwen2.5-coder",
				Models: map[string]ModelConfig{
					"default": {ContextTokens: 32768, MaxOutputTokens: 4096, ReservedTokens: 1000},
				},
			},
		},
	}
}

// Dir returns the platform-appropriate config directory.
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gitmate"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "gitmate"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "gitmate"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "gitmate"), nil
	default:
		return filepath.Join(home, ".config", "gitmate"), nil
	}
}

// Path returns the full path of the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file and layers environment overrides on top.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, fmt.Errorf("%w: config file %s does not exist, run `gitmate init` first", ErrNotConfigured, path)
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	mergeEnv(&cfg)
	return cfg, nil
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("GITMATE_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("GITMATE_LANGUAGE"); v != "" {
		cfg.Language = v
	}
	if cfg.LLM.OpenAI != nil {
		if v := firstEnv("GITMATE_OPENAI_API_KEY", "OPENAI_API_KEY"); v != "" {
			cfg.LLM.OpenAI.APIKey = v
		}
		if v := os.Getenv("GITMATE_OPENAI_BASE_URL"); v != "" {
			cfg.LLM.OpenAI.APIBase = v
		}
	}
	if cfg.LLM.Gemini != nil {
		if v := firstEnv("GITMATE_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"); v != "" {
			cfg.LLM.Gemini.APIKey = v
		}
	}
	if cfg.LLM.Local != nil {
		if v := os.Getenv("OLLAMA_HOST"); v != "" {
			cfg.LLM.Local.APIBase = v
		}
	}
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

// active returns the ProviderConfig selected by cfg.Provider.
func (c Config) active() (*ProviderConfig, error) {
	var pc *ProviderConfig
	switch c.Provider {
	case "openai":
		pc = c.LLM.OpenAI
	case "gemini", "google":
		pc = c.LLM.Gemini
	case "local", "ollama", "lmstudio":
		pc = c.LLM.Local
	default:
		return nil, fmt.Errorf("%w: unsupported provider %q", ErrNotConfigured, c.Provider)
	}
	if pc == nil {
		return nil, fmt.Errorf("%w: provider %q selected but has no [llm.%s] section", ErrNotConfigured, c.Provider, c.Provider)
	}
	return pc, nil
}

// Validate checks that the selected provider is usable.
func (c Config) Validate() error {
	pc, err := c.active()
	if err != nil {
		return err
	}
	placeholder := pc.APIKey == "YOUR_OPENAI_API_KEY" || pc.APIKey == "YOUR_GEMINI_API_KEY"
	if c.Provider != "local" && c.Provider != "ollama" && c.Provider != "lmstudio" {
		if pc.APIKey == "" || placeholder {
			return fmt.Errorf("%w: provider %q has no API key set", ErrNotConfigured, c.Provider)
		}
	}
	for name, m := range pc.Models {
		p := budget.Profile{ContextTokens: m.ContextTokens, MaxOutputTokens: m.MaxOutputTokens, ReservedTokens: m.ReservedTokens}
		if !p.Valid() {
			return fmt.Errorf("%w: model profile %q reserves more tokens than its context window", ErrNotConfigured, name)
		}
	}
	return nil
}

// Settings builds the provider gateway settings for the active provider.
// modelOverride, when non-empty, replaces the configured default model.
func (c Config) Settings(modelOverride string) (providers.Settings, error) {
	pc, err := c.active()
	if err != nil {
		return providers.Settings{}, err
	}
	model := pc.DefaultModel
	if modelOverride != "" {
		model = modelOverride
	}
	if model == "" {
		return providers.Settings{}, fmt.Errorf("%w: provider %q has no default_model", ErrNotConfigured, c.Provider)
	}
	return providers.Settings{
		Provider: c.Provider,
		Model:    model,
		APIKey:   pc.APIKey,
		BaseURL:  pc.APIBase,
		ProxyURL: pc.Proxy,
		Timeout:  time.Duration(pc.Timeout) * time.Second,
	}, nil
}

// Profile resolves the token profile for the active provider and model,
// honoring config-file overrides and falling back to built-ins.
func (c Config) Profile(modelOverride string) (budget.Profile, error) {
	s, err := c.Settings(modelOverride)
	if err != nil {
		return budget.Profile{}, err
	}
	pc, err := c.active()
	if err != nil {
		return budget.Profile{}, err
	}
	overrides := make(map[string]budget.Profile, len(pc.Models))
	for name, m := range pc.Models {
		overrides[name] = budget.Profile{
			ContextTokens:   m.ContextTokens,
			MaxOutputTokens: m.MaxOutputTokens,
			ReservedTokens:  m.ReservedTokens,
		}
	}
	return budget.Lookup(s.Provider, s.Model, overrides), nil
}

// WriteDefault writes the default config file if none exists and returns its
// path. Existing files are never overwritten.
func WriteDefault() (string, bool, error) {
	path, err := Path()
	if err != nil {
		return "", false, err
	}
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", false, fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", false, fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(Default()); err != nil {
		return "", false, fmt.Errorf("writing default config: %w", err)
	}
	return path, true, nil
}
