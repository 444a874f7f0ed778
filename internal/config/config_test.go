package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// withConfigDir points the config loader at a temp directory.
func withConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return filepath.Join(dir, "gitmate")
}

func writeConfig(t *testing.T, content string) {
	t.Helper()
	dir, err := Dir()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

const sampleConfig = `
provider = "openai"
language = "English"

[llm.openai]
api_key = "sk-test"
api_base = "http://localhost:8000/v1/chat/completions"
default_model = "qwen2.5-72b-instruct"
proxy = "http://127.0.0.1:7890"

[llm.openai.models.default]
context_tokens = 32768
max_output_tokens = 4096
reserved_tokens = 1000

[llm.gemini]
api_key = "g-test"
default_model = "gemini-2.0-flash"

[llm.gemini.models."gemini-2.0-flash"]
context_tokens = 1048576
max_output_tokens = 8192
reserved_tokens = 2000
`

func TestLoad_MissingFile(t *testing.T) {
	withConfigDir(t)
	_, err := Load()
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestLoad_ParseAndSettings(t *testing.T) {
	withConfigDir(t)
	writeConfig(t, sampleConfig)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	s, err := cfg.Settings("")
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if s.Provider != "openai" || s.Model != "qwen2.5-72b-instruct" {
		t.Errorf("Settings = %+v", s)
	}
	if s.ProxyURL != "http://127.0.0.1:7890" {
		t.Errorf("ProxyURL = %q", s.ProxyURL)
	}

	s, err = cfg.Settings("gpt-4o")
	if err != nil {
		t.Fatalf("Settings with override: %v", err)
	}
	if s.Model != "gpt-4o" {
		t.Errorf("model override ignored: %q", s.Model)
	}
}

func TestProfile_UsesConfigOverride(t *testing.T) {
	withConfigDir(t)
	writeConfig(t, sampleConfig)
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	// The private model is unknown to built-ins; the "default" override
	// from the file must apply.
	p, err := cfg.Profile("")
	if err != nil {
		t.Fatal(err)
	}
	if p.ContextTokens != 32768 || p.MaxOutputTokens != 4096 {
		t.Errorf("Profile = %+v, want 32768/4096 from file default", p)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	withConfigDir(t)
	writeConfig(t, sampleConfig)
	t.Setenv("GITMATE_PROVIDER", "gemini")
	t.Setenv("GITMATE_GEMINI_API_KEY", "g-env")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Provider != "gemini" {
		t.Errorf("Provider = %q, want gemini", cfg.Provider)
	}
	if cfg.LLM.Gemini.APIKey != "g-env" {
		t.Errorf("APIKey = %q, want env value", cfg.LLM.Gemini.APIKey)
	}
}

func TestValidate_PlaceholderKey(t *testing.T) {
	withConfigDir(t)
	writeConfig(t, `
provider = "openai"
[llm.openai]
api_key = "YOUR_OPENAI_API_KEY"
default_model = "gpt-4o"
`)
	// Make sure the real env doesn't mask the placeholder.
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GITMATE_OPENAI_API_KEY", "")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Validate = %v, want ErrNotConfigured for placeholder key", err)
	}
}

func TestValidate_SelectedProviderMissing(t *testing.T) {
	withConfigDir(t)
	writeConfig(t, `provider = "gemini"`)
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Validate = %v, want ErrNotConfigured", err)
	}
}

func TestValidate_BadModelProfile(t *testing.T) {
	withConfigDir(t)
	writeConfig(t, `
provider = "openai"
[llm.openai]
api_key = "sk-test"
default_model = "gpt-4o"
[llm.openai.models.broken]
context_tokens = 1000
max_output_tokens = 900
reserved_tokens = 200
`)
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Validate = %v, want ErrNotConfigured for over-reserved profile", err)
	}
}

func TestWriteDefault(t *testing.T) {
	withConfigDir(t)
	path, created, err := WriteDefault()
	if err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	if !created {
		t.Error("created = false on first write")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	// Second call must not overwrite.
	_, created, err = WriteDefault()
	if err != nil {
		t.Fatalf("second WriteDefault: %v", err)
	}
	if created {
		t.Error("created = true on second write")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load of written default: %v", err)
	}
	if cfg.Provider != "openai" {
		t.Errorf("Provider = %q", cfg.Provider)
	}
}
