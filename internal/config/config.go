// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/llmchat/internal/logging"
	"github.com/jeranaias/llmchat/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Backend names accepted in [engine] backend.
const (
	BackendOllama = "ollama"
	BackendLlama  = "llama"
)

// Config represents the complete llmchat configuration.
type Config struct {
	Engine EngineConfig `toml:"engine"`
	Ollama OllamaConfig `toml:"ollama"`
	Llama  LlamaConfig  `toml:"llama"`
	UI     UIConfig     `toml:"ui"`
	Log    LogConfig    `toml:"log"`
}

// EngineConfig selects the inference backend and the models offered.
type EngineConfig struct {
	// Backend is "llama" (in-process GGUF) or "ollama" (HTTP).
	Backend string `toml:"backend"`

	// ModelsDir is scanned for *.gguf files and passed to the backend as
	// the path hint when loading.
	ModelsDir string `toml:"models_dir"`

	// DefaultModel is selected at startup.
	DefaultModel string `toml:"default_model"`

	// Models is the selector list shown before the models directory is
	// scanned.
	Models []string `toml:"models"`
}

// OllamaConfig configures the Ollama backend.
type OllamaConfig struct {
	URL string `toml:"url"`
}

// LlamaConfig configures the in-process llama.cpp backend.
type LlamaConfig struct {
	ContextSize    int    `toml:"context_size"`
	Threads        int    `toml:"threads"`
	MaxTokens      int    `toml:"max_tokens"`
	PromptTemplate string `toml:"prompt_template"`
}

// UIConfig contains user interface settings.
type UIConfig struct {
	// Width of the chat column in cells.
	Width int `toml:"width"`

	// SeparatorWidth is the length of the "=" rule between turns.
	SeparatorWidth int `toml:"separator_width"`
}

// LogConfig controls the log file.
type LogConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultModels are offered when nothing else is configured.
var DefaultModels = []string{
	"orca-2-7b.Q4_0.gguf",
	"orca-2-13b.Q4_0.gguf",
	"orca-mini-3b-gguf2-q4_0.gguf",
}

// DefaultLlamaModel is selected at startup by the llama backend when no
// model is configured.
const DefaultLlamaModel = "orca-mini-3b-gguf2-q4_0.gguf"

// Default returns a new Config with default values. The model list is
// backend dependent and is filled by SetDefaults.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Backend:   BackendLlama,
			ModelsDir: "./models",
		},
		Ollama: OllamaConfig{
			URL: "http://127.0.0.1:11434",
		},
		Llama: LlamaConfig{
			ContextSize:    2048,
			Threads:        0,
			MaxTokens:      200,
			PromptTemplate: "### Human:\n{prompt}\n\n### Assistant:\n",
		},
		UI: UIConfig{
			Width:          96,
			SeparatorWidth: 50,
		},
		Log: LogConfig{
			File:  "~/.llmchat/llmchat.log",
			Level: "info",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the llmchat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".llmchat"), nil
}

// ConfigPath returns the path to the default TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads ~/.llmchat/config.toml if it exists, applies environment
// overrides, fills defaults and validates. A missing file is not an error.
func Load() (*Config, error) {
	return LoadWithOverrides("", Overrides{})
}

// LoadFromPath loads configuration from a specific TOML file with full
// validation. Keys absent from the file keep their default values.
func LoadFromPath(path string) (*Config, error) {
	cfg, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	return finish(cfg, Overrides{})
}

// Overrides carries command-line values. Empty fields leave the loaded
// value alone.
type Overrides struct {
	Backend   string
	Model     string
	ModelsDir string
	OllamaURL string
	LogFile   string
	LogLevel  string
}

// LoadWithOverrides loads path, or the default location when path is empty,
// and applies o after the environment so flags win over both.
func LoadWithOverrides(path string, o Overrides) (*Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return finish(Default(), o)
		}
		if _, statErr := os.Stat(p); statErr != nil {
			return finish(Default(), o)
		}
		path = p
	}
	cfg, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	return finish(cfg, o)
}

func decodeFile(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

func finish(cfg *Config, o Overrides) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.ApplyOverrides(o)
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyOverrides copies the non-empty fields of o into c.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Backend != "" {
		c.Engine.Backend = o.Backend
	}
	if o.Model != "" {
		c.Engine.DefaultModel = o.Model
	}
	if o.ModelsDir != "" {
		c.Engine.ModelsDir = o.ModelsDir
	}
	if o.OllamaURL != "" {
		c.Ollama.URL = o.OllamaURL
	}
	if o.LogFile != "" {
		c.Log.File = o.LogFile
	}
	if o.LogLevel != "" {
		c.Log.Level = o.LogLevel
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes cfg to path as TOML, creating the directory if needed.
func Save(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# llmchat configuration file\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// String renders the configuration as TOML.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return buf.String()
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg})
	}

	switch c.Engine.Backend {
	case BackendOllama, BackendLlama:
	default:
		add("engine.backend", fmt.Sprintf("must be %q or %q, got %q", BackendLlama, BackendOllama, c.Engine.Backend))
	}
	if strings.TrimSpace(c.Engine.ModelsDir) == "" {
		add("engine.models_dir", "must not be empty")
	}
	for i, m := range c.Engine.Models {
		if strings.TrimSpace(m) == "" {
			add(fmt.Sprintf("engine.models[%d]", i), "must not be empty")
		}
	}

	if u, err := url.Parse(c.Ollama.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		add("ollama.url", fmt.Sprintf("must be an http(s) URL, got %q", c.Ollama.URL))
	}

	if c.Llama.ContextSize < 64 || c.Llama.ContextSize > 1<<20 {
		add("llama.context_size", fmt.Sprintf("must be between 64 and %d, got %d", 1<<20, c.Llama.ContextSize))
	}
	if c.Llama.Threads < 0 {
		add("llama.threads", "must be >= 0 (0 lets llama.cpp decide)")
	}
	if c.Llama.MaxTokens < 1 {
		add("llama.max_tokens", "must be at least 1")
	}
	if !strings.Contains(c.Llama.PromptTemplate, "{prompt}") {
		add("llama.prompt_template", "must contain {prompt}")
	}

	if c.UI.Width < 40 {
		add("ui.width", fmt.Sprintf("must be at least 40, got %d", c.UI.Width))
	}
	if c.UI.SeparatorWidth < 1 || c.UI.SeparatorWidth > c.UI.Width {
		add("ui.separator_width", fmt.Sprintf("must be between 1 and ui.width (%d), got %d", c.UI.Width, c.UI.SeparatorWidth))
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		add("log.level", err.Error())
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills empty values with defaults. The llama backend offers
// DefaultModels when no list is configured; otherwise the default model
// falls back to the first listed one. The default model is always added to
// the list. Ollama lists are filled at runtime from the server.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Engine.Backend == "" {
		c.Engine.Backend = defaults.Engine.Backend
	}
	c.Engine.Backend = strings.ToLower(strings.TrimSpace(c.Engine.Backend))
	if c.Engine.ModelsDir == "" {
		c.Engine.ModelsDir = defaults.Engine.ModelsDir
	}
	if len(c.Engine.Models) == 0 && c.Engine.Backend == BackendLlama {
		c.Engine.Models = append([]string(nil), DefaultModels...)
		if c.Engine.DefaultModel == "" {
			c.Engine.DefaultModel = DefaultLlamaModel
		}
	}
	if c.Engine.DefaultModel == "" && len(c.Engine.Models) > 0 {
		c.Engine.DefaultModel = c.Engine.Models[0]
	}
	if c.Engine.DefaultModel != "" && !contains(c.Engine.Models, c.Engine.DefaultModel) {
		c.Engine.Models = append(c.Engine.Models, c.Engine.DefaultModel)
	}

	if c.Ollama.URL == "" {
		c.Ollama.URL = defaults.Ollama.URL
	}
	c.Ollama.URL = strings.TrimRight(c.Ollama.URL, "/")

	if c.Llama.ContextSize == 0 {
		c.Llama.ContextSize = defaults.Llama.ContextSize
	}
	if c.Llama.MaxTokens == 0 {
		c.Llama.MaxTokens = defaults.Llama.MaxTokens
	}
	if c.Llama.PromptTemplate == "" {
		c.Llama.PromptTemplate = defaults.Llama.PromptTemplate
	}

	if c.UI.Width == 0 {
		c.UI.Width = defaults.UI.Width
	}
	if c.UI.SeparatorWidth == 0 {
		c.UI.SeparatorWidth = defaults.UI.SeparatorWidth
	}

	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - LLMCHAT_BACKEND: overrides engine.backend
//   - LLMCHAT_MODEL: overrides engine.default_model
//   - LLMCHAT_MODELS_DIR: overrides engine.models_dir
//   - LLMCHAT_OLLAMA_URL: overrides ollama.url
//   - LLMCHAT_LOG_LEVEL: overrides log.level
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("LLMCHAT_BACKEND"); v != "" {
		c.Engine.Backend = v
	}
	if v := os.Getenv("LLMCHAT_MODEL"); v != "" {
		c.Engine.DefaultModel = v
	}
	if v := os.Getenv("LLMCHAT_MODELS_DIR"); v != "" {
		c.Engine.ModelsDir = v
	}
	if v := os.Getenv("LLMCHAT_OLLAMA_URL"); v != "" {
		c.Ollama.URL = v
	}
	if v := os.Getenv("LLMCHAT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}
