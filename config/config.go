package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// OpenAIConfig holds configuration for an OpenAI-compatible API.
type OpenAIConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the query embedder.
// The embedder must match the encoder the store file was built with.
type EmbedderConfig struct {
	Type     string        `yaml:"type"`
	Model    string        `yaml:"model"`
	OnnxFile string        `yaml:"onnx_file"`
	ModelDir string        `yaml:"model_dir"`
	OpenAI   *OpenAIConfig `yaml:"openai,omitempty"`
}

// GeneratorConfig selects and configures the text generator.
type GeneratorConfig struct {
	Type        string        `yaml:"type"`
	Model       string        `yaml:"model"`
	APIKeyEnv   string        `yaml:"api_key_env"`
	TimeoutSecs int           `yaml:"timeout_secs"`
	OpenAI      *OpenAIConfig `yaml:"openai,omitempty"`
}

// SearchConfig selects where similarity search runs.
type SearchConfig struct {
	Type string `yaml:"type"`
	// Seed replaces the postgres table with the store file on startup
	Seed  bool   `yaml:"seed"`
	Index string `yaml:"index"`
}

// ServerConfig configures the HTTP endpoint.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// AuditConfig configures the answer log. An empty path disables it.
type AuditConfig struct {
	Path string `yaml:"path"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	StorePath string          `yaml:"store_path"`
	TopK      int             `yaml:"top_k"`
	LogLevel  string          `yaml:"log_level"`
	Embedder  EmbedderConfig  `yaml:"embedder"`
	Generator GeneratorConfig `yaml:"generator"`
	Search    SearchConfig    `yaml:"search"`
	Server    ServerConfig    `yaml:"server"`
	Audit     AuditConfig     `yaml:"audit"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
// Environment overrides are applied in both cases.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			if err := applyEnv(cfg); err != nil {
				return nil, err
			}
			return cfg, cfg.Validate()
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, cfg.Validate()
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Validate checks the component types
func (c *AppConfig) Validate() error {
	switch c.Embedder.Type {
	case "hugot", "openai":
	default:
		return fmt.Errorf("unknown embedder: %s", c.Embedder.Type)
	}
	switch c.Generator.Type {
	case "gemini", "openai":
	default:
		return fmt.Errorf("unknown generator: %s", c.Generator.Type)
	}
	switch c.Search.Type {
	case "memory", "postgres":
	default:
		return fmt.Errorf("unknown search backend: %s", c.Search.Type)
	}
	if c.StorePath == "" {
		return fmt.Errorf("store_path is required")
	}
	return nil
}

// GenerationTimeout returns the configured timeout of a generation call
func (c *AppConfig) GenerationTimeout() time.Duration {
	return time.Duration(c.Generator.TimeoutSecs) * time.Second
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.StorePath == "" {
		cfg.StorePath = "embeddings.json"
	}
	if cfg.TopK == 0 {
		cfg.TopK = 3
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "hugot"
	}
	if cfg.Embedder.Type == "hugot" && cfg.Embedder.Model == "" {
		cfg.Embedder.Model = "sentence-transformers/all-MiniLM-L6-v2"
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIConfig{}
		}
		applyOpenAIDefaults(cfg.Embedder.OpenAI, "text-embedding-3-small")
	}

	if cfg.Generator.Type == "" {
		cfg.Generator.Type = "gemini"
	}
	if cfg.Generator.TimeoutSecs == 0 {
		cfg.Generator.TimeoutSecs = 20
	}
	if cfg.Generator.Type == "gemini" {
		if cfg.Generator.Model == "" {
			cfg.Generator.Model = "gemini-2.5-flash"
		}
		if cfg.Generator.APIKeyEnv == "" {
			cfg.Generator.APIKeyEnv = "GOOGLE_API_KEY"
		}
	}
	if cfg.Generator.Type == "openai" {
		if cfg.Generator.OpenAI == nil {
			cfg.Generator.OpenAI = &OpenAIConfig{}
		}
		applyOpenAIDefaults(cfg.Generator.OpenAI, "gpt-4o-mini")
	}

	if cfg.Search.Type == "" {
		cfg.Search.Type = "memory"
	}
	if cfg.Search.Index == "" {
		cfg.Search.Index = "none"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
}

func applyOpenAIDefaults(cfg *OpenAIConfig, model string) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Model == "" {
		cfg.Model = model
	}
	if cfg.TimeoutSecs == 0 {
		cfg.TimeoutSecs = 30
	}
}

// applyEnv applies the NUTRICOACH_* overrides
func applyEnv(cfg *AppConfig) error {
	if v := os.Getenv("NUTRICOACH_STORE_PATH"); v != "" {
		cfg.StorePath = v
	}
	if v := os.Getenv("NUTRICOACH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("NUTRICOACH_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("NUTRICOACH_AUDIT_PATH"); v != "" {
		cfg.Audit.Path = v
	}
	if v := os.Getenv("NUTRICOACH_TOP_K"); v != "" {
		k, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NUTRICOACH_TOP_K: %w", err)
		}
		cfg.TopK = k
	}
	if v := os.Getenv("NUTRICOACH_GENERATOR"); v != "" && v != cfg.Generator.Type {
		cfg.Generator = GeneratorConfig{Type: v, TimeoutSecs: cfg.Generator.TimeoutSecs}
		applyConfigDefaults(cfg)
	}
	if v := os.Getenv("NUTRICOACH_SEARCH"); v != "" {
		cfg.Search.Type = v
	}
	return nil
}

// APIKey returns the value of the environment variable named by env
func APIKey(env string) string {
	if env == "" {
		return ""
	}
	return os.Getenv(env)
}
