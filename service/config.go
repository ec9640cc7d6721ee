package service

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/pacta/agents"
)

// Config holds the full service configuration.
type Config struct {
	// ListenAddr is the HTTP bind address.
	ListenAddr string `yaml:"listen_addr"`

	// HistoryPath is the SQLite database holding past reports.
	HistoryPath string `yaml:"history_path"`

	// ReportsDir, when set, also writes each report as a JSON file.
	ReportsDir string `yaml:"reports_dir"`

	// MaxUploadBytes caps uploaded contract size.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	LLM      LLMConfig      `yaml:"llm"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Notify   NotifyConfig   `yaml:"notify"`
}

// LLMConfig configures the reasoning backend.
type LLMConfig struct {
	Endpoint    string        `yaml:"endpoint"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"api_key"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float32       `yaml:"temperature"`
	MaxRetries  int           `yaml:"max_retries"`
	Backoff     time.Duration `yaml:"backoff"`
}

// AnalysisConfig tunes the agent fan-out and aggregation.
type AnalysisConfig struct {
	AgentTimeout time.Duration           `yaml:"agent_timeout"`
	MaxTextChars int                     `yaml:"max_text_chars"`
	Weights      map[agents.Kind]float64 `yaml:"weights"`
}

// NotifyConfig configures the completion webhook.
type NotifyConfig struct {
	URL     string        `yaml:"url"`
	Secret  string        `yaml:"secret"`
	Timeout time.Duration `yaml:"timeout"`
}

func (c *Config) defaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.HistoryPath == "" {
		c.HistoryPath = "pacta.db"
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 50 << 20
	}
	if c.LLM.Endpoint == "" {
		c.LLM.Endpoint = "http://localhost:11434"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "qwen3:14b"
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = 120 * time.Second
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = 1200
	}
	if c.LLM.MaxRetries <= 0 {
		c.LLM.MaxRetries = 2
	}
	if c.LLM.Backoff <= 0 {
		c.LLM.Backoff = 2 * time.Second
	}
	if c.Analysis.AgentTimeout <= 0 {
		c.Analysis.AgentTimeout = 90 * time.Second
	}
	if c.Analysis.MaxTextChars <= 0 {
		c.Analysis.MaxTextChars = 24_000
	}
	if c.Notify.Timeout <= 0 {
		c.Notify.Timeout = 15 * time.Second
	}
}

// LoadConfigFile reads a YAML config file and applies defaults.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("service: read config: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("service: parse config: %w", err)
	}
	cfg.defaults()
	return cfg, nil
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.defaults()
	return cfg
}
