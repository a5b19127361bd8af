package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"ragchat/internal/ragerr"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Provider ProviderConfig `yaml:"provider"`
	RAG      RAGConfig      `yaml:"rag"`
	Retry    RetryConfig    `yaml:"retry"`
	Session  SessionConfig  `yaml:"session"`
}

type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type ProviderConfig struct {
	Name           string  `yaml:"name"`
	APIKeyEnv      string  `yaml:"api_key_env"`
	APIKey         string  `yaml:"-"`
	BaseURL        string  `yaml:"base_url"`
	Model          string  `yaml:"model"`
	EmbeddingModel string  `yaml:"embedding_model"`
	Temperature    float32 `yaml:"temperature"`
}

type RAGConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	TopK         int `yaml:"top_k"`
	// HistoryWindow bounds how many recent messages are carried into a
	// prompt; PromptBudget bounds the assembled prompt in characters.
	HistoryWindow int `yaml:"history_window"`
	PromptBudget  int `yaml:"prompt_budget"`
}

type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
	BaseDelayMS int `yaml:"base_delay_ms"`
}

func (r RetryConfig) BaseDelay() time.Duration {
	return time.Duration(r.BaseDelayMS) * time.Millisecond
}

type SessionConfig struct {
	MaxSessions int `yaml:"max_sessions"`
	TTLMinutes  int `yaml:"ttl_minutes"`
}

func (s SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLMinutes) * time.Minute
}

// Load reads the yaml config at path, merges .env into the environment if
// one is present, and resolves the provider API key from the configured
// environment variable.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Provider.APIKeyEnv != "" {
		cfg.Provider.APIKey = os.Getenv(cfg.Provider.APIKeyEnv)
	}
	return &cfg, nil
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.Provider.APIKey = os.Getenv(cfg.Provider.APIKeyEnv)
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Provider.Name == "" {
		c.Provider.Name = "groq"
	}
	if c.Provider.APIKeyEnv == "" {
		c.Provider.APIKeyEnv = "GROQ_API_KEY"
	}
	if c.Provider.Model == "" {
		c.Provider.Model = "llama-3.3-70b-versatile"
	}
	if c.Provider.EmbeddingModel == "" {
		c.Provider.EmbeddingModel = "text-embedding-3-small"
	}
	if c.RAG.ChunkSize == 0 {
		c.RAG.ChunkSize = 500
	}
	if c.RAG.ChunkOverlap == 0 {
		c.RAG.ChunkOverlap = 50
	}
	if c.RAG.TopK == 0 {
		c.RAG.TopK = 3
	}
	if c.RAG.HistoryWindow == 0 {
		c.RAG.HistoryWindow = 20
	}
	if c.RAG.PromptBudget == 0 {
		c.RAG.PromptBudget = 12000
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.BaseDelayMS == 0 {
		c.Retry.BaseDelayMS = 500
	}
	if c.Session.MaxSessions == 0 {
		c.Session.MaxSessions = 256
	}
	if c.Session.TTLMinutes == 0 {
		c.Session.TTLMinutes = 60
	}
}

func (c *Config) validate() error {
	if c.RAG.ChunkSize <= 0 {
		return fmt.Errorf("%w: rag.chunk_size must be positive", ragerr.ErrInvalidConfig)
	}
	if c.RAG.ChunkOverlap < 0 || c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		return fmt.Errorf("%w: rag.chunk_overlap must be in [0, chunk_size)", ragerr.ErrInvalidConfig)
	}
	if c.RAG.TopK <= 0 {
		return fmt.Errorf("%w: rag.top_k must be positive", ragerr.ErrInvalidConfig)
	}
	if c.RAG.PromptBudget <= 0 {
		return fmt.Errorf("%w: rag.prompt_budget must be positive", ragerr.ErrInvalidConfig)
	}
	if c.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("%w: retry.max_attempts must be positive", ragerr.ErrInvalidConfig)
	}
	return nil
}
