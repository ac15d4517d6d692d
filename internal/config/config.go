package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Ollama  OllamaConfig  `mapstructure:"ollama"`
	Qdrant  QdrantConfig  `mapstructure:"qdrant"`
	Chunker ChunkerConfig `mapstructure:"chunker"`
	Gate    GateConfig    `mapstructure:"gate"`
}

type ServerConfig struct {
	Host          string   `mapstructure:"host"`
	Port          int      `mapstructure:"port"`
	CORSOrigins   []string `mapstructure:"cors_origins"`
	RateLimit     int      `mapstructure:"rate_limit"`
	RateBurst     int      `mapstructure:"rate_burst"`
	EnableMetrics bool     `mapstructure:"enable_metrics"`
	LogLevel      string   `mapstructure:"log_level"`
	LogJSON       bool     `mapstructure:"log_json"`
}

type OllamaConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	EmbeddingModel string        `mapstructure:"embedding_model"`
	LLMModel       string        `mapstructure:"llm_model"`
	Models         []string      `mapstructure:"models"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

type QdrantConfig struct {
	URL        string        `mapstructure:"url"`
	Collection string        `mapstructure:"collection"`
	VectorDim  int           `mapstructure:"vector_dim"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type ChunkerConfig struct {
	ChunkSize int    `mapstructure:"chunk_size"`
	Overlap   int    `mapstructure:"overlap"`
	Method    string `mapstructure:"method"`
}

// GateConfig holds the relevance gate thresholds. Stop words and
// meta-question patterns live in the gate package itself.
type GateConfig struct {
	MinChunkChars    int     `mapstructure:"min_chunk_chars"`
	OverlapThreshold float64 `mapstructure:"overlap_threshold"`
	TopK             int     `mapstructure:"top_k"`
}

func Load(configPath string) (*Config, error) {
	config := &Config{}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.chatgpdune")
	}

	setDefaults(v)
	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.rate_limit", 120)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("server.enable_metrics", false)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_json", false)

	v.SetDefault("ollama.base_url", "http://localhost:11434")
	v.SetDefault("ollama.embedding_model", "nomic-embed-text")
	v.SetDefault("ollama.llm_model", "deepseek-r1")
	v.SetDefault("ollama.models", []string{"deepseek-r1"})
	v.SetDefault("ollama.timeout", "60s")

	v.SetDefault("qdrant.url", "localhost:6334")
	v.SetDefault("qdrant.collection", "dune_chunks")
	v.SetDefault("qdrant.vector_dim", 768)
	v.SetDefault("qdrant.timeout", "30s")

	v.SetDefault("chunker.chunk_size", 300)
	v.SetDefault("chunker.overlap", 50)
	v.SetDefault("chunker.method", "sentence")

	v.SetDefault("gate.min_chunk_chars", 50)
	v.SetDefault("gate.overlap_threshold", 0.2)
	v.SetDefault("gate.top_k", 5)
}

func bindEnvVars(v *viper.Viper) {
	v.SetEnvPrefix("CHATGPDUNE")
	v.AutomaticEnv()

	bindings := map[string]string{
		"server.host":            "CHATGPDUNE_SERVER_HOST",
		"server.port":            "CHATGPDUNE_SERVER_PORT",
		"server.log_level":       "CHATGPDUNE_SERVER_LOG_LEVEL",
		"ollama.base_url":        "OLLAMA_HOST",
		"ollama.embedding_model": "CHATGPDUNE_OLLAMA_EMBEDDING_MODEL",
		"ollama.llm_model":       "CHATGPDUNE_OLLAMA_LLM_MODEL",
		"ollama.timeout":         "CHATGPDUNE_OLLAMA_TIMEOUT",
		"qdrant.url":             "CHATGPDUNE_QDRANT_URL",
		"qdrant.collection":      "CHATGPDUNE_QDRANT_COLLECTION",
		"qdrant.vector_dim":      "CHATGPDUNE_QDRANT_VECTOR_DIM",
		"gate.min_chunk_chars":   "CHATGPDUNE_GATE_MIN_CHUNK_CHARS",
		"gate.overlap_threshold": "CHATGPDUNE_GATE_OVERLAP_THRESHOLD",
		"gate.top_k":             "CHATGPDUNE_GATE_TOP_K",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			log.Printf("Warning: failed to bind %s env var: %v", key, err)
		}
	}
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}

	if c.Ollama.BaseURL == "" {
		return fmt.Errorf("ollama base URL cannot be empty")
	}

	if c.Ollama.EmbeddingModel == "" {
		return fmt.Errorf("embedding model cannot be empty")
	}

	if c.Ollama.LLMModel == "" {
		return fmt.Errorf("LLM model cannot be empty")
	}

	if c.Qdrant.URL == "" {
		return fmt.Errorf("qdrant URL cannot be empty")
	}

	if c.Qdrant.Collection == "" {
		return fmt.Errorf("qdrant collection cannot be empty")
	}

	if c.Qdrant.VectorDim <= 0 {
		return fmt.Errorf("vector dimension must be positive: %d", c.Qdrant.VectorDim)
	}

	if c.Chunker.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive: %d", c.Chunker.ChunkSize)
	}

	if c.Chunker.Overlap < 0 || c.Chunker.Overlap >= c.Chunker.ChunkSize {
		return fmt.Errorf("overlap must be between 0 and chunk size: %d", c.Chunker.Overlap)
	}

	validMethods := map[string]bool{"sentence": true, "paragraph": true, "token": true}
	if !validMethods[c.Chunker.Method] {
		return fmt.Errorf("invalid chunker method: %s", c.Chunker.Method)
	}

	if c.Gate.MinChunkChars < 0 {
		return fmt.Errorf("min chunk chars must be non-negative: %d", c.Gate.MinChunkChars)
	}

	if c.Gate.OverlapThreshold < 0 || c.Gate.OverlapThreshold > 1 {
		return fmt.Errorf("overlap threshold must be within [0, 1]: %f", c.Gate.OverlapThreshold)
	}

	if c.Gate.TopK <= 0 {
		return fmt.Errorf("topK must be positive: %d", c.Gate.TopK)
	}

	return nil
}
