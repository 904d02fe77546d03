package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	LLM      LLMConfig      `yaml:"llm"`
	RAG      RAGConfig      `yaml:"rag"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	SupabaseURL string `yaml:"supabase_url"`
	SupabaseKey string `yaml:"supabase_key"`
	Debug       bool   `yaml:"debug"`
}

type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	Key     string `yaml:"key"`
	Model   string `yaml:"model"`
}

type RAGConfig struct {
	SearchLimit        int      `yaml:"search_limit"`
	GenerateRetries    int      `yaml:"generate_retries"`
	GenerateRetryDelay Duration `yaml:"generate_retry_delay"`
	FigureRetries      int      `yaml:"figure_retries"`
	FigureRetryDelay   Duration `yaml:"figure_retry_delay"`
	FigureContextCap   int      `yaml:"figure_context_cap"`
	ChunkSize          int      `yaml:"chunk_size"`
	ChunkOverlap       int      `yaml:"chunk_overlap"`
}

// Duration lets yaml carry values like "2s" or "500ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

const (
	defaultPort               = "8080"
	defaultSearchLimit        = 5
	defaultGenerateRetries    = 3
	defaultGenerateRetryDelay = Duration(2 * time.Second)
	defaultFigureRetries      = 3
	defaultFigureRetryDelay   = Duration(time.Second)
	defaultFigureContextCap   = 3
)

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	// secrets come from the environment, e.g. supabase_key: ${SUPABASE_KEY}
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = defaultPort
	}
	if c.RAG.SearchLimit == 0 {
		c.RAG.SearchLimit = defaultSearchLimit
	}
	if c.RAG.GenerateRetries == 0 {
		c.RAG.GenerateRetries = defaultGenerateRetries
	}
	if c.RAG.GenerateRetryDelay == 0 {
		c.RAG.GenerateRetryDelay = defaultGenerateRetryDelay
	}
	if c.RAG.FigureRetries == 0 {
		c.RAG.FigureRetries = defaultFigureRetries
	}
	if c.RAG.FigureRetryDelay == 0 {
		c.RAG.FigureRetryDelay = defaultFigureRetryDelay
	}
	if c.RAG.FigureContextCap == 0 {
		c.RAG.FigureContextCap = defaultFigureContextCap
	}
}
