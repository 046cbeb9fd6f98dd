package internal

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultSystemPrompt = "You are an assistant for question-answering tasks. " +
	"You are also an expert programmer who specializes in Python Programming. " +
	"Use the following pieces of retrieved context to answer the question. " +
	"If you don't know the answer, say that you don't know."

type DocumentsConfig struct {
	Dir         string `yaml:"dir"`
	Concurrency int    `yaml:"concurrency"`
}

type ChunkingConfig struct {
	Splitter string `yaml:"splitter"` // recursive | window
	Unit     string `yaml:"unit"`     // chars | tokens
	Size     int    `yaml:"size"`
	Overlap  int    `yaml:"overlap"`
}

type EmbeddingsConfig struct {
	Model       string `yaml:"model"`
	Dimensions  int    `yaml:"dimensions,omitempty"`
	BatchSize   int    `yaml:"batch_size"`
	Concurrency int    `yaml:"concurrency"`
	BaseURL     string `yaml:"base_url,omitempty"`
}

type IndexConfig struct {
	Backend string `yaml:"backend"` // annoy | flat
	Trees   int    `yaml:"trees"`
}

type RetrievalConfig struct {
	K int `yaml:"k"`
}

type CompletionConfig struct {
	Provider     string  `yaml:"provider"`
	Model        string  `yaml:"model"`
	Temperature  float64 `yaml:"temperature"`
	BaseURL      string  `yaml:"base_url,omitempty"`
	SystemPrompt string  `yaml:"system_prompt,omitempty"`
}

type RequestsConfig struct {
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	Backoff    time.Duration `yaml:"backoff"`
	MaxBackoff time.Duration `yaml:"max_backoff"`
}

// Credentials come from the environment only.
type Credentials struct {
	OpenAI     string `yaml:"-"`
	Anthropic  string `yaml:"-"`
	OpenRouter string `yaml:"-"`
}

type Config struct {
	Documents   DocumentsConfig  `yaml:"documents"`
	Chunking    ChunkingConfig   `yaml:"chunking"`
	Embeddings  EmbeddingsConfig `yaml:"embeddings"`
	Index       IndexConfig      `yaml:"index"`
	Retrieval   RetrievalConfig  `yaml:"retrieval"`
	Completion  CompletionConfig `yaml:"completion"`
	Requests    RequestsConfig   `yaml:"requests"`
	Credentials Credentials      `yaml:"-"`
}

func DefaultConfig() *Config {
	return &Config{
		Documents: DocumentsConfig{Dir: "Books", Concurrency: 4},
		Chunking: ChunkingConfig{
			Splitter: SplitterRecursive,
			Unit:     UnitChars,
			Size:     1000,
			Overlap:  200,
		},
		Embeddings: EmbeddingsConfig{
			Model:       "text-embedding-3-small",
			BatchSize:   64,
			Concurrency: 4,
		},
		Index:     IndexConfig{Backend: IndexAnnoy, Trees: 10},
		Retrieval: RetrievalConfig{K: 4},
		Completion: CompletionConfig{
			Provider:     "openai",
			Model:        "gpt-3.5-turbo",
			Temperature:  0,
			SystemPrompt: DefaultSystemPrompt,
		},
		Requests: RequestsConfig{
			Timeout:    60 * time.Second,
			MaxRetries: 3,
			Backoff:    500 * time.Millisecond,
			MaxBackoff: 10 * time.Second,
		},
	}
}

// LoadConfig reads path over the defaults. A missing file yields defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrInvalidConfig, path, err)
	}
	if cfg.Completion.SystemPrompt == "" {
		cfg.Completion.SystemPrompt = DefaultSystemPrompt
	}

	return cfg, nil
}

// ApplyEnv copies credentials and BOOKRAG_* overrides from getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	c.Credentials = Credentials{
		OpenAI:     getenv("OPENAI_API_KEY"),
		Anthropic:  getenv("ANTHROPIC_API_KEY"),
		OpenRouter: getenv("OPENROUTER_API_KEY"),
	}
	if v := getenv("OPENAI_BASE_URL"); v != "" && c.Embeddings.BaseURL == "" {
		c.Embeddings.BaseURL = v
	}

	var errs []error
	setStr := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}

	setStr("BOOKRAG_DIR", &c.Documents.Dir)
	setInt("BOOKRAG_TOP_K", &c.Retrieval.K)
	setInt("BOOKRAG_CHUNK_SIZE", &c.Chunking.Size)
	setInt("BOOKRAG_CHUNK_OVERLAP", &c.Chunking.Overlap)
	setStr("BOOKRAG_SPLITTER", &c.Chunking.Splitter)
	setStr("BOOKRAG_INDEX", &c.Index.Backend)
	setStr("BOOKRAG_PROVIDER", &c.Completion.Provider)
	setStr("BOOKRAG_MODEL", &c.Completion.Model)
	setStr("BOOKRAG_EMBEDDING_MODEL", &c.Embeddings.Model)
	if v := getenv("BOOKRAG_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("BOOKRAG_TIMEOUT: %w", err))
		} else {
			c.Requests.Timeout = d
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// CompletionKey returns the credential for the selected completion provider.
func (c *Config) CompletionKey() string {
	switch c.Completion.Provider {
	case "anthropic":
		return c.Credentials.Anthropic
	case "openrouter":
		return c.Credentials.OpenRouter
	default:
		return c.Credentials.OpenAI
	}
}

// Validate checks credentials first, then every tunable.
func (c *Config) Validate() error {
	if c.Credentials.OpenAI == "" {
		return fmt.Errorf("%w: OPENAI_API_KEY is not set (export it or add it to .env)", ErrMissingCredential)
	}
	if c.CompletionKey() == "" {
		return fmt.Errorf("%w: %s_API_KEY is not set", ErrMissingCredential, strings.ToUpper(c.Completion.Provider))
	}

	var errs []error
	if err := c.Chunking.validate(); err != nil {
		errs = append(errs, err)
	}

	var problems []string
	if c.Documents.Dir == "" {
		problems = append(problems, "documents.dir is empty")
	}
	if c.Embeddings.Model == "" {
		problems = append(problems, "embeddings.model is empty")
	}
	if c.Embeddings.BatchSize <= 0 {
		problems = append(problems, "embeddings.batch_size must be positive")
	}
	switch c.Index.Backend {
	case IndexAnnoy, IndexFlat:
	default:
		problems = append(problems, fmt.Sprintf("index.backend %q is not annoy or flat", c.Index.Backend))
	}
	if c.Retrieval.K <= 0 {
		problems = append(problems, "retrieval.k must be positive")
	}
	switch c.Completion.Provider {
	case "openai", "anthropic", "openrouter":
	default:
		problems = append(problems, fmt.Sprintf("completion.provider %q is not supported", c.Completion.Provider))
	}
	if c.Completion.Model == "" {
		problems = append(problems, "completion.model is empty")
	}
	if c.Requests.MaxRetries < 0 {
		problems = append(problems, "requests.max_retries must not be negative")
	}

	if len(problems) > 0 {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; ")))
	}
	return errors.Join(errs...)
}

func (c ChunkingConfig) validate() error {
	switch c.Splitter {
	case SplitterRecursive, SplitterWindow:
	default:
		return fmt.Errorf("%w: splitter %q is not recursive or window", ErrInvalidChunking, c.Splitter)
	}
	switch c.Unit {
	case UnitChars, UnitTokens:
	default:
		return fmt.Errorf("%w: unit %q is not chars or tokens", ErrInvalidChunking, c.Unit)
	}
	if c.Size <= 0 {
		return fmt.Errorf("%w: size must be positive, got %d", ErrInvalidChunking, c.Size)
	}
	if c.Overlap < 0 || c.Overlap >= c.Size {
		return fmt.Errorf("%w: overlap %d must be in [0, %d)", ErrInvalidChunking, c.Overlap, c.Size)
	}
	return nil
}

func (c *Config) RetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: c.Requests.MaxRetries,
		Backoff:    c.Requests.Backoff,
		MaxBackoff: c.Requests.MaxBackoff,
		Timeout:    c.Requests.Timeout,
	}
}
