package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
	// LLMProviderMock uses the deterministic in-process provider (tests)
	LLMProviderMock LLMProvider = "mock"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Server      ServerConfig     `toml:"server"`
	Storage     StorageConfig    `toml:"storage"`
	Logging     LoggingConfig    `toml:"logging"`
	Chunking    ChunkingConfig   `toml:"chunking"`
	Retrieval   RetrievalConfig  `toml:"retrieval"`
	Chat        ChatConfig       `toml:"chat"`
	LLM         LLMConfig        `toml:"llm"`
	Gemini      GeminiConfig     `toml:"gemini"`
	Claude      ClaudeConfig     `toml:"claude"`
	Processing  ProcessingConfig `toml:"processing"`
	Training    TrainingConfig   `toml:"training"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gt=0,lte=65535"`
	Host string `toml:"host" validate:"required"`
}

type StorageConfig struct {
	PDFDir     string       `toml:"pdf_dir" validate:"required"`     // Directory holding source PDFs (uploads land here)
	VectorPath string       `toml:"vector_path" validate:"required"` // Vector store snapshot file
	Badger     BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"` // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"`         // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs
}

// ChunkingConfig controls how document text is split before embedding.
// Overlap must stay below size; the chunker enforces this again at
// construction so a bad runtime override cannot slip through.
type ChunkingConfig struct {
	Size    int `toml:"size" validate:"gt=0"`
	Overlap int `toml:"overlap" validate:"gte=0,ltfield=Size"`
}

type RetrievalConfig struct {
	TopK int `toml:"top_k" validate:"gt=0"` // Chunks retrieved per query
}

// ChatConfig bounds the assembled prompt and the history window.
type ChatConfig struct {
	MaxPromptChars  int `toml:"max_prompt_chars" validate:"gt=0"`
	MaxHistoryTurns int `toml:"max_history_turns" validate:"gte=0"`
}

// LLMConfig selects the completion/embedding provider.
type LLMConfig struct {
	Provider LLMProvider `toml:"provider"` // "gemini", "claude" or "mock"
}

// GeminiConfig contains Google Gemini API configuration. Gemini serves
// both chat completions and embeddings.
type GeminiConfig struct {
	APIKey         string  `toml:"api_key"`
	Model          string  `toml:"model"`           // Chat model (default: "gemini-1.5-flash")
	EmbedModel     string  `toml:"embed_model"`     // Embedding model (default: "embedding-001")
	EmbedDimension int     `toml:"embed_dimension"` // Output dimensionality (default: 768)
	Timeout        string  `toml:"timeout"`         // Per-call timeout as duration string
	Temperature    float32 `toml:"temperature"`
}

// ClaudeConfig contains Anthropic Claude API configuration. Claude has no
// embedding endpoint, so embeddings still go through Gemini.
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Timeout     string  `toml:"timeout"`
	Temperature float32 `toml:"temperature"`
}

// ProcessingConfig controls the scheduled directory re-index.
type ProcessingConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // Cron schedule format
}

// TrainingConfig names the PDF served by the dedicated training endpoint.
type TrainingConfig struct {
	PDFName string `toml:"pdf_name"`
}

// NewDefaultConfig creates a configuration with default values.
// Only user-facing settings are exposed in responsum.toml; technical
// parameters are hardcoded here for production stability.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			PDFDir:     "./pdfs",
			VectorPath: "./data/vectors.vecgo",
			Badger: BadgerConfig{
				Path: "./data/registry",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout", "file"},
			TimeFormat: "15:04:05",
		},
		Chunking: ChunkingConfig{
			Size:    1000,
			Overlap: 200,
		},
		Retrieval: RetrievalConfig{
			TopK: 5,
		},
		Chat: ChatConfig{
			MaxPromptChars:  12000,
			MaxHistoryTurns: 6,
		},
		LLM: LLMConfig{
			Provider: LLMProviderGemini,
		},
		Gemini: GeminiConfig{
			APIKey:         "", // User must provide API key (GOOGLE_API_KEY or config)
			Model:          "gemini-1.5-flash",
			EmbedModel:     "embedding-001",
			EmbedDimension: 768,
			Timeout:        "60s",
			Temperature:    0.7,
		},
		Claude: ClaudeConfig{
			APIKey:      "", // User must provide API key (ANTHROPIC_API_KEY or config)
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   4096,
			Timeout:     "60s",
			Temperature: 0.7,
		},
		Processing: ProcessingConfig{
			Enabled:  false,           // Disabled by default - user must explicitly opt-in
			Schedule: "0 0 */6 * * *", // Every 6 hours (cron format)
		},
		Training: TrainingConfig{
			PDFName: "LTE.pdf",
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env -> CLI
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files, later files
// overriding earlier ones. Priority: CLI flags > environment variables >
// last config file > ... > first config file > defaults.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	// Load .env before reading env overrides; missing file is fine
	_ = godotenv.Load()

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks structural constraints on the configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	switch c.LLM.Provider {
	case LLMProviderGemini, LLMProviderClaude, LLMProviderMock:
	default:
		return fmt.Errorf("invalid llm provider %q: must be 'gemini', 'claude' or 'mock'", c.LLM.Provider)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("RESPONSUM_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("RESPONSUM_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("RESPONSUM_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if pdfDir := os.Getenv("RESPONSUM_PDF_DIR"); pdfDir != "" {
		config.Storage.PDFDir = pdfDir
	}
	if vectorPath := os.Getenv("RESPONSUM_VECTOR_PATH"); vectorPath != "" {
		config.Storage.VectorPath = vectorPath
	}
	if badgerPath := os.Getenv("RESPONSUM_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("RESPONSUM_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("RESPONSUM_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Chunking configuration
	if size := os.Getenv("RESPONSUM_CHUNK_SIZE"); size != "" {
		if s, err := strconv.Atoi(size); err == nil {
			config.Chunking.Size = s
		}
	}
	if overlap := os.Getenv("RESPONSUM_CHUNK_OVERLAP"); overlap != "" {
		if o, err := strconv.Atoi(overlap); err == nil {
			config.Chunking.Overlap = o
		}
	}

	// Retrieval configuration
	if topK := os.Getenv("RESPONSUM_TOP_K"); topK != "" {
		if k, err := strconv.Atoi(topK); err == nil {
			config.Retrieval.TopK = k
		}
	}

	// Chat configuration
	if maxChars := os.Getenv("RESPONSUM_CHAT_MAX_PROMPT_CHARS"); maxChars != "" {
		if mc, err := strconv.Atoi(maxChars); err == nil {
			config.Chat.MaxPromptChars = mc
		}
	}
	if maxTurns := os.Getenv("RESPONSUM_CHAT_MAX_HISTORY_TURNS"); maxTurns != "" {
		if mt, err := strconv.Atoi(maxTurns); err == nil {
			config.Chat.MaxHistoryTurns = mt
		}
	}

	// LLM provider configuration
	if provider := os.Getenv("RESPONSUM_LLM_PROVIDER"); provider != "" {
		config.LLM.Provider = LLMProvider(provider)
	}

	// Gemini configuration
	if apiKey := os.Getenv("GOOGLE_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if apiKey := os.Getenv("RESPONSUM_GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey // RESPONSUM_ prefix takes priority
	}
	if model := os.Getenv("RESPONSUM_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}
	if embedModel := os.Getenv("RESPONSUM_GEMINI_EMBED_MODEL"); embedModel != "" {
		config.Gemini.EmbedModel = embedModel
	}
	if dim := os.Getenv("RESPONSUM_GEMINI_EMBED_DIMENSION"); dim != "" {
		if d, err := strconv.Atoi(dim); err == nil {
			config.Gemini.EmbedDimension = d
		}
	}
	if timeout := os.Getenv("RESPONSUM_GEMINI_TIMEOUT"); timeout != "" {
		config.Gemini.Timeout = timeout
	}
	if temperature := os.Getenv("RESPONSUM_GEMINI_TEMPERATURE"); temperature != "" {
		if t, err := strconv.ParseFloat(temperature, 32); err == nil {
			config.Gemini.Temperature = float32(t)
		}
	}

	// Claude configuration
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("RESPONSUM_CLAUDE_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey // RESPONSUM_ prefix takes priority
	}
	if model := os.Getenv("RESPONSUM_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}
	if maxTokens := os.Getenv("RESPONSUM_CLAUDE_MAX_TOKENS"); maxTokens != "" {
		if mt, err := strconv.Atoi(maxTokens); err == nil {
			config.Claude.MaxTokens = mt
		}
	}
	if timeout := os.Getenv("RESPONSUM_CLAUDE_TIMEOUT"); timeout != "" {
		config.Claude.Timeout = timeout
	}
	if temperature := os.Getenv("RESPONSUM_CLAUDE_TEMPERATURE"); temperature != "" {
		if t, err := strconv.ParseFloat(temperature, 32); err == nil {
			config.Claude.Temperature = float32(t)
		}
	}

	// Processing configuration
	if enabled := os.Getenv("RESPONSUM_PROCESSING_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Processing.Enabled = e
		}
	}
	if schedule := os.Getenv("RESPONSUM_PROCESSING_SCHEDULE"); schedule != "" {
		config.Processing.Schedule = schedule
	}

	// Training configuration
	if pdfName := os.Getenv("RESPONSUM_TRAINING_PDF_NAME"); pdfName != "" {
		config.Training.PDFName = pdfName
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	// Command-line flags have highest priority
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// GeminiTimeout returns the parsed Gemini per-call timeout.
func (c *Config) GeminiTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Gemini.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid gemini timeout %q: %w", c.Gemini.Timeout, err)
	}
	return d, nil
}

// ClaudeTimeout returns the parsed Claude per-call timeout.
func (c *Config) ClaudeTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Claude.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid claude timeout %q: %w", c.Claude.Timeout, err)
	}
	return d, nil
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
