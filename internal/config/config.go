package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/studyquest/studyquest/internal/chunker"
	"github.com/studyquest/studyquest/internal/llm"
	"github.com/studyquest/studyquest/internal/logger"
	"github.com/studyquest/studyquest/internal/questiongen"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "STUDYQUEST"

// Config is the resolved application configuration.
type Config struct {
	LLMSettings LLMSettings
	Generation  GenerationConfig
	Log         LogConfig
	DB          DBConfig
	Server      ServerConfig

	// File is the config file that was read, if any.
	File string
}

type LLMSettings struct {
	Provider   string
	Gemini     llm.GeminiConfig
	OpenAI     llm.OpenAIConfig
	Anthropic  llm.AnthropicConfig
	OpenRouter llm.OpenRouterConfig
	Ollama     llm.OllamaConfig
	Retry      llm.RetryConfig
	Timeout    time.Duration
}

type GenerationConfig struct {
	ChunkSize      int
	ChunkOverlap   int
	MaxAttempts    int
	Temperature    float64
	MaxTokens      int
	Mode           string
	NotesMaxLength int
}

type LogConfig struct {
	Level  string
	Format string
	File   string
}

type DBConfig struct {
	Path string
}

type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Load reads configuration into the global viper instance, which is where
// the root command binds its flags.
func Load(path string) (*Config, error) {
	return LoadWith(viper.GetViper(), path)
}

// LoadWith reads configuration using v. Sources in increasing priority:
// defaults, config file, environment, bound flags.
func LoadWith(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("studyquest")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "studyquest"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		LLMSettings: LLMSettings{
			Provider: strings.ToLower(v.GetString("llm.provider")),
			Gemini: llm.GeminiConfig{
				APIKey: v.GetString("llm.gemini.api_key"),
				Model:  v.GetString("llm.gemini.model"),
			},
			OpenAI: llm.OpenAIConfig{
				APIKey:  v.GetString("llm.openai.api_key"),
				Model:   v.GetString("llm.openai.model"),
				BaseURL: v.GetString("llm.openai.base_url"),
			},
			Anthropic: llm.AnthropicConfig{
				APIKey: v.GetString("llm.anthropic.api_key"),
				Model:  v.GetString("llm.anthropic.model"),
			},
			OpenRouter: llm.OpenRouterConfig{
				APIKey:  v.GetString("llm.openrouter.api_key"),
				Model:   v.GetString("llm.openrouter.model"),
				BaseURL: v.GetString("llm.openrouter.base_url"),
			},
			Ollama: llm.OllamaConfig{
				ServerURL: v.GetString("llm.ollama.server_url"),
				Model:     v.GetString("llm.ollama.model"),
			},
			Retry: llm.RetryConfig{
				MaxAttempts: v.GetInt("llm.retry.max_attempts"),
				Wait:        v.GetDuration("llm.retry.wait"),
			},
			Timeout: v.GetDuration("llm.timeout"),
		},
		Generation: GenerationConfig{
			ChunkSize:      v.GetInt("generation.chunk_size"),
			ChunkOverlap:   v.GetInt("generation.chunk_overlap"),
			MaxAttempts:    v.GetInt("generation.max_attempts"),
			Temperature:    v.GetFloat64("generation.temperature"),
			MaxTokens:      v.GetInt("generation.max_tokens"),
			Mode:           v.GetString("generation.mode"),
			NotesMaxLength: v.GetInt("generation.notes_max_length"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			File:   v.GetString("log.file"),
		},
		DB: DBConfig{
			Path: v.GetString("db.path"),
		},
		Server: ServerConfig{
			Addr:         v.GetString("server.addr"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
		},
		File: v.ConfigFileUsed(),
	}

	if cfg.LLMSettings.Provider == "" {
		cfg.LLMSettings.Provider = detectProvider(cfg.LLMSettings)
	}
	if model := v.GetString("llm.model"); model != "" {
		cfg.LLMSettings.setModel(model)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := llm.DefaultConfig()
	v.SetDefault("llm.gemini.model", d.Gemini.Model)
	v.SetDefault("llm.openai.model", d.OpenAI.Model)
	v.SetDefault("llm.anthropic.model", d.Anthropic.Model)
	v.SetDefault("llm.openrouter.model", d.OpenRouter.Model)
	v.SetDefault("llm.ollama.server_url", d.Ollama.ServerURL)
	v.SetDefault("llm.ollama.model", d.Ollama.Model)
	v.SetDefault("llm.retry.max_attempts", d.Retry.MaxAttempts)
	v.SetDefault("llm.retry.wait", d.Retry.Wait)
	v.SetDefault("llm.timeout", d.Timeout)

	g := questiongen.DefaultConfig()
	v.SetDefault("generation.chunk_size", g.Chunking.Size)
	v.SetDefault("generation.chunk_overlap", g.Chunking.Overlap)
	v.SetDefault("generation.max_attempts", g.MaxAttempts)
	v.SetDefault("generation.temperature", g.Temperature)
	v.SetDefault("generation.max_tokens", g.MaxTokens)
	v.SetDefault("generation.mode", string(g.Mode))
	v.SetDefault("generation.notes_max_length", g.NotesMaxLength)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 5*time.Minute)
}

// bindEnv maps keys to STUDYQUEST_ variables. Provider credentials also
// fall back to the vendors' conventional variable names.
func bindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := map[string][]string{
		"llm.provider":           {"STUDYQUEST_PROVIDER", "STUDYQUEST_LLM_PROVIDER"},
		"llm.model":              {"STUDYQUEST_MODEL", "STUDYQUEST_LLM_MODEL"},
		"llm.gemini.api_key":     {"STUDYQUEST_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"},
		"llm.gemini.model":       {"STUDYQUEST_GEMINI_MODEL"},
		"llm.openai.api_key":     {"STUDYQUEST_OPENAI_API_KEY", "OPENAI_API_KEY"},
		"llm.openai.model":       {"STUDYQUEST_OPENAI_MODEL"},
		"llm.openai.base_url":    {"STUDYQUEST_OPENAI_BASE_URL", "OPENAI_BASE_URL"},
		"llm.anthropic.api_key":  {"STUDYQUEST_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"},
		"llm.anthropic.model":    {"STUDYQUEST_ANTHROPIC_MODEL"},
		"llm.openrouter.api_key": {"STUDYQUEST_OPENROUTER_API_KEY", "OPENROUTER_API_KEY"},
		"llm.openrouter.model":   {"STUDYQUEST_OPENROUTER_MODEL"},
		"llm.ollama.server_url":  {"STUDYQUEST_OLLAMA_SERVER_URL", "OLLAMA_HOST"},
		"llm.ollama.model":       {"STUDYQUEST_OLLAMA_MODEL"},
		"db.path":                {"STUDYQUEST_DB"},
	}
	for key, names := range explicit {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	return nil
}

// detectProvider picks the first provider with a credential, defaulting
// to gemini so validation names the expected key.
func detectProvider(s LLMSettings) string {
	switch {
	case s.Gemini.APIKey != "":
		return llm.ProviderGemini
	case s.OpenAI.APIKey != "":
		return llm.ProviderOpenAI
	case s.Anthropic.APIKey != "":
		return llm.ProviderAnthropic
	case s.OpenRouter.APIKey != "":
		return llm.ProviderOpenRouter
	}
	return llm.ProviderGemini
}

func (s *LLMSettings) setModel(model string) {
	switch s.Provider {
	case llm.ProviderGemini:
		s.Gemini.Model = model
	case llm.ProviderOpenAI:
		s.OpenAI.Model = model
	case llm.ProviderAnthropic:
		s.Anthropic.Model = model
	case llm.ProviderOpenRouter:
		s.OpenRouter.Model = model
	case llm.ProviderOllama:
		s.Ollama.Model = model
	}
}

// LLM converts the settings to the provider factory's config.
func (c *Config) LLM() llm.Config {
	return llm.Config{
		Provider:   c.LLMSettings.Provider,
		Gemini:     c.LLMSettings.Gemini,
		OpenAI:     c.LLMSettings.OpenAI,
		Anthropic:  c.LLMSettings.Anthropic,
		OpenRouter: c.LLMSettings.OpenRouter,
		Ollama:     c.LLMSettings.Ollama,
		Retry:      c.LLMSettings.Retry,
		Timeout:    c.LLMSettings.Timeout,
	}
}

// QuestionGen converts the generation section to the generator's config.
func (c *Config) QuestionGen() questiongen.Config {
	return questiongen.Config{
		Mode:           questiongen.Mode(c.Generation.Mode),
		MaxAttempts:    c.Generation.MaxAttempts,
		Temperature:    c.Generation.Temperature,
		MaxTokens:      c.Generation.MaxTokens,
		NotesMaxLength: c.Generation.NotesMaxLength,
		Chunking: chunker.Options{
			Size:       c.Generation.ChunkSize,
			Overlap:    c.Generation.ChunkOverlap,
			Separators: chunker.DefaultSeparators,
		},
	}
}

// Logger converts the log section. Output overrides the configured file.
func (c *Config) Logger(output string) logger.Config {
	if output == "" {
		output = c.Log.File
	}
	return logger.Config{
		Level:  c.Log.Level,
		Format: c.Log.Format,
		Output: output,
	}
}

// Validate reports the first configuration problem, if any.
func (c *Config) Validate() error {
	if err := c.LLM().Validate(); err != nil {
		return err
	}
	if err := c.QuestionGen().Validate(); err != nil {
		return fmt.Errorf("generation: %w", err)
	}
	return nil
}

// DefaultLogFile is where the TUI writes logs when none is configured.
func DefaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "studyquest", "studyquest.log")
}
