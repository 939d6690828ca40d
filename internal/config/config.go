package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Generation providers.
const (
	ProviderWatsonx = "watsonx"
	ProviderOpenAI  = "openai"
	ProviderGemini  = "gemini"
)

// Answer template variants.
const (
	TemplateKeyPoints = "key_points"
	TemplateSummary   = "summary"
)

// DefaultCredentialsFile is loaded into the environment before the YAML config is expanded.
const DefaultCredentialsFile = "ibm-credentials.env"

// Config holds the docqa API configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Auth       AuthConfig       `yaml:"auth"`
	Discovery  DiscoveryConfig  `yaml:"discovery"`
	NLU        NLUConfig        `yaml:"nlu"`
	Generation GenerationConfig `yaml:"generation"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	Cache      CacheConfig      `yaml:"cache"`
	Upload     UploadConfig     `yaml:"upload"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds the shared-secret gate for mutating routes.
type AuthConfig struct {
	Passphrase string `yaml:"passphrase"` // empty disables the X-App-Passphrase check
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port                 int  `yaml:"port"`
	ReadTimeoutSec       int  `yaml:"read_timeout_sec"`
	WriteTimeoutSec      int  `yaml:"write_timeout_sec"`
	ShutdownSec          int  `yaml:"shutdown_timeout_sec"`
	ClientTimeoutSec     int  `yaml:"client_timeout_sec"` // per outbound call
	ExposeInternalErrors bool `yaml:"expose_internal_errors"`
}

// DiscoveryConfig holds document search service settings.
type DiscoveryConfig struct {
	APIKey       string `yaml:"api_key"`
	URL          string `yaml:"url"`
	ProjectID    string `yaml:"project_id"`
	CollectionID string `yaml:"collection_id"`
	Version      string `yaml:"version"`
	Count        int    `yaml:"count"`
}

// NLUConfig holds categorization service settings.
type NLUConfig struct {
	APIKey          string `yaml:"api_key"`
	URL             string `yaml:"url"`
	Version         string `yaml:"version"`
	CategoriesLimit int    `yaml:"categories_limit"`
}

// GenerationConfig holds text generation settings.
type GenerationConfig struct {
	Provider          string        `yaml:"provider"` // watsonx (default), openai, gemini
	Template          string        `yaml:"template"` // key_points (default), summary
	MaxNewTokens      int           `yaml:"max_new_tokens"`
	Temperature       float64       `yaml:"temperature"`
	RepetitionPenalty float64       `yaml:"repetition_penalty"`
	Watsonx           WatsonxConfig `yaml:"watsonx"`
	OpenAI            OpenAIConfig  `yaml:"openai"`
	Gemini            GeminiConfig  `yaml:"gemini"`
}

// WatsonxConfig holds watsonx.ai settings.
type WatsonxConfig struct {
	APIKey    string   `yaml:"api_key"`
	URL       string   `yaml:"url"`
	ProjectID string   `yaml:"project_id"`
	Model     string   `yaml:"model"`
	Fallbacks []string `yaml:"fallback_models"` // tried by credcheck after Model
}

// OpenAIConfig holds OpenAI-compatible chat completion settings.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// GeminiConfig holds Gemini settings.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// ScoringConfig holds relevance scoring settings.
type ScoringConfig struct {
	Concurrency int `yaml:"concurrency"` // passages scored in parallel per document, 1 = sequential
}

// CacheConfig holds the optional relevance score cache settings.
type CacheConfig struct {
	Addrs            []string `yaml:"addrs"` // empty disables the cache
	Password         string   `yaml:"password"`
	TTLSec           int      `yaml:"ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether a cache backend is configured.
func (c CacheConfig) Enabled() bool {
	return len(c.Addrs) > 0
}

// UploadConfig holds upload limits.
type UploadConfig struct {
	MaxBytes int64 `yaml:"max_bytes"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// The credentials env file (DOCQA_CREDENTIALS_FILE) is loaded first if present;
// variables already set in the environment win.
func Load(env string) (Config, error) {
	if err := loadCredentials(); err != nil {
		return Config{}, err
	}

	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands ${VAR} references, decodes YAML, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

func loadCredentials() error {
	path := os.Getenv("DOCQA_CREDENTIALS_FILE")
	if path == "" {
		path = DefaultCredentialsFile
	}
	if !fileExists(path) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load credentials file %s: %w", path, err)
	}
	return nil
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 5000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 30
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 300
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.ClientTimeoutSec <= 0 {
		c.HTTP.ClientTimeoutSec = 60
	}
	if c.Discovery.Version == "" {
		c.Discovery.Version = "2021-08-01"
	}
	if c.Discovery.Count <= 0 {
		c.Discovery.Count = 20
	}
	if c.NLU.Version == "" {
		c.NLU.Version = "2021-08-01"
	}
	if c.NLU.CategoriesLimit <= 0 {
		c.NLU.CategoriesLimit = 3
	}
	c.applyGenerationDefaults()
	if c.Scoring.Concurrency <= 0 {
		c.Scoring.Concurrency = 1
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 24 * 60 * 60
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Upload.MaxBytes <= 0 {
		c.Upload.MaxBytes = 32 << 20
	}
}

func (c *Config) applyGenerationDefaults() {
	g := &c.Generation
	if g.Provider == "" {
		g.Provider = ProviderWatsonx
	}
	if g.Template == "" {
		g.Template = TemplateKeyPoints
	}
	if g.MaxNewTokens <= 0 {
		g.MaxNewTokens = 1500
	}
	if g.Temperature == 0 {
		g.Temperature = 0.7
	}
	if g.RepetitionPenalty == 0 {
		g.RepetitionPenalty = 1.1
	}
	if g.Watsonx.Model == "" {
		g.Watsonx.Model = "ibm/granite-3-8b-instruct"
	}
	if len(g.Watsonx.Fallbacks) == 0 {
		g.Watsonx.Fallbacks = []string{"ibm/granite-3-2b-instruct", "ibm/granite-13b-chat-v2"}
	}
	if g.OpenAI.Model == "" {
		g.OpenAI.Model = "gpt-3.5-turbo"
	}
	if g.Gemini.Model == "" {
		g.Gemini.Model = "gemini-2.5-flash"
	}
}

// Validate checks the configuration and reports every missing credential at once.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	var missing []string
	require := func(name, val string) {
		if strings.TrimSpace(val) == "" {
			missing = append(missing, name)
		}
	}
	require("discovery.api_key", c.Discovery.APIKey)
	require("discovery.url", c.Discovery.URL)
	require("discovery.project_id", c.Discovery.ProjectID)
	require("discovery.collection_id", c.Discovery.CollectionID)
	require("nlu.api_key", c.NLU.APIKey)
	require("nlu.url", c.NLU.URL)

	switch c.Generation.Provider {
	case ProviderWatsonx:
		require("generation.watsonx.api_key", c.Generation.Watsonx.APIKey)
		require("generation.watsonx.url", c.Generation.Watsonx.URL)
		require("generation.watsonx.project_id", c.Generation.Watsonx.ProjectID)
	case ProviderOpenAI:
		require("generation.openai.api_key", c.Generation.OpenAI.APIKey)
	case ProviderGemini:
		require("generation.gemini.api_key", c.Generation.Gemini.APIKey)
	default:
		return fmt.Errorf(
			"generation.provider must be %q, %q or %q, got %q",
			ProviderWatsonx, ProviderOpenAI, ProviderGemini, c.Generation.Provider,
		)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}

	switch c.Generation.Template {
	case TemplateKeyPoints, TemplateSummary:
	default:
		return fmt.Errorf(
			"generation.template must be %q or %q, got %q",
			TemplateKeyPoints, TemplateSummary, c.Generation.Template,
		)
	}

	if c.Scoring.Concurrency > 64 {
		return errors.New("scoring.concurrency must be at most 64")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
