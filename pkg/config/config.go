// Package config provides configuration management for the valuation dashboard.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Screener  ScreenerConfig  `mapstructure:"screener"`
	Filings   FilingsConfig   `mapstructure:"filings"`
	News      NewsConfig      `mapstructure:"news"`
	Valuation ValuationConfig `mapstructure:"valuation"`
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port          int           `mapstructure:"port"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	MaxUploadSize int64         `mapstructure:"max_upload_size"`
}

// LLMConfig holds LLM provider configuration.
type LLMConfig struct {
	Provider string       `mapstructure:"provider"` // ollama, openai, gemini, none
	Ollama   OllamaConfig `mapstructure:"ollama"`
	OpenAI   OpenAIConfig `mapstructure:"openai"`
	Gemini   GeminiConfig `mapstructure:"gemini"`
}

// OllamaConfig holds Ollama-specific configuration.
type OllamaConfig struct {
	URL   string `mapstructure:"url"`
	Model string `mapstructure:"model"`
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// ScreenerConfig holds screener.in quote configuration.
type ScreenerConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	ScrapeDelay time.Duration `mapstructure:"scrape_delay"`
}

// FilingsConfig holds BSE announcement page configuration.
type FilingsConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// NewsConfig holds news fetching configuration.
type NewsConfig struct {
	Sources     []string      `mapstructure:"sources"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxArticles int           `mapstructure:"max_articles"`
	Summarize   bool          `mapstructure:"summarize"`
}

// ValuationConfig holds model defaults.
type ValuationConfig struct {
	ForecastYears    int               `mapstructure:"forecast_years"`
	Growth1to2       float64           `mapstructure:"growth_1_2"`
	Growth3to5       float64           `mapstructure:"growth_3_5"`
	Growth6On        float64           `mapstructure:"growth_6_on"`
	CapexPct         float64           `mapstructure:"capex_pct"`
	WCChangePct      float64           `mapstructure:"wc_change_pct"`
	WACC             float64           `mapstructure:"wacc"`
	VerdictThreshold float64           `mapstructure:"verdict_threshold"`
	MaxColumns       int               `mapstructure:"max_columns"`
	Sensitivity      SensitivityConfig `mapstructure:"sensitivity"`
}

// SensitivityConfig holds the discrete input sets used by the sensitivity grids.
type SensitivityConfig struct {
	Growth         []float64 `mapstructure:"growth"`
	WACC           []float64 `mapstructure:"wacc"`
	TerminalGrowth []float64 `mapstructure:"terminal_growth"`
	EBITMargin     []float64 `mapstructure:"ebit_margin"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists (don't error if not found)
	envFiles := []string{".env", ".env.local"}
	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not load %s: %v\n", envFile, err)
			}
		}
	}

	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	} else {
		// Look for config in default locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "debug")

	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.max_upload_size", 10<<20)

	// LLM defaults
	v.SetDefault("llm.provider", "none")
	v.SetDefault("llm.ollama.url", "http://localhost:11434")
	v.SetDefault("llm.ollama.model", "llama2")
	v.SetDefault("llm.openai.model", "gpt-4o-mini")
	v.SetDefault("llm.gemini.model", "gemini-pro")

	// Screener defaults
	v.SetDefault("screener.base_url", "https://www.screener.in")
	v.SetDefault("screener.timeout", "30s")
	v.SetDefault("screener.scrape_delay", "3s")

	// Filings defaults
	v.SetDefault("filings.base_url", "https://www.bseindia.com")
	v.SetDefault("filings.timeout", "30s")

	// News defaults
	v.SetDefault("news.sources", []string{
		"https://www.moneycontrol.com/rss/latestnews.xml",
		"https://economictimes.indiatimes.com/markets/rssfeeds/1977021501.cms",
	})
	v.SetDefault("news.timeout", "20s")
	v.SetDefault("news.max_articles", 15)
	v.SetDefault("news.summarize", true)

	// Valuation defaults
	v.SetDefault("valuation.forecast_years", 5)
	v.SetDefault("valuation.growth_1_2", 12.0)
	v.SetDefault("valuation.growth_3_5", 10.0)
	v.SetDefault("valuation.growth_6_on", 5.0)
	v.SetDefault("valuation.capex_pct", 5.0)
	v.SetDefault("valuation.wc_change_pct", 1.0)
	v.SetDefault("valuation.wacc", 11.0)
	v.SetDefault("valuation.verdict_threshold", 10.0)
	v.SetDefault("valuation.max_columns", 11)
	v.SetDefault("valuation.sensitivity.growth", []float64{5, 10, 14, 16, 25})
	v.SetDefault("valuation.sensitivity.wacc", []float64{9, 10, 11, 12, 13})
	v.SetDefault("valuation.sensitivity.terminal_growth", []float64{3, 4, 5, 6})
	v.SetDefault("valuation.sensitivity.ebit_margin", []float64{10, 15, 20, 25, 30})
}

// bindEnvVars binds environment variables to config keys.
func bindEnvVars(v *viper.Viper) {
	// App
	_ = v.BindEnv("app.env", "APP_ENV")
	_ = v.BindEnv("app.log_level", "LOG_LEVEL")

	// Server
	_ = v.BindEnv("server.port", "SERVER_PORT")

	// LLM
	_ = v.BindEnv("llm.provider", "LLM_PROVIDER")
	_ = v.BindEnv("llm.ollama.url", "OLLAMA_URL")
	_ = v.BindEnv("llm.ollama.model", "OLLAMA_MODEL")
	_ = v.BindEnv("llm.openai.api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("llm.openai.model", "OPENAI_MODEL")
	_ = v.BindEnv("llm.openai.base_url", "OPENAI_BASE_URL")
	_ = v.BindEnv("llm.gemini.api_key", "GEMINI_API_KEY")
	_ = v.BindEnv("llm.gemini.model", "GEMINI_MODEL")

	// Collaborators
	_ = v.BindEnv("screener.base_url", "SCREENER_BASE_URL")
	_ = v.BindEnv("filings.base_url", "BSE_BASE_URL")

	// Valuation
	_ = v.BindEnv("valuation.verdict_threshold", "VERDICT_THRESHOLD")
}

// IsDevelopment returns true if the app is in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction returns true if the app is in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
