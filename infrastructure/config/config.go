// Package config loads flow navigator settings from defaults, a config file,
// a .env file and FLOWNAV_ environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"flow_navigator/infrastructure/ai"
)

const EnvPrefix = "FLOWNAV"

type Config struct {
	Browser BrowserConfig `mapstructure:"browser"`
	Flow    FlowConfig    `mapstructure:"flow"`
	Oracle  OracleConfig  `mapstructure:"oracle"`
	Output  OutputConfig  `mapstructure:"output"`
	Logger  LoggerConfig  `mapstructure:"logger"`
}

type BrowserConfig struct {
	Headless       bool          `mapstructure:"headless"`
	SlowMo         time.Duration `mapstructure:"slow_mo"`
	Locale         string        `mapstructure:"locale"`
	Permissions    []string      `mapstructure:"permissions"`
	ViewportWidth  int           `mapstructure:"viewport_width"`
	ViewportHeight int           `mapstructure:"viewport_height"`
	Args           []string      `mapstructure:"args"`
}

type FlowConfig struct {
	MaxSteps           int           `mapstructure:"max_steps"`
	StepDelay          time.Duration `mapstructure:"step_delay"`
	NetworkIdleTimeout time.Duration `mapstructure:"network_idle_timeout"`
	ActionTimeout      time.Duration `mapstructure:"action_timeout"`
	NavigationTimeout  time.Duration `mapstructure:"navigation_timeout"`
	RetryAttempts      int           `mapstructure:"retry_attempts"`
	RetryDelay         time.Duration `mapstructure:"retry_delay"`
	TextLimit          int           `mapstructure:"text_limit"`
}

type OracleConfig struct {
	Provider          string        `mapstructure:"provider"`
	Model             string        `mapstructure:"model"`
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	Temperature       float64       `mapstructure:"temperature"`
	MaxTokens         int           `mapstructure:"max_tokens"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

type OutputConfig struct {
	Dir            string `mapstructure:"dir"`
	DOMHistoryFile string `mapstructure:"dom_history_file"`
	ActionLogFile  string `mapstructure:"action_log_file"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	LogFile    string `mapstructure:"log_file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// providerKeyEnv lists the conventional API key variable of each provider
var providerKeyEnv = map[string]string{
	ai.ProviderOpenAI:    "OPENAI_API_KEY",
	ai.ProviderAnthropic: "ANTHROPIC_API_KEY",
	ai.ProviderGemini:    "GOOGLE_API_KEY",
}

// SetDefaults - registers every default on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.slow_mo", 0)
	v.SetDefault("browser.locale", "en-US")
	v.SetDefault("browser.permissions", []string{"geolocation"})
	v.SetDefault("browser.viewport_width", 1280)
	v.SetDefault("browser.viewport_height", 720)
	v.SetDefault("browser.args", []string{"--start-fullscreen"})

	v.SetDefault("flow.max_steps", 50)
	v.SetDefault("flow.step_delay", 1500*time.Millisecond)
	v.SetDefault("flow.network_idle_timeout", 60*time.Second)
	v.SetDefault("flow.action_timeout", 10*time.Second)
	v.SetDefault("flow.navigation_timeout", 60*time.Second)
	v.SetDefault("flow.retry_attempts", 3)
	v.SetDefault("flow.retry_delay", 2*time.Second)
	v.SetDefault("flow.text_limit", 150)

	v.SetDefault("oracle.provider", "gpt")
	v.SetDefault("oracle.model", "")
	v.SetDefault("oracle.api_key", "")
	v.SetDefault("oracle.base_url", "")
	v.SetDefault("oracle.temperature", 0.2)
	v.SetDefault("oracle.max_tokens", 8000)
	v.SetDefault("oracle.timeout", 120*time.Second)
	v.SetDefault("oracle.requests_per_minute", 0)

	v.SetDefault("output.dir", "framework_output")
	v.SetDefault("output.dom_history_file", "dom_flow_output.json")
	v.SetDefault("output.action_log_file", "actions_log.json")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "text")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)
	v.SetDefault("logger.compress", false)
}

// Load - reads configuration. An empty cfgFile looks for ./flownav.yaml and
// tolerates its absence; an explicit path must exist.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	// .env file is optional
	_ = godotenv.Load()

	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("flownav")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.resolve(v); err != nil {
		return nil, err
	}
	return &cfg, cfg.Validate()
}

// resolve - fills derived values: provider aliases, API key fallback, home paths
func (c *Config) resolve(v *viper.Viper) error {
	if provider, err := ai.NormalizeProvider(c.Oracle.Provider); err == nil {
		c.Oracle.Provider = provider
		if c.Oracle.APIKey == "" {
			_ = v.BindEnv("oracle.provider_key", providerKeyEnv[provider])
			c.Oracle.APIKey = v.GetString("oracle.provider_key")
		}
	}

	dir, err := homedir.Expand(c.Output.Dir)
	if err != nil {
		return fmt.Errorf("invalid output dir: %w", err)
	}
	c.Output.Dir = dir

	if c.Logger.LogFile != "" {
		logFile, err := homedir.Expand(c.Logger.LogFile)
		if err != nil {
			return fmt.Errorf("invalid log file: %w", err)
		}
		c.Logger.LogFile = logFile
	}
	return nil
}

// Validate - rejects settings the flow cannot run with
func (c *Config) Validate() error {
	if _, err := ai.NormalizeProvider(c.Oracle.Provider); err != nil {
		return err
	}
	if c.Flow.MaxSteps <= 0 {
		return fmt.Errorf("flow.max_steps must be positive, got %d", c.Flow.MaxSteps)
	}
	if c.Flow.RetryAttempts <= 0 {
		return fmt.Errorf("flow.retry_attempts must be positive, got %d", c.Flow.RetryAttempts)
	}
	if c.Flow.TextLimit <= 0 {
		return fmt.Errorf("flow.text_limit must be positive, got %d", c.Flow.TextLimit)
	}
	if c.Output.Dir == "" {
		return errors.New("output.dir must not be empty")
	}
	return nil
}
