package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Interface defines read access to the application configuration. It exists
// so components can be handed configuration without depending on viper, and
// so tests can substitute fixed values.
type Interface interface {
	Logger() LoggerConfig
	Server() ServerConfig
	Browser() BrowserConfig
	Engines() EnginesConfig
	Audit() AuditConfig
	LLM() LLMConfig
}

// LoggerConfig controls the global zap logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"` // "console" or "json"
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`

	// File rotation settings; logging to file is disabled when LogFile is empty.
	LogFile    string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"` // days
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// ServerConfig controls the HTTP API surface.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// BrowserConfig controls the headless Chrome instances driven for audits.
type BrowserConfig struct {
	Headless          bool          `mapstructure:"headless" yaml:"headless"`
	ChromePath        string        `mapstructure:"chrome_path" yaml:"chrome_path"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	QuietPeriod       time.Duration `mapstructure:"quiet_period" yaml:"quiet_period"`
	IgnoreTLSErrors   bool          `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
}

// AxeConfig controls the in-page rule engine.
type AxeConfig struct {
	// ScriptPath points at a local axe-core bundle (axe.min.js). When empty,
	// well-known node_modules locations are probed at startup.
	ScriptPath string   `mapstructure:"script_path" yaml:"script_path"`
	RuleTags   []string `mapstructure:"rule_tags" yaml:"rule_tags"`
}

// LighthouseConfig controls the external score auditor subprocess.
type LighthouseConfig struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	Binary  string        `mapstructure:"binary" yaml:"binary"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// EnginesConfig groups the two audit engines.
type EnginesConfig struct {
	Axe        AxeConfig        `mapstructure:"axe" yaml:"axe"`
	Lighthouse LighthouseConfig `mapstructure:"lighthouse" yaml:"lighthouse"`
}

// AuditConfig controls the orchestration pipeline.
type AuditConfig struct {
	Concurrency int           `mapstructure:"concurrency" yaml:"concurrency"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
	TestEngine  string        `mapstructure:"test_engine" yaml:"test_engine"`
}

// LLMConfig controls the generative recommendation fallback.
type LLMConfig struct {
	Provider        string        `mapstructure:"provider" yaml:"provider"`
	APIKey          string        `mapstructure:"api_key" yaml:"api_key"`
	Model           string        `mapstructure:"model" yaml:"model"`
	Endpoint        string        `mapstructure:"endpoint" yaml:"endpoint"`
	APITimeout      time.Duration `mapstructure:"api_timeout" yaml:"api_timeout"`
	MaxOutputTokens int           `mapstructure:"max_output_tokens" yaml:"max_output_tokens"`
	MaxRetries      int           `mapstructure:"max_retries" yaml:"max_retries"`
}

// ProviderGemini is the only generative provider currently wired.
const ProviderGemini = "gemini"

// Config is the root configuration object. Fields are exported so viper can
// unmarshal into them; read access elsewhere goes through Interface.
type Config struct {
	LoggerCfg  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	ServerCfg  ServerConfig  `mapstructure:"server" yaml:"server"`
	BrowserCfg BrowserConfig `mapstructure:"browser" yaml:"browser"`
	EnginesCfg EnginesConfig `mapstructure:"engines" yaml:"engines"`
	AuditCfg   AuditConfig   `mapstructure:"audit" yaml:"audit"`
	LLMCfg     LLMConfig     `mapstructure:"llm" yaml:"llm"`
}

var _ Interface = (*Config)(nil)

func (c *Config) Logger() LoggerConfig   { return c.LoggerCfg }
func (c *Config) Server() ServerConfig   { return c.ServerCfg }
func (c *Config) Browser() BrowserConfig { return c.BrowserCfg }
func (c *Config) Engines() EnginesConfig { return c.EnginesCfg }
func (c *Config) Audit() AuditConfig     { return c.AuditCfg }
func (c *Config) LLM() LLMConfig         { return c.LLMCfg }

// NewDefaultConfig creates a new configuration struct populated with
// default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults registers every configuration key with its default value.
// Registration is what lets environment overrides reach Unmarshal: viper
// only consults the environment for keys it knows about.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "a11yscope")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", false)

	// -- Server --
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 5*time.Minute)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.chrome_path", "")
	v.SetDefault("browser.navigation_timeout", 60*time.Second)
	v.SetDefault("browser.quiet_period", 1500*time.Millisecond)
	v.SetDefault("browser.ignore_tls_errors", false)

	// -- Engines --
	v.SetDefault("engines.axe.script_path", "")
	v.SetDefault("engines.axe.rule_tags", []string{"wcag2a", "wcag2aa"})
	v.SetDefault("engines.lighthouse.enabled", true)
	v.SetDefault("engines.lighthouse.binary", "lighthouse")
	v.SetDefault("engines.lighthouse.timeout", 90*time.Second)

	// -- Audit --
	v.SetDefault("audit.concurrency", 2)
	v.SetDefault("audit.cache_ttl", 10*time.Minute)
	v.SetDefault("audit.test_engine", "axe-core + lighthouse")

	// -- LLM --
	v.SetDefault("llm.provider", ProviderGemini)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gemini-2.0-flash")
	v.SetDefault("llm.endpoint", "")
	v.SetDefault("llm.api_timeout", 45*time.Second)
	v.SetDefault("llm.max_output_tokens", 4096)
	v.SetDefault("llm.max_retries", 2)
}

// Validate checks invariants that would otherwise surface as confusing
// runtime failures deep inside the pipeline.
func (c *Config) Validate() error {
	if c.AuditCfg.Concurrency <= 0 {
		return fmt.Errorf("audit.concurrency must be a positive integer, got %d", c.AuditCfg.Concurrency)
	}
	if c.AuditCfg.CacheTTL <= 0 {
		return fmt.Errorf("audit.cache_ttl must be positive, got %s", c.AuditCfg.CacheTTL)
	}
	if c.BrowserCfg.NavigationTimeout <= 0 {
		return fmt.Errorf("browser.navigation_timeout must be positive, got %s", c.BrowserCfg.NavigationTimeout)
	}
	if len(c.EnginesCfg.Axe.RuleTags) == 0 {
		return fmt.Errorf("engines.axe.rule_tags must name at least one rule tag")
	}
	if c.EnginesCfg.Lighthouse.Enabled && c.EnginesCfg.Lighthouse.Binary == "" {
		return fmt.Errorf("engines.lighthouse.binary is required when the lighthouse engine is enabled")
	}
	if c.LLMCfg.Provider != "" && c.LLMCfg.Provider != ProviderGemini {
		return fmt.Errorf("unsupported llm.provider %q, supported: [%s]", c.LLMCfg.Provider, ProviderGemini)
	}
	return nil
}

// Load reads configuration from the given file (or ./config.yaml when empty),
// layers A11YSCOPE_* environment variables on top, applies defaults for
// anything unset, and validates the result.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("A11YSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file; defaults and env vars carry the day.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
