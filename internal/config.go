package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration keys, also used as flag names (with '-' instead of '_').
const (
	KeyAPIURL         = "api_url"
	KeyConfigDir      = "config_dir"
	KeyRequestTimeout = "request_timeout"
	KeyRateLimit      = "rate_limit"
	KeyCodeStyle      = "code_style"
	KeyWidth          = "width"
	KeyNoColor        = "no_color"

	// KeyIDToken is read from the environment only (DEVCHAT_ID_TOKEN).
	KeyIDToken = "id_token"
)

// DefaultAPIURL is used when no backend origin is configured.
const DefaultAPIURL = "http://localhost:3001"

// Config is the resolved client configuration
type Config struct {
	APIURL         string        `mapstructure:"api_url"`
	ConfigDir      string        `mapstructure:"config_dir"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// RateLimit caps outbound requests per second; 0 disables the limit.
	RateLimit float64 `mapstructure:"rate_limit"`
	CodeStyle string  `mapstructure:"code_style"`
	Width     int     `mapstructure:"width"`
	NoColor   bool    `mapstructure:"no_color"`

	Paths Paths `mapstructure:"-"`
}

// NewViper returns a viper instance with devchat defaults and DEVCHAT_* env binding
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyAPIURL, DefaultAPIURL)
	v.SetDefault(KeyConfigDir, "")
	v.SetDefault(KeyRequestTimeout, 60*time.Second)
	v.SetDefault(KeyRateLimit, 0.0)
	v.SetDefault(KeyCodeStyle, "monokai")
	v.SetDefault(KeyWidth, 80)
	v.SetDefault(KeyNoColor, false)

	v.SetEnvPrefix("devchat")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig resolves configuration from defaults, config file, dotenv files,
// environment and any flags already bound to v. configFile may be empty.
func LoadConfig(v *viper.Viper, configFile string) (*Config, error) {
	paths, err := DetectPaths(v.GetString(KeyConfigDir))
	if err != nil {
		return nil, err
	}

	// godotenv never overrides variables that are already set.
	for _, envFile := range []string{".env", paths.EnvFilePath()} {
		if _, statErr := os.Stat(envFile); statErr != nil {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
		LogDebug("Loaded environment from %s", envFile)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(paths.ConfigDir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		LogDebug("Using config file %s", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Paths = paths
	cfg.ConfigDir = paths.ConfigDir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the resolved configuration
func (c *Config) Validate() error {
	c.APIURL = strings.TrimSuffix(strings.TrimSpace(c.APIURL), "/")
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("invalid api_url %q: %w", c.APIURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid api_url %q: scheme must be http or https", c.APIURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid api_url %q: missing host", c.APIURL)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}
	if c.Width <= 0 {
		c.Width = 80
	}
	return nil
}
