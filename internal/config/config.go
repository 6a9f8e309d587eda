package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	API     APIConfig     `mapstructure:"api"`
	Session SessionConfig `mapstructure:"session"`
	Upload  UploadConfig  `mapstructure:"upload"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// APIConfig describes the remote baby-massage backend this app talks to.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SessionConfig controls the session cookie and lifetime. The cookie name
// doubles as the fixed storage key for the bearer token.
type SessionConfig struct {
	CookieName string        `mapstructure:"cookie_name"`
	Lifetime   time.Duration `mapstructure:"lifetime"`
	Secure     bool          `mapstructure:"secure"`
}

type UploadConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()
	// Nested keys map to env vars, e.g. api.base_url -> API_BASE_URL
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.address", ":3000")
	viper.SetDefault("api.base_url", "http://localhost:8000/api")
	// Video uploads are relayed through the API client, so the timeout has
	// to cover a full 100MB transfer on a slow link.
	viper.SetDefault("api.timeout", "5m")
	viper.SetDefault("session.cookie_name", "accessToken")
	viper.SetDefault("session.lifetime", "24h")
	viper.SetDefault("session.secure", false)
	viper.SetDefault("upload.max_bytes", 100*1024*1024)

	err = viper.ReadInConfig()
	// Config file is optional; env vars and defaults are enough to run.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	return config, nil
}
