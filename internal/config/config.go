package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds the serve command's configuration.
type Config struct {
	Port string `mapstructure:"port"`
	DB   struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"db"`
}

// Load reads configuration from an optional config.yaml plus environment
// variables prefixed with AUTOMATION_ (e.g. AUTOMATION_DB_URL). A missing
// config file is fine, env vars and defaults carry it.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix("AUTOMATION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Defaults double as key registrations: AutomaticEnv only surfaces
	// keys viper already knows about when unmarshalling.
	v.SetDefault("port", "8080")
	v.SetDefault("db.url", "")

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
