package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the newsctl configuration, read from .newsctl.yaml and NEWSCTL_* variables.
type Config struct {
	API    APIConfig    `mapstructure:"api"`
	Output OutputConfig `mapstructure:"output"`
	Auth   AuthConfig   `mapstructure:"auth"`
}

type APIConfig struct {
	URL     string        `mapstructure:"url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type OutputConfig struct {
	Format string `mapstructure:"format"`
	Colors bool   `mapstructure:"colors"`
}

// AuthConfig holds the signing secret used by "newsctl token".
type AuthConfig struct {
	Secret string `mapstructure:"secret"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.url", "http://localhost:8080")
	v.SetDefault("api.token", "")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("output.format", "table")
	v.SetDefault("output.colors", true)
	v.SetDefault("auth.secret", "")
}

// LoadConfig reads cfgFile when given, otherwise looks for .newsctl.yaml in the
// working directory and in $HOME/.config/newsctl. A missing file is not an error.
func LoadConfig(v *viper.Viper, cfgFile string) (*Config, error) {
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".newsctl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "newsctl"))
		}
	}

	v.SetEnvPrefix("NEWSCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// サーバーと同じ JWT_SECRET を共有できるようにする
	if cfg.Auth.Secret == "" {
		cfg.Auth.Secret = os.Getenv("JWT_SECRET")
	}
	return &cfg, nil
}
