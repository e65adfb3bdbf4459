package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string           `mapstructure:"environment"`
	LogLevel    string           `mapstructure:"log_level"`
	Server      ServerConfig     `mapstructure:"server"`
	Analysis    AnalysisConfig   `mapstructure:"analysis"`
	Simulation  SimulationConfig `mapstructure:"simulation"`
}

type ServerConfig struct {
	Port            int      `mapstructure:"port"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	ShutdownTimeout string   `mapstructure:"shutdown_timeout"`
}

type AnalysisConfig struct {
	// MaxShapiroN caps the sample size for the Shapiro-Wilk test; the exact
	// p-value computation degrades beyond a few thousand observations.
	MaxShapiroN int `mapstructure:"max_shapiro_n"`
}

type SimulationConfig struct {
	Workers   int `mapstructure:"workers"`
	BatchSize int `mapstructure:"batch_size"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"*"})
	viper.SetDefault("server.shutdown_timeout", "30s")

	viper.SetDefault("analysis.max_shapiro_n", 5000)

	viper.SetDefault("simulation.workers", 4)
	viper.SetDefault("simulation.batch_size", 2048)
}

func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.Simulation.Workers < 1 {
		return fmt.Errorf("simulation workers must be at least 1, got %d", cfg.Simulation.Workers)
	}
	if cfg.Simulation.BatchSize < 1 {
		return fmt.Errorf("simulation batch size must be at least 1, got %d", cfg.Simulation.BatchSize)
	}
	if cfg.Analysis.MaxShapiroN < 3 {
		return fmt.Errorf("analysis max_shapiro_n must be at least 3, got %d", cfg.Analysis.MaxShapiroN)
	}
	return nil
}
