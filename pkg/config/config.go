package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Backends selectable through SOLVER_BACKEND.
var Backends = []string{"gophersat", "roundingsat", "backtrack"}

type Config struct {
	Env  string
	Port int

	Log    LogConfig
	Solver SolverConfig
	Worker WorkerConfig
}

type LogConfig struct {
	Level  string
	Format string
}

// SolverConfig tunes the constraint solver backend. MaxTime is the default
// wall-clock budget of one solve call; a payload's max_time_s override wins.
type SolverConfig struct {
	Backend string
	MaxTime time.Duration
}

// WorkerConfig sizes the asynchronous solve queue.
type WorkerConfig struct {
	Count      int
	BufferSize int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing .env file is fine, the environment still applies
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, err
		}
	}

	cfg := &Config{
		Env:  v.GetString("ENV"),
		Port: v.GetInt("PORT"),
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Solver: SolverConfig{
			Backend: v.GetString("SOLVER_BACKEND"),
			MaxTime: time.Duration(v.GetFloat64("SOLVER_MAX_TIME_S") * float64(time.Second)),
		},
		Worker: WorkerConfig{
			Count:      v.GetInt("WORKER_COUNT"),
			BufferSize: v.GetInt("WORKER_BUFFER_SIZE"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8000)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("SOLVER_BACKEND", "gophersat")
	v.SetDefault("SOLVER_MAX_TIME_S", 10.0)
	v.SetDefault("WORKER_COUNT", 2)
	v.SetDefault("WORKER_BUFFER_SIZE", 16)
}

func (cfg *Config) validate() error {
	valid := false
	for _, backend := range Backends {
		if cfg.Solver.Backend == backend {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid SOLVER_BACKEND %q, allowed values are %v", cfg.Solver.Backend, Backends)
	}
	if cfg.Solver.MaxTime <= 0 {
		return fmt.Errorf("SOLVER_MAX_TIME_S must be positive")
	}
	return nil
}
