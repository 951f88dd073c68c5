package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Trajectories Trajectories `yaml:"trajectories"`
	Output       Output       `yaml:"output"`
	Classify     Classify     `yaml:"classify"`
	Secrets      Secrets      `yaml:"secrets"`
	Log          Log          `yaml:"log"`
}

type Trajectories struct {
	Dir string `yaml:"dir"`
}

type Output struct {
	Dir string `yaml:"dir"`
}

type Classify struct {
	Provider          string  `yaml:"provider"`
	Model             string  `yaml:"model"`
	ModelSize         string  `yaml:"model_size"`
	SampleSize        int     `yaml:"sample_size"`
	DelaySeconds      float64 `yaml:"delay_seconds"`
	Seed              int     `yaml:"seed"`
	MaxResponseTokens int     `yaml:"max_response_tokens"`
}

type Secrets struct {
	EnvFile string `yaml:"env_file"`
}

type Log struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no config file exists; the
// tool must run with zero setup against a --trajectory-dir flag.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads a yaml config. A missing file is not an error: defaults apply
// and flags can override everything.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Trajectories.Dir == "" {
		cfg.Trajectories.Dir = "./trajectories"
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "./results"
	}
	if cfg.Classify.Provider == "" {
		cfg.Classify.Provider = "anthropic"
	}
	if cfg.Classify.SampleSize == 0 {
		cfg.Classify.SampleSize = 50
	}
	if cfg.Classify.DelaySeconds == 0 {
		cfg.Classify.DelaySeconds = 0.5
	}
	if cfg.Classify.Seed == 0 {
		cfg.Classify.Seed = 42
	}
	if cfg.Classify.MaxResponseTokens == 0 {
		cfg.Classify.MaxResponseTokens = 300
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func validate(cfg *Config) error {
	if cfg.Classify.Provider != "anthropic" && cfg.Classify.Provider != "openai" {
		return fmt.Errorf("classify.provider must be anthropic or openai, got %q", cfg.Classify.Provider)
	}
	if cfg.Classify.SampleSize < 1 {
		return fmt.Errorf("classify.sample_size must be at least 1")
	}
	if cfg.Classify.DelaySeconds < 0 {
		return fmt.Errorf("classify.delay_seconds must not be negative")
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", cfg.Log.Level)
	}
	return nil
}
