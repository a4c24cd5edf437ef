package neogm

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the file name LoadConfig is usually pointed at.
const DefaultConfigFile = "neogm.yaml"

// Environment variables overriding the config file.
const (
	EnvNeo4jURI      = "NEOGM_NEO4J_URI"
	EnvNeo4jUser     = "NEOGM_NEO4J_USER"
	EnvNeo4jPassword = "NEOGM_NEO4J_PASS"
	EnvNeo4jDatabase = "NEOGM_NEO4J_DATABASE"
	EnvLogLevel      = "NEOGM_LOG_LEVEL"
)

// Config represents the neogm.yaml configuration file.
type Config struct {
	Neo4j Neo4jConfig `yaml:"neo4j"`
	Log   LogConfig   `yaml:"log,omitempty"`
}

// Neo4jConfig holds Neo4j connection settings.
type Neo4jConfig struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	Database string `yaml:"database,omitempty"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is a zap level name: debug, info, warn or error.
	Level       string `yaml:"level,omitempty"`
	Development bool   `yaml:"development,omitempty"`
}

// DefaultConfig returns the settings of a local Neo4j instance.
func DefaultConfig() *Config {
	return &Config{
		Neo4j: Neo4jConfig{
			URI:      "neo4j://localhost:7687",
			Username: "neo4j",
			Database: "neo4j",
		},
		Log: LogConfig{Level: "info"},
	}
}

// LoadConfig reads path on top of DefaultConfig and applies environment overrides.
// A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("could not read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("could not parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	for env, field := range map[string]*string{
		EnvNeo4jURI:      &c.Neo4j.URI,
		EnvNeo4jUser:     &c.Neo4j.Username,
		EnvNeo4jPassword: &c.Neo4j.Password,
		EnvNeo4jDatabase: &c.Neo4j.Database,
		EnvLogLevel:      &c.Log.Level,
	} {
		if v, ok := os.LookupEnv(env); ok {
			*field = v
		}
	}
}

// NewLogger builds a zap logger writing to stderr at the configured level.
func NewLogger(cfg LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.OutputPaths = []string{"stderr"}

	level := zapcore.InfoLevel
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	return zc.Build()
}
