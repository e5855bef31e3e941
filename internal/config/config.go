// Package config loads the amarodoc server configuration from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/buildwithgo/amarodoc/middlewares"
	"github.com/buildwithgo/amarodoc/openapi"
)

// AddrEnv overrides Server.Addr.
const AddrEnv = "AMARODOC_ADDR"

type Config struct {
	Server  ServerConfig           `yaml:"server"`
	Logging LoggingConfig          `yaml:"logging"`
	OpenAPI openapi.Config         `yaml:"openapi"`
	JWT     JWTConfig              `yaml:"jwt"`
	CORS    middlewares.CORSConfig `yaml:"cors"`
	Metrics MetricsConfig          `yaml:"metrics"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown-timeout"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
	// Issuer is stamped into issued tokens and required of presented ones.
	// Empty disables the check.
	Issuer string `yaml:"issuer"`
}

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
}

// Default returns the configuration used for keys a file leaves out.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{Level: "info"},
		OpenAPI: openapi.Config{}.WithDefaults(),
		JWT:     JWTConfig{Secret: "change-me", Issuer: "amarodoc"},
		CORS:    middlewares.DefaultCORSConfig(),
		Metrics: MetricsConfig{Enabled: true, Path: "/metrics", Namespace: "amarodoc"},
	}
}

// Load reads the YAML file at path over the defaults and applies environment
// overrides. An empty path loads the defaults only.
func Load(path string) (Config, error) {
	if path == "" {
		return finish(Default())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return finish(cfg)
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	cfg.OpenAPI = cfg.OpenAPI.WithDefaults()
	return cfg, nil
}

func finish(cfg Config) (Config, error) {
	if addr := os.Getenv(AddrEnv); addr != "" {
		cfg.Server.Addr = addr
	}
	return cfg, cfg.Validate()
}

// Validate reports settings the server cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is empty"))
	}
	if c.Server.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("server.shutdown-timeout is negative"))
	}
	if _, err := zap.ParseAtomicLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	if c.Metrics.Enabled && c.Metrics.Path == "" {
		errs = append(errs, errors.New("metrics.path is empty"))
	}
	return errors.Join(errs...)
}

// Logger builds the zap logger described by the logging section.
func (c LoggingConfig) Logger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("config: logging.level: %w", err)
	}
	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	return zc.Build()
}
