// Package config loads the site's runtime configuration from defaults and the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces every variable read by Load, e.g. CHUNKER_SERVICE_BASE_URL.
const EnvPrefix = "CHUNKER_"

type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Service ServiceConfig `koanf:"service"`
	Views   ViewsConfig   `koanf:"views"`
	Log     LogConfig     `koanf:"log"`
}

type ServerConfig struct {
	Port int    `koanf:"port" validate:"min=1,max=65535"`
	Mode string `koanf:"mode" validate:"oneof=debug release test"`
}

// ServiceConfig points at the remote chunking service.
type ServiceConfig struct {
	BaseURL       string        `koanf:"base_url"       validate:"required,url"`
	HealthTimeout time.Duration `koanf:"health_timeout" validate:"gt=0"`
	ChunkTimeout  time.Duration `koanf:"chunk_timeout"  validate:"gt=0"`
}

// ViewsConfig bounds how many chunker views are kept in memory and for how long.
type ViewsConfig struct {
	Size int           `koanf:"size" validate:"min=1"`
	TTL  time.Duration `koanf:"ttl"  validate:"gt=0"`
}

type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `koanf:"json"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
			Mode: "release",
		},
		Service: ServiceConfig{
			BaseURL:       "http://localhost:5101",
			HealthTimeout: 5 * time.Second,
			ChunkTimeout:  30 * time.Second,
		},
		Views: ViewsConfig{
			Size: 256,
			TTL:  30 * time.Minute,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load layers the environment over Default and validates the result.
// PORT is honoured unprefixed so the usual hosting convention keeps working.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := k.Load(env.Provider(".", env.Opt{
		TransformFunc: transformEnv,
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &cfg,
			TagName:          "koanf",
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration cannot be nil")
	}
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// transformEnv maps CHUNKER_SERVICE_BASE_URL to service.base_url. Variables
// outside the prefix are dropped by returning an empty key.
func transformEnv(key, value string) (string, any) {
	if key == "PORT" {
		return "server.port", value
	}
	if !strings.HasPrefix(key, EnvPrefix) {
		return "", nil
	}
	parts := strings.FieldsFunc(strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), func(r rune) bool {
		return r == '_'
	})
	switch len(parts) {
	case 0:
		return "", nil
	case 1:
		return parts[0], value
	}
	return parts[0] + "." + strings.Join(parts[1:], "_"), value
}
