package config

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/ilyakaznacheev/cleanenv"
)

// ErrInvalidConfig is returned when the provided config is not a pointer to a struct.
var ErrInvalidConfig = errors.New("config must be a pointer to a struct")

// Parse loads configuration into cfg.
// When path is non-empty the file is read first (yaml, json, toml or env format,
// chosen by extension); environment variables named by `env` tags always take
// precedence, and `env-default` tags fill whatever is still unset.
// Nested structs contribute their `env-prefix` tag to the variable names.
func Parse(ctx context.Context, cfg any, path string) error {
	if err := validate(cfg); err != nil {
		return err
	}

	if path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}

		return nil
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return fmt.Errorf("read env: %w", err)
	}

	return nil
}

// Usage renders the list of environment variables understood by cfg,
// including their defaults and descriptions, below header.
func Usage(cfg any, header string) (string, error) {
	if err := validate(cfg); err != nil {
		return "", err
	}

	desc, err := cleanenv.GetDescription(cfg, &header)
	if err != nil {
		return "", fmt.Errorf("get description: %w", err)
	}

	return desc, nil
}

func validate(cfg any) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return ErrInvalidConfig
	}

	return nil
}
