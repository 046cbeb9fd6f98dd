package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("%w: load %s: %w", ErrInvalidConfig, path, err)
}

// ResolveConfig builds the effective configuration: defaults, then the
// resolved config file, then environment overrides. It does not validate.
func ResolveConfig(r *ScopeResolver, explicit string, getenv func(string) string) (*Config, Scope, error) {
	scope := r.Resolve(explicit)

	if scope.Type == ScopeFlag && !isFile(scope.ConfigPath) {
		return nil, scope, fmt.Errorf("%w: config file %s not found", ErrInvalidConfig, scope.ConfigPath)
	}

	cfg, err := LoadConfig(scope.ConfigPath)
	if err != nil {
		return nil, scope, err
	}

	if getenv == nil {
		getenv = os.Getenv
	}
	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, scope, err
	}

	return cfg, scope, nil
}
