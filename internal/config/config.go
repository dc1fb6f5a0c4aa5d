// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config loads the Keyledger configuration from defaults, YAML
// files, a local .env file, environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the application configuration.
type Config struct {
	Database     Database `mapstructure:"database" yaml:"database"`
	Language     string   `mapstructure:"language" yaml:"language"`
	Debug        bool     `mapstructure:"debug" yaml:"debug"`
	SeedDemoData bool     `mapstructure:"seed_demo_data" yaml:"seed_demo_data"`
	Admin        Admin    `mapstructure:"admin" yaml:"admin"`
}

// Database selects the store backend.
type Database struct {
	Type string `mapstructure:"type" yaml:"type"`
	Dsn  string `mapstructure:"dsn" yaml:"dsn"`
}

// Admin overrides the built-in operator credential.
type Admin struct {
	Login        string `mapstructure:"login" yaml:"login"`
	PasswordHash string `mapstructure:"password_hash" yaml:"password_hash,omitempty"`
}

// Defaults returns the built-in configuration values keyed by their dotted
// config path.
func Defaults() map[string]any {
	return map[string]any{
		"database.type":       "sqlite",
		"database.dsn":        "./keyledger.db",
		"language":            "en",
		"debug":               false,
		"seed_demo_data":      true,
		"admin.login":         "admin",
		"admin.password_hash": "",
	}
}

// GetConfigPath returns the full path for the configuration file.
func GetConfigPath(system bool) (string, error) {
	var configDir string

	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "Keyledger")
		default: // Linux, macOS, etc.
			configDir = "/etc/keyledger"
		}
	} else {
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(dir, "keyledger")
	}

	return filepath.Join(configDir, "keyledger.yaml"), nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (default ".env")
// into the process environment. Variables that are already set win. Missing
// files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("could not load %s: %w", f, err)
		}
	}
	return nil
}

// LoadConfig resolves configuration in increasing precedence: defaults,
// keyledger.yaml (system dir, user dir, working dir or explicitPath), a local
// .keyledger.yaml override, KEYLEDGER_* environment variables (including
// those from .env) and changed command-line flags.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, explicitPath *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("keyledger")
	v.SetConfigType("yaml")

	if explicitPath != nil {
		v.SetConfigFile(*explicitPath)
	}

	if userConfigPath, err := GetConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := GetConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".")

	var readErr error
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return c, err
		}
		readErr = err
	}

	mergeLocalOverride(v)

	if err := LoadDotEnv(); err != nil {
		return c, err
	}
	v.AutomaticEnv()
	v.AllowEmptyEnv(true)
	v.SetEnvPrefix("keyledger")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}

	// Callers treat a missing file as "first run" and write defaults.
	return c, readErr
}

// mergeLocalOverride merges `.keyledger.yaml` from the current directory
// when present. A malformed override is ignored so it cannot break startup.
func mergeLocalOverride(v *viper.Viper) {
	const local = ".keyledger.yaml"
	if _, err := os.Stat(local); err == nil {
		v.SetConfigFile(local)
		_ = v.MergeInConfig()
		v.SetConfigFile("")
	}
}

// WriteConfigFile writes c as YAML to the user or system config path and
// returns the path written.
func WriteConfigFile[T any](c *T, system bool) (string, error) {
	path, err := GetConfigPath(system)
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	// 0600: the file may carry the admin password hash.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
