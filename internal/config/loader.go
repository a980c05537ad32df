package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sevenc-nanashi/azookey-go/internal/ipc"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults for any
// zero-valued tunable, and validates the result. Useful in tests where
// configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	// An empty document decodes to io.EOF; it means "all defaults".
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Pipes.Conversion == "" {
		cfg.Pipes.Conversion = ipc.DefaultConversionPipe
	}
	if cfg.Pipes.UI == "" {
		cfg.Pipes.UI = ipc.DefaultUIPipe
	}
	if cfg.IPC.CallTimeout == 0 {
		cfg.IPC.CallTimeout = DefaultCallTimeout
	}
	if cfg.IPC.ReconnectCooldown == 0 {
		cfg.IPC.ReconnectCooldown = DefaultReconnectCooldown
	}
	if cfg.IPC.ConnectRetries == 0 {
		cfg.IPC.ConnectRetries = DefaultConnectRetries
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = LogInfo
	}
}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Pipes.Conversion == "" {
		errs = append(errs, errors.New("pipes.conversion is required"))
	}
	if cfg.Pipes.UI == "" {
		errs = append(errs, errors.New("pipes.ui is required"))
	}

	if cfg.IPC.CallTimeout <= 0 {
		errs = append(errs, fmt.Errorf("ipc.call_timeout %s must be positive", cfg.IPC.CallTimeout))
	}
	if cfg.IPC.ReconnectCooldown < 0 {
		errs = append(errs, fmt.Errorf("ipc.reconnect_cooldown %s must not be negative", cfg.IPC.ReconnectCooldown))
	}
	if cfg.IPC.ConnectRetries < 0 {
		errs = append(errs, fmt.Errorf("ipc.connect_retries %d must not be negative", cfg.IPC.ConnectRetries))
	}

	if cfg.Logging.Level != "" && !cfg.Logging.Level.IsValid() {
		errs = append(errs, fmt.Errorf("logging.level %q is invalid; valid values: debug, info, warn, error", cfg.Logging.Level))
	}

	return errors.Join(errs...)
}
