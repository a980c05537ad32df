// Package config provides the configuration schema, loader, and validation
// for the azookey-go composition engine.
package config

import "time"

// Config is the root configuration structure for the engine. It is
// typically loaded from a YAML file using [Load] or [LoadFromReader].
//
// Config covers only what this process owns: the two named-pipe endpoints
// it dials, the per-call RPC budget, the reconnect policy, and logging.
// Anything the backend or UI process owns (dictionary paths, window
// styling, ...) is out of scope — this process has no way to configure
// either of them.
type Config struct {
	Pipes   PipesConfig   `yaml:"pipes"`
	IPC     IPCConfig     `yaml:"ipc"`
	Logging LoggingConfig `yaml:"logging"`
}

// PipesConfig names the two named-pipe endpoints the backend and
// candidate-window processes listen on (spec.md §6).
type PipesConfig struct {
	// Conversion is the pipe path for the conversion backend session.
	Conversion string `yaml:"conversion"`

	// UI is the pipe path for the candidate-window session.
	UI string `yaml:"ui"`
}

// IPCConfig tunes the RPC client's timeout and reconnect behavior.
type IPCConfig struct {
	// CallTimeout bounds each individual RPC call (spec.md §4.2).
	CallTimeout time.Duration `yaml:"call_timeout"`

	// ReconnectCooldown is the minimum time the engine waits after a failed
	// dial before attempting to reconnect, so a persistently unreachable
	// backend doesn't retry on every keystroke.
	ReconnectCooldown time.Duration `yaml:"reconnect_cooldown"`

	// ConnectRetries bounds how many times the pipe transport of [ipc.Dial]
	// (via [ipc.WithConnectRetries]) retries a not-found pipe before giving
	// up; busy pipes retry indefinitely within the caller's context.
	// [ipc.DialPipe] does not read it and always uses its built-in 20.
	ConnectRetries int `yaml:"connect_retries"`
}

// LogLevel controls logger verbosity. Valid values: "debug", "info",
// "warn", "error".
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is one of the recognized level names. The
// zero value is not valid on its own — callers treat "" as "use the
// default" rather than validating it.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	default:
		return false
	}
}

// LoggingConfig controls the engine's slog output.
type LoggingConfig struct {
	// Level selects verbosity. Empty means [LogInfo].
	Level LogLevel `yaml:"level"`

	// JSON selects the JSON handler over the text handler. Production
	// deployments set this; local/dev runs leave it false for readability.
	JSON bool `yaml:"json"`
}

// Default values applied by [LoadFromReader] wherever the corresponding
// field was left zero in the YAML document.
const (
	DefaultCallTimeout       = 5 * time.Second
	DefaultReconnectCooldown = 10 * time.Second
	DefaultConnectRetries    = 20
)
