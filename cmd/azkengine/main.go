// Command azkengine is a line-oriented debug harness for the composition
// engine: it reads synthetic key events from stdin, drives them through
// [engine.Engine], and prints the resulting composition snapshot after
// each one. It does not implement the real host text-services bridge
// (platform-specific COM glue is out of scope for this module, spec.md's
// Non-goals) — it drives [hostmock.Host] instead, which is enough to watch
// the state machine and interpreter behave against a real (or offline)
// backend.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/sevenc-nanashi/azookey-go/internal/config"
	"github.com/sevenc-nanashi/azookey-go/internal/engine"
	"github.com/sevenc-nanashi/azookey-go/internal/hostapi/hostmock"
	"github.com/sevenc-nanashi/azookey-go/internal/interpreter"
	"github.com/sevenc-nanashi/azookey-go/internal/ipc"
	"github.com/sevenc-nanashi/azookey-go/internal/observe"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ───────────────────────────────────────────────
	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "azkengine: %v\n", err)
		return 1
	}

	// ── Logger ───────────────────────────────────────────────────────────
	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	slog.Info("azkengine starting",
		"conversion_pipe", cfg.Pipes.Conversion,
		"ui_pipe", cfg.Pipes.UI,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "azkengine: otel init: %v\n", err)
		return 1
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			slog.Warn("otel shutdown", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	host := &hostmock.Host{}
	state := interpreter.NewIMEState(interpreter.WithReconnectCooldown(cfg.IPC.ReconnectCooldown))
	dial := func(dialCtx context.Context) (ipc.Backend, error) {
		return ipc.Dial(dialCtx, cfg.Pipes.Conversion, cfg.Pipes.UI,
			ipc.WithCallTimeout(cfg.IPC.CallTimeout),
			ipc.WithConnectRetries(cfg.IPC.ConnectRetries),
			ipc.WithClientMetrics(metrics),
		)
	}
	// The session conns dial lazily, so probe with an empty append before
	// trusting the client — the same test the real activation path runs.
	if client, err := dial(ctx); err != nil {
		slog.Warn("backend unreachable at startup — continuing in offline mode", "err", err)
	} else if _, err := client.AppendText(ctx, ""); err != nil {
		slog.Warn("backend probe failed at startup — continuing in offline mode", "err", err)
		client.Close()
	} else {
		state.InstallClient(client)
		defer client.Close()
	}

	interp := interpreter.New(host, state, dial, interpreter.WithMetrics(metrics))
	eng := engine.New(state, interp)

	slog.Info("ready — type key codes (e.g. a, 0x41, ctrl:0x97) one per line, or 'quit'")
	return runLoop(ctx, os.Stdin, os.Stdout, eng)
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	fmt.Fprintf(os.Stderr, "azkengine: config file %q not found — using built-in defaults\n", path)
	cfg, err = config.LoadFromReader(strings.NewReader(""))
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// runLoop reads one key-event directive per line from in until EOF, quit,
// or ctx is canceled, printing the composition snapshot after each.
func runLoop(ctx context.Context, in *os.File, out *os.File, eng *engine.Engine) int {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		if line == "terminate" {
			if err := eng.HandleHostTerminated(ctx); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			printSnapshot(out, eng)
			continue
		}

		vk, controlHeld, err := parseDirective(line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}

		consumed, err := eng.HandleKey(ctx, vk, controlHeld)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "consumed=%v\n", consumed)
		printSnapshot(out, eng)
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "azkengine: stdin: %v\n", err)
		return 1
	}
	return 0
}

// parseDirective parses one input line into a (vkCode, controlHeld) pair.
// Accepted forms: a single ASCII letter/digit ("a", "5"), a hex/decimal
// virtual-key code ("0x41"), or either prefixed with "ctrl:".
func parseDirective(line string) (vk uint32, controlHeld bool, err error) {
	if rest, ok := strings.CutPrefix(line, "ctrl:"); ok {
		vk, err = parseVK(rest)
		return vk, true, err
	}
	vk, err = parseVK(line)
	return vk, false, err
}

func parseVK(tok string) (uint32, error) {
	if len(tok) == 1 {
		r := tok[0]
		switch {
		case r >= 'a' && r <= 'z':
			return uint32('A' + (r - 'a')), nil
		case r >= 'A' && r <= 'Z':
			return uint32(r), nil
		case r >= '0' && r <= '9':
			return uint32('0' + (r - '0')), nil
		}
	}
	n, err := strconv.ParseUint(tok, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("unrecognized key token %q", tok)
	}
	return uint32(n), nil
}

func printSnapshot(out *os.File, eng *engine.Engine) {
	s := eng.Comp.Snapshot()
	fmt.Fprintf(out, "state=%v mode=%v preview=%q suffix=%q selection=%d candidates=%d\n",
		s.State, eng.State.InputMode(), s.Preview, s.Suffix, s.SelectionIndex, len(s.Candidates))
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var lvl slog.Level
	switch cfg.Level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if cfg.JSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
