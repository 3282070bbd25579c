package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"shady/internal/config"
	"shady/internal/prof"
	"shady/internal/trace"
)

// session is the state PersistentPreRunE prepares for every command.
type session struct {
	cfg      *config.Config
	tracer   trace.Tracer
	profiler *prof.Session
	quiet    bool
	timings  bool
}

var current = &session{cfg: config.Default(), tracer: trace.Nop}

func setup(cmd *cobra.Command, _ []string) error {
	flags := cmd.Root().PersistentFlags()

	colorFlag, err := flags.GetString("color")
	if err != nil {
		return err
	}
	useColor, err := colorEnabled(colorFlag)
	if err != nil {
		return err
	}
	color.NoColor = !useColor

	if current.quiet, err = flags.GetBool("quiet"); err != nil {
		return err
	}
	if current.timings, err = flags.GetBool("timings"); err != nil {
		return err
	}

	cfgPath, err := flags.GetString("config")
	if err != nil {
		return err
	}
	if cfgPath != "" {
		current.cfg, err = config.Load(cfgPath)
	} else {
		current.cfg, err = config.Discover(".")
	}
	if err != nil {
		return err
	}

	if err := setupTracing(cmd); err != nil {
		return err
	}
	return setupProfiling(cmd)
}

func teardown(cmd *cobra.Command) {
	if err := current.profiler.Stop(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "profile: %v\n", err)
	}
	current.profiler = nil

	tr := current.tracer
	if tr == nil || tr == trace.Nop {
		return
	}
	if err := tr.Flush(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
	}
	if err := tr.Close(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
	}
	current.tracer = trace.Nop
}

func setupProfiling(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	var opts prof.Options
	var err error
	if opts.CPU, err = flags.GetString("cpuprofile"); err != nil {
		return err
	}
	if opts.Mem, err = flags.GetString("memprofile"); err != nil {
		return err
	}
	if opts.Trace, err = flags.GetString("runtime-trace"); err != nil {
		return err
	}
	if !opts.Enabled() {
		return nil
	}
	current.profiler, err = prof.Start(opts)
	return err
}

// colorEnabled resolves --color; auto colors only when stdout is a terminal.
func colorEnabled(value string) (bool, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return isTerminal(os.Stdout), nil
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}

// setupTracing builds the tracer from [trace] in shady.toml, with the trace
// flags taking precedence, and attaches it to the command context.
func setupTracing(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	tc := current.cfg.Trace

	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"trace", &tc.Output},
		{"trace-level", &tc.Level},
		{"trace-mode", &tc.Mode},
	} {
		if !flags.Changed(f.name) {
			continue
		}
		v, err := flags.GetString(f.name)
		if err != nil {
			return fmt.Errorf("failed to get %s flag: %w", f.name, err)
		}
		*f.dst = v
	}
	// Naming an output without a level traces phases.
	if flags.Changed("trace") && !flags.Changed("trace-level") && strings.EqualFold(tc.Level, "off") {
		tc.Level = "phase"
	}

	cfg := *current.cfg
	cfg.Trace = tc
	tcfg, err := cfg.Tracer()
	if err != nil {
		return fmt.Errorf("invalid trace settings: %w", err)
	}
	tracer, err := trace.New(tcfg)
	if err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}
	current.tracer = tracer

	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	return nil
}
