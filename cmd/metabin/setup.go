package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"metabin/internal/config"
	"metabin/internal/prof"
	"metabin/internal/trace"
)

// loadConfig reads --config, or the nearest metabin.toml above the working
// directory, or the defaults.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		return config.Load(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return config.Config{}, err
	}
	return config.Discover(wd)
}

// setupTracing builds the tracer from the config and the trace flags, which
// take precedence, and attaches it to the command context. It returns a
// cleanup function.
func setupTracing(cmd *cobra.Command, cfg config.Config) (func(), error) {
	flags := cmd.Root().PersistentFlags()
	if v, _ := flags.GetString("trace"); flags.Changed("trace") {
		cfg.Trace.Output = v
		if cfg.Trace.Level == "" || cfg.Trace.Level == "off" {
			cfg.Trace.Level = "phase"
		}
	}
	if v, _ := flags.GetString("trace-level"); flags.Changed("trace-level") {
		cfg.Trace.Level = v
	}
	if v, _ := flags.GetString("trace-mode"); flags.Changed("trace-mode") {
		cfg.Trace.Mode = v
	}

	tc, err := cfg.TraceSpec()
	if err != nil {
		return nil, fmt.Errorf("invalid trace settings: %w", err)
	}
	if tc.Level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}

	tracer, err := trace.New(tc)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	cleanup := func() {
		// ring-only mode keeps events in memory until exit
		if ring, ok := tracer.(*trace.RingTracer); ok {
			if err := ring.Dump(cmd.ErrOrStderr(), trace.FormatText); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "trace: dump error: %v\n", err)
			}
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return cleanup, nil
}

// setupProfiling starts the profiles requested by --cpu-profile and
// --mem-profile. The returned cleanup is safe to call more than once.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	flags := cmd.Root().PersistentFlags()
	cpuPath, err := flags.GetString("cpu-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	memPath, err := flags.GetString("mem-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	session, err := prof.Start(cpuPath, memPath)
	if err != nil {
		return nil, fmt.Errorf("failed to start cpu profile: %w", err)
	}
	return func() {
		if err := session.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "profile: %v\n", err)
		}
	}, nil
}
