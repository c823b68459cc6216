package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"metabin/internal/driver"
)

var (
	buildOutDir   string
	buildSnapshot bool
	buildJobs     int
	buildTimings  bool
)

func init() {
	buildCmd.Flags().StringVarP(&buildOutDir, "out", "o", "", "output directory (default: next to each script)")
	buildCmd.Flags().BoolVar(&buildSnapshot, "snapshot", false, "also write a msgpack snapshot (<name>.mp)")
	buildCmd.Flags().IntVarP(&buildJobs, "jobs", "j", 0, "number of scripts built in parallel (default: GOMAXPROCS)")
	buildCmd.Flags().BoolVar(&buildTimings, "timings", false, "print per-phase timings for each script")
}

var buildCmd = &cobra.Command{
	Use:   "build script.toml...",
	Short: "Build payloads and patterns from layout scripts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		target, err := cfg.TargetSpec()
		if err != nil {
			return err
		}
		cleanup, err := setupTracing(cmd, cfg)
		if err != nil {
			return err
		}
		defer cleanup()
		stopProfiling, err := setupProfiling(cmd)
		if err != nil {
			return err
		}
		defer stopProfiling()

		results, err := driver.BuildFiles(cmd.Context(), args, driver.BuildOptions{
			Target:   target,
			Emit:     cfg.EmitOptions(),
			OutDir:   buildOutDir,
			Snapshot: buildSnapshot,
			Jobs:     buildJobs,
		})
		if err != nil {
			return err
		}

		ok := color.New(color.FgGreen).Sprint("built")
		out := cmd.OutOrStdout()
		for _, res := range results {
			fmt.Fprintf(out, "%s %s: %d bytes, %d segments -> %s, %s", ok, res.Name, res.Bytes, res.Segments, res.BinaryPath, res.PatternPath)
			if res.SnapshotPath != "" {
				fmt.Fprintf(out, ", %s", res.SnapshotPath)
			}
			fmt.Fprintln(out)
			if buildTimings {
				fmt.Fprint(out, res.Timings.Summary(res.Name))
			}
		}
		return nil
	},
}
