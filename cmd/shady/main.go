package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"shady/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "shady",
	Short: "Build GLSL programs from Go",
	Long:  `shady records shader programs through a Go builder API and renders them as GLSL source`,

	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(evalorderCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show phase timings on stderr")
	rootCmd.PersistentFlags().String("config", "", "path to shady.toml (default: search upward from the working directory)")
	rootCmd.PersistentFlags().String("trace", "", "trace output file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "", "trace storage (stream|ring|both)")
	rootCmd.PersistentFlags().String("cpuprofile", "", "write a CPU profile to file")
	rootCmd.PersistentFlags().String("memprofile", "", "write a heap profile to file on exit")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a Go execution trace to file")
}

// main executes the root command, then stops tracing and profiling. A
// failing command exits with status 1.
func main() {
	err := rootCmd.Execute()
	teardown(rootCmd)
	if err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
