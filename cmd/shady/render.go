package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"shady/internal/driver"
	"shady/internal/snapshot"
)

var renderCmd = &cobra.Command{
	Use:   "render <file.mp>",
	Short: "Render a saved snapshot as GLSL",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

func runRender(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	p, err := snapshot.Decode(f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	opts, err := driverOptions(false)
	if err != nil {
		return err
	}
	name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	res, err := driver.Compile(cmd.Context(), driver.Unit{Name: name, Program: p}, opts)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), res.Source)
	if current.timings {
		return driver.WriteTimings(cmd.ErrOrStderr(), []*driver.Result{res}, false)
	}
	return nil
}
