package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shady/internal/samples"
	"shady/internal/snapshot"
	"shady/internal/trace"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <sample>",
	Short: "Save a sample program as a msgpack snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshot,
}

func init() {
	snapshotCmd.Flags().StringP("output", "o", "", "snapshot file (default <sample>.mp)")
}

func runSnapshot(cmd *cobra.Command, args []string) (err error) {
	s, ok := samples.Lookup(args[0])
	if !ok {
		return fmt.Errorf("unknown sample %q", args[0])
	}
	path, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	if path == "" {
		path = s.Name + ".mp"
	}
	sess, err := current.cfg.Session()
	if err != nil {
		return err
	}
	sess.Tracer = trace.FromContext(cmd.Context())

	p, err := s.Build(sess)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := snapshot.Encode(f, p); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if !current.quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "saved %s to %s\n", s.Name, path)
	}
	return nil
}
