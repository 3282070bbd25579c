package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"shady/internal/driver"
	"shady/internal/samples"
)

var demoCmd = &cobra.Command{
	Use:   "demo [sample...]",
	Short: "Build and render built-in sample programs",
	Long:  `Build and render the named samples, or every sample when none is named`,
	RunE:  runDemo,
}

func init() {
	demoCmd.Flags().StringP("out", "o", "", "write <sample>.glsl files into this directory instead of stdout")
	demoCmd.Flags().IntP("jobs", "j", 0, "samples rendered in parallel (0 = [build].jobs or GOMAXPROCS)")
	demoCmd.Flags().Bool("cache", false, "reuse renders from the on-disk cache")
	demoCmd.Flags().Bool("list", false, "list the samples and exit")
	demoCmd.Flags().String("ui", "auto", "progress view while rendering (auto|on|off)")
}

func runDemo(cmd *cobra.Command, args []string) error {
	list, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if list {
		return listSamples(cmd.OutOrStdout())
	}

	outDir, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("out") {
		outDir = current.cfg.Output.Dir
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("jobs") {
		jobs = current.cfg.Build.Jobs
	}
	useCache, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return err
	}

	opts, err := driverOptions(useCache)
	if err != nil {
		return err
	}
	units, err := driver.SampleUnits(args)
	if err != nil {
		return err
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}

	var results []*driver.Result
	if !current.quiet && shouldUseTUI(mode, outDir != "") {
		results, err = renderAllWithUI(cmd.Context(), "rendering samples", jobs, units, opts)
	} else {
		results, err = driver.RenderAll(cmd.Context(), jobs, units, opts)
	}
	if err != nil {
		return err
	}

	if outDir == "" {
		out := cmd.OutOrStdout()
		for i, res := range results {
			if i > 0 {
				fmt.Fprintln(out)
			}
			if len(results) > 1 {
				fmt.Fprintf(out, "// %s\n", res.Name)
			}
			fmt.Fprint(out, res.Source)
		}
	} else {
		if err := writeResults(outDir, results); err != nil {
			return err
		}
	}
	if !current.quiet {
		printStats(cmd.ErrOrStderr(), results, outDir)
	}
	if current.timings {
		return driver.WriteTimings(cmd.ErrOrStderr(), results, false)
	}
	return nil
}

func writeResults(dir string, results []*driver.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, res := range results {
		path := filepath.Join(dir, res.Name+".glsl")
		if err := os.WriteFile(path, []byte(res.Source), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}

func printStats(w io.Writer, results []*driver.Result, outDir string) {
	name := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.Faint)
	for _, res := range results {
		target := ""
		if outDir != "" {
			target = " -> " + filepath.Join(outDir, res.Name+".glsl")
		}
		origin := "rendered"
		if res.Cached {
			origin = "cached"
		}
		fmt.Fprintf(w, "%s %s%s\n", name.Sprint(res.Name),
			dim.Sprintf("(%s: %d temporaries, %d unused, %d const)", origin,
				res.Stats.Temporaries, res.Stats.Unused, res.Stats.Consts),
			target)
	}
}

func listSamples(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, s := range samples.All() {
		fmt.Fprintf(tw, "%s\t%s\n", s.Name, s.Description)
	}
	return tw.Flush()
}

// driverOptions converts the loaded configuration into pipeline options.
func driverOptions(useCache bool) (driver.Options, error) {
	glslOpts, err := current.cfg.GLSL()
	if err != nil {
		return driver.Options{}, err
	}
	sess, err := current.cfg.Session()
	if err != nil {
		return driver.Options{}, err
	}
	opts := driver.Options{Storage: sess.Storage, GLSL: glslOpts}
	if useCache {
		if opts.Cache, err = driver.OpenDiskCache("shady"); err != nil {
			return driver.Options{}, fmt.Errorf("failed to open cache: %w", err)
		}
	}
	return opts, nil
}
