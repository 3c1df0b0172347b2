// Command apexfmt formats Apex source files to a canonical layout.
// Grounded on the teacher's cmd/makefmt/main.go: flag-based CLI, the
// same version/commit/date ldflags pattern, flag.Usage override.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/gregvale/apexfmt/internal/runner"
)

// Set via -ldflags at release build time; "dev"/"none"/"unknown" are the
// defaults for a plain `go build`.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("apexfmt", flag.ContinueOnError)
	fs.Usage = func() { printUsage(fs) }

	var (
		check      = fs.Bool("check", false, "check whether files are formatted; exit 1 if not")
		write      = fs.Bool("write", false, "overwrite files with their formatted output")
		diffMode   = fs.Bool("diff", false, "print a unified diff instead of writing")
		configPath = fs.String("config", "", "path to apexfmt.toml (default: discovered from the working directory)")
		verbose    = fs.Bool("verbose", false, "log each file processed")
		quiet      = fs.Bool("quiet", false, "suppress the per-file --check diagnostic")
		jobs       = fs.Int("j", 0, "max files formatted concurrently (default: number of CPUs)")
		timing     = fs.Bool("timing", false, "print a wall-clock summary after a batch run")
		showVer    = fs.Bool("version", false, "print version information and exit")
	)
	fs.BoolVar(verbose, "v", false, "shorthand for -verbose")
	fs.BoolVar(quiet, "q", false, "shorthand for -quiet")

	if err := fs.Parse(args); err != nil {
		return runner.ExitUsageError
	}

	if *showVer {
		fmt.Printf("apexfmt %s (commit %s, built %s)\n", version, commit, date)
		return runner.ExitOK
	}

	mode := runner.ModeStdout
	switch {
	case *check && *write:
		fmt.Fprintln(os.Stderr, "apexfmt: -check and -write are mutually exclusive")
		return runner.ExitUsageError
	case *check:
		mode = runner.ModeCheck
	case *write:
		mode = runner.ModeWrite
	case *diffMode:
		mode = runner.ModeDiff
	}

	paths := fs.Args()
	if mode != runner.ModeStdout && len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "apexfmt: -check, -write and -diff require at least one file")
		return runner.ExitUsageError
	}

	return runner.Run(context.Background(), runner.Options{
		Paths:      paths,
		Mode:       mode,
		ConfigPath: *configPath,
		Jobs:       *jobs,
		Verbose:    *verbose,
		Quiet:      *quiet,
		Timing:     *timing,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		Stdin:      os.Stdin,
	})
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintln(os.Stderr, "usage: apexfmt [flags] [path ...]")
	fmt.Fprintln(os.Stderr, "\nWith no mode flag, formats the given paths (or stdin, if none) to stdout.")
	fmt.Fprintln(os.Stderr, "\nflags:")
	fs.PrintDefaults()
}
