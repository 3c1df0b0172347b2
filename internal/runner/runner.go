// Package runner drives the per-file pipeline of spec.md §4: read,
// parse, build the semantic tree, attach comments, emit a document,
// print it, then write/check/diff the result. It fans files out across
// a bounded goroutine pool (spec.md §5), aggregates exit codes, and is
// the one place in the repository that logs — the core pipeline itself
// stays logging-free, returning errors instead. Grounded on the
// teacher's runner.Run/runFile/runStdin structure
// (internal/runner/runner.go), generalized to bounded concurrency; the
// worker pool itself completes the design original_source/src/config.rs
// left commented-out (see SPEC_FULL.md §13).
package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/term"

	"github.com/gregvale/apexfmt/internal/apexerr"
	"github.com/gregvale/apexfmt/internal/builder"
	"github.com/gregvale/apexfmt/internal/comment"
	"github.com/gregvale/apexfmt/internal/config"
	"github.com/gregvale/apexfmt/internal/cst"
	"github.com/gregvale/apexfmt/internal/doc"
	"github.com/gregvale/apexfmt/internal/emitter"
	"github.com/gregvale/apexfmt/internal/printer"
	"github.com/gregvale/apexfmt/pkg/diff"
)

// Mode selects what a run does with each file's formatted output.
type Mode int

const (
	ModeStdout Mode = iota // positional/stdin: print formatted output.
	ModeCheck               // --check: report whether it would change; write nothing.
	ModeWrite               // --write: overwrite the file.
	ModeDiff                // --diff: print a unified diff; write nothing.
)

// Options configures a single invocation of Run.
type Options struct {
	Paths      []string
	Mode       Mode
	ConfigPath string
	Jobs       int // 0 means runtime.NumCPU().
	Verbose    bool
	Quiet      bool
	Timing     bool
	Stdout     io.Writer
	Stderr     io.Writer
	Stdin      io.Reader
}

// Exit codes per spec.md §6.
const (
	ExitOK          = 0
	ExitDifferences = 1
	ExitUsageError  = 2
)

// fileResult is one file's outcome, collected back on the main
// goroutine so Run can aggregate deterministically regardless of
// completion order.
type fileResult struct {
	path      string
	changed   bool
	err       error
	elapsed   time.Duration
}

// Run executes opts and returns the process exit code.
func Run(ctx context.Context, opts Options) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}

	log := newLogger(opts)

	cfgPath := opts.ConfigPath
	if cfgPath == "" {
		cfgPath = config.Discover(".")
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(opts.Stderr, err)
		return ExitUsageError
	}

	if len(opts.Paths) == 0 {
		if stdinIsTerminal(opts.Stdin) {
			fmt.Fprintln(opts.Stderr, "apexfmt: no paths given and stdin is a terminal; pass a path or pipe source in")
			return ExitUsageError
		}
		return runStdin(ctx, opts, cfg)
	}

	start := time.Now()
	results := runFiles(ctx, opts, cfg, log)

	sort.Slice(results, func(i, j int) bool { return results[i].path < results[j].path })

	changed := false
	failed := false
	for _, r := range results {
		if r.err != nil {
			failed = true
			fmt.Fprintf(opts.Stderr, "%s: %v\n", r.path, r.err)
			continue
		}
		if r.changed {
			changed = true
			if opts.Mode == ModeCheck && !opts.Quiet {
				fmt.Fprintf(opts.Stderr, "%s would be reformatted\n", r.path)
			}
		}
	}

	if opts.Timing {
		fmt.Fprintf(opts.Stderr, "apexfmt: formatted %d file(s) in %s\n", len(results), time.Since(start).Round(time.Millisecond))
	}

	switch {
	case failed:
		return ExitDifferences
	case (opts.Mode == ModeCheck || opts.Mode == ModeDiff) && changed:
		return ExitDifferences
	default:
		return ExitOK
	}
}

func newLogger(opts Options) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	w := opts.Stderr
	if w == nil {
		w = os.Stderr
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

func runFiles(ctx context.Context, opts Options, cfg config.Config, log *slog.Logger) []fileResult {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	sem := make(chan struct{}, jobs)
	var wg sync.WaitGroup
	results := make([]fileResult, len(opts.Paths))

	for i, path := range opts.Paths {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = runOneFile(ctx, opts, cfg, log, path)
		}(i, path)
	}
	wg.Wait()

	return results
}

// runOneFile is the per-file pipeline. A panic in any stage is recovered
// and reported as that file's error, so one bad file cannot take down
// the whole batch (spec.md §5's per-worker isolation requirement).
func runOneFile(ctx context.Context, opts Options, cfg config.Config, log *slog.Logger, path string) (result fileResult) {
	result.path = path
	start := time.Now()
	defer func() {
		result.elapsed = time.Since(start)
		if r := recover(); r != nil {
			result.err = fmt.Errorf("panic formatting %s: %v", path, r)
		}
		if opts.Verbose {
			log.Debug("formatted file", "path", path, "changed", result.changed, "elapsed", result.elapsed, "err", result.err)
		}
	}()

	src, err := os.ReadFile(path)
	if err != nil {
		result.err = &apexerr.IoError{Path: path, Cause: err}
		return result
	}

	out, err := Format(ctx, src, cfg)
	if err != nil {
		result.err = fmt.Errorf("%s: %w", path, err)
		return result
	}

	result.changed = out != string(src)

	switch opts.Mode {
	case ModeWrite:
		if result.changed {
			if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
				result.err = &apexerr.IoError{Path: path, Cause: err}
			}
		}
	case ModeDiff:
		if result.changed {
			fmt.Fprint(opts.Stdout, diff.Unified(path, string(src), out))
		}
	case ModeCheck:
		// handled by the caller's per-file diagnostic loop.
	case ModeStdout:
		fmt.Fprint(opts.Stdout, out)
	}

	return result
}

// stdinIsTerminal reports whether r is an interactive terminal, so Run can
// refuse to block on io.ReadAll when a user runs apexfmt bare with no
// paths, per spec.md §6. Only *os.File can be a terminal; any other
// io.Reader (a pipe, a bytes.Reader in tests) is treated as non-terminal.
func stdinIsTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func runStdin(ctx context.Context, opts Options, cfg config.Config) int {
	src, err := io.ReadAll(opts.Stdin)
	if err != nil {
		fmt.Fprintln(opts.Stderr, &apexerr.IoError{Path: "<stdin>", Cause: err})
		return ExitUsageError
	}

	out, err := Format(ctx, src, cfg)
	if err != nil {
		fmt.Fprintln(opts.Stderr, err)
		return ExitUsageError
	}

	fmt.Fprint(opts.Stdout, out)
	return ExitOK
}

// Format runs the full CST → ST → Document → text pipeline over src and
// returns the formatted text. This is the pure, logging-free core
// spec.md §5 describes; Run wraps it with I/O, concurrency, and
// diagnostics.
func Format(ctx context.Context, src []byte, cfg config.Config) (string, error) {
	if !utf8.Valid(src) {
		return "", &apexerr.EncodingError{}
	}
	src = normalizeLineEndings(src)

	tree, err := cst.Parse(ctx, src)
	if err != nil {
		return "", err
	}
	if errNode := cst.FindError(tree.Root); errNode != nil {
		return "", &apexerr.ParseError{
			Kind:    errNode.Kind(),
			Range:   apexerr.Range{StartByte: errNode.StartByte(), EndByte: errNode.EndByte(), StartRow: errNode.StartRow(), EndRow: errNode.EndRow()},
			Snippet: errNode.Text(),
		}
	}

	root, err := builder.Build(tree.Root)
	if err != nil {
		return "", err
	}

	raw := comment.Collect(tree.Root)
	cmap := make(comment.Map)
	comment.Attach(raw, cmap)

	b := doc.NewBuilder()
	e := emitter.New(b, cmap)
	d := e.Emit(root)

	out := printer.Print(b, d, cfg.MaxWidth)
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out, nil
}

// normalizeLineEndings rewrites CRLF and bare CR line endings to LF before
// parsing, so every byte span the CST hands back — including multi-line
// block comments and SOQL query bodies copied verbatim into the output —
// is already CR-free. spec.md §6 requires output to always use LF.
func normalizeLineEndings(src []byte) []byte {
	if !bytes.ContainsRune(src, '\r') {
		return src
	}
	src = bytes.ReplaceAll(src, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(src, []byte("\r"), []byte("\n"))
}

