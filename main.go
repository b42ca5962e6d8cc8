package main

import (
	"context"
	stderrors "errors" // Standard errors package
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-isatty"
	"github.com/mcncl/jsoncompare/internal/comparator"
	"github.com/mcncl/jsoncompare/internal/config"
	"github.com/mcncl/jsoncompare/internal/errors"
	"github.com/mcncl/jsoncompare/internal/formatter"
	"github.com/mcncl/jsoncompare/internal/logging"
	"github.com/mcncl/jsoncompare/internal/models"
	"github.com/mcncl/jsoncompare/internal/parser"
	"github.com/mcncl/jsoncompare/internal/server"
)

// Version information
const (
	Version = "0.1.0"
)

// Exit codes
const (
	ExitOK        = 0 // comparison executed
	ExitDifferent = 1 // values differ and --fail-on-diff is set
	ExitFailure   = 2 // no comparison could be executed
)

// errDifferencesFound signals ExitDifferent; it is never printed
var errDifferencesFound = stderrors.New("differences found")

// CLI defines the command-line interface
type CLI struct {
	Config  string `help:"Path to a config file. Defaults to .jsoncompare.yml found in the working directory or a parent." short:"c" type:"path"`
	Debug   bool   `help:"Enable debug logging." short:"d"`
	Version bool   `help:"Show version information." short:"v"`

	Compare CompareCmd `cmd:"" default:"withargs" help:"Compare two JSON values (default command)."`
	Serve   ServeCmd   `cmd:"" help:"Run the HTTP comparison service."`
}

// CompareCmd compares two JSON values and prints the report
type CompareCmd struct {
	Expected   string `help:"Expected JSON: inline text, a file path starting with /, ./, ../ or @, or - for stdin." short:"e"`
	Actual     string `help:"Actual JSON: inline text, a file path starting with /, ./, ../ or @, or - for stdin." short:"a"`
	Format     string `help:"Output format: text or json." short:"f" placeholder:"FORMAT"`
	NoColor    bool   `help:"Disable colored output."`
	Stats      bool   `help:"Append difference statistics to text output." short:"s"`
	FailOnDiff bool   `help:"Exit with status 1 when the values differ."`
	MaxDepth   int    `help:"Maximum nesting depth of either value." placeholder:"N"`
}

// ServeCmd runs the HTTP service
type ServeCmd struct {
	Addr string `help:"Address to listen on, e.g. :8080." placeholder:"ADDR"`
}

// Context holds the runtime context
type Context struct {
	Base       context.Context
	ConfigPath string
	Debug      bool
	IsTerminal bool
	Stdin      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer

	logger *slog.Logger
}

func main() {
	fd := os.Stdout.Fd()
	isTerminal := (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) && os.Getenv("NO_COLOR") == ""

	os.Exit(run(os.Args[1:], &Context{
		Base:       context.Background(),
		IsTerminal: isTerminal,
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	}))
}

// run parses args, executes the selected command and returns the exit code
func run(args []string, ctx *Context) int {
	var cli CLI
	exitCode := -1

	// Parse CLI arguments with Kong
	k, err := kong.New(&cli,
		kong.Name("jsoncompare"),
		kong.Description("Compare two JSON values and report every structural difference"),
		kong.UsageOnError(),
		kong.Writers(ctx.Stdout, ctx.Stderr),
		kong.Exit(func(code int) { exitCode = code }),
	)
	if err != nil {
		fmt.Fprintf(ctx.Stderr, "%v\n", err)
		return ExitFailure
	}

	kctx, err := k.Parse(args)
	if exitCode >= 0 {
		// --help already printed its output
		return exitCode
	}
	if err != nil {
		fmt.Fprintf(ctx.Stderr, "jsoncompare: %v\n", err)
		return ExitFailure
	}

	// Show version and exit if requested
	if cli.Version {
		fmt.Fprintf(ctx.Stdout, "jsoncompare version %s\n", Version)
		return ExitOK
	}

	ctx.ConfigPath = cli.Config
	ctx.Debug = cli.Debug

	err = kctx.Run(ctx)
	switch {
	case err == nil:
		return ExitOK
	case stderrors.Is(err, errDifferencesFound):
		return ExitDifferent
	default:
		// Use our custom error handling to provide user-friendly error messages
		fmt.Fprintf(ctx.Stderr, "%s\n", errors.UserFriendlyError(err))
		if ctx.Debug {
			fmt.Fprintf(ctx.Stderr, "Details: %v\n", err)
		}
		fmt.Fprintf(ctx.Stderr, "\nFor help, run: jsoncompare --help\n")
		return ExitFailure
	}
}

// load resolves the configuration (CLI > config file > defaults) and builds
// the logger
func (ctx *Context) load(overrides config.Overrides) (*config.Config, error) {
	path := ctx.ConfigPath
	if path == "" {
		path = config.FindConfigFile()
	}
	if ctx.Debug {
		level := "debug"
		overrides.LogLevel = &level
	}

	cfg, err := config.LoadConfigWithCLI(path, overrides)
	if err != nil {
		return nil, err
	}

	ctx.logger = logging.New(cfg.Log, ctx.Stderr)
	if path != "" {
		ctx.logger.Debug("loaded config file", "path", path)
	}
	return cfg, nil
}

func (c *CompareCmd) overrides() config.Overrides {
	var o config.Overrides
	if c.Format != "" {
		o.Format = &c.Format
	}
	if c.NoColor {
		never := config.ColorNever
		o.Color = &never
	}
	if c.Stats {
		o.ShowStats = &c.Stats
	}
	if c.FailOnDiff {
		o.FailOnDifference = &c.FailOnDiff
	}
	if c.MaxDepth > 0 {
		o.MaxDepth = &c.MaxDepth
	}
	return o
}

// Run executes the comparison
func (c *CompareCmd) Run(ctx *Context) error {
	cfg, err := ctx.load(c.overrides())
	if err != nil {
		return err
	}
	logger := ctx.logger

	if c.Expected == "" || c.Actual == "" {
		return errors.NewInputError("both --expected and --actual are required", errors.ErrNoInput)
	}
	if c.Expected == "-" && c.Actual == "-" {
		return errors.NewInputError("only one of --expected and --actual can read from stdin", errors.ErrStdinConflict)
	}

	// 1. Parse both inputs
	expected, err := parser.ParseInput(c.Expected, ctx.Stdin, parser.WithMaxDepth(cfg.MaxDepth))
	if err != nil {
		return errors.Annotate(err, "expected")
	}
	actual, err := parser.ParseInput(c.Actual, ctx.Stdin, parser.WithMaxDepth(cfg.MaxDepth))
	if err != nil {
		return errors.Annotate(err, "actual")
	}
	logger.Debug("parsed inputs", "expected_nodes", expected.Count(), "actual_nodes", actual.Count())

	// 2. Compare
	stats := &models.Stats{}
	report, err := comparator.Compare(expected, actual,
		comparator.OptionMaxDepth(cfg.MaxDepth),
		comparator.OptionSetStats(stats),
	)
	if err != nil {
		return err
	}
	logger.Debug("compared values", "equal", report.IsEqual, "differences", stats.Total())

	// 3. Render the report
	f := formatter.NewFormatter(formatter.Options{
		Color:     cfg.Output.UseColor(ctx.IsTerminal),
		ShowStats: cfg.Output.ShowStats,
	})
	if err := f.Format(ctx.Stdout, cfg.Output.Format, report, stats); err != nil {
		return err
	}

	if !report.IsEqual && cfg.Exit.FailOnDifference {
		return errDifferencesFound
	}
	return nil
}

// Run starts the HTTP service and blocks until SIGINT or SIGTERM
func (s *ServeCmd) Run(ctx *Context) error {
	var o config.Overrides
	if s.Addr != "" {
		o.Addr = &s.Addr
	}
	cfg, err := ctx.load(o)
	if err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(ctx.Base, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(cfg, ctx.logger).ListenAndServe(sigCtx)
}
