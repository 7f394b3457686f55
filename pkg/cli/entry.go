package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/funvibe/rangetyck/internal/config"
	"github.com/funvibe/rangetyck/internal/diagnostics"
	"github.com/funvibe/rangetyck/internal/pipeline"
)

const usage = `Usage: rangetyck [flags] FILE.yaml
       rangetyck help

Solves the typing constraints in a problem file and prints the resolved
placeholders, coercions and diagnostics.

Flags:
  --debug         trace the solver and enable internal assertions
  --dump          print the full solution structure
  --no-color      never colour diagnostics
  --counts PATH   placeholder counter database (default from rangetyck.yaml)
  --no-counts     do not read or write placeholder counters
  --version       print the version
`

type options struct {
	file       string
	debug      bool
	dump       bool
	noColor    bool
	noCounts   bool
	countsPath string
	help       bool
	version    bool
}

func parseArgs(args []string) (options, error) {
	var opts options
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "help", "-help", "--help", "-h":
			opts.help = true
		case "-v", "-version", "--version":
			opts.version = true
		case "-debug", "--debug":
			opts.debug = true
		case "-dump", "--dump":
			opts.dump = true
		case "-no-color", "--no-color":
			opts.noColor = true
		case "-no-counts", "--no-counts":
			opts.noCounts = true
		case "-counts", "--counts":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("%s needs a path", arg)
			}
			i++
			opts.countsPath = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return opts, fmt.Errorf("unknown flag %s", arg)
			}
			if opts.file != "" {
				return opts, fmt.Errorf("only one problem file may be given (got %s and %s)", opts.file, arg)
			}
			opts.file = arg
		}
	}
	if opts.noCounts && opts.countsPath != "" {
		return opts, fmt.Errorf("--counts and --no-counts are exclusive")
	}
	return opts, nil
}

// Run is the process entry point.
func Run() {
	// Catch panics and show user-friendly error
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r) // Re-panic to get stack trace
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(2)
		}
	}()

	if os.Getenv("RANGETYCK_TEST_MODE") == "1" {
		config.IsTestMode = true
	}

	os.Exit(Execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// Execute runs one command and returns the exit status: 0 when the problem
// solved cleanly, 1 when anything was reported, 2 on usage errors.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	log.SetFlags(0)
	log.SetOutput(stderr)

	opts, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "rangetyck: %v\n\n%s", err, usage)
		return 2
	}
	if opts.help {
		fmt.Fprint(stdout, usage)
		return 0
	}
	if opts.version {
		fmt.Fprintln(stdout, "rangetyck "+config.Version)
		return 0
	}
	if opts.file == "" {
		fmt.Fprint(stderr, usage)
		return 2
	}

	if opts.debug {
		config.IsDebugMode = true
		defer func() { config.IsDebugMode = false }()
	}

	pctx := pipeline.NewContext(ctx, opts.file)
	pctx.CountsPath = opts.countsPath
	pctx.NoCounts = opts.noCounts
	pctx.Logf = log.Printf
	pctx = pipeline.Default().Run(pctx)

	colorMode := config.ColorAuto
	if pctx.Settings != nil {
		colorMode = pctx.Settings.Color
	}
	if opts.noColor || config.IsTestMode {
		colorMode = config.ColorNever
	}
	stdoutFile, _ := stdout.(*os.File)
	stderrFile, _ := stderr.(*os.File)

	if pctx.HasErrors() {
		emitter := diagnostics.NewEmitter(stderr, diagnostics.ShouldColor(colorMode, stderrFile))
		for _, err := range pctx.Errors {
			if d, ok := err.(*diagnostics.DiagnosticError); ok {
				emitter.Emit(d)
			} else {
				fmt.Fprintf(stderr, "rangetyck: %v\n", err)
			}
		}
		if pctx.Solution == nil {
			return 1
		}
	}

	r := &reporter{
		w:       stdout,
		emitter: diagnostics.NewEmitter(stdout, diagnostics.ShouldColor(colorMode, stdoutFile)),
		ctx:     pctx,
	}
	r.report()
	if opts.dump {
		r.dump()
	}

	if pctx.HasErrors() || pctx.Solution.HasErrors() {
		return 1
	}
	return 0
}
