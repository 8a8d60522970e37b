package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/tliron/commonlog"

	"lisa/internal/config"
	"lisa/internal/errors"
	"lisa/internal/ir"
	"lisa/internal/lift"
	"lisa/internal/semdb"
	"lisa/internal/sexp"
)

const version = "0.1.0"

func main() {
	var (
		output     = flag.String("o", "", "output file for the lifted IR (default: stdout)")
		format     = flag.String("format", "", "output format: json or sexp")
		dbPath     = flag.String("db", "", "path to the semantic database file")
		configPath = flag.String("config", "", "path to a TOML config file")
		check      = flag.Bool("check", false, "re-parse the rendered output before writing it")
		parallel   = flag.Bool("parallel", false, "lower independent functions concurrently")
		onError    = flag.String("on-error", "", "failure policy: continue or abort")
		verbose    = flag.Bool("v", false, "enable verbose logging")
	)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}
	input := flag.Arg(0)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fail("%s", err)
		}
		cfg = loaded
	}
	// Flags override the config file.
	if *format != "" {
		cfg.Format = *format
	}
	if *output != "" {
		cfg.Output = *output
	}
	if *dbPath != "" {
		cfg.SemanticDB = *dbPath
	}
	if *onError != "" {
		cfg.OnError = *onError
	}
	if *parallel {
		cfg.Parallel = true
	}
	if *verbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		fail("%s", err)
	}

	if cfg.Verbose {
		commonlog.Configure(1, nil)
		pterm.DefaultHeader.Println("lisa " + version)
	} else {
		commonlog.Configure(0, nil)
	}

	start := time.Now()

	db := semdb.Open(cfg.SemanticDB)
	lifter := lift.New(db, lift.Options{OnError: cfg.OnError, Parallel: cfg.Parallel})

	module, diags, err := lifter.LiftFile(input)
	if err != nil {
		fail("%s", err)
	}

	reporter := errors.NewReporter(input)
	if diags.Len() > 0 {
		fmt.Fprint(os.Stderr, reporter.FormatAll(diags))
	}

	rendered, err := render(module, cfg.Format)
	if err != nil {
		fail("failed to encode IR: %s", err)
	}

	if *check {
		if err := verify(rendered, cfg.Format); err != nil {
			fail("output verification failed: %s", err)
		}
	}

	if cfg.Output != "" {
		if err := os.WriteFile(cfg.Output, rendered, 0o644); err != nil {
			fail("failed to write output: %s", err)
		}
		fmt.Printf("IR output written to %s\n", cfg.Output)
	} else {
		os.Stdout.Write(rendered)
	}

	color.Green("Lifted %s (%d functions, %d diagnostics) in %s",
		input, module.Functions.Len(), diags.Len(), formatDuration(time.Since(start)))
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: lisa-cli [flags] <input.json>\n\n")
	fmt.Fprintf(os.Stderr, "Lifts a C syntax tree exchange file into CFG-based IR.\n\nFlags:\n")
	flag.PrintDefaults()
}

func fail(format string, args ...interface{}) {
	color.Red("Error: "+format, args...)
	os.Exit(1)
}

func render(module *ir.Module, format string) ([]byte, error) {
	switch format {
	case config.FormatSexp:
		return []byte(ir.PrintModule(module)), nil
	default:
		return ir.MarshalModule(module)
	}
}

// verify re-parses the rendered output so a broken encoding never
// lands in a file.
func verify(rendered []byte, format string) error {
	switch format {
	case config.FormatSexp:
		_, err := sexp.Parse("output", string(rendered))
		return err
	default:
		_, err := ir.UnmarshalModule(rendered)
		return err
	}
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return fmt.Sprintf("%.2fmin", d.Minutes())
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1000000.0)
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1000.0)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}
