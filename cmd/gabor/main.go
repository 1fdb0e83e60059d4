package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/ironsheep/gabor-features/internal/config"
	"github.com/ironsheep/gabor-features/internal/features"
	"github.com/ironsheep/gabor-features/internal/gabor"
	"github.com/ironsheep/gabor-features/internal/imaging"
	"github.com/ironsheep/gabor-features/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Exit codes
const (
	exitOK     = 0
	exitFailed = 1
	exitParams = 2
	exitImage  = 3
	exitIO     = 4
)

func main() {
	// Configure logging to stderr (stdout carries results and the MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// cliFlags holds the values of every command line flag.
type cliFlags struct {
	orientations int
	points       int
	kernelSize   int
	sigma        float64
	theta        float64
	lambda       float64
	gamma        float64
	window       int
	input        string
	output       string
	configPath   string
	border       string
	workers      int
	dumpDir      string
}

func newFlagSet(name string, f *cliFlags, stdout io.Writer) *flag.FlagSet {
	def := config.DefaultConfig()

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stdout)
	fs.IntVar(&f.orientations, "k", def.Gabor.Orientations, "number of kernel orientations")
	fs.IntVar(&f.points, "p", def.Sampling.PointsPerRow, "number of anchor points per row and column")
	fs.IntVar(&f.kernelSize, "n", def.Gabor.KernelSize, "kernel size in pixels (odd)")
	fs.Float64Var(&f.sigma, "s", def.Gabor.Sigma, "standard deviation of the gaussian envelope")
	fs.Float64Var(&f.theta, "t", def.Gabor.Theta, "orientation of the first kernel in radians")
	fs.Float64Var(&f.lambda, "l", def.Gabor.Lambda, "wavelength of the sinusoidal carrier")
	fs.Float64Var(&f.gamma, "g", def.Gabor.Gamma, "spatial aspect ratio of the envelope")
	fs.IntVar(&f.window, "w", def.Sampling.WindowSize, "descriptor window size in pixels")
	fs.StringVar(&f.input, "i", "", "input image path (required)")
	fs.StringVar(&f.output, "o", "", "output feature file path (required)")
	fs.StringVar(&f.configPath, "c", "", "YAML configuration file")
	fs.StringVar(&f.border, "border", def.Sampling.Border, "border extension: reflect101 or replicate")
	fs.IntVar(&f.workers, "j", def.Processing.Workers, "worker goroutines (0 = one per CPU)")
	fs.StringVar(&f.dumpDir, "dump", "", "directory for colour-mapped response images")
	fs.Usage = func() { usage(fs, stdout) }
	return fs
}

func usage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "gabor - Gabor filter bank feature extractor")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  gabor -i <image> -o <features> [options]")
	fmt.Fprintln(w, "  gabor serve [-c config.yaml]")
	fmt.Fprintln(w, "  gabor version")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintln(w, "  GABOR_LOG_LEVEL=debug    Enable debug logging")
}

// apply copies the explicitly set flags over cfg.
func (f *cliFlags) apply(fs *flag.FlagSet, cfg *config.Config) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "k":
			cfg.Gabor.Orientations = f.orientations
		case "p":
			cfg.Sampling.PointsPerRow = f.points
		case "n":
			cfg.Gabor.KernelSize = f.kernelSize
		case "s":
			cfg.Gabor.Sigma = f.sigma
		case "t":
			cfg.Gabor.Theta = f.theta
		case "l":
			cfg.Gabor.Lambda = f.lambda
		case "g":
			cfg.Gabor.Gamma = f.gamma
		case "w":
			cfg.Sampling.WindowSize = f.window
		case "border":
			cfg.Sampling.Border = f.border
		case "j":
			cfg.Processing.Workers = f.workers
		case "dump":
			cfg.Output.DumpDir = f.dumpDir
		}
	})
}

// loadConfig returns the defaults, or the file at path when one is given.
// A named file must exist.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	return config.ReadConfig(path)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	logger := log.New(stderr, "", log.Ldate|log.Ltime|log.Lshortfile)

	if len(args) > 0 {
		switch args[0] {
		case "--version", "version":
			fmt.Fprintf(stdout, "gabor-features %s\n", Version)
			fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
			return exitOK
		case "serve":
			return serve(args[1:], stdin, stdout, logger)
		}
	}

	var f cliFlags
	fs := newFlagSet("gabor", &f, stdout)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitParams
	}

	if f.input == "" || f.output == "" {
		fs.Usage()
		return exitOK
	}

	cfg, err := loadConfig(f.configPath)
	if err != nil {
		logger.Printf("Error: %v", err)
		return exitParams
	}
	f.apply(fs, cfg)

	opts, err := cfg.Options()
	if err != nil {
		logger.Printf("Error: %v", err)
		return exitCode(err)
	}
	if debugEnabled(cfg) {
		opts.Logger = logger
		logger.Printf("gabor-features v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	extractor, err := features.NewExtractor(opts)
	if err != nil {
		logger.Printf("Error: %v", err)
		return exitCode(err)
	}

	summary, err := extractor.ExtractFile(ctx, f.input, f.output)
	if err != nil {
		logger.Printf("Error: %v", err)
		return exitCode(err)
	}

	fmt.Fprintf(stdout, "%s Done!\n", f.input)
	fmt.Fprintf(stdout, "%d descriptors of dimension %d (%dx%d image), %d bytes written to %s\n",
		summary.Count, summary.Dimension, summary.Cols, summary.Rows, summary.Bytes, summary.Output)
	return exitOK
}

// serve runs the MCP server on stdin/stdout with defaults from an optional
// configuration file.
func serve(args []string, stdin io.Reader, stdout io.Writer, logger *log.Logger) int {
	var configPath string
	fs := flag.NewFlagSet("gabor serve", flag.ContinueOnError)
	fs.SetOutput(logger.Writer())
	fs.StringVar(&configPath, "c", "", "YAML configuration file")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitParams
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		logger.Printf("Error: %v", err)
		return exitParams
	}
	opts, err := cfg.Options()
	if err != nil {
		logger.Printf("Error: %v", err)
		return exitCode(err)
	}
	if debugEnabled(cfg) {
		logger.Printf("Gabor MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	srv := server.NewWithOptions(opts, Version)
	if err := srv.Serve(stdin, stdout); err != nil {
		logger.Printf("Server error: %v", err)
		return exitFailed
	}
	return exitOK
}

func debugEnabled(cfg *config.Config) bool {
	return os.Getenv("GABOR_LOG_LEVEL") == "debug" || cfg.Output.Verbose
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, gabor.ErrInvalidParams),
		errors.Is(err, features.ErrInvalidGrid),
		errors.Is(err, config.ErrConfig):
		return exitParams
	case errors.Is(err, imaging.ErrImageLoad),
		errors.Is(err, gabor.ErrEmptySource):
		return exitImage
	case errors.Is(err, features.ErrIO):
		return exitIO
	default:
		return exitFailed
	}
}
