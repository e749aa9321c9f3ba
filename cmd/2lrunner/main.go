// 2lrunner: command line runner for 2L programs.
//
// Programs are read from the command line, a file or the program catalog,
// executed to completion and summarized. Results are memoized in a run
// cache so that repeated runs of the same program are answered from disk.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/erwinbonsma/2lrunner/internal/types"
	"github.com/erwinbonsma/2lrunner/pkg/render"
	"github.com/erwinbonsma/2lrunner/pkg/runcache"
	"github.com/erwinbonsma/2lrunner/pkg/runner"
	"github.com/erwinbonsma/2lrunner/pkg/vm"
)

// Version information
var (
	Version   = "0.1.0"
	GitCommit = "dev"
)

// defaultProgram is loaded when no program is given.
const defaultProgram = "*_*__o___*o____o*_ooo__*_"

// Configuration flags
var (
	programText = flag.String("program", "", "Program as web string, base-27 string or share token (see -encoding)")
	encoding    = flag.String("encoding", "", "Encoding of -program: web, base27, grid, share (default: detect)")
	programFile = flag.String("file", "", "Read the program from a grid or web file, - for stdin")
	programName = flag.String("name", "", "Load the program stored under this name in the catalog")
	saveName    = flag.String("save", "", "Store the program in the catalog under this name")
	description = flag.String("description", "", "Description stored with -save")
	listNames   = flag.Bool("list", false, "List catalog programs and exit")
	deleteName  = flag.String("delete", "", "Delete a catalog program and exit")
	exportPath  = flag.String("export", "", "Write the catalog as YAML to this file, - for stdout, and exit")
	importPath  = flag.String("import", "", "Read programs from a YAML export, - for stdin, and exit")
	overwrite   = flag.Bool("overwrite", false, "Let -import replace programs with the same name")

	capacity = flag.Int("capacity", vm.DefaultTapeCapacity, "Tape capacity in cells")
	maxSteps = flag.Uint64("max-steps", 0, "Stop after this many steps (0 = no limit)")
	batch    = flag.Uint64("batch", runner.DefaultOptions().BatchSize, "Steps between cancellation checks")

	renderFinal = flag.Bool("render", false, "Draw the program grid after the run")
	colorMode   = flag.String("color", "auto", "Colour output: auto, always, never")
	palette     = flag.String("palette", "", "Comma separated heat-map colours, coolest first")
	play        = flag.Bool("play", false, "Animate the run in the terminal")
	speed       = flag.Int("speed", int(runner.DefaultSpeed), "Play speed, 0 to 20")
	tick        = flag.Duration("tick", runner.DefaultTick, "Play refresh interval")

	dataDir     = flag.String("data-dir", defaultDataDir(), "Data directory for the catalog and run cache")
	catalogPath = flag.String("catalog", "", "Catalog database file (default: <data-dir>/programs.db)")
	cachePath   = flag.String("cache", "", "Run cache directory (default: <data-dir>/runcache)")
	noCache     = flag.Bool("no-cache", false, "Do not read or write the run cache")
	cacheGC     = flag.Bool("cache-gc", false, "Garbage collect the run cache and exit")

	configPath  = flag.String("config", "", "TOML file with flag defaults (default: <data-dir>/config.toml)")
	share       = flag.Bool("share", false, "Print the program encodings and fingerprint")
	logLevel    = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".2lrunner"
	}
	return filepath.Join(home, ".2lrunner")
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("2lrunner %s (%s)\n", Version, GitCommit)
		os.Exit(0)
	}

	// Setup logging
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	cfgPath, required := *configPath, true
	if cfgPath == "" {
		cfgPath, required = defaultConfigPath(*dataDir), false
	}
	if err := applyConfigFile(flag.CommandLine, cfgPath, required); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := setLogLevel(*logLevel); err != nil {
		log.Fatalf("Invalid -log-level: %v", err)
	}
	debugf("Starting 2lrunner %s", Version)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		warnf("Received signal %v, stopping run...", sig)
		cancel()
	}()

	os.Exit(run(ctx))
}

// run executes the command and returns the process exit code.
func run(ctx context.Context) int {
	if *listNames || *deleteName != "" || *exportPath != "" || *importPath != "" {
		if err := catalogCommand(); err != nil {
			errorf("[CATALOG] %v", err)
			return 1
		}
		return 0
	}

	if *cacheGC {
		if err := compactCache(); err != nil {
			errorf("[RUNCACHE] %v", err)
			return 1
		}
		return 0
	}

	program, err := loadProgram()
	if err != nil {
		errorf("Failed to load program: %v", err)
		return 1
	}
	debugf("Loaded %dx%d program", program.Width(), program.Height())

	if *saveName != "" {
		if err := saveProgram(program); err != nil {
			errorf("[CATALOG] %v", err)
			return 1
		}
	}

	if *share {
		printShare(os.Stdout, program)
	}

	if *palette != "" {
		colors := strings.Split(*palette, ",")
		if err := render.CheckPalette(colors); err != nil {
			errorf("Invalid -palette: %v", err)
			return 1
		}
	}

	if *play {
		return playProgram(ctx, program)
	}
	return runProgram(ctx, program)
}

func newComputer(program *vm.Program) *vm.Computer {
	c := vm.NewComputer(*capacity, program)
	if *palette != "" {
		c.PathTracker().SetPalette(strings.Split(*palette, ","))
	}
	return c
}

func newRenderer() *render.Renderer {
	opts := render.DefaultOptions()
	opts.Profile = colorProfile(*colorMode)
	return render.New(opts)
}

// runProgram runs to completion, through the run cache when possible.
func runProgram(ctx context.Context, program *vm.Program) int {
	opts := runner.Options{
		BatchSize: *batch,
		MaxSteps:  *maxSteps,
	}

	var (
		result *runner.Result
		err    error
	)

	// Rendering needs the live computer, which a cache hit does not provide.
	useCache := !*noCache && !*renderFinal
	if useCache {
		cache, openErr := openCache()
		if openErr != nil {
			warnf("[RUNCACHE] Cache unavailable: %v", openErr)
			useCache = false
		} else {
			defer cache.Close()
			var hit bool
			result, hit, err = cache.GetOrRun(ctx, program, *capacity, opts)
			debugf("[RUNCACHE] hit=%v", hit)
		}
	}

	var c *vm.Computer
	if !useCache {
		c = newComputer(program)
		result, err = runner.Run(ctx, c, opts)
	}

	if c != nil && *renderFinal {
		fmt.Print(newRenderer().Frame(c))
	}
	printSummary(os.Stdout, result)

	return exitCode(result, err)
}

// playProgram animates the run.
func playProgram(ctx context.Context, program *vm.Program) int {
	c := newComputer(program)
	r := newRenderer()
	interactive := isTerminal(os.Stdout)

	err := runner.Play(ctx, c, runner.Speed(*speed).Clamp(), *tick, *maxSteps, func(*runner.Result) {
		if interactive {
			fmt.Print(clearScreen)
		}
		fmt.Print(r.Frame(c))
	})

	result := runner.Snapshot(c)
	printSummary(os.Stdout, result)
	return exitCode(result, err)
}

func exitCode(result *runner.Result, err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		warnf("Run cancelled")
		return 130
	case errors.Is(err, runner.ErrStepBudgetExceeded):
		warnf("Run stopped: %v", err)
		return 2
	case err != nil:
		errorf("Run failed: %v", err)
		return 1
	case result.Status == types.StatusError:
		return 1
	default:
		return 0
	}
}

func openCache() (*runcache.Cache, error) {
	path := *cachePath
	if path == "" {
		path = filepath.Join(*dataDir, "runcache")
	}
	cfg := runcache.DefaultConfig(path)
	cfg.Logger = runcache.NewLogger(log.Default(), minLevel == levelDebug)

	start := time.Now()
	cache, err := runcache.Open(cfg)
	if err != nil {
		return nil, err
	}
	debugf("[RUNCACHE] Opened %s in %v", path, time.Since(start))
	return cache, nil
}
