package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/erwinbonsma/2lrunner/pkg/catalog"
	"github.com/erwinbonsma/2lrunner/pkg/loader"
	"github.com/erwinbonsma/2lrunner/pkg/runner"
	"github.com/erwinbonsma/2lrunner/pkg/vm"
)

// clearScreen homes the cursor and clears the terminal.
const clearScreen = "\x1b[H\x1b[2J"

// openCatalog opens the program catalog. Writes are not synced one by one;
// commands that modify the catalog call Sync once they are done.
func openCatalog(readOnly bool) (*catalog.Store, error) {
	path := *catalogPath
	if path == "" {
		path = filepath.Join(*dataDir, "programs.db")
	}
	cfg := catalog.DefaultConfig(path)
	cfg.ReadOnly = readOnly
	cfg.NoSync = true
	store, err := catalog.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	return store, nil
}

// catalogCommand handles -list, -delete, -export and -import.
func catalogCommand() error {
	store, err := openCatalog(false)
	if err != nil {
		return err
	}
	defer store.Close()

	switch {
	case *deleteName != "":
		if err := store.Delete(*deleteName); err != nil {
			return err
		}
		if err := store.Sync(); err != nil {
			return err
		}
		infof("[CATALOG] Deleted %q", *deleteName)
		return nil

	case *exportPath != "":
		return exportCatalog(store, *exportPath)

	case *importPath != "":
		return importCatalog(store, *importPath)
	}

	entries, err := store.List()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSIZE\tFINGERPRINT\tUPDATED\tDESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%dx%d\t%s\t%s\t%s\n",
			e.Name, e.Width, e.Height, e.Fingerprint.Short(), e.Updated.Format("2006-01-02 15:04"), e.Description)
	}
	return w.Flush()
}

// compactCache garbage collects the run cache value log.
func compactCache() error {
	cache, err := openCache()
	if err != nil {
		return err
	}
	defer cache.Close()

	n, err := cache.RunGC()
	if err != nil {
		return err
	}
	stats := cache.Stats()
	infof("[RUNCACHE] Rewrote %d value log files (lsm=%d vlog=%d bytes)", n, stats.LSMSize, stats.VLogSize)
	return nil
}

func exportCatalog(store *catalog.Store, path string) error {
	if path == "-" {
		return store.Export(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	if err := store.Export(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	infof("[CATALOG] Exported to %s", path)
	return nil
}

func importCatalog(store *catalog.Store, path string) error {
	r := io.Reader(os.Stdin)
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open import: %w", err)
		}
		defer f.Close()
		r = f
	}
	n, err := store.Import(r, *overwrite)
	if err != nil {
		return err
	}
	if err := store.Sync(); err != nil {
		return err
	}
	infof("[CATALOG] Imported %d programs", n)
	return nil
}

// loadProgram picks the program source: catalog name, file, flag text or
// the built-in default.
func loadProgram() (*vm.Program, error) {
	switch {
	case *programName != "":
		store, err := openCatalog(true)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.Load(*programName)

	case *programFile != "":
		var (
			data []byte
			err  error
		)
		if *programFile == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(*programFile)
		}
		if err != nil {
			return nil, fmt.Errorf("read program: %w", err)
		}
		return parseProgram(string(data))

	case *programText != "":
		return parseProgram(*programText)

	default:
		return loader.ParseWebString(defaultProgram)
	}
}

func parseProgram(s string) (*vm.Program, error) {
	if *encoding != "" {
		return loader.ParseAs(s, loader.Encoding(*encoding))
	}
	return loader.Parse(s)
}

func saveProgram(p *vm.Program) error {
	store, err := openCatalog(false)
	if err != nil {
		return err
	}
	defer store.Close()

	if prev, err := store.FindByFingerprint(loader.FingerprintOf(p)); err == nil && prev.Name != *saveName {
		warnf("[CATALOG] Program already stored as %q", prev.Name)
	}
	entry, err := store.Put(*saveName, p, *description)
	if err != nil {
		return err
	}
	if err := store.Sync(); err != nil {
		return err
	}
	infof("[CATALOG] Saved %q (%s)", entry.Name, entry.Fingerprint.Short())
	return nil
}

// printShare writes every encoding that can represent p.
func printShare(w io.Writer, p *vm.Program) {
	for _, enc := range []loader.Encoding{loader.EncodingWeb, loader.EncodingBase27, loader.EncodingShare} {
		if s, err := loader.Encode(p, enc); err == nil {
			fmt.Fprintf(w, "%-12s %s\n", enc+":", s)
		}
	}
	fmt.Fprintf(w, "%-12s %s\n", "fingerprint:", loader.FingerprintOf(p))
}

// printSummary reports a run the way the browser runner logs a finished run.
func printSummary(w io.Writer, r *runner.Result) {
	fmt.Fprintf(w, "status = %s, steps = %d, minValue = %d, maxValue = %d, dataSize = %d\n",
		r.Status, r.Steps, r.MinValue, r.MaxValue, len(r.Tape))
	if r.Fault != "" {
		fmt.Fprintf(w, "error = %s\n", r.Fault)
	}
	debugf("elapsed=%v changes=%d edges=%d", r.Elapsed, r.ChangeCount, r.VisitedEdges)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// colorProfile maps the -color flag to an output profile.
func colorProfile(mode string) termenv.Profile {
	switch mode {
	case "always":
		return termenv.TrueColor
	case "never":
		return termenv.Ascii
	default:
		if !isTerminal(os.Stdout) {
			return termenv.Ascii
		}
		return termenv.EnvColorProfile()
	}
}
