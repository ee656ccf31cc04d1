package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/tessalab/own-runtime/heap"
	"github.com/tessalab/own-runtime/scenario"
	"github.com/tessalab/own-runtime/store"
)

func main() {
	var (
		scenarioFile = flag.String("scenario", "", "Path to scenario TOML file")
		showTrace    = flag.Bool("trace", false, "Print the full lifecycle event log")
		interactive  = flag.Bool("i", false, "Interactive mode with TUI")
		verbose      = flag.Bool("v", false, "Enable debug logging")
	)
	flag.Parse()

	if *scenarioFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: ownrun -scenario <file.toml> [-trace]")
		fmt.Fprintln(os.Stderr, "       ownrun -scenario <file.toml> -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		store.SetLogger(logger)
		store.SetDebug(true)
		heap.SetLogger(logger)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*scenarioFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*scenarioFile, *showTrace); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(scenarioFile string, showTrace bool) error {
	scn, err := scenario.Load(scenarioFile)
	if err != nil {
		return fmt.Errorf("load scenario: %w", err)
	}

	fmt.Printf("Scenario: %s\n", scn.Name)
	fmt.Printf("Operations: %d\n\n", len(scn.Ops))

	r := scenario.NewRunner(scn)
	failed := 0
	for _, res := range r.Run() {
		status := "ok"
		detail := res.Note
		if res.Err != nil {
			status = "ERR"
			detail = res.Err.Error()
			failed++
		}
		fmt.Printf("%3d %-10s %-4s %s\n", res.Index, res.Op.Kind, status, detail)
	}

	stats := r.Store().Arena().Stats()
	closeErr := r.Close()

	fmt.Printf("\nAllocated: %d  Released at script end: %d  Failed steps: %d\n",
		stats.Allocated, stats.Released, failed)

	if showTrace {
		fmt.Printf("\nEvent log:\n%s", r.Recorder().Format())
	}

	if closeErr != nil {
		return fmt.Errorf("lifetime check: %w", closeErr)
	}
	fmt.Println("Lifetime check: every resource released exactly once")
	return nil
}
