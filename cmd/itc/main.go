package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/sokinpui/itc/cli"
	"github.com/sokinpui/itc/internal/tui"
	"github.com/sokinpui/itc/internal/ui"
	"github.com/sokinpui/itc/itc"
)

func main() {
	cfg, err := cli.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	app, err := itc.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	// --print owns stdout, and log lines or a non-terminal stdout would garble the TUI.
	if cfg.Print || cfg.Verbose || cfg.NoAnimation || !isatty.IsTerminal(os.Stdout.Fd()) {
		runPlain(app, cfg)
		return
	}

	model := tui.New(app)
	p := tea.NewProgram(model)
	model.SetProgram(p)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
	if model.Err() != nil {
		os.Exit(1)
	}
}

func runPlain(app *itc.App, cfg *cli.Config) {
	var (
		bar     *ui.ProgressBar
		drawing bool
	)
	if !cfg.NoAnimation && !cfg.Verbose && isatty.IsTerminal(os.Stderr.Fd()) {
		app.SetProgressCallback(func(current, total int) {
			if current == 0 {
				bar = ui.NewProgressBar(total, "Reading")
				bar.Start()
				drawing = true
			} else {
				bar.Set(current)
			}
			// Finish before the notifier prints its line.
			if current == total {
				bar.Finish()
				drawing = false
			}
		})
	}

	summary, err := app.Execute()
	if drawing {
		bar.Finish()
	}
	if err != nil {
		if e, ok := err.(*itc.DetailedError); ok {
			fmt.Fprintf(os.Stderr, "\n--- Stack Trace ---\n%s\n", e.Stack)
		}
		ui.Error("Error: %v", err)
		os.Exit(1)
	}

	if !cfg.Print {
		ui.PrintCopySummary(summary)
	}
}
