package itc

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/sokinpui/itc/cli"
	"github.com/sokinpui/itc/internal/clipboard"
	"github.com/sokinpui/itc/internal/collector"
	"github.com/sokinpui/itc/internal/fs"
	"github.com/sokinpui/itc/internal/nvim"
	"github.com/sokinpui/itc/internal/source"
	"github.com/sokinpui/itc/internal/ui"
	"github.com/sokinpui/itc/model"
)

// ProgressUpdate is a callback function to report progress.
type ProgressUpdate func(current, total int)

// App orchestrates the entire application logic.
type App struct {
	cfg              *cli.Config
	pathResolver     *fs.PathResolver
	sourceProvider   *source.SourceProvider
	notifier         collector.Notifier
	output           io.Writer
	progressCallback ProgressUpdate
}

// DetailedError enhances a standard error with a stack trace.
type DetailedError struct {
	Err   error
	Stack []byte
}

func (e *DetailedError) Error() string {
	return e.Err.Error()
}

func (e *DetailedError) Unwrap() error {
	return e.Err
}

// New creates a new App instance.
func New(cfg *cli.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("itc: nil config")
	}
	pathResolver := fs.NewPathResolver(cfg.LookupDirs)

	return &App{
		cfg:            cfg,
		pathResolver:   pathResolver,
		sourceProvider: source.New(pathResolver, os.Stdin),
		notifier:       ui.Notifier{},
		output:         os.Stdout,
	}, nil
}

// SetProgressCallback sets a function to be called for progress updates.
func (a *App) SetProgressCallback(cb ProgressUpdate) {
	a.progressCallback = cb
}

// SetNotifier replaces the terminal notifier, e.g. with one that feeds a TUI.
func (a *App) SetNotifier(n collector.Notifier) {
	a.notifier = n
}

// SetOutput sets where --print writes the document.
func (a *App) SetOutput(w io.Writer) {
	a.output = w
}

// Execute executes the main application logic based on parsed flags.
func (a *App) Execute() (summary model.Summary, err error) {
	// Centralized panic recovery.
	defer func() {
		if r := recover(); r != nil {
			err = &DetailedError{
				Err:   fmt.Errorf("internal panic: %v", r),
				Stack: debug.Stack(),
			}
		}
	}()

	if a.cfg.Nvim {
		return a.copyFromNvim()
	}
	return a.copyFromFiles()
}

// copyFromFiles copies the paths given as arguments or piped on stdin.
func (a *App) copyFromFiles() (model.Summary, error) {
	refs, err := a.sourceProvider.GetReferences(a.cfg.Paths)
	if err != nil {
		return model.Summary{}, err
	}
	return a.copyReferences(refs)
}

// run copies exactly paths without looking at stdin. An empty list still
// replaces the destination with an empty document.
func (a *App) run(paths []string) (model.Summary, error) {
	return a.copyReferences(a.pathResolver.References(paths))
}

func (a *App) copyReferences(refs []model.FileReference) (model.Summary, error) {
	if a.cfg.Print {
		return a.collect(refs, fs.OSReader{}, clipboard.Writer{W: a.output}, "stdout", nopNotifier)
	}
	return a.collect(refs, fs.OSReader{}, clipboard.New(), "clipboard", a.notifier)
}

// copyFromNvim copies buffers of a running Neovim. Notifications go to both
// Neovim and the terminal.
func (a *App) copyFromNvim() (model.Summary, error) {
	manager, err := nvim.New(a.cfg.Server)
	if err != nil {
		return model.Summary{}, err
	}
	defer manager.Close()

	refs, err := manager.Selection(a.cfg.Current)
	if err != nil {
		return model.Summary{}, err
	}

	notifier := collector.NotifierFunc(func(message string) {
		manager.Info(message)
		a.notifier.Info(message)
	})

	switch {
	case a.cfg.Print:
		return a.collect(refs, manager, clipboard.Writer{W: a.output}, "stdout", nopNotifier)
	case a.cfg.Register != "":
		return a.collect(refs, manager, manager.Register(a.cfg.Register), "register "+a.cfg.Register, notifier)
	default:
		return a.collect(refs, manager, clipboard.New(), "clipboard", notifier)
	}
}

var nopNotifier = collector.NotifierFunc(func(string) {})

// collect runs the collector and builds the summary for display.
func (a *App) collect(refs []model.FileReference, reader collector.Reader, clip collector.Clipboard, dest string, notifier collector.Notifier) (model.Summary, error) {
	slog.Debug("collecting files", "count", len(refs), "destination", dest)

	var message string
	recorder := collector.NotifierFunc(func(m string) {
		message = m
		notifier.Info(m)
	})

	doc, err := collector.Collect(refs, a.trackProgress(reader, len(refs)), clip, recorder)
	if err != nil {
		return model.Summary{}, err
	}
	slog.Debug("document written", "bytes", len(doc), "destination", dest)

	copied := make([]string, len(refs))
	for i, ref := range refs {
		copied[i] = ref.Path
	}
	summary := model.Summary{
		Copied:      copied,
		Bytes:       len(doc),
		Destination: dest,
		Message:     message,
	}
	a.relativizeSummaryPaths(&summary)
	return summary, nil
}

// trackProgress logs each finished read and reports it to the progress
// callback, if any.
func (a *App) trackProgress(reader collector.Reader, total int) collector.Reader {
	if a.progressCallback != nil {
		a.progressCallback(0, total)
	}
	done := 0
	return collector.ReaderFunc(func(ref model.FileReference) ([]byte, error) {
		content, err := reader.Read(ref)
		if err != nil {
			return nil, err
		}
		slog.Debug("read file", "path", ref.Path, "bytes", len(content))
		done++
		if a.progressCallback != nil {
			a.progressCallback(done, total)
		}
		return content, nil
	})
}

// relativizeSummaryPaths converts absolute file paths in a summary to be
// relative to the current working directory for cleaner display.
func (a *App) relativizeSummaryPaths(summary *model.Summary) {
	wd, err := os.Getwd()
	if err != nil {
		// Cannot get CWD, so we can't make paths relative.
		return
	}

	for i, p := range summary.Copied {
		if !filepath.IsAbs(p) {
			continue
		}
		if rel, err := filepath.Rel(wd, p); err == nil {
			summary.Copied[i] = rel
		}
	}
}
