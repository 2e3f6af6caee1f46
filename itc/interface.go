package itc

import (
	"strings"

	"github.com/sokinpui/itc/cli"
)

// Config for using itc as a library.
type Config struct {
	// Directories to resolve relative paths against. Defaults to the working directory.
	LookupDirs []string
}

// Render reads the given files and returns the document that Copy would put
// on the clipboard.
func Render(paths []string, config Config) (string, error) {
	app, err := New(&cli.Config{
		Print:      true,
		LookupDirs: config.LookupDirs,
		Paths:      paths,
	})
	if err != nil {
		return "", err
	}

	var out strings.Builder
	app.SetOutput(&out)
	if _, err := app.run(paths); err != nil {
		return "", err
	}
	return out.String(), nil
}

// Copy reads the given files and replaces the system clipboard with the
// rendered document. It returns the relative paths that were copied.
func Copy(paths []string, config Config) ([]string, error) {
	app, err := New(&cli.Config{
		LookupDirs: config.LookupDirs,
		Paths:      paths,
	})
	if err != nil {
		return nil, err
	}
	app.SetNotifier(nopNotifier)

	summary, err := app.run(paths)
	if err != nil {
		return nil, err
	}
	return summary.Copied, nil
}
