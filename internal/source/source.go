package source

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sokinpui/itc/internal/fs"
	"github.com/sokinpui/itc/internal/parser"
	"github.com/sokinpui/itc/model"
)

// ErrNoSelection is returned when neither arguments nor piped input name a file.
var ErrNoSelection = errors.New("no files selected: pass paths as arguments, pipe a list on stdin, or use --nvim")

// SourceProvider determines where the selection comes from.
type SourceProvider struct {
	resolver *fs.PathResolver
	stdin    *os.File
}

// New creates a new SourceProvider reading piped selections from stdin.
func New(resolver *fs.PathResolver, stdin *os.File) *SourceProvider {
	return &SourceProvider{resolver: resolver, stdin: stdin}
}

// GetReferences returns the selection from args, or from stdin if it is piped.
func (sp *SourceProvider) GetReferences(args []string) ([]model.FileReference, error) {
	if len(args) > 0 {
		slog.Debug("selection from arguments", "count", len(args))
		return sp.resolver.References(args), nil
	}

	if !sp.isPiped() {
		return nil, ErrNoSelection
	}

	content, err := io.ReadAll(sp.stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read from stdin: %w", err)
	}
	paths, err := parser.ParseSelection(string(content))
	if err != nil {
		return nil, err
	}
	slog.Debug("selection from stdin", "count", len(paths))
	return sp.resolver.References(paths), nil
}

func (sp *SourceProvider) isPiped() bool {
	if sp.stdin == nil {
		return false
	}
	stat, err := sp.stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}
