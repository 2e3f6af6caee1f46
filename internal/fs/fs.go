package fs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sokinpui/itc/internal/ui"
	"github.com/sokinpui/itc/model"
)

// PathResolver finds absolute paths for files.
type PathResolver struct {
	lookupDirs []string
}

// NewPathResolver creates a new PathResolver.
func NewPathResolver(lookupDirs []string) *PathResolver {
	if len(lookupDirs) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			// This is unlikely to fail, but if it does, it's a critical error.
			panic(fmt.Sprintf("could not get current working directory: %v", err))
		}
		return &PathResolver{lookupDirs: []string{wd}}
	}

	absDirs := make([]string, 0, len(lookupDirs))
	for _, dir := range lookupDirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			ui.Warning("Invalid lookup directory '%s', ignoring: %v", dir, err)
			continue
		}
		absDirs = append(absDirs, abs)
	}
	if len(absDirs) == 0 {
		return NewPathResolver(nil)
	}
	return &PathResolver{lookupDirs: absDirs}
}

// Resolve returns an absolute path for p. Absolute paths are returned
// unchanged. Relative paths are looked up in
// each lookup directory in turn; a path found nowhere is placed under the
// first one so the read reports it as missing.
func (r *PathResolver) Resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	if existing := r.ResolveExisting(p); existing != "" {
		return existing
	}
	return filepath.Join(r.lookupDirs[0], p)
}

// ResolveExisting finds an absolute path only if the file exists.
func (r *PathResolver) ResolveExisting(relativePath string) string {
	for _, dir := range r.lookupDirs {
		absPath := filepath.Join(dir, relativePath)
		if _, err := os.Stat(absPath); err == nil {
			return absPath
		}
	}
	return ""
}

// References resolves each path into a FileReference, keeping order.
func (r *PathResolver) References(paths []string) []model.FileReference {
	refs := make([]model.FileReference, len(paths))
	for i, p := range paths {
		refs[i] = model.FileReference{Path: r.Resolve(p)}
	}
	return refs
}

// OSReader reads references straight from disk.
type OSReader struct{}

// Read returns the whole file.
func (OSReader) Read(ref model.FileReference) ([]byte, error) {
	info, err := os.Stat(ref.Path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", ref.Path)
	}
	return os.ReadFile(ref.Path)
}
