package parser

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"
)

var (
	pathInHintRegex = regexp.MustCompile("`([^`\n]+)`")
	// diffPathRegex extracts the file path from a '+++ b/...' line.
	diffPathRegex = regexp.MustCompile(`(?m)^\+\+\+ b/(?P<path>.*?)(\s|$)`)
)

// ParseSelection turns piped input into an ordered list of paths.
//
// Markdown input (anything with a fenced code block) contributes the
// backticked path hint of each code block and the target of each diff block.
// Any other input is a plain list with one path per line. Later duplicates
// are dropped.
func ParseSelection(content string) ([]string, error) {
	blocks, err := ExtractCodeBlocks([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse markdown selection: %w", err)
	}
	if len(blocks) == 0 {
		return parsePathList(content), nil
	}

	var paths []string
	for _, block := range blocks {
		var path string
		if block.Lang == "diff" {
			path = ExtractPathFromDiff(block.Content)
		} else {
			path = extractPathFromHint(block.Hint)
		}
		if path != "" {
			paths = append(paths, path)
		}
	}
	return dedup(paths), nil
}

// ExtractPathFromDiff finds the file path in a raw diff string.
func ExtractPathFromDiff(content string) string {
	match := diffPathRegex.FindStringSubmatch(content)
	if len(match) > 1 {
		return strings.TrimSpace(match[1])
	}
	return ""
}

func parsePathList(content string) []string {
	var paths []string
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		paths = append(paths, line)
	}
	return dedup(paths)
}

func extractPathFromHint(hint string) string {
	// A path hint must be enclosed in backticks, e.g., `path/to/file.go`
	for _, match := range pathInHintRegex.FindAllStringSubmatch(hint, -1) {
		path := strings.TrimSpace(match[1])
		// Disallow spaces to avoid capturing commands like `go run main.go` as a path.
		if path != "" && !strings.Contains(path, " ") {
			return path
		}
	}
	return ""
}

func dedup(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := paths[:0]
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
