package internal

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// IgnoreFilename lists gitignore-style patterns of PDFs to leave out of the
// corpus. It lives in the document directory.
const IgnoreFilename = ".bookragignore"

type IgnoreMatcher struct {
	patterns []gitignore.Pattern
	basePath string
}

func NewIgnoreMatcher(dir string) (*IgnoreMatcher, error) {
	m := &IgnoreMatcher{basePath: dir}

	patterns, err := parseIgnoreFile(filepath.Join(dir, IgnoreFilename))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: read %s: %w", ErrInvalidConfig, IgnoreFilename, err)
	}

	m.patterns = patterns
	return m, nil
}

// Match reports whether path, inside the document directory, is ignored.
// Later patterns win, so "!keep.pdf" can re-include a file.
func (m *IgnoreMatcher) Match(path string) bool {
	if m == nil || len(m.patterns) == 0 {
		return false
	}

	relPath, err := filepath.Rel(m.basePath, path)
	if err != nil {
		return false
	}
	parts := strings.Split(relPath, string(filepath.Separator))

	ignored := false
	for _, p := range m.patterns {
		switch p.Match(parts, false) {
		case gitignore.Exclude:
			ignored = true
		case gitignore.Include:
			ignored = false
		}
	}
	return ignored
}

func parseIgnoreFile(path string) ([]gitignore.Pattern, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var patterns []gitignore.Pattern
	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return patterns, nil
}
