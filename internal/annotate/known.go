package annotate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeWord folds a surface form for known-word comparison.
func NormalizeWord(s string) string {
	return norm.NFKC.String(strings.TrimSpace(s))
}

// ParseKnownWords splits text on whitespace into a normalized word set.
func ParseKnownWords(text string) map[string]bool {
	words := make(map[string]bool)
	for _, f := range strings.Fields(text) {
		if w := NormalizeWord(f); w != "" {
			words[w] = true
		}
	}
	return words
}

// LoadKnownWords reads a whitespace-separated known-words file. An empty
// path or a missing file yields an empty set.
func LoadKnownWords(path string) (map[string]bool, error) {
	if path == "" {
		return map[string]bool{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]bool{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read known words: %w", err)
	}
	return ParseKnownWords(string(data)), nil
}
