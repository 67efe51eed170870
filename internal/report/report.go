// Package report writes the plain-text word stats side file.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/lazypower/rubybook/internal/engine"
)

// WriteWordStats writes a header with the total word count followed by one
// line per word: label, largest gap between sightings, and sighting count.
func WriteWordStats(w io.Writer, s engine.Summary) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Text length in words: %d\n\n", s.TotalWords)
	for _, ws := range s.Words {
		fmt.Fprintf(bw, "%s        distance %d | seen %d\n", ws.Label(), ws.MaxDistance, ws.TimesSeen)
	}
	return bw.Flush()
}

// WriteWordStatsFile creates (or truncates) path and writes the report.
func WriteWordStatsFile(path string, s engine.Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create word stats: %w", err)
	}
	if err := WriteWordStats(f, s); err != nil {
		f.Close()
		return fmt.Errorf("write word stats: %w", err)
	}
	return f.Close()
}
