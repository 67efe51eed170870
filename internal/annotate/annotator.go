// Package annotate splits Japanese text into words with readings.
//
// The Annotator interface is the boundary the learning session works
// against; Lexicon is the dictionary-backed implementation the CLI uses.
package annotate

import "unicode"

// Annotator splits a text run into an ordered list of segments.
// Concatenating Segment.Text across the result reproduces the input.
type Annotator interface {
	Segment(text string) []Segment
}

// PitchClass classifies a word's pitch accent pattern.
type PitchClass int

const (
	PitchUnknown  PitchClass = iota // no pattern, or ambiguous
	PitchAccented                   // one accented mora, unambiguous
	PitchFlat                       // heiban
)

func (p PitchClass) String() string {
	switch p {
	case PitchAccented:
		return "accented"
	case PitchFlat:
		return "flat"
	default:
		return "unknown"
	}
}

// Word is a dictionary word found in the text.
type Word struct {
	Surface string
	Reading string
	// Sense is set when the annotator picked one of several readings for
	// the surface form; it then becomes part of the word's identity.
	Sense  string
	Pitch  PitchClass
	Rank   int  // frequency rank, 0 when unranked
	Common bool // within the configured exclusion rank
	Known  bool // listed in the reader's known words
}

// NeedsReading reports whether a reading adds anything over the surface.
func (w *Word) NeedsReading() bool {
	return w.Reading != "" && w.Reading != w.Surface && HasKanji(w.Surface)
}

// Segment is either literal text (Word == nil) or a word.
type Segment struct {
	Text string
	Word *Word
}

// Options configures which words an annotator flags as exempt.
type Options struct {
	ExcludeTopN int
	KnownWords  map[string]bool
}

// IsKanji reports whether r is a CJK ideograph (including 々).
func IsKanji(r rune) bool {
	return unicode.Is(unicode.Han, r)
}

// HasKanji reports whether s contains at least one kanji.
func HasKanji(s string) bool {
	for _, r := range s {
		if IsKanji(r) {
			return true
		}
	}
	return false
}
