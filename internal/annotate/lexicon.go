package annotate

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/ulikunitz/xz"
)

// entry is one line of a JSONL lexicon file.
type entry struct {
	Surface string `json:"surface"`
	Reading string `json:"reading"`
	Pitch   []int  `json:"pitch,omitempty"` // accented mora per pattern; 0 is heiban
	Rank    int    `json:"rank,omitempty"`
}

// Lexicon is a longest-match dictionary annotator.
type Lexicon struct {
	words  map[string]*Word
	maxLen int           // longest surface, in runes
	leads  map[rune]bool // first runes of surfaces like お茶 that start before their kanji
	opts   Options
}

// NewLexicon builds an empty lexicon. Add entries with Add.
func NewLexicon(opts Options) *Lexicon {
	return &Lexicon{
		words: make(map[string]*Word),
		leads: make(map[rune]bool),
		opts:  opts,
	}
}

// OpenLexicon loads a JSONL lexicon. Files ending in .xz or .gz are
// decompressed on the fly.
func OpenLexicon(path string, opts Options) (*Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lexicon: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	switch {
	case strings.HasSuffix(path, ".xz"):
		xzr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("xz reader: %w", err)
		}
		r = xzr
	case strings.HasSuffix(path, ".gz"):
		gzr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer gzr.Close()
		r = gzr
	}

	lex := NewLexicon(opts)
	if err := lex.Read(r); err != nil {
		return nil, fmt.Errorf("read lexicon %s: %w", path, err)
	}
	return lex, nil
}

// Read adds every JSONL entry from r. Malformed lines are skipped.
func (l *Lexicon) Read(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e entry
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		l.Add(e.Surface, e.Reading, e.Rank, e.Pitch...)
	}
	return scanner.Err()
}

// Add registers a surface form. When a surface already exists with a
// different reading, the better-ranked reading wins and both are marked as
// disambiguated.
func (l *Lexicon) Add(surface, reading string, rank int, pitch ...int) {
	if surface == "" || reading == "" {
		return
	}

	w := &Word{
		Surface: surface,
		Reading: reading,
		Rank:    rank,
		Pitch:   classifyPitch(pitch),
	}

	if prev, ok := l.words[surface]; ok {
		if prev.Reading == reading {
			return
		}
		if rankBefore(prev.Rank, rank) {
			prev.Sense = prev.Reading
			return
		}
		w.Sense = reading
	}

	l.words[surface] = w
	if first, _ := utf8.DecodeRuneInString(surface); !IsKanji(first) && HasKanji(surface) {
		l.leads[first] = true
	}
	if n := utf8.RuneCountInString(surface); n > l.maxLen {
		l.maxLen = n
	}
}

// Len returns the number of distinct surface forms.
func (l *Lexicon) Len() int {
	return len(l.words)
}

// Lookup returns the entry for an exact surface form.
func (l *Lexicon) Lookup(surface string) (Word, bool) {
	w, ok := l.words[surface]
	if !ok {
		return Word{}, false
	}
	return l.flag(*w), true
}

// Segment implements Annotator. Matching starts at a kanji, or at a kana
// that begins some kanji-bearing surface (お茶, ご飯), and takes the longest
// surface form in the lexicon. A match starting before any kanji must
// contain one. Everything else is literal text.
func (l *Lexicon) Segment(text string) []Segment {
	runes := []rune(text)
	var segs []Segment
	var plain strings.Builder

	flush := func() {
		if plain.Len() > 0 {
			segs = append(segs, Segment{Text: plain.String()})
			plain.Reset()
		}
	}

	for i := 0; i < len(runes); {
		atKanji := IsKanji(runes[i])
		if !atKanji && !l.leads[runes[i]] {
			plain.WriteRune(runes[i])
			i++
			continue
		}

		n := l.maxLen
		if rem := len(runes) - i; rem < n {
			n = rem
		}
		matched := 0
		for ; n > 0; n-- {
			if w, ok := l.words[string(runes[i:i+n])]; ok && (atKanji || HasKanji(w.Surface)) {
				matched = n
				break
			}
		}
		if matched == 0 {
			plain.WriteRune(runes[i])
			i++
			continue
		}

		flush()
		w := l.flag(*l.words[string(runes[i : i+matched])])
		segs = append(segs, Segment{Text: w.Surface, Word: &w})
		i += matched
	}
	flush()
	return segs
}

func (l *Lexicon) flag(w Word) Word {
	w.Common = l.opts.ExcludeTopN > 0 && w.Rank > 0 && w.Rank <= l.opts.ExcludeTopN
	w.Known = l.opts.KnownWords[NormalizeWord(w.Surface)]
	return w
}

// rankBefore reports whether rank a sorts ahead of rank b. Unranked (0)
// sorts last; ties keep the earlier entry.
func rankBefore(a, b int) bool {
	switch {
	case a == b:
		return true
	case a == 0:
		return false
	case b == 0:
		return true
	}
	return a < b
}

// classifyPitch maps a list of candidate accent positions to a class. Only
// a single candidate is unambiguous.
func classifyPitch(pitch []int) PitchClass {
	if len(pitch) != 1 || pitch[0] < 0 {
		return PitchUnknown
	}
	if pitch[0] == 0 {
		return PitchFlat
	}
	return PitchAccented
}
