package engine

import (
	"html"
	"strings"

	"github.com/lazypower/rubybook/internal/annotate"
)

// SessionOptions configures a learning session.
type SessionOptions struct {
	LearnMode  bool
	Policy     Policy
	KnownWords map[string]bool // normalized with annotate.NormalizeWord

	// Pitch accent markers. Empty disables the marker for that class.
	AccentMarker string
	FlatMarker   string
}

// Session threads one Tracker through every document of a book, in order.
// It is created once per run and never reset.
type Session struct {
	tracker   *Tracker
	annotator annotate.Annotator
	opts      SessionOptions
}

// NewSession creates a session with a fresh tracker.
func NewSession(a annotate.Annotator, opts SessionOptions) *Session {
	if opts.Policy == (Policy{}) {
		opts.Policy = DefaultPolicy()
	}
	return &Session{
		tracker:   NewTracker(),
		annotator: a,
		opts:      opts,
	}
}

// ProcessDocumentText annotates every text node of an HTML/XHTML document.
// Markup outside text nodes is returned untouched.
func (s *Session) ProcessDocumentText(doc string) string {
	return rewriteTextNodes(doc, s.AnnotateText)
}

// AnnotateText annotates a single text run.
func (s *Session) AnnotateText(text string) string {
	segs := s.annotator.Segment(text)
	var b strings.Builder
	b.Grow(len(text) * 2)

	for _, seg := range segs {
		w := seg.Word
		if w == nil {
			b.WriteString(seg.Text)
			continue
		}

		// Known and common words stay out of the familiarity count.
		if w.Known || w.Common || s.opts.KnownWords[annotate.NormalizeWord(w.Surface)] {
			b.WriteString(seg.Text)
			continue
		}

		obs := s.tracker.Observe(WordKey{Surface: w.Surface, Sense: w.Sense})
		if !w.NeedsReading() || !s.visible(obs) {
			b.WriteString(seg.Text)
			continue
		}
		s.writeRuby(&b, seg.Text, w)
	}
	return b.String()
}

func (s *Session) visible(obs Observation) bool {
	if !s.opts.LearnMode {
		return true
	}
	return s.opts.Policy.Visible(obs)
}

// writeRuby emits <ruby>surface<rt>reading</rt></ruby>, with a pitch class
// and marker when one is configured for the word's pattern.
func (s *Session) writeRuby(b *strings.Builder, surface string, w *annotate.Word) {
	class, marker := "", ""
	switch w.Pitch {
	case annotate.PitchAccented:
		if s.opts.AccentMarker != "" {
			class, marker = "pitch_accent", s.opts.AccentMarker
		}
	case annotate.PitchFlat:
		if s.opts.FlatMarker != "" {
			class, marker = "pitch_flat", s.opts.FlatMarker
		}
	}

	if class != "" {
		b.WriteString(`<ruby class="` + class + `">`)
	} else {
		b.WriteString("<ruby>")
	}
	b.WriteString(surface)
	b.WriteString("<rt>")
	b.WriteString(html.EscapeString(w.Reading))
	b.WriteString(html.EscapeString(marker))
	b.WriteString("</rt></ruby>")
}

// Position returns the book-wide word position reached so far.
func (s *Session) Position() int {
	return s.tracker.Position()
}

// Summary returns the word statistics accumulated so far.
func (s *Session) Summary() Summary {
	return Summarize(s.tracker)
}
