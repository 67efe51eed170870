package engine

import (
	"strings"
	"testing"

	"github.com/lazypower/rubybook/internal/annotate"
)

const honRuby = "<ruby>本<rt>ほん</rt></ruby>"

// testLexicon knows 本 and a filler word 紙 whose reading equals its
// surface, so it is counted but never rendered.
func testLexicon(opts annotate.Options) *annotate.Lexicon {
	lex := annotate.NewLexicon(opts)
	lex.Add("本", "ほん", 120, 1)
	lex.Add("紙", "紙", 0)
	lex.Add("日本", "にほん", 40, 2)
	lex.Add("日本語", "にほんご", 300, 0)
	return lex
}

// bookText places 本 at word positions 1, 5 and 40.
func bookText() string {
	return "本" + strings.Repeat("紙", 3) + "本" + strings.Repeat("紙", 34) + "本"
}

func TestSessionLearnModeDecay(t *testing.T) {
	s := NewSession(testLexicon(annotate.Options{}), SessionOptions{
		LearnMode: true,
		Policy:    Policy{LearnedAfter: 1, ForgetDistance: 10},
	})

	got := s.AnnotateText(bookText())
	want := honRuby + strings.Repeat("紙", 3) + "本" + strings.Repeat("紙", 34) + honRuby
	if got != want {
		t.Errorf("AnnotateText =\n%s\nwant\n%s", got, want)
	}
	if s.Position() != 40 {
		t.Errorf("Position = %d, want 40", s.Position())
	}
}

func TestSessionLearnModeOffAlwaysAnnotates(t *testing.T) {
	s := NewSession(testLexicon(annotate.Options{}), SessionOptions{
		Policy: Policy{LearnedAfter: 1, ForgetDistance: 10},
	})

	got := s.AnnotateText(bookText())
	if n := strings.Count(got, honRuby); n != 3 {
		t.Errorf("got %d annotated occurrences, want 3", n)
	}
}

func TestSessionKnownWordsNeverAnnotatedOrCounted(t *testing.T) {
	known := annotate.ParseKnownWords("本")

	for _, learn := range []bool{true, false} {
		s := NewSession(testLexicon(annotate.Options{}), SessionOptions{
			LearnMode:  learn,
			Policy:     Policy{LearnedAfter: 1, ForgetDistance: 10},
			KnownWords: known,
		})

		got := s.AnnotateText(bookText())
		if strings.Contains(got, "<ruby>") {
			t.Errorf("learn=%v: known word annotated: %s", learn, got)
		}
		if got != bookText() {
			t.Errorf("learn=%v: text changed", learn)
		}
		// Only the 37 filler words advance the position
		if s.Position() != 37 {
			t.Errorf("learn=%v: Position = %d, want 37", learn, s.Position())
		}
	}
}

func TestSessionAnnotatorFlags(t *testing.T) {
	// 日本 is rank 40, inside the exclusion rank; 本 is flagged known by the
	// annotator itself.
	lex := testLexicon(annotate.Options{
		ExcludeTopN: 100,
		KnownWords:  annotate.ParseKnownWords("本"),
	})
	s := NewSession(lex, SessionOptions{})

	got := s.AnnotateText("日本の本と日本語")
	want := "日本の本と<ruby>日本語<rt>にほんご</rt></ruby>"
	if got != want {
		t.Errorf("AnnotateText = %q, want %q", got, want)
	}
	if s.Position() != 1 {
		t.Errorf("Position = %d, want 1", s.Position())
	}
}

func TestSessionPitchMarkers(t *testing.T) {
	s := NewSession(testLexicon(annotate.Options{}), SessionOptions{
		AccentMarker: "＊",
		FlatMarker:   "口",
	})

	got := s.AnnotateText("本と日本語")
	want := `<ruby class="pitch_accent">本<rt>ほん＊</rt></ruby>と<ruby class="pitch_flat">日本語<rt>にほんご口</rt></ruby>`
	if got != want {
		t.Errorf("AnnotateText = %q, want %q", got, want)
	}

	// Markers are never emitted on suppressed occurrences
	s = NewSession(testLexicon(annotate.Options{}), SessionOptions{
		LearnMode:    true,
		Policy:       Policy{LearnedAfter: 1, ForgetDistance: 10},
		AccentMarker: "＊",
	})
	got = s.AnnotateText("本本")
	if strings.Count(got, "＊") != 1 {
		t.Errorf("marker count = %d, want 1: %s", strings.Count(got, "＊"), got)
	}
}

func TestSessionStateSpansDocuments(t *testing.T) {
	s := NewSession(testLexicon(annotate.Options{}), SessionOptions{
		LearnMode: true,
		Policy:    Policy{LearnedAfter: 1, ForgetDistance: 10},
	})

	first := s.ProcessDocumentText("<html><body><p>本</p></body></html>")
	second := s.ProcessDocumentText("<html><body><p>紙本</p></body></html>")

	if !strings.Contains(first, honRuby) {
		t.Errorf("first document should annotate: %s", first)
	}
	if strings.Contains(second, "<ruby>") {
		t.Errorf("second document should be suppressed: %s", second)
	}
	if s.Position() != 3 {
		t.Errorf("Position = %d, want 3", s.Position())
	}
}

func TestSessionUnclosedRubyText(t *testing.T) {
	s := NewSession(testLexicon(annotate.Options{}), SessionOptions{})

	got := s.ProcessDocumentText("<p><ruby>日<rt>に</ruby></p><p>本</p><p>本</p>")
	want := "<p><ruby>日<rt>に</ruby></p><p>" + honRuby + "</p><p>" + honRuby + "</p>"
	if got != want {
		t.Errorf("ProcessDocumentText =\n%s\nwant\n%s", got, want)
	}
	if s.Position() != 2 {
		t.Errorf("Position = %d, want 2", s.Position())
	}
}

func TestSessionDeterministic(t *testing.T) {
	run := func() string {
		s := NewSession(testLexicon(annotate.Options{}), SessionOptions{
			LearnMode: true,
			Policy:    Policy{LearnedAfter: 1, ForgetDistance: 10},
		})
		return s.ProcessDocumentText("<p>" + bookText() + "</p>") + s.ProcessDocumentText("<p>本日本</p>")
	}
	if a, b := run(), run(); a != b {
		t.Error("identical input produced different output")
	}
}

func TestSessionSummary(t *testing.T) {
	s := NewSession(testLexicon(annotate.Options{}), SessionOptions{LearnMode: true})
	s.AnnotateText(bookText())

	sum := s.Summary()
	if sum.TotalWords != 40 {
		t.Errorf("TotalWords = %d, want 40", sum.TotalWords)
	}
	if len(sum.Words) != 2 || sum.Words[0].Surface != "本" {
		t.Fatalf("Words = %+v", sum.Words)
	}
	if sum.Words[0].MaxDistance != 35 || sum.Words[0].TimesSeen != 3 {
		t.Errorf("本 stats = %+v, want distance 35 seen 3", sum.Words[0])
	}
}

func TestSessionWithMockAnnotator(t *testing.T) {
	mock := &annotate.MockAnnotator{Script: map[string][]annotate.Segment{
		"漢字": {{Text: "漢字", Word: &annotate.Word{Surface: "漢字", Reading: "かんじ"}}},
	}}
	s := NewSession(mock, SessionOptions{})

	got := s.ProcessDocumentText(`<p class="a">漢字</p><p>abc</p>`)
	want := `<p class="a"><ruby>漢字<rt>かんじ</rt></ruby></p><p>abc</p>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if len(mock.Calls) != 2 {
		t.Errorf("annotator calls = %v, want 2 text runs", mock.Calls)
	}
}

func TestSessionDefaultPolicy(t *testing.T) {
	s := NewSession(testLexicon(annotate.Options{}), SessionOptions{LearnMode: true})
	if s.opts.Policy != DefaultPolicy() {
		t.Errorf("Policy = %+v, want default", s.opts.Policy)
	}
}
