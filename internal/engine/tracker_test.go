package engine

import "testing"

func TestTrackerObserve(t *testing.T) {
	tr := NewTracker()
	hon := WordKey{Surface: "本"}
	kami := WordKey{Surface: "紙"}

	obs := tr.Observe(hon)
	if obs.Position != 1 || obs.TimesSeen != 1 || obs.Distance != 0 || obs.MaxDistance != 0 {
		t.Errorf("first observation = %+v", obs)
	}
	if !obs.First() {
		t.Error("expected First() on first sighting")
	}

	tr.Observe(kami)
	tr.Observe(kami)

	obs = tr.Observe(hon)
	if obs.Position != 4 {
		t.Errorf("Position = %d, want 4", obs.Position)
	}
	if obs.Distance != 3 || obs.MaxDistance != 3 {
		t.Errorf("Distance/MaxDistance = %d/%d, want 3/3", obs.Distance, obs.MaxDistance)
	}
	if obs.TimesSeen != 2 || obs.First() {
		t.Errorf("TimesSeen = %d, want 2", obs.TimesSeen)
	}

	// A shorter gap must not lower MaxDistance
	obs = tr.Observe(hon)
	if obs.Distance != 1 || obs.MaxDistance != 3 {
		t.Errorf("Distance/MaxDistance = %d/%d, want 1/3", obs.Distance, obs.MaxDistance)
	}

	rec, ok := tr.Record(hon)
	if !ok {
		t.Fatal("record missing")
	}
	if rec.FirstSeen != 1 || rec.LastSeen != 5 || rec.TimesSeen != 3 {
		t.Errorf("record = %+v", rec)
	}
	if tr.Len() != 2 {
		t.Errorf("Len = %d, want 2", tr.Len())
	}
}

func TestTrackerMaxDistanceIsTrueMaximum(t *testing.T) {
	// Sightings of the target word at these positions; other slots are filler.
	positions := []int{1, 3, 10, 12, 30, 31}
	target := WordKey{Surface: "本"}
	filler := WordKey{Surface: "他"}

	tr := NewTracker()
	next := 0
	prevMax := 0
	for pos := 1; pos <= 31; pos++ {
		if next < len(positions) && positions[next] == pos {
			obs := tr.Observe(target)
			if obs.MaxDistance < prevMax {
				t.Fatalf("MaxDistance decreased at %d: %d < %d", pos, obs.MaxDistance, prevMax)
			}
			prevMax = obs.MaxDistance
			next++
			continue
		}
		tr.Observe(filler)
	}

	want := 0
	for i := 1; i < len(positions); i++ {
		if gap := positions[i] - positions[i-1]; gap > want {
			want = gap
		}
	}
	rec, _ := tr.Record(target)
	if rec.MaxDistance != want {
		t.Errorf("MaxDistance = %d, want %d", rec.MaxDistance, want)
	}
	if tr.Position() != 31 {
		t.Errorf("Position = %d, want 31", tr.Position())
	}
}

func TestTrackerSenseIsPartOfIdentity(t *testing.T) {
	tr := NewTracker()
	tr.Observe(WordKey{Surface: "上手", Sense: "じょうず"})
	obs := tr.Observe(WordKey{Surface: "上手", Sense: "うわて"})
	if !obs.First() {
		t.Error("different sense should be tracked separately")
	}
	if tr.Len() != 2 {
		t.Errorf("Len = %d, want 2", tr.Len())
	}
}

func TestTrackerRecordsFirstSeenOrder(t *testing.T) {
	tr := NewTracker()
	for _, s := range []string{"c", "a", "b", "a", "c"} {
		tr.Observe(WordKey{Surface: s})
	}
	recs := tr.Records()
	want := []string{"c", "a", "b"}
	if len(recs) != len(want) {
		t.Fatalf("got %d records, want %d", len(recs), len(want))
	}
	for i, w := range want {
		if recs[i].Key.Surface != w {
			t.Errorf("recs[%d] = %q, want %q", i, recs[i].Key.Surface, w)
		}
	}

	// Records are copies
	recs[0].TimesSeen = 99
	if r, _ := tr.Record(WordKey{Surface: "c"}); r.TimesSeen != 2 {
		t.Errorf("Records() leaked internal state, TimesSeen = %d", r.TimesSeen)
	}
}

func TestWordKeyString(t *testing.T) {
	if got := (WordKey{Surface: "本"}).String(); got != "本" {
		t.Errorf("String = %q", got)
	}
	if got := (WordKey{Surface: "上手", Sense: "うわて"}).String(); got != "上手[うわて]" {
		t.Errorf("String = %q", got)
	}
}

func TestPolicyVisible(t *testing.T) {
	p := Policy{LearnedAfter: 1, ForgetDistance: 10}

	tests := []struct {
		name string
		obs  Observation
		want bool
	}{
		{"first sighting", Observation{TimesSeen: 1}, true},
		{"second, recent", Observation{TimesSeen: 2, Distance: 4}, false},
		{"third, forgotten", Observation{TimesSeen: 3, Distance: 35}, true},
		{"at the forget boundary", Observation{TimesSeen: 5, Distance: 10}, true},
		{"just under boundary", Observation{TimesSeen: 5, Distance: 9}, false},
	}
	for _, tt := range tests {
		if got := p.Visible(tt.obs); got != tt.want {
			t.Errorf("%s: Visible = %v, want %v", tt.name, got, tt.want)
		}
	}

	// Not enough sightings yet
	p = DefaultPolicy()
	if !p.Visible(Observation{TimesSeen: 2, Distance: 1}) {
		t.Error("default policy should still annotate the second sighting")
	}
	if p.Visible(Observation{TimesSeen: 3, Distance: 1}) {
		t.Error("default policy should hide a third recent sighting")
	}
}

func TestSummarize(t *testing.T) {
	tr := NewTracker()
	tr.Observe(WordKey{Surface: "本"})
	tr.Observe(WordKey{Surface: "紙"})
	tr.Observe(WordKey{Surface: "本"})

	s := Summarize(tr)
	if s.TotalWords != 3 {
		t.Errorf("TotalWords = %d, want 3", s.TotalWords)
	}
	if len(s.Words) != 2 {
		t.Fatalf("Words = %d, want 2", len(s.Words))
	}
	if s.Words[0].Label() != "本" || s.Words[0].TimesSeen != 2 || s.Words[0].MaxDistance != 2 {
		t.Errorf("Words[0] = %+v", s.Words[0])
	}
	if s.Words[1].Label() != "紙" || s.Words[1].TimesSeen != 1 || s.Words[1].MaxDistance != 0 {
		t.Errorf("Words[1] = %+v", s.Words[1])
	}

	// Summarizing again yields the same result and leaves the tracker alone
	if again := Summarize(tr); again.TotalWords != 3 || tr.Position() != 3 {
		t.Error("Summarize should be a pure projection")
	}
}
