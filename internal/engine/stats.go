package engine

// WordStat is one row of the word stats report.
type WordStat struct {
	Surface     string
	Sense       string
	MaxDistance int
	TimesSeen   int
}

// Label is the word as printed in reports.
func (w WordStat) Label() string {
	return WordKey{Surface: w.Surface, Sense: w.Sense}.String()
}

// Summary is a read-only projection of a Tracker after a run.
type Summary struct {
	TotalWords int
	Words      []WordStat // first-seen order
}

// Summarize projects the tracker's state. It never mutates the tracker.
func Summarize(t *Tracker) Summary {
	recs := t.Records()
	words := make([]WordStat, len(recs))
	for i, r := range recs {
		words[i] = WordStat{
			Surface:     r.Key.Surface,
			Sense:       r.Key.Sense,
			MaxDistance: r.MaxDistance,
			TimesSeen:   r.TimesSeen,
		}
	}
	return Summary{
		TotalWords: t.Position(),
		Words:      words,
	}
}
