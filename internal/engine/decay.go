package engine

// The tracker only measures; this file holds the rule that turns a
// measurement into "show furigana or not" in learn mode.
//
// Learn-mode decay:
//   - First sighting of a word: always annotated
//   - Learned: seen more than LearnedAfter times AND the gap since the
//     previous sighting is below ForgetDistance word positions
//   - A learned word that goes unseen for ForgetDistance positions is
//     "forgotten" and annotated again on its next sighting
//   - Defaults: LearnedAfter 2, ForgetDistance 2000 (roughly ten pages)

const (
	DefaultLearnedAfter   = 2
	DefaultForgetDistance = 2000
)

// Policy decides furigana visibility from an Observation.
type Policy struct {
	LearnedAfter   int
	ForgetDistance int
}

// DefaultPolicy returns the policy with the documented defaults.
func DefaultPolicy() Policy {
	return Policy{
		LearnedAfter:   DefaultLearnedAfter,
		ForgetDistance: DefaultForgetDistance,
	}
}

// Visible reports whether the occurrence described by obs gets furigana.
func (p Policy) Visible(obs Observation) bool {
	if obs.First() {
		return true
	}
	learned := obs.TimesSeen > p.LearnedAfter && obs.Distance < p.ForgetDistance
	return !learned
}
