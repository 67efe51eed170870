package annotate

// MockAnnotator is a test double for the Annotator interface.
// Script maps an input text run to the segments to return; unscripted runs
// come back as a single literal segment.
type MockAnnotator struct {
	Script map[string][]Segment
	Calls  []string // records text runs received
}

// Segment records the call and returns the scripted segments.
func (m *MockAnnotator) Segment(text string) []Segment {
	m.Calls = append(m.Calls, text)
	if segs, ok := m.Script[text]; ok {
		return segs
	}
	return []Segment{{Text: text}}
}
