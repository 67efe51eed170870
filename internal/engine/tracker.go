package engine

// WordKey identifies a word for familiarity tracking. Sense is only set when
// the annotator told two readings of the same surface form apart.
type WordKey struct {
	Surface string
	Sense   string
}

func (k WordKey) String() string {
	if k.Sense == "" {
		return k.Surface
	}
	return k.Surface + "[" + k.Sense + "]"
}

// WordRecord is the exposure history of one word.
type WordRecord struct {
	Key         WordKey
	TimesSeen   int
	FirstSeen   int // position of the first sighting
	LastSeen    int // position of the latest sighting
	MaxDistance int // largest gap between two consecutive sightings
}

// Observation is what the tracker measured for one occurrence. Distance is
// the gap to the previous sighting, 0 on the first one.
type Observation struct {
	Key         WordKey
	Position    int
	TimesSeen   int
	Distance    int
	MaxDistance int
}

// First reports whether this was the word's first occurrence.
func (o Observation) First() bool {
	return o.TimesSeen == 1
}

// Tracker counts word exposures in reading order. It carries no visibility
// policy; see Policy. Records are never removed.
//
// A Tracker is not safe for concurrent use: positions only mean something
// when words arrive in book order.
type Tracker struct {
	position int
	records  map[WordKey]*WordRecord
	order    []WordKey // first-seen order
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{records: make(map[WordKey]*WordRecord)}
}

// Observe records one occurrence of key at the next book-wide position.
func (t *Tracker) Observe(key WordKey) Observation {
	t.position++

	rec, ok := t.records[key]
	if !ok {
		rec = &WordRecord{Key: key, FirstSeen: t.position}
		t.records[key] = rec
		t.order = append(t.order, key)
	}

	distance := 0
	if rec.TimesSeen > 0 {
		distance = t.position - rec.LastSeen
		if distance > rec.MaxDistance {
			rec.MaxDistance = distance
		}
	}
	rec.TimesSeen++
	rec.LastSeen = t.position

	return Observation{
		Key:         key,
		Position:    t.position,
		TimesSeen:   rec.TimesSeen,
		Distance:    distance,
		MaxDistance: rec.MaxDistance,
	}
}

// Position returns the number of occurrences observed so far.
func (t *Tracker) Position() int {
	return t.position
}

// Len returns the number of distinct words observed.
func (t *Tracker) Len() int {
	return len(t.order)
}

// Record returns a copy of the record for key.
func (t *Tracker) Record(key WordKey) (WordRecord, bool) {
	rec, ok := t.records[key]
	if !ok {
		return WordRecord{}, false
	}
	return *rec, true
}

// Records returns copies of all records in first-seen order.
func (t *Tracker) Records() []WordRecord {
	out := make([]WordRecord, len(t.order))
	for i, k := range t.order {
		out[i] = *t.records[k]
	}
	return out
}
