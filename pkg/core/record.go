package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// Metadata represents the header key-value pairs of a note.
type Metadata map[string]any

// Note is a Markdown note as read from the vault.
// Content holds the body without the header block.
type Note struct {
	Path     string
	Content  string
	Metadata Metadata
	ModTime  time.Time
}

// NoteInfo is the lightweight listing entry for a note.
type NoteInfo struct {
	Path    string
	ID      string
	Title   string
	ModTime time.Time
}

// Definition is a term and its meaning extracted from a note.
type Definition struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// DistilledContent is the structured study material extracted from a note.
// Insertion order is display order.
type DistilledContent struct {
	Facts       []string     `json:"facts"`
	Definitions []Definition `json:"definitions"`
	Quotes      []string     `json:"quotes"`
	KeyPoints   []string     `json:"keyPoints"`
}

// IsEmpty reports whether all four collections are empty.
func (d DistilledContent) IsEmpty() bool {
	return len(d.Facts) == 0 && len(d.Definitions) == 0 && len(d.Quotes) == 0 && len(d.KeyPoints) == 0
}

// Normalize replaces nil collections with empty ones.
func (d DistilledContent) Normalize() DistilledContent {
	if d.Facts == nil {
		d.Facts = []string{}
	}
	if d.Definitions == nil {
		d.Definitions = []Definition{}
	}
	if d.Quotes == nil {
		d.Quotes = []string{}
	}
	if d.KeyPoints == nil {
		d.KeyPoints = []string{}
	}
	return d
}

// NoteRecord is the persisted sidecar state of a single note.
// ID is immutable once assigned.
type NoteRecord struct {
	ID         string
	SourcePath string
	// LastUpdated is stored with millisecond resolution. Use Timestamp or
	// Touch to get a value that survives a persist unchanged.
	LastUpdated time.Time
	Distilled   DistilledContent
	Quiz        []Question
}

// NewRecord builds an empty record stamped with now.
func NewRecord(id, sourcePath string, now time.Time) NoteRecord {
	return NoteRecord{
		ID:          id,
		SourcePath:  sourcePath,
		LastUpdated: Timestamp(now),
		Distilled:   DistilledContent{}.Normalize(),
		Quiz:        []Question{},
	}
}

// Touch bumps LastUpdated to now. It never moves the timestamp backwards.
func (r *NoteRecord) Touch(now time.Time) {
	now = Timestamp(now)
	if now.After(r.LastUpdated) {
		r.LastUpdated = now
	}
}

// Timestamp truncates t to the millisecond resolution used on disk.
func Timestamp(t time.Time) time.Time {
	return time.UnixMilli(t.UnixMilli())
}

// recordWire is the sidecar layout. lastUpdated is Unix milliseconds.
type recordWire struct {
	ID          string            `json:"uuid"`
	SourcePath  string            `json:"notePath"`
	LastUpdated int64             `json:"lastUpdated"`
	Distilled   DistilledContent  `json:"distilledContent"`
	Quiz        []json.RawMessage `json:"quizData"`
}

// MarshalJSON implements json.Marshaler.
func (r NoteRecord) MarshalJSON() ([]byte, error) {
	w := recordWire{
		ID:          r.ID,
		SourcePath:  r.SourcePath,
		LastUpdated: r.LastUpdated.UnixMilli(),
		Distilled:   r.Distilled.Normalize(),
		Quiz:        make([]json.RawMessage, 0, len(r.Quiz)),
	}
	for _, q := range r.Quiz {
		raw, err := json.Marshal(q)
		if err != nil {
			return nil, err
		}
		w.Quiz = append(w.Quiz, raw)
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler. Stored questions that fail to
// decode are dropped; see DecodeRecord.
func (r *NoteRecord) UnmarshalJSON(data []byte) error {
	record, _, err := DecodeRecord(data)
	if err != nil {
		return err
	}
	*r = record
	return nil
}

// DecodeRecord parses a sidecar document. Question sets are regenerated on
// every run, so a stored question that no longer validates is left out of
// Quiz and reported in dropped instead of failing the whole record.
func DecodeRecord(data []byte) (record NoteRecord, dropped []error, err error) {
	var w recordWire
	if err := json.Unmarshal(data, &w); err != nil {
		return NoteRecord{}, nil, err
	}
	quiz := make([]Question, 0, len(w.Quiz))
	for i, raw := range w.Quiz {
		q, err := DecodeQuestion(raw)
		if err != nil {
			dropped = append(dropped, fmt.Errorf("quizData[%d]: %w", i, err))
			continue
		}
		quiz = append(quiz, q)
	}
	return NoteRecord{
		ID:          w.ID,
		SourcePath:  w.SourcePath,
		LastUpdated: time.UnixMilli(w.LastUpdated),
		Distilled:   w.Distilled.Normalize(),
		Quiz:        quiz,
	}, dropped, nil
}

// EventType represents the type of change observed in the vault.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change to a note.
type Event struct {
	Type      EventType
	Path      string
	Timestamp int64 // Unix timestamp
}

// String implements fmt.Stringer.
func (e Event) String() string {
	return string(e.Type) + " " + e.Path
}
