package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ClozeMarker marks the single blank inside a cloze question.
const ClozeMarker = "<CLOZE>"

// Wire discriminators for the question variants.
const (
	TypeFlashcard      = "flashcard"
	TypeCloze          = "cloze"
	TypeMultipleChoice = "multiple_choice"
)

// QuestionID identifies a question within a single generated set.
type QuestionID int

// UnmarshalJSON accepts both numbers and numeric strings.
func (id *QuestionID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*id = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid question id %s", data)
	}
	*id = QuestionID(n)
	return nil
}

// Question is the closed set of quiz question variants:
// *Flashcard, *Cloze and *MultipleChoice.
type Question interface {
	QuestionID() QuestionID
	Type() string
	Validate() error
	isQuestion()
}

// SelfRated reports whether q is answered by self-rating instead of being scored.
func SelfRated(q Question) bool {
	switch q.(type) {
	case *Flashcard, *Cloze:
		return true
	default:
		return false
	}
}

// Flashcard is a free-recall question-answer pair.
type Flashcard struct {
	ID       QuestionID
	Question string
	Answer   string
}

func (q *Flashcard) QuestionID() QuestionID { return q.ID }
func (q *Flashcard) Type() string           { return TypeFlashcard }
func (q *Flashcard) isQuestion()            {}

func (q *Flashcard) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return schemaf("flashcard %d: empty question", q.ID)
	}
	if strings.TrimSpace(q.Answer) == "" {
		return schemaf("flashcard %d: empty answer", q.ID)
	}
	return nil
}

func (q *Flashcard) MarshalJSON() ([]byte, error) {
	return json.Marshal(questionWire{Type: TypeFlashcard, ID: q.ID, Question: q.Question, Answer: q.Answer})
}

// Cloze is a fill-in-the-blank sentence with exactly one ClozeMarker.
type Cloze struct {
	ID     QuestionID
	Text   string
	Answer string
}

func (q *Cloze) QuestionID() QuestionID { return q.ID }
func (q *Cloze) Type() string           { return TypeCloze }
func (q *Cloze) isQuestion()            {}

func (q *Cloze) Validate() error {
	if n := strings.Count(q.Text, ClozeMarker); n != 1 {
		return schemaf("cloze %d: expected exactly one %s marker, found %d", q.ID, ClozeMarker, n)
	}
	if strings.TrimSpace(q.Answer) == "" {
		return schemaf("cloze %d: empty answer", q.ID)
	}
	return nil
}

// Parts splits the text around the blank.
func (q *Cloze) Parts() (before, after string) {
	before, after, _ = strings.Cut(q.Text, ClozeMarker)
	return before, after
}

func (q *Cloze) MarshalJSON() ([]byte, error) {
	return json.Marshal(questionWire{Type: TypeCloze, ID: q.ID, Text: q.Text, Answer: q.Answer})
}

// MultipleChoice is scored automatically against CorrectIndex.
type MultipleChoice struct {
	ID           QuestionID
	Question     string
	Options      []string
	CorrectIndex int
}

func (q *MultipleChoice) QuestionID() QuestionID { return q.ID }
func (q *MultipleChoice) Type() string           { return TypeMultipleChoice }
func (q *MultipleChoice) isQuestion()            {}

func (q *MultipleChoice) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return schemaf("multiple choice %d: empty question", q.ID)
	}
	if len(q.Options) < 2 {
		return schemaf("multiple choice %d: need at least 2 options, got %d", q.ID, len(q.Options))
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return schemaf("multiple choice %d: correct_index %d out of range", q.ID, q.CorrectIndex)
	}
	return nil
}

func (q *MultipleChoice) MarshalJSON() ([]byte, error) {
	idx := q.CorrectIndex
	return json.Marshal(questionWire{
		Type:         TypeMultipleChoice,
		ID:           q.ID,
		Question:     q.Question,
		Options:      q.Options,
		CorrectIndex: &idx,
	})
}

type questionWire struct {
	Type         string     `json:"type"`
	ID           QuestionID `json:"id"`
	Question     string     `json:"question,omitempty"`
	Text         string     `json:"text,omitempty"`
	Answer       string     `json:"answer,omitempty"`
	Options      []string   `json:"options,omitempty"`
	CorrectIndex *int       `json:"correct_index,omitempty"`
}

// DecodeQuestion parses a single question object by its "type" discriminator
// and validates it.
func DecodeQuestion(data []byte) (Question, error) {
	var w questionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, &SchemaError{Reason: "malformed question", Err: err}
	}

	var q Question
	switch strings.ToLower(strings.TrimSpace(w.Type)) {
	case TypeFlashcard:
		q = &Flashcard{ID: w.ID, Question: w.Question, Answer: w.Answer}
	case TypeCloze:
		q = &Cloze{ID: w.ID, Text: w.Text, Answer: w.Answer}
	case TypeMultipleChoice:
		if w.CorrectIndex == nil {
			return nil, schemaf("multiple choice %d: missing correct_index", w.ID)
		}
		q = &MultipleChoice{ID: w.ID, Question: w.Question, Options: w.Options, CorrectIndex: *w.CorrectIndex}
	default:
		return nil, schemaf("unknown question type %q", w.Type)
	}

	if err := q.Validate(); err != nil {
		return nil, err
	}
	return q, nil
}

// DecodeQuestions parses a JSON array of questions.
func DecodeQuestions(data []byte) ([]Question, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, schemaf("expected a JSON array of questions")
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(trimmed, &raws); err != nil {
		return nil, &SchemaError{Reason: "invalid question list", Err: err}
	}

	questions := make([]Question, 0, len(raws))
	for i, raw := range raws {
		q, err := DecodeQuestion(raw)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// ValidateQuestionSet checks that a set is non-empty and its ids are unique.
func ValidateQuestionSet(questions []Question) error {
	if len(questions) == 0 {
		return ErrNoQuestions
	}
	seen := make(map[QuestionID]bool, len(questions))
	for _, q := range questions {
		if q == nil {
			return schemaf("nil question in set")
		}
		if seen[q.QuestionID()] {
			return schemaf("duplicate question id %d", q.QuestionID())
		}
		seen[q.QuestionID()] = true
	}
	return nil
}

// Rating is the four-level Anki-style self-assessment.
type Rating int

const (
	RatingAgain Rating = iota + 1
	RatingHard
	RatingGood
	RatingEasy
)

// Ratings lists the levels in ascending order.
var Ratings = []Rating{RatingAgain, RatingHard, RatingGood, RatingEasy}

func (r Rating) String() string {
	switch r {
	case RatingAgain:
		return "AGAIN"
	case RatingHard:
		return "HARD"
	case RatingGood:
		return "GOOD"
	case RatingEasy:
		return "EASY"
	default:
		return fmt.Sprintf("Rating(%d)", int(r))
	}
}

// Valid reports whether r is one of the four levels.
func (r Rating) Valid() bool {
	return r >= RatingAgain && r <= RatingEasy
}

// ParseRating accepts level names, their first letter or the digits 1-4.
func ParseRating(s string) (Rating, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "a", "again":
		return RatingAgain, nil
	case "2", "h", "hard":
		return RatingHard, nil
	case "3", "g", "good":
		return RatingGood, nil
	case "4", "e", "easy":
		return RatingEasy, nil
	}
	return 0, fmt.Errorf("unknown rating %q", s)
}
