// Package quiz drives an interactive quiz over a generated question set.
//
// A Session is a plain value owned by a controller; renderers read it through
// Snapshot after each transition. Sessions are never persisted.
package quiz

import (
	"fmt"
	"slices"

	"github.com/aretw0/learn/pkg/core"
)

// State is the phase of the current question.
type State int

const (
	// Answering lets the user edit the answer of the current question.
	Answering State = iota
	// Revealed shows the answer and waits for a rating or for Advance.
	Revealed
	// Finished is terminal until Restart or Load.
	Finished
)

func (s State) String() string {
	switch s {
	case Answering:
		return "answering"
	case Revealed:
		return "revealed"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Outcome is the result of a Reveal call.
type Outcome int

const (
	// OutcomeRevealed means the answer is now shown.
	OutcomeRevealed Outcome = iota
	// OutcomeNeedsAnswer means a multiple choice question was revealed with
	// nothing selected. The session is unchanged and Warning is set.
	OutcomeNeedsAnswer
)

// WarnSelectAnswer is shown when revealing a multiple choice question without a selection.
const WarnSelectAnswer = "Please select an answer before checking."

// Answer is the user's input for one question: Text for flashcards and cloze
// questions, Choice (an option index) for multiple choice.
type Answer struct {
	Text   string
	Choice int
}

// TextAnswer builds a free-text answer.
func TextAnswer(s string) Answer { return Answer{Text: s} }

// ChoiceAnswer builds a multiple choice answer.
func ChoiceAnswer(i int) Answer { return Answer{Choice: i} }

// Session is the state machine of one quiz run.
type Session struct {
	questions []core.Question
	current   int
	state     State
	answers   map[core.QuestionID]Answer
	ratings   map[core.QuestionID]core.Rating
	warning   string
	results   Results
}

// New creates a session positioned on the first question.
func New(questions []core.Question) (*Session, error) {
	s := &Session{}
	if err := s.Load(questions); err != nil {
		return nil, err
	}
	return s, nil
}

// Load replaces the question set and discards all progress. It fails with
// core.ErrNoQuestions for an empty set and leaves the session untouched on error.
func (s *Session) Load(questions []core.Question) error {
	if err := core.ValidateQuestionSet(questions); err != nil {
		return err
	}
	s.questions = slices.Clone(questions)
	s.reset()
	return nil
}

// Restart replays the same questions from the beginning. Only valid once finished.
func (s *Session) Restart() error {
	if s.state != Finished {
		return s.invalid("restart")
	}
	s.reset()
	return nil
}

func (s *Session) reset() {
	s.current = 0
	s.state = Answering
	s.answers = make(map[core.QuestionID]Answer)
	s.ratings = make(map[core.QuestionID]core.Rating)
	s.warning = ""
	s.results = Results{}
}

// RecordAnswer stores the answer for a question of the set, overwriting any
// previous one. Only valid while answering.
func (s *Session) RecordAnswer(id core.QuestionID, a Answer) error {
	if s.state != Answering {
		return s.invalid("answer")
	}
	q, ok := s.find(id)
	if !ok {
		return fmt.Errorf("answer: unknown question %d: %w", id, core.ErrInvalidOperation)
	}
	if mc, ok := q.(*core.MultipleChoice); ok && (a.Choice < 0 || a.Choice >= len(mc.Options)) {
		return fmt.Errorf("answer: option %d out of range: %w", a.Choice, core.ErrInvalidOperation)
	}
	s.answers[id] = a
	s.warning = ""
	return nil
}

// Reveal shows the answer of the current question.
func (s *Session) Reveal() (Outcome, error) {
	if s.state != Answering {
		return OutcomeRevealed, s.invalid("reveal")
	}
	q := s.questions[s.current]
	if _, isMC := q.(*core.MultipleChoice); isMC {
		if _, answered := s.answers[q.QuestionID()]; !answered {
			s.warning = WarnSelectAnswer
			return OutcomeNeedsAnswer, nil
		}
	}
	s.state = Revealed
	s.warning = ""
	return OutcomeRevealed, nil
}

// Rate records a self-rating for the current flashcard or cloze question and
// moves on.
func (s *Session) Rate(id core.QuestionID, r core.Rating) error {
	if s.state != Revealed {
		return s.invalid("rate")
	}
	q := s.questions[s.current]
	if q.QuestionID() != id || !core.SelfRated(q) || !r.Valid() {
		return fmt.Errorf("rate %s for question %d: %w", r, id, core.ErrInvalidOperation)
	}
	s.ratings[id] = r
	return s.Advance()
}

// Advance leaves a revealed question. After the last question the session is
// finished and its results computed.
func (s *Session) Advance() error {
	if s.state != Revealed {
		return s.invalid("advance")
	}
	s.warning = ""
	if s.current == len(s.questions)-1 {
		s.state = Finished
		s.results = s.score()
		return nil
	}
	s.current++
	s.state = Answering
	return nil
}

// Results returns the summary of a finished session.
func (s *Session) Results() (Results, error) {
	if s.state != Finished {
		return Results{}, s.invalid("results")
	}
	return s.results, nil
}

// State returns the current phase.
func (s *Session) State() State { return s.state }

// Questions returns the question set being played.
func (s *Session) Questions() []core.Question { return s.questions }

// Current returns the question under the pointer.
func (s *Session) Current() core.Question { return s.questions[s.current] }

// Answer returns the recorded answer for id.
func (s *Session) Answer(id core.QuestionID) (Answer, bool) {
	a, ok := s.answers[id]
	return a, ok
}

// Rating returns the recorded rating for id.
func (s *Session) Rating(id core.QuestionID) (core.Rating, bool) {
	r, ok := s.ratings[id]
	return r, ok
}

// View is a read-only projection of a session for renderers.
type View struct {
	State    State
	Index    int
	Total    int
	Question core.Question
	Answer   Answer
	Answered bool
	Warning  string
}

// Snapshot returns the view of the current question.
func (s *Session) Snapshot() View {
	q := s.questions[s.current]
	a, answered := s.answers[q.QuestionID()]
	return View{
		State:    s.state,
		Index:    s.current,
		Total:    len(s.questions),
		Question: q,
		Answer:   a,
		Answered: answered,
		Warning:  s.warning,
	}
}

func (s *Session) find(id core.QuestionID) (core.Question, bool) {
	for _, q := range s.questions {
		if q.QuestionID() == id {
			return q, true
		}
	}
	return nil, false
}

func (s *Session) invalid(op string) error {
	return fmt.Errorf("%s in state %s: %w", op, s.state, core.ErrInvalidOperation)
}
