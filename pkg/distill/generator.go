package distill

import (
	"context"
	"time"

	"github.com/aretw0/learn/pkg/core"
)

// QuizGenerator turns distilled content into quiz questions.
type QuizGenerator struct {
	completer core.Completer
	store     core.RecordStore
	cfg       config
}

// NewQuizGenerator creates a QuizGenerator that persists results into store.
func NewQuizGenerator(completer core.Completer, store core.RecordStore, opts ...Option) *QuizGenerator {
	return &QuizGenerator{completer: completer, store: store, cfg: newConfig(opts)}
}

// Generate asks the model for a fresh question set, replaces record.Quiz and
// persists it. On failure the input record is returned unchanged together
// with a *core.QuizGenerationError.
func (g *QuizGenerator) Generate(ctx context.Context, record core.NoteRecord) (core.NoteRecord, []core.Question, error) {
	start := time.Now()
	log := g.cfg.logger.With("id", record.ID, "path", record.SourcePath)

	out, err := complete(ctx, g.completer, g.cfg, BuildQuizPrompt(record.Distilled))
	if err != nil {
		log.Warn("quiz generation call failed", "error", err)
		return record, nil, &core.QuizGenerationError{Err: err}
	}

	questions, err := ParseQuestions(out)
	if err != nil {
		log.Warn("quiz response rejected", "error", err)
		return record, nil, &core.QuizGenerationError{Err: err}
	}

	updated := record
	updated.Quiz = questions
	updated.Touch(g.cfg.now())
	if err := g.store.Persist(ctx, updated); err != nil {
		return record, nil, &core.QuizGenerationError{Err: err}
	}

	log.Debug("generated quiz", "questions", len(questions), "latency_ms", time.Since(start).Milliseconds())
	return updated, questions, nil
}

// ParseQuestions extracts and decodes a question list. Questions without an
// id get the next free one; the resulting set must be non-empty with unique ids.
func ParseQuestions(response string) ([]core.Question, error) {
	questions, err := core.DecodeQuestions([]byte(ExtractPayload(response)))
	if err != nil {
		return nil, err
	}
	assignIDs(questions)
	if err := core.ValidateQuestionSet(questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func assignIDs(questions []core.Question) {
	var next core.QuestionID
	for _, q := range questions {
		if id := q.QuestionID(); id > next {
			next = id
		}
	}
	for _, q := range questions {
		if q.QuestionID() != 0 {
			continue
		}
		next++
		switch v := q.(type) {
		case *core.Flashcard:
			v.ID = next
		case *core.Cloze:
			v.ID = next
		case *core.MultipleChoice:
			v.ID = next
		}
	}
}
