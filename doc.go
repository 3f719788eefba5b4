// Package learn turns Markdown notes into study quizzes.
//
// A completion model distills each note into facts, definitions, quotes and
// key points, then generates flashcard, cloze and multiple choice questions
// from that distillation. Results live in JSON sidecar files keyed by a
// stable identifier stored in the note's frontmatter, so notes can be moved
// or renamed freely. Distillation is repeated only when the note changed
// after its last run.
//
// Usage:
//
//	vault, err := learn.Open("./notes",
//		learn.WithEndpoint("http://localhost:1234/v1", "local-model"),
//		learn.WithLogger(logger),
//	)
//
//	result, err := vault.Service.PrepareQuiz(ctx, "golang.md", core.PrepareOptions{})
//	session, err := learn.NewSession(result.Questions)
package learn
