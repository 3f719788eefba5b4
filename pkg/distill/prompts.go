package distill

import (
	"fmt"
	"strings"

	"github.com/aretw0/learn/pkg/core"
)

const distillPrompt = `You are an expert educator creating study materials from student notes.
Analyze the following note and extract the following information:

1. Facts: Extract factual statements
2. Definitions: Extract terms and their definitions
3. Quotes: Extract any quoted material
4. Key Points: Extract main ideas and important concepts

Return the result as a valid JSON object with this structure:

{
  "facts": ["Fact 1", "Fact 2"],
  "definitions": [
    { "term": "Term 1", "definition": "Definition 1" },
    { "term": "Term 2", "definition": "Definition 2" }
  ],
  "quotes": ["Quote 1", "Quote 2"],
  "keyPoints": ["Key point 1", "Key point 2"]
}

NOTE CONTENT:
<note>%s</note>

Important: Return ONLY the JSON with no additional text or markdown formatting.`

const quizPrompt = `You are an expert educator creating quizzes from distilled note content.
Generate %d-%d questions based on the following distilled content using ONLY the following question formats:

1. Flashcard (question-answer pairs)
2. Cloze (fill-in-the-blank)
3. Multiple choice (with 4 options)

Return ONLY a valid JSON array of question objects using these exact formats:

[
  {
    "type": "flashcard",
    "id": 1,
    "question": "What is the capital of France?",
    "answer": "Paris"
  },
  {
    "type": "cloze",
    "id": 2,
    "text": "The capital of France is %s.",
    "answer": "Paris"
  },
  {
    "type": "multiple_choice",
    "id": 3,
    "question": "What is the largest planet in our solar system?",
    "options": ["Earth", "Saturn", "Jupiter", "Mars"],
    "correct_index": 2
  }
]

IMPORTANT FORMATTING:
- For cloze questions, always use the %s tag to mark the deleted word(s), exactly once per question
- Give every question a distinct numeric id
- Make all questions relevant to the content provided

DISTILLED CONTENT:

%s

Important: Return ONLY the JSON array with no additional text or markdown formatting.`

// Question count range requested from the model.
const (
	MinQuestions = 3
	MaxQuestions = 5
)

// BuildDistillPrompt returns the extraction request for a note body.
func BuildDistillPrompt(noteContent string) string {
	return fmt.Sprintf(distillPrompt, noteContent)
}

// BuildQuizPrompt returns the question generation request for distilled content.
func BuildQuizPrompt(d core.DistilledContent) string {
	return fmt.Sprintf(quizPrompt, MinQuestions, MaxQuestions, core.ClozeMarker, core.ClozeMarker, formatDistilled(d))
}

func formatDistilled(d core.DistilledContent) string {
	var b strings.Builder
	section := func(title string, lines []string) {
		b.WriteString(title)
		b.WriteString(":\n")
		for _, l := range lines {
			b.WriteString(l)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}

	defs := make([]string, 0, len(d.Definitions))
	for _, def := range d.Definitions {
		defs = append(defs, def.Term+": "+def.Definition)
	}

	section("Facts", d.Facts)
	section("Definitions", defs)
	section("Quotes", d.Quotes)
	section("Key Points", d.KeyPoints)
	return strings.TrimRight(b.String(), "\n")
}
