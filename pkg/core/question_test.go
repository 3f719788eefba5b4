package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeQuestions(t *testing.T) {
	t.Run("AllVariants", func(t *testing.T) {
		payload := `[
			{"type":"flashcard","id":1,"question":"What is Go?","answer":"A language"},
			{"type":"cloze","id":"2","text":"Go was created at <CLOZE>.","answer":"Google"},
			{"type":"multiple_choice","id":3,"question":"Pick one","options":["a","b","c"],"correct_index":2}
		]`
		qs, err := DecodeQuestions([]byte(payload))
		require.NoError(t, err)
		require.Len(t, qs, 3)

		fc, ok := qs[0].(*Flashcard)
		require.True(t, ok)
		assert.Equal(t, "A language", fc.Answer)

		cz, ok := qs[1].(*Cloze)
		require.True(t, ok)
		assert.Equal(t, QuestionID(2), cz.ID)
		before, after := cz.Parts()
		assert.Equal(t, "Go was created at ", before)
		assert.Equal(t, ".", after)

		mc, ok := qs[2].(*MultipleChoice)
		require.True(t, ok)
		assert.Equal(t, 2, mc.CorrectIndex)
		assert.True(t, SelfRated(fc))
		assert.False(t, SelfRated(mc))
	})

	t.Run("Rejections", func(t *testing.T) {
		cases := map[string]string{
			"unknown type":        `[{"type":"essay","id":1,"question":"q","answer":"a"}]`,
			"not an array":        `{"type":"flashcard","id":1,"question":"q","answer":"a"}`,
			"cloze without blank": `[{"type":"cloze","id":1,"text":"no blank","answer":"a"}]`,
			"cloze two blanks":    `[{"type":"cloze","id":1,"text":"<CLOZE> and <CLOZE>","answer":"a"}]`,
			"one option":          `[{"type":"multiple_choice","id":1,"question":"q","options":["a"],"correct_index":0}]`,
			"index out of range":  `[{"type":"multiple_choice","id":1,"question":"q","options":["a","b"],"correct_index":2}]`,
			"missing index":       `[{"type":"multiple_choice","id":1,"question":"q","options":["a","b"]}]`,
			"empty answer":        `[{"type":"flashcard","id":1,"question":"q","answer":""}]`,
			"garbage":             `not json`,
		}
		for name, payload := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := DecodeQuestions([]byte(payload))
				require.Error(t, err)
				assert.True(t, IsSchema(err), "expected schema error, got %v", err)
			})
		}
	})

	t.Run("EncodeRoundTrip", func(t *testing.T) {
		in := []Question{
			&Flashcard{ID: 1, Question: "q", Answer: "a"},
			&MultipleChoice{ID: 2, Question: "q", Options: []string{"x", "y"}, CorrectIndex: 0},
		}
		data, err := json.Marshal(in)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"correct_index":0`)
		assert.Contains(t, string(data), `"type":"multiple_choice"`)

		out, err := DecodeQuestions(data)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})
}

func TestValidateQuestionSet(t *testing.T) {
	assert.ErrorIs(t, ValidateQuestionSet(nil), ErrNoQuestions)

	dup := []Question{
		&Flashcard{ID: 1, Question: "q", Answer: "a"},
		&Flashcard{ID: 1, Question: "q2", Answer: "a2"},
	}
	err := ValidateQuestionSet(dup)
	require.Error(t, err)
	assert.True(t, IsSchema(err))

	ok := []Question{
		&Flashcard{ID: 1, Question: "q", Answer: "a"},
		&Cloze{ID: 2, Text: "<CLOZE>", Answer: "a"},
	}
	assert.NoError(t, ValidateQuestionSet(ok))
}

func TestParseRating(t *testing.T) {
	for in, want := range map[string]Rating{
		"1": RatingAgain, "h": RatingHard, "GOOD": RatingGood, " e ": RatingEasy,
	} {
		got, err := ParseRating(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseRating("5")
	assert.Error(t, err)
	assert.False(t, Rating(0).Valid())
	assert.Equal(t, "EASY", RatingEasy.String())
}
