package quiz

import (
	"fmt"

	"github.com/aretw0/learn/pkg/core"
)

// Score is the automatic result over multiple choice questions.
type Score struct {
	Correct int
	Total   int
	Percent int
}

// LevelCount is one bucket of the rating histogram.
type LevelCount struct {
	Rating  core.Rating
	Count   int
	Percent int
}

// Results summarizes a finished session.
type Results struct {
	MultipleChoice Score
	// Ratings holds one entry per level, in ascending order.
	Ratings []LevelCount
	// Rated is the number of rated questions.
	Rated int
	// SelfRated is the number of flashcard and cloze questions in the set.
	SelfRated int
}

// HasRatings reports whether at least one question was rated.
// It separates "no items rated" from a histogram of zeros.
func (r Results) HasRatings() bool { return r.Rated > 0 }

// Lines renders the summary, e.g. "1/2 correct (50%)" and "GOOD: 2 (67%)".
// Levels without ratings are omitted.
func (r Results) Lines() []string {
	var lines []string
	if r.MultipleChoice.Total > 0 {
		lines = append(lines, fmt.Sprintf("%d/%d correct (%d%%)",
			r.MultipleChoice.Correct, r.MultipleChoice.Total, r.MultipleChoice.Percent))
	}
	if r.SelfRated > 0 && !r.HasRatings() {
		lines = append(lines, "No items rated")
	}
	for _, lc := range r.Ratings {
		if lc.Count == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %d (%d%%)", lc.Rating, lc.Count, lc.Percent))
	}
	return lines
}

func (s *Session) score() Results {
	var res Results
	counts := make(map[core.Rating]int, len(core.Ratings))

	for _, q := range s.questions {
		switch q := q.(type) {
		case *core.MultipleChoice:
			res.MultipleChoice.Total++
			if a, ok := s.answers[q.ID]; ok && a.Choice == q.CorrectIndex {
				res.MultipleChoice.Correct++
			}
		case *core.Flashcard, *core.Cloze:
			res.SelfRated++
			if r, ok := s.ratings[q.QuestionID()]; ok {
				counts[r]++
				res.Rated++
			}
		}
	}

	res.MultipleChoice.Percent = percent(res.MultipleChoice.Correct, res.MultipleChoice.Total)
	res.Ratings = make([]LevelCount, 0, len(core.Ratings))
	for _, level := range core.Ratings {
		res.Ratings = append(res.Ratings, LevelCount{
			Rating:  level,
			Count:   counts[level],
			Percent: percent(counts[level], res.Rated),
		})
	}
	return res
}

// percent rounds half up.
func percent(n, total int) int {
	if total == 0 {
		return 0
	}
	return (n*200 + total) / (total * 2)
}
