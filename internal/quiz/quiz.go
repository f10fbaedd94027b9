// Package quiz generates multiplication questions and their answer options.
package quiz

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/tvandenbrink/tafel-racer/internal/models"
)

const (
	// MaxFactor is the largest table and multiplier asked.
	MaxFactor = 10
	// RepeatEvery is how many answered questions pass between repeats.
	RepeatEvery = 5
	// GenericMax bounds the fallback distractor domain 1..GenericMax.
	GenericMax = 100

	operator = " × "
	// draws per missing option before moving to the next domain
	drawsPerOption = 50
)

// Question is one prompt with its options in lane order.
type Question struct {
	Text     string
	Correct  int
	Options  []int
	RepeatID string
}

func (q Question) IsRepeat() bool { return q.RepeatID != "" }

// FormatQuestion renders a fact the way it is stored, e.g. "7 × 8".
func FormatQuestion(table, multiplier int) string {
	return strconv.Itoa(table) + operator + strconv.Itoa(multiplier)
}

// ParseQuestion is the inverse of FormatQuestion.
func ParseQuestion(text string) (table, multiplier int, err error) {
	left, right, ok := strings.Cut(text, operator)
	if !ok {
		return 0, 0, fmt.Errorf("question %q: missing operator", text)
	}
	if table, err = strconv.Atoi(strings.TrimSpace(left)); err != nil {
		return 0, 0, fmt.Errorf("question %q: bad table: %w", text, err)
	}
	if multiplier, err = strconv.Atoi(strings.TrimSpace(right)); err != nil {
		return 0, 0, fmt.Errorf("question %q: bad multiplier: %w", text, err)
	}
	return table, multiplier, nil
}

// RepeatDue reports whether the next question should come from the repeat queue.
func RepeatDue(answered, pending int) bool {
	return pending > 0 && answered > 0 && answered%RepeatEvery == 0
}

// Generator is not safe for concurrent use; each session owns one.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator uses rng for every draw. A nil rng gets a randomly seeded source.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{rng: rng}
}

// Generate returns a question with laneCount shuffled options. When a repeat
// is due the oldest pending entry is asked again and its id returned.
func (g *Generator) Generate(laneCount, answered int, pending []models.PendingRepeat) Question {
	if laneCount < 1 {
		laneCount = 1
	}

	var q Question
	var table int
	if RepeatDue(answered, len(pending)) {
		head := pending[0]
		q = Question{Text: head.Question, Correct: head.CorrectAnswer, RepeatID: head.ID}
		if t, _, err := ParseQuestion(head.Question); err == nil && t >= 1 && t <= MaxFactor {
			table = t
		}
	} else {
		table = g.factor()
		multiplier := g.factor()
		q = Question{Text: FormatQuestion(table, multiplier), Correct: table * multiplier}
	}

	q.Options = g.options(q.Correct, table, laneCount)
	return q
}

// options returns correct plus laneCount-1 unique distractors, shuffled.
// Distractors come from the table's products, then 1..GenericMax, then the
// smallest unused positive integers. table 0 skips the first domain.
func (g *Generator) options(correct, table, laneCount int) []int {
	opts := make([]int, 0, laneCount)
	opts = append(opts, correct)
	seen := map[int]bool{correct: true}

	fill := func(draw func() int) {
		for tries := drawsPerOption * laneCount; len(opts) < laneCount && tries > 0; tries-- {
			if v := draw(); !seen[v] {
				seen[v] = true
				opts = append(opts, v)
			}
		}
	}
	if table > 0 {
		fill(func() int { return table * g.factor() })
	}
	fill(func() int { return g.rng.IntN(GenericMax) + 1 })
	for v := 1; len(opts) < laneCount; v++ {
		if !seen[v] {
			seen[v] = true
			opts = append(opts, v)
		}
	}

	g.rng.Shuffle(len(opts), func(i, j int) { opts[i], opts[j] = opts[j], opts[i] })
	return opts
}

func (g *Generator) factor() int {
	return g.rng.IntN(MaxFactor) + 1
}

