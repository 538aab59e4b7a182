package words

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"

	"github.com/cnamway/keybout/domain"
	"github.com/cnamway/keybout/internal/game"
)

// Calculus is the default game.CalculusProvider: arithmetic expressions
// scaled by difficulty, with the numeric answer as the claim label and
// the expression as the display string (spec.md §6).
type Calculus struct{}

func NewCalculus() *Calculus { return &Calculus{} }

// Generate implements game.CalculusProvider. Labels (answers) are
// deduplicated within a single call, per spec.md §6's "unique labels"
// contract; if the difficulty's value space is too small to produce
// count unique answers, it returns what it could generate.
func (Calculus) Generate(_ context.Context, count int, difficulty game.Difficulty) ([]game.Word, error) {
	seen := make(map[string]bool, count)
	out := make([]game.Word, 0, count)

	const maxAttempts = 50
	for i := 0; i < count*maxAttempts && len(out) < count; i++ {
		label, display := expression(difficulty)
		if seen[label] {
			continue
		}
		seen[label] = true
		out = append(out, game.Word{Label: label, Display: display})
	}

	var err error
	if len(out) < count {
		err = fmt.Errorf("%w: requested %d, generated %d unique expressions", domain.ErrDictionaryShortCount, count, len(out))
	}
	return out, err
}

func expression(difficulty game.Difficulty) (label, display string) {
	switch difficulty {
	case game.DifficultyEasy:
		a, b := rand.Intn(10), rand.Intn(10)
		if rand.Intn(2) == 0 {
			return strconv.Itoa(a + b), fmt.Sprintf("%d + %d", a, b)
		}
		if a < b {
			a, b = b, a
		}
		return strconv.Itoa(a - b), fmt.Sprintf("%d - %d", a, b)

	case game.DifficultyNormal:
		a, b := 10+rand.Intn(90), 10+rand.Intn(90)
		switch rand.Intn(3) {
		case 0:
			return strconv.Itoa(a + b), fmt.Sprintf("%d + %d", a, b)
		case 1:
			if a < b {
				a, b = b, a
			}
			return strconv.Itoa(a - b), fmt.Sprintf("%d - %d", a, b)
		default:
			x, y := rand.Intn(12), rand.Intn(12)
			return strconv.Itoa(x * y), fmt.Sprintf("%d x %d", x, y)
		}

	default: // DifficultyHard
		switch rand.Intn(3) {
		case 0:
			a, b := 100+rand.Intn(900), 100+rand.Intn(900)
			return strconv.Itoa(a + b), fmt.Sprintf("%d + %d", a, b)
		case 1:
			x, y := 2+rand.Intn(20), 2+rand.Intn(20)
			return strconv.Itoa(x * y), fmt.Sprintf("%d x %d", x, y)
		default:
			divisor := 2 + rand.Intn(11)
			quotient := 2 + rand.Intn(20)
			return strconv.Itoa(quotient), fmt.Sprintf("%d / %d", divisor*quotient, divisor)
		}
	}
}
