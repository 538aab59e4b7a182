// Package words is the in-process default implementation of
// spec.md §6's DictionaryProvider and CalculusProvider collaborators.
// Both are nominally external per spec.md §1 ("OUT OF SCOPE"), but a
// runnable server needs a concrete generator, so this package ships one
// in the teacher's style: word lists read line-by-line at startup
// (mirroring internal/game/words.go's bufio.Scanner loop), here sourced
// from an embedded FS instead of a runtime-relative path so the binary
// is self-contained.
package words

import (
	"bufio"
	"context"
	"embed"
	"fmt"
	"math/rand"
	"strings"

	"github.com/cnamway/keybout/domain"
	"github.com/cnamway/keybout/internal/game"
)

//go:embed data/*.txt
var embeddedWordLists embed.FS

// Dictionary is the default game.DictionaryProvider: a per-language word
// list loaded once at construction.
type Dictionary struct {
	byLanguage map[string][]string
}

// NewDictionary loads every data/*.txt file, keyed by the language code
// in its filename (data/en.txt → "en").
func NewDictionary() (*Dictionary, error) {
	entries, err := embeddedWordLists.ReadDir("data")
	if err != nil {
		return nil, fmt.Errorf("reading embedded word list dir: %w", err)
	}

	d := &Dictionary{byLanguage: make(map[string][]string, len(entries))}
	for _, entry := range entries {
		name := entry.Name()
		language := strings.TrimSuffix(name, ".txt")

		file, err := embeddedWordLists.Open("data/" + name)
		if err != nil {
			return nil, fmt.Errorf("opening word list %s: %w", name, err)
		}

		var list []string
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			word := strings.TrimSpace(scanner.Text())
			if word != "" {
				list = append(list, word)
			}
		}
		file.Close()
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading word list %s: %w", name, err)
		}

		d.byLanguage[language] = list
	}
	return d, nil
}

// Generate implements game.DictionaryProvider. It returns up to count
// words with unique labels; if the language has fewer than count words
// available, it returns what it has (spec.md §7 "Collaborator failure").
func (d *Dictionary) Generate(_ context.Context, language string, count int, style game.Style, _ game.Difficulty) ([]game.Word, error) {
	pool := d.byLanguage[language]
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: no words for language %q", domain.ErrDictionaryShortCount, language)
	}

	shuffled := make([]string, len(pool))
	copy(shuffled, pool)
	rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	n := count
	if n > len(shuffled) {
		n = len(shuffled)
	}

	out := make([]game.Word, n)
	for i := 0; i < n; i++ {
		label := shuffled[i]
		out[i] = game.Word{Label: label, Display: displayFor(label, style)}
	}

	var err error
	if n < count {
		err = fmt.Errorf("%w: requested %d, have %d", domain.ErrDictionaryShortCount, count, n)
	}
	return out, err
}

// displayFor applies the style transform to a word's shown form. Hidden
// style masks every letter but the first and last, matching the "hint"
// convention common to typing-race games of this kind.
func displayFor(label string, style game.Style) string {
	if style != game.StyleHidden || len(label) <= 2 {
		return label
	}

	runes := []rune(label)
	masked := make([]rune, len(runes))
	for i, r := range runes {
		if i == 0 || i == len(runes)-1 {
			masked[i] = r
		} else {
			masked[i] = '_'
		}
	}
	return string(masked)
}
