// Package enforce trims a slide list to the per-article budgets set by classification.
package enforce

import (
	"log/slog"
	"regexp"
	"strings"

	"briefdeck/internal/core"
	"briefdeck/internal/logger"
	"briefdeck/internal/slides"
)

const minSignificantLen = 4

var wordPattern = regexp.MustCompile(`[a-z0-9]+`)

// SignificantWords returns the distinct lowercased alphanumeric words longer than three characters.
func SignificantWords(s string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range wordPattern.FindAllString(strings.ToLower(s), -1) {
		if len(w) >= minSignificantLen {
			words[w] = true
		}
	}
	return words
}

// Enforcer drops slides that exceed their article's budget.
type Enforcer struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Enforcer {
	return &Enforcer{log: logger.OrDiscard(log)}
}

// Enforce keeps structural and unmatched slides and at most Budget() slides per classified
// article, preserving order.
func Enforce(deck []slides.Slide, classifications []core.Classification) []slides.Slide {
	return New(nil).Enforce(deck, classifications)
}

func (e *Enforcer) Enforce(deck []slides.Slide, classifications []core.Classification) []slides.Slide {
	if len(classifications) == 0 {
		return deck
	}

	articleWords := make([]map[string]bool, len(classifications))
	for i, c := range classifications {
		articleWords[i] = SignificantWords(c.Title)
	}

	used := make([]int, len(classifications))
	out := make([]slides.Slide, 0, len(deck))
	for _, s := range deck {
		if slides.IsStructural(s) {
			out = append(out, s)
			continue
		}

		idx := match(SignificantWords(s.Base().Title), articleWords)
		if idx < 0 {
			out = append(out, s)
			continue
		}

		c := classifications[idx]
		if used[idx] >= c.Budget() {
			e.log.Debug("dropping slide over budget",
				"slide", s.Base().Title,
				"article", c.Title,
				"tier", c.Tier,
				"budget", c.Budget())
			continue
		}
		used[idx]++
		out = append(out, s)
	}

	if dropped := len(deck) - len(out); dropped > 0 {
		e.log.Info("enforced slide budgets", "kept", len(out), "dropped", dropped)
	}
	return out
}

// match returns the article sharing the most significant words with the slide title, or -1.
// Ties go to the earlier article.
func match(title map[string]bool, articles []map[string]bool) int {
	best, bestShared := -1, 0
	for i, words := range articles {
		if len(words) == 0 {
			continue
		}
		shared := 0
		for w := range title {
			if words[w] {
				shared++
			}
		}
		if shared < min(2, len(words)) {
			continue
		}
		if shared > bestShared {
			best, bestShared = i, shared
		}
	}
	return best
}
