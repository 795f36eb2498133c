// Package classify assigns importance tiers to briefing articles by keyword signals.
package classify

import (
	"log/slog"
	"regexp"
	"strings"

	"briefdeck/internal/core"
	"briefdeck/internal/logger"
)

// Signal is one weighted pattern. A signal adds its weight once when it matches,
// however many times the pattern occurs.
type Signal struct {
	Name    string
	Pattern *regexp.Regexp
	Weight  int
}

// Signals groups the pattern sets scored toward each tier.
type Signals struct {
	Critical []Signal
	Standard []Signal
	Minor    []Signal
}

func signal(name, pattern string, weight int) Signal {
	return Signal{Name: name, Pattern: regexp.MustCompile(pattern), Weight: weight}
}

// DefaultSignals returns the curated legal/compliance signal sets.
func DefaultSignals() Signals {
	return Signals{
		Critical: []Signal{
			signal("mandatory", `\bmandatory\b`, 1),
			signal("litigation", `\blitigation\b`, 1),
			signal("penalty", `\bpenalt(?:y|ies)\b`, 1),
			signal("lawsuit", `\blawsuits?\b`, 1),
			signal("enforcement action", `\benforcement actions?\b`, 1),
			signal("violation", `\bviolations?\b`, 1),
			signal("must comply", `\bmust comply\b`, 1),
			signal("fines", `\bfines?\b`, 1),
			signal("liability", `\bliabilit(?:y|ies)\b`, 1),
			signal("effective immediately", `\beffective immediately\b`, 1),
		},
		Standard: []Signal{
			signal("applies to", `\bappl(?:y|ies) to\b`, 1),
			signal("guidance", `\bguidance\b`, 1),
			signal("clarification", `\bclarif(?:y|ies|ied|ication|ications)\b`, 1),
			signal("amendment", `\bamendments?\b`, 1),
			signal("update", `\bupdates?\b`, 1),
			signal("new rule", `\bnew rules?\b`, 1),
			signal("employers should", `\bemployers should\b`, 1),
			signal("recommend", `\brecommend(?:s|ed|ation|ations)?\b`, 1),
		},
		Minor: []Signal{
			signal("reminder", `\breminders?\b`, 1),
			signal("optional", `\boptional\b`, 1),
			signal("fyi", `\bfyi\b`, 1),
			signal("best practice", `\bbest practices?\b`, 1),
			signal("no action required", `\bno action (?:is )?required\b`, 1),
			signal("for your information", `\bfor your information\b`, 1),
			signal("consider", `\bconsider(?:s|ing)?\b`, 1),
		},
	}
}

const (
	longArticleWords  = 500
	shortArticleWords = 100
)

var (
	actionItemsLabel = regexp.MustCompile(`\baction items?\s*:`)
	deadlinePhrase   = regexp.MustCompile(`\bdeadline\b|\bno later than\b|` +
		`\bby (?:january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2}\b|` +
		`\beffective (?:(?:january|february|march|april|may|june|july|august|september|october|november|december)\b|\d{1,2}/\d{1,2})`)
)

// Classifier scores articles against a signal set. The zero value is not usable; use New.
type Classifier struct {
	signals Signals
	log     *slog.Logger
}

// Options configures a Classifier. Zero-value fields take defaults.
type Options struct {
	Signals *Signals
	Logger  *slog.Logger
}

// New returns a Classifier using opts.Signals, or DefaultSignals when nil.
func New(opts Options) *Classifier {
	signals := DefaultSignals()
	if opts.Signals != nil {
		signals = *opts.Signals
	}
	return &Classifier{signals: signals, log: logger.OrDiscard(opts.Logger)}
}

// Classify returns the tier for a single article.
func (c *Classifier) Classify(article core.Article) core.Tier {
	return c.Score(article).Tier
}

// ClassifyAll classifies every article in order.
func (c *Classifier) ClassifyAll(articles []core.Article) []core.Classification {
	out := make([]core.Classification, 0, len(articles))
	for _, a := range articles {
		out = append(out, c.Score(a))
	}
	return out
}

// Score returns the tier together with the scores behind it. A valid importance hint
// short-circuits scoring.
func (c *Classifier) Score(article core.Article) core.Classification {
	text := strings.ToLower(article.Title + "\n" + article.Content)
	words := len(strings.Fields(text))
	result := core.Classification{Title: article.Title, Words: words}

	if hint := strings.TrimSpace(article.Metadata.ImportanceHint); hint != "" {
		tier, err := core.ParseTier(hint)
		if err == nil {
			result.Tier = tier
			result.Override = true
			return result
		}
		c.log.Debug("ignoring importance hint", "title", article.Title, "hint", hint)
	}

	scores := core.Scores{
		Critical: sumSignals(c.signals.Critical, text),
		Standard: sumSignals(c.signals.Standard, text),
		Minor:    sumSignals(c.signals.Minor, text),
	}

	if actionItemsLabel.MatchString(text) {
		scores.Standard++
	}
	if deadlinePhrase.MatchString(text) {
		scores.Critical++
	}
	if words > longArticleWords {
		scores.Critical++
	}
	if words < shortArticleWords {
		scores.Minor += 2
	}

	result.Scores = scores
	result.Tier = decide(scores)
	c.log.Debug("classified article",
		"title", article.Title,
		"tier", result.Tier,
		"critical", scores.Critical,
		"standard", scores.Standard,
		"minor", scores.Minor,
		"words", words)
	return result
}

func sumSignals(signals []Signal, text string) int {
	total := 0
	for _, s := range signals {
		if s.Pattern != nil && s.Weight > 0 && s.Pattern.MatchString(text) {
			total += s.Weight
		}
	}
	return total
}

// decide applies the tier policy; the first matching rule wins.
func decide(s core.Scores) core.Tier {
	switch {
	case s.Critical >= 2:
		return core.TierCritical
	case s.Critical >= 1 || s.Standard >= 2:
		return core.TierStandard
	case s.Minor >= 2 || (s.Critical == 0 && s.Standard <= 1):
		return core.TierMinor
	default:
		return core.TierStandard
	}
}
