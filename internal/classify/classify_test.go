package classify

import (
	"regexp"
	"strings"
	"testing"

	"briefdeck/internal/core"
)

// 150 words that match no signal.
var filler = strings.Repeat("the team met on site today ", 25)

func article(title, content string) core.Article {
	return core.Article{Title: title, Content: content}
}

func TestClassify_Boundaries(t *testing.T) {
	c := New(Options{})
	tests := []struct {
		name    string
		article core.Article
		want    core.Tier
	}{
		{"two critical matches", article("Wage Notice", filler+" This is mandatory and carries a penalty"), core.TierCritical},
		{"one critical match", article("Wage Notice", filler+" Litigation is pending"), core.TierStandard},
		{"two minor matches", article("Wage Notice", filler+" A reminder that this is optional"), core.TierMinor},
		{"nothing matched", article("Wage Notice", filler), core.TierMinor},
		{"two standard matches", article("Wage Notice", filler+" New guidance applies to employers"), core.TierStandard},
		{"one standard match", article("Wage Notice", filler+" New guidance"), core.TierMinor},
		{"action items label counts toward standard", article("Wage Notice", filler+" Action items: read the guidance"), core.TierStandard},
		{"deadline counts toward critical", article("Wage Notice", filler+" The deadline passed and fines follow"), core.TierCritical},
		{"dated deadline", article("Wage Notice", filler+" File by March 15 or face a penalty"), core.TierCritical},
		{"signals in title count", article("Mandatory Penalty Notice", filler), core.TierCritical},
		{"signal counted once", article("Wage Notice", filler+" penalty penalty penalty"), core.TierStandard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.article); got != tt.want {
				t.Errorf("Classify() = %s, want %s (scores %+v)", got, tt.want, c.Score(tt.article).Scores)
			}
		})
	}
}

func TestClassify_WordCountHeuristics(t *testing.T) {
	c := New(Options{})

	long := article("Wage Notice", strings.Repeat(filler, 4)+" mandatory")
	got := c.Score(long)
	if got.Words <= longArticleWords {
		t.Fatalf("test article has %d words, want > %d", got.Words, longArticleWords)
	}
	if got.Scores.Critical != 2 || got.Tier != core.TierCritical {
		t.Errorf("long article = %+v, want critical with score 2", got)
	}

	short := c.Score(article("Wage Notice", "Brief note"))
	if short.Scores.Minor != 2 || short.Tier != core.TierMinor {
		t.Errorf("short article = %+v, want minor with score 2", short)
	}
}

func TestClassify_WordCountIncludesTitle(t *testing.T) {
	c := New(Options{})

	short := c.Score(article("Wage Notice", strings.Repeat("staff ", 99)))
	if short.Words != 101 || short.Scores.Minor != 0 {
		t.Errorf("99 content words plus title = %+v, want 101 words and no short bonus", short)
	}

	long := c.Score(article("Wage Notice", strings.Repeat("staff ", 499)+"mandatory"))
	if long.Words != 502 || long.Scores.Critical != 2 || long.Tier != core.TierCritical {
		t.Errorf("500 content words plus title = %+v, want 502 words and critical", long)
	}
}

func TestClassify_ImportanceHint(t *testing.T) {
	c := New(Options{})

	a := article("Wage Notice", filler+" mandatory penalty")
	a.Metadata.ImportanceHint = "Minor"
	got := c.Score(a)
	if got.Tier != core.TierMinor || !got.Override {
		t.Errorf("hinted article = %+v, want minor override", got)
	}
	if got.Scores != (core.Scores{}) {
		t.Errorf("override should skip scoring, got %+v", got.Scores)
	}

	a.Metadata.ImportanceHint = "urgent"
	got = c.Score(a)
	if got.Override || got.Tier != core.TierCritical {
		t.Errorf("invalid hint should be ignored, got %+v", got)
	}
}

func TestClassify_Idempotent(t *testing.T) {
	c := New(Options{})
	a := article("Overtime Update", filler+" guidance litigation reminder by June 1")
	first := c.Score(a)
	for i := 0; i < 5; i++ {
		if got := c.Score(a); got != first {
			t.Fatalf("run %d = %+v, want %+v", i, got, first)
		}
	}
}

func TestClassify_CustomSignals(t *testing.T) {
	signals := Signals{
		Critical: []Signal{{Name: "recall", Pattern: regexp.MustCompile(`\brecall\b`), Weight: 2}},
	}
	c := New(Options{Signals: &signals})
	if got := c.Classify(article("Product", filler+" recall")); got != core.TierCritical {
		t.Errorf("custom signal = %s, want critical", got)
	}
	if got := c.Classify(article("Product", filler+" mandatory penalty")); got != core.TierMinor {
		t.Errorf("default signals should be replaced, got %s", got)
	}
}

func TestClassifyAll(t *testing.T) {
	c := New(Options{})
	got := c.ClassifyAll([]core.Article{
		article("A", filler+" mandatory penalty"),
		article("B", filler),
	})
	if len(got) != 2 {
		t.Fatalf("got %d classifications, want 2", len(got))
	}
	if got[0].Title != "A" || got[0].Tier != core.TierCritical || got[0].Budget() != 2 {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Title != "B" || got[1].Tier != core.TierMinor || got[1].Budget() != 0 {
		t.Errorf("second = %+v", got[1])
	}
}
