package llm

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"briefdeck/internal/config"
	"briefdeck/internal/layout"
)

func TestChunkText(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		maxTokens int
		want      []string
	}{
		{"empty", "", 10, nil},
		{"fits in one chunk", "One. Two. Three.", 100, []string{"One. Two. Three."}},
		{"splits on sentences", "Alpha beta. Gamma delta.", 2, []string{"Alpha beta.", "Gamma delta."}},
		{"normalizes terminators", "Why? Because!", 100, []string{"Why. Because."}},
		{"default budget", "Short text", 0, []string{"Short text."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChunkText(tt.text, tt.maxTokens)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ChunkText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChunkText_RespectsBudget(t *testing.T) {
	text := strings.Repeat("The employer must post the notice in every break room. ", 200)
	chunks := ChunkText(text, 100)
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if EstimateTokens(c) > 100 {
			t.Errorf("chunk %d has %d tokens", i, EstimateTokens(c))
		}
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens(""); got != 0 {
		t.Errorf("EstimateTokens(\"\") = %d, want 0", got)
	}
	short := EstimateTokens("Overtime rules changed.")
	long := EstimateTokens(strings.Repeat("Overtime rules changed. ", 20))
	if short < 1 || long <= short {
		t.Errorf("EstimateTokens should grow with text: short=%d long=%d", short, long)
	}
}

func TestApproxTokens(t *testing.T) {
	for in, want := range map[string]int{"": 0, "abcd": 1, "abcde": 2, "ééééé": 2} {
		if got := approxTokens(in); got != want {
			t.Errorf("approxTokens(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestCleanHTMLResponse(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"```html\n1. Title Page: <div class=\"slide\">x</div>\n```", `<div class="slide">x</div>`},
		{"Agenda Page:\n<div class=\"agenda-slide\"></div>", `<div class="agenda-slide"></div>`},
		{"<div class=\"content-slide\"><p>Note: keep</p></div>", `<div class="content-slide"><p>Note: keep</p></div>`},
	}
	for _, tt := range tests {
		if got := CleanHTMLResponse(tt.in); got != tt.want {
			t.Errorf("CleanHTMLResponse(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTemplateStyles(t *testing.T) {
	page := `<html><head><style>.slide{background:url('desiredresults/assets/ppt/media/image9.jpg')}</style></head><body></body></html>`
	if got, want := TemplateStyles(page), `.slide{background:url('/assets/image9.jpg')}`; got != want {
		t.Errorf("TemplateStyles() = %q, want %q", got, want)
	}
	if got := TemplateStyles("<html></html>"); got != "" {
		t.Errorf("TemplateStyles() without style = %q", got)
	}
}

func TestPrompts(t *testing.T) {
	p := Prompts{
		Brand:   "Acme",
		LogoURL: "/assets/logo.png",
		Now:     func() time.Time { return time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC) },
	}

	slides := p.BuildSlidesPrompt("Overtime rules changed.", ".slide{}", "SLIDE BUDGET BY ARTICLE:\n")
	for _, want := range []string{"Overtime rules changed.", ".slide{}", "SLIDE BUDGET BY ARTICLE", `<img src="/assets/logo.png" alt="Acme Logo">`, `<div class="slide">`} {
		if !strings.Contains(slides, want) {
			t.Errorf("slides prompt missing %q", want)
		}
	}

	chunk := p.BuildChunkPrompt("Second part.", 1, 3, "")
	if !strings.Contains(chunk, "chunk 2 of 3") || !strings.Contains(chunk, `<div class="content-slide">`) {
		t.Errorf("chunk prompt = %s", chunk)
	}

	extract := p.BuildExtractionPrompt("<div class=\"slide\">Hello</div>")
	if !strings.Contains(extract, `"Acme Monthly Briefing: March 4, 2025"`) {
		t.Errorf("extraction prompt missing briefing header")
	}
	if !strings.Contains(extract, `<div class="slide">Hello</div>`) {
		t.Errorf("extraction prompt missing html")
	}
}

func TestPrompts_SlideComponents(t *testing.T) {
	p := Prompts{Brand: "Acme", LogoURL: "/assets/logo.png"}
	got := p.BuildSlidesPrompt("Overtime rules changed.", "", "")
	for _, want := range []string{
		"agenda-slide", "content-slide", "go-deeper-slide", "table-slide", "checklist-slide",
		"textbox-content-gray", "textbox-content-teal", "transition-alt-slide", "qotm-scenario",
		`<div class="slide-notes" style="display:none;">`,
		`<div class="thankyou-slide">`,
		`<h1 class="thankyou-title">THANK YOU!</h1>`,
		`<h2 class="thankyou-subtitle">Q&A</h2>`,
		`<div class="thankyou-disclaimer">` + layout.Disclaimer + `</div>`,
		`<div class="thankyou-logo"><img src="/assets/logo.png" alt="Acme Logo"></div>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("slides prompt missing %q", want)
		}
	}
	if strings.Contains(got, "statistics-slide") {
		t.Error("slides prompt should not offer a statistics component")
	}
}

func TestPrompts_Defaults(t *testing.T) {
	var p Prompts
	if !strings.Contains(p.BuildSlidesPrompt("x", "", ""), "/assets/image8.png") {
		t.Error("default logo missing")
	}
	if !strings.Contains(p.BuildExtractionPrompt(""), "BCS Monthly Briefing: ") {
		t.Error("default brand missing")
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	if _, err := New(ctx, config.AI{Provider: "claude"}, nil); err == nil {
		t.Error("expected error for unknown provider")
	}
	if _, err := New(ctx, config.AI{Provider: "groq"}, nil); err == nil {
		t.Error("expected error for missing groq key")
	}
	if _, err := New(ctx, config.AI{Provider: "gemini"}, nil); err == nil {
		t.Error("expected error for missing gemini key")
	}

	o, err := New(ctx, config.AI{Provider: "groq", Groq: config.OpenAIConfig{APIKey: "k", Model: "openai/gpt-oss-120b"}}, nil)
	if err != nil {
		t.Fatalf("New(groq): %v", err)
	}
	if o.Model() != "openai/gpt-oss-120b" {
		t.Errorf("Model() = %q", o.Model())
	}

	o, err = New(ctx, config.AI{Provider: "openai", OpenAI: config.OpenAIConfig{APIKey: "k"}}, nil)
	if err != nil {
		t.Fatalf("New(openai): %v", err)
	}
	if o.Model() != DefaultOpenAIModel {
		t.Errorf("Model() = %q, want default", o.Model())
	}
}

func TestGenerate_RejectsEmptyPrompt(t *testing.T) {
	c, err := NewOpenAI(config.OpenAIConfig{APIKey: "k"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Generate(context.Background(), Request{Prompt: "  "}); err == nil {
		t.Error("expected error for empty prompt")
	}
}

func TestParseTimeout(t *testing.T) {
	tests := map[string]time.Duration{
		"":     defaultTimeout,
		"30s":  30 * time.Second,
		"nope": defaultTimeout,
		"-1s":  defaultTimeout,
	}
	for in, want := range tests {
		if got := parseTimeout(in); got != want {
			t.Errorf("parseTimeout(%q) = %v, want %v", in, got, want)
		}
	}
}
