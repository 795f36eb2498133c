package llm

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"briefdeck/internal/layout"
)

// Generation settings for the two request kinds.
const (
	SlidesMaxTokens    = 65536
	SlidesTemperature  = 0.7
	ExtractMaxTokens   = 4096
	ExtractTemperature = 0.1
	DefaultChunkTokens = 2000
)

var (
	styleBlock    = regexp.MustCompile(`(?s)<style[^>]*>(.*?)</style>`)
	legacyAssets  = regexp.MustCompile(`url\('desiredresults/assets/ppt/media/`)
	codeFence     = regexp.MustCompile("```[a-zA-Z]*")
	numberedLabel = regexp.MustCompile(`(?m)^\d+\.\s*[^:<\n]*:\s*`)
	sectionLabel  = regexp.MustCompile(`(?m)^[A-Z][^:<\n]*:\s*`)
	sentenceEnd   = regexp.MustCompile(`[.!?]+`)
)

// Prompts renders the oracle prompts for one brand.
type Prompts struct {
	Brand   string
	LogoURL string
	Now     func() time.Time
}

func (p Prompts) brand() string {
	if p.Brand == "" {
		return "BCS"
	}
	return p.Brand
}

func (p Prompts) logo() string {
	if p.LogoURL == "" {
		return "/assets/image8.png"
	}
	return p.LogoURL
}

func (p Prompts) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

// ThankYouHTML is the closing slide markup the model must copy unchanged.
func (p Prompts) ThankYouHTML() string {
	return fmt.Sprintf(`<div class="thankyou-slide">
  <div class="thankyou-background"></div>
  <div class="thankyou-overlay"></div>
  <div class="thankyou-content">
    <h1 class="thankyou-title">%s</h1>
    <h2 class="thankyou-subtitle">Q&A</h2>
  </div>
  <div class="thankyou-disclaimer">%s</div>
  <div class="thankyou-logo"><img src="%s" alt="%s Logo"></div>
  <div class="thankyou-page-number">[PAGE_NUMBER]</div>
</div>`, layout.ThankYouTitle, layout.Disclaimer, p.logo(), p.brand())
}

// BuildSlidesPrompt asks for a full deck as template HTML using every slide component.
// guidance is the per-article slide budget and may be empty.
func (p Prompts) BuildSlidesPrompt(docText, templateStyles, guidance string) string {
	var b strings.Builder
	b.WriteString("You are an expert at converting document content into comprehensive presentation slides using a component-based template system.\n\n")
	fmt.Fprintf(&b, "Document content:\n\"\"\"\n%s\n\"\"\"\n\n", docText)
	fmt.Fprintf(&b, "Template styles to use:\n\"\"\"\n%s\n\"\"\"\n\n", templateStyles)
	if guidance != "" {
		b.WriteString(guidance)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, `AVAILABLE SLIDE COMPONENTS:

1. TITLE PAGE: div.slide with div.briefing-header, div.title, div.subtitle and the logo.
2. AGENDA PAGE: div.agenda-slide with one li.agenda-item per entry and <span class="agenda-checkmark">✓</span>.
   Section names ("In the News", "Federal Updates", "Hot Topics", "Question of the Month") are
   main items; article titles under them get class "agenda-item nested".
3. CONTENT SLIDE: div.content-slide with div.content-title and a <ul> of concise bullets.
   Section headings such as "Background and Timeline" or "What is changing and why?" go in
   <h3 class="content-section-heading"> without a bullet. Nested <ul> items are sub-bullets.
4. GO DEEPER: div.go-deeper-slide with div.content-title and a <ul> of supporting detail.
5. TABLE LAYOUT: div.table-slide with div.content-title and a <table> whose first row holds <th> headers.
6. CHECKLIST SIDEBAR: div.checklist-slide for employer implications and action steps:
   div.content-title; div.checklist-content with p.checklist-item lines (h3.content-section-heading
   for headings); div.checklist-panel with h2.checklist-content-heading, div.checklist-panel-content
   and ul.checklist-list of li items (unchecked unless the document marks them done).
7. TEXT BOXES: div.textbox-slide with div.content-title and up to two div.textbox, each holding
   div.textbox-header and div.textbox-content-gray or div.textbox-content-teal.
8. TRANSITION SLIDES: div.transition-slide or div.transition-alt-slide with div.transition-title.
9. QUESTION OF THE MONTH: div.qotm-slide with the question in div.content-title and three lists:
   ul.qotm-scenario, ul.qotm-rule, ul.qotm-action (2-3 items each, no section labels as items).
10. THANK YOU: div.thankyou-slide, always the final slide (markup below).

Do not create statistics slides.

CONTENT DENSITY:
- At most 5 bullets per slide and 12 words per bullet. Spell out abbreviations.
- Critical articles: up to 2 slides (overview with section headings, then a checklist of employer actions).
- Standard articles: 1 slide combining overview and actions.
- Minor articles: 1-2 bullets each on a roundup slide.
- Use transition_alt style slides between article categories.
- Push detail, examples and context into speaker notes.

SPEAKER NOTES:
- After every content, go-deeper, table, checklist, textbox and qotm slide, add
  <div class="slide-notes" style="display:none;"> immediately after the slide's closing </div>.
- Write notes as HTML: <p> paragraphs, <ul><li> lists and <strong>Label:</strong> headings.

THANK YOU SLIDE (copy exactly, only replace [PAGE_NUMBER]):
%[3]s

FORMATTING:
- Return ONLY raw HTML elements, no markdown, no code blocks, no explanations.
- Do not number slides or add section labels such as "1. Title Page:".
- Start immediately with <div class="slide">.
- Use the exact CSS classes above and <img src="%[1]s" alt="%[2]s Logo"> for every logo.
- Number pages sequentially starting from 1.
- Never omit, paraphrase or modify the disclaimer text.

Return only the slide elements without html, head or body tags.`, p.logo(), p.brand(), p.ThankYouHTML())
	return b.String()
}

// BuildChunkPrompt asks for 1-3 content slides for one chunk of a long document. index is
// zero based.
func (p Prompts) BuildChunkPrompt(chunk string, index, total int, templateStyles string) string {
	return fmt.Sprintf(`You are an expert at converting document content into presentation slides.

Document content (chunk %d of %d):
"""
%s
"""

Template styles to use:
"""
%s
"""

Create 1-3 content slides from this chunk. Each slide must:
1. Use the div.content-slide structure with a content-header holding the title and logo.
2. Put p.content-paragraph elements in content-body.
3. Include a content-page-number.
4. Be comprehensive but not overcrowded, at most 5 bullets of 12 words.
5. Use <img src="%s" alt="%s Logo"> for the logo.
6. Be followed by <div class="slide-notes" style="display:none;"> with the detail left off the slide.

FORMATTING:
- Return ONLY raw HTML elements, no markdown, no code blocks, no explanations.
- Do not number slides or add section labels.
- Start immediately with <div class="content-slide">.

Return only the div.content-slide elements.`, index+1, total, chunk, templateStyles, p.logo(), p.brand())
}

// BuildExtractionPrompt asks for the slide JSON behind a generated HTML deck.
func (p Prompts) BuildExtractionPrompt(html string) string {
	header := fmt.Sprintf("%s Monthly Briefing: %s", p.brand(), p.now().Format("January 2, 2006"))
	return fmt.Sprintf(`Analyze this HTML presentation and extract the structured slide data.

HTML Content:
"""
%s
"""

Return ONLY a JSON object of this shape:
{
  "slides": [
    {"type": "title", "briefing_header": %q, "title": "...", "subtitle": "...", "notes": "..."},
    {"type": "agenda", "title": "Agenda", "items": ["...", "..."]},
    {"type": "content", "title": "...", "content": ["paragraph", "..."], "notes": "..."},
    {"type": "go_deeper", "title": "...", "content": ["..."]},
    {"type": "table", "title": "...", "headers": ["..."], "rows": [["...", "..."]]},
    {"type": "checklist", "title": "...", "content": ["..."], "checklist_heading": "...", "checklist_items": [{"text": "...", "checked": true}]},
    {"type": "textbox", "title": "...", "boxes": [{"header": "...", "content": "...", "color": "teal"}]},
    {"type": "transition", "title": "..."},
    {"type": "qotm", "title": "...", "scenario": ["..."], "rule": ["..."], "action": ["..."]},
    {"type": "thankyou"}
  ]
}

Rules:
1. Extract the real text of the HTML elements, never template placeholder text.
2. Title slide: take div.title and div.subtitle.
3. briefing_header is always %q.
4. Agenda: every li.agenda-item without its checkmark.
5. Content: div.content-title and every p.content-paragraph.
6. Map div.table-slide, div.checklist-slide, div.textbox-slide, div.qotm-slide, div.go-deeper-slide and
   div.transition-alt-slide to their types; a content-slide titled "Go Deeper" is go_deeper.
7. Copy div.slide-notes (or div.speaker-notes) into "notes" for the slide it follows or contains.
8. Decode HTML entities and use plain ASCII punctuation.
9. Omit slide types that are not present. Return only valid JSON, no explanations or markdown.`, html, header, header)
}

// TemplateStyles returns the first <style> block of a template page with legacy media paths
// rewritten to /assets/.
func TemplateStyles(templateHTML string) string {
	m := styleBlock.FindStringSubmatch(templateHTML)
	if m == nil {
		return ""
	}
	return RewriteAssetURLs(m[1])
}

// RewriteAssetURLs points legacy media references at /assets/.
func RewriteAssetURLs(s string) string {
	return legacyAssets.ReplaceAllString(s, "url('/assets/")
}

// CleanHTMLResponse strips markdown fences and the numbered or section labels models tend
// to put in front of slide markup.
func CleanHTMLResponse(s string) string {
	s = codeFence.ReplaceAllString(s, "")
	s = numberedLabel.ReplaceAllString(s, "")
	s = sectionLabel.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ChunkText splits text on sentence boundaries into chunks of at most maxTokens estimated
// tokens. A single sentence larger than maxTokens becomes its own chunk.
func ChunkText(text string, maxTokens int) []string {
	if maxTokens <= 0 {
		maxTokens = DefaultChunkTokens
	}
	var (
		chunks []string
		cur    string
	)
	for _, sentence := range sentenceEnd.Split(text, -1) {
		if strings.TrimSpace(sentence) == "" {
			continue
		}
		next := cur + sentence + "."
		if EstimateTokens(next) > maxTokens && cur != "" {
			chunks = append(chunks, strings.TrimSpace(cur))
			cur = sentence + "."
			continue
		}
		cur = next
	}
	if strings.TrimSpace(cur) != "" {
		chunks = append(chunks, strings.TrimSpace(cur))
	}
	return chunks
}
