package convert

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"briefdeck/internal/core"
	"briefdeck/internal/llm"
	"briefdeck/internal/normalize"
	"briefdeck/internal/store"
)

type fakeOracle struct {
	mu       sync.Mutex
	requests []llm.Request
	generate func(req llm.Request) (string, error)
}

func (f *fakeOracle) Generate(_ context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.generate(req)
}

func (f *fakeOracle) Model() string { return "fake" }

func (f *fakeOracle) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

var fixedNow = func() time.Time { return time.UnixMilli(1700000000000) }

func buildDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var body strings.Builder
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	doc := `<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() + `</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write([]byte(doc)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

type fixture struct {
	svc    *Service
	oracle *fakeOracle
	store  *store.Store
	public string
}

func newFixture(t *testing.T, generate func(req llm.Request) (string, error), cfg *Config) *fixture {
	t.Helper()
	st, err := store.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	public := t.TempDir()
	oracle := &fakeOracle{generate: generate}
	svc, err := New(Options{
		Oracle:   oracle,
		Sink:     store.NewFileSink(public, "previews", "downloads"),
		Recorder: st,
		Cache:    st,
		Config:   cfg,
		Prompts:  llm.Prompts{Brand: "Acme"},
		Now:      fixedNow,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &fixture{svc: svc, oracle: oracle, store: st, public: public}
}

const slideHTML = "```html\n<div class=\"slide\"><div class=\"content\"><div class=\"title\">Wage Update</div></div></div>\n```"

func TestProcessDocument(t *testing.T) {
	f := newFixture(t, func(llm.Request) (string, error) { return slideHTML, nil }, nil)

	data := buildDocx(t,
		"Overtime Threshold Increase",
		"The salary threshold for exempt employees rises on July 1 and employers must review classifications.",
		"Office Closure",
		"The office is closed on Monday.",
	)
	preview, err := f.svc.ProcessDocument(context.Background(), "briefing.DOCX", data)
	if err != nil {
		t.Fatalf("ProcessDocument: %v", err)
	}

	if preview.PresentationID != "1700000000000" {
		t.Errorf("PresentationID = %q", preview.PresentationID)
	}
	if preview.PreviewURL != "/previews/presentation_1700000000000.html" {
		t.Errorf("PreviewURL = %q", preview.PreviewURL)
	}
	if preview.ChunksProcessed != 1 {
		t.Errorf("ChunksProcessed = %d, want 1", preview.ChunksProcessed)
	}
	if len(preview.Classifications) != 2 {
		t.Fatalf("expected 2 classified articles, got %+v", preview.Classifications)
	}
	if !strings.Contains(preview.OriginalContent, "Office Closure") {
		t.Errorf("OriginalContent = %q", preview.OriginalContent)
	}

	for _, want := range []string{`<div class="slide">`, "url('/assets/image9.jpg')", "<body>", "</html>"} {
		if !strings.Contains(preview.HTML, want) {
			t.Errorf("preview html missing %q", want)
		}
	}
	if strings.Contains(preview.HTML, "```") {
		t.Error("code fences should be stripped")
	}

	saved, err := os.ReadFile(filepath.Join(f.public, "previews", "presentation_1700000000000.html"))
	if err != nil {
		t.Fatalf("preview not saved: %v", err)
	}
	if string(saved) != preview.HTML {
		t.Error("saved preview differs from response")
	}

	req := f.oracle.requests[0]
	if req.Kind != llm.KindSlides || req.MaxTokens != llm.SlidesMaxTokens {
		t.Errorf("unexpected request: %+v", req)
	}
	if !strings.Contains(req.Prompt, "SLIDE BUDGET BY ARTICLE") || !strings.Contains(req.Prompt, `"Overtime Threshold Increase"`) {
		t.Error("slides prompt should carry the slide budget")
	}

	conv, err := f.store.GetConversion(preview.PresentationID)
	if err != nil || conv == nil {
		t.Fatalf("conversion not recorded: %v", err)
	}
	if conv.SourceName != "briefing.DOCX" || len(conv.Classifications) != 2 {
		t.Errorf("recorded conversion = %+v", conv)
	}
}

func TestProcessDocument_InvalidInput(t *testing.T) {
	f := newFixture(t, func(llm.Request) (string, error) { return slideHTML, nil }, nil)

	tests := []struct {
		name string
		file string
		data []byte
	}{
		{"wrong extension", "notes.pdf", []byte("%PDF")},
		{"empty file", "a.docx", nil},
		{"not a docx", "a.docx", []byte("plain text")},
		{"no text", "a.docx", buildDocx(t)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.ProcessDocument(context.Background(), tt.file, tt.data)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("error = %v, want ErrInvalidInput", err)
			}
		})
	}
	if f.oracle.calls() != 0 {
		t.Errorf("oracle called %d times for invalid input", f.oracle.calls())
	}
}

func TestProcessDocument_Chunks(t *testing.T) {
	f := newFixture(t, func(req llm.Request) (string, error) {
		return "<div class=\"content-slide\"></div>", nil
	}, &Config{ChunkTokens: 20})

	var paras []string
	for i := 0; i < 6; i++ {
		paras = append(paras, "Employers in every state must post the updated wage notice.")
	}
	preview, err := f.svc.ProcessDocument(context.Background(), "long.docx", buildDocx(t, paras...))
	if err != nil {
		t.Fatalf("ProcessDocument: %v", err)
	}
	if preview.ChunksProcessed < 2 || preview.ChunksProcessed != f.oracle.calls() {
		t.Fatalf("ChunksProcessed = %d, oracle calls = %d", preview.ChunksProcessed, f.oracle.calls())
	}
	if !strings.Contains(f.oracle.requests[1].Prompt, "chunk 2 of") {
		t.Error("later chunks should use the chunk prompt")
	}
}

func TestProcessDocument_OracleError(t *testing.T) {
	f := newFixture(t, func(llm.Request) (string, error) { return "", errors.New("rate limited") }, nil)

	_, err := f.svc.ProcessDocument(context.Background(), "a.docx", buildDocx(t, "Heading", "Some body text."))
	if err == nil || errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestProcessDocument_NoOracle(t *testing.T) {
	svc, err := New(Options{Sink: store.NewFileSink(t.TempDir(), "", "")})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ProcessDocument(context.Background(), "a.docx", buildDocx(t, "x")); !errors.Is(err, ErrNoOracle) {
		t.Errorf("error = %v, want ErrNoOracle", err)
	}
}

const extractedJSON = "```json\n" + `{"slides":[
  {"type":"title","title":"Wage Update","subtitle":"March"},
  {"type":"content","title":"Overtime","content":["Threshold rises","Review roles"]}
]}` + "\n```"

func TestConvertToPPTX(t *testing.T) {
	f := newFixture(t, func(llm.Request) (string, error) { return extractedJSON, nil }, nil)

	dl, err := f.svc.ConvertToPPTX(context.Background(), "42", `<div class="slide"><div class="title">Wage Update</div></div>`)
	if err != nil {
		t.Fatalf("ConvertToPPTX: %v", err)
	}
	if dl.Slides != 2 {
		t.Errorf("Slides = %d, want 2", dl.Slides)
	}
	if dl.DownloadURL != "/downloads/presentation_42.pptx" || dl.Filename != "presentation_42.pptx" {
		t.Errorf("download = %+v", dl)
	}

	data, err := os.ReadFile(filepath.Join(f.public, "downloads", "presentation_42.pptx"))
	if err != nil {
		t.Fatalf("pptx not saved: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("pptx is not a zip: %v", err)
	}
	slideParts := 0
	for _, zf := range zr.File {
		if strings.HasPrefix(zf.Name, "ppt/slides/slide") && strings.HasSuffix(zf.Name, ".xml") {
			slideParts++
		}
	}
	if slideParts != 2 {
		t.Errorf("slide parts = %d, want 2", slideParts)
	}

	req := f.oracle.requests[0]
	if req.Kind != llm.KindExtract || req.MaxTokens != llm.ExtractMaxTokens {
		t.Errorf("unexpected request: %+v", req)
	}

	conv, _ := f.store.GetConversion("42")
	if conv == nil || conv.SlideCount != 2 || conv.DownloadURL != dl.DownloadURL {
		t.Errorf("download not recorded: %+v", conv)
	}
}

func TestConvertToPPTX_Fallback(t *testing.T) {
	f := newFixture(t, func(llm.Request) (string, error) { return "I could not parse that.", nil }, nil)

	html := `<div class="slide"><div class="title">Wage Update</div></div>
<div class="content-slide"><div class="content-title">Overtime</div><p class="content-paragraph">Threshold rises</p></div>`
	dl, err := f.svc.ConvertToPPTX(context.Background(), "7", html)
	if err != nil {
		t.Fatalf("ConvertToPPTX: %v", err)
	}
	if dl.Slides != 2 {
		t.Errorf("Slides = %d, want 2", dl.Slides)
	}
}

func TestConvertToPPTX_OracleFailureFallsBack(t *testing.T) {
	f := newFixture(t, func(llm.Request) (string, error) { return "", errors.New("timeout") }, nil)

	dl, err := f.svc.ConvertToPPTX(context.Background(), "8", `<div class="slide"><div class="title">Hello</div></div>`)
	if err != nil {
		t.Fatalf("ConvertToPPTX: %v", err)
	}
	if dl.Slides != 1 {
		t.Errorf("Slides = %d, want 1", dl.Slides)
	}
}

func TestConvertToPPTX_Errors(t *testing.T) {
	f := newFixture(t, func(llm.Request) (string, error) { return "{}", nil }, nil)

	if _, err := f.svc.ConvertToPPTX(context.Background(), "1", "  "); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty html error = %v, want ErrInvalidInput", err)
	}
	if _, err := f.svc.ConvertToPPTX(context.Background(), "1", "<p>nothing here</p>"); !errors.Is(err, normalize.ErrNoSlides) {
		t.Errorf("no slides error = %v, want ErrNoSlides", err)
	}
}

func TestConvertToPPTX_EnforcesBudget(t *testing.T) {
	const deck = `{"slides":[
  {"type":"content","title":"Overtime Threshold Increase","content":["a"]},
  {"type":"content","title":"Overtime Threshold Details","content":["b"]},
  {"type":"content","title":"Overtime Threshold Examples","content":["c"]}
]}`
	f := newFixture(t, func(llm.Request) (string, error) { return deck, nil }, nil)

	cls := []core.Classification{{Title: "Overtime Threshold Increase", Tier: core.TierCritical}}
	if _, err := f.store.RecordPreview("99", "a.docx", "/previews/presentation_99.html", cls); err != nil {
		t.Fatal(err)
	}

	dl, err := f.svc.ConvertToPPTX(context.Background(), "99", "<div>deck</div>")
	if err != nil {
		t.Fatalf("ConvertToPPTX: %v", err)
	}
	if dl.Slides != 2 {
		t.Errorf("Slides = %d, want 2 (critical budget)", dl.Slides)
	}
}

func TestConvertToPPTX_CachesExtraction(t *testing.T) {
	f := newFixture(t, func(llm.Request) (string, error) { return extractedJSON, nil }, nil)

	html := `<div class="slide"><div class="title">Wage Update</div></div>`
	for _, id := range []string{"1", "2"} {
		if _, err := f.svc.ConvertToPPTX(context.Background(), id, html); err != nil {
			t.Fatalf("ConvertToPPTX(%s): %v", id, err)
		}
	}
	if f.oracle.calls() != 1 {
		t.Errorf("oracle calls = %d, want 1", f.oracle.calls())
	}
}

func TestConvertToPPTX_NoOracle(t *testing.T) {
	public := t.TempDir()
	svc, err := New(Options{Sink: store.NewFileSink(public, "", ""), Now: fixedNow})
	if err != nil {
		t.Fatal(err)
	}
	dl, err := svc.ConvertToPPTX(context.Background(), "", `<div class="slide"><div class="title">Offline</div></div>`)
	if err != nil {
		t.Fatalf("ConvertToPPTX: %v", err)
	}
	if dl.PresentationID != "1700000000000" || dl.Slides != 1 {
		t.Errorf("download = %+v", dl)
	}
}

func TestAssemblePreview(t *testing.T) {
	tmpl := "<html><head><style>.a{background:url('desiredresults/assets/ppt/media/x.png')}</style></HEAD><body>ignored</body></html>"
	got := AssemblePreview(tmpl, `<div class="slide"></div>`)
	if !strings.Contains(got, "url('/assets/x.png')") {
		t.Errorf("asset urls not rewritten: %s", got)
	}
	if strings.Contains(got, "ignored") {
		t.Error("template body should be replaced")
	}
	if !strings.HasSuffix(got, "<div class=\"slide\"></div>\n</body>\n</html>") {
		t.Errorf("unexpected tail: %s", got)
	}

	bare := AssemblePreview("", "<p>x</p>")
	if !strings.HasPrefix(bare, "<!DOCTYPE html>") {
		t.Errorf("missing default head: %s", bare)
	}
}
