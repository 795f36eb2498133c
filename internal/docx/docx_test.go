package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"
)

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

func buildDocx(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		f, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := f.Write([]byte(body)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func documentXML(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><w:document ` + wordNS + `><w:body>` + body + `</w:body></w:document>`
}

const sampleBody = `
<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Overtime Rule Update</w:t></w:r></w:p>
<w:p><w:r><w:t xml:space="preserve">The salary threshold </w:t></w:r><w:r><w:rPr><w:b/></w:rPr><w:t>rises</w:t></w:r><w:r><w:t xml:space="preserve"> on July 1.</w:t></w:r></w:p>
<w:p><w:pPr><w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr></w:pPr><w:r><w:t>Review exempt roles</w:t></w:r></w:p>
<w:p><w:r><w:t>Name</w:t><w:tab/><w:t>Value</w:t><w:br/><w:t>Next line</w:t></w:r></w:p>
<w:p></w:p>
<w:tbl>
  <w:tr><w:tc><w:p><w:r><w:t>State</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Rate</w:t></w:r></w:p></w:tc></w:tr>
  <w:tr><w:tc><w:p><w:r><w:t>CA</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>$16.50</w:t></w:r></w:p><w:p><w:r><w:t>per hour</w:t></w:r></w:p></w:tc></w:tr>
  <w:tr><w:tc><w:p/></w:tc><w:tc><w:p/></w:tc></w:tr>
</w:tbl>
<w:p><w:r><w:t>Closing &amp; next steps</w:t></w:r></w:p>`

func TestParse(t *testing.T) {
	data := buildDocx(t, map[string]string{
		"[Content_Types].xml": `<Types/>`,
		"word/document.xml":   documentXML(sampleBody),
	})
	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	p := doc.Paragraphs
	if len(p) != 8 {
		t.Fatalf("got %d paragraphs: %+v", len(p), p)
	}
	if !p[0].Heading() || p[0].Text != "Overtime Rule Update" {
		t.Errorf("heading = %+v", p[0])
	}
	if p[1].Text != "The salary threshold rises on July 1." {
		t.Errorf("runs not joined: %q", p[1].Text)
	}
	if !p[2].List {
		t.Errorf("numbered paragraph not marked as list")
	}
	if p[3].Text != "Name\tValue\nNext line" {
		t.Errorf("tab/break = %q", p[3].Text)
	}
	if len(p[5].Cells) != 2 || p[5].Cells[0] != "State" {
		t.Errorf("header row = %+v", p[5])
	}
	if p[6].Cells[1] != "$16.50 per hour" {
		t.Errorf("multi-paragraph cell = %q", p[6].Cells[1])
	}
	if p[7].Text != "Closing & next steps" {
		t.Errorf("entity not decoded: %q", p[7].Text)
	}
}

func TestExtractText(t *testing.T) {
	data := buildDocx(t, map[string]string{"word/document.xml": documentXML(sampleBody)})
	got, err := ExtractText(data)
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	want := "Overtime Rule Update\n" +
		"The salary threshold rises on July 1.\n" +
		"• Review exempt roles\n" +
		"Name\tValue\nNext line\n" +
		"State | Rate\n" +
		"CA | $16.50 per hour\n" +
		"Closing & next steps"
	if got != want {
		t.Errorf("ExtractText() =\n%q\nwant\n%q", got, want)
	}
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"plain text", []byte("just some text, not a document")},
		{"zip without document", buildDocx(t, map[string]string{"xl/workbook.xml": "<workbook/>"})},
		{"truncated zip", []byte("PK\x03\x04garbage")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			if !errors.Is(err, ErrNotDocx) {
				t.Errorf("Parse() error = %v, want ErrNotDocx", err)
			}
		})
	}
}

func TestParse_MalformedXML(t *testing.T) {
	data := buildDocx(t, map[string]string{"word/document.xml": documentXML(`<w:p><w:r><w:t>open`)})
	_, err := Parse(data)
	if err == nil {
		t.Fatal("expected error for malformed document.xml")
	}
	if errors.Is(err, ErrNotDocx) {
		t.Errorf("malformed body should not be reported as a non-docx payload: %v", err)
	}
}
