// Package docx reads the plain text of Word documents.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNotDocx is returned for payloads that are not a Word document package.
var ErrNotDocx = errors.New("not a docx document")

const (
	documentPart = "word/document.xml"
	// maxPartSize bounds the decompressed document part.
	maxPartSize = 64 << 20
)

// Paragraph is one block of document text.
type Paragraph struct {
	Style string
	Text  string
	// List is set for numbered or bulleted paragraphs.
	List bool
	// Cells holds the cell texts when the paragraph is a table row.
	Cells []string
}

// Heading reports whether the paragraph uses a heading or title style.
func (p Paragraph) Heading() bool {
	s := strings.ToLower(p.Style)
	return strings.HasPrefix(s, "heading") || s == "title" || s == "subtitle"
}

// Document is the parsed body of a .docx file.
type Document struct {
	Paragraphs []Paragraph
}

// Text renders the document one paragraph per line. List paragraphs get a "• " prefix and
// table rows are joined with " | ". Empty paragraphs are dropped.
func (d *Document) Text() string {
	var lines []string
	for _, p := range d.Paragraphs {
		text := p.Text
		switch {
		case len(p.Cells) > 0:
			text = strings.Join(p.Cells, " | ")
		case p.List:
			text = "• " + text
		}
		if strings.TrimSpace(text) != "" {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, "\n")
}

// ExtractText returns the plain text of a .docx payload.
func ExtractText(data []byte) (string, error) {
	doc, err := Parse(data)
	if err != nil {
		return "", err
	}
	return doc.Text(), nil
}

// Parse reads word/document.xml out of a .docx payload.
func Parse(data []byte) (*Document, error) {
	if len(data) < 4 || !bytes.HasPrefix(data, []byte("PK")) {
		return nil, ErrNotDocx
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDocx, err)
	}
	body, err := readZipFile(zr.File, documentPart)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDocx, err)
	}
	paragraphs, err := parseBody(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", documentPart, err)
	}
	return &Document{Paragraphs: paragraphs}, nil
}

func readZipFile(files []*zip.File, target string) ([]byte, error) {
	for _, f := range files {
		if f == nil || !strings.EqualFold(strings.TrimSpace(f.Name), target) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		body, err := io.ReadAll(io.LimitReader(rc, maxPartSize+1))
		if err != nil {
			return nil, err
		}
		if len(body) > maxPartSize {
			return nil, fmt.Errorf("%s exceeds %d bytes", target, maxPartSize)
		}
		return body, nil
	}
	return nil, fmt.Errorf("file not found: %s", target)
}

// parseBody walks the WordprocessingML token stream. Paragraphs inside table cells are
// collected into one row paragraph per <w:tr>.
func parseBody(body []byte) ([]Paragraph, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	var (
		out       []Paragraph
		cur       Paragraph
		text      strings.Builder
		inPara    bool
		inText    bool
		tableRows int // depth of open <w:tr>
		row       []string
		cell      strings.Builder
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return out, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tr":
				tableRows++
				row = nil
			case "tc":
				cell.Reset()
			case "p":
				inPara = true
				cur = Paragraph{}
				text.Reset()
			case "pStyle":
				if inPara {
					cur.Style = attr(t, "val")
				}
			case "numPr":
				if inPara {
					cur.List = true
				}
			case "t":
				inText = inPara
			case "tab":
				if inPara {
					text.WriteByte('\t')
				}
			case "br", "cr":
				if inPara {
					text.WriteByte('\n')
				}
			}
		case xml.CharData:
			if inText {
				text.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if !inPara {
					continue
				}
				cur.Text = strings.TrimSpace(text.String())
				if tableRows > 0 {
					if cell.Len() > 0 && cur.Text != "" {
						cell.WriteByte(' ')
					}
					cell.WriteString(cur.Text)
				} else {
					out = append(out, cur)
				}
				inPara, inText = false, false
			case "tc":
				if tableRows > 0 {
					row = append(row, strings.TrimSpace(cell.String()))
				}
			case "tr":
				if tableRows > 0 {
					tableRows--
					if rowHasText(row) {
						out = append(out, Paragraph{Cells: row})
					}
					row = nil
				}
			}
		}
	}
	return out, nil
}

func attr(e xml.StartElement, local string) string {
	for _, a := range e.Attr {
		if strings.EqualFold(a.Name.Local, local) {
			return strings.TrimSpace(a.Value)
		}
	}
	return ""
}

func rowHasText(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return true
		}
	}
	return false
}
