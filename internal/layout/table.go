package layout

import (
	"fmt"
	"unicode/utf8"

	"briefdeck/internal/slides"
)

const (
	tableX         = 0.5
	tableWidth     = 9.0
	tableTop       = 1.3
	tableMinRow    = 0.35
	tableCellPadY  = 0.1
	tableMinColLen = 3
)

// PaginateRows splits rows into pages of at most perPage rows. An empty table is one empty page.
func PaginateRows(rows [][]string, perPage int) [][][]string {
	if perPage < 1 {
		perPage = 1
	}
	if len(rows) == 0 {
		return [][][]string{nil}
	}
	pages := make([][][]string, 0, (len(rows)+perPage-1)/perPage)
	for start := 0; start < len(rows); start += perPage {
		end := min(start+perPage, len(rows))
		pages = append(pages, rows[start:end])
	}
	return pages
}

// tableFontSize steps down as the longest cell grows.
func tableFontSize(longest int) float64 {
	switch {
	case longest <= 20:
		return 14
	case longest <= 40:
		return 12
	case longest <= 80:
		return 11
	default:
		return 10
	}
}

// columnWidths splits width in proportion to each column's longest cell.
func columnWidths(headers []string, rows [][]string, width float64) ([]float64, int) {
	lengths := make([]int, len(headers))
	longest := 0
	observe := func(i int, cell string) {
		n := utf8.RuneCountInString(cell)
		if n > lengths[i] {
			lengths[i] = n
		}
		if n > longest {
			longest = n
		}
	}
	for i, h := range headers {
		observe(i, h)
	}
	for _, row := range rows {
		for i := 0; i < len(headers) && i < len(row); i++ {
			observe(i, row[i])
		}
	}

	total := 0
	for i := range lengths {
		lengths[i] = max(lengths[i], tableMinColLen)
		total += lengths[i]
	}
	widths := make([]float64, len(lengths))
	for i, n := range lengths {
		widths[i] = width * float64(n) / float64(total)
	}
	return widths, longest
}

// rowHeight is the forced height when set, otherwise the larger of the minimum and an even
// split of the available height, raised for cells that wrap.
func (r *renderer) rowHeight(headers []string, rows [][]string, widths []float64, font, avail float64) float64 {
	if r.e.tableRowHeight > 0 {
		return r.e.tableRowHeight
	}
	h := max(tableMinRow, avail/float64(len(rows)+1))
	for _, row := range append([][]string{headers}, rows...) {
		for i := 0; i < len(widths) && i < len(row); i++ {
			need := EstimateHeight(row[i], widths[i]-0.1, font) + tableCellPadY
			h = max(h, need)
		}
	}
	// Always leave room for the header and one data row.
	return min(h, avail/2)
}

func (r *renderer) VisitTable(s *slides.Table) {
	headers := s.Headers
	if len(headers) == 0 && len(s.Rows) > 0 {
		headers = make([]string, len(s.Rows[0]))
	}
	if len(headers) == 0 {
		c := r.canvas(slides.KindTable, s.Title)
		r.header(c, s.Title)
		r.pageNumber(c, r.e.brand.Color)
		r.attachNotes(c, s.Notes)
		return
	}

	avail := SafeBottom - tableTop
	widths, longest := columnWidths(headers, s.Rows, tableWidth)
	font := tableFontSize(longest)
	rowH := r.rowHeight(headers, s.Rows, widths, font, avail)
	perPage := max(floorRows(avail, rowH)-1, 1)

	pages := PaginateRows(s.Rows, perPage)
	for k, page := range pages {
		title := s.Title
		if len(pages) > 1 {
			title = fmt.Sprintf("%s (%d/%d)", s.Title, k+1, len(pages))
		}
		c := r.canvas(slides.KindTable, title)
		r.header(c, title)

		y := tableTop
		r.tableRow(c, "table-header", headers, widths, y, rowH, r.e.brand.Color, r.bold(font, ColorWhite))
		y += rowH
		for i, row := range page {
			fill, color := ColorTeal, ColorWhite
			if i%2 == 1 {
				fill, color = ColorGray, ColorText
			}
			r.tableRow(c, "table-cell", row, widths, y, rowH, fill, r.font(font, color))
			y += rowH
		}

		r.pageNumber(c, r.e.brand.Color)
		if k == 0 {
			r.attachNotes(c, s.Notes)
		}
	}
}

func (r *renderer) tableRow(c *Canvas, role string, cells []string, widths []float64, y, h float64, fill string, f Font) {
	x := tableX
	for i, w := range widths {
		text := ""
		if i < len(cells) {
			text = cells[i]
		}
		c.Add(Shape{
			Kind: ShapeRect, Role: role,
			X: x, Y: y, W: w, H: h,
			Fill: fill, Line: ColorWhite, LineWidth: 1,
			Text: text, Font: f, Align: AlignLeft, VAlign: AlignMiddle,
		})
		x += w
	}
}
