package slides

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Decode reads one slide description. The only error is a payload that is not a JSON object;
// missing or mistyped fields decode to their zero values and unrecognized tags to *Unknown.
func Decode(raw json.RawMessage) (Slide, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("slide description is not an object: %w", err)
	}
	if fields == nil {
		return nil, fmt.Errorf("slide description is null")
	}

	f := object(fields)
	tag := normalizeTag(f.text("type"))
	common := Common{
		Type:  Kind(tag),
		Title: f.text("title"),
		Notes: f.text("notes"),
	}

	switch Kind(tag) {
	case KindTitle:
		return &Title{
			Common:         common,
			BriefingHeader: f.text("briefing_header"),
			Subtitle:       f.text("subtitle"),
		}, nil
	case KindAgenda:
		return &Agenda{Common: common, Items: f.strings("items")}, nil
	case KindContent:
		return &Content{Common: common, Content: f.strings("content"), Bullets: f.flag("bullets")}, nil
	case KindGoDeeper:
		return &GoDeeper{Common: common, Content: f.strings("content")}, nil
	case KindTable:
		headers := f.strings("headers")
		return &Table{Common: common, Headers: headers, Rows: f.rows("rows", len(headers))}, nil
	case KindChecklist:
		return &Checklist{
			Common:             common,
			Content:            f.strings("content"),
			ChecklistHeading:   f.text("checklist_heading"),
			ChecklistPanelText: f.text("checklist_panel_text"),
			ChecklistItems:     f.checklistItems("checklist_items"),
		}, nil
	case KindTextbox:
		return &Textbox{Common: common, Boxes: f.boxes("boxes")}, nil
	case KindTransition, KindTransitionAlt:
		return &Transition{Common: common, Alt: Kind(tag) == KindTransitionAlt}, nil
	case KindQOTM:
		return &QOTM{
			Common:   common,
			Scenario: f.strings("scenario"),
			Rule:     f.strings("rule"),
			Action:   f.strings("action"),
		}, nil
	case KindThankYou:
		return &ThankYou{Common: common}, nil
	}
	return &Unknown{Common: common, Tag: f.text("type")}, nil
}

// DecodeAll decodes a list of descriptions, skipping entries that are not objects.
// The second return value counts the skipped entries.
func DecodeAll(raws []json.RawMessage) ([]Slide, int) {
	out := make([]Slide, 0, len(raws))
	skipped := 0
	for _, raw := range raws {
		s, err := Decode(raw)
		if err != nil {
			skipped++
			continue
		}
		out = append(out, s)
	}
	return out, skipped
}

// ParseFlag interprets the loose booleans models emit: true, "true", "yes", 1.
func ParseFlag(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case float64:
		return b == 1
	case int:
		return b == 1
	case string:
		switch normalizeTag(b) {
		case "true", "yes", "1", "y", "checked":
			return true
		}
	}
	return false
}

func normalizeTag(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

type object map[string]json.RawMessage

func (o object) value(key string) any {
	raw, ok := o[key]
	if !ok {
		return nil
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

func (o object) text(key string) string {
	return scalarText(o.value(key))
}

func (o object) flag(key string) bool {
	return ParseFlag(o.value(key))
}

func (o object) strings(key string) []string {
	return stringList(o.value(key))
}

// rows normalizes every row to width cells when width > 0.
func (o object) rows(key string, width int) [][]string {
	list, ok := o.value(key).([]any)
	if !ok {
		return nil
	}
	rows := make([][]string, 0, len(list))
	for _, item := range list {
		row := stringList(item)
		if width > 0 {
			switch {
			case len(row) > width:
				row = row[:width]
			case len(row) < width:
				row = append(row, make([]string, width-len(row))...)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func (o object) checklistItems(key string) []ChecklistItem {
	list, ok := o.value(key).([]any)
	if !ok {
		return nil
	}
	items := make([]ChecklistItem, 0, len(list))
	for _, item := range list {
		switch v := item.(type) {
		case map[string]any:
			items = append(items, ChecklistItem{Text: scalarText(v["text"]), Checked: ParseFlag(v["checked"])})
		case string:
			items = append(items, ChecklistItem{Text: v})
		}
	}
	return items
}

func (o object) boxes(key string) []Box {
	list, ok := o.value(key).([]any)
	if !ok {
		return nil
	}
	boxes := make([]Box, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		boxes = append(boxes, Box{
			Header:  scalarText(m["header"]),
			Content: strings.Join(stringList(m["content"]), " "),
			Color:   ParseBoxColor(scalarText(m["color"])),
		})
	}
	return boxes
}

func scalarText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

// stringList accepts an array of scalars or a single string.
func stringList(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			switch item.(type) {
			case string, float64, bool:
				out = append(out, scalarText(item))
			case nil:
				out = append(out, "")
			}
		}
		return out
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	}
	return nil
}
