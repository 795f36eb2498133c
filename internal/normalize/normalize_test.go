package normalize

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"briefdeck/internal/slides"
)

const previewHTML = `<html><body>
<div class="slide"><div class="content"><div class="briefing-header">Monthly Briefing</div><div class="title">Employment &amp; Labor Update</div><div class="subtitle">Fall edition</div></div></div>
<div class="agenda-slide"><ul>
  <li class="agenda-item"><span class="agenda-checkmark">✓</span> Overtime</li>
  <li class="agenda-item"><span class="agenda-checkmark">✓</span> Pay Transparency</li>
</ul></div>
<div class="content-slide"><div class="content-title">Overtime Rule</div>
  <p class="content-paragraph">Salary threshold rises.</p>
  <div class="speaker-notes"><p>Notes one</p></div>
  <div class="content-page-number">3</div></div>
<div class="content-slide"><div class="content-title">Pay Transparency</div>
  <ul><li>Post ranges<ul><li>Include benefits</li></ul></li></ul>
  <div class="content-page-number">4</div></div>
<div class="content-slide"><div class="content-title">State Roundup</div>
  <table><tr><th>State</th><th>Change</th></tr><tr><td>CA</td><td>New leave</td></tr><tr><td>NY</td></tr></table>
  <div class="notes">Review the handbook. The law changed.</div></div>
</body></html>`

func TestFromJSON(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   int
	}{
		{"plain", `{"slides":[{"type":"title","title":"A"}]}`, 1},
		{"fenced", "```json\n{\"slides\":[{\"type\":\"title\"},{\"type\":\"thankyou\"}]}\n```", 2},
		{"prose around", "Here you go:\n{\"slides\":[{\"type\":\"agenda\",\"items\":[\"x\"]}]}\nThanks!", 1},
		{"bare array", `[{"type":"content","content":["a"]}]`, 1},
		{"skips non-objects", `{"slides":[1,{"type":"title"}]}`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromJSON(tt.output)
			if err != nil {
				t.Fatalf("FromJSON() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d slides, want %d", len(got), tt.want)
			}
		})
	}
}

func TestFromJSON_Failures(t *testing.T) {
	for _, output := range []string{
		"",
		"no json here",
		`{"slides":[]}`,
		`{"other":true}`,
		`{"slides":[1,2]}`,
		`{"slides":[{"type":"title"}`,
	} {
		if _, err := FromJSON(output); err == nil {
			t.Errorf("FromJSON(%q) expected error", output)
		}
	}
}

func TestFromHTML(t *testing.T) {
	got, err := FromHTML(previewHTML)
	if err != nil {
		t.Fatalf("FromHTML() error = %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("got %d slides, want 5", len(got))
	}

	title := got[0].(*slides.Title)
	if title.Title != "Employment & Labor Update" || title.Subtitle != "Fall edition" || title.BriefingHeader != "Monthly Briefing" {
		t.Errorf("title = %+v", title)
	}

	agenda := got[1].(*slides.Agenda)
	if !reflect.DeepEqual(agenda.Items, []string{"Overtime", "Pay Transparency"}) {
		t.Errorf("agenda items = %#v", agenda.Items)
	}

	first := got[2].(*slides.Content)
	if first.Title != "Overtime Rule" || !reflect.DeepEqual(first.Content, []string{"Salary threshold rises."}) {
		t.Errorf("first content = %+v", first)
	}

	second := got[3].(*slides.Content)
	if !reflect.DeepEqual(second.Content, []string{"• Post ranges", "  - Include benefits"}) || !second.Bullets {
		t.Errorf("second content = %+v", second)
	}

	table := got[4].(*slides.Table)
	if table.Title != "State Roundup" || !reflect.DeepEqual(table.Headers, []string{"State", "Change"}) {
		t.Errorf("table = %+v", table)
	}
	if !reflect.DeepEqual(table.Rows, [][]string{{"CA", "New leave"}, {"NY", ""}}) {
		t.Errorf("table rows = %#v", table.Rows)
	}
}

func TestExtractNotes(t *testing.T) {
	got := ExtractNotes(previewHTML)
	want := []string{"<p>Notes one</p>", "", "Review the handbook. The law changed."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractNotes = %#v, want %#v", got, want)
	}
	if ExtractNotes("<p>no slides</p>") != nil {
		t.Error("markup without slide containers should yield no notes")
	}
}

const componentHTML = `<div class="checklist-slide"><div class="content-header"><div class="content-title">Overtime Actions</div></div>
  <div class="checklist-content"><h3 class="content-section-heading">What changes</h3><p class="checklist-item">Threshold rises to $58,656.</p></div>
  <div class="checklist-panel"><h2 class="checklist-content-heading">Employer Checklist</h2><div class="checklist-panel-content">Before July 1</div>
  <ul class="checklist-list"><li>Audit exempt roles</li><li class="checked">Budget raises</li></ul></div></div>
<div class="slide-notes" data-slide-type="checklist" style="display:none;"><p>Walk through the audit.</p></div>
<div class="textbox-slide"><div class="content-title">Two Views</div><div class="textbox-row">
  <div class="textbox"><div class="textbox-header">Federal</div><div class="textbox-content-gray">Rule stayed.</div></div>
  <div class="textbox"><div class="textbox-header">State</div><div class="textbox-content-teal">Rules apply.</div></div></div></div>
<div class="transition-alt-slide"><div class="transition-title">Hot Topics</div></div>
<div class="content-slide"><div class="content-title">Go Deeper: Overtime</div><ul><li>Prior rule history</li></ul></div>
<div class="qotm-slide"><div class="content-title">Can we cap remote pay?</div>
  <ul class="qotm-scenario"><li>Remote staff</li></ul><ul class="qotm-rule"><li>Local minimum applies</li></ul><ul class="qotm-action"><li>Map locations</li></ul></div>
<div class="slide-notes" style="display:none;">Confirm where each employee works.</div>
<div class="thankyou-slide"><div class="thankyou-content"><h1 class="thankyou-title">THANK YOU!</h1></div></div>`

func TestFromHTML_Components(t *testing.T) {
	got, err := FromHTML(componentHTML)
	if err != nil {
		t.Fatalf("FromHTML() error = %v", err)
	}
	if len(got) != 6 {
		t.Fatalf("got %d slides, want 6", len(got))
	}

	check, ok := got[0].(*slides.Checklist)
	if !ok {
		t.Fatalf("slide 0 = %T, want *slides.Checklist", got[0])
	}
	if check.Title != "Overtime Actions" || check.ChecklistHeading != "Employer Checklist" || check.ChecklistPanelText != "Before July 1" {
		t.Errorf("checklist = %+v", check)
	}
	if !reflect.DeepEqual(check.Content, []string{"What changes", "Threshold rises to $58,656."}) {
		t.Errorf("checklist content = %#v", check.Content)
	}
	wantItems := []slides.ChecklistItem{{Text: "Audit exempt roles"}, {Text: "Budget raises", Checked: true}}
	if !reflect.DeepEqual(check.ChecklistItems, wantItems) {
		t.Errorf("checklist items = %#v", check.ChecklistItems)
	}

	box := got[1].(*slides.Textbox)
	wantBoxes := []slides.Box{{Header: "Federal", Content: "Rule stayed.", Color: slides.BoxGray}, {Header: "State", Content: "Rules apply.", Color: slides.BoxTeal}}
	if box.Title != "Two Views" || !reflect.DeepEqual(box.Boxes, wantBoxes) {
		t.Errorf("textbox = %+v", box)
	}

	tr := got[2].(*slides.Transition)
	if tr.Title != "Hot Topics" || !tr.Alt || tr.Type != slides.KindTransitionAlt {
		t.Errorf("transition = %+v", tr)
	}

	if deeper, ok := got[3].(*slides.GoDeeper); !ok || deeper.Title != "Go Deeper: Overtime" {
		t.Errorf("slide 3 = %#v, want go deeper", got[3])
	}

	q := got[4].(*slides.QOTM)
	if q.Title != "Can we cap remote pay?" || !reflect.DeepEqual(q.Rule, []string{"Local minimum applies"}) || len(q.Scenario) != 1 || len(q.Action) != 1 {
		t.Errorf("qotm = %+v", q)
	}

	if _, ok := got[5].(*slides.ThankYou); !ok {
		t.Errorf("slide 5 = %T, want *slides.ThankYou", got[5])
	}
}

func TestExtractNotes_SlideNotesFollowSlide(t *testing.T) {
	got := ExtractNotes(componentHTML)
	want := []string{"<p>Walk through the audit.</p>", "", "", "Confirm where each employee works."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractNotes = %#v, want %#v", got, want)
	}
}

func TestNormalize_ReinjectsNotesInOrder(t *testing.T) {
	output := `{"slides":[
		{"type":"title","title":"Employment Update"},
		{"type":"agenda","items":["Overtime","Pay Transparency"]},
		{"type":"content","title":"Overtime Rule","content":["• Salary threshold rises"]},
		{"type":"content","title":"Pay Transparency","content":["• Post ranges"],"notes":"Model notes here."},
		{"type":"table","title":"State Roundup","headers":["State","Change"],"rows":[["CA","New leave"]]},
		{"type":"thankyou"}
	]}`

	deck, err := New(Options{}).Normalize(output, previewHTML)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if len(deck) != 6 {
		t.Fatalf("got %d slides, want 6", len(deck))
	}

	wantNotes := []string{
		"",
		"",
		"<p>Notes one</p>",
		"<p>Model notes here.</p>",
		"<ul>\n<li>Review the handbook.</li>\n</ul>\n<p>The law changed.</p>",
		"",
	}
	for i, s := range deck {
		if got := s.Base().Notes; got != wantNotes[i] {
			t.Errorf("slide %d (%s) notes = %q, want %q", i, s.Base().Type, got, wantNotes[i])
		}
	}
}

func TestNormalize_FallsBackToHTML(t *testing.T) {
	deck, err := New(Options{}).Normalize("I could not produce JSON, sorry.", previewHTML)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if len(deck) != 5 {
		t.Fatalf("got %d slides, want 5", len(deck))
	}
	if deck[2].Base().Notes != "<p>Notes one</p>" {
		t.Errorf("fallback slide notes = %q", deck[2].Base().Notes)
	}
}

func TestNormalize_NoSlides(t *testing.T) {
	_, err := New(Options{}).Normalize("not json", "<div>nothing</div>")
	if !errors.Is(err, ErrNoSlides) {
		t.Errorf("error = %v, want ErrNoSlides", err)
	}
}

func TestNormalize_CleansText(t *testing.T) {
	output := `{"slides":[
		{"type":"content","title":"Employer\u2019s \u201cDuty\u201d","content":["\u2022 Pay&nbsp;stubs\u2026","  - Sub\u200bitem"]},
		{"type":"textbox","boxes":[{"header":"A","content":"x","color":"Teal"},{"header":"B","content":"y","color":"blue"}]},
		{"type":"checklist","checklist_items":[{"text":"  ","checked":true},{"text":"Post notice","checked":"yes"}]}
	]}`
	deck, err := New(Options{}).Normalize(output, "")
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	content := deck[0].(*slides.Content)
	if content.Title != `Employer's "Duty"` {
		t.Errorf("title = %q", content.Title)
	}
	if !reflect.DeepEqual(content.Content, []string{"• Pay stubs...", "  - Subitem"}) {
		t.Errorf("content = %#v", content.Content)
	}

	box := deck[1].(*slides.Textbox)
	if box.Boxes[0].Color != slides.BoxTeal || box.Boxes[1].Color != slides.BoxGray {
		t.Errorf("box colors = %s, %s", box.Boxes[0].Color, box.Boxes[1].Color)
	}

	list := deck[2].(*slides.Checklist)
	if len(list.ChecklistItems) != 1 || list.ChecklistItems[0].Text != "Post notice" || !list.ChecklistItems[0].Checked {
		t.Errorf("checklist items = %+v", list.ChecklistItems)
	}
}

func TestFormatNotes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"already formatted", "<p>Keep</p><ul><li>as is</li></ul>", "<p>Keep</p><ul><li>as is</li></ul>"},
		{"strong counts as markup", "Say <strong>this</strong>", "Say <strong>this</strong>"},
		{"prose", "The rule changed. It applies now.", "<p>The rule changed.</p>\n<p>It applies now.</p>"},
		{
			"action verbs grouped",
			"Review the policy. Update handbooks! The rule changed. Train managers",
			"<ul>\n<li>Review the policy.</li>\n<li>Update handbooks!</li>\n</ul>\n<p>The rule changed.</p>\n<ul>\n<li>Train managers</li>\n</ul>",
		},
		{"escapes", "Wages & hours.", "<p>Wages &amp; hours.</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatNotes(tt.in); got != tt.want {
				t.Errorf("FormatNotes(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStripFences(t *testing.T) {
	got := StripFences("```json\n{\"a\":1}\n```")
	if strings.Contains(got, "`") || got != `{"a":1}` {
		t.Errorf("StripFences = %q", got)
	}
}
