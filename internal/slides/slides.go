// Package slides defines the typed slide descriptions produced by the structuring oracle
// and consumed by the layout engine.
package slides

// Kind is the "type" tag of a slide description.
type Kind string

const (
	KindTitle         Kind = "title"
	KindAgenda        Kind = "agenda"
	KindContent       Kind = "content"
	KindGoDeeper      Kind = "go_deeper"
	KindTable         Kind = "table"
	KindChecklist     Kind = "checklist"
	KindTextbox       Kind = "textbox"
	KindTransition    Kind = "transition"
	KindTransitionAlt Kind = "transition_alt"
	KindQOTM          Kind = "qotm"
	KindThankYou      Kind = "thankyou"
)

// Structural reports whether slides of this kind frame the deck rather than carry article
// content. Structural slides never receive speaker notes and are never budgeted.
func (k Kind) Structural() bool {
	switch k {
	case KindTitle, KindAgenda, KindTransition, KindTransitionAlt, KindThankYou:
		return true
	}
	return false
}

// Slide is one variant of the slide union. The unexported method closes the set to this package.
type Slide interface {
	Base() *Common
	Accept(v Visitor)
	slide()
}

// Visitor has one method per variant, so a renderer that misses a variant does not compile.
type Visitor interface {
	VisitTitle(s *Title)
	VisitAgenda(s *Agenda)
	VisitContent(s *Content)
	VisitGoDeeper(s *GoDeeper)
	VisitTable(s *Table)
	VisitChecklist(s *Checklist)
	VisitTextbox(s *Textbox)
	VisitTransition(s *Transition)
	VisitQOTM(s *QOTM)
	VisitThankYou(s *ThankYou)
	VisitUnknown(s *Unknown)
}

// Common holds the fields every variant carries.
type Common struct {
	Type  Kind   `json:"type"`
	Title string `json:"title,omitempty"`
	Notes string `json:"notes,omitempty"`
}

func (c *Common) Base() *Common { return c }
func (c *Common) slide()        {}

type Title struct {
	Common
	BriefingHeader string `json:"briefing_header,omitempty"`
	Subtitle       string `json:"subtitle,omitempty"`
}

// Agenda items with a leading two-space indent are sub-items.
type Agenda struct {
	Common
	Items []string `json:"items"`
}

// Content lines prefixed "• " are bullets, "  -" sub-bullets, anything else a heading or paragraph.
type Content struct {
	Common
	Content []string `json:"content"`
	Bullets bool     `json:"bullets,omitempty"`
}

type GoDeeper struct {
	Common
	Content []string `json:"content"`
}

// Table rows are padded or cut to the header length during decoding.
type Table struct {
	Common
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

type ChecklistItem struct {
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

type Checklist struct {
	Common
	Content            []string        `json:"content,omitempty"`
	ChecklistHeading   string          `json:"checklist_heading,omitempty"`
	ChecklistPanelText string          `json:"checklist_panel_text,omitempty"`
	ChecklistItems     []ChecklistItem `json:"checklist_items"`
}

// BoxColor is the panel color of a textbox. Only teal and gray exist.
type BoxColor string

const (
	BoxGray BoxColor = "gray"
	BoxTeal BoxColor = "teal"
)

// ParseBoxColor maps anything other than "teal" to gray.
func ParseBoxColor(s string) BoxColor {
	if normalizeTag(s) == string(BoxTeal) {
		return BoxTeal
	}
	return BoxGray
}

type Box struct {
	Header  string   `json:"header"`
	Content string   `json:"content"`
	Color   BoxColor `json:"color"`
}

type Textbox struct {
	Common
	Boxes []Box `json:"boxes"`
}

// Transition covers both transition and transition_alt; Alt selects the boxed treatment.
type Transition struct {
	Common
	Alt bool `json:"-"`
}

type QOTM struct {
	Common
	Scenario []string `json:"scenario"`
	Rule     []string `json:"rule"`
	Action   []string `json:"action"`
}

// ThankYou has fixed content; only its notes come from the description.
type ThankYou struct {
	Common
}

// Unknown preserves a description whose type tag is not recognized.
type Unknown struct {
	Common
	Tag string `json:"-"`
}

func (s *Title) Accept(v Visitor)      { v.VisitTitle(s) }
func (s *Agenda) Accept(v Visitor)     { v.VisitAgenda(s) }
func (s *Content) Accept(v Visitor)    { v.VisitContent(s) }
func (s *GoDeeper) Accept(v Visitor)   { v.VisitGoDeeper(s) }
func (s *Table) Accept(v Visitor)      { v.VisitTable(s) }
func (s *Checklist) Accept(v Visitor)  { v.VisitChecklist(s) }
func (s *Textbox) Accept(v Visitor)    { v.VisitTextbox(s) }
func (s *Transition) Accept(v Visitor) { v.VisitTransition(s) }
func (s *QOTM) Accept(v Visitor)       { v.VisitQOTM(s) }
func (s *ThankYou) Accept(v Visitor)   { v.VisitThankYou(s) }
func (s *Unknown) Accept(v Visitor)    { v.VisitUnknown(s) }

// IsStructural reports whether s is a title, agenda, transition or thank-you slide.
func IsStructural(s Slide) bool {
	return s.Base().Type.Structural()
}
