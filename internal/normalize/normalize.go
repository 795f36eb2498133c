// Package normalize turns raw model output into clean, typed slide descriptions.
package normalize

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"briefdeck/internal/logger"
	"briefdeck/internal/slides"
	"briefdeck/internal/textclean"
)

// ErrNoSlides means neither the JSON nor the HTML path produced a usable slide.
var ErrNoSlides = errors.New("no slides found in HTML content")

// Normalizer runs the JSON path, falls back to HTML extraction, then repairs notes and text.
type Normalizer struct {
	log *slog.Logger
}

// Options configures a Normalizer.
type Options struct {
	Logger *slog.Logger
}

func New(opts Options) *Normalizer {
	return &Normalizer{log: logger.OrDiscard(opts.Logger)}
}

// Normalize converts model output into slides. sourceHTML is the preview markup the model
// worked from; it feeds the notes pre-pass and the fallback extractor.
func (n *Normalizer) Normalize(output, sourceHTML string) ([]slides.Slide, error) {
	deck, err := FromJSON(output)
	if err != nil {
		n.log.Warn("model JSON unusable, falling back to HTML extraction", "error", err)
		deck, err = FromHTML(sourceHTML)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoSlides, err)
		}
	}
	if len(deck) == 0 {
		return nil, ErrNoSlides
	}

	if notes := ExtractNotes(sourceHTML); len(notes) > 0 {
		injected := InjectNotes(deck, notes)
		n.log.Debug("injected speaker notes", "blocks", len(notes), "injected", injected)
	}

	c := cleaner{}
	for _, s := range deck {
		s.Accept(c)
	}
	n.log.Debug("normalized slides", "count", len(deck))
	return deck, nil
}

// cleaner applies the text pass to every string field of a slide.
type cleaner struct{}

func (cleaner) common(c *slides.Common) {
	c.Title = textclean.Clean(c.Title)
	c.Notes = FormatNotes(textclean.CleanNotes(c.Notes))
}

func (c cleaner) VisitTitle(s *slides.Title) {
	c.common(&s.Common)
	s.BriefingHeader = textclean.Clean(s.BriefingHeader)
	s.Subtitle = textclean.Clean(s.Subtitle)
}

func (c cleaner) VisitAgenda(s *slides.Agenda) {
	c.common(&s.Common)
	s.Items = textclean.CleanItems(s.Items)
}

func (c cleaner) VisitContent(s *slides.Content) {
	c.common(&s.Common)
	s.Content = textclean.CleanItems(s.Content)
}

func (c cleaner) VisitGoDeeper(s *slides.GoDeeper) {
	c.common(&s.Common)
	s.Content = textclean.CleanItems(s.Content)
}

func (c cleaner) VisitTable(s *slides.Table) {
	c.common(&s.Common)
	for i := range s.Headers {
		s.Headers[i] = textclean.Clean(s.Headers[i])
	}
	for _, row := range s.Rows {
		for i := range row {
			row[i] = textclean.Clean(row[i])
		}
	}
}

func (c cleaner) VisitChecklist(s *slides.Checklist) {
	c.common(&s.Common)
	s.Content = textclean.CleanItems(s.Content)
	s.ChecklistHeading = textclean.Clean(s.ChecklistHeading)
	s.ChecklistPanelText = textclean.Clean(s.ChecklistPanelText)
	items := s.ChecklistItems[:0]
	for _, item := range s.ChecklistItems {
		item.Text = textclean.Clean(item.Text)
		if item.Text != "" {
			items = append(items, item)
		}
	}
	s.ChecklistItems = items
}

func (c cleaner) VisitTextbox(s *slides.Textbox) {
	c.common(&s.Common)
	for i := range s.Boxes {
		b := &s.Boxes[i]
		b.Header = textclean.Clean(b.Header)
		b.Content = textclean.Clean(b.Content)
		b.Color = slides.ParseBoxColor(string(b.Color))
	}
}

func (c cleaner) VisitTransition(s *slides.Transition) { c.common(&s.Common) }

func (c cleaner) VisitQOTM(s *slides.QOTM) {
	c.common(&s.Common)
	s.Scenario = textclean.CleanAll(s.Scenario)
	s.Rule = textclean.CleanAll(s.Rule)
	s.Action = textclean.CleanAll(s.Action)
}

func (c cleaner) VisitThankYou(s *slides.ThankYou) { c.common(&s.Common) }

func (c cleaner) VisitUnknown(s *slides.Unknown) {
	c.common(&s.Common)
	s.Tag = strings.TrimSpace(s.Tag)
}
