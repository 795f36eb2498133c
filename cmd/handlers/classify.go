package handlers

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"briefdeck/internal/classify"
	"briefdeck/internal/core"
	"briefdeck/internal/docx"
	"briefdeck/internal/logger"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#28295D")).MarginBottom(1)
	titleStyle   = lipgloss.NewStyle().Bold(true)
	scoreStyle   = lipgloss.NewStyle().Faint(true)
	summaryStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true).Padding(0, 1).MarginTop(1)
	tierStyles   = map[core.Tier]lipgloss.Style{
		core.TierCritical: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E8463A")),
		core.TierStandard: lipgloss.NewStyle().Foreground(lipgloss.Color("#2E74B5")),
		core.TierMinor:    lipgloss.NewStyle().Foreground(lipgloss.Color("#7F7F7F")),
	}
)

// NewClassifyCmd creates the classify command for article importance tiers
func NewClassifyCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "classify <document.docx|document.txt>",
		Short: "Classify briefing articles by importance",
		Long: `Classify splits a briefing into articles and assigns each one an importance tier.

Critical articles may take up to two slides, standard articles one slide and minor
articles are folded into a roundup. No language model is called.

Examples:
  # Print a styled report
  briefdeck classify briefing.docx

  # Print machine-readable output
  briefdeck classify briefing.docx --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(args[0], asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output classifications as JSON")
	return cmd
}

func runClassify(path string, asJSON bool) error {
	text, err := readDocumentText(path)
	if err != nil {
		return err
	}

	articles := classify.SplitArticles(text)
	if len(articles) == 0 {
		return fmt.Errorf("no articles found in %s", path)
	}
	classifications := classify.New(classify.Options{Logger: logger.Get()}).ClassifyAll(articles)

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(classifications)
	}

	fmt.Println(renderClassifications(filepath.Base(path), classifications))
	return nil
}

func renderClassifications(name string, classifications []core.Classification) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Importance tiers for %s", name)))
	b.WriteString("\n")

	counts := map[core.Tier]int{}
	budget := 0
	for i, c := range classifications {
		counts[c.Tier]++
		budget += c.Budget()

		tier := tierStyles[c.Tier].Render(strings.ToUpper(string(c.Tier)))
		fmt.Fprintf(&b, "%2d. %s  %s\n", i+1, titleStyle.Render(c.Title), tier)
		detail := fmt.Sprintf("    scores c=%d s=%d m=%d · %d words · %s",
			c.Scores.Critical, c.Scores.Standard, c.Scores.Minor, c.Words, budgetText(c.Budget()))
		if c.Override {
			detail += " · importance hint"
		}
		b.WriteString(scoreStyle.Render(detail))
		b.WriteString("\n")
	}

	summary := fmt.Sprintf("%d critical · %d standard · %d minor\nup to %d article slides",
		counts[core.TierCritical], counts[core.TierStandard], counts[core.TierMinor], budget)
	b.WriteString(summaryStyle.Render(summary))
	return b.String()
}

func budgetText(n int) string {
	switch n {
	case 0:
		return "roundup only"
	case 1:
		return "1 slide"
	default:
		return fmt.Sprintf("up to %d slides", n)
	}
}

// readDocumentText returns the text of a .docx file, or the raw contents of anything else.
func readDocumentText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !strings.EqualFold(filepath.Ext(path), ".docx") {
		return string(data), nil
	}
	text, err := docx.ExtractText(data)
	if err != nil {
		return "", fmt.Errorf("failed to extract text from %s: %w", path, err)
	}
	return text, nil
}
