// Package report renders comparisons and consolidated opinions for people
// and for downstream tools: markdown reports, Mermaid diagrams, JSON exports
// and goal lists.
package report

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/dualopinion/internal/opinion"
	"github.com/dusk-indust/dualopinion/internal/orchestrator"
)

// Render writes the consolidated report: summary, findings, and
// recommendations with their provenance.
func Render(c opinion.Consolidated) string {
	var sb strings.Builder
	sb.WriteString("# Consolidated opinion\n\n")
	if c.Query != "" {
		fmt.Fprintf(&sb, "> %s\n\n", c.Query)
	}
	fmt.Fprintf(&sb, "%s\n\n", c.Summary)

	sb.WriteString("## Findings\n\n")
	for _, f := range c.Findings {
		fmt.Fprintf(&sb, "- **%s** (confidence %.2f): %s\n", f.Topic, f.Confidence, f.Detail)
	}

	sb.WriteString("\n## Recommendations\n\n")
	sb.WriteString("| # | Priority | Topic | Action | From |\n")
	sb.WriteString("|---|----------|-------|--------|------|\n")
	for i, r := range c.Recommendations {
		fmt.Fprintf(&sb, "| %d | %s | %s | %s | %s |\n", i+1, r.Priority, r.Topic, cell(r.Action), c.SourceOf(i))
	}

	if len(c.Resolutions) > 0 {
		sb.WriteString("\n## Resolved disagreements\n\n")
		for _, r := range c.Resolutions {
			fmt.Fprintf(&sb, "- %s: kept %s (%s)\n", r.Topic, r.Winner, reasonText(r.Reason))
		}
	}
	if len(c.DroppedLowConfidence) > 0 {
		sb.WriteString("\n## Left out for low confidence\n\n")
		for _, d := range c.DroppedLowConfidence {
			fmt.Fprintf(&sb, "- %s from %s (confidence %.2f)\n", d.Finding.Topic, d.Side, d.Finding.Confidence)
		}
	}
	return sb.String()
}

// RenderComparison writes both opinions side by side with the diff, the
// summary delta and a Mermaid diagram.
func RenderComparison(c *orchestrator.Comparison) string {
	nameA, nameB := c.PersonaA.DisplayName(), c.PersonaB.DisplayName()

	var sb strings.Builder
	sb.WriteString("# Two opinions\n\n")
	fmt.Fprintf(&sb, "> %s\n\n", c.Query)

	writeOpinion(&sb, "A", nameA, c.A)
	writeOpinion(&sb, "B", nameB, c.B)

	sb.WriteString("## How the summaries differ\n\n")
	fmt.Fprintf(&sb, "%s\n\n", FormatDelta(SummaryDelta(c.A.Summary, c.B.Summary)))

	sb.WriteString("## Comparison\n\n")
	if len(c.Diff.Agreements) > 0 {
		sb.WriteString("**Agree on:**\n\n")
		for _, a := range c.Diff.Agreements {
			line := fmt.Sprintf("- %s: %s", a.Topic, a.ActionA)
			switch a.Note {
			case opinion.NoteActionsDiffer:
				line = fmt.Sprintf("- %s: %s / %s (same priority, different steps)", a.Topic, a.ActionA, a.ActionB)
			case opinion.NotePriorityDiffers:
				line += fmt.Sprintf(" (ranked %s vs %s)", a.PriorityA, a.PriorityB)
			}
			sb.WriteString(line + "\n")
		}
		sb.WriteString("\n")
	}
	if len(c.Diff.Conflicts) > 0 {
		sb.WriteString("**Disagree on:**\n\n")
		for _, k := range c.Diff.Conflicts {
			fmt.Fprintf(&sb, "- %s\n  - %s (%s): %s\n    _%s_\n  - %s (%s): %s\n    _%s_\n",
				k.Topic, nameA, k.PriorityA, k.ActionA, k.RationaleA, nameB, k.PriorityB, k.ActionB, k.RationaleB)
		}
		sb.WriteString("\n")
	}
	writeUnique(&sb, nameA, c.Diff.UniqueToA)
	writeUnique(&sb, nameB, c.Diff.UniqueToB)

	sb.WriteString("```mermaid\n")
	sb.WriteString(DiffMermaid(c.Diff, nameA, nameB))
	sb.WriteString("```\n")
	return sb.String()
}

func writeOpinion(sb *strings.Builder, label, name string, o opinion.Opinion) {
	fmt.Fprintf(sb, "## Opinion %s: %s\n\n%s\n\n", label, name, o.Summary)
	for _, r := range o.Recommendations {
		fmt.Fprintf(sb, "- [%s] %s: %s\n", r.Priority, r.Topic, r.Action)
	}
	sb.WriteString("\n")
}

func writeUnique(sb *strings.Builder, name string, us []opinion.UniqueTopic) {
	if len(us) == 0 {
		return
	}
	fmt.Fprintf(sb, "**Only %s raised:**\n\n", name)
	for _, u := range us {
		fmt.Fprintf(sb, "- %s (confidence %.2f)\n", u.Topic, u.Finding.Confidence)
	}
	sb.WriteString("\n")
}

func reasonText(r opinion.ResolutionReason) string {
	switch r {
	case opinion.ReasonPriority:
		return "higher priority"
	case opinion.ReasonConfidence:
		return "more confident finding"
	case opinion.ReasonTieBreak:
		return "full tie, opinion A kept"
	default:
		return string(r)
	}
}

// cell keeps a value from breaking a markdown table row.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
