package report

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DeltaOp says which summary a span of text belongs to.
type DeltaOp string

const (
	DeltaEqual DeltaOp = "equal"
	DeltaOnlyA DeltaOp = "only-a"
	DeltaOnlyB DeltaOp = "only-b"
)

// DeltaSpan is one run of text in a summary delta.
type DeltaSpan struct {
	Op   DeltaOp `json:"op"`
	Text string  `json:"text"`
}

// SummaryDelta compares two opinion summaries word by word and returns the
// shared and differing runs in reading order.
func SummaryDelta(a, b string) []DeltaSpan {
	dmp := diffmatchpatch.New()
	// Diff on words, not characters, so the spans read naturally.
	wa, wb, words := dmp.DiffLinesToChars(wordsToLines(a), wordsToLines(b))
	diffs := dmp.DiffMain(wa, wb, false)
	diffs = dmp.DiffCharsToLines(diffs, words)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var out []DeltaSpan
	for _, d := range diffs {
		text := strings.TrimSpace(strings.ReplaceAll(d.Text, "\n", " "))
		if text == "" {
			continue
		}
		op := DeltaEqual
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			op = DeltaOnlyA
		case diffmatchpatch.DiffInsert:
			op = DeltaOnlyB
		}
		if n := len(out); n > 0 && out[n-1].Op == op {
			out[n-1].Text += " " + text
			continue
		}
		out = append(out, DeltaSpan{Op: op, Text: text})
	}
	return out
}

// FormatDelta renders spans as markdown: text only in A is struck through,
// text only in B is bold.
func FormatDelta(spans []DeltaSpan) string {
	parts := make([]string, 0, len(spans))
	for _, s := range spans {
		switch s.Op {
		case DeltaOnlyA:
			parts = append(parts, "~~"+s.Text+"~~")
		case DeltaOnlyB:
			parts = append(parts, "**"+s.Text+"**")
		default:
			parts = append(parts, s.Text)
		}
	}
	return strings.Join(parts, " ")
}

func wordsToLines(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.Join(fields, "\n") + "\n"
}
