package cli

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// RenderLineDiff renders a line-oriented diff of before and after, prefixing
// removed lines with "-" and added lines with "+". It returns the empty
// string when the inputs are identical.
func RenderLineDiff(before, after string) string {
	if before == after {
		return ""
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out strings.Builder
	for _, d := range diffs {
		for _, line := range splitLines(d.Text) {
			switch d.Type {
			case diffmatchpatch.DiffInsert:
				out.WriteString(SuccessStyle.Render("+ " + line))
			case diffmatchpatch.DiffDelete:
				out.WriteString(ErrorStyle.Render("- " + line))
			default:
				out.WriteString(SubtleStyle.Render("  " + line))
			}
			out.WriteString("\n")
		}
	}
	return out.String()
}

func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
