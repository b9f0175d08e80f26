package target

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mxcd/image-tag-updater/internal/compare"
)

// RenderPreview writes a table of the line changes of every result to out
func RenderPreview(out io.Writer, results []*PatchResult, newTag string) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"File", "Line", "Current", "→", "New", "Type"})

	for _, result := range results {
		if !result.Changed() {
			t.AppendRow(table.Row{result.Path, "-", "(up to date)", "", "", compare.Indicator(compare.UpdateTypeNone)})
			continue
		}
		for _, change := range result.Changes {
			current := fieldValue(change.Before)
			updateType := "-"
			if current != "" {
				updateType = compare.Indicator(compare.Classify(current, newTag))
			}
			t.AppendRow(table.Row{
				result.Path,
				change.Line,
				strings.TrimSpace(change.Before),
				"→",
				strings.TrimSpace(change.After),
				updateType,
			})
		}
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}

// Summary returns a one-line description of a patch result
func Summary(result *PatchResult) string {
	switch result.Status {
	case StatusUpdated:
		return fmt.Sprintf("✅ Updated %s", result.Path)
	case StatusPlanned:
		return fmt.Sprintf("📝 Would update %s (%d line(s))", result.Path, len(result.Changes))
	default:
		return fmt.Sprintf("✅ %s already up to date", result.Path)
	}
}

// fieldValue returns the value of a "key: value" line
func fieldValue(line string) string {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(line[idx+1:])
}
