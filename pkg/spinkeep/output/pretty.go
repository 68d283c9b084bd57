package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jamesainslie/spinkeep/pkg/spinkeep/types"
)

// PrettyFormatter formats output with colors and styling using lipgloss.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString(f.formatHeader(r))
	w.WriteString("\n")
	w.WriteString(f.formatTable(r))
	w.WriteString(f.formatFooter(r))
	w.WriteString("\n")
	return nil
}

// formatHeader builds the header box with the scheduler settings.
func (f *PrettyFormatter) formatHeader(r *Result) string {
	window := LabelStyle.Render("Window:") + " " + ValueStyle.Render(types.FormatSize(r.Window))
	interval := LabelStyle.Render("Interval:") + " " + ValueStyle.Render(r.Interval.String())
	return HeaderBox.Render(window + "  " + interval)
}

// formatTable builds the device table with STATUS, SIZE and PATH columns.
func (f *PrettyFormatter) formatTable(r *Result) string {
	if len(r.Devices) == 0 {
		return MutedStyle.Render("  No devices given") + "\n"
	}

	var sb strings.Builder
	width := sizeWidth(r)

	sb.WriteString(fmt.Sprintf("  %s  %s  %s\n",
		TableHeaderStyle.Render(padRight("STATUS", 6)),
		TableHeaderStyle.Render(padLeft("SIZE", width)),
		TableHeaderStyle.Render("PATH"),
	))

	for _, d := range r.Devices {
		if d.OK() {
			sb.WriteString(fmt.Sprintf("  %s  %s  %s\n",
				SuccessStyle.Render(padRight("ok", 6)),
				SizeStyle.Render(padLeft(d.SizeHuman, width)),
				PathStyle.Render(d.Path),
			))
			continue
		}
		sb.WriteString(fmt.Sprintf("  %s  %s  %s %s\n",
			ErrorStyle.Render(padRight("error", 6)),
			MutedStyle.Render(padLeft("-", width)),
			PathStyle.Render(d.Path),
			ErrorStyle.Render(d.Error),
		))
	}

	return sb.String()
}

// formatFooter builds the footer box with summary information.
func (f *PrettyFormatter) formatFooter(r *Result) string {
	devices := LabelStyle.Render("Usable:") + " " +
		ValueStyle.Render(fmt.Sprintf("%d/%d", r.Usable(), len(r.Devices)))
	total := LabelStyle.Render("Total:") + " " + SizeStyle.Render(types.FormatSize(r.TotalSize()))
	hint := MutedStyle.Render("Use -o plain for unformatted output")
	return FooterBox.Render(strings.Join([]string{devices, total, hint}, "  "))
}

func sizeWidth(r *Result) int {
	width := 8
	for _, d := range r.Devices {
		if len(d.SizeHuman) > width {
			width = len(d.SizeHuman)
		}
	}
	return width
}

// padLeft pads s with spaces on the left to width.
func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

// padRight pads s with spaces on the right to width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
