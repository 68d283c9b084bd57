package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"
)

// PlainFormatter formats output as an aligned table without colors,
// suitable for scripting.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	if _, err := fmt.Fprint(tw, "STATUS\tSIZE\tBYTES\tPATH\tERROR\n"); err != nil {
		return err
	}

	for _, d := range r.Devices {
		status, size := "ok", d.SizeHuman
		if !d.OK() {
			status, size = "error", "-"
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", status, size, d.Size, d.Path, d.Error); err != nil {
			return err
		}
	}

	return tw.Flush()
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
