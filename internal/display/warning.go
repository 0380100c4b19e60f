// Package display formats user-facing report output for the cloneworks CLI.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Warning is a non-fatal finding shown in a command report.
type Warning struct {
	Title      string   // One-line summary
	Message    string   // Detail (optional)
	Files      []string // Related files (optional)
	Suggestion string   // What to change (optional)
}

var warningColor = color.New(color.FgYellow)

// Display writes the warning to out, indented under a "⚠ Warning:" title line.
// It is colored unless color output is disabled.
func (w Warning) Display(out io.Writer) {
	warningColor.Fprint(out, w.String())
}

// String renders the warning without color.
func (w Warning) String() string {
	var b strings.Builder

	b.WriteString("⚠ Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	if len(w.Files) > 0 {
		if len(w.Files) == 1 {
			b.WriteString("    Affected file:\n")
		} else {
			b.WriteString("    Affected files:\n")
		}
		for i, file := range w.Files {
			fmt.Fprintf(&b, "      %d. %s\n", i+1, file)
		}
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion: ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	return b.String()
}
