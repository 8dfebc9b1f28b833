// Package output renders check results as a terminal table.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/jhousteau/genesis-sub002/internal/models"
	"github.com/jhousteau/genesis-sub002/internal/scoring"
)

// ANSI color codes for status output (used when Colored=true).
const (
	ansiReset  = "\033[0m"
	ansiGreen  = "\033[0;32m"
	ansiRed    = "\033[0;31m"
	ansiYellow = "\033[0;33m"
	ansiBlue   = "\033[0;34m"
)

// TableOptions controls how RenderTable renders check results.
type TableOptions struct {
	// Colored wraps status labels with ANSI codes. Default false (CI-safe).
	Colored bool

	// Framework selects the severity override table for the SEVERITY column,
	// so the table agrees with the scored summary. Zero value means no
	// overrides apply and defaults are shown.
	Framework models.Framework
}

// statusCell returns the status padded to width characters. When colored,
// ANSI codes wrap only the text; trailing padding spaces stay plain so
// subsequent columns align regardless of terminal ANSI support.
func statusCell(status models.Status, width int, colored bool) string {
	text := string(status)
	if !colored {
		return fmt.Sprintf("%-*s", width, text)
	}
	var code string
	switch status {
	case models.StatusPass:
		code = ansiGreen
	case models.StatusFail:
		code = ansiRed
	case models.StatusWarn:
		code = ansiYellow
	case models.StatusSkip:
		code = ansiBlue
	default:
		return fmt.Sprintf("%-*s", width, text)
	}
	spaces := width - len(text)
	if spaces < 0 {
		spaces = 0
	}
	return code + text + ansiReset + strings.Repeat(" ", spaces)
}

// truncateField shortens s to at most max bytes for ID/label columns.
func truncateField(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// RenderTable writes a formatted check-result table to w.
//
// Column order: CHECK ID  CATEGORY  STATUS  SEVERITY  MESSAGE
func RenderTable(w io.Writer, outcomes []scoring.Outcome, opts TableOptions) {
	if len(outcomes) == 0 {
		fmt.Fprintln(w, "No checks executed.")
		return
	}

	const (
		wCheck    = 34
		wCategory = 13
		wStatus   = 6
		wSeverity = 8
		wMessage  = 70
	)

	header := fmt.Sprintf("%-*s  %-*s  %-*s  %-*s  %s",
		wCheck, "CHECK ID", wCategory, "CATEGORY", wStatus, "STATUS", wSeverity, "SEVERITY", "MESSAGE")
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("-", wCheck+wCategory+wStatus+wSeverity+wMessage+8))

	for _, o := range outcomes {
		fmt.Fprintf(w, "%-*s  %-*s  %s  %-*s  %s\n",
			wCheck, truncateField(o.Check.ID, wCheck),
			wCategory, truncateField(string(o.Check.Category), wCategory),
			statusCell(o.Outcome.Status, wStatus, opts.Colored),
			wSeverity, string(scoring.ResolveSeverity(o.Check, opts.Framework)),
			truncateField(o.Outcome.Message, wMessage),
		)
	}
}
