// Package report renders compliance reports into their output formats and
// manages the on-disk report history.
//
// Formats are pure views over the same report object: rendering never alters
// report content, and rendering the same report twice yields identical bytes.
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jhousteau/genesis-sub002/internal/models"
)

// Format selects the rendering of a compliance report.
type Format string

const (
	// FormatJSON is the machine-readable, full-fidelity format. A JSON report
	// parses back into a ComplianceReport equal to the original.
	FormatJSON Format = "json"
	// FormatText is the human-readable document: summary counts followed by
	// findings grouped by category with severity tags.
	FormatText Format = "text"
	// FormatCSV flattens one row per finding for spreadsheet import. Lossy:
	// nested evidence and report metadata are dropped.
	FormatCSV Format = "csv"
)

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(name)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatText:
		return FormatText, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unknown report format %q; valid values: json, text, csv", name)
	}
}

// Ext returns the file extension for artifacts of this format.
func (f Format) Ext() string {
	switch f {
	case FormatText:
		return ".txt"
	case FormatCSV:
		return ".csv"
	default:
		return ".json"
	}
}

// Render produces the chosen view of rep. Findings are sorted first
// (category, then descending severity, then check ID), so output ordering is
// deterministic regardless of execution order.
func Render(rep *models.ComplianceReport, format Format) ([]byte, error) {
	sorted := *rep
	sorted.Findings = SortFindings(rep.Findings)

	switch format {
	case FormatJSON:
		return renderJSON(&sorted)
	case FormatText:
		return renderText(&sorted), nil
	case FormatCSV:
		return renderCSV(&sorted)
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

// SortFindings returns a copy of findings ordered by category (canonical
// order), then severity descending, then check ID.
func SortFindings(findings []models.Finding) []models.Finding {
	categoryRank := make(map[models.Category]int, len(models.CategoryOrder))
	for i, c := range models.CategoryOrder {
		categoryRank[c] = i
	}

	sorted := make([]models.Finding, len(findings))
	copy(sorted, findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		ci, cj := categoryRank[sorted[i].Category], categoryRank[sorted[j].Category]
		if ci != cj {
			return ci < cj
		}
		si, sj := models.SeverityRank[sorted[i].Severity], models.SeverityRank[sorted[j].Severity]
		if si != sj {
			return si < sj
		}
		return sorted[i].CheckID < sorted[j].CheckID
	})
	return sorted
}

func renderJSON(rep *models.ComplianceReport) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return buf.Bytes(), nil
}

func renderText(rep *models.ComplianceReport) []byte {
	var b strings.Builder
	m := rep.Metadata
	s := rep.Summary

	fmt.Fprintf(&b, "Compliance Report %s\n", m.ReportID)
	fmt.Fprintf(&b, "Generated:   %s\n", m.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "Project:     %s\n", m.Project)
	fmt.Fprintf(&b, "Environment: %s\n", m.Environment)
	fmt.Fprintf(&b, "Framework:   %s\n", m.Framework)
	if m.Partial {
		fmt.Fprintf(&b, "NOTE: partial report: the scan was cancelled before all checks completed\n")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Overall: %s   Score: %d/100\n", s.OverallStatus, s.ComplianceScore)
	fmt.Fprintf(&b, "Checks:  %d total, %d passed, %d failed, %d warned, %d skipped\n",
		s.TotalChecks, s.Passed, s.Failed, s.Warned, s.Skipped)
	fmt.Fprintf(&b, "Findings: %d critical, %d high, %d medium, %d low\n",
		s.CriticalCount, s.HighCount, s.MediumCount, s.LowCount)

	if len(rep.Findings) == 0 {
		b.WriteString("\nNo findings.\n")
	}

	var lastCategory models.Category
	for _, f := range rep.Findings {
		if f.Category != lastCategory {
			fmt.Fprintf(&b, "\n== %s ==\n", strings.ToUpper(string(f.Category)))
			lastCategory = f.Category
		}
		fmt.Fprintf(&b, "[%s] %s (%s)\n", f.Severity, f.Description, f.CheckID)
		fmt.Fprintf(&b, "         rule: %s\n", f.RuleRef)
		fmt.Fprintf(&b, "         fix:  %s\n", f.Remediation)
	}

	if len(rep.Recommendations) > 0 {
		b.WriteString("\nRecommendations:\n")
		for _, r := range rep.Recommendations {
			fmt.Fprintf(&b, "  - %s\n", r)
		}
	}

	return []byte(b.String())
}

// csvHeader is the flattened finding row layout.
var csvHeader = []string{
	"check_id", "category", "severity", "status",
	"description", "remediation", "framework", "timestamp",
}

func renderCSV(rep *models.ComplianceReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write CSV header: %w", err)
	}
	for _, f := range rep.Findings {
		row := []string{
			f.CheckID,
			string(f.Category),
			string(f.Severity),
			string(f.Status),
			f.Description,
			f.Remediation,
			string(f.Framework),
			f.Timestamp.UTC().Format("2006-01-02T15:04:05Z"),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}
