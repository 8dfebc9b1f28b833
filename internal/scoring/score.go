package scoring

import (
	"github.com/jhousteau/genesis-sub002/internal/models"
)

// Severity weights of the compliance score. A single CRITICAL finding caps
// the score at 75, so critical findings can never be offset by passing
// checks elsewhere.
const (
	weightCritical = 25
	weightHigh     = 10
	weightMedium   = 5
	weightLow      = 1
)

// Score computes the severity-weighted compliance score over findings,
// clamped to [0,100]. Zero findings score 100 regardless of how many checks
// were skipped.
func Score(findings []models.Finding) int {
	score := 100
	for _, f := range findings {
		switch f.Severity {
		case models.SeverityCritical:
			score -= weightCritical
		case models.SeverityHigh:
			score -= weightHigh
		case models.SeverityMedium:
			score -= weightMedium
		case models.SeverityLow:
			score -= weightLow
		}
	}
	if score < 0 {
		return 0
	}
	return score
}

// Thresholds are the failure tolerances of a scan. Comparisons are strictly
// greater-than, so a threshold of zero means zero tolerance.
type Thresholds struct {
	// CriticalFailures is the number of CRITICAL findings tolerated.
	CriticalFailures int
	// HighWarnings is the number of HIGH findings tolerated.
	HighWarnings int
}

// Summarize folds outcomes and findings into a ScanSummary, including the
// compliance score and the threshold-derived overall status.
func Summarize(outcomes []Outcome, findings []models.Finding, thresholds Thresholds) models.ScanSummary {
	s := models.ScanSummary{TotalChecks: len(outcomes)}
	for _, o := range outcomes {
		switch o.Outcome.Status {
		case models.StatusPass:
			s.Passed++
		case models.StatusFail:
			s.Failed++
		case models.StatusWarn:
			s.Warned++
		case models.StatusSkip:
			s.Skipped++
		}
	}
	for _, f := range findings {
		switch f.Severity {
		case models.SeverityCritical:
			s.CriticalCount++
		case models.SeverityHigh:
			s.HighCount++
		case models.SeverityMedium:
			s.MediumCount++
		case models.SeverityLow:
			s.LowCount++
		}
	}
	s.ComplianceScore = Score(findings)
	s.OverallStatus = OverallStatus(s, thresholds)
	return s
}

// OverallStatus fails the scan when critical findings exceed the critical
// tolerance or high findings exceed the warning tolerance.
func OverallStatus(s models.ScanSummary, thresholds Thresholds) models.Status {
	if s.CriticalCount > thresholds.CriticalFailures || s.HighCount > thresholds.HighWarnings {
		return models.StatusFail
	}
	return models.StatusPass
}
