// Package models defines the shared data types of the validation engine:
// check taxonomy enums, check outcomes, findings, scan summaries, and the
// compliance report that ties a scan run together.
package models

import "time"

// Category groups checks by the aspect of the environment they validate.
type Category string

const (
	CategoryEnvironment Category = "environment"
	CategoryCredentials Category = "credentials"
	CategoryIsolation   Category = "isolation"
	CategorySecurity    Category = "security"
	CategoryCompliance  Category = "compliance"
	CategoryIntegration Category = "integration"
	CategoryPerformance Category = "performance"
)

// CategoryOrder is the canonical declaration order of categories. Multi-category
// runs execute and report category by category in this order.
var CategoryOrder = []Category{
	CategoryEnvironment,
	CategoryCredentials,
	CategoryIsolation,
	CategorySecurity,
	CategoryCompliance,
	CategoryIntegration,
	CategoryPerformance,
}

// ValidCategory reports whether c is one of the declared categories.
func ValidCategory(c Category) bool {
	for _, known := range CategoryOrder {
		if c == known {
			return true
		}
	}
	return false
}

// Severity represents the impact level of a finding.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// SeverityRank maps Severity values to sort keys (lower = more severe).
var SeverityRank = map[Severity]int{
	SeverityCritical: 0,
	SeverityHigh:     1,
	SeverityMedium:   2,
	SeverityLow:      3,
}

// ValidSeverity reports whether s is one of the four enumerated levels.
func ValidSeverity(s Severity) bool {
	_, ok := SeverityRank[s]
	return ok
}

// Status is the outcome state of a single check, or the overall verdict of a
// scan (PASS/FAIL only for the latter).
type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
	StatusWarn Status = "WARN"
	StatusSkip Status = "SKIP"
)

// Framework identifies a compliance regime a check or finding applies to.
// The set is open: unknown values round-trip through reports untouched, but
// only the declared frameworks participate in severity overrides.
type Framework string

const (
	FrameworkSOC2     Framework = "SOC2"
	FrameworkHIPAA    Framework = "HIPAA"
	FrameworkPCIDSS   Framework = "PCI-DSS"
	FrameworkISO27001 Framework = "ISO27001"
	FrameworkGDPR     Framework = "GDPR"
	FrameworkNIST     Framework = "NIST"
	FrameworkFedRAMP  Framework = "FedRAMP"
)

// KnownFrameworks lists the frameworks the engine ships severity tables for.
var KnownFrameworks = []Framework{
	FrameworkSOC2,
	FrameworkHIPAA,
	FrameworkPCIDSS,
	FrameworkISO27001,
	FrameworkGDPR,
	FrameworkNIST,
	FrameworkFedRAMP,
}

// KnownFramework reports whether f is one of the declared frameworks.
func KnownFramework(f Framework) bool {
	for _, known := range KnownFrameworks {
		if f == known {
			return true
		}
	}
	return false
}

// CheckOutcome is the raw result of running one check.
type CheckOutcome struct {
	Status   Status            `json:"status"`
	Message  string            `json:"message"`
	Evidence map[string]string `json:"evidence,omitempty"`
}

// Finding is a structured record of one non-passing check outcome.
// Findings are immutable once created; their lifetime is bounded to one scan
// run, after which they are persisted inside a ComplianceReport.
type Finding struct {
	ID          string    `json:"id"`
	CheckID     string    `json:"check_id"`
	Category    Category  `json:"category"`
	RuleRef     string    `json:"rule_ref"`
	Severity    Severity  `json:"severity"`
	Status      Status    `json:"status"`
	Description string    `json:"description"`
	Remediation string    `json:"remediation"`
	Framework   Framework `json:"framework"`
	Timestamp   time.Time `json:"timestamp"`
}

// ScanSummary aggregates counts and the compliance score across one scan run.
// It is derived from the finding set and the executed check outcomes and is
// never persisted independently of a report.
type ScanSummary struct {
	TotalChecks   int    `json:"total_checks"`
	Passed        int    `json:"passed"`
	Failed        int    `json:"failed"`
	Warned        int    `json:"warned"`
	Skipped       int    `json:"skipped"`
	CriticalCount int    `json:"critical_count"`
	HighCount     int    `json:"high_count"`
	MediumCount   int    `json:"medium_count"`
	LowCount      int    `json:"low_count"`
	// ComplianceScore is the severity-weighted aggregate in [0,100].
	ComplianceScore int `json:"compliance_score"`
	// OverallStatus is PASS or FAIL, derived from the configured thresholds.
	OverallStatus Status `json:"overall_status"`
}

// ReportMetadata describes one scan run.
type ReportMetadata struct {
	ReportID       string    `json:"report_id"`
	GeneratedAt    time.Time `json:"generated_at"`
	ScannerVersion string    `json:"scanner_version"`
	Project        string    `json:"project"`
	Environment    string    `json:"environment"`
	Framework      Framework `json:"framework"`
	// Partial is true when the scan was cancelled before all checks completed;
	// the report then covers only the checks that finished.
	Partial bool `json:"partial,omitempty"`
}

// ComplianceReport is the top-level output of a scan run. It is created once
// at the end of a scan and immutable afterwards; new scans produce new
// reports, never mutate old ones.
type ComplianceReport struct {
	Metadata        ReportMetadata `json:"metadata"`
	Summary         ScanSummary    `json:"summary"`
	Findings        []Finding      `json:"findings"`
	Recommendations []string       `json:"recommendations,omitempty"`
}
