package report

import (
	"fmt"

	"github.com/jhousteau/genesis-sub002/internal/models"
)

// categoryAdvice is catalog-level guidance attached once per category that
// produced findings, on top of each finding's own remediation.
var categoryAdvice = map[models.Category]string{
	models.CategoryEnvironment: "Fix environment access first: other categories depend on the signals it validates.",
	models.CategoryCredentials: "Lock down service account credentials by org policy before rotating existing keys.",
	models.CategoryIsolation:   "Review cross-project grants; isolation violations compound every other exposure.",
	models.CategorySecurity:    "Close internet-facing exposure (open ports, public buckets) before the next deploy.",
	models.CategoryCompliance:  "Restore the audit trail; most frameworks treat logging gaps as automatic findings.",
	models.CategoryIntegration: "Grant the scanner read access to all signals so future scans cover the full surface.",
	models.CategoryPerformance: "Trim policy and firewall sprawl to keep scans and reviews tractable.",
}

// Recommendations derives the deduplicated recommendation list for a finding
// set: per-finding remediations in report order, then one category-level
// advisory per affected category.
func Recommendations(findings []models.Finding) []string {
	seen := make(map[string]struct{})
	var recs []string
	add := func(r string) {
		if r == "" {
			return
		}
		if _, dup := seen[r]; dup {
			return
		}
		seen[r] = struct{}{}
		recs = append(recs, r)
	}

	sorted := SortFindings(findings)
	for _, f := range sorted {
		add(f.Remediation)
	}

	affected := make(map[models.Category]struct{})
	for _, f := range sorted {
		if _, dup := affected[f.Category]; dup {
			continue
		}
		affected[f.Category] = struct{}{}
		if advice, ok := categoryAdvice[f.Category]; ok {
			add(fmt.Sprintf("[%s] %s", f.Category, advice))
		}
	}

	return recs
}
