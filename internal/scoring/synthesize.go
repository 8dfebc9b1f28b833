package scoring

import (
	"fmt"
	"time"

	"github.com/jhousteau/genesis-sub002/internal/checks"
	"github.com/jhousteau/genesis-sub002/internal/models"
)

// Outcome pairs a check definition with the outcome the executor produced.
type Outcome struct {
	Check   checks.CheckDefinition
	Outcome models.CheckOutcome
}

// Synthesize converts every non-PASS, non-SKIP outcome into a Finding.
// SKIP outcomes never synthesize findings: they count in the summary but are
// excluded from the finding list and from scoring.
//
// Finding IDs are derived from (check ID, scan timestamp), which is unique
// without a central counter: check IDs are unique within a run and runs have
// distinct timestamps.
func Synthesize(outcomes []Outcome, framework models.Framework, ts time.Time) []models.Finding {
	var findings []models.Finding
	for _, o := range outcomes {
		switch o.Outcome.Status {
		case models.StatusPass, models.StatusSkip:
			continue
		}
		def := o.Check
		findings = append(findings, models.Finding{
			ID:          fmt.Sprintf("%s-%s", def.ID, ts.UTC().Format("20060102T150405Z")),
			CheckID:     def.ID,
			Category:    def.Category,
			RuleRef:     def.RuleRef,
			Severity:    ResolveSeverity(def, framework),
			Status:      o.Outcome.Status,
			Description: findingDescription(def, o.Outcome),
			Remediation: def.Remediation,
			Framework:   framework,
			Timestamp:   ts.UTC(),
		})
	}
	return findings
}

// findingDescription combines the catalog description with what the check
// actually observed.
func findingDescription(def checks.CheckDefinition, outcome models.CheckOutcome) string {
	if outcome.Message == "" {
		return def.Description
	}
	return fmt.Sprintf("%s: %s", def.Description, outcome.Message)
}
