package scoring

import (
	"strings"
	"testing"
	"time"

	"github.com/jhousteau/genesis-sub002/internal/checks"
	"github.com/jhousteau/genesis-sub002/internal/models"
)

var scanTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func catalogDef(id string, sev models.Severity) checks.CheckDefinition {
	return checks.CheckDefinition{
		ID:              id,
		Category:        models.CategorySecurity,
		Description:     "description of " + id,
		RuleRef:         "rule." + id,
		Remediation:     "fix " + id,
		DefaultSeverity: sev,
	}
}

func TestSynthesizeSkipsPassAndSkip(t *testing.T) {
	outcomes := []Outcome{
		{Check: catalogDef("A", models.SeverityHigh), Outcome: models.CheckOutcome{Status: models.StatusPass}},
		{Check: catalogDef("B", models.SeverityHigh), Outcome: models.CheckOutcome{Status: models.StatusSkip}},
		{Check: catalogDef("C", models.SeverityHigh), Outcome: models.CheckOutcome{Status: models.StatusFail, Message: "exposed"}},
		{Check: catalogDef("D", models.SeverityLow), Outcome: models.CheckOutcome{Status: models.StatusWarn, Message: "borderline"}},
	}

	findings := Synthesize(outcomes, models.FrameworkSOC2, scanTime)

	if len(findings) != 2 {
		t.Fatalf("got %d findings, want 2 (FAIL and WARN only)", len(findings))
	}
	if findings[0].CheckID != "C" || findings[0].Status != models.StatusFail {
		t.Errorf("first finding = %s/%s, want C/FAIL", findings[0].CheckID, findings[0].Status)
	}
	if findings[1].CheckID != "D" || findings[1].Status != models.StatusWarn {
		t.Errorf("second finding = %s/%s, want D/WARN", findings[1].CheckID, findings[1].Status)
	}
}

func TestSynthesizeFindingFields(t *testing.T) {
	outcomes := []Outcome{
		{Check: catalogDef("SEC_X", models.SeverityMedium), Outcome: models.CheckOutcome{Status: models.StatusFail, Message: "2 rules open"}},
	}

	f := Synthesize(outcomes, models.FrameworkHIPAA, scanTime)[0]

	if f.ID != "SEC_X-20260314T093000Z" {
		t.Errorf("ID = %q, want check ID plus scan timestamp", f.ID)
	}
	if f.Description != "description of SEC_X: 2 rules open" {
		t.Errorf("Description = %q", f.Description)
	}
	if f.RuleRef != "rule.SEC_X" || f.Remediation != "fix SEC_X" {
		t.Errorf("catalog fields not carried: %+v", f)
	}
	if f.Framework != models.FrameworkHIPAA {
		t.Errorf("Framework = %s, want HIPAA", f.Framework)
	}
	if !f.Timestamp.Equal(scanTime) {
		t.Errorf("Timestamp = %s, want scan time", f.Timestamp)
	}
	if f.Severity != models.SeverityMedium {
		t.Errorf("Severity = %s, want the default with no override", f.Severity)
	}
}

func TestSynthesizeEmptyMessageKeepsDescription(t *testing.T) {
	outcomes := []Outcome{
		{Check: catalogDef("Q", models.SeverityLow), Outcome: models.CheckOutcome{Status: models.StatusFail}},
	}
	f := Synthesize(outcomes, models.FrameworkSOC2, scanTime)[0]
	if strings.HasSuffix(f.Description, ": ") || f.Description != "description of Q" {
		t.Errorf("Description = %q, want the bare catalog description", f.Description)
	}
}

func TestResolveSeverityOverrides(t *testing.T) {
	publicBucket := catalogDef("SEC_NO_PUBLIC_BUCKET", models.SeverityHigh)

	cases := []struct {
		framework models.Framework
		want      models.Severity
	}{
		{models.FrameworkHIPAA, models.SeverityCritical},
		{models.FrameworkPCIDSS, models.SeverityCritical},
		{models.FrameworkGDPR, models.SeverityCritical},
		{models.FrameworkSOC2, models.SeverityHigh},
		{models.FrameworkNIST, models.SeverityHigh},
	}

	for _, tc := range cases {
		if got := ResolveSeverity(publicBucket, tc.framework); got != tc.want {
			t.Errorf("ResolveSeverity(SEC_NO_PUBLIC_BUCKET, %s) = %s, want %s", tc.framework, got, tc.want)
		}
	}

	// A check with no override row keeps its default everywhere.
	plain := catalogDef("NO_OVERRIDES_HERE", models.SeverityMedium)
	for _, f := range models.KnownFrameworks {
		if got := ResolveSeverity(plain, f); got != models.SeverityMedium {
			t.Errorf("ResolveSeverity(plain, %s) = %s, want MEDIUM", f, got)
		}
	}
}
