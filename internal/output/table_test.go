package output

import (
	"strings"
	"testing"

	"github.com/jhousteau/genesis-sub002/internal/checks"
	"github.com/jhousteau/genesis-sub002/internal/models"
	"github.com/jhousteau/genesis-sub002/internal/scoring"
)

func outcome(id string, status models.Status, msg string) scoring.Outcome {
	return scoring.Outcome{
		Check: checks.CheckDefinition{
			ID:              id,
			Category:        models.CategorySecurity,
			DefaultSeverity: models.SeverityHigh,
		},
		Outcome: models.CheckOutcome{Status: status, Message: msg},
	}
}

func TestRenderTablePlain(t *testing.T) {
	var b strings.Builder
	RenderTable(&b, []scoring.Outcome{
		outcome("SEC_NO_OPEN_SSH", models.StatusPass, "port 22 is not exposed"),
		outcome("SEC_NO_PUBLIC_BUCKET", models.StatusFail, "1 bucket grant exposes data"),
	}, TableOptions{})

	out := b.String()
	if !strings.Contains(out, "CHECK ID") || !strings.Contains(out, "STATUS") || !strings.Contains(out, "SEVERITY") {
		t.Errorf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "HIGH") {
		t.Errorf("missing severity column:\n%s", out)
	}
	if !strings.Contains(out, "SEC_NO_OPEN_SSH") || !strings.Contains(out, "PASS") {
		t.Errorf("missing row content:\n%s", out)
	}
	if strings.Contains(out, "\033[") {
		t.Error("plain table must carry no ANSI codes")
	}
}

func TestRenderTableColored(t *testing.T) {
	var b strings.Builder
	RenderTable(&b, []scoring.Outcome{
		outcome("A", models.StatusFail, "x"),
	}, TableOptions{Colored: true})

	if !strings.Contains(b.String(), ansiRed+"FAIL"+ansiReset) {
		t.Errorf("FAIL not wrapped in red:\n%q", b.String())
	}
}

func TestRenderTableResolvesFrameworkSeverity(t *testing.T) {
	row := outcome("SEC_NO_PUBLIC_BUCKET", models.StatusFail, "1 bucket grant exposes data")

	var plain strings.Builder
	RenderTable(&plain, []scoring.Outcome{row}, TableOptions{})
	if !strings.Contains(plain.String(), "HIGH") {
		t.Errorf("without a framework the default severity must show:\n%s", plain.String())
	}

	var hipaa strings.Builder
	RenderTable(&hipaa, []scoring.Outcome{row}, TableOptions{Framework: models.FrameworkHIPAA})
	if !strings.Contains(hipaa.String(), "CRITICAL") || strings.Contains(hipaa.String(), "HIGH") {
		t.Errorf("override must replace the default severity:\n%s", hipaa.String())
	}
}

func TestRenderTableEmpty(t *testing.T) {
	var b strings.Builder
	RenderTable(&b, nil, TableOptions{})
	if !strings.Contains(b.String(), "No checks executed.") {
		t.Errorf("got %q", b.String())
	}
}

func TestTruncateField(t *testing.T) {
	long := strings.Repeat("x", 100)
	got := truncateField(long, 10)
	if len(got) != 10 || !strings.HasSuffix(got, "...") {
		t.Errorf("truncateField = %q", got)
	}
	if truncateField("short", 10) != "short" {
		t.Error("short fields must pass through")
	}
}
