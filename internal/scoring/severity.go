// Package scoring turns check outcomes into findings and findings into a
// compliance score. All of it is pure computation: same inputs, same outputs.
package scoring

import (
	"github.com/jhousteau/genesis-sub002/internal/checks"
	"github.com/jhousteau/genesis-sub002/internal/models"
)

// frameworkOverrides elevates (or lowers) a check's severity under specific
// frameworks. Adding a framework is a data change here, never a code change.
//
// The table encodes the regimes' emphasis: HIPAA and PCI-DSS treat storage
// exposure and missing audit trails as critical; FedRAMP and NIST push
// network exposure up; GDPR elevates anything that can leak personal data.
var frameworkOverrides = map[string]map[models.Framework]models.Severity{
	"SEC_NO_PUBLIC_BUCKET": {
		models.FrameworkHIPAA:  models.SeverityCritical,
		models.FrameworkPCIDSS: models.SeverityCritical,
		models.FrameworkGDPR:   models.SeverityCritical,
	},
	"ISO_NO_AUTHENTICATED_BUCKET_ACCESS": {
		models.FrameworkHIPAA:  models.SeverityCritical,
		models.FrameworkPCIDSS: models.SeverityCritical,
		models.FrameworkGDPR:   models.SeverityCritical,
	},
	"COMP_UNIFORM_BUCKET_ACCESS": {
		models.FrameworkHIPAA:  models.SeverityCritical,
		models.FrameworkPCIDSS: models.SeverityCritical,
	},
	"COMP_AUDIT_TRAIL_COMPLETE": {
		models.FrameworkHIPAA:   models.SeverityCritical,
		models.FrameworkPCIDSS:  models.SeverityCritical,
		models.FrameworkFedRAMP: models.SeverityCritical,
		models.FrameworkSOC2:    models.SeverityHigh,
	},
	"ENV_AUDIT_LOGGING": {
		models.FrameworkHIPAA:   models.SeverityCritical,
		models.FrameworkFedRAMP: models.SeverityCritical,
	},
	"CRED_SA_KEY_CREATION_DISABLED": {
		models.FrameworkFedRAMP: models.SeverityCritical,
		models.FrameworkNIST:    models.SeverityCritical,
	},
	"COMP_NO_EXTERNAL_VM_IP": {
		models.FrameworkFedRAMP: models.SeverityHigh,
		models.FrameworkNIST:    models.SeverityHigh,
		models.FrameworkPCIDSS:  models.SeverityHigh,
	},
	"ISO_DOMAIN_RESTRICTED_SHARING": {
		models.FrameworkHIPAA: models.SeverityCritical,
		models.FrameworkGDPR:  models.SeverityCritical,
	},
}

// ResolveSeverity returns the severity of def under framework. The function
// is total: with no override for (def, framework) the check's default
// severity applies, so every input yields one of the four enumerated levels.
func ResolveSeverity(def checks.CheckDefinition, framework models.Framework) models.Severity {
	if byFramework, ok := frameworkOverrides[def.ID]; ok {
		if sev, ok := byFramework[framework]; ok {
			return sev
		}
	}
	return def.DefaultSeverity
}
