package checks

// NewDefaultRegistry builds the full production catalog. Registration order
// follows the canonical category order; within a category, checks register in
// catalog-source order. The registry is built once at process start and never
// mutated afterwards.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, group := range [][]CheckDefinition{
		environmentChecks(),
		credentialChecks(),
		isolationChecks(),
		securityChecks(),
		complianceChecks(),
		integrationChecks(),
		performanceChecks(),
	} {
		for _, def := range group {
			r.Register(def)
		}
	}
	return r
}
