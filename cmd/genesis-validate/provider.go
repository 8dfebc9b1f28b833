package main

import (
	"context"
	"fmt"

	"github.com/jhousteau/genesis-sub002/internal/config"
	"github.com/jhousteau/genesis-sub002/internal/facts"
	"github.com/jhousteau/genesis-sub002/internal/facts/awsfacts"
	"github.com/jhousteau/genesis-sub002/internal/facts/gcloudfacts"
)

// buildProvider resolves the configured fact provider. The static provider
// serves a JSON fixture and requires --facts.
func buildProvider(cfg *config.ScanConfiguration, flags *rootFlags) (facts.Provider, error) {
	switch cfg.Provider {
	case "gcloud":
		p, err := gcloudfacts.New()
		if err != nil {
			return nil, fmt.Errorf("gcloud provider: %w", err)
		}
		return p, nil
	case "aws":
		p, err := awsfacts.New(context.Background(), "")
		if err != nil {
			return nil, fmt.Errorf("aws provider: %w", err)
		}
		return p, nil
	case "static":
		if flags.factsPath == "" {
			return nil, fmt.Errorf("provider: static provider requires --facts <fixture.json>")
		}
		return facts.LoadStatic(flags.factsPath)
	default:
		return nil, fmt.Errorf("provider: unknown provider %q", cfg.Provider)
	}
}
