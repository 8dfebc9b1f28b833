// Package engine orchestrates a scan run: check selection, execution,
// finding synthesis, scoring, rendering, and persistence.
//
// A run moves through the stages CONFIGURED → EXECUTING → SYNTHESIZING →
// SCORED → RENDERED; the only non-recoverable failure is the report write
// (ABORTED). Individual check failures never abort a run.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhousteau/genesis-sub002/internal/checks"
	"github.com/jhousteau/genesis-sub002/internal/config"
	"github.com/jhousteau/genesis-sub002/internal/executor"
	"github.com/jhousteau/genesis-sub002/internal/facts"
	"github.com/jhousteau/genesis-sub002/internal/models"
	"github.com/jhousteau/genesis-sub002/internal/policy"
	"github.com/jhousteau/genesis-sub002/internal/report"
	"github.com/jhousteau/genesis-sub002/internal/scoring"
	"github.com/jhousteau/genesis-sub002/internal/version"
)

// Stage labels the phases of a scan run, for logging and failure reporting.
type Stage string

const (
	StageConfigured   Stage = "CONFIGURED"
	StageExecuting    Stage = "EXECUTING"
	StageSynthesizing Stage = "SYNTHESIZING"
	StageScored       Stage = "SCORED"
	StageRendered     Stage = "RENDERED"
	StageAborted      Stage = "ABORTED"
)

// Engine wires the registry, fact provider, store, and configuration into
// one scan orchestrator.
type Engine struct {
	registry *checks.Registry
	provider facts.Provider
	store    *report.Store
	cfg      *config.ScanConfiguration
	pol      *policy.Config
	exec     *executor.Executor
	log      zerolog.Logger
	now      func() time.Time
}

// Options configures a new Engine. Registry, Provider, Store, and Config are
// required; Policy and Now are optional.
type Options struct {
	Registry *checks.Registry
	Provider facts.Provider
	Store    *report.Store
	Config   *config.ScanConfiguration
	Policy   *policy.Config
	Logger   zerolog.Logger
	// Now overrides the clock; tests inject a fixed time.
	Now func() time.Time
}

// New constructs an Engine.
func New(opts Options) *Engine {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		registry: opts.Registry,
		provider: opts.Provider,
		store:    opts.Store,
		cfg:      opts.Config,
		pol:      opts.Policy,
		exec: executor.New(executor.Options{
			Workers:      opts.Config.Concurrency,
			CheckTimeout: opts.Config.CheckTimeout,
			Logger:       opts.Logger,
		}),
		log: opts.Logger,
		now: now,
	}
}

// Request selects what a run covers and how it is reported.
type Request struct {
	// Framework overrides the configured primary framework when non-empty.
	// When set, only checks applicable under it run.
	Framework models.Framework

	// Categories restricts the check set. Empty means the configured
	// categories (which default to all).
	Categories []models.Category

	// ByFramework filters checks to those applicable under the active
	// framework (the scan command); category runs keep the full catalog.
	ByFramework bool

	// Format selects the rendered output. Empty means the configured format.
	Format report.Format

	// WriteReport persists the report artifact. The test command disables it.
	WriteReport bool
}

// Result is the outcome of one run.
type Result struct {
	Report   *models.ComplianceReport
	Rendered []byte
	// Path is the canonical artifact path; empty when WriteReport was false.
	Path string
	// Outcomes holds the per-check results in execution-plan order.
	Outcomes []scoring.Outcome
}

// Run executes one scan. Cancellation of ctx produces a partial report
// (completed outcomes kept, metadata flagged) rather than an error.
func (e *Engine) Run(ctx context.Context, req Request) (*Result, error) {
	framework := req.Framework
	if framework == "" {
		framework = e.cfg.Framework()
	}
	categories := req.Categories
	if len(categories) == 0 {
		categories = e.cfg.EnabledCategories()
	}
	format := req.Format
	if format == "" {
		parsed, err := report.ParseFormat(e.cfg.OutputFormat)
		if err != nil {
			return nil, err
		}
		format = parsed
	}

	plan := e.registry.ListChecks(categories)
	if req.ByFramework {
		plan = filterByFramework(plan, framework)
	}

	e.log.Info().
		Str("stage", string(StageConfigured)).
		Str("project", e.cfg.Project).
		Str("framework", string(framework)).
		Int("checks", len(plan)).
		Msg("scan configured")

	target := checks.Target{
		Project:     e.cfg.Project,
		Environment: e.cfg.Environment,
		Buckets:     e.cfg.Buckets,
	}

	e.log.Debug().Str("stage", string(StageExecuting)).Msg("executing checks")
	results, partial := e.exec.Run(ctx, plan, e.provider, target)

	outcomes := make([]scoring.Outcome, len(results))
	for i, r := range results {
		outcomes[i] = scoring.Outcome{Check: r.Check, Outcome: r.Outcome}
	}

	e.log.Debug().Str("stage", string(StageSynthesizing)).Msg("synthesizing findings")
	ts := e.now().UTC()
	findings := scoring.Synthesize(outcomes, framework, ts)
	findings = policy.Apply(findings, e.pol)

	summary := scoring.Summarize(outcomes, findings, e.cfg.ScoringThresholds())
	e.log.Info().
		Str("stage", string(StageScored)).
		Int("score", summary.ComplianceScore).
		Str("overall", string(summary.OverallStatus)).
		Int("findings", len(findings)).
		Bool("partial", partial).
		Msg("scan scored")

	rep := &models.ComplianceReport{
		Metadata: models.ReportMetadata{
			ReportID:       uuid.NewString(),
			GeneratedAt:    ts,
			ScannerVersion: version.Version,
			Project:        e.cfg.Project,
			Environment:    e.cfg.Environment,
			Framework:      framework,
			Partial:        partial,
		},
		Summary:         summary,
		Findings:        report.SortFindings(findings),
		Recommendations: report.Recommendations(findings),
	}

	rendered, err := report.Render(rep, format)
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	res := &Result{Report: rep, Rendered: rendered, Outcomes: outcomes}

	if req.WriteReport {
		path, err := e.store.Write(rep, format)
		if err != nil {
			e.log.Error().Str("stage", string(StageAborted)).Err(err).Msg("report write failed")
			// Findings stay in res for a retry against the same results.
			return res, fmt.Errorf("write report: %w", err)
		}
		res.Path = path
	}

	e.log.Info().Str("stage", string(StageRendered)).Str("path", res.Path).Msg("scan complete")
	return res, nil
}

// filterByFramework keeps the checks applicable under f, preserving order.
func filterByFramework(defs []checks.CheckDefinition, f models.Framework) []checks.CheckDefinition {
	var out []checks.CheckDefinition
	for _, def := range defs {
		if def.AppliesTo(f) {
			out = append(out, def)
		}
	}
	return out
}
