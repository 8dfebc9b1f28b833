package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jhousteau/genesis-sub002/internal/checks"
	"github.com/jhousteau/genesis-sub002/internal/config"
	"github.com/jhousteau/genesis-sub002/internal/engine"
	"github.com/jhousteau/genesis-sub002/internal/models"
	"github.com/jhousteau/genesis-sub002/internal/output"
	"github.com/jhousteau/genesis-sub002/internal/policy"
	"github.com/jhousteau/genesis-sub002/internal/report"
	"github.com/jhousteau/genesis-sub002/internal/version"
)

// rootFlags are the persistent flags shared by every command.
type rootFlags struct {
	configPath string
	policyPath string
	provider   string
	factsPath  string
	reportDir  string
	verbose    bool
	colored    bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "genesis-validate",
		Short:         "Compliance and isolation validation for cloud projects",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Path to the scan configuration file (default: ./"+config.DefaultFileName+")")
	pf.StringVar(&flags.policyPath, "policy", "", "Path to an optional check policy file")
	pf.StringVar(&flags.provider, "provider", "", "Fact provider: gcloud, aws, or static (default: from configuration)")
	pf.StringVar(&flags.factsPath, "facts", "", "JSON fact fixture for the static provider")
	pf.StringVar(&flags.reportDir, "report-dir", "", "Report directory (default: from configuration)")
	pf.BoolVar(&flags.verbose, "verbose", false, "Enable debug logging")
	pf.BoolVar(&flags.colored, "color", false, "Colorize terminal output")

	root.AddCommand(newScanCmd(flags))
	root.AddCommand(newValidateCmd(flags))
	root.AddCommand(newTestCmd(flags))
	root.AddCommand(newReportCmd(flags))
	root.AddCommand(newReportsCmd(flags))
	root.AddCommand(newDashboardCmd(flags))
	root.AddCommand(newVersionCmd())

	return root
}

func newScanCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "scan [framework] [format]",
		Short: "Run all checks for a framework and write a scored report",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp(flags)
			if err != nil {
				return err
			}

			req := engine.Request{ByFramework: true, WriteReport: true}
			if len(args) > 0 {
				fw := models.Framework(args[0])
				if !models.KnownFramework(fw) {
					return fmt.Errorf("unknown framework %q", args[0])
				}
				req.Framework = fw
			}
			if len(args) > 1 {
				format, err := report.ParseFormat(args[1])
				if err != nil {
					return err
				}
				req.Format = format
			}

			res, err := app.engine.Run(cmd.Context(), req)
			if err != nil {
				return err
			}

			cmd.OutOrStdout().Write(res.Rendered)
			fmt.Fprintf(cmd.OutOrStdout(), "\nReport written: %s\n", res.Path)
			if res.Report.Summary.OverallStatus == models.StatusFail {
				return errOverallFail
			}
			return nil
		},
	}
}

func newValidateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [categories...]",
		Short: "Run checks restricted to the given categories (default: all)",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp(flags)
			if err != nil {
				return err
			}

			categories, err := parseCategories(args)
			if err != nil {
				return err
			}

			res, err := app.engine.Run(cmd.Context(), engine.Request{
				Categories:  categories,
				WriteReport: true,
			})
			if err != nil {
				return err
			}

			cmd.OutOrStdout().Write(res.Rendered)
			fmt.Fprintf(cmd.OutOrStdout(), "\nReport written: %s\n", res.Path)
			if res.Report.Summary.OverallStatus == models.StatusFail {
				return errOverallFail
			}
			return nil
		},
	}
}

func newTestCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "test <category>",
		Short: "Run a single category and print results without writing a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp(flags)
			if err != nil {
				return err
			}

			categories, err := parseCategories(args)
			if err != nil {
				return err
			}

			res, err := app.engine.Run(cmd.Context(), engine.Request{
				Categories: categories,
			})
			if err != nil {
				return err
			}

			output.RenderTable(cmd.OutOrStdout(), res.Outcomes, output.TableOptions{
				Colored:   flags.colored,
				Framework: res.Report.Metadata.Framework,
			})
			s := res.Report.Summary
			fmt.Fprintf(cmd.OutOrStdout(),
				"\n%d checks: %d passed, %d failed, %d warned, %d skipped  (score %d/100)\n",
				s.TotalChecks, s.Passed, s.Failed, s.Warned, s.Skipped, s.ComplianceScore)
			if s.OverallStatus == models.StatusFail {
				return errOverallFail
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), version.Info())
		},
	}
}

// parseCategories validates category names against the canonical set.
func parseCategories(names []string) ([]models.Category, error) {
	var out []models.Category
	for _, name := range names {
		c := models.Category(strings.ToLower(name))
		if !models.ValidCategory(c) {
			return nil, fmt.Errorf("unknown category %q; valid values: %s", name, categoryNames())
		}
		out = append(out, c)
	}
	return out, nil
}

func categoryNames() string {
	names := make([]string, len(models.CategoryOrder))
	for i, c := range models.CategoryOrder {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

// app bundles the wired components for one invocation.
type app struct {
	cfg    *config.ScanConfiguration
	store  *report.Store
	engine *engine.Engine
	log    zerolog.Logger
}

// buildApp loads configuration and policy, resolves the fact provider, and
// wires the engine. Configuration problems surface here, before any check
// runs.
func buildApp(flags *rootFlags) (*app, error) {
	log := newLogger(flags.verbose)

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.reportDir != "" {
		cfg.ReportDir = flags.reportDir
	}
	if flags.provider != "" {
		cfg.Provider = flags.provider
	}

	registry := checks.NewDefaultRegistry()

	var pol *policy.Config
	if flags.policyPath != "" {
		pol, err = policy.Load(flags.policyPath)
		if err != nil {
			return nil, err
		}
		if errs := policy.Validate(pol, registry.IDs()); len(errs) > 0 {
			msgs := make([]string, len(errs))
			for i, e := range errs {
				msgs[i] = e.Error()
			}
			return nil, fmt.Errorf("invalid policy: %s", strings.Join(msgs, "; "))
		}
	}

	provider, err := buildProvider(cfg, flags)
	if err != nil {
		return nil, err
	}

	store := report.NewStore(cfg.ReportDir)
	eng := engine.New(engine.Options{
		Registry: registry,
		Provider: provider,
		Store:    store,
		Config:   cfg,
		Policy:   pol,
		Logger:   log,
	})

	return &app{cfg: cfg, store: store, engine: eng, log: log}, nil
}
