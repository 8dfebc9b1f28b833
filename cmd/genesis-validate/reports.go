package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhousteau/genesis-sub002/internal/config"
	"github.com/jhousteau/genesis-sub002/internal/models"
	"github.com/jhousteau/genesis-sub002/internal/report"
)

// buildStore wires just the configuration and report store. The history
// commands are read-only and must work without cloud credentials, so they
// never resolve a fact provider.
func buildStore(flags *rootFlags) (*config.ScanConfiguration, *report.Store, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, nil, err
	}
	if flags.reportDir != "" {
		cfg.ReportDir = flags.reportDir
	}
	return cfg, report.NewStore(cfg.ReportDir), nil
}

func newReportCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "report [report-id]",
		Short: "Print a stored report (default: the most recent)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := buildStore(flags)
			if err != nil {
				return err
			}

			var rep *models.ComplianceReport
			if len(args) > 0 {
				rep, err = store.Load(args[0])
			} else {
				rep, err = store.Latest()
			}
			if errors.Is(err, report.ErrNotFound) {
				return fmt.Errorf("no report available in %s; run a scan first", store.Dir())
			}
			if err != nil {
				return err
			}

			rendered, err := report.Render(rep, report.FormatJSON)
			if err != nil {
				return err
			}
			cmd.OutOrStdout().Write(rendered)
			return nil
		},
	}
}

func newReportsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reports [limit]",
		Short: "List stored reports, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := buildStore(flags)
			if err != nil {
				return err
			}

			limit := 0
			if len(args) > 0 {
				limit, err = strconv.Atoi(args[0])
				if err != nil || limit < 1 {
					return fmt.Errorf("invalid limit %q: expected a positive integer", args[0])
				}
			}

			refs, err := store.List(limit)
			if err != nil {
				return err
			}
			if len(refs) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No reports in %s\n", store.Dir())
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%-36s  %-20s  %s\n", "REPORT ID", "GENERATED", "PATH")
			for _, ref := range refs {
				fmt.Fprintf(cmd.OutOrStdout(), "%-36s  %-20s  %s\n",
					ref.ReportID,
					ref.GeneratedAt.UTC().Format("2006-01-02 15:04:05"),
					ref.Path,
				)
			}
			return nil
		},
	}
}

func newDashboardCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the current configuration and the latest scan summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := buildStore(flags)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "=== Configuration ===")
			fmt.Fprintf(out, "Project:     %s\n", cfg.Project)
			fmt.Fprintf(out, "Environment: %s\n", cfg.Environment)
			fmt.Fprintf(out, "Framework:   %s\n", cfg.PrimaryFramework)
			if len(cfg.AdditionalFrameworks) > 0 {
				fmt.Fprintf(out, "Additional:  %s\n", strings.Join(cfg.AdditionalFrameworks, ", "))
			}
			fmt.Fprintf(out, "Provider:    %s\n", cfg.Provider)
			fmt.Fprintf(out, "Reports:     %s\n", store.Dir())
			fmt.Fprintf(out, "Thresholds:  critical>%d high>%d\n",
				cfg.Thresholds.CriticalFailures, cfg.Thresholds.HighWarnings)

			fmt.Fprintln(out, "\n=== Latest scan ===")
			rep, err := store.Latest()
			if errors.Is(err, report.ErrNotFound) {
				fmt.Fprintln(out, "No scans recorded yet. Run: genesis-validate scan")
				return nil
			}
			if err != nil {
				return err
			}

			s := rep.Summary
			fmt.Fprintf(out, "Report ID:   %s\n", rep.Metadata.ReportID)
			fmt.Fprintf(out, "Generated:   %s\n", rep.Metadata.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
			fmt.Fprintf(out, "Framework:   %s\n", rep.Metadata.Framework)
			fmt.Fprintf(out, "Overall:     %s  (score %d/100)\n", s.OverallStatus, s.ComplianceScore)
			fmt.Fprintf(out, "Checks:      %d total, %d passed, %d failed, %d warned, %d skipped\n",
				s.TotalChecks, s.Passed, s.Failed, s.Warned, s.Skipped)
			if s.CriticalCount > 0 || s.HighCount > 0 {
				fmt.Fprintf(out, "Severity:    %d critical, %d high, %d medium, %d low\n",
					s.CriticalCount, s.HighCount, s.MediumCount, s.LowCount)
			}
			if len(rep.Findings) > 0 {
				byCategory := make(map[models.Category]int)
				for _, f := range rep.Findings {
					byCategory[f.Category]++
				}
				fmt.Fprintln(out, "\nFindings by category:")
				for _, cat := range models.CategoryOrder {
					if n := byCategory[cat]; n > 0 {
						fmt.Fprintf(out, "  %-13s %d\n", cat, n)
					}
				}
			}
			if rep.Metadata.Partial {
				fmt.Fprintln(out, "Note:        latest scan was partial")
			}
			if len(rep.Recommendations) > 0 {
				fmt.Fprintln(out, "\nTop recommendations:")
				max := len(rep.Recommendations)
				if max > 5 {
					max = 5
				}
				for _, rec := range rep.Recommendations[:max] {
					fmt.Fprintf(out, "  - %s\n", rec)
				}
			}
			return nil
		},
	}
}
