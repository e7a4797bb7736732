// ACE Estimator CLI - migration effort estimation for WMB/IIB to ACE projects
//
// Usage:
//   estimator quick --flows 150 --environments 4 --infrastructure container
//   estimator estimate --questionnaire project.json
//   estimator serve --port 8080
//   estimator seed
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"ace-estimator/api"
	"ace-estimator/internal/audit"
	"ace-estimator/internal/estimator"
	"ace-estimator/internal/history"
	"ace-estimator/internal/insight"
	"ace-estimator/internal/questionnaire"
	"ace-estimator/internal/rules"
	contracts "ace-estimator/pkg/api"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Local overrides for development; absence is not an error.
	_ = godotenv.Load()

	app := &cli.App{
		Name:    "estimator",
		Usage:   "IBM ACE migration effort estimation (WMB/IIB to ACE)",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"ESTIMATOR_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-host",
				Value:   "localhost",
				Usage:   "ClickHouse host for the historical project corpus",
				EnvVars: []string{"CLICKHOUSE_HOST"},
			},
			&cli.IntFlag{
				Name:    "clickhouse-port",
				Value:   9000,
				Usage:   "ClickHouse native port",
				EnvVars: []string{"CLICKHOUSE_PORT"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-database",
				Value:   "ace_estimator",
				Usage:   "ClickHouse database",
				EnvVars: []string{"CLICKHOUSE_DATABASE"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-user",
				Value:   "default",
				Usage:   "ClickHouse user",
				EnvVars: []string{"CLICKHOUSE_USER"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-password",
				Value:   "",
				Usage:   "ClickHouse password",
				EnvVars: []string{"CLICKHOUSE_PASSWORD"},
			},
			&cli.StringFlag{
				Name:    "postgres-dsn",
				Value:   "",
				Usage:   "Postgres DSN for the estimate audit log (empty disables auditing)",
				EnvVars: []string{"ESTIMATOR_POSTGRES_DSN"},
			},
		},

		Commands: []*cli.Command{
			quickCommand(),
			estimateCommand(),
			serveCommand(),
			seedCommand(),
			versionCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(c *cli.Context) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.String("log-level"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)
	if os.Getenv("ENV") == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return logger
}

func openStore(c *cli.Context) (*history.ClickHouseStore, error) {
	return history.NewClickHouseStore(&history.Config{
		Host:     c.String("clickhouse-host"),
		Port:     c.Int("clickhouse-port"),
		Database: c.String("clickhouse-database"),
		Username: c.String("clickhouse-user"),
		Password: c.String("clickhouse-password"),
	})
}

// =============================================================================
// QUICK COMMAND
// =============================================================================

func quickCommand() *cli.Command {
	return &cli.Command{
		Name:  "quick",
		Usage: "Deterministic estimate from flags, no questionnaire or database needed",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:     "flows",
				Usage:    "Total number of message flows to migrate",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "environments",
				Value: 1,
				Usage: "Number of target environments (DEV, TEST, PROD, ...)",
			},
			&cli.StringFlag{
				Name:  "infrastructure",
				Value: "on_premise",
				Usage: "Target infrastructure (container, on_premise, cloud)",
			},
			&cli.BoolFlag{
				Name:  "mq",
				Usage: "Source uses IBM MQ",
			},
			&cli.StringFlag{
				Name:  "setup",
				Value: "configured",
				Usage: "Target setup status (new, configured)",
			},
			&cli.StringFlag{
				Name:  "source-version",
				Usage: "Source product version (WMB_v6 ... ACE_v12)",
			},
			&cli.StringFlag{
				Name:  "host-platform",
				Usage: "Source host platform (on_premise, cloud, mainframe, container)",
			},
			&cli.IntFlag{
				Name:  "plugin-count",
				Usage: "Number of custom plugins",
			},
			&cli.IntFlag{
				Name:  "protocols",
				Usage: "Number of integration protocols",
			},
			&cli.IntFlag{
				Name:  "external-systems",
				Usage: "Number of external systems",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "table",
				Usage:   "Output format (table, json, markdown)",
			},
		},
		Action: runQuick,
	}
}

func runQuick(c *cli.Context) error {
	features := rules.ProjectFeatures{
		FlowCount:                c.Int("flows"),
		EnvironmentCount:         c.Int("environments"),
		Infrastructure:           rules.Infrastructure(c.String("infrastructure")),
		HasMessageQueue:          c.Bool("mq"),
		SetupStatus:              rules.SetupStatus(c.String("setup")),
		SourceVersion:            c.String("source-version"),
		HostPlatform:             c.String("host-platform"),
		HasCustomPlugins:         c.Int("plugin-count") > 0,
		CustomPluginCount:        c.Int("plugin-count"),
		IntegrationProtocolCount: c.Int("protocols"),
		ExternalSystemCount:      c.Int("external-systems"),
	}

	svc := estimator.NewService(rules.NewEngine(), nil, insight.NewRuleAdvisor(), newLogger(c))
	estimate, err := svc.QuickEstimate(features)
	if err != nil {
		return err
	}

	switch c.String("format") {
	case "json":
		return outputJSON(estimate)
	case "markdown":
		return outputQuickMarkdown(estimate)
	default:
		return outputQuickTable(estimate)
	}
}

// =============================================================================
// ESTIMATE COMMAND
// =============================================================================

func estimateCommand() *cli.Command {
	return &cli.Command{
		Name:  "estimate",
		Usage: "Full estimation report from a questionnaire file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "questionnaire",
				Aliases:  []string{"q"},
				Usage:    "Path to questionnaire JSON",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "skip-history",
				Usage: "Skip historical project retrieval (no database needed)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "table",
				Usage:   "Output format (table, json, markdown)",
			},
		},
		Action: runEstimate,
	}
}

func runEstimate(c *cli.Context) error {
	logger := newLogger(c)

	raw, err := os.ReadFile(c.String("questionnaire"))
	if err != nil {
		return fmt.Errorf("failed to read questionnaire: %w", err)
	}

	var q questionnaire.Questionnaire
	if err := json.Unmarshal(raw, &q); err != nil {
		return fmt.Errorf("failed to parse questionnaire: %w", err)
	}

	var retriever history.Retriever
	if !c.Bool("skip-history") {
		store, err := openStore(c)
		if err != nil {
			logger.Warn().Err(err).Msg("history store unavailable, continuing without historical context")
		} else {
			defer store.Close()
			retriever = store
		}
	}

	svc := estimator.NewService(rules.NewEngine(), retriever, insight.NewRuleAdvisor(), logger)
	report, err := svc.FullReport(context.Background(), &q)
	if err != nil {
		return fmt.Errorf("estimation failed: %w", err)
	}

	switch c.String("format") {
	case "json":
		return outputJSON(report)
	case "markdown":
		return outputReportMarkdown(report)
	default:
		return outputReportTable(report)
	}
}

// =============================================================================
// SERVE COMMAND
// =============================================================================

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the estimation API server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP port",
				EnvVars: []string{"PORT"},
			},
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Run without the historical project store",
			},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	logger := newLogger(c)
	ctx := context.Background()

	var store history.Store
	var retriever history.Retriever
	if !c.Bool("no-history") {
		chStore, err := openStore(c)
		if err != nil {
			return fmt.Errorf("failed to connect to history store: %w", err)
		}
		defer chStore.Close()
		if err := chStore.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("failed to prepare history schema: %w", err)
		}
		store = chStore
		retriever = chStore
	}

	var auditLog *audit.Log
	if dsn := c.String("postgres-dsn"); dsn != "" {
		var err error
		auditLog, err = audit.Open(dsn)
		if err != nil {
			return fmt.Errorf("failed to open audit log: %w", err)
		}
		defer auditLog.Close()
		if err := auditLog.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("failed to prepare audit schema: %w", err)
		}
	}

	advisor := insight.NewRuleAdvisor()
	svc := estimator.NewService(rules.NewEngine(), retriever, advisor, logger)

	config := api.DefaultConfig()
	config.Port = c.Int("port")

	api.Version = version
	server := api.NewServer(svc, advisor, store, auditLog, config, logger)
	return server.StartWithGracefulShutdown()
}

// =============================================================================
// SEED COMMAND
// =============================================================================

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:   "seed",
		Usage:  "Load the starter corpus of historical projects into ClickHouse",
		Action: runSeed,
	}
}

func runSeed(c *cli.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to prepare schema: %w", err)
	}

	n, err := history.Seed(ctx, store)
	if err != nil {
		return fmt.Errorf("seeding failed after %d projects: %w", n, err)
	}

	fmt.Printf("Seeded %d historical projects\n", n)
	return nil
}

// =============================================================================
// VERSION COMMAND
// =============================================================================

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print version information",
		Action: func(c *cli.Context) error {
			fmt.Printf("estimator %s (commit: %s, built: %s)\n", version, commit, date)
			return nil
		},
	}
}

// =============================================================================
// OUTPUT FORMATTERS
// =============================================================================

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func outputQuickTable(e contracts.QuickEstimate) error {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                 📦 ACE MIGRATION ESTIMATE                     ║")
	fmt.Println("╠══════════════════════════════════════════════════════════════╣")
	fmt.Printf("║  Total Effort:          %-38s ║\n", fmt.Sprintf("%.2f person-days", e.Totals.TotalDays))
	fmt.Printf("║  Duration:              %-38s ║\n", fmt.Sprintf("%.2f weeks / %.2f months", e.Totals.TotalWeeks, e.Totals.TotalMonths))
	fmt.Println("╠══════════════════════════════════════════════════════════════╣")
	fmt.Println("║  BREAKDOWN                                                    ║")
	fmt.Println("╠══════════════════════════════════════════════════════════════╣")
	printComponent("Environment setup", e.Breakdown.EnvironmentSetup.Subtotal)
	printComponent("Target configuration", e.Breakdown.TargetSetup.Subtotal)
	printComponent("Migration + testing", e.Breakdown.MigrationExecution.Subtotal)
	printComponent("Contingency buffer", e.Breakdown.Buffer.Subtotal)
	printComponent("Fixed components", e.Breakdown.FixedComponents.Total)
	if len(e.Breakdown.Buffer.ContributingFactors) > 0 {
		fmt.Println("╠══════════════════════════════════════════════════════════════╣")
		for _, f := range e.Breakdown.Buffer.ContributingFactors {
			fmt.Printf("║  ⚠️  %-56s ║\n", truncate(f, 56))
		}
	}
	fmt.Println("╚══════════════════════════════════════════════════════════════╝")
	return nil
}

func outputQuickMarkdown(e contracts.QuickEstimate) error {
	fmt.Println("## 📦 ACE Migration Estimate")
	fmt.Println()
	fmt.Println("| Component | Days |")
	fmt.Println("|-----------|------|")
	fmt.Printf("| Environment setup | %.2f |\n", e.Breakdown.EnvironmentSetup.Subtotal)
	fmt.Printf("| Target configuration | %.2f |\n", e.Breakdown.TargetSetup.Subtotal)
	fmt.Printf("| Migration + testing | %.2f |\n", e.Breakdown.MigrationExecution.Subtotal)
	fmt.Printf("| Contingency buffer | %.2f |\n", e.Breakdown.Buffer.Subtotal)
	fmt.Printf("| Fixed components | %.2f |\n", e.Breakdown.FixedComponents.Total)
	fmt.Printf("| **Total** | **%.2f** |\n", e.Totals.TotalDays)
	fmt.Println()
	fmt.Printf("Duration: **%.2f weeks** (~%.2f months)\n", e.Totals.TotalWeeks, e.Totals.TotalMonths)
	return nil
}

func outputReportTable(r contracts.EstimationReport) error {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                 📋 ESTIMATION REPORT                          ║")
	fmt.Println("╠══════════════════════════════════════════════════════════════╣")
	fmt.Printf("║  Project:               %-38s ║\n", truncate(r.ProjectID, 38))
	fmt.Printf("║  Base Estimate:         %-38s ║\n", fmt.Sprintf("%.2f person-days", r.Totals.TotalDays))
	fmt.Printf("║  Final Estimate:        %-38s ║\n", fmt.Sprintf("%.2f person-days", r.Adjusted.FinalDays))
	fmt.Printf("║  Confidence:            %-38s ║\n", fmt.Sprintf("%.0f%% (%s)", r.OverallConfidence*100, r.ConfidenceLevel))
	fmt.Printf("║  Risk Level:            %-38s ║\n", r.RiskAssessment.OverallRiskLevel)
	fmt.Println("╠══════════════════════════════════════════════════════════════╣")
	fmt.Println("║  BREAKDOWN                                                    ║")
	fmt.Println("╠══════════════════════════════════════════════════════════════╣")
	printComponent("Environment setup", r.Breakdown.EnvironmentSetup.Subtotal)
	printComponent("Target configuration", r.Breakdown.TargetSetup.Subtotal)
	printComponent("Migration + testing", r.Breakdown.MigrationExecution.Subtotal)
	printComponent("Contingency buffer", r.Breakdown.Buffer.Subtotal)
	printComponent("Fixed components", r.Breakdown.FixedComponents.Total)

	if r.Adjusted.AdjustmentFromBase != 0 {
		fmt.Println("╠══════════════════════════════════════════════════════════════╣")
		fmt.Printf("║  Historical adjustment: %-38s ║\n", fmt.Sprintf("%+.2f days", r.Adjusted.AdjustmentFromBase))
		fmt.Printf("║  %-60s ║\n", truncate(r.Adjusted.AdjustmentReason, 60))
	}

	risks := append(append([]contracts.RiskItem{}, r.RiskAssessment.HighPriorityRisks...), r.RiskAssessment.MediumPriorityRisks...)
	if len(risks) > 0 {
		fmt.Println("╠══════════════════════════════════════════════════════════════╣")
		fmt.Println("║  KEY RISKS                                                    ║")
		fmt.Println("╠══════════════════════════════════════════════════════════════╣")
		for _, risk := range risks {
			fmt.Printf("║  ⚠️  %-56s ║\n", truncate(risk.Item, 56))
		}
	}

	fmt.Println("╚══════════════════════════════════════════════════════════════╝")

	if r.SimilarProjectsCount > 0 {
		fmt.Printf("\nBased on %d similar historical projects.\n", r.SimilarProjectsCount)
	}
	return nil
}

func outputReportMarkdown(r contracts.EstimationReport) error {
	fmt.Println("## 📋 ACE Migration Estimation Report")
	fmt.Println()
	fmt.Println("| Metric | Value |")
	fmt.Println("|--------|-------|")
	fmt.Printf("| **Project** | %s |\n", r.ProjectID)
	fmt.Printf("| **Base Estimate** | %.2f person-days |\n", r.Totals.TotalDays)
	fmt.Printf("| **Final Estimate** | %.2f person-days |\n", r.Adjusted.FinalDays)
	fmt.Printf("| **Duration** | %.2f weeks (~%.2f months) |\n", r.Totals.TotalWeeks, r.Totals.TotalMonths)
	fmt.Printf("| **Confidence** | %.0f%% (%s) |\n", r.OverallConfidence*100, r.ConfidenceLevel)
	fmt.Printf("| **Risk Level** | %s |\n", r.RiskAssessment.OverallRiskLevel)
	fmt.Println()
	fmt.Println("### Breakdown")
	fmt.Println()
	fmt.Println("| Component | Days |")
	fmt.Println("|-----------|------|")
	fmt.Printf("| Environment setup | %.2f |\n", r.Breakdown.EnvironmentSetup.Subtotal)
	fmt.Printf("| Target configuration | %.2f |\n", r.Breakdown.TargetSetup.Subtotal)
	fmt.Printf("| Migration + testing | %.2f |\n", r.Breakdown.MigrationExecution.Subtotal)
	fmt.Printf("| Contingency buffer | %.2f |\n", r.Breakdown.Buffer.Subtotal)
	fmt.Printf("| Fixed components | %.2f |\n", r.Breakdown.FixedComponents.Total)

	if len(r.RiskAssessment.HighPriorityRisks) > 0 {
		fmt.Println()
		fmt.Println("### ❌ High Priority Risks")
		fmt.Println()
		for _, risk := range r.RiskAssessment.HighPriorityRisks {
			fmt.Printf("- **%s**: %s\n", risk.Item, risk.Recommendation)
		}
	}

	if len(r.Recommendations) > 0 {
		fmt.Println()
		fmt.Println("### Recommendations")
		fmt.Println()
		for _, rec := range r.Recommendations {
			fmt.Printf("- %s\n", rec)
		}
	}

	return nil
}

func printComponent(name string, days float64) {
	fmt.Printf("║  %-35s  %-21s ║\n", name, fmt.Sprintf("%.2f days", days))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
