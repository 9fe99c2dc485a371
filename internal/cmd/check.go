package cmd

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/openrdap/rdap"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/namelens/handlecheck/internal/config"
	"github.com/namelens/handlecheck/internal/core"
	"github.com/namelens/handlecheck/internal/core/checker"
	"github.com/namelens/handlecheck/internal/core/engine"
	apperrors "github.com/namelens/handlecheck/internal/errors"
	"github.com/namelens/handlecheck/internal/metrics"
	"github.com/namelens/handlecheck/internal/observability"
	"github.com/namelens/handlecheck/internal/output"
)

var checkCmd = &cobra.Command{
	Use:   "check <handle>",
	Short: "Check handle availability",
	Long: `Check whether a handle is free as a domain under each TLD of a preset
(or a custom list) and as a profile on YouTube, Instagram and TikTok.

Every target is checked concurrently. A target that fails to answer is
reported as unknown; it never aborts the run.`,
	Example: `  handlecheck check acme
  handlecheck check acme --preset enterprise
  handlecheck check acme -t com,io,dev --skip-social
  handlecheck check acme --skip-domains --debug --output json`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	registerCheckFlags(checkCmd)

	_ = appViper.BindPFlag("debug.enabled", checkCmd.Flags().Lookup("debug"))
}

func registerCheckFlags(c *cobra.Command) {
	c.Flags().StringP("preset", "p", "", "TLD preset: startup, enterprise, country (default from check.preset)")
	c.Flags().StringP("tlds", "t", "", "Comma-separated TLDs to check instead of the preset")
	c.Flags().Bool("skip-domains", false, "Skip domain checks")
	c.Flags().Bool("skip-social", false, "Skip social platform checks")
	c.Flags().Bool("debug", false, "Attach page diagnostics to social results")
	c.Flags().String("output", "table", "Output format: table, json, markdown, yaml")
	c.Flags().Bool("no-progress", false, "Disable the progress bar")
}

type checkOptions struct {
	preset      string
	tlds        string
	skipDomains bool
	skipSocial  bool
	format      output.Format
	noProgress  bool
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := apperrors.WithCorrelationID(cmd.Context())

	handle := args[0]
	if strings.TrimSpace(handle) == "" {
		return apperrors.EnsureCorrelationID(apperrors.NewInvalidInputError("handle must not be blank"), ctx)
	}

	cfg := config.GetConfig()
	if cfg == nil {
		return apperrors.EnsureCorrelationID(apperrors.NewConfigInvalidError("config not loaded"), ctx)
	}

	opts, err := readCheckOptions(cmd, cfg)
	if err != nil {
		return apperrors.WrapInvalidInput(ctx, err, "invalid check options")
	}
	if opts.skipDomains && opts.skipSocial {
		return apperrors.EnsureCorrelationID(
			apperrors.NewInvalidInputError("nothing to check: both --skip-domains and --skip-social are set"), ctx)
	}
	if opts.preset != "" {
		if _, ok := core.FindPreset(opts.preset); !ok {
			observability.CLILogger.Warn("Unknown preset, using default",
				zap.String("preset", opts.preset),
				zap.String("default", core.DefaultPreset))
		}
	}

	orchestrator := buildOrchestrator(cfg)
	req := engine.Request{
		Handle:       handle,
		CheckDomains: !opts.skipDomains,
		CheckSocial:  !opts.skipSocial,
		Preset:       opts.preset,
		CustomTLDs:   opts.tlds,
		Debug:        cfg.Debug.Enabled,
	}

	var progress *progressReporter
	if !opts.noProgress {
		progress = newProgressReporter(handle, plannedTargets(req, len(orchestrator.Social)))
	}
	orchestrator.OnResult = func(result *core.CheckResult) {
		progress.observe()
		if req.Debug {
			logTargetDiagnostics(result)
		}
	}

	startedAt := time.Now()
	report, err := orchestrator.Check(ctx, req)
	progress.finish()
	if err != nil {
		return apperrors.WrapInvalidInput(ctx, err, "check failed")
	}

	summary := report.Summary()
	metrics.RecordRun(summary)

	rendered, err := output.NewFormatter(opts.format).FormatReport(report)
	if err != nil {
		return apperrors.WrapInternal(ctx, err, "failed to render report")
	}
	if rendered != "" {
		fmt.Fprintln(cmd.OutOrStdout(), rendered)
	}

	logThroughput(summary.Total, startedAt)
	return nil
}

func readCheckOptions(cmd *cobra.Command, cfg *config.Config) (checkOptions, error) {
	var opts checkOptions
	var err error

	if opts.preset, err = cmd.Flags().GetString("preset"); err != nil {
		return opts, err
	}
	opts.preset = strings.ToLower(strings.TrimSpace(opts.preset))
	if opts.preset == "" {
		opts.preset = cfg.Check.Preset
	}

	if opts.tlds, err = cmd.Flags().GetString("tlds"); err != nil {
		return opts, err
	}
	if opts.skipDomains, err = cmd.Flags().GetBool("skip-domains"); err != nil {
		return opts, err
	}
	if opts.skipSocial, err = cmd.Flags().GetBool("skip-social"); err != nil {
		return opts, err
	}
	if opts.noProgress, err = cmd.Flags().GetBool("no-progress"); err != nil {
		return opts, err
	}

	formatValue, err := cmd.Flags().GetString("output")
	if err != nil {
		return opts, err
	}
	if opts.format, err = output.ParseFormat(formatValue); err != nil {
		return opts, err
	}

	return opts, nil
}

// plannedTargets counts the results a request will produce.
func plannedTargets(req engine.Request, platforms int) int {
	total := 0
	if req.CheckDomains {
		total += len(core.ResolveTLDs(req.Preset, req.CustomTLDs))
	}
	if req.CheckSocial {
		total += platforms
	}
	return total
}

func buildOrchestrator(cfg *config.Config) *engine.Orchestrator {
	probe := checker.NewProbeClient(checker.ProbeConfig{
		UserAgent:    cfg.Probe.UserAgent,
		Timeout:      cfg.Probe.Timeout,
		MaxRedirects: cfg.Probe.MaxRedirects,
		MaxBodyBytes: cfg.Probe.MaxBodyBytes,
	})

	social := make([]engine.SocialTarget, 0, len(core.SocialPlatforms))
	for _, platform := range core.SocialPlatforms {
		social = append(social, engine.SocialTarget{
			Platform: platform,
			Checker: &checker.SocialChecker{
				Platform:    platform,
				Probe:       probe,
				ToolVersion: versionInfo.Version,
				CaptureDir:  cfg.Debug.CaptureDir,
			},
		})
	}

	rdapHTTP := &http.Client{Timeout: cfg.Domain.RDAPTimeout}
	resolver := &checker.RDAPResolver{
		Bootstrap: &checker.RDAPBootstrap{
			HTTPClient: rdapHTTP,
			BaseURL:    cfg.Domain.BootstrapURL,
		},
		Client:  &rdap.Client{HTTP: rdapHTTP},
		Timeout: cfg.Domain.RDAPTimeout,
		Whois: &checker.DefaultWhoisClient{
			Servers: cfg.Domain.WhoisFallback.Servers,
			Timeout: cfg.Domain.WhoisFallback.Timeout,
		},
		WhoisCfg: checker.WhoisFallbackConfig{
			Enabled:           cfg.Domain.WhoisFallback.Enabled,
			TLDs:              cfg.Domain.WhoisFallback.TLDs,
			RequireExplicit:   cfg.Domain.WhoisFallback.RequireExplicit,
			Timeout:           cfg.Domain.WhoisFallback.Timeout,
			Servers:           cfg.Domain.WhoisFallback.Servers,
			AvailablePatterns: cfg.Domain.WhoisFallback.AvailablePatterns,
			TakenPatterns:     cfg.Domain.WhoisFallback.TakenPatterns,
		},
		DNS: net.DefaultResolver,
		DNSCfg: checker.DNSFallbackConfig{
			Enabled: cfg.Domain.DNSFallback.Enabled,
			Timeout: cfg.Domain.DNSFallback.Timeout,
		},
		RDAPOverrides: cfg.Domain.RDAPOverrides,
	}

	return &engine.Orchestrator{
		Domain: &checker.DomainChecker{
			Resolver:    resolver,
			ToolVersion: versionInfo.Version,
		},
		Social: social,
	}
}

func logTargetDiagnostics(result *core.CheckResult) {
	if result == nil {
		return
	}
	fields := []zap.Field{
		zap.String("check_type", string(result.CheckType)),
		zap.String("name", result.Name),
		zap.String("verdict", result.Available.String()),
		zap.String("source", result.Provenance.Source),
	}
	if result.StatusCode != 0 {
		fields = append(fields, zap.Int("status_code", result.StatusCode))
	}
	if result.Message != "" {
		fields = append(fields, zap.String("message", result.Message))
	}
	if len(result.ExtraData) > 0 {
		fields = append(fields, zap.Any("extra", result.ExtraData))
	}
	observability.CLILogger.Info("Target checked", fields...)
}

func logThroughput(count int, startedAt time.Time) {
	if count <= 0 {
		return
	}
	elapsed := time.Since(startedAt)
	if elapsed <= 0 {
		return
	}
	rate := float64(count) / elapsed.Seconds()
	observability.CLILogger.Info(
		"Check throughput",
		zap.Int("checks", count),
		zap.Duration("elapsed", elapsed),
		zap.Float64("rate_per_sec", rate),
	)
}
