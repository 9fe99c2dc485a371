package cmd

import (
	"fmt"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/telemetry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/namelens/handlecheck/internal/appid"
	"github.com/namelens/handlecheck/internal/config"
	"github.com/namelens/handlecheck/internal/observability"
)

var (
	cfgFile string
	verbose bool

	// appViper holds every config layer for the process; flags bind into it.
	appViper = config.NewViper()

	// Version info set by main package
	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}
)

// SetVersionInfo is called by main package to set version information
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   appid.Get().BinaryName,
	Short: appid.Get().Description,
	Long: fmt.Sprintf(`%s - %s

Checks one handle against domain registries (RDAP, with WHOIS and DNS
fallbacks) and social platform profile pages, concurrently.`, appid.Get().BinaryName, appid.Get().Description),
	// Errors are reported once, by ExitWithError.
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Keep telemetry disabled until config decides whether the exporter runs,
	// so config loading never emits to stdout.
	if sys, err := telemetry.NewSystem(&telemetry.Config{Enabled: false}); err == nil {
		telemetry.SetGlobalSystem(sys)
	}

	cobra.OnInitialize(initConfig)

	identity := appid.Get()
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		fmt.Sprintf("config file (default is $XDG_CONFIG_HOME/%s/config.yaml)", identity.ConfigName))
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (sets log level to debug)")
}

// initConfig reads in config file and ENV variables if set, then brings up
// logging and metrics from the loaded config.
func initConfig() {
	identity := appid.Get()

	dotEnvErr := config.LoadDotEnv(config.DefaultDotEnvPath)

	if cfgFile != "" {
		appViper.SetConfigFile(cfgFile)
	} else {
		config.AddConfigPaths(appViper)
	}

	readErr := appViper.ReadInConfig()
	if readErr != nil && cfgFile != "" {
		ExitWithCodeStderr(foundry.ExitFileNotFound, "Failed to read config file", readErr)
	}

	cfg, err := config.Load(appViper)
	if err != nil {
		ExitWithCodeStderr(foundry.ExitConfigInvalid, "Invalid configuration", err)
	}

	observability.InitCLILogger(identity.BinaryName, verbose, cfg.Logging.Level)

	if dotEnvErr != nil {
		observability.CLILogger.Warn("Failed to read .env file", zap.Error(dotEnvErr))
	}

	if readErr == nil {
		observability.CLILogger.Debug("Using config file", zap.String("path", appViper.ConfigFileUsed()))
	} else if _, ok := readErr.(viper.ConfigFileNotFoundError); ok {
		observability.CLILogger.Debug("No config file found, using defaults and environment variables")
	} else {
		observability.CLILogger.Warn("Error reading config file", zap.Error(readErr))
	}

	if cfg.Metrics.Enabled {
		if err := observability.InitMetrics(identity.BinaryName, cfg.Metrics.Port); err != nil {
			observability.CLILogger.Warn("Metrics exporter failed to start; continuing without metrics", zap.Error(err))
			_ = observability.InitNoopMetrics()
		} else {
			observability.CLILogger.Debug("Metrics exporter started", zap.Int("port", observability.GetMetricsPort()))
		}
	} else if err := observability.InitNoopMetrics(); err != nil {
		observability.CLILogger.Warn("Failed to initialize telemetry", zap.Error(err))
	}
}
