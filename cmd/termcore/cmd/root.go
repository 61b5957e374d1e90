package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	mdwlog "github.com/msto63/termcore/foundation/core/log"
	"github.com/msto63/termcore/pkg/core/config"
	"github.com/msto63/termcore/pkg/core/logging"
)

var (
	cfgFile    string
	verbose    bool
	activeMode string

	appConfig  *config.Config
	configPath string
	appLogger  *mdwlog.Logger
	logCloser  io.Closer
)

// errCommandFailed marks a command whose result carried error status; the
// result itself has already been printed
var errCommandFailed = errors.New("command failed")

var rootCmd = &cobra.Command{
	Use:   "termcore",
	Short: "termcore - mode-aware command interpreter",
	Long: `termcore interprets single command lines against the command set of
the active operating mode.

Modes:
  general-purpose          - Everyday utilities
  security-assessment      - Authorized reconnaissance and hashing tools
  binary-analysis          - Byte level inspection
  business-operations      - Revenue, margin and forecasting
  web-engineering          - Deployment and HTTP tooling
  application-engineering  - Build, test and release helpers
  physics-research         - Constants, units and quick models

Every mode also offers the base commands and the built-ins help, clear
and mode.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if appLogger != nil {
			appLogger.Sync()
		}
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

// Execute runs the CLI and returns the process exit code
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errCommandFailed) {
			printError(rootCmd.ErrOrStderr(), err)
		}
		return 1
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $TERMCORE_CONFIG or ./configs/termcore.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().StringVarP(&activeMode, "mode", "m", "", "operating mode (default from config)")
}

// setup loads the configuration and the logger shared by all subcommands
func setup(cmd *cobra.Command, args []string) error {
	var err error
	if cfgFile != "" {
		configPath = cfgFile
		appConfig, err = config.Load(cfgFile)
	} else {
		configPath = config.FindFile()
		if configPath != "" {
			appConfig, err = config.Load(configPath)
		} else {
			appConfig, err = config.LoadFromEnv()
		}
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := appConfig.General.LogLevel
	if verbose {
		level = "debug"
	}
	appLogger, logCloser, err = logging.NewLogger(logging.LoggerConfig{
		ServiceName: "termcore",
		Level:       level,
		Format:      appConfig.General.LogFormat,
		Output:      logOutput(cmd),
		File:        appConfig.General.LogFile,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	mdwlog.SetDefault(appLogger)

	if activeMode == "" {
		activeMode = appConfig.General.DefaultMode
	}
	return nil
}

// logOutput keeps one-shot commands quiet unless verbose is set; serve
// always logs
func logOutput(cmd *cobra.Command) io.Writer {
	if verbose || cmd.Name() == serveCmd.Name() {
		return cmd.ErrOrStderr()
	}
	return io.Discard
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
}
