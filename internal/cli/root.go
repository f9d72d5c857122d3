package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/me/jamsched/internal/config"
	"github.com/me/jamsched/internal/logging"
)

var (
	flagServer    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string
	flagConfig    string

	logger *slog.Logger
	client *Client
)

// defaultServer returns the default controller URL, checking JAMSCHED_SERVER first.
func defaultServer() string {
	if s := os.Getenv("JAMSCHED_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

// NewRootCmd creates the root cobra command for the jamsched CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "jamsched",
		Short: "jamsched: periodic RT/SY co-scheduler",
		Long:  "jamsched plans worker timelines for periodic real-time and synchronous tasks, locally or against a running controller.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flagDebug {
				flagLogLevel = "debug"
			}
			format, err := logging.ParseFormat(flagLogFormat)
			if err != nil {
				return err
			}
			logger = logging.NewLogger(logging.ParseLevel(flagLogLevel), format)
			client = NewClient(flagServer, logger)
			return nil
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagServer, "server", defaultServer(), "Controller URL (or JAMSCHED_SERVER env)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "Controller config file supplying defaults and priority bands")

	root.AddCommand(
		newPlanCmd(),
		newValidateCmd(),
		newRebaseCmd(),
		newSubmitCmd(),
		newStatusCmd(),
	)

	return root
}

// controllerConfig loads --config, or the defaults when it is unset.
func controllerConfig() (config.ControllerConfig, error) {
	if flagConfig == "" {
		return config.DefaultControllerConfig(), nil
	}
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if apiErr := cfg.Validate(); apiErr != nil {
		return cfg, apiErr
	}
	return cfg, nil
}
