package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vibast-solutions/ms-go-bounces/config"
)

var rootCmd = &cobra.Command{
	Use:   "bounces",
	Short: "Bounce parsing microservice",
	Long:  "A microservice that parses bounce mails into per-recipient delivery records via HTTP, gRPC, a Redis stream consumer and a batch CLI.",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		return setupLogging(cfg.LogLevel, cfg.LogFormat)
	},
	SilenceUsage: true,
}

// Execute runs the root Cobra command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setupLogging configures the standard logrus logger.
func setupLogging(level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	logrus.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "", "text":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("unsupported LOG_FORMAT: %s", format)
	}
	return nil
}
