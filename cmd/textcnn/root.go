package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"textcnn/internal/config"
	"textcnn/internal/logging"
)

var (
	log *logrus.Logger

	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:          "textcnn",
	Short:        "textcnn trains and evaluates a convolutional text classifier over the 20 Newsgroups corpus",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "", "config file (default ./config.yaml, then ~/.config/textcnn/config.yaml)")
}

// loadConfig resolves the configuration for a subcommand and applies the
// configured log level.
func loadConfig() (*config.AppConfig, error) {
	var cfg *config.AppConfig
	var err error
	if cfgFile == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgFile)
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Execute executes the root cobra command.
func Execute() {
	log = logging.GetLogger()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
