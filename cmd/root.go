package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/grocerysushi/stumbleupon-clone/internal/config"
	"github.com/grocerysushi/stumbleupon-clone/internal/logging"
)

// Cfg is the global variable that will contain the loaded configuration
// It will be accessible to all Cobra commands throughout the application
var Cfg *config.Config

// Log is the application logger, configured from Cfg.Log.
var Log = logrus.New()

var configFile string

// RootCmd is the base command for the CLI application
// All other commands register themselves as subcommands from their own init()
var RootCmd = &cobra.Command{
	Use:   "stumble",
	Short: "A content discovery service",
	Long: `A content discovery service that serves one unseen link at a time,
balancing popular content with exploration, and records viewer feedback.`,
	SilenceUsage: true,
}

// Execute is the main entry point for the Cobra application
// It is called from 'main.go' and handles command execution and error handling
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Configuration is loaded before any command executes
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./configs/config.yaml)")
}

// initConfig loads the application configuration and sets up the logger.
// A broken config file is fatal; a missing one falls back to defaults.
func initConfig() {
	var err error
	Cfg, err = config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	Log = logging.New(Cfg.Log.Level, Cfg.Log.Format)
}
