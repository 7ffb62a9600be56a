package main

import (
	"github.com/cuemby/quilldb/pkg/config"
	"github.com/cuemby/quilldb/pkg/log"
	"github.com/spf13/cobra"
)

func initLogging() {
	level, _ := rootCmd.PersistentFlags().GetString("log-level")
	jsonOut, _ := rootCmd.PersistentFlags().GetBool("log-json")
	log.Init(log.Config{
		Level:      log.Level(level),
		JSONOutput: jsonOut,
	})
}

// loadConfig reads the --config flag shared by every subcommand.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}
