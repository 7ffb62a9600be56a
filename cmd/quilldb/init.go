package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cuemby/quilldb/pkg/engine"
	"github.com/cuemby/quilldb/pkg/metrics"
	"github.com/cuemby/quilldb/pkg/types"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Open the engine, apply bootstrap config, and serve metrics until interrupted",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().String("metrics-addr", "127.0.0.1:9090", "Address for the /metrics endpoint")
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

	arena := types.NewArena("quilldb")
	e, err := engine.Open(cfg.DataDir, arena)
	if err != nil {
		return fmt.Errorf("open engine: %w", err)
	}
	defer e.Close()

	if err := e.Bootstrap(cfg); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	fmt.Printf("✓ Engine opened at %s\n", cfg.DataDir)

	go func() {
		http.Handle("/metrics", metrics.Handler())
		if err := http.ListenAndServe(metricsAddr, nil); err != nil {
			fmt.Fprintf(os.Stderr, "metrics server error: %v\n", err)
		}
	}()
	fmt.Printf("✓ Metrics endpoint: http://%s/metrics\n", metricsAddr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("shutting down, checkpointing...")
	if _, err := e.CheckpointAll(); err != nil {
		return fmt.Errorf("checkpoint on shutdown: %w", err)
	}
	return nil
}
