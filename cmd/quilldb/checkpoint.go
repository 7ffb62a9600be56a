package main

import (
	"fmt"

	"github.com/cuemby/quilldb/pkg/engine"
	"github.com/cuemby/quilldb/pkg/types"
	"github.com/spf13/cobra"
)

var checkpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Open the engine and run checkpoint_all once",
	RunE:  runCheckpoint,
}

func runCheckpoint(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	arena := types.NewArena("quilldb-checkpoint")
	e, err := engine.Open(cfg.DataDir, arena)
	if err != nil {
		return fmt.Errorf("open engine: %w", err)
	}
	defer e.Close()

	allDiskBacked, err := e.CheckpointAll()
	if err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	if allDiskBacked {
		fmt.Println("✓ checkpoint complete, WAL prefix truncated")
	} else {
		fmt.Println("✓ checkpoint complete, WAL retained (in-memory collections present)")
	}
	return nil
}
