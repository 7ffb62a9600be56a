package main

import (
	"fmt"

	"github.com/cuemby/quilldb/pkg/engine"
	"github.com/cuemby/quilldb/pkg/types"
	"github.com/spf13/cobra"
)

var vacuumCmd = &cobra.Command{
	Use:   "vacuum",
	Short: "Open the engine and run vacuum_all against every collection past the deleted-row threshold",
	RunE:  runVacuum,
}

func init() {
	vacuumCmd.Flags().Int64("lowest-active-start", 1<<62, "Lowest start_time of any transaction still active, below which tombstoned versions are reclaimed")
}

func runVacuum(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	lowestActiveStart, _ := cmd.Flags().GetInt64("lowest-active-start")

	arena := types.NewArena("quilldb-vacuum")
	e, err := engine.Open(cfg.DataDir, arena)
	if err != nil {
		return fmt.Errorf("open engine: %w", err)
	}
	defer e.Close()

	errs := e.VacuumAll(lowestActiveStart)
	if len(errs) == 0 {
		fmt.Println("✓ vacuum complete, no errors")
		return nil
	}
	for _, err := range errs {
		fmt.Printf("vacuum error: %v\n", err)
	}
	return fmt.Errorf("vacuum: %d collection(s) failed", len(errs))
}
