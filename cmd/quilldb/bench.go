package main

import (
	"fmt"
	"time"

	"github.com/cuemby/quilldb/pkg/engine"
	"github.com/cuemby/quilldb/pkg/types"
	"github.com/cuemby/quilldb/pkg/vector"
	"github.com/spf13/cobra"
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Append a batch of synthetic rows and report commit throughput",
	RunE:  runBench,
}

func init() {
	benchCmd.Flags().Int("rows", 100000, "Total rows to append")
	benchCmd.Flags().Int("batch", 1000, "Rows per transaction")
	benchCmd.Flags().Bool("disk", true, "Create the bench collection disk-backed")
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	rows, _ := cmd.Flags().GetInt("rows")
	batch, _ := cmd.Flags().GetInt("batch")
	disk, _ := cmd.Flags().GetBool("disk")

	arena := types.NewArena("quilldb-bench")
	e, err := engine.Open(cfg.DataDir, arena)
	if err != nil {
		return fmt.Errorf("open engine: %w", err)
	}
	defer e.Close()

	if err := e.CreateDatabaseTxn("bench"); err != nil {
		return fmt.Errorf("create bench database: %w", err)
	}
	columns := []engine.ColumnSchemaArg{
		{Name: "id", Type: types.Simple(types.BIGINT), NotNull: true},
		{Name: "value", Type: types.Simple(types.DOUBLE)},
	}
	if err := e.CreateCollectionPublic("bench", "rows", columns, disk); err != nil {
		return fmt.Errorf("create bench collection: %w", err)
	}

	colTypes := []types.ComplexLogicalType{
		types.Simple(types.BIGINT).WithAlias("id"),
		types.Simple(types.DOUBLE).WithAlias("value"),
	}

	start := time.Now()
	var committed int64
	for committed < int64(rows) {
		n := batch
		if remaining := int64(rows) - committed; int64(n) > remaining {
			n = int(remaining)
		}
		chunk := vector.NewChunk(arena, colTypes, n)
		for i := 0; i < n; i++ {
			id := committed + int64(i)
			chunk.SetValue(0, i, types.NewInt(types.BIGINT, id))
			chunk.SetValue(1, i, types.NewFloat64(float64(id)*1.5))
		}
		chunk.SetCardinality(n)

		txn := e.Begin()
		if _, _, err := e.Append(txn, "bench", "rows", chunk); err != nil {
			e.Revert(txn)
			return fmt.Errorf("append: %w", err)
		}
		if err := e.Commit(txn); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
		committed += int64(n)
	}
	elapsed := time.Since(start)

	fmt.Printf("committed %d rows in %s (%.0f rows/sec)\n", committed, elapsed, float64(committed)/elapsed.Seconds())
	return nil
}
