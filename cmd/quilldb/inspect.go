package main

import (
	"fmt"
	"sort"

	"github.com/cuemby/quilldb/pkg/engine"
	"github.com/cuemby/quilldb/pkg/types"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print every database/collection/index the catalog knows about",
	RunE:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	arena := types.NewArena("quilldb-inspect")
	e, err := engine.Open(cfg.DataDir, arena)
	if err != nil {
		return fmt.Errorf("open engine: %w", err)
	}
	defer e.Close()

	byDB, err := e.Describe()
	if err != nil {
		return fmt.Errorf("describe: %w", err)
	}
	databases := make([]string, 0, len(byDB))
	for db := range byDB {
		databases = append(databases, db)
	}
	sort.Strings(databases)

	for _, db := range databases {
		fmt.Printf("%s\n", db)
		for _, c := range byDB[db] {
			fmt.Printf("  %-24s %-8s rows=%-8d indexes=%v\n", c.Name, c.StorageMode, c.TotalRows, c.Indexes)
		}
	}
	return nil
}
