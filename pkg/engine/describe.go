package engine

import "fmt"

// CollectionSummary is a read-only snapshot of one collection for
// operator tooling (cmd/quilldb inspect), assembled from the catalog
// and live storage/index state rather than exposing either directly.
type CollectionSummary struct {
	Database    string
	Name        string
	StorageMode string
	TotalRows   int64
	Indexes     []string
}

// Describe lists every database and, within it, every collection's
// storage mode, row count and registered indexes.
func (e *Engine) Describe() (map[string][]CollectionSummary, error) {
	databases, err := e.cat.ListDatabases()
	if err != nil {
		return nil, fmt.Errorf("engine: list databases: %w", err)
	}
	out := make(map[string][]CollectionSummary, len(databases))
	for _, db := range databases {
		colls, err := e.cat.ListCollections(db)
		if err != nil {
			return nil, fmt.Errorf("engine: list collections for %s: %w", db, err)
		}
		summaries := make([]CollectionSummary, 0, len(colls))
		for _, cm := range colls {
			total, err := e.storage.StorageTotalRows(fullName(cm.Database, cm.Name))
			if err != nil {
				return nil, fmt.Errorf("engine: total rows for %s/%s: %w", cm.Database, cm.Name, err)
			}
			indexMetas, err := e.cat.ListIndexes(cm.Database, cm.Name)
			if err != nil {
				return nil, fmt.Errorf("engine: list indexes for %s/%s: %w", cm.Database, cm.Name, err)
			}
			names := make([]string, len(indexMetas))
			for i, im := range indexMetas {
				names[i] = im.Name
			}
			summaries = append(summaries, CollectionSummary{
				Database:    cm.Database,
				Name:        cm.Name,
				StorageMode: cm.StorageMode,
				TotalRows:   total,
				Indexes:     names,
			})
		}
		out[db] = summaries
	}
	return out, nil
}
