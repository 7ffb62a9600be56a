// Package config loads the engine's YAML configuration file, styled
// after the teacher's manager.Config and the compose-style manifests
// cmd/warren's apply command unmarshals with gopkg.in/yaml.v3.
package config

import (
	"fmt"
	"os"

	"github.com/cuemby/quilldb/pkg/types"
	"gopkg.in/yaml.v3"
)

// Column describes one bootstrap column of a bootstrap collection.
type Column struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	NotNull bool   `yaml:"not_null,omitempty"`
}

// Collection describes one collection the engine creates on first
// Open, if it is not already present in the catalog.
type Collection struct {
	Database string   `yaml:"database"`
	Name     string   `yaml:"name"`
	Disk     bool     `yaml:"disk"`
	Columns  []Column `yaml:"columns"`
	Indexes  []Index  `yaml:"indexes,omitempty"`
}

// Index describes one bootstrap index over a bootstrap collection.
type Index struct {
	Name     string     `yaml:"name"`
	KeyPaths [][]string `yaml:"key_paths"`
}

// Config is the engine's on-disk configuration, loaded once at startup
// by cmd/quilldb.
type Config struct {
	DataDir         string       `yaml:"data_dir"`
	PageSize        int          `yaml:"page_size"`
	BufferPoolPages int          `yaml:"buffer_pool_pages"`
	VectorCapacity  int          `yaml:"vector_capacity"`
	WALSync         bool         `yaml:"wal_sync"`
	LogLevel        string       `yaml:"log_level"`
	LogJSON         bool         `yaml:"log_json"`
	Bootstrap       []Collection `yaml:"bootstrap,omitempty"`
}

// Default returns a Config with the sizes the teacher's Config structs
// pick when a field is left zero in the file.
func Default() Config {
	return Config{
		DataDir:         "./data",
		PageSize:        16 * 1024,
		BufferPoolPages: 4096,
		VectorCapacity:  2048,
		WALSync:         true,
		LogLevel:        "info",
	}
}

// Load reads and parses the YAML file at path, applying Default() for
// any field the file leaves zero.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = Default().DataDir
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = Default().PageSize
	}
	if cfg.BufferPoolPages == 0 {
		cfg.BufferPoolPages = Default().BufferPoolPages
	}
	if cfg.VectorCapacity == 0 {
		cfg.VectorCapacity = Default().VectorCapacity
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = Default().LogLevel
	}
	return cfg, nil
}

var typeNames = map[string]types.LogicalType{
	"boolean":        types.BOOLEAN,
	"tinyint":        types.TINYINT,
	"smallint":       types.SMALLINT,
	"integer":        types.INTEGER,
	"bigint":         types.BIGINT,
	"uinteger":       types.UINTEGER,
	"ubigint":        types.UBIGINT,
	"float":          types.FLOAT,
	"double":         types.DOUBLE,
	"timestamp_sec":  types.TIMESTAMP_SEC,
	"timestamp_ms":   types.TIMESTAMP_MS,
	"timestamp_us":   types.TIMESTAMP_US,
	"timestamp_ns":   types.TIMESTAMP_NS,
	"string":         types.STRING_LITERAL,
	"string_literal": types.STRING_LITERAL,
	"blob":           types.BLOB,
}

// ResolveType maps a config file's lowercase type name to its
// types.ComplexLogicalType, tagged with the column's own name so
// schema matching by alias (pkg/storagemgr's expandColumns) works the
// same for bootstrap collections as for any other caller.
func ResolveType(name, columnName string) (types.ComplexLogicalType, error) {
	lt, ok := typeNames[name]
	if !ok {
		return types.ComplexLogicalType{}, fmt.Errorf("config: unknown column type %q", name)
	}
	return types.Simple(lt).WithAlias(columnName), nil
}
