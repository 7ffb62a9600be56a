package catalog

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	bolt "go.etcd.io/bbolt"

	"github.com/cuemby/quilldb/pkg/types"
)

var (
	bucketDatabases   = []byte("databases")
	bucketCollections = []byte("collections")
	bucketSequences   = []byte("sequences")
	bucketViews       = []byte("views")
	bucketMacros      = []byte("macros")
	bucketIndexes     = []byte("indexes")
)

// ColumnMeta is one column's catalog record: its type plus the NOT
// NULL/DEFAULT metadata storagemgr.ColumnSchema needs to rebuild its
// Entry on load. Default, if present, is a types.Encode payload.
type ColumnMeta struct {
	Name    string                   `json:"name"`
	Type    types.ComplexLogicalType `json:"type"`
	NotNull bool                     `json:"not_null"`
	Default []byte                   `json:"default,omitempty"`
}

// CollectionMeta is one collection's catalog record (§6 "table ->
// {columns, storage_mode}").
type CollectionMeta struct {
	Database    string       `json:"database"`
	Name        string       `json:"name"`
	Columns     []ColumnMeta `json:"columns"`
	StorageMode string       `json:"storage_mode"` // "memory" or "disk"
	Path        string       `json:"path,omitempty"`
}

// SequenceMeta, ViewMeta and MacroMeta round out "database ->
// {collections, sequences, views, macros}"; the engine persists them
// verbatim without interpreting Definition/Next itself (§4.9 keeps
// SQL-level concerns outside the core interface).
type SequenceMeta struct {
	Database string `json:"database"`
	Name     string `json:"name"`
	Next     int64  `json:"next"`
}

type ViewMeta struct {
	Database   string `json:"database"`
	Name       string `json:"name"`
	Definition string `json:"definition"`
}

type MacroMeta struct {
	Database   string `json:"database"`
	Name       string `json:"name"`
	Definition string `json:"definition"`
}

// IndexMeta is one index's catalog record, the per-manager enumeration
// the "index_METADATA" file in §6 describes for reconstruction.
type IndexMeta struct {
	Database   string     `json:"database"`
	Collection string     `json:"collection"`
	Name       string     `json:"name"`
	KeyPaths   [][]string `json:"key_paths"`
}

// Store is catalog.otbx: a bbolt file with one bucket per entity kind,
// mirroring pkg/storage/boltdb.go's BoltStore shape exactly.
type Store struct {
	db *bolt.DB
}

// Open creates or opens catalog.otbx under dir.
func Open(dir string) (*Store, error) {
	path := filepath.Join(dir, "catalog.otbx")
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketDatabases, bucketCollections, bucketSequences, bucketViews, bucketMacros, bucketIndexes} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the backing file.
func (s *Store) Close() error { return s.db.Close() }

func compositeKey(parts ...string) []byte {
	return []byte(strings.Join(parts, "/"))
}

func putJSON(tx *bolt.Tx, bucket, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return tx.Bucket(bucket).Put(key, data)
}

// PutDatabase registers database name, a no-op value entry since a
// database is otherwise just a namespace prefix over the other
// buckets.
func (s *Store) PutDatabase(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDatabases).Put([]byte(name), []byte("1"))
	})
}

// DropDatabase removes name and every collection/sequence/view/macro/
// index entry under it.
func (s *Store) DropDatabase(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketDatabases).Delete([]byte(name)); err != nil {
			return err
		}
		prefix := []byte(name + "/")
		for _, b := range [][]byte{bucketCollections, bucketSequences, bucketViews, bucketMacros, bucketIndexes} {
			bucket := tx.Bucket(b)
			c := bucket.Cursor()
			for k, _ := c.Seek(prefix); k != nil && strings.HasPrefix(string(k), string(prefix)); k, _ = c.Next() {
				if err := bucket.Delete(k); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// ListDatabases returns every registered database name.
func (s *Store) ListDatabases() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDatabases).ForEach(func(k, v []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}

// PutCollection upserts a collection's catalog record.
func (s *Store) PutCollection(meta CollectionMeta) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return putJSON(tx, bucketCollections, compositeKey(meta.Database, meta.Name), meta)
	})
}

// GetCollection returns database/name's record, or false if absent.
func (s *Store) GetCollection(database, name string) (CollectionMeta, bool, error) {
	var meta CollectionMeta
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketCollections).Get(compositeKey(database, name))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &meta)
	})
	return meta, found, err
}

// DropCollection removes database/name's record and every index
// record registered under it.
func (s *Store) DropCollection(database, name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketCollections).Delete(compositeKey(database, name)); err != nil {
			return err
		}
		prefix := []byte(database + "/" + name + "/")
		bucket := tx.Bucket(bucketIndexes)
		c := bucket.Cursor()
		for k, _ := c.Seek(prefix); k != nil && strings.HasPrefix(string(k), string(prefix)); k, _ = c.Next() {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListCollections returns every collection registered under database.
func (s *Store) ListCollections(database string) ([]CollectionMeta, error) {
	var out []CollectionMeta
	prefix := []byte(database + "/")
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketCollections).Cursor()
		for k, v := c.Seek(prefix); k != nil && strings.HasPrefix(string(k), string(prefix)); k, v = c.Next() {
			var meta CollectionMeta
			if err := json.Unmarshal(v, &meta); err != nil {
				return err
			}
			out = append(out, meta)
		}
		return nil
	})
	return out, err
}

// PutIndex upserts an index's catalog record.
func (s *Store) PutIndex(meta IndexMeta) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return putJSON(tx, bucketIndexes, compositeKey(meta.Database, meta.Collection, meta.Name), meta)
	})
}

// DropIndex removes one index record.
func (s *Store) DropIndex(database, collection, name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketIndexes).Delete(compositeKey(database, collection, name))
	})
}

// ListIndexes returns every index registered under database/collection
// (the "index_METADATA" enumeration of §6).
func (s *Store) ListIndexes(database, collection string) ([]IndexMeta, error) {
	var out []IndexMeta
	prefix := []byte(database + "/" + collection + "/")
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketIndexes).Cursor()
		for k, v := c.Seek(prefix); k != nil && strings.HasPrefix(string(k), string(prefix)); k, v = c.Next() {
			var meta IndexMeta
			if err := json.Unmarshal(v, &meta); err != nil {
				return err
			}
			out = append(out, meta)
		}
		return nil
	})
	return out, err
}

// PutSequence, PutView and PutMacro upsert their respective catalog
// records under the same composite database/name key as collections.
// GetSequence reads sequences back; views and macros have no getter,
// and none of the three has a list or drop method.
func (s *Store) PutSequence(meta SequenceMeta) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return putJSON(tx, bucketSequences, compositeKey(meta.Database, meta.Name), meta)
	})
}

func (s *Store) GetSequence(database, name string) (SequenceMeta, bool, error) {
	var meta SequenceMeta
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketSequences).Get(compositeKey(database, name))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &meta)
	})
	return meta, found, err
}

func (s *Store) PutView(meta ViewMeta) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return putJSON(tx, bucketViews, compositeKey(meta.Database, meta.Name), meta)
	})
}

func (s *Store) PutMacro(meta MacroMeta) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return putJSON(tx, bucketMacros, compositeKey(meta.Database, meta.Name), meta)
	})
}
