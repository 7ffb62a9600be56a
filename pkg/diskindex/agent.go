package diskindex

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cuemby/quilldb/pkg/index"
	"github.com/cuemby/quilldb/pkg/types"
	bolt "go.etcd.io/bbolt"
)

var bucketEntries = []byte("entries")

// Agent is a per-index disk mirror backed by a bbolt file, one per
// index under <db>/<collection>/<index_name>/index.bolt (§6 Index
// files). It implements index.Agent so index.Engine can attach it
// directly.
type Agent struct {
	db   *bolt.DB
	path string
}

// Open creates or opens the agent's backing file at dir/index.bolt,
// creating dir if needed.
func Open(dir string) (*Agent, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("diskindex: mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, "index.bolt")
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("diskindex: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketEntries)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("diskindex: init bucket: %w", err)
	}
	return &Agent{db: db, path: path}, nil
}

// Close closes the backing file.
func (a *Agent) Close() error { return a.db.Close() }

// encodeEntryKey builds the bolt key for one (key, row id) pair: the
// self-describing encoding of key (types.Encode) followed by the
// row id, so equal index keys with different row ids never collide.
func encodeEntryKey(key types.Value, rowID int64) []byte {
	enc := types.Encode(key)
	out := make([]byte, len(enc)+8)
	copy(out, enc)
	binary.BigEndian.PutUint64(out[len(enc):], uint64(rowID))
	return out
}

// InsertMany mirrors a batch of committed inserts (§4.6 disk mirror).
func (a *Agent) InsertMany(ops []index.DiskOp) error {
	if len(ops) == 0 {
		return nil
	}
	return a.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketEntries)
		for _, op := range ops {
			rid := make([]byte, 8)
			binary.BigEndian.PutUint64(rid, uint64(op.RowID))
			if err := b.Put(encodeEntryKey(op.Key, op.RowID), rid); err != nil {
				return fmt.Errorf("diskindex: put: %w", err)
			}
		}
		return nil
	})
}

// RemoveMany mirrors a batch of committed deletes (§4.6 disk mirror).
func (a *Agent) RemoveMany(ops []index.DiskOp) error {
	if len(ops) == 0 {
		return nil
	}
	return a.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketEntries)
		for _, op := range ops {
			if err := b.Delete(encodeEntryKey(op.Key, op.RowID)); err != nil {
				return fmt.Errorf("diskindex: delete: %w", err)
			}
		}
		return nil
	})
}

// LoadAll scans every entry in the agent's file, for rebuilding an
// in-memory index.Index after a restart (§4.6 "index rebuild" in the
// crash-recovery path). The row id is recovered from the stored value
// rather than re-parsed out of the key, since only types.Decode knows
// how to stop reading a variable-length key encoding.
func (a *Agent) LoadAll(arena *types.Arena) ([]index.DiskOp, error) {
	var ops []index.DiskOp
	err := a.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketEntries)
		return b.ForEach(func(k, v []byte) error {
			keyLen := len(k) - 8
			if keyLen < 0 {
				return fmt.Errorf("diskindex: corrupt key of length %d", len(k))
			}
			key, err := types.Decode(arena, k[:keyLen])
			if err != nil {
				return fmt.Errorf("diskindex: decode key: %w", err)
			}
			rowID := int64(binary.BigEndian.Uint64(v))
			ops = append(ops, index.DiskOp{Key: key, RowID: rowID})
			return nil
		})
	})
	return ops, err
}
