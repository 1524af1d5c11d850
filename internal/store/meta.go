package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
)

// SchemaVersion is the current on-disk schema. Forward migrations run
// once at Open; a database written by a newer schema is refused.
const SchemaVersion = 1

type Meta struct {
	SchemaVersion int            `json:"schema_version"`
	RowCounts     map[string]int `json:"row_counts"`
	MigratedAt    time.Time      `json:"migrated_at"`
}

// Meta returns the metadata record, or an initialized zero value when
// the database is empty.
func (s *Store) Meta(ctx context.Context) (*Meta, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Storage("context cancelled", err)
	}

	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(KeyMeta))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, apperr.Storage("read metadata", err)
	}

	meta := &Meta{RowCounts: map[string]int{}}
	if raw == nil {
		return meta, nil
	}
	if err := json.Unmarshal(raw, meta); err != nil {
		return nil, apperr.Storage("decode metadata", err)
	}
	if meta.RowCounts == nil {
		meta.RowCounts = map[string]int{}
	}
	return meta, nil
}

func (s *Store) writeMeta(ctx context.Context, meta *Meta) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return apperr.Storage("encode metadata", err)
	}
	lock := s.keyLock(KeyMeta)
	lock.Lock()
	defer lock.Unlock()
	return s.write(ctx, KeyMeta, raw)
}

func (s *Store) setRowCount(ctx context.Context, key string, count int) error {
	meta, err := s.Meta(ctx)
	if err != nil {
		return err
	}
	meta.RowCounts[key] = count
	return s.writeMeta(ctx, meta)
}

// migrate initializes an empty database and applies forward schema
// migrations. Version 1 only seeds empty collections and the metadata
// record; later versions add their steps here.
func (s *Store) migrate(ctx context.Context) error {
	meta, err := s.Meta(ctx)
	if err != nil {
		return err
	}

	if meta.SchemaVersion > SchemaVersion {
		return fmt.Errorf("store: database schema version %d is newer than supported version %d",
			meta.SchemaVersion, SchemaVersion)
	}
	if meta.SchemaVersion == SchemaVersion {
		return nil
	}

	if meta.SchemaVersion == 0 {
		for _, key := range CollectionKeys {
			if err := s.Update(ctx, key, func(raw []byte) ([]byte, error) {
				if raw != nil {
					return nil, nil // already present, keep as-is
				}
				return []byte("[]"), nil
			}); err != nil {
				return err
			}
			if _, ok := meta.RowCounts[key]; !ok {
				meta.RowCounts[key] = 0
			}
		}
	}

	meta.SchemaVersion = SchemaVersion
	meta.MigratedAt = time.Now()
	if err := s.writeMeta(ctx, meta); err != nil {
		return err
	}
	s.log.Info("storage schema migrated", zap.Int("version", SchemaVersion))
	return nil
}
