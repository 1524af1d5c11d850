package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
)

type Config struct {
	Path       string // directory for database files; ignored when InMemory
	InMemory   bool   // no disk persistence; used by tests
	SyncWrites bool
}

// Store is a BadgerDB-backed EntityStore. Each storage key maps to one
// value: the JSON encoding of the full collection. Writers to the same
// key serialize on that key's mutex; writers to different keys proceed
// independently.
type Store struct {
	db  *badger.DB
	log logger.ZapLogger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Open opens the store and applies forward migrations. The caller owns
// the lifecycle: open at process start, Close at shutdown.
func Open(cfg *Config, log logger.ZapLogger) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("store: path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("store: create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)
	opts = opts.WithLogger(nil) // badger's own logging is noise here

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("store: open badger database: %w", err)
	}

	s := &Store{
		db:    db,
		log:   log,
		locks: make(map[string]*sync.Mutex),
	}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

func (s *Store) FindAll(ctx context.Context, key string, out any) error {
	if err := ctx.Err(); err != nil {
		return apperr.Storage("context cancelled", err)
	}

	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
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
		return apperr.Storage(fmt.Sprintf("read collection %q", key), err)
	}

	if raw == nil {
		raw = []byte("[]")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperr.Storage(fmt.Sprintf("decode collection %q", key), err)
	}
	return nil
}

func (s *Store) Set(ctx context.Context, key string, in any) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return apperr.Storage(fmt.Sprintf("encode collection %q", key), err)
	}

	lock := s.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	if err := s.write(ctx, key, raw); err != nil {
		return err
	}
	s.trackRowCount(ctx, key, raw)
	return nil
}

func (s *Store) Update(ctx context.Context, key string, fn func(raw []byte) ([]byte, error)) error {
	lock := s.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return apperr.Storage("context cancelled", err)
	}

	var current []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		current, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return apperr.Storage(fmt.Sprintf("read collection %q", key), err)
	}

	next, err := fn(current)
	if err != nil {
		return err
	}
	if next == nil {
		// fn signalled no change
		return nil
	}

	if err := s.write(ctx, key, next); err != nil {
		return err
	}
	s.trackRowCount(ctx, key, next)
	return nil
}

func (s *Store) write(ctx context.Context, key string, raw []byte) error {
	if err := ctx.Err(); err != nil {
		return apperr.Storage("context cancelled", err)
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), raw)
	})
	if err != nil {
		return apperr.Storage(fmt.Sprintf("write collection %q", key), err)
	}
	return nil
}

// trackRowCount keeps the metadata row counts in step with collection
// writes. Best effort: a failed metadata write is logged, not surfaced,
// since the collection write already committed.
func (s *Store) trackRowCount(ctx context.Context, key string, raw []byte) {
	if key == KeyMeta {
		return
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return
	}
	if err := s.setRowCount(ctx, key, len(rows)); err != nil {
		s.log.Warn("failed to update row count metadata",
			zap.String("key", key), zap.Error(err))
	}
}
