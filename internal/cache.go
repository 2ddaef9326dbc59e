package internal

import (
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// Cache stores fetched puzzle inputs so each one is downloaded once.
type Cache struct {
	db *badger.DB
}

// badgerLogger routes badger's own logging through zap.
type badgerLogger struct {
	s *zap.SugaredLogger
}

func (l badgerLogger) Errorf(format string, args ...any)   { l.s.Errorf(format, args...) }
func (l badgerLogger) Warningf(format string, args ...any) { l.s.Warnf(format, args...) }
func (l badgerLogger) Infof(format string, args ...any)    { l.s.Debugf(format, args...) }
func (l badgerLogger) Debugf(format string, args ...any)   { l.s.Debugf(format, args...) }

// OpenCache opens the cache in dir, creating it if needed. An empty dir gives
// an in-memory cache that is lost on Close.
func OpenCache(dir string, logger *zap.Logger) (*Cache, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create cache directory %s: %w", dir, err)
		}
		opts = badger.DefaultOptions(dir)
	}

	if logger != nil {
		opts = opts.WithLogger(badgerLogger{s: logger.Named("cache").Sugar()})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger.Open: %w", err)
	}
	return &Cache{db: db}, nil
}

func inputKey(year, day int) []byte {
	return fmt.Appendf(nil, "input/%d/%d", year, day)
}

// Get returns the cached input for a puzzle, reporting false on a miss.
func (c *Cache) Get(year, day int) ([]byte, bool, error) {
	var val []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(inputKey(year, day))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %d/%d: %w", year, day, err)
	}
	return val, true, nil
}

func (c *Cache) Put(year, day int, input []byte) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(inputKey(year, day), input)
	})
	if err != nil {
		return fmt.Errorf("cache put %d/%d: %w", year, day, err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}
