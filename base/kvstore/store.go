// Package kvstore holds the contract state: a key/value store where every external call runs
// as one exclusive transaction that either commits all of its writes or none.
package kvstore

import (
	"errors"
	"strconv"

	"github.com/luxfi/database"
	"github.com/luxfi/database/badgerdb"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/database/prefixdb"
	"golang.org/x/xerrors"

	"github.com/x-xyz/fpomarket/base/ctx"
)

var (
	// ErrNotFound is returned when a key does not exist
	ErrNotFound = errors.New("key not found")
	// ErrNoTx is returned when writing outside of RunInTx
	ErrNoTx = errors.New("write outside of transaction")
)

var usageKey = []byte("__storage_usage")

// Config for the contract state store
type Config struct {
	// Path of the badger directory, empty means in-memory
	Path string
}

// Store is the persisted contract state
type Store struct {
	db     database.Database
	owned  bool
	tokens chan int
}

// New opens a badger backed store, or an in-memory one when no path is given
func New(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return NewMemory(), nil
	}
	db, err := badgerdb.New(cfg.Path, nil, "", nil)
	if err != nil {
		return nil, xerrors.Errorf("failed to open badgerdb: %w", err)
	}
	return newStore(db, true), nil
}

// NewMemory creates an in-memory store
func NewMemory() *Store {
	return newStore(memdb.New(), true)
}

func newStore(db database.Database, owned bool) *Store {
	tokens := make(chan int, 1)
	tokens <- 1
	return &Store{db: db, owned: owned, tokens: tokens}
}

// Partition returns an independent store living under prefix of the same database.
// It has its own transaction lock, like the state of a separate contract.
func (s *Store) Partition(prefix []byte) *Store {
	return newStore(prefixdb.New(prefix, s.db), false)
}

// Close closes the underlying database if the store owns it
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

// RunInTx runs fn with exclusive access to the store. Writes made through buckets of c are
// committed atomically when fn returns nil and dropped otherwise. Hooks registered with
// AfterCommit run once the lock is released. Nested calls join the open transaction.
func (s *Store) RunInTx(c ctx.Ctx, fn func(ctx.Ctx) error) error {
	if tx := txFrom(c, s); tx != nil {
		return fn(c)
	}

	var token int
	select {
	case <-c.Done():
		return c.Err()
	case token = <-s.tokens:
	}

	tx := newTx(s)
	err := fn(ctx.WithHidden(c, txKey{s}, tx))
	if err == nil {
		err = tx.commit()
		if err != nil {
			c.WithField("err", err).Error("tx.commit failed")
		}
	}
	tx.finished.Store(true)
	s.tokens <- token

	if err != nil {
		return err
	}
	for _, hook := range tx.hooks {
		hook()
	}
	return nil
}

// AfterCommit registers fn to run after the transaction of c commits.
// Outside of a transaction fn runs immediately.
func (s *Store) AfterCommit(c ctx.Ctx, fn func()) {
	if tx := txFrom(c, s); tx != nil {
		tx.hooks = append(tx.hooks, fn)
		return
	}
	fn()
}

// StorageUsage is the number of bytes held by the store, including pending writes of c's transaction
func (s *Store) StorageUsage(c ctx.Ctx) int64 {
	usage, err := s.persistedUsage()
	if err != nil {
		c.WithField("err", err).Error("persistedUsage failed")
	}
	if tx := txFrom(c, s); tx != nil {
		usage += tx.delta
	}
	return usage
}

// HealthCheck reports whether the underlying database is usable
func (s *Store) HealthCheck(c ctx.Ctx) error {
	_, err := s.db.Has(usageKey)
	return err
}

// Bucket returns the view of the keys under prefix as seen by c
func (s *Store) Bucket(c ctx.Ctx, prefix []byte) Bucket {
	return Bucket{store: s, tx: txFrom(c, s), prefix: prefix}
}

// UnmeteredBucket is like Bucket but its writes are not counted in StorageUsage.
// It holds host side state such as account balances.
func (s *Store) UnmeteredBucket(c ctx.Ctx, prefix []byte) Bucket {
	return Bucket{store: s, tx: txFrom(c, s), prefix: prefix, unmetered: true}
}

func (s *Store) persistedUsage() (int64, error) {
	raw, err := s.db.Get(usageKey)
	if err == database.ErrNotFound {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	return strconv.ParseInt(string(raw), 10, 64)
}

type txKey struct {
	store *Store
}

func txFrom(c ctx.Ctx, s *Store) *Tx {
	if c.Context == nil {
		return nil
	}
	tx, _ := c.Value(txKey{s}).(*Tx)
	if tx == nil || tx.finished.Load() {
		return nil
	}
	return tx
}
