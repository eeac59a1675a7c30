package kvstore

import (
	"bytes"
	"sort"
	"strconv"
	"sync/atomic"

	"github.com/luxfi/database"
	"golang.org/x/xerrors"
)

type write struct {
	value   []byte
	deleted bool
}

// Tx buffers the writes of one RunInTx call
type Tx struct {
	store  *Store
	writes map[string]*write
	delta  int64
	hooks  []func()

	// set once RunInTx returns, contexts detached from the call no longer see the tx
	finished atomic.Bool
}

func newTx(s *Store) *Tx {
	return &Tx{store: s, writes: map[string]*write{}}
}

func (tx *Tx) get(key []byte) ([]byte, error) {
	if w, ok := tx.writes[string(key)]; ok {
		if w.deleted {
			return nil, ErrNotFound
		}
		return w.value, nil
	}
	return tx.store.get(key)
}

func (tx *Tx) put(key, value []byte, metered bool) error {
	old, err := tx.get(key)
	if err == nil {
		if metered {
			tx.delta -= int64(len(key) + len(old))
		}
	} else if err != ErrNotFound {
		return err
	}
	v := make([]byte, len(value))
	copy(v, value)
	tx.writes[string(key)] = &write{value: v}
	if metered {
		tx.delta += int64(len(key) + len(v))
	}
	return nil
}

func (tx *Tx) delete(key []byte, metered bool) error {
	old, err := tx.get(key)
	if err == ErrNotFound {
		return nil
	} else if err != nil {
		return err
	}
	if metered {
		tx.delta -= int64(len(key) + len(old))
	}
	tx.writes[string(key)] = &write{deleted: true}
	return nil
}

func (tx *Tx) commit() error {
	if len(tx.writes) == 0 {
		return nil
	}
	usage, err := tx.store.persistedUsage()
	if err != nil {
		return xerrors.Errorf("failed to read storage usage: %w", err)
	}
	batch := tx.store.db.NewBatch()
	for k, w := range tx.writes {
		if w.deleted {
			err = batch.Delete([]byte(k))
		} else {
			err = batch.Put([]byte(k), w.value)
		}
		if err != nil {
			return err
		}
	}
	if err := batch.Put(usageKey, []byte(strconv.FormatInt(usage+tx.delta, 10))); err != nil {
		return err
	}
	return batch.Write()
}

func (s *Store) get(key []byte) ([]byte, error) {
	v, err := s.db.Get(key)
	if err == database.ErrNotFound {
		return nil, ErrNotFound
	}
	return v, err
}

// Bucket is a keyspace under a fixed prefix. Reads see the pending writes of the
// transaction it was opened in; writes require a transaction.
type Bucket struct {
	store     *Store
	tx        *Tx
	prefix    []byte
	unmetered bool
}

func (b Bucket) key(k []byte) []byte {
	full := make([]byte, 0, len(b.prefix)+len(k))
	full = append(full, b.prefix...)
	return append(full, k...)
}

func (b Bucket) Get(k []byte) ([]byte, error) {
	if b.tx != nil {
		return b.tx.get(b.key(k))
	}
	return b.store.get(b.key(k))
}

func (b Bucket) Has(k []byte) (bool, error) {
	_, err := b.Get(k)
	if err == ErrNotFound {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}

func (b Bucket) Put(k, v []byte) error {
	if b.tx == nil {
		return ErrNoTx
	}
	return b.tx.put(b.key(k), v, !b.unmetered)
}

func (b Bucket) Delete(k []byte) error {
	if b.tx == nil {
		return ErrNoTx
	}
	return b.tx.delete(b.key(k), !b.unmetered)
}

// Iterate calls fn in key order for every entry whose key starts with sub.
// Keys are passed without the bucket prefix. Returning false stops the iteration.
func (b Bucket) Iterate(sub []byte, fn func(k, v []byte) (bool, error)) error {
	full := b.key(sub)
	entries := map[string][]byte{}

	iter := b.store.db.NewIteratorWithPrefix(full)
	for iter.Next() {
		k := iter.Key()
		if bytes.Equal(k, usageKey) {
			continue
		}
		v := make([]byte, len(iter.Value()))
		copy(v, iter.Value())
		entries[string(k)] = v
	}
	err := iter.Error()
	iter.Release()
	if err != nil {
		return xerrors.Errorf("failed to iterate: %w", err)
	}

	if b.tx != nil {
		for k, w := range b.tx.writes {
			if !bytes.HasPrefix([]byte(k), full) {
				continue
			}
			if w.deleted {
				delete(entries, k)
			} else {
				entries[k] = w.value
			}
		}
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		more, err := fn([]byte(k)[len(b.prefix):], entries[k])
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	return nil
}
