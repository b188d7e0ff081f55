package storage

import "bytes"

// PrefixDB scopes a DB to the keys under one prefix. The file service
// opens one per currency and network so that every wallet shares a
// single database without seeing each other's records.
type PrefixDB struct {
	inner  DB
	prefix []byte
}

// NewPrefixDB returns a view of inner restricted to prefix.
func NewPrefixDB(inner DB, prefix []byte) *PrefixDB {
	return &PrefixDB{inner: inner, prefix: bytes.Clone(prefix)}
}

func (p *PrefixDB) key(k []byte) []byte {
	return append(bytes.Clone(p.prefix), k...)
}

func (p *PrefixDB) Get(key []byte) ([]byte, error) { return p.inner.Get(p.key(key)) }

func (p *PrefixDB) Put(key, value []byte) error { return p.inner.Put(p.key(key), value) }

func (p *PrefixDB) Delete(key []byte) error { return p.inner.Delete(p.key(key)) }

func (p *PrefixDB) Has(key []byte) (bool, error) { return p.inner.Has(p.key(key)) }

// ForEach walks the keys under prefix inside the namespace. Keys reach fn
// without the namespace prefix.
func (p *PrefixDB) ForEach(prefix []byte, fn func(key, value []byte) error) error {
	n := len(p.prefix)
	return p.inner.ForEach(p.key(prefix), func(key, value []byte) error {
		return fn(key[n:], value)
	})
}

// DeleteAll removes every key in the namespace. Keys are gathered first
// and then deleted in one batch, atomically when inner is a Batcher.
func (p *PrefixDB) DeleteAll() error {
	var keys [][]byte
	err := p.ForEach(nil, func(key, _ []byte) error {
		keys = append(keys, bytes.Clone(key))
		return nil
	})
	if err != nil {
		return err
	}
	batch := p.NewBatch()
	for _, k := range keys {
		if err := batch.Delete(k); err != nil {
			return err
		}
	}
	return batch.Commit()
}

// Close does nothing. The owner of inner closes it.
func (p *PrefixDB) Close() error { return nil }

// NewBatch returns a batch writing inside the namespace.
func (p *PrefixDB) NewBatch() Batch {
	if b, ok := p.inner.(Batcher); ok {
		return &prefixBatch{Batch: b.NewBatch(), db: p}
	}
	return &sequentialBatch{db: p}
}

type prefixBatch struct {
	Batch
	db *PrefixDB
}

func (b *prefixBatch) Put(key, value []byte) error { return b.Batch.Put(b.db.key(key), value) }

func (b *prefixBatch) Delete(key []byte) error { return b.Batch.Delete(b.db.key(key)) }

// sequentialBatch replays buffered writes one at a time on Commit. A
// failed write leaves the earlier ones applied.
type sequentialBatch struct {
	db  *PrefixDB
	ops []batchOp
}

func (b *sequentialBatch) Put(key, value []byte) error {
	b.ops = append(b.ops, batchOp{bytes.Clone(key), append([]byte{}, value...)})
	return nil
}

func (b *sequentialBatch) Delete(key []byte) error {
	b.ops = append(b.ops, batchOp{bytes.Clone(key), nil})
	return nil
}

func (b *sequentialBatch) Commit() error {
	ops := b.ops
	b.ops = nil
	for _, op := range ops {
		apply := func() error { return b.db.Put(op.key, op.value) }
		if op.value == nil {
			apply = func() error { return b.db.Delete(op.key) }
		}
		if err := apply(); err != nil {
			return err
		}
	}
	return nil
}
