package orm

import (
	"bytes"
	"math"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

const nativeIdxPrefix = "_x."

// nativeIndex is an index implementation that is using a database native
// storage and query in order to maintain and provide access to an index.
type nativeIndex struct {
	name    string
	indexer Indexer
}

func newNativeIndex(name string, indexer Indexer) *nativeIndex {
	return &nativeIndex{name: name, indexer: indexer}
}

// Update updates the index. It should be called when any of the bucket
// entities has changed in the store.
//
// prev == nil means insert
// next == nil means delete
func (ix *nativeIndex) Update(db ledger.KVStore, pk []byte, prev, next Model) error {
	if prev == nil && next == nil {
		return errors.Wrap(errors.ErrInput, "update requires at least one non-nil model")
	}
	if prev != nil {
		v, err := ix.indexer(prev)
		if err != nil {
			return errors.Wrap(err, "indexer")
		}
		if v != nil {
			key, err := packNativeIdxKey([][]byte{[]byte(ix.name), v, pk})
			if err != nil {
				return errors.Wrap(err, "build index key")
			}
			if err := db.Delete(key); err != nil {
				return errors.Wrap(err, "db delete")
			}
		}
	}
	if next != nil {
		v, err := ix.indexer(next)
		if err != nil {
			return errors.Wrap(err, "indexer")
		}
		if v != nil {
			key, err := packNativeIdxKey([][]byte{[]byte(ix.name), v, pk})
			if err != nil {
				return errors.Wrap(err, "build index key")
			}
			if err := db.Set(key, []byte{}); err != nil {
				return errors.Wrap(err, "db set")
			}
		}
	}
	return nil
}

// Keys returns the primary keys of all models indexed under given value, in
// ascending order.
//
// Index keys are built in a specific way that allows using the native
// database key iteration in order to find all indexed entries:
//    <prefix>#<index name>#<value>#<entity id>
// where # is the length of the next chunk. Iterating over all keys between
//    <prefix>#<index name>#<value> and <prefix>#<index name>#<value>{255}
// finds all entries, since 255 is never used as a chunk length.
func (ix *nativeIndex) Keys(db ledger.ReadOnlyKVStore, value []byte) ([][]byte, error) {
	start, err := packNativeIdxKey([][]byte{[]byte(ix.name), value})
	if err != nil {
		return nil, errors.Wrap(err, "build index key")
	}
	end := make([]byte, len(start)+1)
	copy(end, start)
	end[len(end)-1] = math.MaxUint8

	it, err := db.Iterator(start, end)
	if err != nil {
		return nil, errors.Wrap(err, "iterator")
	}
	defer it.Close()

	var keys [][]byte
	for it.Valid() {
		chunks, err := unpackNativeIdxKey(it.Key())
		if err != nil {
			return nil, errors.Wrap(err, "parse index key")
		}
		if len(chunks) != 3 {
			return nil, errors.Wrapf(errors.ErrDatabase, "index key with %d chunks", len(chunks))
		}
		keys = append(keys, chunks[2])
		if err := it.Next(); err != nil {
			return nil, errors.Wrap(err, "iterator next")
		}
	}
	return keys, nil
}

// packNativeIdxKey serializes chunks into a native index key. Each chunk is
// prefixed with its length, encoded as a uint8 value. If a key is created
// from 3 chunks, "aaa", "" and "c", that key representation is:
//
//   _x.<3>aaa<0><1>c
func packNativeIdxKey(chunks [][]byte) ([]byte, error) {
	size := len(nativeIdxPrefix)
	for _, b := range chunks {
		size += len(b) + 1
	}
	res := make([]byte, 0, size)
	res = append(res, nativeIdxPrefix...)
	for _, b := range chunks {
		// MaxUint8 is reserved for the search purpose.
		if len(b) > math.MaxUint8-1 {
			return nil, errors.Wrapf(errors.ErrInput, "no chunk can be bigger than %d bytes", math.MaxUint8-1)
		}
		res = append(res, uint8(len(b)))
		res = append(res, b...)
	}
	return res, nil
}

func unpackNativeIdxKey(b []byte) ([][]byte, error) {
	if !bytes.HasPrefix(b, []byte(nativeIdxPrefix)) {
		return nil, errors.Wrap(errors.ErrInput, "not a native index key")
	}
	b = b[len(nativeIdxPrefix):]
	var res [][]byte
	for len(b) > 0 {
		size := int(b[0])
		if len(b) < 1+size {
			return nil, errors.Wrap(errors.ErrInput, "malformed offset")
		}
		res = append(res, b[1:1+size])
		b = b[1+size:]
	}
	return res, nil
}
