/*
   Copyright The gomacparser Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package cache

import (
	"encoding/binary"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

var bucketEntries = []byte("entries")

// entryMeta is the index record kept per cache entry: the source file's
// size and modification time (used to decide staleness without re-reading
// the compiled output) and a monotonic sequence number (used to find the
// oldest entries when max-entries eviction kicks in).
type entryMeta struct {
	sequence   uint64
	sourceSize int64
	sourceMod  int64
}

func entryKey(fingerprint, basename string) []byte {
	return []byte(fingerprint + "/" + basename)
}

func encodeEntryMeta(m entryMeta) []byte {
	b := make([]byte, 8*3)
	binary.BigEndian.PutUint64(b[0:8], m.sequence)
	binary.BigEndian.PutUint64(b[8:16], uint64(m.sourceSize))
	binary.BigEndian.PutUint64(b[16:24], uint64(m.sourceMod))
	return b
}

func decodeEntryMeta(b []byte) (entryMeta, error) {
	if len(b) != 24 {
		return entryMeta{}, fmt.Errorf("corrupt cache index record (%d bytes)", len(b))
	}
	return entryMeta{
		sequence:   binary.BigEndian.Uint64(b[0:8]),
		sourceSize: int64(binary.BigEndian.Uint64(b[8:16])),
		sourceMod:  int64(binary.BigEndian.Uint64(b[16:24])),
	}, nil
}

// putIndex records or replaces the index entry for fingerprint/basename,
// assigning it the next sequence number so it sorts as most-recently
// written for eviction purposes.
func (s *Store) putIndex(fingerprint, basename string, sourceSize, sourceMod int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucketEntries)
		seq, err := bkt.NextSequence()
		if err != nil {
			return err
		}
		return bkt.Put(entryKey(fingerprint, basename), encodeEntryMeta(entryMeta{
			sequence:   seq,
			sourceSize: sourceSize,
			sourceMod:  sourceMod,
		}))
	})
}

func (s *Store) getIndex(fingerprint, basename string) (entryMeta, bool, error) {
	var m entryMeta
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucketEntries)
		v := bkt.Get(entryKey(fingerprint, basename))
		if v == nil {
			return nil
		}
		found = true
		var err error
		m, err = decodeEntryMeta(v)
		return err
	})
	return m, found, err
}

func (s *Store) deleteIndex(fingerprint, basename string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketEntries).Delete(entryKey(fingerprint, basename))
	})
}

// deleteFingerprint removes every index entry belonging to fingerprint,
// leaving entries for other fingerprints untouched.
func (s *Store) deleteFingerprint(fingerprint string) error {
	prefix := []byte(fingerprint + "/")
	return s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucketEntries)
		var stale [][]byte
		if err := bkt.ForEach(func(k, _ []byte) error {
			if len(k) >= len(prefix) && string(k[:len(prefix)]) == string(prefix) {
				key := make([]byte, len(k))
				copy(key, k)
				stale = append(stale, key)
			}
			return nil
		}); err != nil {
			return err
		}
		for _, key := range stale {
			if err := bkt.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

// count returns the number of indexed entries.
func (s *Store) count() (int, error) {
	n := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketEntries).ForEach(func(_, _ []byte) error {
			n++
			return nil
		})
	})
	return n, err
}

// oldest returns the keys of the n entries with the smallest sequence
// number, for eviction.
func (s *Store) oldest(n int) ([][]byte, error) {
	type kv struct {
		key []byte
		seq uint64
	}
	var all []kv
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketEntries).ForEach(func(k, v []byte) error {
			m, err := decodeEntryMeta(v)
			if err != nil {
				return err
			}
			key := make([]byte, len(k))
			copy(key, k)
			all = append(all, kv{key: key, seq: m.sequence})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	// simple insertion sort by sequence; index sizes are small (max-entries
	// is typically in the hundreds, never large enough to need better).
	for i := 1; i < len(all); i++ {
		for j := i; j > 0 && all[j].seq < all[j-1].seq; j-- {
			all[j], all[j-1] = all[j-1], all[j]
		}
	}
	if n > len(all) {
		n = len(all)
	}
	out := make([][]byte, n)
	for i := 0; i < n; i++ {
		out[i] = all[i].key
	}
	return out, nil
}
