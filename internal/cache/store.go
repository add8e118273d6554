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

// Package cache implements the content-addressed on-disk cache the
// pipeline consults before recompiling a profile and populates after
// compiling one. Entries live under <root>/<feature-fingerprint>/<basename>,
// so two kernels with different feature sets never collide, and a
// bbolt-backed index tracks insertion order for max-entries eviction.
package cache

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/containerd/errdefs"
	"github.com/containerd/log"
	"github.com/moby/locker"
	bolt "go.etcd.io/bbolt"
)

const indexFileName = ".cache.index.db"

// Store is one writable cache root plus zero or more read-only overlay
// roots consulted after it, matching spec.md §4.3's "primary location,
// then additional read-only locations" lookup order.
type Store struct {
	root       string
	readonly   []string
	maxEntries int
	db         *bolt.DB
	locks      *locker.Locker
}

// Open opens (creating if necessary) the index for the writable cache root
// and wires in any read-only overlay roots. maxEntries <= 0 disables
// eviction.
func Open(root string, readonlyRoots []string, maxEntries int) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache root %s: %w", root, err)
	}
	db, err := bolt.Open(filepath.Join(root, indexFileName), 0o644, nil)
	if err != nil {
		return nil, fmt.Errorf("opening cache index in %s: %w: %w", root, err, errdefs.ErrUnavailable)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketEntries)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing cache index: %w", err)
	}

	return &Store{
		root:       root,
		readonly:   readonlyRoots,
		maxEntries: maxEntries,
		db:         db,
		locks:      locker.New(),
	}, nil
}

// Close releases the index database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Root returns the writable cache root, for --print-cache-dir.
func (s *Store) Root() string {
	return s.root
}

// FilenameFor returns the path a cache entry for fingerprint/basename would
// live at in the writable root, regardless of whether it currently exists.
func (s *Store) FilenameFor(fingerprint, basename string) string {
	return filepath.Join(s.root, fingerprint, basename)
}

// searchRoots returns the writable root followed by every read-only
// overlay, the order Lookup consults them in.
func (s *Store) searchRoots() []string {
	roots := make([]string, 0, len(s.readonly)+1)
	roots = append(roots, s.root)
	roots = append(roots, s.readonly...)
	return roots
}

// Purge wipes every entry for the given feature fingerprint from the
// writable root and its index, used by --purge-cache and by automatic
// invalidation when the feature set changes in a way cache entries can't
// account for. Entries belonging to any other fingerprint are untouched —
// a purge scoped to the feature set in effect must not evict a different
// kernel's cache.
func (s *Store) Purge(fingerprint string) error {
	if fingerprint == "" {
		return fmt.Errorf("purging cache: empty fingerprint: %w", errdefs.ErrInvalidArgument)
	}
	full := filepath.Join(s.root, fingerprint)
	if err := os.RemoveAll(full); err != nil {
		return fmt.Errorf("purging cache entry %s: %w", full, err)
	}
	if err := s.deleteFingerprint(fingerprint); err != nil {
		return fmt.Errorf("clearing cache index for %s: %w", fingerprint, err)
	}
	log.L.Debugf("purged cache fingerprint %s at %s", fingerprint, s.root)
	return nil
}
