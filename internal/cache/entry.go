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
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/containerd/log"
)

const featuresSuffix = ".features"

// Lookup searches the writable root, then every read-only overlay in
// order, for a cache entry matching fingerprint/basename whose sibling
// .features blob matches featuresText exactly. In the writable root the
// entry must also be indexed with a source size and modification time
// equal to sourceSize/sourceMod; entries in a read-only overlay are not
// compared against the source size or mtime. A fingerprint collision (two
// feature sets hashing the same digest) is still caught by the .features
// comparison; a stale writable-root entry (source changed since compile)
// is caught by the size/mtime comparison.
func (s *Store) Lookup(fingerprint, basename string, sourceSize, sourceMod int64, featuresText string) (path string, hit bool, err error) {
	for _, root := range s.searchRoots() {
		candidate := filepath.Join(root, fingerprint, basename)
		info, statErr := os.Stat(candidate)
		if statErr != nil {
			continue
		}

		if root == s.root {
			meta, found, idxErr := s.getIndex(fingerprint, basename)
			if idxErr != nil {
				return "", false, idxErr
			}
			if !found || meta.sourceSize != sourceSize || meta.sourceMod != sourceMod {
				continue
			}
		}

		existing, readErr := os.ReadFile(candidate + featuresSuffix)
		if readErr != nil {
			log.L.Debugf("cache entry %s missing features sidecar, treating as miss", candidate)
			continue
		}
		if string(existing) != featuresText {
			continue
		}

		_ = info
		return candidate, true, nil
	}
	return "", false, nil
}

// WriteAtomic installs data as the cache entry for fingerprint/basename in
// the writable root: the payload and its .features sidecar are each
// written to a temp file in the same directory and renamed into place, so
// a concurrent reader never observes a partially-written entry. A
// per-basename lock serializes writers racing on the identical key.
func (s *Store) WriteAtomic(fingerprint, basename string, data []byte, featuresText string, sourceSize, sourceMod int64) error {
	dir := filepath.Join(s.root, fingerprint)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating cache fingerprint directory %s: %w", dir, err)
	}

	lockKey := fingerprint + "/" + basename
	s.locks.Lock(lockKey)
	defer s.locks.Unlock(lockKey)

	final := filepath.Join(dir, basename)
	if err := atomicWrite(final, data); err != nil {
		return err
	}
	if err := atomicWrite(final+featuresSuffix, []byte(featuresText)); err != nil {
		return err
	}
	if err := s.putIndex(fingerprint, basename, sourceSize, sourceMod); err != nil {
		return fmt.Errorf("indexing cache entry %s: %w", final, err)
	}

	return s.evictIfNeeded()
}

func atomicWrite(final string, data []byte) error {
	dir := filepath.Dir(final)
	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(final)+"-")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("installing cache entry %s: %w", final, err)
	}
	return nil
}

// Remove deletes a cache entry, its .features sidecar and its index record
// from the writable root; evictIfNeeded uses it to drop the oldest entries.
func (s *Store) Remove(fingerprint, basename string) error {
	final := filepath.Join(s.root, fingerprint, basename)
	if err := os.Remove(final); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing cache entry %s: %w", final, err)
	}
	os.Remove(final + featuresSuffix)
	if err := s.deleteIndex(fingerprint, basename); err != nil {
		return fmt.Errorf("unindexing cache entry %s: %w: %w", final, err, errdefs.ErrUnavailable)
	}
	return nil
}

// evictIfNeeded deletes the oldest entries once the index exceeds
// maxEntries, per spec.md's cache-size bound.
func (s *Store) evictIfNeeded() error {
	if s.maxEntries <= 0 {
		return nil
	}
	n, err := s.count()
	if err != nil {
		return err
	}
	if n <= s.maxEntries {
		return nil
	}

	victims, err := s.oldest(n - s.maxEntries)
	if err != nil {
		return err
	}
	for _, key := range victims {
		fingerprint, basename, ok := splitEntryKey(string(key))
		if !ok {
			continue
		}
		if err := s.Remove(fingerprint, basename); err != nil {
			return fmt.Errorf("evicting cache entry %s: %w", key, err)
		}
		log.L.Debugf("evicted cache entry %s/%s to stay under max-entries", fingerprint, basename)
	}
	return nil
}

func splitEntryKey(key string) (fingerprint, basename string, ok bool) {
	i := strings.IndexByte(key, '/')
	if i < 0 {
		return "", "", false
	}
	return key[:i], key[i+1:], true
}
