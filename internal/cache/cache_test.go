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
	"path/filepath"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAtomicThenLookupHits(t *testing.T) {
	root := t.TempDir()
	s, err := Open(root, nil, 0)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.WriteAtomic("fp1", "usr.bin.foo", []byte("binary-blob"), "network\nmount\n", 100, 12345))

	path, hit, err := s.Lookup("fp1", "usr.bin.foo", 100, 12345, "network\nmount\n")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, filepath.Join(root, "fp1", "usr.bin.foo"), path)
}

func TestLookupMissesOnStaleSource(t *testing.T) {
	root := t.TempDir()
	s, err := Open(root, nil, 0)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.WriteAtomic("fp1", "usr.bin.foo", []byte("binary-blob"), "network\n", 100, 111))

	_, hit, err := s.Lookup("fp1", "usr.bin.foo", 100, 222, "network\n")
	require.NoError(t, err)
	assert.False(t, hit, "a newer source mtime must invalidate the cache entry")
}

func TestLookupMissesOnFeatureMismatch(t *testing.T) {
	root := t.TempDir()
	s, err := Open(root, nil, 0)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.WriteAtomic("fp1", "usr.bin.foo", []byte("binary-blob"), "network\n", 100, 111))

	_, hit, err := s.Lookup("fp1", "usr.bin.foo", 100, 111, "network\nmount\n")
	require.NoError(t, err)
	assert.False(t, hit, "a fingerprint collision with a different feature set must miss")
}

func TestReadOnlyOverlaySearchedAfterWritable(t *testing.T) {
	rw := t.TempDir()
	ro := t.TempDir()

	roStore, err := Open(ro, nil, 0)
	require.NoError(t, err)
	require.NoError(t, roStore.WriteAtomic("fp1", "usr.bin.foo", []byte("from-overlay"), "network\n", 100, 111))
	require.NoError(t, roStore.Close())

	s, err := Open(rw, []string{ro}, 0)
	require.NoError(t, err)
	defer s.Close()

	path, hit, err := s.Lookup("fp1", "usr.bin.foo", 100, 111, "network\n")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, filepath.Join(ro, "fp1", "usr.bin.foo"), path)
}

func TestEvictionKeepsMostRecentEntries(t *testing.T) {
	root := t.TempDir()
	s, err := Open(root, nil, 2)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.WriteAtomic("fp1", "a", []byte("a"), "x\n", 1, 1))
	require.NoError(t, s.WriteAtomic("fp1", "b", []byte("b"), "x\n", 1, 1))
	require.NoError(t, s.WriteAtomic("fp1", "c", []byte("c"), "x\n", 1, 1))

	n, err := s.count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, hit, err := s.Lookup("fp1", "a", 1, 1, "x\n")
	require.NoError(t, err)
	assert.False(t, hit, "oldest entry should have been evicted")

	_, hit, err = s.Lookup("fp1", "c", 1, 1, "x\n")
	require.NoError(t, err)
	assert.True(t, hit)

	meta, ok, err := s.getIndex("fp1", "c")
	require.NoError(t, err)
	require.True(t, ok, "surviving entry missing from index:\n%s", spew.Sdump(meta))
}

func TestPurgeRemovesEntriesAndIndex(t *testing.T) {
	root := t.TempDir()
	s, err := Open(root, nil, 0)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.WriteAtomic("fp1", "a", []byte("a"), "x\n", 1, 1))
	require.NoError(t, s.Purge("fp1"))

	n, err := s.count()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, hit, err := s.Lookup("fp1", "a", 1, 1, "x\n")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestPurgeLeavesOtherFingerprintsIntact(t *testing.T) {
	root := t.TempDir()
	s, err := Open(root, nil, 0)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.WriteAtomic("fp1", "a", []byte("a"), "x\n", 1, 1))
	require.NoError(t, s.WriteAtomic("fp2", "a", []byte("a"), "y\n", 1, 1))

	require.NoError(t, s.Purge("fp1"))

	n, err := s.count()
	require.NoError(t, err)
	assert.Equal(t, 1, n, "purging one fingerprint must not touch another's index entries")

	_, hit, err := s.Lookup("fp1", "a", 1, 1, "x\n")
	require.NoError(t, err)
	assert.False(t, hit, "purged fingerprint must miss")

	_, hit, err = s.Lookup("fp2", "a", 1, 1, "y\n")
	require.NoError(t, err)
	assert.True(t, hit, "untouched fingerprint must still hit")
}
