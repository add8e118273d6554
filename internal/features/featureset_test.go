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

package features

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromTextSupportsNestedNames(t *testing.T) {
	s, err := FromText(strings.NewReader("network/af_unix\nmount\ndbus\n"))
	require.NoError(t, err)

	assert.True(t, s.Supports("network"))
	assert.True(t, s.Supports("network/af_unix"))
	assert.True(t, s.Supports("mount"))
	assert.False(t, s.Supports("network/af_unix/extra"))
	assert.False(t, s.Supports("ptrace"))
}

func TestIntersect(t *testing.T) {
	a, err := FromText(strings.NewReader("network\nmount\n"))
	require.NoError(t, err)
	b, err := FromText(strings.NewReader("network\nsignal\n"))
	require.NoError(t, err)

	assert.True(t, a.Intersect(b, "network"))
	assert.False(t, a.Intersect(b, "mount"))
	assert.False(t, a.Intersect(b, "signal"))
}

func TestFingerprintEqualityMatchesMembership(t *testing.T) {
	a, err := FromText(strings.NewReader("network\nmount\ndbus\n"))
	require.NoError(t, err)
	b, err := FromText(strings.NewReader("dbus\nmount\nnetwork\n"))
	require.NoError(t, err)
	c, err := FromText(strings.NewReader("network\nmount\n"))
	require.NoError(t, err)

	assert.Equal(t, a.Fingerprint(), b.Fingerprint(), "insertion order must not affect the fingerprint")
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestNamesAreInsertionOrderIndependent(t *testing.T) {
	a, err := FromText(strings.NewReader("network\nmount\ndbus\n"))
	require.NoError(t, err)
	b, err := FromText(strings.NewReader("dbus\nmount\nnetwork\n"))
	require.NoError(t, err)

	an, bn := a.Names(), b.Names()
	sort.Strings(an)
	sort.Strings(bn)
	if diff := cmp.Diff(an, bn); diff != "" {
		t.Fatalf("Names() mismatch despite identical membership (-a +b):\n%s", diff)
	}
}

func TestFromTreeWalksDirectoryLevels(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "network"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "network", "af_unix"), []byte("y"), 0o644))

	s, err := FromTree(dir)
	require.NoError(t, err)
	assert.True(t, s.Supports("network"))
	assert.True(t, s.Supports("network/af_unix"))
}
