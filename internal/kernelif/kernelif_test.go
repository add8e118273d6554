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

package kernelif

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverWithOverrideSkipsMountScan(t *testing.T) {
	dir := t.TempDir()
	iface, err := Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, iface.Dir())
}

func TestLoadReplaceRemoveWriteExpectedFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{loadFile, replaceFile, removeFile} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o200))
	}
	iface, err := Discover(dir)
	require.NoError(t, err)

	require.NoError(t, iface.Load([]byte("profile usr.bin.foo {}")))
	require.NoError(t, iface.Replace([]byte("profile usr.bin.foo {}")))
	require.NoError(t, iface.Remove("usr.bin.foo"))
}

func TestCheckPrivilegeSkipped(t *testing.T) {
	assert.NoError(t, CheckPrivilege(true))
}
