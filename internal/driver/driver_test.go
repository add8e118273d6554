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

package driver

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxagast/gomacparser/internal/config"
)

func newTestConfig(t *testing.T, inputs ...string) *config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.SkipKernelLoad = true
	cfg.MatchString = "network\nmount\n"
	cfg.Action = config.ActionStdout
	cfg.Inputs = inputs
	return cfg
}

func TestNewSkipsKernelDiscoveryWhenConfigured(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Cache.Skip = true

	d, err := New(cfg)
	require.NoError(t, err)
	assert.Nil(t, d.Kernel)
	assert.Nil(t, d.Cache)
	assert.NotNil(t, d.Slots.Kernel)
	assert.True(t, d.Slots.Kernel.Supports("network"))
}

func TestNewOpensCacheWhenLocationsConfigured(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.CacheLocations = []string{t.TempDir()}

	d, err := New(cfg)
	require.NoError(t, err)
	require.NotNil(t, d.Cache)
	defer d.Cache.Close()
	assert.Equal(t, cfg.CacheLocations[0], d.Cache.Root())
}

func TestRunCompilesInputToStdout(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "usr.bin.foo")
	require.NoError(t, os.WriteFile(srcPath, []byte("usr.bin.foo\nenforce network\n"), 0o644))

	cfg := newTestConfig(t, srcPath)
	cfg.Cache.Skip = true

	d, err := New(cfg)
	require.NoError(t, err)

	var out bytes.Buffer
	d.Stdout = &out

	require.NoError(t, d.Run(context.Background()))
	assert.Contains(t, out.String(), "profile usr.bin.foo")
	assert.Contains(t, out.String(), "enforce network")
}

func TestRunPrintCacheDirWritesRoot(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.CacheLocations = []string{t.TempDir()}
	cfg.PrintCacheDir = true

	d, err := New(cfg)
	require.NoError(t, err)
	defer d.Cache.Close()

	var out bytes.Buffer
	d.Stdout = &out

	require.NoError(t, d.Run(context.Background()))
	assert.Equal(t, cfg.CacheLocations[0]+"\n", out.String())
}

func TestRunPrintCacheDirFailsWithoutCache(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Cache.Skip = true
	cfg.PrintCacheDir = true

	d, err := New(cfg)
	require.NoError(t, err)

	err = d.Run(context.Background())
	assert.Error(t, err)
}

func TestRunPurgesCache(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.CacheLocations = []string{t.TempDir()}

	d, err := New(cfg)
	require.NoError(t, err)
	defer d.Cache.Close()

	fp := d.Slots.Effective().Fingerprint()
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.CacheLocations[0], fp), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.CacheLocations[0], fp, "prof"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.CacheLocations[0], "otherfp"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.CacheLocations[0], "otherfp", "prof"), []byte("x"), 0o644))

	cfg.Cache.Purge = true
	require.NoError(t, d.Run(context.Background()))

	_, statErr := os.Stat(filepath.Join(cfg.CacheLocations[0], fp))
	assert.True(t, os.IsNotExist(statErr), "active fingerprint's cache entries must be purged")

	_, statErr = os.Stat(filepath.Join(cfg.CacheLocations[0], "otherfp"))
	assert.NoError(t, statErr, "purge must not touch a different fingerprint's cache entries")
}

func TestEnumerateWalksDirectorySkippingSpecialDirs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "usr.bin.foo"), nil, 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "disable"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "disable", "usr.bin.bar"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "usr.bin.baz~"), nil, 0o644))

	out, err := Enumerate([]string{dir})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, filepath.Join(dir, "usr.bin.foo"), out[0])
}
