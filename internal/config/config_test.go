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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJobs(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"auto", JobsAuto},
		{"", JobsAuto},
		{"max", JobsMax},
		{"4", 4},
		{"x2", -2},
	}
	for _, c := range cases {
		got, err := ParseJobs(c.in)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, c.in)
	}

	_, err := ParseJobs("banana")
	assert.Error(t, err)
}

func TestComputeJobs(t *testing.T) {
	assert.Equal(t, int64(4), ComputeJobs(JobsAuto, 4))
	assert.Equal(t, int64(16), ComputeJobs(-4, 4))
	assert.Equal(t, int64(2), ComputeJobs(2, 4))
	assert.Equal(t, JobsMax, ComputeJobs(JobsMax, 4))
}

func TestParseSize(t *testing.T) {
	n, err := ParseSize("32MB")
	require.NoError(t, err)
	assert.Equal(t, int64(32*1024*1024), n)

	_, err = ParseSize("not-a-size")
	assert.Error(t, err)
}

func TestParseWarnMask(t *testing.T) {
	mask, err := ParseWarnMask("abi,deprecated")
	require.NoError(t, err)
	assert.Equal(t, WarnABI|WarnDeprecated, mask)

	mask, err = ParseWarnMask("all")
	require.NoError(t, err)
	assert.Equal(t, WarnAll, mask)

	_, err = ParseWarnMask("not-a-class")
	assert.Error(t, err)
}

func TestSplitCacheLocations(t *testing.T) {
	got := SplitCacheLocations(`/var/cache/a,/var/cache/b\,c`)
	assert.Equal(t, []string{"/var/cache/a", "/var/cache/b,c"}, got)
}

func TestParseFileAndApply(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "parser.conf")
	require.NoError(t, os.WriteFile(path, []byte(
		"# a comment\n"+
			"mode = complain\n"+
			"write-cache\n"+
			"cache-loc /var/cache/apparmor\n"+
			"jobs=x3\n"+
			"bogus-option value\n",
	), 0o644))

	directives, err := ParseFile(path)
	require.NoError(t, err)

	cfg, err := ApplyFile(directives)
	require.NoError(t, err)
	assert.True(t, cfg.ForceComplain)
	assert.True(t, cfg.Cache.Write)
	assert.Equal(t, []string{"/var/cache/apparmor"}, cfg.CacheLocations)
	assert.Equal(t, int64(-3), cfg.Jobs)
}

func TestParseFileInclude(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extra.conf"), []byte("ns = mycontainer\n"), 0o644))
	main := filepath.Join(dir, "parser.conf")
	require.NoError(t, os.WriteFile(main, []byte("include extra.conf\nbase /etc/apparmor.d\n"), 0o644))

	directives, err := ParseFile(main)
	require.NoError(t, err)
	cfg, err := ApplyFile(directives)
	require.NoError(t, err)
	assert.Equal(t, "mycontainer", cfg.Namespace)
	assert.Equal(t, "/etc/apparmor.d", cfg.BaseDir)
}

func TestMergePrecedence(t *testing.T) {
	defaults := Defaults()
	file := &Config{BaseDir: "/from/file", Jobs: 0}
	cli := &Config{Namespace: "from-cli"}

	merged, err := Merge(defaults, file, cli)
	require.NoError(t, err)
	assert.Equal(t, "/from/file", merged.BaseDir)
	assert.Equal(t, "from-cli", merged.Namespace)
	assert.Equal(t, defaults.EstimatedCompileSize, merged.EstimatedCompileSize)
}

func TestToTOML(t *testing.T) {
	cfg := Defaults()
	cfg.BaseDir = "/etc/apparmor.d"
	out, err := ToTOML(cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "base_dir")
	assert.Contains(t, out, "/etc/apparmor.d")
}
