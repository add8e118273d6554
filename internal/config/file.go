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
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/containerd/log"
)

// directive is one resolved "key value" or "key=value" pair read from a
// config file, after comment stripping and include expansion.
type directive struct {
	key   string
	value string
	file  string
	line  int
}

// known lists every config-file key the resolver understands. A key
// outside this set is logged at warn level and otherwise ignored, mirroring
// the original's "unknown option in config file, ignoring" diagnostic.
var known = map[string]bool{
	"mode": true, "optimize": true, "base": true, "Include": true,
	"skip-kernel-load": true, "write-cache": true, "skip-cache": true,
	"skip-read-cache": true, "cache-loc": true, "cache-limit": true,
	"create-cache-dir": true, "debug-cache": true, "show-cache": true,
	"jobs": true, "max-jobs": true, "max-mem": true, "estimated-compile-size": true,
	"Werror": true, "Warn": true, "ns": true, "policy-features": true,
	"kernel-features": true, "override-policy-abi": true, "match-string": true,
	"cross-check": true,
}

// ParseFile scans an apparmor.d-style config file into an ordered list of
// directives. Accepted line forms, one per line:
//
//	# comment                 (ignored)
//	key = value               (= may be surrounded by any amount of space)
//	key value
//	key                       (boolean-ish flags; value is "")
//	include <path>            (path relative to this file's directory unless absolute)
//
// include may name a directory, in which case every regular file in it is
// read in lexical order — this directive is not present in the original
// single-file config and is this port's addition (see SPEC_FULL.md).
func ParseFile(path string) ([]directive, error) {
	return parseFile(path, map[string]bool{})
}

func parseFile(path string, seen map[string]bool) ([]directive, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path %s: %w", path, err)
	}
	if seen[abs] {
		return nil, fmt.Errorf("config file %s includes itself: %w", abs, errdefs.ErrInvalidArgument)
	}
	seen[abs] = true

	f, err := os.Open(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file %s: %w: %w", abs, err, errdefs.ErrNotFound)
		}
		return nil, fmt.Errorf("opening config file %s: %w", abs, err)
	}
	defer f.Close()

	var out []directive
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value := splitDirective(line)
		if key == "include" {
			included, err := resolveInclude(filepath.Dir(abs), value, seen)
			if err != nil {
				return nil, err
			}
			out = append(out, included...)
			continue
		}
		if !known[key] {
			log.L.Warnf("%s:%d: unknown config option %q, ignoring", abs, lineno, key)
			continue
		}
		out = append(out, directive{key: key, value: value, file: abs, line: lineno})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", abs, err)
	}
	return out, nil
}

func splitDirective(line string) (key, value string) {
	if i := strings.IndexByte(line, '='); i >= 0 {
		return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:])
	}
	fields := strings.SplitN(line, " ", 2)
	if len(fields) == 1 {
		return strings.TrimSpace(fields[0]), ""
	}
	return strings.TrimSpace(fields[0]), strings.TrimSpace(fields[1])
}

func resolveInclude(baseDir, target string, seen map[string]bool) ([]directive, error) {
	if !filepath.IsAbs(target) {
		target = filepath.Join(baseDir, target)
	}
	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("include target %s: %w: %w", target, err, errdefs.ErrNotFound)
	}
	if !info.IsDir() {
		return parseFile(target, seen)
	}

	entries, err := os.ReadDir(target)
	if err != nil {
		return nil, fmt.Errorf("reading include directory %s: %w", target, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var out []directive
	for _, name := range names {
		included, err := parseFile(filepath.Join(target, name), seen)
		if err != nil {
			return nil, err
		}
		out = append(out, included...)
	}
	return out, nil
}
