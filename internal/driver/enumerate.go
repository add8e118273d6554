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
	"os"
	"path/filepath"

	"github.com/oxagast/gomacparser/pkg/blacklist"
)

// specialDirs are directory-convention subtrees that hold overrides, not
// profiles themselves, and must never be walked as compile targets.
var specialDirs = map[string]bool{
	"disable":        true,
	"force-complain": true,
	"cache":          true,
}

// Enumerate expands the driver's positional inputs into a flat list of
// profile source paths: a file input passes through unchanged, a
// directory input is walked recursively, skipping the override
// subdirectories above and any blacklisted filename (editor backups,
// dotfiles).
func Enumerate(inputs []string) ([]string, error) {
	var out []string
	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, in)
			continue
		}
		if err := walkDir(in, &out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func walkDir(dir string, out *[]string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		name := e.Name()
		if blacklist.Matches(name) {
			continue
		}
		full := filepath.Join(dir, name)
		if e.IsDir() {
			if specialDirs[name] {
				continue
			}
			if err := walkDir(full, out); err != nil {
				return err
			}
			continue
		}
		*out = append(*out, full)
	}
	return nil
}
