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

package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/containerd/errdefs"
	"github.com/moby/sys/symlink"
)

// SearchPathResolver resolves an include by name against an ordered list
// of include-search directories, the profile's own directory searched
// last. Each candidate directory is its own symlink-containment scope:
// FollowSymlinkInScope guarantees the resolved path can't escape that
// directory via a symlink, but a search list entry pointing outside the
// base directory is itself legitimate (that's the whole point of
// --include-search), so containment is per-directory, not against one
// global base.
type SearchPathResolver struct {
	SearchDirs []string
	ProfileDir string
}

func (r SearchPathResolver) Resolve(name string) (string, []byte, error) {
	dirs := r.SearchDirs
	if r.ProfileDir != "" {
		dirs = append(append([]string{}, dirs...), r.ProfileDir)
	}
	if filepath.IsAbs(name) {
		dirs = []string{filepath.Dir(name)}
		name = filepath.Base(name)
	}

	var lastErr error
	for _, dir := range dirs {
		resolved, err := symlink.FollowSymlinkInScope(filepath.Join(dir, name), dir)
		if err != nil {
			lastErr = err
			continue
		}
		content, err := os.ReadFile(resolved)
		if err != nil {
			lastErr = err
			continue
		}
		return resolved, content, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no include-search directories configured")
	}
	return "", nil, fmt.Errorf("include %q not found in any search directory: %w: %w", name, lastErr, errdefs.ErrNotFound)
}
