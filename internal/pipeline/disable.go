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
	"os"
	"path/filepath"
)

// isReadable reports whether path exists and can be opened for reading,
// the same test spec.md §4.4 uses for disable/force-complain detection
// (a dangling symlink or a permission-denied entry does not count).
func isReadable(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

// disabled reports whether basename has a readable entry under
// <baseDir>/disable/.
func disabled(baseDir, basename string) bool {
	if baseDir == "" {
		return false
	}
	return isReadable(filepath.Join(baseDir, "disable", basename))
}

// forceComplainOverride reports whether basename has a readable entry
// under <baseDir>/force-complain/.
func forceComplainOverride(baseDir, basename string) bool {
	if baseDir == "" {
		return false
	}
	return isReadable(filepath.Join(baseDir, "force-complain", basename))
}
