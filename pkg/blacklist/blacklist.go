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

// Package blacklist filters filenames the driver should silently skip
// when enumerating a profile directory: editor backups, swap files, and
// dotfiles, restored from the original driver's directory-walk filter.
package blacklist

import "strings"

// Matches reports whether name is one of the conventional filenames that
// never name a profile: "foo~" and ".foo~" (text-editor backups), ".#foo"
// (emacs lock files), "#foo#" (emacs autosave), and any other dotfile.
func Matches(name string) bool {
	switch {
	case name == "":
		return true
	case strings.HasSuffix(name, "~"):
		return true
	case strings.HasPrefix(name, ".#"):
		return true
	case strings.HasPrefix(name, "#") && strings.HasSuffix(name, "#"):
		return true
	case strings.HasPrefix(name, "."):
		return true
	default:
		return false
	}
}
