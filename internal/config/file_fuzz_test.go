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

import "testing"

// FuzzSplitDirective guards the config-file line splitter against
// panics on malformed lines; ParseFile only ever calls it on a
// comment/blank-stripped, trimmed line, but the function itself makes no
// such assumption and should degrade gracefully on anything.
func FuzzSplitDirective(f *testing.F) {
	f.Add("jobs = auto")
	f.Add("jobs auto")
	f.Add("include")
	f.Add("=")
	f.Add("===")
	f.Add("")

	f.Fuzz(func(t *testing.T, line string) {
		key, value := splitDirective(line)
		_ = key
		_ = value
	})
}
