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
	"strings"
	"testing"
)

// FuzzFromText guards the feature-text scanner against panics on
// arbitrary input; it's the only untrusted-input entry point in this
// package (the kernel tree walk reads a trusted sysfs path).
func FuzzFromText(f *testing.F) {
	f.Add("network/af_unix\nmount\ndbus\n")
	f.Add("")
	f.Add("///\n\t\n")
	f.Add(strings.Repeat("a/", 64) + "b")

	f.Fuzz(func(t *testing.T, data string) {
		s, err := FromText(strings.NewReader(data))
		if err != nil {
			return
		}
		// A set built from its own rendered text must support every name
		// it reports, round-trip or not.
		for _, name := range s.Names() {
			if !s.Supports(name) {
				t.Fatalf("set does not support its own reported name %q", name)
			}
		}
	})
}
