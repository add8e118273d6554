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

package blacklist

import "testing"

func TestMatches(t *testing.T) {
	cases := map[string]bool{
		"usr.bin.foo":   false,
		"usr.bin.foo~":  true,
		".usr.bin.foo~": true,
		".#usr.bin.foo": true,
		"#usr.bin.foo#": true,
		".hidden":       true,
		"":              true,
	}
	for name, want := range cases {
		if got := Matches(name); got != want {
			t.Errorf("Matches(%q) = %v, want %v", name, got, want)
		}
	}
}
