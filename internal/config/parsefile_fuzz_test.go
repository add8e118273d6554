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

	fuzz "github.com/AdaLogics/go-fuzz-headers"
)

// FuzzParseFile drives the full config-file scanner (comments, includes,
// unknown-key warnings) against consumer-generated byte content, the
// same fuzz.NewConsumer idiom the pack uses for structured fuzzing.
func FuzzParseFile(f *testing.F) {
	f.Add([]byte("jobs = auto\n# comment\nbase /etc/apparmor.d\n"))
	f.Add([]byte("include missing-file\n"))
	f.Add([]byte(""))

	f.Fuzz(func(t *testing.T, data []byte) {
		c := fuzz.NewConsumer(data)
		content, err := c.GetBytes()
		if err != nil {
			return
		}

		dir := t.TempDir()
		path := filepath.Join(dir, "parser.conf")
		if err := os.WriteFile(path, content, 0o644); err != nil {
			t.Fatalf("writing fuzz config file: %v", err)
		}

		directives, err := ParseFile(path)
		if err != nil {
			return
		}
		if _, err := ApplyFile(directives); err != nil {
			return
		}
	})
}
