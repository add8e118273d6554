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

// Package features represents the dotted-name capability sets that gate
// rule compilation: what the running kernel exposes, what a policy is
// authored against, and any forced override of the latter.
package features

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/opencontainers/go-digest"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Set is an immutable bag of dotted capability names such as "network",
// "network/af_unix" or "policy/versions/v7". Once built it is never
// mutated; every constructor returns a fresh Set.
type Set struct {
	trie *patricia.Trie
}

func empty() *Set {
	return &Set{trie: patricia.NewTrie()}
}

func (s *Set) insert(name string) {
	name = strings.Trim(strings.TrimSpace(name), "/")
	if name == "" {
		return
	}
	parts := strings.Split(name, "/")
	for i := range parts {
		anc := strings.Join(parts[:i+1], "/")
		if s.trie.Get(patricia.Prefix(anc)) == nil {
			s.trie.Insert(patricia.Prefix(anc), true)
		}
	}
}

// FromText parses a newline-and-whitespace-delimited capability list, the
// format the kernel's feature tree is serialized to and that -m/--match-
// string accepts directly on the command line.
func FromText(r io.Reader) (*Set, error) {
	s := empty()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		for _, tok := range strings.Fields(sc.Text()) {
			s.insert(tok)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("parsing feature text: %w: %w", err, errdefs.ErrInvalidArgument)
	}
	return s, nil
}

// FromTextString is a convenience wrapper around FromText for the -m flag,
// which supplies the feature blob inline on the command line.
func FromTextString(s string) (*Set, error) {
	return FromText(strings.NewReader(s))
}

// FromTree recursively walks dir; every path component encountered, file
// or directory, becomes a capability named by its slash-joined path
// relative to dir. A directory "network" containing "af_unix" yields both
// "network" and "network/af_unix" as supported capabilities.
func FromTree(dir string) (*Set, error) {
	s := empty()
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == dir {
			return nil
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return relErr
		}
		s.insert(filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading feature tree %s: %w: %w", dir, err, errdefs.ErrNotFound)
	}
	return s, nil
}

// Supports reports whether name (or, for a nested dotted name, every
// ancestor component) was present at construction time.
func (s *Set) Supports(name string) bool {
	if s == nil {
		return false
	}
	name = strings.Trim(strings.TrimSpace(name), "/")
	if name == "" {
		return false
	}
	return s.trie.Get(patricia.Prefix(name)) != nil
}

// Intersect is shorthand for s.Supports(name) && other.Supports(name).
func (s *Set) Intersect(other *Set, name string) bool {
	return s.Supports(name) && other.Supports(name)
}

// Names returns every capability name in the set, sorted, for diagnostics
// and for fingerprinting.
func (s *Set) Names() []string {
	var names []string
	_ = s.trie.Visit(func(prefix patricia.Prefix, _ patricia.Item) error {
		names = append(names, string(prefix))
		return nil
	})
	sort.Strings(names)
	return names
}

// Fingerprint produces a stable digest of the set's contents, used as the
// cache subdirectory name. Two sets with identical Supports() behavior for
// every name produce the same fingerprint, and vice versa, since the
// digest is taken over the sorted, deduplicated name list.
func (s *Set) Fingerprint() string {
	return digest.FromString(strings.Join(s.Names(), "\n")).Encoded()
}

// Text renders the set back to the newline-delimited form FromText
// accepts, used by the ".features" cache validation sibling file and by
// --print-config style dumps.
func (s *Set) Text() string {
	return strings.Join(s.Names(), "\n") + "\n"
}
