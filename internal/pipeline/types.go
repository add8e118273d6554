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

// Package pipeline implements the per-profile compile-and-deliver state
// machine: disable/force-complain detection, cache consultation, parsing,
// post-processing, binary emission, and delivery to the kernel interface,
// an ofile, or stdout.
package pipeline

import (
	"context"
	"io"

	"github.com/oxagast/gomacparser/internal/features"
)

// Document is the minimal parsed-profile representation the pipeline's
// decision points operate on. The real profile grammar, its AST, and its
// DFA construction are external collaborators out of scope for this
// driver; Document carries just enough structure (a name and a flat rule
// list) to exercise cache/downgrade/dump decisions end to end.
type Document struct {
	Name  string
	Rules []Rule
}

// Rule is one profile rule, reduced to the single dotted capability it
// requires and its enforcement kind.
type Rule struct {
	Capability string
	Kind       RuleKind
	Downgraded bool
}

// RuleKind orders rule strictness from strongest to weakest so the
// post-processor's downgrade search has somewhere to walk to.
type RuleKind int

const (
	KindEnforce RuleKind = iota
	KindAudit
	KindComplain
	KindDeny
)

func (k RuleKind) String() string {
	switch k {
	case KindEnforce:
		return "enforce"
	case KindAudit:
		return "audit"
	case KindComplain:
		return "complain"
	case KindDeny:
		return "deny"
	default:
		return "unknown"
	}
}

// weaker returns the next strictly weaker enforcing kind, or false if k is
// already the weakest enforcing kind (KindComplain); KindDeny never needs
// downgrading, since denying is never unenforceable.
func (k RuleKind) weaker() (RuleKind, bool) {
	switch k {
	case KindEnforce:
		return KindAudit, true
	case KindAudit:
		return KindComplain, true
	default:
		return k, false
	}
}

// Warning is a downgrade/ABI/config diagnostic raised during post-
// processing, carrying the warning-class bit spec.md's -W/--Werror masks
// classify it under.
type Warning struct {
	Class   uint32
	Message string
}

// IncludeResolver resolves a named include to its contents, searching the
// configured include-search path and the profile's own directory.
type IncludeResolver interface {
	Resolve(name string) (path string, content []byte, err error)
}

// SourceParser turns profile source text into a Document, resolving
// includes as it encounters them. The reference implementation in
// reference.go implements just enough syntax to exercise the pipeline;
// the real grammar is out of scope per spec.md §1.
type SourceParser interface {
	Parse(ctx context.Context, r io.Reader, includes IncludeResolver) (*Document, error)
}

// PostProcessor expands variables, lowers/downgrades rules against an
// effective feature set, and returns the warnings raised while doing so.
type PostProcessor interface {
	Process(ctx context.Context, doc *Document, effective *features.Set) (*Document, []Warning, error)
}

// BinaryEmitter serializes a post-processed Document to the wire format
// the kernel interface (or an ofile) accepts. The real DFA-backed codec is
// out of scope; the reference implementation emits a simple deterministic
// encoding sufficient to exercise cache round-tripping and cross-checking.
type BinaryEmitter interface {
	Emit(ctx context.Context, doc *Document) ([]byte, error)
}
