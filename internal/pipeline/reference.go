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
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/oxagast/gomacparser/internal/features"
)

// DefaultParser implements SourceParser with a line-oriented grammar: the
// first line is the profile name, every following non-blank, non-comment
// line is "<kind> <capability>" (kind one of enforce/audit/complain/deny,
// defaulting to enforce when omitted), and a line of the form
// "include <name>" is resolved through includes and spliced in inline.
// This is intentionally not the real profile language (out of scope per
// spec.md §1) — it exists to give the pipeline's decision points
// something concrete to parse, downgrade, cache and emit.
type DefaultParser struct{}

func (DefaultParser) Parse(ctx context.Context, r io.Reader, includes IncludeResolver) (*Document, error) {
	doc := &Document{}
	if err := parseInto(doc, r, includes, 0); err != nil {
		return nil, err
	}
	if doc.Name == "" {
		return nil, fmt.Errorf("profile source has no name line")
	}
	return doc, nil
}

const maxIncludeDepth = 16

func parseInto(doc *Document, r io.Reader, includes IncludeResolver, depth int) error {
	if depth > maxIncludeDepth {
		return fmt.Errorf("include depth exceeded %d, likely a cycle", maxIncludeDepth)
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if doc.Name == "" {
			doc.Name = line
			continue
		}
		if strings.HasPrefix(line, "include ") {
			if includes == nil {
				return fmt.Errorf("include directive present but no include resolver configured")
			}
			name := strings.TrimSpace(strings.TrimPrefix(line, "include "))
			_, content, err := includes.Resolve(name)
			if err != nil {
				return fmt.Errorf("resolving include %q: %w", name, err)
			}
			if err := parseInto(doc, strings.NewReader(string(content)), includes, depth+1); err != nil {
				return err
			}
			continue
		}

		fields := strings.Fields(line)
		kind := KindEnforce
		cap := fields[0]
		if len(fields) == 2 {
			cap = fields[1]
			switch fields[0] {
			case "enforce":
				kind = KindEnforce
			case "audit":
				kind = KindAudit
			case "complain":
				kind = KindComplain
			case "deny":
				kind = KindDeny
			default:
				return fmt.Errorf("unknown rule kind %q", fields[0])
			}
		}
		doc.Rules = append(doc.Rules, Rule{Capability: cap, Kind: kind})
	}
	return sc.Err()
}

// DefaultPostProcessor implements the downgrade policy from spec.md §4.4:
// a rule whose capability isn't in the effective feature set is weakened
// one step at a time until it either lands on a supported kind or runs
// out of weaker kinds to try, at which point it's dropped.
type DefaultPostProcessor struct {
	WarnMask uint32
}

func (p DefaultPostProcessor) Process(ctx context.Context, doc *Document, effective *features.Set) (*Document, []Warning, error) {
	out := &Document{Name: doc.Name}
	var warnings []Warning

	for _, r := range doc.Rules {
		if effective == nil || effective.Supports(requiredFeature(r)) || r.Kind == KindDeny {
			out.Rules = append(out.Rules, r)
			continue
		}

		downgraded := r
		dropped := true
		for {
			weaker, ok := downgraded.weaker()
			if !ok {
				break
			}
			downgraded.Kind = weaker
			downgraded.Downgraded = true
			if effective.Supports(requiredFeature(downgraded)) {
				dropped = false
				break
			}
		}
		if dropped {
			warnings = append(warnings, Warning{Class: warnRuleNotEnforced, Message: fmt.Sprintf("rule for %q dropped: not enforceable by any available kind", r.Capability)})
			continue
		}
		warnings = append(warnings, Warning{Class: warnRuleDowngraded, Message: fmt.Sprintf("rule for %q downgraded from %s to %s", r.Capability, r.Kind, downgraded.Kind)})
		out.Rules = append(out.Rules, downgraded)
	}

	return out, warnings, nil
}

// requiredFeature maps a rule to the dotted feature name its kind needs
// from the kernel: complain-mode mediation is lighter weight than full
// enforcement, so it's gated on a separate, more commonly available
// sub-feature.
func requiredFeature(r Rule) string {
	if r.Kind == KindComplain {
		return r.Capability + "/complain"
	}
	return r.Capability
}

// warning class bits mirror internal/config's WarnRuleNotEnforced/
// WarnRuleDowngraded; they are duplicated here as package-local uint32
// constants and must keep the same bit values.
const (
	warnRuleNotEnforced uint32 = 1 << iota
	warnRuleDowngraded
)

// DefaultEmitter serializes a Document deterministically: a header line
// with the profile name followed by one sorted "<kind> <capability>" line
// per surviving rule. Deterministic output is what makes cache
// cross-checking (--cross-check) meaningful: two compiles of the same post-processed
// Document must byte-for-byte agree.
type DefaultEmitter struct{}

func (DefaultEmitter) Emit(ctx context.Context, doc *Document) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "profile %s\n", doc.Name)

	rules := append([]Rule(nil), doc.Rules...)
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Capability != rules[j].Capability {
			return rules[i].Capability < rules[j].Capability
		}
		return rules[i].Kind < rules[j].Kind
	})
	for _, r := range rules {
		fmt.Fprintf(&b, "%s %s\n", r.Kind, r.Capability)
	}
	return []byte(b.String()), nil
}
