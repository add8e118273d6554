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
	"fmt"
	"strings"

	"github.com/containerd/errdefs"
)

// Warning classes, matching the original parser's warnflag_table bit
// assignments. -W/--warn and --Werror accept comma-separated lists of
// these names, plus "all".
const (
	WarnRuleNotEnforced uint32 = 1 << iota
	WarnRuleDowngraded
	WarnABI
	WarnDeprecated
	WarnConfig
	WarnCache
	WarnDebugCache
	WarnJobs
	WarnDangerous
	WarnUnexpected
	WarnOverride

	WarnAll = WarnRuleNotEnforced | WarnRuleDowngraded | WarnABI | WarnDeprecated |
		WarnConfig | WarnCache | WarnDebugCache | WarnJobs | WarnDangerous |
		WarnUnexpected | WarnOverride
)

var warnNames = map[string]uint32{
	"rule-not-enforced": WarnRuleNotEnforced,
	"rule-downgraded":   WarnRuleDowngraded,
	"abi":               WarnABI,
	"deprecated":        WarnDeprecated,
	"config":            WarnConfig,
	"cache":             WarnCache,
	"debug-cache":       WarnDebugCache,
	"jobs":              WarnJobs,
	"dangerous":         WarnDangerous,
	"unexpected":        WarnUnexpected,
	"override":          WarnOverride,
	"all":               WarnAll,
}

// ParseWarnMask turns a comma-separated class list into its bitmask,
// rejecting unknown class names outright rather than silently ignoring
// them — a typo in -W should fail loud, not quietly disable warnings.
func ParseWarnMask(raw string) (uint32, error) {
	var mask uint32
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		bit, ok := warnNames[tok]
		if !ok {
			return 0, fmt.Errorf("unknown warning class %q: %w", tok, errdefs.ErrInvalidArgument)
		}
		mask |= bit
	}
	return mask, nil
}
