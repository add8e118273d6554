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
	"strconv"
	"strings"

	"dario.cat/mergo"
	"github.com/containerd/errdefs"
)

// ApplyFile turns the directives read by ParseFile into a partial Config:
// only fields a directive actually named are set, everything else is left
// at its zero value so Merge can tell "file said nothing" from "file said
// false".
func ApplyFile(directives []directive) (*Config, error) {
	cfg := &Config{DumpKinds: map[string]bool{}}
	for _, d := range directives {
		if err := applyOne(cfg, d); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", d.file, d.line, err)
		}
	}
	return cfg, nil
}

func applyOne(cfg *Config, d directive) error {
	switch d.key {
	case "mode":
		switch d.value {
		case "complain":
			cfg.ForceComplain = true
		case "enforce":
			cfg.ForceComplain = false
		default:
			return fmt.Errorf("invalid mode %q: %w", d.value, errdefs.ErrInvalidArgument)
		}
	case "base":
		cfg.BaseDir = d.value
	case "Include":
		cfg.Includes = append(cfg.Includes, d.value)
	case "skip-kernel-load":
		cfg.SkipKernelLoad = true
	case "cross-check":
		cfg.CrossCheckCache = true
	case "write-cache":
		cfg.Cache.Write = true
	case "skip-cache":
		cfg.Cache.Skip = true
	case "skip-read-cache":
		cfg.Cache.SkipRead = true
	case "cache-loc":
		cfg.CacheLocations = append(cfg.CacheLocations, SplitCacheLocations(d.value)...)
	case "debug-cache":
		cfg.Cache.DebugCache = true
	case "show-cache":
		cfg.Cache.ShowCache = true
	case "jobs":
		n, err := ParseJobs(d.value)
		if err != nil {
			return err
		}
		cfg.Jobs = n
	case "max-jobs":
		n, err := ParseJobs(d.value)
		if err != nil {
			return err
		}
		cfg.JobsMax = n
	case "max-mem":
		n, err := ParseSize(d.value)
		if err != nil {
			return err
		}
		_ = n // max-mem is validated and then discarded; no component reads it
	case "estimated-compile-size":
		n, err := ParseSize(d.value)
		if err != nil {
			return err
		}
		cfg.EstimatedCompileSize = n
	case "Werror":
		if d.value == "" {
			cfg.WerrorAll = true
			break
		}
		mask, err := ParseWarnMask(d.value)
		if err != nil {
			return err
		}
		cfg.WerrorMask = mask
	case "Warn":
		mask, err := ParseWarnMask(d.value)
		if err != nil {
			return err
		}
		cfg.WarnMask = mask
	case "ns":
		cfg.Namespace = d.value
	case "policy-features":
		cfg.PolicyFeaturesFile = d.value
	case "kernel-features":
		cfg.KernelFeaturesFile = d.value
	case "override-policy-abi":
		cfg.OverridePolicyABI = d.value
	case "match-string":
		cfg.MatchString = d.value
	case "create-cache-dir":
		_, err := strconv.ParseBool(d.value)
		if err != nil && d.value != "" {
			return fmt.Errorf("invalid create-cache-dir %q: %w", d.value, errdefs.ErrInvalidArgument)
		}
	case "cache-limit":
		// retained for forward compatibility with file syntax; max_entries
		// is the fixed defaultCacheMaxEntries, see internal/driver.
	}
	return nil
}

// SplitCacheLocations splits a --cache-loc/cache-loc value on unescaped
// commas, allowing a literal comma in a path via "\,".
func SplitCacheLocations(raw string) []string {
	var out []string
	var cur strings.Builder
	escaped := false
	for _, r := range raw {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ',':
			out = append(out, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

// Merge layers defaults, then the config file's partial record, then the
// CLI's partial record (fields the user actually passed), each winning
// over the last — the same three-source precedence as the teacher's
// runtime config assembly, generalized from a single merge to a chain of
// two.
func Merge(defaults, file, cli *Config) (*Config, error) {
	out := *defaults
	if file != nil {
		if err := mergo.Merge(&out, file, mergo.WithOverride, mergo.WithAppendSlice); err != nil {
			return nil, fmt.Errorf("merging config file: %w", err)
		}
	}
	if cli != nil {
		if err := mergo.Merge(&out, cli, mergo.WithOverride, mergo.WithAppendSlice); err != nil {
			return nil, fmt.Errorf("merging command line overrides: %w", err)
		}
	}
	return &out, nil
}
