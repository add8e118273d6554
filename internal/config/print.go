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

	"github.com/pelletier/go-toml/v2"
)

// printable is the TOML-friendly projection of Config that --print-config
// emits; Action and the cache bitmasks are rendered as strings rather than
// their internal integer encodings so the dump is worth reading.
type printable struct {
	Action               string            `toml:"action"`
	ForceComplain        bool              `toml:"force_complain"`
	BinaryInput          bool              `toml:"binary_input"`
	ReadImpliesX         bool              `toml:"read_implies_x"`
	Verbose              bool              `toml:"verbose"`
	Quiet                bool              `toml:"quiet"`
	Namespace            string            `toml:"namespace,omitempty"`
	BaseDir              string            `toml:"base_dir,omitempty"`
	Includes             []string          `toml:"includes,omitempty"`
	CacheLocations       []string          `toml:"cache_locations,omitempty"`
	Cache                CacheModes        `toml:"cache"`
	MatchString          string            `toml:"match_string,omitempty"`
	KernelFeaturesFile   string            `toml:"kernel_features_file,omitempty"`
	PolicyFeaturesFile   string            `toml:"policy_features_file,omitempty"`
	OverridePolicyABI    string            `toml:"override_policy_abi,omitempty"`
	Jobs                 int64             `toml:"jobs"`
	JobsMax              int64             `toml:"max_jobs"`
	EstimatedCompileSize int64             `toml:"estimated_compile_size"`
	ConfigFile           string            `toml:"config_file"`
	DumpKinds            map[string]bool   `toml:"dump_kinds,omitempty"`
}

// ToTOML renders cfg the way --print-config dumps it.
func ToTOML(cfg *Config) (string, error) {
	p := printable{
		Action:               cfg.Action.String(),
		ForceComplain:        cfg.ForceComplain,
		BinaryInput:          cfg.BinaryInput,
		ReadImpliesX:         cfg.ReadImpliesX,
		Verbose:              cfg.Verbose,
		Quiet:                cfg.Quiet,
		Namespace:            cfg.Namespace,
		BaseDir:              cfg.BaseDir,
		Includes:             cfg.Includes,
		CacheLocations:       cfg.CacheLocations,
		Cache:                cfg.Cache,
		MatchString:          cfg.MatchString,
		KernelFeaturesFile:   cfg.KernelFeaturesFile,
		PolicyFeaturesFile:   cfg.PolicyFeaturesFile,
		OverridePolicyABI:    cfg.OverridePolicyABI,
		Jobs:                 cfg.Jobs,
		JobsMax:              cfg.JobsMax,
		EstimatedCompileSize: cfg.EstimatedCompileSize,
		ConfigFile:           cfg.ConfigFile,
		DumpKinds:            cfg.DumpKinds,
	}
	b, err := toml.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("rendering config as toml: %w", err)
	}
	return string(b), nil
}
