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

	"github.com/containerd/errdefs"
	"github.com/urfave/cli/v2"
)

// actionFlags names every flag that selects a driver Action; spec.md §4.2
// requires at most one to be given per invocation.
var actionFlags = []string{"add", "replace", "remove", "stdout", "ofile", "names", "preprocess"}

// FromContext builds the CLI layer's partial Config: only flags the user
// actually passed (cli.Context.IsSet) are populated, so Merge can tell an
// explicit "--jobs 4" from the flag's own zero-value default.
func FromContext(ctx *cli.Context) (*Config, error) {
	cfg := &Config{DumpKinds: map[string]bool{}}

	var actionsGiven int
	set := func(name string, fn func()) {
		if ctx.IsSet(name) {
			actionsGiven++
			fn()
		}
	}
	set("add", func() { cfg.Action = ActionAdd; cfg.ActionSet = true })
	set("replace", func() { cfg.Action = ActionReplace; cfg.ActionSet = true })
	set("remove", func() { cfg.Action = ActionRemove; cfg.ActionSet = true })
	set("stdout", func() { cfg.Action = ActionStdout; cfg.ActionSet = true })
	set("ofile", func() { cfg.Action = ActionOfile; cfg.ActionSet = true; cfg.OFile = ctx.String("ofile") })
	set("names", func() { cfg.Action = ActionNames; cfg.ActionSet = true })
	set("preprocess", func() { cfg.Action = ActionPreprocess; cfg.ActionSet = true })
	if actionsGiven > 1 {
		return nil, fmt.Errorf("more than one action flag given (%v): %w", actionFlags, errdefs.ErrInvalidArgument)
	}

	if ctx.IsSet("complain") {
		cfg.ForceComplain = true
	}
	if ctx.IsSet("binary") {
		cfg.BinaryInput = true
	}
	if ctx.IsSet("readimpliesX") {
		cfg.ReadImpliesX = true
	}
	if ctx.IsSet("cross-check") {
		cfg.CrossCheckCache = true
	}
	if ctx.IsSet("verbose") {
		cfg.Verbose = true
	}
	if ctx.IsSet("quiet") {
		cfg.Quiet = true
	}
	if ctx.IsSet("abort-on-error") {
		cfg.AbortOnError = true
	}
	if ctx.IsSet("skip-kernel-load") {
		cfg.SkipKernelLoad = true
	}
	if ctx.IsSet("apparmorfs") {
		cfg.ApparmorFSOverride = ctx.String("apparmorfs")
	}
	if ctx.IsSet("print-cache-dir") {
		cfg.PrintCacheDir = true
	}
	if ctx.IsSet("print-config") {
		cfg.PrintConfig = true
	}
	if ctx.IsSet("debug") {
		cfg.DebugLevel = ctx.Int("debug")
	}
	if ctx.IsSet("dump-vars") {
		cfg.DumpVars = true
	}
	if ctx.IsSet("dump-expanded-variables") {
		cfg.DumpExpVars = true
	}
	if ctx.IsSet("namespace") {
		cfg.Namespace = ctx.String("namespace")
	}
	if ctx.IsSet("base") {
		cfg.BaseDir = ctx.String("base")
	}
	if ctx.IsSet("include") {
		cfg.Includes = ctx.StringSlice("include")
	}
	if ctx.IsSet("cache-loc") {
		for _, v := range ctx.StringSlice("cache-loc") {
			cfg.CacheLocations = append(cfg.CacheLocations, SplitCacheLocations(v)...)
		}
	}
	if ctx.IsSet("skip-cache") {
		cfg.Cache.Skip = true
	}
	if ctx.IsSet("skip-read-cache") {
		cfg.Cache.SkipRead = true
	}
	if ctx.IsSet("write-cache") {
		cfg.Cache.Write = true
	}
	if ctx.IsSet("purge-cache") {
		cfg.Cache.Purge = true
	}
	if ctx.IsSet("skip-bad-cache") {
		cfg.Cache.SkipBadCache = true
	}
	if ctx.IsSet("show-cache") {
		cfg.Cache.ShowCache = true
	}
	if ctx.IsSet("debug-cache") {
		cfg.Cache.DebugCache = true
	}
	if ctx.IsSet("match-string") {
		cfg.MatchString = ctx.String("match-string")
	}
	if ctx.IsSet("kernel-features") {
		cfg.KernelFeaturesFile = ctx.String("kernel-features")
	}
	if ctx.IsSet("policy-features") {
		cfg.PolicyFeaturesFile = ctx.String("policy-features")
	}
	if ctx.IsSet("override-policy-abi") {
		cfg.OverridePolicyABI = ctx.String("override-policy-abi")
	}
	if ctx.IsSet("jobs") {
		n, err := ParseJobs(ctx.String("jobs"))
		if err != nil {
			return nil, err
		}
		cfg.Jobs = n
	}
	if ctx.IsSet("max-jobs") {
		n, err := ParseJobs(ctx.String("max-jobs"))
		if err != nil {
			return nil, err
		}
		cfg.JobsMax = n
	}
	if ctx.IsSet("estimated-compile-size") {
		n, err := ParseSize(ctx.String("estimated-compile-size"))
		if err != nil {
			return nil, err
		}
		cfg.EstimatedCompileSize = n
	}
	if ctx.IsSet("warn") {
		mask, err := ParseWarnMask(ctx.String("warn"))
		if err != nil {
			return nil, err
		}
		cfg.WarnMask = mask
	}
	if ctx.IsSet("werror") {
		v := ctx.String("werror")
		if v == "" {
			cfg.WerrorAll = true
		} else {
			mask, err := ParseWarnMask(v)
			if err != nil {
				return nil, err
			}
			cfg.WerrorMask = mask
		}
	}
	if ctx.IsSet("config-file") {
		cfg.ConfigFile = ctx.String("config-file")
	}
	cfg.Inputs = ctx.Args().Slice()

	return cfg, nil
}
