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

// Package config resolves the driver's configuration from three layered
// sources — built-in defaults, a config file, and command-line flags —
// applied in that order with later sources winning, per spec.md §4.2.
package config

import (
	"math"
)

// Action selects what the driver does with each compiled profile. At most
// one of these may be chosen per invocation.
type Action int

const (
	ActionAdd Action = iota
	ActionReplace
	ActionRemove
	ActionStdout
	ActionOfile
	ActionNames
	ActionPreprocess
)

func (a Action) String() string {
	switch a {
	case ActionAdd:
		return "add"
	case ActionReplace:
		return "replace"
	case ActionRemove:
		return "remove"
	case ActionStdout:
		return "stdout"
	case ActionOfile:
		return "ofile"
	case ActionNames:
		return "names"
	case ActionPreprocess:
		return "preprocess"
	default:
		return "unknown"
	}
}

// Jobs sentinels, matching the original parser's LONG_MIN/LONG_MAX/negative
// encodings so --jobs/--max-jobs keep their exact meaning (spec.md §4.5).
const (
	JobsAuto = int64(math.MinInt64)
	JobsMax  = int64(math.MaxInt64)

	defaultJobsMax        = -8 // 8 * cpus
	defaultEstimatedJob   = 50 * 1024 * 1024
	defaultJobsScaleCheck = true
)

// CacheModes bundles the cache-behavior toggles spec.md §4.2 enumerates.
type CacheModes struct {
	Skip                bool // -K, --skip-cache: never read or write
	SkipRead            bool // -T, --skip-read-cache
	Write               bool // -W, --write-cache
	Purge               bool // --purge-cache
	SkipBadCache        bool // --skip-bad-cache: don't clear cache if out of sync
	SkipBadCacheRebuild bool // --skip-bad-cache-rebuild
	ShowCache           bool // -k, --show-cache
	DebugCache          bool // --debug-cache
	CondClearCache      bool // only applies if Write is set; defaults true
}

// Config is the fully-resolved, immutable-after-construction configuration
// record every other component reads by reference. It is built exactly
// once, during the two-pass argument resolution in Resolve.
type Config struct {
	Action        Action
	ActionSet     bool // tracks whether the user explicitly chose an action
	ForceComplain bool
	BinaryInput   bool
	ReadImpliesX  bool

	Verbose bool
	Quiet   bool

	WarnMask    uint32
	WerrorMask  uint32
	WerrorAll   bool
	DebugLevel  int
	DebugJobs   bool
	DumpVars    bool
	DumpExpVars bool
	DumpKinds   map[string]bool

	Namespace string
	BaseDir   string
	Includes  []string

	CacheLocations []string
	Cache          CacheModes

	MatchString        string
	FeaturesFile       string
	KernelFeaturesFile string
	PolicyFeaturesFile string
	OverridePolicyABI  string

	Jobs                 int64
	JobsMax              int64
	JobsScaleChecksLeft  int64
	EstimatedCompileSize int64

	OFile              string
	ConfigFile         string
	AbortOnError       bool
	SkipKernelLoad     bool
	PrintCacheDir      bool
	PrintConfig        bool
	PrintConfigFile    bool
	SkipModeForce      bool
	CrossCheckCache    bool // --cross-check; -X itself is readimpliesX upstream
	ApparmorFSOverride string

	Inputs []string
}

// Defaults returns the built-in baseline every run starts from, mirroring
// the original parser's file-scope globals collapsed into one record per
// Design Notes §9.
func Defaults() *Config {
	return &Config{
		Action:               ActionAdd,
		Cache:                CacheModes{CondClearCache: true},
		Jobs:                 JobsAuto,
		JobsMax:              defaultJobsMax,
		EstimatedCompileSize: defaultEstimatedJob,
		ConfigFile:           "/etc/apparmor/parser.conf",
		DumpKinds:            map[string]bool{},
		Includes:             nil,
		CacheLocations:       nil,
	}
}
