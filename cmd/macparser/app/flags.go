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

package app

import "github.com/urfave/cli/v2"

// flags mirrors the original parser's long_options/short_options table
// (per SPEC_FULL.md §6): one urfave/cli flag per entry, aliased to its
// short form where the original had one. internal/config.FromContext
// reads these back purely by name via ctx.IsSet, so a flag's Name here
// IS its wire contract with the config layer.
var flags = []cli.Flag{
	&cli.BoolFlag{Name: "add", Aliases: []string{"a"}, Usage: "load new profiles into the kernel (default action)"},
	&cli.BoolFlag{Name: "replace", Aliases: []string{"r"}, Usage: "replace existing profiles in the kernel"},
	&cli.BoolFlag{Name: "remove", Aliases: []string{"R"}, Usage: "unload profiles from the kernel"},
	&cli.BoolFlag{Name: "stdout", Aliases: []string{"S"}, Usage: "write compiled output to stdout instead of the kernel"},
	&cli.StringFlag{Name: "ofile", Aliases: []string{"o"}, Usage: "write compiled output to a file instead of the kernel"},
	&cli.BoolFlag{Name: "names", Aliases: []string{"N"}, Usage: "print each profile's name instead of compiling it"},
	&cli.BoolFlag{Name: "preprocess", Aliases: []string{"p"}, Usage: "print the preprocessed (pre-binary) profile"},

	&cli.BoolFlag{Name: "complain", Aliases: []string{"C"}, Usage: "force every profile into complain mode"},
	&cli.BoolFlag{Name: "binary", Aliases: []string{"B"}, Usage: "treat input as an already-compiled binary profile"},
	&cli.BoolFlag{Name: "readimpliesX", Aliases: []string{"X"}, Usage: "treat a read permission as also granting execute"},
	&cli.BoolFlag{Name: "cross-check", Usage: "after compiling, diff the result against any existing cache entry and warn on mismatch"},
	&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "increase log verbosity"},
	&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "suppress non-error output"},
	&cli.IntFlag{Name: "debug", Aliases: []string{"d"}, Usage: "set the debug log level"},

	&cli.BoolFlag{Name: "abort-on-error", Usage: "stop dispatching new jobs after the first failure"},
	&cli.BoolFlag{Name: "skip-kernel-load", Aliases: []string{"Q"}, Usage: "compile without touching the kernel's policy interface"},
	&cli.StringFlag{Name: "apparmorfs", Aliases: []string{"f"}, Usage: "override the discovered policy interface directory"},
	&cli.BoolFlag{Name: "print-cache-dir", Usage: "print the resolved cache directory and exit"},
	&cli.BoolFlag{Name: "print-config", Usage: "print the fully-resolved configuration as TOML and exit"},
	&cli.BoolFlag{Name: "dump-vars", Usage: "print each profile's name after parsing and exit (parsed profiles carry no variable table)"},
	&cli.BoolFlag{Name: "dump-expanded-variables", Usage: "print the post-processed profile and exit"},

	&cli.StringFlag{Name: "namespace", Aliases: []string{"n"}, Usage: "tag compiled profiles with this policy namespace"},
	&cli.StringFlag{Name: "base", Aliases: []string{"b"}, Usage: "base directory profiles and includes are resolved against"},
	&cli.StringSliceFlag{Name: "include", Aliases: []string{"I"}, Usage: "additional include search directory (repeatable)"},

	&cli.StringSliceFlag{Name: "cache-loc", Aliases: []string{"L"}, Usage: "writable cache location, followed by read-only overlays (repeatable, comma-escaped)"},
	&cli.BoolFlag{Name: "skip-cache", Aliases: []string{"K"}, Usage: "never read or write the compile cache"},
	&cli.BoolFlag{Name: "skip-read-cache", Aliases: []string{"T"}, Usage: "never read the compile cache, but still write it"},
	&cli.BoolFlag{Name: "write-cache", Aliases: []string{"W"}, Usage: "write the compile cache even if caching defaults to off"},
	&cli.BoolFlag{Name: "purge-cache", Usage: "delete the cache entries for the effective feature set and exit"},
	&cli.BoolFlag{Name: "skip-bad-cache", Usage: "don't clear the cache when it's found to be out of sync"},
	&cli.BoolFlag{Name: "show-cache", Aliases: []string{"k"}, Usage: "record a cache-report request in the configuration; no per-profile cache report is printed"},
	&cli.BoolFlag{Name: "debug-cache", Usage: "log verbose cache lookup/write diagnostics"},

	&cli.StringFlag{Name: "match-string", Aliases: []string{"m"}, Usage: "use this literal feature text instead of probing the kernel"},
	&cli.StringFlag{Name: "kernel-features", Usage: "load the kernel feature set from a file or directory instead of probing"},
	&cli.StringFlag{Name: "policy-features", Usage: "load the policy feature set a profile is authored against"},
	&cli.StringFlag{Name: "override-policy-abi", Usage: "force the effective feature set regardless of policy-features"},

	&cli.StringFlag{Name: "jobs", Aliases: []string{"j"}, Usage: "target concurrent compile jobs: a count, \"auto\", \"max\", or \"xN\" CPU multiplier"},
	&cli.StringFlag{Name: "max-jobs", Usage: "hard ceiling on concurrent compile jobs, same encoding as --jobs"},
	&cli.StringFlag{Name: "estimated-compile-size", Usage: "expected per-profile working memory, used to auto-tune job concurrency"},

	&cli.StringFlag{Name: "warn", Usage: "comma-separated warning classes to report"},
	&cli.StringFlag{Name: "werror", Usage: "comma-separated warning classes to treat as errors (empty means all)"},
	&cli.StringFlag{Name: "config-file", Usage: "path to the driver's configuration file"},
}
