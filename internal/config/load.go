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

	"github.com/containerd/log"
	"github.com/urfave/cli/v2"
)

// Resolve implements spec.md §4.2's configuration resolution order:
// defaults, then the config file (if one exists), then the flags the user
// actually typed, each layer overriding the last. The config file's own
// location can itself come from a flag, so ctx is consulted twice: once
// (implicitly, via FromContext) for everything, and the config-file path is
// read directly here before the file is loaded.
func Resolve(ctx *cli.Context) (*Config, error) {
	defaults := Defaults()

	cfgPath := defaults.ConfigFile
	if ctx.IsSet("config-file") {
		cfgPath = ctx.String("config-file")
	}

	var fileCfg *Config
	if _, err := os.Stat(cfgPath); err == nil {
		directives, err := ParseFile(cfgPath)
		if err != nil {
			return nil, err
		}
		fileCfg, err = ApplyFile(directives)
		if err != nil {
			return nil, err
		}
	} else if ctx.IsSet("config-file") {
		// the user named a specific file; silently ignoring a missing one
		// would be surprising, unlike the system default path.
		return nil, err
	} else {
		log.L.Debugf("no config file at %s, using built-in defaults", cfgPath)
	}

	cliCfg, err := FromContext(ctx)
	if err != nil {
		return nil, err
	}

	resolved, err := Merge(defaults, fileCfg, cliCfg)
	if err != nil {
		return nil, err
	}
	resolved.ConfigFile = cfgPath
	return resolved, nil
}
