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

// Package app assembles the gomacparser command-line application: flag
// definitions, logging setup, and the glue between a resolved Config and
// the driver's Run.
package app

import (
	"fmt"

	"github.com/containerd/log"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/oxagast/gomacparser/internal/config"
	"github.com/oxagast/gomacparser/internal/driver"
)

// New returns the *cli.App instance main() runs.
func New() *cli.App {
	app := cli.NewApp()
	app.Name = "gomacparser"
	app.Usage = "compile and load MAC policy profiles into the kernel"
	app.UsageText = "gomacparser [options] <profile>..."
	app.DisableSliceFlagSeparator = true
	app.Flags = flags
	app.Before = setupLogging
	app.Action = run
	return app
}

func setupLogging(ctx *cli.Context) error {
	switch {
	case ctx.Bool("quiet"):
		logrus.SetLevel(logrus.ErrorLevel)
	case ctx.Bool("verbose") || ctx.IsSet("debug"):
		logrus.SetLevel(logrus.DebugLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}
	return nil
}

func run(ctx *cli.Context) error {
	cfg, err := config.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("resolving configuration: %w", err)
	}

	d, err := driver.New(cfg)
	if err != nil {
		return fmt.Errorf("initializing driver: %w", err)
	}

	if err := d.Run(ctx.Context); err != nil {
		log.L.WithError(err).Error("run finished with errors")
		return err
	}
	return nil
}
