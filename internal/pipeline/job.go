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
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/containerd/errdefs"
	"github.com/containerd/log"
	"github.com/docker/go-events"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/oxagast/gomacparser/internal/cache"
	"github.com/oxagast/gomacparser/internal/config"
	"github.com/oxagast/gomacparser/internal/features"
	"github.com/oxagast/gomacparser/internal/kernelif"
)

var tracer = otel.Tracer("github.com/oxagast/gomacparser/internal/pipeline")

// Job is one Profile Job: a source to compile, the action to take with
// the result, and every per-job override spec.md §3 names.
type Job struct {
	ID            uuid.UUID
	SourcePath    string // empty means read from Stdin
	Stdin         io.Reader
	Basename      string
	Action        config.Action
	ForceComplain bool
	NamespaceTag  string
	SkipCache     bool
	CrossCheck    bool

	BaseDir       string
	IncludeSearch []string
	OFile         string
	Stdout        io.Writer

	Cfg      *config.Config
	Slots    *features.Slots
	Cache    *cache.Store
	Kernel   *kernelif.Interface
	Events   events.Sink
	Warnings func(Warning)

	Parser SourceParser
	Post   PostProcessor
	Emit   BinaryEmitter
}

func (j *Job) Name() string { return j.Basename }

// Run executes the state machine from spec.md §4.4 for this job.
func (j *Job) Run(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "pipeline.Run")
	defer span.End()

	logger := log.G(ctx).WithField("profile", j.Basename).WithField("job", j.ID.String())
	publish(j.Events, JobStarted{Basename: j.Basename, At: time.Now()})

	if disabled(j.BaseDir, j.Basename) && !j.Cfg.SkipModeForce {
		logger.Info("profile disabled, skipping")
		publish(j.Events, JobSkipped{Basename: j.Basename, Reason: "disabled"})
		return nil
	}
	if !j.Cfg.SkipModeForce && forceComplainOverride(j.BaseDir, j.Basename) {
		j.ForceComplain = true
	}

	j.Slots.Reset()

	if j.Action == config.ActionRemove {
		err := j.deliverRemove()
		if err != nil {
			publish(j.Events, JobFailed{Basename: j.Basename, Err: err})
		}
		return err
	}

	raw, sourceSize, sourceMod, err := j.readSource()
	if err != nil {
		err = fmt.Errorf("reading %s: %w: %w", j.displayPath(), err, errdefs.ErrUnavailable)
		publish(j.Events, JobFailed{Basename: j.Basename, Err: err})
		return err
	}

	if j.Cfg.BinaryInput {
		err := j.deliver(raw)
		if err != nil {
			publish(j.Events, JobFailed{Basename: j.Basename, Err: err})
		}
		return err
	}

	cacheEnabled := j.cacheEnabled()
	effective := j.Slots.Effective()
	var fingerprint, featuresText string
	if effective != nil {
		fingerprint = effective.Fingerprint()
		featuresText = effective.Text()
	}

	// Cross-check mode always compiles, so the fresh result can be
	// compared with the cached entry below.
	if !j.ForceComplain && cacheEnabled && !j.CrossCheck {
		if path, hit, err := j.Cache.Lookup(fingerprint, j.Basename, sourceSize, sourceMod, featuresText); err != nil {
			logger.WithError(err).Warn("cache lookup failed, compiling instead")
		} else if hit {
			data, readErr := os.ReadFile(path)
			if readErr == nil {
				publish(j.Events, JobCacheHit{Basename: j.Basename, Path: path})
				if err := j.deliver(data); err != nil {
					if j.Cfg.Cache.SkipBadCacheRebuild {
						return err
					}
					logger.WithError(err).Warn("delivering cached entry failed, recompiling")
				} else {
					return nil
				}
			}
		}
	}

	doc, err := j.Parser.Parse(ctx, bytes.NewReader(raw), SearchPathResolver{
		SearchDirs: j.IncludeSearch,
		ProfileDir: filepath.Dir(j.displayPath()),
	})
	if err != nil {
		err = fmt.Errorf("parsing %s: %w: %w", j.displayPath(), err, errdefs.ErrInvalidArgument)
		publish(j.Events, JobFailed{Basename: j.Basename, Err: err})
		return err
	}

	if j.NamespaceTag != "" {
		// TODO: the correct caching behavior for namespaced profiles is
		// unspecified; disabling it outright is the conservative choice.
		cacheEnabled = false
	}

	switch j.Action {
	case config.ActionPreprocess:
		return j.dumpDocument(doc)
	case config.ActionNames:
		return j.dumpNames(doc)
	}
	if j.Cfg.DumpVars {
		return j.dumpNames(doc)
	}

	processed, warnings, err := j.Post.Process(ctx, doc, effective)
	if err != nil {
		err = fmt.Errorf("post-processing %s: %w", j.displayPath(), err)
		publish(j.Events, JobFailed{Basename: j.Basename, Err: err})
		return err
	}
	for _, w := range warnings {
		j.reportWarning(logger, w)
	}
	if werr := j.werrorViolation(warnings); werr != nil {
		publish(j.Events, JobFailed{Basename: j.Basename, Err: werr})
		return werr
	}

	if j.Cfg.DumpExpVars {
		return j.dumpDocument(processed)
	}

	binary, err := j.Emit.Emit(ctx, processed)
	if err != nil {
		err = fmt.Errorf("emitting %s: %w", j.displayPath(), err)
		publish(j.Events, JobFailed{Basename: j.Basename, Err: err})
		return err
	}
	publish(j.Events, JobCompiled{Basename: j.Basename, Bytes: len(binary)})

	if j.CrossCheck && cacheEnabled {
		j.crossCheck(logger, fingerprint, binary)
	}

	if err := j.deliver(binary); err != nil {
		publish(j.Events, JobFailed{Basename: j.Basename, Err: err})
		return err
	}

	if j.Cfg.Cache.Write && !j.ForceComplain && cacheEnabled {
		if err := j.Cache.WriteAtomic(fingerprint, j.Basename, binary, featuresText, sourceSize, sourceMod); err != nil {
			logger.WithError(err).Warn("writing cache entry failed, continuing without caching it")
		}
	}

	return nil
}

func (j *Job) cacheEnabled() bool {
	if j.Cache == nil || j.SkipCache || j.Cfg.Cache.Skip {
		return false
	}
	return true
}

func (j *Job) displayPath() string {
	if j.SourcePath == "" {
		return "<stdin>"
	}
	return j.SourcePath
}

func (j *Job) readSource() (data []byte, size, modUnixNano int64, err error) {
	if j.SourcePath == "" {
		in := j.Stdin
		if in == nil {
			in = os.Stdin
		}
		data, err = io.ReadAll(in)
		return data, int64(len(data)), 0, err
	}
	info, err := os.Stat(j.SourcePath)
	if err != nil {
		return nil, 0, 0, err
	}
	data, err = os.ReadFile(j.SourcePath)
	if err != nil {
		return nil, 0, 0, err
	}
	return data, info.Size(), info.ModTime().UnixNano(), nil
}

func (j *Job) dumpDocument(doc *Document) error {
	binary, err := DefaultEmitter{}.Emit(context.Background(), doc)
	if err != nil {
		return err
	}
	_, err = j.writer().Write(binary)
	return err
}

func (j *Job) dumpNames(doc *Document) error {
	_, err := fmt.Fprintf(j.writer(), "%s\n", doc.Name)
	return err
}

func (j *Job) writer() io.Writer {
	if j.Stdout != nil {
		return j.Stdout
	}
	return os.Stdout
}

func (j *Job) reportWarning(logger *log.Entry, w Warning) {
	if j.Warnings != nil {
		j.Warnings(w)
	}
	if j.Cfg.WarnMask&w.Class != 0 || j.Cfg.WarnMask == 0 {
		logger.Warn(w.Message)
	}
}

func (j *Job) werrorViolation(warnings []Warning) error {
	for _, w := range warnings {
		if j.Cfg.WerrorAll || j.Cfg.WerrorMask&w.Class != 0 {
			return fmt.Errorf("warning treated as error for %s: %s: %w", j.Basename, w.Message, errdefs.ErrInvalidArgument)
		}
	}
	return nil
}

func (j *Job) crossCheck(logger *log.Entry, fingerprint string, fresh []byte) {
	path := j.Cache.FilenameFor(fingerprint, j.Basename)
	existing, err := os.ReadFile(path)
	if err != nil {
		return
	}
	if !bytes.Equal(existing, fresh) {
		logger.Warnf("cache-divergence: cached entry for %s differs from a fresh compile", j.Basename)
	}
}

func (j *Job) deliverRemove() error {
	if j.Kernel == nil || j.Cfg.SkipKernelLoad {
		return nil
	}
	if err := j.Kernel.Remove(j.Basename); err != nil {
		return fmt.Errorf("removing %s: %w", j.Basename, err)
	}
	publish(j.Events, JobDelivered{Basename: j.Basename, Target: "kernel-remove"})
	return nil
}

func (j *Job) deliver(binary []byte) error {
	switch j.Action {
	case config.ActionStdout:
		_, err := j.writer().Write(binary)
		publish(j.Events, JobDelivered{Basename: j.Basename, Target: "stdout"})
		return err
	case config.ActionOfile:
		if err := os.WriteFile(j.OFile, binary, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", j.OFile, err)
		}
		publish(j.Events, JobDelivered{Basename: j.Basename, Target: j.OFile})
		return nil
	case config.ActionReplace:
		if j.Kernel == nil || j.Cfg.SkipKernelLoad {
			return nil
		}
		if err := j.Kernel.Replace(binary); err != nil {
			return fmt.Errorf("replacing %s in kernel: %w", j.Basename, err)
		}
	default: // ActionAdd
		if j.Kernel == nil || j.Cfg.SkipKernelLoad {
			return nil
		}
		if err := j.Kernel.Load(binary); err != nil {
			return fmt.Errorf("loading %s into kernel: %w", j.Basename, err)
		}
	}
	publish(j.Events, JobDelivered{Basename: j.Basename, Target: "kernel"})
	return nil
}
