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

// Package workerpool runs independent profile-compile jobs concurrently,
// bounded by a configured or auto-tuned job count, the way the original
// driver forked one child process per profile: a semaphore caps how many
// run at once, and a result is collected for every job regardless of
// whether earlier ones failed (unless abort-on-error is requested). A
// zero-width pool (-j 0) instead runs every job inline, one at a time,
// with no concurrency primitive involved at all.
package workerpool

import (
	"context"
	"fmt"
	"sync"

	"github.com/containerd/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Job is one independently-schedulable unit of work: compiling and
// delivering a single profile.
type Job interface {
	// Name identifies the job for logging and for matching a Result back
	// to its input.
	Name() string
	Run(ctx context.Context) error
}

// Result pairs a job's name with the error it finished with, if any.
type Result struct {
	Name string
	Err  error
}

// Pool bounds concurrent Job execution to a fixed width. A zero-width pool
// is a distinct inline mode (spec.md §4.5's "-j 0"): Run never acquires a
// semaphore or spawns a goroutine for it, every job executes synchronously
// in the caller's goroutine.
type Pool struct {
	width int64
	sem   *semaphore.Weighted
}

// New creates a pool that runs at most width jobs concurrently. width == 0
// is the inline sentinel and is kept as-is; a negative width is invalid
// input and floors to 1, since only the explicit zero means "run inline."
func New(width int64) *Pool {
	if width < 0 {
		width = 1
	}
	if width == 0 {
		return &Pool{width: 0}
	}
	return &Pool{width: width, sem: semaphore.NewWeighted(width)}
}

// Width reports the pool's configured concurrency.
func (p *Pool) Width() int64 {
	return p.width
}

// Run dispatches every job, waits for all of them, and returns one Result
// per job in submission order. When abortOnError is true, the first
// failing job's error cancels ctx for jobs that haven't started yet
// (mirroring --abort-on-error); otherwise every job runs to completion and
// the returned error is whichever failure was observed last, matching the
// original driver's accumulation into a single last_error.
func Run(ctx context.Context, pool *Pool, jobs []Job, abortOnError bool) ([]Result, error) {
	if pool.sem == nil {
		return runInline(ctx, jobs, abortOnError)
	}

	results := make([]Result, len(jobs))

	if abortOnError {
		eg, egctx := errgroup.WithContext(ctx)
		for i, j := range jobs {
			i, j := i, j
			if err := pool.sem.Acquire(egctx, 1); err != nil {
				results[i] = Result{Name: j.Name(), Err: err}
				continue
			}
			eg.Go(func() error {
				defer pool.sem.Release(1)
				err := j.Run(egctx)
				results[i] = Result{Name: j.Name(), Err: err}
				if err != nil {
					log.L.Errorf("%s: %v", j.Name(), err)
				}
				return err
			})
		}
		return results, eg.Wait()
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		lastErr error
	)
	for i, j := range jobs {
		i, j := i, j
		if err := pool.sem.Acquire(ctx, 1); err != nil {
			results[i] = Result{Name: j.Name(), Err: err}
			mu.Lock()
			lastErr = err
			mu.Unlock()
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer pool.sem.Release(1)
			err := j.Run(ctx)
			results[i] = Result{Name: j.Name(), Err: err}
			if err != nil {
				log.L.Errorf("%s: %v", j.Name(), err)
				mu.Lock()
				lastErr = err
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if lastErr != nil {
		return results, fmt.Errorf("one or more jobs failed, last error: %w", lastErr)
	}
	return results, nil
}

// runInline executes every job synchronously in the calling goroutine, the
// -j 0 path: no semaphore, no goroutine, nothing forked.
func runInline(ctx context.Context, jobs []Job, abortOnError bool) ([]Result, error) {
	results := make([]Result, len(jobs))
	var lastErr error
	for i, j := range jobs {
		if err := ctx.Err(); err != nil {
			results[i] = Result{Name: j.Name(), Err: err}
			if abortOnError {
				return results, err
			}
			lastErr = err
			continue
		}

		err := j.Run(ctx)
		results[i] = Result{Name: j.Name(), Err: err}
		if err != nil {
			log.L.Errorf("%s: %v", j.Name(), err)
			if abortOnError {
				return results, err
			}
			lastErr = err
		}
	}
	if lastErr != nil {
		return results, fmt.Errorf("one or more jobs failed, last error: %w", lastErr)
	}
	return results, nil
}
