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

	"github.com/containerd/errdefs"
)

// ParseJobs decodes the --jobs/--max-jobs argument grammar: "auto", "max",
// a bare integer, or an "xN" multiplier of the detected CPU count. The
// multiplier form is returned as -N so Resolve's ComputeJobs can apply it
// uniformly with a literal negative count (spec.md §4.5).
func ParseJobs(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	switch strings.ToLower(raw) {
	case "", "auto":
		return JobsAuto, nil
	case "max":
		return JobsMax, nil
	}

	multiplier := false
	if strings.HasPrefix(raw, "x") || strings.HasPrefix(raw, "X") {
		multiplier = true
		raw = raw[1:]
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid jobs value %q: %w: %w", raw, err, errdefs.ErrInvalidArgument)
	}
	if multiplier {
		n = -n
	}
	return n, nil
}

// ComputeJobs resolves a possibly-sentinel or negative jobs count against
// the detected CPU count ncpu, matching the original compute_jobs(): AUTO
// becomes ncpu, a negative value -k becomes k*ncpu, everything else (a
// literal count, or MAX left for the caller to clamp against RAM) passes
// through unchanged.
func ComputeJobs(jobs, ncpu int64) int64 {
	switch {
	case jobs == JobsAuto:
		return ncpu
	case jobs == JobsMax:
		return JobsMax
	case jobs < 0:
		return ncpu * -jobs
	default:
		return jobs
	}
}
