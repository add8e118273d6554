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

package workerpool

import (
	"github.com/containerd/cgroups/v3"
	"github.com/containerd/cgroups/v3/cgroup2"
	"github.com/containerd/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// AutoTune resolves a jobs sentinel (config.JobsAuto, config.JobsMax, a
// literal count, or a negative CPU multiplier already expanded by
// config.ComputeJobs) against the host's actual resources: the detected
// CPU count, and however much memory is available to this cgroup, each
// profile compile costing roughly estimatedJobBytes of working memory.
//
// jobs == 0 is the "-j 0" sentinel (spec.md §4.5): it means run every job
// inline with no child forked at all, and is returned unchanged, never
// folded into the CPU-count auto-tune. Any other input yields a width of
// at least 1.
func AutoTune(jobs int64, estimatedJobBytes int64) int64 {
	if jobs == 0 {
		return 0
	}

	ncpu := DetectCPUs()
	width := jobs
	if width < 0 {
		width = ncpu
	}

	if estimatedJobBytes > 0 {
		if avail := detectAvailableMemory(); avail > 0 {
			memCap := int64(avail) / estimatedJobBytes
			if memCap < 1 {
				memCap = 1
			}
			if width > memCap {
				log.L.Debugf("capping worker pool from %d to %d jobs based on available memory", width, memCap)
				width = memCap
			}
		}
	}

	if width < 1 {
		width = 1
	}
	return width
}

// DetectCPUs returns the online CPU count, or 1 if it can't be read.
func DetectCPUs() int64 {
	n, err := cpu.Counts(true)
	if err != nil || n < 1 {
		return 1
	}
	return int64(n)
}

// detectAvailableMemory prefers the cgroup's own memory ceiling when the
// process is confined by one (matching what actually throttles it inside
// a container), falling back to host-wide available memory otherwise.
func detectAvailableMemory() uint64 {
	if cgroups.Mode() == cgroups.Unified {
		if mgr, err := cgroup2.LoadManager("/sys/fs/cgroup", "/"); err == nil {
			if stat, err := mgr.Stat(); err == nil && stat.GetMemory() != nil {
				if limit := stat.GetMemory().GetUsageLimit(); limit > 0 && limit < ^uint64(0) {
					usage := stat.GetMemory().GetUsage()
					if limit > usage {
						return limit - usage
					}
				}
			}
		}
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0
	}
	return vm.Available
}
