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

package features

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/containerd/errdefs"
)

// DefaultSysfsFeatures is the documented sysfs path exposing the kernel's
// feature tree, analogous to /sys/kernel/security/apparmor/features.
const DefaultSysfsFeatures = "/sys/kernel/security/apparmor/features"

// legacyMatchFile is consulted when the kernel exposes no feature tree at
// all (pre-compatibility-patch kernels).
const legacyMatchFile = "/sys/kernel/security/apparmor/matching"

// Synthetic ABI blobs used by the legacy fallback ladder. Each tier is a
// strict superset of the ones below it; a kernel stuck on the oldest tier
// still gets a usable, if conservative, feature set.
const (
	abiC   = "caps\ncaps/mask\nrlimit\nnetwork\nnetwork/af_unix\n"
	abiN   = abiC + "policy\npolicy/versions/v5\nnamespaces\n"
	abiCN  = abiN + "mount\nptrace\nsignal\ndomain/stack\n"
	credKW = " perms=c"
)

// Probe determines the process-scope kernel feature set: the live tree if
// the sysfs path exists, otherwise the legacy match-string ladder from
// spec.md's §4.1 fallback algorithm. It reports whether caching should be
// disabled as a side effect of falling back (compatibility-patch-missing
// kernels never get a reliable cache key).
func Probe(sysfsPath string) (set *Set, disableCache bool, err error) {
	if sysfsPath == "" {
		sysfsPath = DefaultSysfsFeatures
	}
	if info, statErr := os.Stat(sysfsPath); statErr == nil && info.IsDir() {
		set, err = FromTree(sysfsPath)
		return set, false, err
	}

	set, err = legacyFallback()
	return set, true, err
}

func legacyFallback() (*Set, error) {
	f, err := os.Open(legacyMatchFile)
	if err != nil {
		// Neither the feature tree nor the legacy match file exist: this
		// is either a very old kernel or a container without the MAC
		// interfaces mounted. Synthesize the weakest ABI.
		return FromTextString(abiC)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 1024), 4096)
	var firstLine string
	if sc.Scan() {
		firstLine = sc.Text()
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading legacy match file %s: %w: %w", legacyMatchFile, err, errdefs.ErrUnavailable)
	}

	if strings.Contains(firstLine, credKW) {
		return FromTextString(abiCN)
	}
	return FromTextString(abiN)
}
