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

// Package kernelif adapts the driver's load/replace/remove operations to
// the kernel's MAC policy interface: a securityfs mount exposing .load,
// .replace and .remove control files, discovered rather than hardcoded so
// the driver works regardless of where the host mounted securityfs.
package kernelif

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/containerd/errdefs"
	"github.com/containerd/log"
	"github.com/moby/sys/mountinfo"
	"github.com/moby/sys/userns"
)

const (
	securityFSType = "securityfs"
	interfaceDir   = "apparmor"

	loadFile    = ".load"
	replaceFile = ".replace"
	removeFile  = ".remove"
)

// Interface is a handle on the kernel's policy-load control files.
type Interface struct {
	dir string
}

// Discover locates the MAC policy interface directory by walking mount
// records for a securityfs mount and checking it for an "apparmor"
// subdirectory. override, when non-empty, bypasses discovery entirely —
// the --subdomainfs/-F equivalent for containers that bind-mount the
// interface somewhere nonstandard.
func Discover(override string) (*Interface, error) {
	if override != "" {
		return &Interface{dir: override}, nil
	}

	mounts, err := mountinfo.GetMounts(mountinfo.FSTypeFilter(securityFSType))
	if err != nil {
		return nil, fmt.Errorf("enumerating mounts: %w: %w", err, errdefs.ErrUnavailable)
	}
	for _, m := range mounts {
		candidate := filepath.Join(m.Mountpoint, interfaceDir)
		if info, statErr := os.Stat(candidate); statErr == nil && info.IsDir() {
			return &Interface{dir: candidate}, nil
		}
	}
	return nil, fmt.Errorf("no mounted securityfs exposes a %s policy interface: %w", interfaceDir, errdefs.ErrUnavailable)
}

// Dir returns the discovered (or overridden) interface directory.
func (i *Interface) Dir() string {
	return i.dir
}

// Load installs a new profile blob, failing if one by that name already
// exists in the kernel.
func (i *Interface) Load(data []byte) error {
	return i.write(loadFile, data)
}

// Replace installs a profile blob, replacing any existing profile of the
// same name.
func (i *Interface) Replace(data []byte) error {
	return i.write(replaceFile, data)
}

// Remove unloads the named profile. The kernel interface takes the raw
// profile name as the write payload, not a binary blob.
func (i *Interface) Remove(name string) error {
	return i.write(removeFile, []byte(name))
}

func (i *Interface) write(file string, data []byte) error {
	path := filepath.Join(i.dir, file)
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		if os.IsPermission(err) {
			return fmt.Errorf("opening %s: %w: %w", path, err, errdefs.ErrPermissionDenied)
		}
		return fmt.Errorf("opening %s: %w: %w", path, err, errdefs.ErrUnavailable)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// CheckPrivilege verifies the process can plausibly write to the kernel
// interface: running as a user-namespaced, unprivileged process against
// the host's real MAC interface always fails at the kernel, but failing
// fast here gives a much clearer diagnostic than an opaque EPERM deep in
// the delivery stage. A real or effective uid of 0 is accepted; running
// setuid root (effective uid 0 only) logs a warning and proceeds.
func CheckPrivilege(skipKernelLoad bool) error {
	if skipKernelLoad {
		return nil
	}
	if userns.RunningInUserNS() {
		log.L.Warn("running inside a user namespace; kernel policy load will likely fail unless this namespace owns the interface")
	}
	uid, euid := os.Getuid(), os.Geteuid()
	if uid != 0 && euid != 0 {
		return fmt.Errorf("loading MAC policy requires root privilege: %w", errdefs.ErrPermissionDenied)
	}
	if uid != 0 {
		log.L.Warn("running setuid root; proceeding with kernel policy load")
	}
	return nil
}
