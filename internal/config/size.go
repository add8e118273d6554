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

	"github.com/containerd/errdefs"
	"github.com/docker/go-units"
)

// ParseSize interprets a max-mem/estimated-compile-size value. The
// original accepts a bare byte count or a KB/MB/GB suffixed quantity using
// 1024-based powers; units.RAMInBytes implements the same table (plus a
// few aliases the original never had, which is harmless since nothing in
// this codebase emits them).
func ParseSize(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := units.RAMInBytes(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w: %w", raw, err, errdefs.ErrInvalidArgument)
	}
	return n, nil
}
