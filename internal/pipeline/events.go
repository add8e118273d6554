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
	"time"

	"github.com/docker/go-events"
)

// Job lifecycle events published to an optional events.Sink so presentation
// (verbose logging, metrics, a future progress UI) can subscribe without
// the pipeline importing any of them directly.
type (
	JobStarted struct {
		Basename string
		At       time.Time
	}
	JobCacheHit struct {
		Basename string
		Path     string
	}
	JobCompiled struct {
		Basename string
		Bytes    int
	}
	JobDelivered struct {
		Basename string
		Target   string
	}
	JobFailed struct {
		Basename string
		Err      error
	}
	JobSkipped struct {
		Basename string
		Reason   string
	}
)

func publish(sink events.Sink, ev events.Event) {
	if sink == nil {
		return
	}
	_ = sink.Write(ev)
}
