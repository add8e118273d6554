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

package driver

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/containerd/log"
	mobysignal "github.com/moby/sys/signal"
)

// watchSignals arranges for SIGINT/SIGTERM received during a run to log
// the signal by name and call onSignal, which Run uses to stop the pool
// from starting any job not yet started. Per spec.md §5, outstanding workers
// are never force-killed or given a deadline — they're simply not given
// any more work once the signal lands, and the drain still waits for all
// of them.
func watchSignals(ctx context.Context, onSignal func()) (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		select {
		case sig := <-ch:
			log.G(ctx).Warnf("received signal %s, finishing outstanding jobs and aborting on the next error", mobysignal.SignalName(sig.(syscall.Signal)))
			onSignal()
		case <-done:
		}
	}()

	return func() {
		close(done)
		signal.Stop(ch)
	}
}
