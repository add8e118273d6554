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

// Package metrics maintains an in-process counter/histogram registry for
// compile outcomes. Nothing here is exposed over HTTP — no network
// surface is in scope for this driver — the registry exists purely so a
// long-running embedder (or a future debug dump) can read it back.
package metrics

import (
	"errors"
	"strings"
	"time"

	"github.com/docker/go-metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Registry holds the counters and histograms for compile outcomes. They
// change only through ObserveCompile, ObserveCacheResult and the exported
// counters; the pipeline does not call any of them.
type Registry struct {
	ns  *metrics.Namespace
	reg *prometheus.Registry

	Compiles     metrics.LabeledCounter
	CacheResults metrics.LabeledCounter
	Downgrades   metrics.Counter
	NotEnforced  metrics.Counter
	CompileTime  metrics.LabeledTimer
}

// New builds a fresh registry. It registers the namespace both with
// go-metrics' package-level registerer (so an embedder wiring up the
// standard /metrics handler elsewhere in its process picks this up for
// free) and with a private prometheus.Registry this package owns, which
// backs DumpText. Neither path starts a listener. Only the first Registry
// built in a process is registered globally; later ones find the
// namespace already registered and are backed by their private registry
// alone.
func New() *Registry {
	ns := metrics.NewNamespace("macparser", "", nil)

	r := &Registry{
		ns:           ns,
		reg:          prometheus.NewRegistry(),
		Compiles:     ns.NewLabeledCounter("compiles_total", "profile compile attempts", "result"),
		CacheResults: ns.NewLabeledCounter("cache_results_total", "cache lookups by outcome", "result"),
		Downgrades:   ns.NewCounter("rule_downgrades_total", "rules downgraded to a weaker enforcement kind"),
		NotEnforced:  ns.NewCounter("rule_not_enforced_total", "rules dropped as unenforceable"),
		CompileTime:  ns.NewLabeledTimer("compile_duration_seconds", "time spent compiling a profile", "result"),
	}
	if err := prometheus.Register(ns); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			panic(err)
		}
	}
	r.reg.MustRegister(ns)
	return r
}

// DumpText renders the registry's current values in the Prometheus text
// exposition format, for --debug-cache-style offline inspection without
// standing up an HTTP endpoint.
func (r *Registry) DumpText() (string, error) {
	families, err := r.reg.Gather()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	enc := expfmt.NewEncoder(&b, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

// ObserveCompile records one job's terminal outcome.
func (r *Registry) ObserveCompile(result string, d time.Duration) {
	r.Compiles.WithValues(result).Inc()
	r.CompileTime.WithValues(result).Update(d)
}

// ObserveCacheResult records a cache lookup outcome ("hit" or "miss").
func (r *Registry) ObserveCacheResult(result string) {
	r.CacheResults.WithValues(result).Inc()
}
