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

package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Every test here shares one Registry built by TestMain, so observations
// accumulate across tests in source order:
// TestDumpTextStartsEmptyOfObservations runs first and sees none.
var shared *Registry

func TestMain(m *testing.M) {
	shared = New()
	m.Run()
}

func TestDumpTextStartsEmptyOfObservations(t *testing.T) {
	text, err := shared.DumpText()
	require.NoError(t, err)
	assert.Contains(t, text, "macparser_rule_downgrades_total")
	assert.NotContains(t, text, "macparser_compiles_total")
}

func TestObserveCompileIncrementsCounterAndTimer(t *testing.T) {
	shared.ObserveCompile("ok", 25*time.Millisecond)

	text, err := shared.DumpText()
	require.NoError(t, err)
	assert.True(t, strings.Contains(text, `result="ok"`), "expected a result=\"ok\" label in:\n%s", text)
	assert.Contains(t, text, "macparser_compile_duration_seconds")
}

func TestObserveCacheResultIncrementsLabeledCounter(t *testing.T) {
	shared.ObserveCacheResult("hit")
	shared.ObserveCacheResult("miss")

	text, err := shared.DumpText()
	require.NoError(t, err)
	assert.Contains(t, text, "macparser_cache_results_total")
	assert.True(t, strings.Contains(text, `result="hit"`))
	assert.True(t, strings.Contains(text, `result="miss"`))
}

func TestDowngradeAndNotEnforcedAreBareCounters(t *testing.T) {
	shared.Downgrades.Inc()
	shared.NotEnforced.Inc()

	text, err := shared.DumpText()
	require.NoError(t, err)
	assert.Contains(t, text, "macparser_rule_downgrades_total")
	assert.Contains(t, text, "macparser_rule_not_enforced_total")
}
