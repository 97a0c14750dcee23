// Copyright 2025 The Merb Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// TestReader collects metrics from a [Recorder] created by [TestingRecorder].
type TestReader struct {
	t      testing.TB
	reader *sdkmetric.ManualReader
}

// TestingRecorder creates a [Recorder] backed by an in-memory manual reader.
// The meter provider is shut down with t.Cleanup.
//
// Example:
//
//	func TestSomething(t *testing.T) {
//	    t.Parallel()
//	    recorder, reader := metrics.TestingRecorder(t)
//	    r := router.MustNew(router.WithRecorder(recorder))
//	    // ...
//	    assert.Equal(t, int64(1), reader.Counter("merb_router_misses"))
//	}
func TestingRecorder(t testing.TB, opts ...Option) (*Recorder, *TestReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	recorder, err := New(append([]Option{WithMeterProvider(mp)}, opts...)...)
	if err != nil {
		t.Fatalf("TestingRecorder: failed to create recorder: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mp.Shutdown(ctx); err != nil {
			t.Logf("TestingRecorder: shutdown warning: %v", err)
		}
	})

	return recorder, &TestReader{t: t, reader: reader}
}

// Collect returns the current metric data.
func (tr *TestReader) Collect() metricdata.ResourceMetrics {
	tr.t.Helper()

	var rm metricdata.ResourceMetrics
	if err := tr.reader.Collect(context.Background(), &rm); err != nil {
		tr.t.Fatalf("collect metrics: %v", err)
	}
	return rm
}

// Counter returns the sum of the int64 counter name across data points whose
// attributes include every attrs pair.
func (tr *TestReader) Counter(name string, attrs ...attribute.KeyValue) int64 {
	tr.t.Helper()

	var total int64
	for _, sm := range tr.Collect().ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if m.Name != name || !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				if hasAttrs(dp.Attributes, attrs) {
					total += dp.Value
				}
			}
		}
	}
	return total
}

// HistogramCount returns the number of recorded values of the float64
// histogram name across data points whose attributes include attrs.
func (tr *TestReader) HistogramCount(name string, attrs ...attribute.KeyValue) uint64 {
	tr.t.Helper()

	var total uint64
	for _, sm := range tr.Collect().ScopeMetrics {
		for _, m := range sm.Metrics {
			h, ok := m.Data.(metricdata.Histogram[float64])
			if m.Name != name || !ok {
				continue
			}
			for _, dp := range h.DataPoints {
				if hasAttrs(dp.Attributes, attrs) {
					total += dp.Count
				}
			}
		}
	}
	return total
}

func hasAttrs(set attribute.Set, attrs []attribute.KeyValue) bool {
	for _, kv := range attrs {
		v, ok := set.Value(kv.Key)
		if !ok || v != kv.Value {
			return false
		}
	}
	return true
}
