/*
Copyright 2025 The Framer Authors.

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

package forward

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	metricspkg "github.com/fribdaq/framer/pkg/metrics"
)

// forwardTracesRead is used to indicate the number of traces read
var forwardTracesRead = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "forwarder",
	Name:      "read_total",
	Help:      "Total number of traces read",
}, []string{metricspkg.LabelSource})

// forwardTracesDropped is used to indicate the number of stale traces dropped
var forwardTracesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "forwarder",
	Name:      "drop_total",
	Help:      "Total number of traces dropped",
}, []string{metricspkg.LabelSource})

// forwardTruncations is used to indicate truncated record detections
var forwardTruncations = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "forwarder",
	Name:      "truncation_total",
	Help:      "Total number of truncated input records detected",
}, []string{metricspkg.LabelSource})

// forwardFramesWritten is used to indicate the number of frames written
var forwardFramesWritten = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "forwarder",
	Name:      "write_total",
	Help:      "Total number of frames written",
}, []string{metricspkg.LabelSink})
