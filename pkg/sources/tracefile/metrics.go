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

package tracefile

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	metricspkg "github.com/fribdaq/framer/pkg/metrics"
)

// totalTracesRead is used to indicate the number of trace records decoded
var totalTracesRead = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "tracefile",
	Name:      "read_total",
	Help:      "Total number of trace records read",
}, []string{metricspkg.LabelSource})

// totalBytesRead is to indicate the number of bytes decoded
var totalBytesRead = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "tracefile",
	Name:      "read_bytes_total",
	Help:      "Total number of bytes read",
}, []string{metricspkg.LabelSource})
