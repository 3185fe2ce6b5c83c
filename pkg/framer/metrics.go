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

package framer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	metricspkg "github.com/fribdaq/framer/pkg/metrics"
)

const (
	reasonEmpty        = "empty"
	reasonWhole        = "whole"
	reasonHead         = "head"
	reasonContinuation = "continuation"
)

// totalFramesEmitted counts emitted frames by the path that produced them
var totalFramesEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "sequencer",
	Name:      "frames_emitted_total",
	Help:      "Total number of frames emitted",
}, []string{metricspkg.LabelReason})

// totalTracesDropped counts traces rejected for starting before the watermark
var totalTracesDropped = promauto.NewCounter(prometheus.CounterOpts{
	Subsystem: "sequencer",
	Name:      "dropped_traces_total",
	Help:      "Total number of traces dropped because they started before the watermark",
})
