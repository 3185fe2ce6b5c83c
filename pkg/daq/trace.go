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

/*
Package daq defines the data model shared between the trace source, the frame
sequencer and the frame sinks: the Trace read from the digitizer stream, the
Frame written to the output container stream, and the typed errors the
pipeline surfaces.
*/
package daq

// WindowLength is the fixed duration of every frame window, in coarse clock
// ticks. It is the quantization unit of the output timeline.
const WindowLength = 512

// Trace is one irregularly-timed burst of samples captured by the
// acquisition device.
type Trace struct {
	// Timestamp is the coarse start tick of the trace, in the same unit
	// as frame boundaries.
	Timestamp uint64
	// Samples are the raw digitizer values in acquisition order. May be
	// empty for a trigger that captured no samples.
	Samples []uint16
}
