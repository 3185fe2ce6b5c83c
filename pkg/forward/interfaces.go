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
	"context"
	"io"

	"github.com/fribdaq/framer/pkg/daq"
)

// TraceReader is the source contract: a lazy, forward-only sequence of
// traces in non-decreasing timestamp order.
type TraceReader interface {
	io.Closer
	// GetName returns the name of the source.
	GetName() string
	// Read decodes and returns the next trace. It returns io.EOF on a
	// clean end of stream, a daq.TruncatedRecordErr when the stream ends
	// inside a record, and any other error for an I/O fault.
	Read(context.Context) (*daq.Trace, error)
}

// FrameWriter is the sink contract: accepts frames one at a time, in the
// order produced, each call a single complete ordered write.
type FrameWriter interface {
	io.Closer
	// GetName returns the name of the sink.
	GetName() string
	// Write appends one frame to the output stream. Any error is fatal
	// for the run.
	Write(context.Context, *daq.Frame) error
}

// StarterStopper starts/stops the forwarding.
type StarterStopper interface {
	Start() <-chan struct{}
	Stop()
	ForceStop()
}
