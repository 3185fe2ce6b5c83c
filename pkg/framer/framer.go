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
Package framer implements the frame sequencer, the stateful fold that turns
the irregular trace stream into a gapless sequence of fixed-duration frames.

The sequencer carries one piece of state, the watermark: the coarse start
tick of the next window not yet closed. Feeding a trace closes every window
the trace touches (plus empty ones for any gap before it) and advances the
watermark past them, so frame start times always form the contiguous sequence
0, WindowLength, 2*WindowLength, ... A trace that starts behind the watermark
would land in an already-closed window and is rejected instead.
*/
package framer

import (
	"go.uber.org/zap"

	"github.com/fribdaq/framer/pkg/daq"
)

// Sequencer converts traces into frames. It is a single-caller component:
// one logical thread of control calls Feed for the lifetime of a run.
type Sequencer struct {
	// watermark is the start tick of the next not-yet-closed window.
	// Monotonically non-decreasing, never reset.
	watermark uint64
	logger    *zap.SugaredLogger
}

// NewSequencer returns a Sequencer with its watermark at the origin of the
// timeline.
func NewSequencer(opts ...Option) (*Sequencer, error) {
	options := DefaultOptions()
	for _, o := range opts {
		if err := o(options); err != nil {
			return nil, err
		}
	}
	return &Sequencer{
		watermark: 0,
		logger:    options.logger,
	}, nil
}

// Watermark returns the start tick of the next window to be closed.
func (s *Sequencer) Watermark() uint64 {
	return s.watermark
}

// Feed consumes one trace and returns the frames it closes, in strictly
// increasing frame-start order: empty gap-fill frames first, then the frame
// holding the head of the trace, then continuation frames for whatever
// overflows the window boundaries.
//
// A trace that starts before the watermark is rejected with a
// daq.StaleTraceErr and the watermark is left untouched; this is the sole
// defense against a second trace starting inside an already-occupied window.
// Returned frames reference subslices of trace.Samples; the caller hands
// over ownership of the trace when feeding it.
func (s *Sequencer) Feed(trace *daq.Trace) ([]*daq.Frame, error) {
	if trace.Timestamp < s.watermark {
		totalTracesDropped.Inc()
		return nil, daq.StaleTraceErr{Timestamp: trace.Timestamp, Watermark: s.watermark}
	}

	var frames []*daq.Frame

	// Close empty windows until the trace starts inside the current one.
	for trace.Timestamp >= s.watermark+daq.WindowLength {
		s.logger.Debugw("Emitting empty frame", zap.Uint64("frameStart", s.watermark))
		frames = append(frames, s.closeWindow(0, nil))
		totalFramesEmitted.WithLabelValues(reasonEmpty).Inc()
	}

	offset := trace.Timestamp - s.watermark

	if offset+uint64(len(trace.Samples)) <= daq.WindowLength {
		// The whole trace fits in the current window. A trace whose
		// samples end exactly on the boundary still lands here.
		frames = append(frames, s.closeWindow(uint16(offset), trace.Samples))
		totalFramesEmitted.WithLabelValues(reasonWhole).Inc()
		return frames, nil
	}

	// The trace overflows the current window. Close the head window with
	// what fits, then keep closing full windows until the trace runs out.
	cursor := daq.WindowLength - offset
	frames = append(frames, s.closeWindow(uint16(offset), trace.Samples[:cursor]))
	totalFramesEmitted.WithLabelValues(reasonHead).Inc()
	for cursor < uint64(len(trace.Samples)) {
		n := uint64(len(trace.Samples)) - cursor
		if n > daq.WindowLength {
			n = daq.WindowLength
		}
		frames = append(frames, s.closeWindow(0, trace.Samples[cursor:cursor+n]))
		totalFramesEmitted.WithLabelValues(reasonContinuation).Inc()
		cursor += n
	}
	return frames, nil
}

// closeWindow builds the frame for the current window and advances the
// watermark past it.
func (s *Sequencer) closeWindow(offset uint16, samples []uint16) *daq.Frame {
	f := &daq.Frame{
		Kind:       daq.FrameKindWaveform,
		Start:      s.watermark,
		DataOffset: offset,
		DataSize:   uint32(len(samples)),
		Samples:    samples,
	}
	s.watermark += daq.WindowLength
	return f
}
