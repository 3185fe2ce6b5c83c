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

package daq

import "fmt"

// FrameKind identifies the payload type of a frame record.
type FrameKind uint32

const (
	// FrameKindTDC is reserved for timing (TDC) frames. No producer emits
	// it today.
	FrameKindTDC FrameKind = 1
	// FrameKindWaveform tags a waveform frame carrying digitizer samples.
	FrameKindWaveform FrameKind = 2
)

func (k FrameKind) String() string {
	switch k {
	case FrameKindTDC:
		return "TDC"
	case FrameKindWaveform:
		return "Waveform"
	default:
		return "Unknown"
	}
}

// Frame is one fixed-duration slot of the output timeline. The sequencer
// emits frames whose Start values form the contiguous arithmetic sequence
// 0, WindowLength, 2*WindowLength, ... with no gaps, each carrying the slice
// of at most one trace that falls inside its window.
type Frame struct {
	// Kind is always FrameKindWaveform for frames produced here.
	Kind FrameKind
	// Start is the coarse start tick of the window; always an exact
	// multiple of WindowLength.
	Start uint64
	// DataOffset is the fine-time position of the first sample within the
	// window; 0 <= DataOffset < WindowLength.
	DataOffset uint16
	// DataSize is the number of samples carried; DataOffset + DataSize
	// never exceeds WindowLength. Zero for an empty gap-fill frame.
	DataSize uint32
	// Samples holds exactly DataSize values, a contiguous slice of the
	// originating trace.
	Samples []uint16
}

// IsEmpty returns true if the frame carries no samples.
func (f *Frame) IsEmpty() bool {
	return f.DataSize == 0
}

// Validate checks the structural invariants of the frame.
func (f *Frame) Validate() error {
	if f.Kind != FrameKindWaveform {
		return fmt.Errorf("invalid frame kind %d, expected %d (%s)", f.Kind, FrameKindWaveform, FrameKindWaveform)
	}
	if f.Start%WindowLength != 0 {
		return fmt.Errorf("frame start 0x%x is not a multiple of the window length %d", f.Start, WindowLength)
	}
	if uint64(f.DataOffset) >= WindowLength {
		return fmt.Errorf("data offset %d is outside the window length %d", f.DataOffset, WindowLength)
	}
	if uint64(f.DataOffset)+uint64(f.DataSize) > WindowLength {
		return fmt.Errorf("data offset %d + size %d overflows the window length %d", f.DataOffset, f.DataSize, WindowLength)
	}
	if uint64(len(f.Samples)) != uint64(f.DataSize) {
		return fmt.Errorf("frame carries %d samples but declares size %d", len(f.Samples), f.DataSize)
	}
	return nil
}
