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

// StaleTraceErr is returned when a trace starts before the sequencer's
// watermark, i.e. inside or before a window that has already been closed.
// Such a trace is dropped; processing continues with the next one.
type StaleTraceErr struct {
	// Timestamp is the start tick of the rejected trace.
	Timestamp uint64
	// Watermark is the start tick of the next open window at the time of
	// rejection.
	Watermark uint64
}

func (e StaleTraceErr) Error() string {
	return fmt.Sprintf("trace with timestamp 0x%x starts before the current frame timestamp 0x%x", e.Timestamp, e.Watermark)
}

// TruncatedRecordErr is returned by the trace source when the underlying
// stream ends in the middle of a record, i.e. a record header was present but
// the declared content was not. Distinct from clean end-of-stream (io.EOF).
type TruncatedRecordErr struct {
	// Field names the record field the stream ended in.
	Field string
	// Want and Got are the expected and available byte counts for that field.
	Want int
	Got  int
}

func (e TruncatedRecordErr) Error() string {
	return fmt.Sprintf("trace record truncated reading %s: want %d bytes, got %d", e.Field, e.Want, e.Got)
}
