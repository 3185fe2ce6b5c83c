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
	"bytes"
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/fribdaq/framer/pkg/daq"
	"github.com/fribdaq/framer/pkg/framer"
	"github.com/fribdaq/framer/pkg/sinks/blackhole"
	"github.com/fribdaq/framer/pkg/sinks/framefile"
	"github.com/fribdaq/framer/pkg/sources/tracefile"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func encodeTrace(timestamp uint64, samples []uint16) []byte {
	buf := make([]byte, 12+2*len(samples))
	binary.LittleEndian.PutUint64(buf[0:], timestamp)
	binary.LittleEndian.PutUint32(buf[8:], uint32(len(samples)))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[12+2*i:], s)
	}
	return buf
}

// decodedRecord is the header of one container record in the output stream.
type decodedRecord struct {
	kind       uint32
	start      uint64
	dataSize   uint32
	dataOffset uint16
	samples    []uint16
}

func decodeRecords(t *testing.T, data []byte) []decodedRecord {
	t.Helper()
	var records []decodedRecord
	for len(data) > 0 {
		require.GreaterOrEqual(t, len(data), 30)
		size := binary.LittleEndian.Uint32(data[0:])
		require.LessOrEqual(t, int(size), len(data))
		r := decodedRecord{
			kind:       binary.LittleEndian.Uint32(data[4:]),
			start:      binary.LittleEndian.Uint64(data[8:]),
			dataSize:   binary.LittleEndian.Uint32(data[24:]),
			dataOffset: binary.LittleEndian.Uint16(data[28:]),
		}
		for i := 0; i < int(r.dataSize); i++ {
			r.samples = append(r.samples, binary.LittleEndian.Uint16(data[30+2*i:]))
		}
		records = append(records, r)
		data = data[size:]
	}
	return records
}

func newForwarder(t *testing.T, input []byte, out *bytes.Buffer) *StreamForwarder {
	t.Helper()
	nop := zap.NewNop().Sugar()
	reader, err := tracefile.NewReader("in", bytes.NewReader(input), tracefile.WithLogger(nop))
	require.NoError(t, err)
	writer, err := framefile.NewWriter("out", out, framefile.WithLogger(nop))
	require.NoError(t, err)
	sequencer, err := framer.NewSequencer(framer.WithLogger(nop))
	require.NoError(t, err)
	forwarder, err := NewStreamForwarder(reader, sequencer, writer, WithLogger(nop))
	require.NoError(t, err)
	return forwarder
}

func TestStreamForwarder_EndToEnd(t *testing.T) {
	var input bytes.Buffer
	input.Write(encodeTrace(0, []uint16{9}))
	input.Write(encodeTrace(5, []uint16{1})) // stale, must be dropped
	longTrace := make([]uint16, 600)
	for i := range longTrace {
		longTrace[i] = uint16(i)
	}
	input.Write(encodeTrace(1030, longTrace))

	var out bytes.Buffer
	forwarder := newForwarder(t, input.Bytes(), &out)

	<-forwarder.Start()
	require.NoError(t, forwarder.Err())

	assert.Equal(t, uint64(3), forwarder.TracesRead())
	assert.Equal(t, uint64(1), forwarder.TracesDropped())
	assert.Equal(t, uint64(4), forwarder.FramesWritten())

	records := decodeRecords(t, out.Bytes())
	require.Len(t, records, 4)
	for i, r := range records {
		assert.Equal(t, uint32(daq.FrameKindWaveform), r.kind)
		// the output timeline is contiguous with no gaps
		assert.Equal(t, uint64(i)*daq.WindowLength, r.start)
	}

	// first trace landed whole in the first window
	assert.Equal(t, []uint16{9}, records[0].samples)
	// the window between the two traces was filled with an empty frame
	assert.Equal(t, uint32(0), records[1].dataSize)
	// the long trace split across the last two windows, samples intact
	assert.Equal(t, uint16(6), records[2].dataOffset)
	assert.Equal(t, uint32(506), records[2].dataSize)
	assert.Equal(t, uint32(94), records[3].dataSize)
	assert.Equal(t, longTrace, append(records[2].samples, records[3].samples...))
}

func TestStreamForwarder_TruncatedTailEndsRunWithError(t *testing.T) {
	var input bytes.Buffer
	input.Write(encodeTrace(0, []uint16{1, 2}))
	// a record header with fewer sample bytes than declared
	partial := encodeTrace(512, []uint16{3, 4, 5})
	input.Write(partial[:len(partial)-3])

	var out bytes.Buffer
	forwarder := newForwarder(t, input.Bytes(), &out)

	<-forwarder.Start()
	var truncated daq.TruncatedRecordErr
	require.ErrorAs(t, forwarder.Err(), &truncated)

	// output written before the corruption point is intact
	records := decodeRecords(t, out.Bytes())
	require.Len(t, records, 1)
	assert.Equal(t, []uint16{1, 2}, records[0].samples)
}

// endlessSource produces a valid trace per read, forever.
type endlessSource struct {
	next uint64
}

func (e *endlessSource) GetName() string { return "endless" }

func (e *endlessSource) Read(_ context.Context) (*daq.Trace, error) {
	trace := &daq.Trace{Timestamp: e.next, Samples: []uint16{1}}
	e.next += 2 * daq.WindowLength
	return trace, nil
}

func (e *endlessSource) Close() error { return nil }

func TestStreamForwarder_StopEndsUnboundedRun(t *testing.T) {
	nop := zap.NewNop().Sugar()
	sequencer, err := framer.NewSequencer(framer.WithLogger(nop))
	require.NoError(t, err)
	sink, err := blackhole.NewBlackhole(context.Background(), "blackhole")
	require.NoError(t, err)
	forwarder, err := NewStreamForwarder(&endlessSource{}, sequencer, sink, WithLogger(nop))
	require.NoError(t, err)

	stopped := forwarder.Start()
	// let it chew on the stream for a moment
	time.Sleep(10 * time.Millisecond)
	forwarder.Stop()

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("forwarder did not stop")
	}
	assert.NoError(t, forwarder.Err())
	assert.Greater(t, forwarder.FramesWritten(), uint64(0))
}
