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
Package framefile appends frames to the persisted container stream. One
container record per frame, little-endian throughout:

	size        uint32  total record length in bytes, size field included
	type        uint32  frame kind tag (2 = waveform, 1 reserved for TDC)
	timestamp   uint64  frame start tick
	source_id   uint32  always 0 for this producer
	barrier     uint32  always 0 for this producer
	data_size   uint32  number of samples in the body
	data_offset uint16  fine-time offset of the first sample in the window
	samples     data_size x uint16

An empty frame still produces a full record with data_size = 0.
*/
package framefile

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/fribdaq/framer/pkg/daq"
)

// recordOverhead is the record length in bytes before any samples.
const recordOverhead = 4 + 4 + 8 + 4 + 4 + 4 + 2

// Writer serializes frames into container records, in call order.
type Writer struct {
	name   string
	dst    io.Writer
	bw     *bufio.Writer
	logger *zap.SugaredLogger
}

// NewWriter returns a Writer appending container records to w.
func NewWriter(name string, w io.Writer, opts ...Option) (*Writer, error) {
	options := DefaultOptions()
	for _, o := range opts {
		if err := o(options); err != nil {
			return nil, err
		}
	}
	return &Writer{
		name:   name,
		dst:    w,
		bw:     bufio.NewWriter(w),
		logger: options.logger,
	}, nil
}

// GetName returns the name of the sink.
func (fw *Writer) GetName() string {
	return fw.name
}

// Write appends one frame as a single complete record. A write error is
// fatal for the run; no partial-record recovery is attempted.
func (fw *Writer) Write(ctx context.Context, f *daq.Frame) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := f.Validate(); err != nil {
		return fmt.Errorf("refusing to write invalid frame: %w", err)
	}

	record := make([]byte, recordOverhead+len(f.Samples)*2)
	binary.LittleEndian.PutUint32(record[0:], uint32(len(record)))
	binary.LittleEndian.PutUint32(record[4:], uint32(f.Kind))
	binary.LittleEndian.PutUint64(record[8:], f.Start)
	binary.LittleEndian.PutUint32(record[16:], 0) // source id, unused
	binary.LittleEndian.PutUint32(record[20:], 0) // barrier type, unused
	binary.LittleEndian.PutUint32(record[24:], f.DataSize)
	binary.LittleEndian.PutUint16(record[28:], f.DataOffset)
	for i, s := range f.Samples {
		binary.LittleEndian.PutUint16(record[recordOverhead+i*2:], s)
	}

	if _, err := fw.bw.Write(record); err != nil {
		return fmt.Errorf("failed to write frame record: %w", err)
	}

	totalFramesWritten.WithLabelValues(fw.name).Inc()
	totalBytesWritten.WithLabelValues(fw.name).Add(float64(len(record)))
	return nil
}

// Close flushes buffered records and closes the underlying stream if it is
// closable.
func (fw *Writer) Close() error {
	err := fw.bw.Flush()
	if closer, ok := fw.dst.(io.Closer); ok {
		err = multierr.Append(err, closer.Close())
	}
	return err
}
