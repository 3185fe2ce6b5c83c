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
Package tracefile reads traces from the flat binary stream produced by the
acquisition device. Each record is little-endian with no padding: an 8-byte
timestamp, a 4-byte sample count n, then n 2-byte samples.
*/
package tracefile

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/fribdaq/framer/pkg/daq"
)

const (
	timestampLen   = 8
	sampleCountLen = 4
	sampleLen      = 2
)

// Reader decodes the trace stream one record at a time.
type Reader struct {
	name   string
	src    io.Reader
	br     *bufio.Reader
	logger *zap.SugaredLogger
}

// NewReader returns a Reader decoding traces from r.
func NewReader(name string, r io.Reader, opts ...Option) (*Reader, error) {
	options := DefaultOptions()
	for _, o := range opts {
		if err := o(options); err != nil {
			return nil, err
		}
	}
	return &Reader{
		name:   name,
		src:    r,
		br:     bufio.NewReader(r),
		logger: options.logger,
	}, nil
}

// GetName returns the name of the source.
func (tr *Reader) GetName() string {
	return tr.name
}

// Read decodes the next trace record.
//
// It returns io.EOF when the stream is cleanly exhausted, i.e. zero bytes are
// available where the next record's timestamp would begin. A stream that ends
// anywhere else inside a record returns a daq.TruncatedRecordErr so the
// caller can tell corruption from a clean end of stream. Any other underlying
// read error is returned wrapped and is fatal to the run.
func (tr *Reader) Read(ctx context.Context) (*daq.Trace, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var header [timestampLen + sampleCountLen]byte
	n, err := io.ReadFull(tr.br, header[:timestampLen])
	if err == io.EOF {
		// Nothing left where a new record would start.
		return nil, io.EOF
	}
	if err == io.ErrUnexpectedEOF {
		return nil, daq.TruncatedRecordErr{Field: "timestamp", Want: timestampLen, Got: n}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read trace timestamp: %w", err)
	}

	n, err = io.ReadFull(tr.br, header[timestampLen:])
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return nil, daq.TruncatedRecordErr{Field: "sample count", Want: sampleCountLen, Got: n}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read trace sample count: %w", err)
	}

	timestamp := binary.LittleEndian.Uint64(header[:timestampLen])
	sampleCount := binary.LittleEndian.Uint32(header[timestampLen:])

	raw := make([]byte, int(sampleCount)*sampleLen)
	n, err = io.ReadFull(tr.br, raw)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return nil, daq.TruncatedRecordErr{Field: "samples", Want: len(raw), Got: n}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read trace samples: %w", err)
	}

	samples := make([]uint16, sampleCount)
	for i := range samples {
		samples[i] = binary.LittleEndian.Uint16(raw[i*sampleLen:])
	}

	totalTracesRead.WithLabelValues(tr.name).Inc()
	totalBytesRead.WithLabelValues(tr.name).Add(float64(timestampLen + sampleCountLen + len(raw)))

	return &daq.Trace{Timestamp: timestamp, Samples: samples}, nil
}

// Close closes the underlying stream if it is closable.
func (tr *Reader) Close() error {
	if closer, ok := tr.src.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
