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
Package forward does the Read (trace source) -> Sequence (framer) -> Write
(frame sink) loop. Each trace is fully processed, with every derived frame
handed to the sink in order, before the next trace is read, so frame start
times are globally non-decreasing for the whole run.
*/
package forward

import (
	"context"
	"errors"
	"io"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/fribdaq/framer/pkg/daq"
	"github.com/fribdaq/framer/pkg/framer"
	"github.com/fribdaq/framer/pkg/shared/logging"
)

// StreamForwarder drives one run of the pipeline.
type StreamForwarder struct {
	ctx context.Context
	// cancelFn cancels our new context, our cancellation is little more
	// complex and needs to be well orchestrated, hence we need something
	// more than a cancel().
	cancelFn  context.CancelFunc
	reader    TraceReader
	sequencer *framer.Sequencer
	writer    FrameWriter
	opts      options

	// counters are atomics so tests and the metrics surface can read
	// them while the loop goroutine runs.
	tracesRead    *atomic.Uint64
	tracesDropped *atomic.Uint64
	framesWritten *atomic.Uint64

	errMu   sync.Mutex
	loopErr error

	Shutdown
}

// NewStreamForwarder creates a forwarder wiring reader -> sequencer -> writer.
func NewStreamForwarder(reader TraceReader, sequencer *framer.Sequencer, writer FrameWriter, opts ...Option) (*StreamForwarder, error) {
	options := DefaultOptions()
	for _, o := range opts {
		if err := o(options); err != nil {
			return nil, err
		}
	}
	// creating a context here which is managed by the forwarder's lifecycle
	ctx, cancel := context.WithCancel(context.Background())

	var sf = StreamForwarder{
		ctx:           ctx,
		cancelFn:      cancel,
		reader:        reader,
		sequencer:     sequencer,
		writer:        writer,
		tracesRead:    atomic.NewUint64(0),
		tracesDropped: atomic.NewUint64(0),
		framesWritten: atomic.NewUint64(0),
		Shutdown: Shutdown{
			rwlock: new(sync.RWMutex),
		},
		opts: *options,
	}

	// Add logger from parent ctx to child context.
	sf.ctx = logging.WithLogger(ctx, options.logger)
	return &sf, nil
}

// Start starts reading the trace source and forwards frames to the sink.
// The returned channel closes once the run has fully stopped, whether by
// end-of-stream, a fatal error, or Stop. Call Err afterwards for the
// terminal error, if any.
func (sf *StreamForwarder) Start() <-chan struct{} {
	log := logging.FromContext(sf.ctx)
	stopped := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		log.Info("Starting forwarder...")
		defer wg.Done()
		for {
			select {
			case <-sf.ctx.Done():
				ok, err := sf.IsShuttingDown()
				if err != nil {
					// ignore the error for now.
					log.Errorw("Failed to check if it can shutdown", zap.Error(err))
				}
				if ok {
					log.Info("Shutting down...")
					return
				}
			default:
			}
			done, err := sf.forwardATrace(sf.ctx)
			if err != nil {
				sf.setErr(err)
				log.Errorw("Forwarder stopping on error", zap.Error(err))
				return
			}
			if done {
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		// the run is over either way, release the context
		sf.cancelFn()
		// Clean up resources for the trace reader and the frame writer.
		if err := sf.reader.Close(); err != nil {
			log.Errorw("Failed to close trace reader, shutdown anyways...", zap.Error(err))
		} else {
			log.Infow("Closed trace reader", zap.String("source", sf.reader.GetName()))
		}
		if err := sf.writer.Close(); err != nil {
			// a failed flush loses output; it is as fatal as a failed write
			log.Errorw("Failed to close frame writer", zap.Error(err))
			sf.setErr(err)
		} else {
			log.Infow("Closed frame writer", zap.String("sink", sf.writer.GetName()))
		}
		close(stopped)
	}()

	return stopped
}

// Err returns the terminal error of the run. Valid once the channel
// returned by Start has closed.
func (sf *StreamForwarder) Err() error {
	sf.errMu.Lock()
	defer sf.errMu.Unlock()
	return sf.loopErr
}

// TracesRead returns the number of traces consumed so far.
func (sf *StreamForwarder) TracesRead() uint64 {
	return sf.tracesRead.Load()
}

// TracesDropped returns the number of stale traces dropped so far.
func (sf *StreamForwarder) TracesDropped() uint64 {
	return sf.tracesDropped.Load()
}

// FramesWritten returns the number of frames handed to the sink so far.
func (sf *StreamForwarder) FramesWritten() uint64 {
	return sf.framesWritten.Load()
}

func (sf *StreamForwarder) setErr(err error) {
	sf.errMu.Lock()
	defer sf.errMu.Unlock()
	if sf.loopErr == nil {
		sf.loopErr = err
	}
}

// forwardATrace processes exactly one trace: read it, sequence it, write all
// derived frames in order. It returns done=true when the run should end
// normally, and an error only for conditions that are fatal to the run.
func (sf *StreamForwarder) forwardATrace(ctx context.Context) (bool, error) {
	log := logging.FromContext(ctx)

	trace, err := sf.reader.Read(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			log.Infow("Trace stream exhausted",
				zap.Uint64("tracesRead", sf.tracesRead.Load()),
				zap.Uint64("framesWritten", sf.framesWritten.Load()))
			return true, nil
		}
		var truncated daq.TruncatedRecordErr
		if errors.As(err, &truncated) {
			// The stream tail is corrupt. Everything already written
			// stays valid, but the run must not pretend this was a
			// clean end of stream.
			forwardTruncations.WithLabelValues(sf.reader.GetName()).Inc()
			return true, err
		}
		return false, err
	}
	sf.tracesRead.Inc()
	forwardTracesRead.WithLabelValues(sf.reader.GetName()).Inc()

	frames, err := sf.sequencer.Feed(trace)
	if err != nil {
		var stale daq.StaleTraceErr
		if errors.As(err, &stale) {
			// recoverable: drop the trace, keep the run going
			sf.tracesDropped.Inc()
			forwardTracesDropped.WithLabelValues(sf.reader.GetName()).Inc()
			log.Warnw("Dropping trace because it starts before the current frame timestamp",
				zap.Uint64("traceTimestamp", stale.Timestamp),
				zap.Uint64("watermark", stale.Watermark))
			return false, nil
		}
		return false, err
	}

	for _, f := range frames {
		if err := sf.writer.Write(ctx, f); err != nil {
			return false, err
		}
		sf.framesWritten.Inc()
		forwardFramesWritten.WithLabelValues(sf.writer.GetName()).Inc()
		log.Debugw("Forwarded frame",
			zap.Uint64("frameStart", f.Start),
			zap.Uint16("dataOffset", f.DataOffset),
			zap.Uint32("dataSize", f.DataSize))
	}
	return false, nil
}
