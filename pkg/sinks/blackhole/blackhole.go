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

package blackhole

import (
	"context"

	"go.uber.org/zap"

	"github.com/fribdaq/framer/pkg/daq"
	"github.com/fribdaq/framer/pkg/shared/logging"
)

// Blackhole is a frame sink to emulate /dev/null. Useful for measuring
// sequencing throughput without output I/O.
type Blackhole struct {
	name   string
	logger *zap.SugaredLogger
}

// NewBlackhole returns a new Blackhole sink.
func NewBlackhole(ctx context.Context, name string) (*Blackhole, error) {
	return &Blackhole{
		name:   name,
		logger: logging.FromContext(ctx),
	}, nil
}

// GetName returns the name.
func (b *Blackhole) GetName() string {
	return b.name
}

// Write discards the frame.
func (b *Blackhole) Write(_ context.Context, _ *daq.Frame) error {
	sinkWriteCount.WithLabelValues(b.name).Inc()
	return nil
}

func (b *Blackhole) Close() error {
	return nil
}
