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

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/fribdaq/framer"
	"github.com/fribdaq/framer/pkg/forward"
	framerpkg "github.com/fribdaq/framer/pkg/framer"
	"github.com/fribdaq/framer/pkg/metrics"
	"github.com/fribdaq/framer/pkg/shared/logging"
	"github.com/fribdaq/framer/pkg/sinks/blackhole"
	"github.com/fribdaq/framer/pkg/sinks/framefile"
	"github.com/fribdaq/framer/pkg/sources/tracefile"
)

const (
	defaultInputPath  = "traces.dat"
	defaultOutputPath = "frames.evt"
)

func NewConvertCommand() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("framer")
	v.AutomaticEnv()

	command := &cobra.Command{
		Use:   "convert",
		Short: "Convert a trace stream into a frame stream",
		Long: `Reads the flat binary trace stream produced by the acquisition device and
rewrites it as a strictly regular stream of fixed-duration frame records:
equal-length time windows covering a contiguous timeline with no gaps and no
overlaps. Traces straddling a window boundary are split across frames; a
trace starting inside an already-closed window is dropped with a diagnostic.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewLogger().Named("convert")
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx = logging.WithLogger(ctx, logger)
			return runConvert(ctx,
				v.GetString("input"),
				v.GetString("output"),
				v.GetBool("blackhole"),
				v.GetString("metrics-addr"))
		},
	}
	command.Flags().StringP("input", "i", defaultInputPath, "Path of the input trace stream")
	command.Flags().StringP("output", "o", defaultOutputPath, "Path of the output frame stream")
	command.Flags().Bool("blackhole", false, "Discard frames instead of writing them (throughput measurement)")
	command.Flags().String("metrics-addr", "", "Address to serve Prometheus metrics on, e.g. :2470 (empty disables)")
	_ = v.BindPFlags(command.Flags())
	return command
}

func runConvert(ctx context.Context, inputPath, outputPath string, discard bool, metricsAddr string) error {
	logger := logging.FromContext(ctx)
	logger.Infow("Starting conversion", "version", framer.GetVersion(), "input", inputPath, "output", outputPath)
	metrics.BuildInfo.WithLabelValues(framer.GetVersion().Version, fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)).Set(1)

	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input %q: %w", inputPath, err)
	}
	reader, err := tracefile.NewReader(inputPath, in, tracefile.WithLogger(logger))
	if err != nil {
		return err
	}

	var writer forward.FrameWriter
	if discard {
		if writer, err = blackhole.NewBlackhole(ctx, "blackhole"); err != nil {
			return err
		}
	} else {
		out, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output %q: %w", outputPath, err)
		}
		if writer, err = framefile.NewWriter(outputPath, out, framefile.WithLogger(logger)); err != nil {
			return err
		}
	}

	sequencer, err := framerpkg.NewSequencer(framerpkg.WithLogger(logger))
	if err != nil {
		return err
	}
	forwarder, err := forward.NewStreamForwarder(reader, sequencer, writer, forward.WithLogger(logger))
	if err != nil {
		return err
	}

	if metricsAddr != "" {
		ms := metrics.NewMetricsServer(metricsAddr)
		shutdown, err := ms.Start(ctx)
		if err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		defer func() { _ = shutdown(context.Background()) }()
	}

	stopped := forwarder.Start()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-stopped
		return forwarder.Err()
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
			forwarder.Stop()
		case <-stopped:
		}
		return nil
	})
	err = g.Wait()

	logger.Infow("Conversion finished",
		"tracesRead", forwarder.TracesRead(),
		"tracesDropped", forwarder.TracesDropped(),
		"framesWritten", forwarder.FramesWritten())
	return err
}
