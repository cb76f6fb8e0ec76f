/*
Copyright 2022 The Numaproj Authors.

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
	"encoding/binary"
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/numaproj/windower/pkg/isb"
	"github.com/numaproj/windower/pkg/logging"
	"github.com/numaproj/windower/pkg/reduce"
	"github.com/numaproj/windower/pkg/store"
	badgerstore "github.com/numaproj/windower/pkg/store/badger"
	"github.com/numaproj/windower/pkg/store/memory"
	"github.com/numaproj/windower/pkg/watermark"
	"github.com/numaproj/windower/pkg/window"
	"github.com/numaproj/windower/pkg/window/segment"
	"github.com/numaproj/windower/pkg/window/strategy/hopping"
)

// NewSimulateCommand returns a command that drives a synthetic out-of-order
// stream through the reduce operator and logs every window it closes. It exists
// to observe the windowing, lateness and retention behavior of a configuration
// before wiring it into a real pipeline.
func NewSimulateCommand() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("WINDOWER")
	v.AutomaticEnv()

	command := &cobra.Command{
		Use:   "simulate",
		Short: "Run a synthetic stream through a window configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}

			var (
				size      = v.GetDuration("size")
				advance   = v.GetDuration("advance")
				grace     = v.GetDuration("grace")
				retention = v.GetDuration("retention")
				segments  = v.GetInt("segments")
				records   = v.GetInt("records")
				parts     = v.GetInt("partitions")
				disorder  = v.GetDuration("disorder")
				backend   = v.GetString("store")
				storePath = v.GetString("store-path")
				seed      = v.GetInt64("seed")
			)

			spec, err := window.NewTimeWindows(size, advance)
			if err != nil {
				return err
			}
			if spec, err = spec.WithRetention(retention); err != nil {
				return err
			}
			if grace >= 0 {
				if spec, err = spec.WithGrace(grace); err != nil {
					return err
				}
			}
			if spec, err = spec.WithSegments(segments); err != nil {
				return err
			}

			log := logging.NewLogger().Named("simulate")
			ctx := logging.WithLogger(cmd.Context(), log)

			planner, err := segment.NewPlanner(spec)
			if err != nil {
				return err
			}

			var st store.WindowStore
			switch backend {
			case "memory":
				st = memory.NewStore(planner)
			case "badger":
				st, err = badgerstore.NewStore(badgerstore.Config{Path: storePath, InMemory: storePath == ""}, planner)
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("unsupported store backend %q", backend)
			}
			defer func() { _ = st.Close() }()

			operator, err := reduce.NewOperator(ctx, hopping.NewWindower(spec), countReducer(), st, watermark.NewTracker(ctx))
			if err != nil {
				return err
			}

			log.Infow("Starting simulation",
				zap.Duration("size", size), zap.Duration("advance", advance),
				zap.Duration("grace", spec.GracePeriod()), zap.Duration("segmentInterval", spec.SegmentInterval()),
				zap.Int("records", records), zap.Int("partitions", parts))

			rng := rand.New(rand.NewSource(seed))
			base := time.Now().Add(-time.Duration(records) * time.Second)
			closedTotal := 0
			for i := 0; i < records; i++ {
				// event times trend forward with bounded random disorder, the shape
				// a real partition produces.
				eventTime := base.Add(time.Duration(i) * time.Second)
				if disorder > 0 {
					eventTime = eventTime.Add(-time.Duration(rng.Int63n(int64(disorder))))
				}
				r := &isb.Record{
					Keys:      []string{fmt.Sprintf("key-%d", i%3)},
					Payload:   []byte("1"),
					EventTime: eventTime,
				}
				closed, err := operator.Process(ctx, fmt.Sprintf("partition-%d", i%parts), r)
				if err != nil {
					log.Warnw("Record not processed", zap.Error(err))
					continue
				}
				for _, tw := range closed {
					log.Infow("Window closed",
						zap.Int64("start", tw.StartTime().UnixMilli()), zap.Int64("end", tw.EndTime().UnixMilli()))
				}
				closedTotal += len(closed)
			}

			log.Infow("Simulation finished", zap.Int("windowsClosed", closedTotal))
			return nil
		},
	}

	command.Flags().Duration("size", time.Minute, "Window size")
	command.Flags().Duration("advance", 10*time.Second, "Advance between window starts")
	command.Flags().Duration("grace", -1, "Explicit grace period, negative to derive it from retention")
	command.Flags().Duration("retention", 10*time.Minute, "Lower bound on window state lifetime")
	command.Flags().Int("segments", window.DefaultSegments, "Number of rolling store segments")
	command.Flags().Int("records", 600, "Number of synthetic records to produce")
	command.Flags().Int("partitions", 2, "Number of stream partitions")
	command.Flags().Duration("disorder", 30*time.Second, "Maximum out-of-orderness of event times")
	command.Flags().String("store", "memory", "Store backend, memory or badger")
	command.Flags().String("store-path", "", "BadgerDB path, empty for in-memory")
	command.Flags().Int64("seed", 42, "Random seed")
	return command
}

// countReducer counts records per (key, window), storing the count as a
// big-endian uint64.
func countReducer() reduce.Reducer {
	return reduce.ReducerFunc(func(_ context.Context, _ window.TimedWindow, _ string, acc []byte, _ *isb.Record) ([]byte, error) {
		var count uint64
		if len(acc) == 8 {
			count = binary.BigEndian.Uint64(acc)
		}
		return binary.BigEndian.AppendUint64(nil, count+1), nil
	})
}
