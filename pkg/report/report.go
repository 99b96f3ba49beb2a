// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package report

import (
	"context"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/batchstat/pkg/processor"
)

// 📢 Options controls how the consumer renders the stream.
type Options struct {
	// ShowFiles prints a line per started/finished file instead of only
	// the progress bar.
	ShowFiles bool

	// ReceiveTimeout bounds each wait on the stream; on expiry the
	// consumer logs a heartbeat and keeps waiting. Zero means 500ms.
	ReceiveTimeout time.Duration

	// Plain disables the pterm progress bar (useful for non-TTY output
	// and tests).
	Plain bool
}

// 📊 Summary aggregates what the consumer saw in one run.
type Summary struct {
	Total      uint
	Submitted  uint
	Completed  int
	Failed     int
	FileErrors int
	Elapsed    time.Duration
}

// Consume drains the event stream until it closes, rendering progress as
// it goes, and returns the aggregated summary. It never returns early:
// end-of-stream is the only exit, matching the channel's closure
// contract.
func Consume(ctx context.Context, events <-chan processor.Event, opts Options) Summary {
	logger := zerolog.Ctx(ctx)

	timeout := opts.ReceiveTimeout
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}

	start := time.Now()
	var summary Summary
	var bar *pterm.ProgressbarPrinter

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(timeout)

		select {
		case ev, ok := <-events:
			if !ok {
				if bar != nil {
					bar.Stop()
				}
				summary.Elapsed = time.Since(start)
				return summary
			}
			bar = handle(logger, ev, &summary, bar, opts)

		case <-timer.C:
			// stream is quiet; stay responsive without giving up
			logger.Debug().
				Uint("submitted", summary.Submitted).
				Int("completed", summary.Completed).
				Msg("waiting for progress events")
		}
	}
}

func handle(logger *zerolog.Logger, ev processor.Event, summary *Summary, bar *pterm.ProgressbarPrinter, opts Options) *pterm.ProgressbarPrinter {
	switch ev := ev.(type) {
	case processor.FileStarted:
		logger.Debug().Str("path", ev.Path).Msg("file started")
		if opts.ShowFiles {
			pterm.Info.WithPrefix(pterm.Prefix{Text: "▶"}).Println(ev.Path)
		}

	case processor.FileCompleted:
		summary.Completed++
		summary.FileErrors += len(ev.Analysis.Errors)
		if bar != nil {
			bar.Increment()
		}
		if opts.ShowFiles {
			stats := ev.Analysis.Stats
			pterm.Success.WithPrefix(pterm.Prefix{Text: "✓"}).Println(fmt.Sprintf(
				"%s (words: %d, lines: %d, bytes: %d, time: %s, errs: %d)",
				ev.Analysis.Filename, stats.WordCount, stats.LineCount,
				stats.SizeBytes, ev.Analysis.ProcessingTime, len(ev.Analysis.Errors)))
		}

	case processor.FileFailed:
		summary.Failed++
		if bar != nil {
			bar.Increment()
		}
		logger.Debug().Str("path", ev.Path).Str("operation", ev.Err.Operation).Msg("file failed")
		if opts.ShowFiles {
			pterm.Error.WithPrefix(pterm.Prefix{Text: "✗"}).Println(fmt.Sprintf(
				"%s: %s - %s", ev.Path, ev.Err.Operation, ev.Err.Message))
		}

	case processor.OverallProgress:
		summary.Submitted = ev.Completed
		summary.Total = ev.Total
		if bar == nil && !opts.Plain && ev.Total > 0 {
			bar, _ = pterm.DefaultProgressbar.
				WithTotal(int(ev.Total)).
				WithTitle("processing").
				Start()
		}
	}
	return bar
}
