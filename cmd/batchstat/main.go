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

package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/walteh/batchstat/cmd/batchstat/commands"
)

func main() {
	cobra.OnInitialize(setupLogging)
	ctx := log.Logger.WithContext(context.Background())

	rootCmd := &cobra.Command{
		Use:   "batchstat",
		Short: "Compute per-file statistics for a batch of files on a worker pool",
		Long: `batchstat walks the given files and directories, analyzes each file
(word count, line count, character frequencies, size) on a fixed pool of
workers, streams progress as it goes, and persists overall progress to a
JSON file so interrupted runs leave a record behind.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	ro := addRootFlags(rootCmd)

	rootCmd.AddCommand(
		commands.NewRunCmd(ro),
		commands.NewStatusCmd(ro),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
