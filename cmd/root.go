// Copyright 2021-2023
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"
	"os"
	"runtime/pprof"
	"runtime/trace"

	"github.com/penny-vault/netfolio/common"
	"github.com/rs/zerolog/log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Profile bool
var Trace bool

var profileFile *os.File
var traceFile *os.File

func init() {
	// Logging configuration
	viper.BindEnv("log.level", "NETFOLIO_LOG_LEVEL")
	rootCmd.PersistentFlags().String("log-level", "warning", "Logging level")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	viper.BindEnv("log.report_caller", "NETFOLIO_LOG_REPORT_CALLER")
	rootCmd.PersistentFlags().Bool("log-report-caller", false, "Log function name that called log statement")
	viper.BindPFlag("log.report_caller", rootCmd.PersistentFlags().Lookup("log-report-caller"))

	viper.BindEnv("log.output", "NETFOLIO_LOG_OUTPUT")
	rootCmd.PersistentFlags().String("log-output", "stderr", "Write logs to specified output one of: file path, `stdout`, or `stderr`")
	viper.BindPFlag("log.output", rootCmd.PersistentFlags().Lookup("log-output"))

	viper.BindEnv("log.pretty", "NETFOLIO_LOG_PRETTY")
	rootCmd.PersistentFlags().Bool("log-pretty", false, "Write human readable log lines instead of JSON")
	viper.BindPFlag("log.pretty", rootCmd.PersistentFlags().Lookup("log-pretty"))

	rootCmd.PersistentFlags().BoolVar(&Profile, "cpu-profile", false, "Run pprof and save in profile.out")
	rootCmd.PersistentFlags().BoolVar(&Trace, "trace", false, "Trace program execution and save in trace.out")
}

var rootCmd = &cobra.Command{
	Use:     "netfolio",
	Version: common.CurrentVersion.String(),
	Short:   "netfolio builds portfolios from asset networks",
	Long: `Build asset similarity networks from price histories, cluster them
hierarchically, allocate weights with network-aware strategies and
measure the performance of the resulting portfolio.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		common.SetupLogging()

		if Profile {
			f, err := os.Create("profile.out")
			if err != nil {
				return fmt.Errorf("failed to create profile output file: %w", err)
			}
			profileFile = f
			if err := pprof.StartCPUProfile(f); err != nil {
				return fmt.Errorf("failed to start cpu profile: %w", err)
			}
		}

		if Trace {
			f, err := os.Create("trace.out")
			if err != nil {
				return fmt.Errorf("failed to create trace output file: %w", err)
			}
			traceFile = f
			if err := trace.Start(f); err != nil {
				return fmt.Errorf("failed to start trace: %w", err)
			}
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		stopProfiling()
	},
}

func stopProfiling() {
	if profileFile != nil {
		pprof.StopCPUProfile()
		if err := profileFile.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close profile file")
		}
		profileFile = nil
	}

	if traceFile != nil {
		trace.Stop()
		if err := traceFile.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close trace file")
		}
		traceFile = nil
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		stopProfiling()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
