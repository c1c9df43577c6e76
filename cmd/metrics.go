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
	"github.com/penny-vault/netfolio/data"
	"github.com/penny-vault/netfolio/dataframe"
	"github.com/penny-vault/netfolio/portfolio"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	returnsPath          string
	benchmarkReturnsPath string
)

func init() {
	metricsCmd.Flags().StringVarP(&returnsPath, "returns", "r", "", "CSV file with a single column of per-period log returns")
	metricsCmd.Flags().StringVarP(&benchmarkReturnsPath, "benchmark-returns", "b", "", "CSV file with the benchmark's per-period log returns")
	metricsCmd.Flags().StringVarP(&weightsPath, "weights", "w", "", "CSV table of historical weight snapshots used for turnover")
	metricsCmd.Flags().StringVarP(&outputFormat, "format", "f", FormatTable, "Output format: table or json")
	metricsCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write output to this file instead of stdout; a .lz4 suffix compresses it")
	metricsCmd.MarkFlagRequired("returns")

	rootCmd.AddCommand(metricsCmd)
}

var metricsCmd = &cobra.Command{
	Use:   "metrics --returns returns.csv [flags]",
	Short: "Calculate performance metrics for a return series",
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return checkFormat(outputFormat)
	},
	Run: func(cmd *cobra.Command, args []string) {
		returns, err := data.LoadReturns(returnsPath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not load returns")
		}
		returns.ColNames = []string{portfolio.STRATEGY}

		perf := &portfolio.Performance{}

		if benchmarkReturnsPath != "" {
			benchmark, err := data.LoadReturns(benchmarkReturnsPath)
			if err != nil {
				log.Fatal().Err(err).Msg("could not load benchmark returns")
			}
			benchmark.ColNames = []string{portfolio.BENCHMARK}

			joined := dataframe.DataFrameMap{
				"benchmark": benchmark,
				"strategy":  returns,
			}.DataFrame()

			if joined.Len() != returns.Len() {
				log.Warn().Int("Periods", returns.Len()).Int("Aligned", joined.Len()).Msg("benchmark does not cover every period; using common periods only")
			}

			perf.Returns = joined.Vals[joined.ColIndex(portfolio.STRATEGY)]
			perf.Benchmark = joined.Vals[joined.ColIndex(portfolio.BENCHMARK)]
		} else {
			perf.Returns = returns.Vals[0]
		}

		if weightsPath != "" {
			perf.WeightHistory, err = data.LoadWeightHistory(weightsPath)
			if err != nil {
				log.Fatal().Err(err).Msg("could not load weight history")
			}
		}

		report, err := perf.Report()
		if err != nil {
			log.Fatal().Err(err).Msg("could not compute metrics")
		}

		out, err := openOutput(outputPath)
		if err != nil {
			log.Fatal().Err(err).Str("Path", outputPath).Msg("could not open output")
		}

		switch outputFormat {
		case FormatJSON:
			err = writeJSON(out, report)
		default:
			writeReport(out, report)
		}

		if err == nil {
			err = out.Close()
		}
		if err != nil {
			log.Fatal().Err(err).Str("Path", outputPath).Msg("could not write output")
		}
	},
}
