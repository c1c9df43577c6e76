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
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/penny-vault/netfolio/analysis"
	"github.com/penny-vault/netfolio/data"
	"github.com/penny-vault/netfolio/dataframe"
	"github.com/penny-vault/netfolio/portfolio"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

var (
	pricesPaths   []string
	benchmarkPath string
	weightsPath   string
	outputFormat  string
	startDate     string
	endDate       string
	outputPath    string
)

func init() {
	analyzeCmd.Flags().StringSliceVarP(&pricesPaths, "prices", "p", []string{}, "CSV price table(s) to analyze, one analysis per file")
	analyzeCmd.Flags().StringVarP(&benchmarkPath, "benchmark", "b", "", "CSV price table with a single benchmark column")
	analyzeCmd.Flags().StringVarP(&weightsPath, "weights", "w", "", "CSV table of historical weight snapshots used for turnover")
	analyzeCmd.Flags().StringVarP(&outputFormat, "format", "f", FormatTable, "Output format: table or json")
	analyzeCmd.Flags().StringVar(&startDate, "start", "", "Ignore prices before this date (YYYY-MM-DD)")
	analyzeCmd.Flags().StringVar(&endDate, "end", "", "Ignore prices after this date (YYYY-MM-DD)")
	analyzeCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write output to this file instead of stdout; a .lz4 suffix compresses it")
	analyzeCmd.MarkFlagRequired("prices")

	viper.BindEnv("cache.local_size", "NETFOLIO_CACHE_LOCAL_SIZE")
	analyzeCmd.Flags().Int("cache-size", 32, "Number of parsed price tables kept in memory, 0 disables the cache")
	viper.BindPFlag("cache.local_size", analyzeCmd.Flags().Lookup("cache-size"))
	addAnalysisFlags(analyzeCmd)

	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze --prices prices.csv [flags]",
	Short: "Build an asset network and allocate a portfolio",
	Long: `Compute log returns from each price table, build the similarity network,
cluster the assets, allocate weights with the selected strategy and report the
performance of the resulting portfolio.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(outputFormat); err != nil {
			return err
		}
		return bindAnalysisFlags(cmd)
	},
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := analysis.ConfigFromViper()
		if err != nil {
			log.Fatal().Err(err).Msg("invalid configuration")
		}

		interval, err := data.ParseInterval(startDate, endDate)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid date range")
		}

		loader, err := newLoader(viper.GetInt("cache.local_size"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not setup price cache")
		}

		var benchmark *dataframe.DataFrame
		if benchmarkPath != "" {
			benchmark, err = loader(benchmarkPath)
			if err != nil {
				log.Fatal().Err(err).Msg("could not load benchmark")
			}
			benchmark = interval.Trim(benchmark)
		}

		var history []portfolio.Weights
		if weightsPath != "" {
			history, err = data.LoadWeightHistory(weightsPath)
			if err != nil {
				log.Fatal().Err(err).Msg("could not load weight history")
			}
		}

		reqs := make([]*analysis.Request, len(pricesPaths))
		g := &errgroup.Group{}
		g.SetLimit(cfg.Concurrency)
		for idx, path := range pricesPaths {
			idx, path := idx, path
			g.Go(func() error {
				prices, err := loader(path)
				if err != nil {
					return err
				}

				reqs[idx] = &analysis.Request{
					Name:          path,
					Prices:        interval.Trim(prices),
					Benchmark:     benchmark,
					WeightHistory: history,
				}
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			log.Fatal().Err(err).Msg("could not load prices")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		start := time.Now()
		results, err := analysis.AnalyzeMany(ctx, reqs, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("analysis failed")
		}
		log.Info().Int("NumAnalyses", len(results)).Dur("Elapsed", time.Since(start)).Msg("finished analyses")

		out, err := openOutput(outputPath)
		if err != nil {
			log.Fatal().Err(err).Str("Path", outputPath).Msg("could not open output")
		}

		switch outputFormat {
		case FormatJSON:
			err = writeJSON(out, results)
		default:
			writeResults(out, results)
		}

		if err == nil {
			err = out.Close()
		}
		if err != nil {
			log.Fatal().Err(err).Str("Path", outputPath).Msg("could not write output")
		}
	},
}

// newLoader returns a function reading price tables, backed by a cache unless
// size is 0
func newLoader(size int) (func(string) (*dataframe.DataFrame, error), error) {
	if size <= 0 {
		return data.LoadPrices, nil
	}

	cache, err := data.NewPriceCache(size)
	if err != nil {
		return nil, err
	}
	return cache.LoadPrices, nil
}
