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

package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/penny-vault/netfolio/cluster"
	"github.com/penny-vault/netfolio/dataframe"
	"github.com/penny-vault/netfolio/network"
	"github.com/penny-vault/netfolio/portfolio"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Request is a single analysis of a price table
type Request struct {
	ID   string
	Name string

	// Prices has one column per asset; missing observations are NaN
	Prices *dataframe.DataFrame

	// Benchmark is an optional single column price series
	Benchmark *dataframe.DataFrame

	// WeightHistory is an optional series of weight snapshots used for turnover.
	// When empty the computed allocation is the only snapshot.
	WeightHistory []portfolio.Weights
}

// Result holds the output of every stage of an analysis
type Result struct {
	ID               string               `json:"id"`
	Name             string               `json:"name,omitempty"`
	Fingerprint      string               `json:"fingerprint"`
	Config           Config               `json:"config"`
	Assets           []string             `json:"assets"`
	Start            time.Time            `json:"start"`
	End              time.Time            `json:"end"`
	Returns          *dataframe.DataFrame `json:"-"`
	Similarity       *network.Matrix      `json:"similarity"`
	Distance         *network.Matrix      `json:"distance"`
	Graph            *network.Graph       `json:"graph"`
	MST              *network.Graph       `json:"mst"`
	Tree             *cluster.MergeTree   `json:"tree"`
	Clusters         *cluster.Assignment  `json:"clusters"`
	Weights          portfolio.Weights    `json:"weights"`
	PortfolioReturns []float64            `json:"portfolioReturns"`
	BenchmarkReturns []float64            `json:"benchmarkReturns,omitempty"`
	Report           *portfolio.Report    `json:"report"`
}

// Analyze runs the full pipeline on a request: log returns, similarity, graphs,
// clustering, allocation and performance evaluation. Weights are estimated on
// the in-sample window when a sample split is configured; the out-of-sample
// choice evaluates those weights on the remaining rows.
func Analyze(ctx context.Context, req *Request, cfg *Config) (*Result, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if req == nil || req.Prices == nil {
		return nil, fmt.Errorf("%w: no price table", ErrInvalidRequest)
	}

	result := &Result{
		ID:     req.ID,
		Name:   req.Name,
		Config: *cfg,
	}
	if result.ID == "" {
		result.ID = uuid.New().String()
	}

	subLog := log.With().Str("AnalysisID", result.ID).Str("Name", req.Name).Logger()
	start := time.Now()

	var err error
	if result.Fingerprint, err = Fingerprint(req.Prices); err != nil {
		return nil, err
	}

	// returns
	if err := checkpoint(ctx, &subLog, "returns"); err != nil {
		return nil, err
	}

	prices, err := joinBenchmark(req)
	if err != nil {
		return nil, err
	}

	if prices, err = prices.Frequency(cfg.PriceFrequency()); err != nil {
		return nil, err
	}

	rets, err := prices.LogReturns()
	if err != nil {
		return nil, fmt.Errorf("computing log returns: %w", err)
	}

	benchRets, assetRets := rets.Split(portfolio.BENCHMARK)
	estimation, evaluation, err := sampleWindows(assetRets, cfg)
	if err != nil {
		return nil, err
	}

	features := estimation
	if cfg.DenoiseWindow > 0 {
		if features, err = estimation.Denoise(cfg.DenoiseWindow); err != nil {
			return nil, fmt.Errorf("denoising returns: %w", err)
		}
	}

	result.Assets = estimation.ColNames
	subLog.Debug().Int("Assets", estimation.ColCount()).Int("EstimationRows", estimation.Len()).Int("EvaluationRows", evaluation.Len()).Msg("computed returns")

	// similarity
	if err := checkpoint(ctx, &subLog, "similarity"); err != nil {
		return nil, err
	}

	sim, err := network.NewSimilarity(cfg.SimilarityKind())
	if err != nil {
		return nil, err
	}

	if result.Similarity, err = sim.Compute(features); err != nil {
		return nil, fmt.Errorf("computing %s: %w", sim.Kind(), err)
	}
	result.Distance = result.Similarity.Distance()

	// graphs
	if err := checkpoint(ctx, &subLog, "graph"); err != nil {
		return nil, err
	}

	if result.Graph, err = network.ThresholdGraph(result.Similarity, cfg.Threshold); err != nil {
		return nil, err
	}
	result.MST = network.MinimumSpanningTree(result.Similarity)
	subLog.Debug().Int("Edges", result.Graph.EdgeCount()).Bool("Connected", result.Graph.IsConnected()).Msg("built threshold graph")

	// clustering
	if err := checkpoint(ctx, &subLog, "cluster"); err != nil {
		return nil, err
	}

	if result.Tree, err = cluster.Linkage(cfg.Linkage(), features, result.Distance); err != nil {
		return nil, err
	}

	if err := result.Tree.Validate(); err != nil {
		return nil, err
	}

	if result.Clusters, err = result.Tree.Cut(cfg.ClusterCount); err != nil {
		return nil, err
	}

	// allocation
	if err := checkpoint(ctx, &subLog, "allocate"); err != nil {
		return nil, err
	}

	universe := &portfolio.Universe{
		Assets:       estimation.ColNames,
		Returns:      estimation,
		Tree:         result.Tree,
		Clusters:     result.Clusters,
		ClusterCount: cfg.ClusterCount,
		MST:          result.MST,
		Graph:        result.Graph,
	}

	if result.Weights, err = portfolio.Allocate(cfg.Strategy, universe); err != nil {
		return nil, err
	}

	// performance
	if err := checkpoint(ctx, &subLog, "performance"); err != nil {
		return nil, err
	}

	result.Returns = evaluation
	result.Start = evaluation.Start()
	result.End = evaluation.End()
	result.PortfolioReturns = evaluation.WeightedSum(result.Weights)

	perf := &portfolio.Performance{
		Returns:       result.PortfolioReturns,
		WeightHistory: req.WeightHistory,
		Graph:         result.Graph,
	}
	if len(perf.WeightHistory) == 0 {
		perf.WeightHistory = []portfolio.Weights{result.Weights}
	}

	if benchRets.ColCount() == 1 {
		benchEval := benchRets.Trim(evaluation.Start(), evaluation.End())
		result.BenchmarkReturns = benchEval.Vals[0]
		perf.Benchmark = result.BenchmarkReturns
	}

	if result.Report, err = perf.Report(); err != nil {
		return nil, err
	}

	subLog.Debug().Object("Weights", result.Weights).Object("Report", result.Report).Msg("portfolio performance")
	subLog.Info().Str("Strategy", cfg.Strategy).Dur("Elapsed", time.Since(start)).Msg("analysis complete")
	return result, nil
}

// joinBenchmark aligns the benchmark with the price table on their common dates
// and adds it as the BENCHMARK column
func joinBenchmark(req *Request) (*dataframe.DataFrame, error) {
	if req.Prices.ColIndex(portfolio.BENCHMARK) != -1 {
		return nil, fmt.Errorf("%w: %s is a reserved column name", ErrInvalidRequest, portfolio.BENCHMARK)
	}

	if req.Benchmark == nil {
		return req.Prices, nil
	}

	if req.Benchmark.ColCount() != 1 {
		return nil, fmt.Errorf("%w: benchmark must have exactly one column, has %d", ErrInvalidRequest, req.Benchmark.ColCount())
	}

	bench := &dataframe.DataFrame{
		Dates:    req.Benchmark.Dates,
		ColNames: []string{portfolio.BENCHMARK},
		Vals:     req.Benchmark.Vals,
	}

	joined := dataframe.DataFrameMap{
		"benchmark": bench,
		"prices":    req.Prices,
	}.DataFrame()

	if joined.Len() < 2 {
		return nil, fmt.Errorf("%w: benchmark and prices share %d dates", dataframe.ErrDateIndexNotAligned, joined.Len())
	}

	return joined, nil
}

// sampleWindows returns the estimation and evaluation windows for the configured sample
func sampleWindows(rets *dataframe.DataFrame, cfg *Config) (estimation, evaluation *dataframe.DataFrame, err error) {
	if cfg.Sample == SampleTotal {
		return rets, rets, nil
	}

	in, out, err := rets.SplitRatio(cfg.SplitRatio)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Sample == SampleIn {
		return in, in, nil
	}

	if out.Len() == 0 {
		return nil, nil, fmt.Errorf("%w: split ratio %.2f leaves no out-of-sample rows", dataframe.ErrInsufficientData, cfg.SplitRatio)
	}

	return in, out, nil
}

func checkpoint(ctx context.Context, logger *zerolog.Logger, stage string) error {
	if err := ctx.Err(); err != nil {
		logger.Warn().Err(err).Str("Stage", stage).Msg("analysis canceled")
		return fmt.Errorf("analysis canceled before %s: %w", stage, err)
	}

	logger.Debug().Str("Stage", stage).Msg("entering stage")
	return nil
}
