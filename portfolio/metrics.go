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

package portfolio

import (
	"math"

	"github.com/penny-vault/netfolio/network"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Metric Functions

// MeanReturn is the arithmetic mean of the per-period log returns
func (perf *Performance) MeanReturn() float64 {
	if len(perf.Returns) == 0 {
		return math.NaN()
	}
	return stat.Mean(perf.Returns, nil)
}

// Volatility is the sample standard deviation of the per-period returns
func (perf *Performance) Volatility() float64 {
	if len(perf.Returns) < 2 {
		return math.NaN()
	}
	return stat.StdDev(perf.Returns, nil)
}

// SharpeRatio is the mean return per unit of volatility. Returns are already
// excess of the risk-free rate, which is taken as 0.
//
// Sharpe = mean(Rp) / std(Rp)
func (perf *Performance) SharpeRatio() float64 {
	vol := perf.Volatility()
	if vol == 0 || math.IsNaN(vol) {
		log.Warn().Msg("portfolio volatility is 0; sharpe ratio is undefined")
		return math.NaN()
	}
	return perf.MeanReturn() / vol
}

// DownsideDeviation is the root-mean-square of min(r, 0) over every period.
// Periods with a positive return count as 0 toward the average.
func (perf *Performance) DownsideDeviation() float64 {
	n := len(perf.Returns)
	if n == 0 {
		return math.NaN()
	}

	downside := 0.0
	for _, r := range perf.Returns {
		if r < 0 {
			downside += r * r // much faster than math.Pow
		}
	}

	return math.Sqrt(downside / float64(n))
}

// SortinoRatio a variation of the Sharpe ratio that differentiates harmful
// volatility from total overall volatility by dividing the mean return by the
// standard deviation of the negative returns only. Undefined when fewer than
// two negative returns exist or when they are all identical.
func (perf *Performance) SortinoRatio() float64 {
	negative := make([]float64, 0, len(perf.Returns))
	for _, r := range perf.Returns {
		if r < 0 {
			negative = append(negative, r)
		}
	}

	if len(negative) < 2 {
		return math.NaN()
	}

	std := stat.StdDev(negative, nil)
	if std == 0 {
		return math.NaN()
	}

	return perf.MeanReturn() / std
}

// Cumulative is the running sum of the log returns
func (perf *Performance) Cumulative() []float64 {
	cum := make([]float64, len(perf.Returns))
	floats.CumSum(cum, perf.Returns)
	return cum
}

// DrawDowns computes the distance of the cumulative return curve below its
// running maximum for every period. Values are 0 at a new peak and negative
// otherwise.
func (perf *Performance) DrawDowns() []float64 {
	cum := perf.Cumulative()
	dd := make([]float64, len(cum))

	peak := math.Inf(-1)
	for idx, val := range cum {
		peak = math.Max(peak, val)
		dd[idx] = val - peak
	}

	return dd
}

// MaxDrawDown is the most negative draw down of the cumulative return curve
func (perf *Performance) MaxDrawDown() float64 {
	if len(perf.Returns) == 0 {
		return math.NaN()
	}
	return floats.Min(perf.DrawDowns())
}

// CalmarRatio is a gauge of the risk adjusted performance of a portfolio. It is
// the mean return divided by the magnitude of the maximum draw down.
func (perf *Performance) CalmarRatio() float64 {
	maxDD := perf.MaxDrawDown()
	if maxDD == 0 || math.IsNaN(maxDD) {
		return math.NaN()
	}
	return perf.MeanReturn() / math.Abs(maxDD)
}

// AlphaBeta regresses the portfolio returns on the benchmark returns with
// ordinary least squares. Beta is the slope and alpha the intercept. Both are
// NaN unless a benchmark of equal length with non-zero variance is present.
func (perf *Performance) AlphaBeta() (alpha, beta float64) {
	if !perf.hasBenchmark() {
		return math.NaN(), math.NaN()
	}

	if stat.Variance(perf.Benchmark, nil) == 0 {
		return math.NaN(), math.NaN()
	}

	alpha, beta = stat.LinearRegression(perf.Benchmark, perf.Returns, nil, false)
	return alpha, beta
}

// Alpha is the intercept of the regression of portfolio returns on the benchmark
func (perf *Performance) Alpha() float64 {
	alpha, _ := perf.AlphaBeta()
	return alpha
}

// Beta is the slope of the regression of portfolio returns on the benchmark
func (perf *Performance) Beta() float64 {
	_, beta := perf.AlphaBeta()
	return beta
}

// InformationRatio is a measurement of portfolio returns beyond the returns of the benchmark,
// compared to the volatility of those returns.
func (perf *Performance) InformationRatio() float64 {
	if !perf.hasBenchmark() {
		return math.NaN()
	}

	active := make([]float64, len(perf.Returns))
	floats.SubTo(active, perf.Returns, perf.Benchmark)

	trackingError := stat.StdDev(active, nil)
	if trackingError == 0 || math.IsNaN(trackingError) {
		return math.NaN()
	}

	return stat.Mean(active, nil) / trackingError
}

// MarketRiskPremium is the difference between the mean portfolio return and the
// mean benchmark return
func (perf *Performance) MarketRiskPremium() float64 {
	if !perf.hasBenchmark() {
		return math.NaN()
	}
	return stat.Mean(perf.Returns, nil) - stat.Mean(perf.Benchmark, nil)
}

// Turnover is the mean over rebalancing periods of the sum of absolute weight
// changes. At least two weight snapshots are required.
func (perf *Performance) Turnover() float64 {
	if len(perf.WeightHistory) < 2 {
		return math.NaN()
	}

	changes := make([]float64, len(perf.WeightHistory)-1)
	for idx := 1; idx < len(perf.WeightHistory); idx++ {
		changes[idx-1] = perf.WeightHistory[idx].Delta(perf.WeightHistory[idx-1])
	}

	return stat.Mean(changes, nil)
}

// Centrality computes node centrality of the attached graph; nil without a graph
func (perf *Performance) Centrality() *network.Centrality {
	if perf.Graph == nil {
		return nil
	}
	return network.Centralities(perf.Graph)
}

func (perf *Performance) hasBenchmark() bool {
	return len(perf.Benchmark) > 1 && len(perf.Benchmark) == len(perf.Returns)
}
