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
	"fmt"

	"github.com/goccy/go-json"
	"github.com/penny-vault/netfolio/common"
	"github.com/penny-vault/netfolio/dataframe"
	"github.com/penny-vault/netfolio/network"
)

const (
	STRATEGY  = "STRATEGY"
	BENCHMARK = "BENCHMARK"
)

// Performance holds the realized per-period log returns of a portfolio along with
// the optional inputs used by relative and structural metrics
type Performance struct {
	Returns       []float64
	Benchmark     []float64
	WeightHistory []Weights
	Graph         *network.Graph
}

// Report is the full set of performance metrics for a return series. Undefined
// metrics are NaN and serialize as null.
type Report struct {
	Periods           int                 `json:"periods"`
	MeanReturn        float64             `json:"meanReturn"`
	Volatility        float64             `json:"volatility"`
	SharpeRatio       float64             `json:"sharpeRatio"`
	DownsideDeviation float64             `json:"downsideDeviation"`
	SortinoRatio      float64             `json:"sortinoRatio"`
	MaxDrawDown       float64             `json:"maxDrawDown"`
	CalmarRatio       float64             `json:"calmarRatio"`
	Alpha             float64             `json:"alpha"`
	Beta              float64             `json:"beta"`
	InformationRatio  float64             `json:"informationRatio"`
	MarketRiskPremium float64             `json:"marketRiskPremium"`
	Turnover          float64             `json:"turnover"`
	Cumulative        []float64           `json:"cumulative"`
	DrawDowns         []float64           `json:"drawDowns"`
	Centrality        *network.Centrality `json:"centrality,omitempty"`
}

// Report computes every metric. An empty return series is an error; every other
// degenerate input results in NaN for the affected metrics.
func (perf *Performance) Report() (*Report, error) {
	if len(perf.Returns) == 0 {
		return nil, fmt.Errorf("%w: no portfolio returns", dataframe.ErrInsufficientData)
	}

	alpha, beta := perf.AlphaBeta()
	report := &Report{
		Periods:           len(perf.Returns),
		MeanReturn:        perf.MeanReturn(),
		Volatility:        perf.Volatility(),
		SharpeRatio:       perf.SharpeRatio(),
		DownsideDeviation: perf.DownsideDeviation(),
		SortinoRatio:      perf.SortinoRatio(),
		MaxDrawDown:       perf.MaxDrawDown(),
		CalmarRatio:       perf.CalmarRatio(),
		Alpha:             alpha,
		Beta:              beta,
		InformationRatio:  perf.InformationRatio(),
		MarketRiskPremium: perf.MarketRiskPremium(),
		Turnover:          perf.Turnover(),
		Cumulative:        perf.Cumulative(),
		DrawDowns:         perf.DrawDowns(),
		Centrality:        perf.Centrality(),
	}

	return report, nil
}

// Metrics returns the scalar metrics keyed by display name
func (r *Report) Metrics() map[string]float64 {
	return map[string]float64{
		"Mean Return":         r.MeanReturn,
		"Volatility":          r.Volatility,
		"Sharpe Ratio":        r.SharpeRatio,
		"Downside Deviation":  r.DownsideDeviation,
		"Sortino Ratio":       r.SortinoRatio,
		"Max Drawdown":        r.MaxDrawDown,
		"Calmar Ratio":        r.CalmarRatio,
		"Alpha":               r.Alpha,
		"Beta":                r.Beta,
		"Information Ratio":   r.InformationRatio,
		"Market Risk Premium": r.MarketRiskPremium,
		"Turnover":            r.Turnover,
	}
}

func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Periods           int                 `json:"periods"`
		MeanReturn        *float64            `json:"meanReturn"`
		Volatility        *float64            `json:"volatility"`
		SharpeRatio       *float64            `json:"sharpeRatio"`
		DownsideDeviation *float64            `json:"downsideDeviation"`
		SortinoRatio      *float64            `json:"sortinoRatio"`
		MaxDrawDown       *float64            `json:"maxDrawDown"`
		CalmarRatio       *float64            `json:"calmarRatio"`
		Alpha             *float64            `json:"alpha"`
		Beta              *float64            `json:"beta"`
		InformationRatio  *float64            `json:"informationRatio"`
		MarketRiskPremium *float64            `json:"marketRiskPremium"`
		Turnover          *float64            `json:"turnover"`
		Cumulative        []*float64          `json:"cumulative"`
		DrawDowns         []*float64          `json:"drawDowns"`
		Centrality        *network.Centrality `json:"centrality,omitempty"`
	}{
		Periods:           r.Periods,
		MeanReturn:        common.Nullable(r.MeanReturn),
		Volatility:        common.Nullable(r.Volatility),
		SharpeRatio:       common.Nullable(r.SharpeRatio),
		DownsideDeviation: common.Nullable(r.DownsideDeviation),
		SortinoRatio:      common.Nullable(r.SortinoRatio),
		MaxDrawDown:       common.Nullable(r.MaxDrawDown),
		CalmarRatio:       common.Nullable(r.CalmarRatio),
		Alpha:             common.Nullable(r.Alpha),
		Beta:              common.Nullable(r.Beta),
		InformationRatio:  common.Nullable(r.InformationRatio),
		MarketRiskPremium: common.Nullable(r.MarketRiskPremium),
		Turnover:          common.Nullable(r.Turnover),
		Cumulative:        common.NullableSlice(r.Cumulative),
		DrawDowns:         common.NullableSlice(r.DrawDowns),
		Centrality:        r.Centrality,
	})
}
