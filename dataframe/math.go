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

package dataframe

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"
)

const (
	WinsorizeLower = 0.01
	WinsorizeUpper = 0.99
)

// SMA computes the simple moving average of all the columns in df for the specified
// lookback period. The length of the resulting dataframe equals that of the input with NaNs during the warm-up period.
// Invalid lookback periods result in a dataframe of all NaN.
// NOTE: lookback is in terms of date periods. if the dataframe is sampled monthly then SMA is monthly,
func (df *DataFrame) SMA(lookback int) *DataFrame {
	// check that lookback is a valid period
	if (lookback > df.Len()) || (lookback <= 0) {
		log.Error().Stack().Int("Lookback", lookback).Int("NRows", df.Len()).Msg("lookback must be: 0 < lookback <= NRows")
		nullDf := &DataFrame{
			Dates:    df.Dates,
			Vals:     make([][]float64, df.ColCount()),
			ColNames: df.ColNames,
		}
		for colIdx := range nullDf.Vals {
			nullDf.Vals[colIdx] = make([]float64, df.Len())
			for rowIdx := range nullDf.Vals[colIdx] {
				nullDf.Vals[colIdx][rowIdx] = math.NaN()
			}
		}
		return nullDf
	}

	filterBank := make([][]float64, df.ColCount())
	for idx := range filterBank {
		filterBank[idx] = make([]float64, lookback)
	}

	smaVals := make([][]float64, df.ColCount())
	for idx := range smaVals {
		smaVals[idx] = make([]float64, df.Len())
	}

	warmup := true

	for rowIdx := range df.Dates {
		// NOTE: row is 0 based, lookback is 1 based; hence the test applied below
		if rowIdx == (lookback - 1) {
			warmup = false
		}

		filterBankIdx := rowIdx % lookback

		for colIdx := range df.Vals {
			filterBank[colIdx][filterBankIdx] = df.Vals[colIdx][rowIdx]
			if warmup {
				smaVals[colIdx][rowIdx] = math.NaN()
			} else {
				smaVals[colIdx][rowIdx] = stat.Mean(filterBank[colIdx], nil)
			}
		}
	}

	smaDf := &DataFrame{
		Dates:    df.Dates,
		Vals:     smaVals,
		ColNames: df.ColNames,
	}

	return smaDf
}

// Winsorize clips every column to the values found at the lower and upper
// quantiles of that column and returns a new dataframe. NaN values are ignored
// when computing the quantiles and are left untouched.
func (df *DataFrame) Winsorize(lower, upper float64) *DataFrame {
	df = df.Copy()

	for colIdx, col := range df.Vals {
		sorted := make([]float64, 0, len(col))
		for _, val := range col {
			if !math.IsNaN(val) {
				sorted = append(sorted, val)
			}
		}

		if len(sorted) == 0 {
			continue
		}

		sort.Float64s(sorted)
		lo := stat.Quantile(lower, stat.LinInterp, sorted, nil)
		hi := stat.Quantile(upper, stat.LinInterp, sorted, nil)

		for rowIdx, val := range col {
			switch {
			case math.IsNaN(val):
			case val < lo:
				df.Vals[colIdx][rowIdx] = lo
			case val > hi:
				df.Vals[colIdx][rowIdx] = hi
			}
		}
	}

	return df
}

// ZScore standardizes each column to zero mean and unit population standard
// deviation. Columns with zero variance map to 0.
func (df *DataFrame) ZScore() *DataFrame {
	df = df.Copy()

	for colIdx, col := range df.Vals {
		mean, std := stat.PopMeanStdDev(col, nil)
		for rowIdx, val := range col {
			if std == 0 {
				df.Vals[colIdx][rowIdx] = 0
				continue
			}
			df.Vals[colIdx][rowIdx] = (val - mean) / std
		}
	}

	return df
}

// Denoise smooths each column with a simple moving average of the given window,
// removes the warm-up rows, clips outliers to the 1st and 99th percentile and
// finally standardizes each column.
func (df *DataFrame) Denoise(window int) (*DataFrame, error) {
	if window < 1 || window > df.Len() {
		return nil, fmt.Errorf("%w: denoise window %d with %d rows", ErrInsufficientData, window, df.Len())
	}

	smooth := df.SMA(window).Rows(window-1, df.Len())
	return smooth.Winsorize(WinsorizeLower, WinsorizeUpper).ZScore(), nil
}
