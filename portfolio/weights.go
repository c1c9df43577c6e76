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
	"errors"
	"fmt"
	"math"

	"github.com/penny-vault/netfolio/common"
)

// WeightTolerance is the allowed deviation of the weight sum from 1
const WeightTolerance = 1.0e-9

var (
	ErrInvalidWeights = errors.New("invalid weight vector")
)

// Weights maps each asset to its share of the portfolio
type Weights map[string]float64

// Sum returns the total of all weights
func (w Weights) Sum() float64 {
	total := 0.0
	// sum in key order so the result does not depend on map iteration
	for _, asset := range common.SortedKeys(w) {
		total += w[asset]
	}
	return total
}

// Validate checks that every weight is finite and non-negative and that the
// weights sum to 1
func (w Weights) Validate() error {
	if len(w) == 0 {
		return fmt.Errorf("%w: no assets", ErrInvalidWeights)
	}

	for asset, val := range w {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return fmt.Errorf("%w: %s has non-finite weight", ErrInvalidWeights, asset)
		}
		if val < 0 {
			return fmt.Errorf("%w: %s has negative weight %f", ErrInvalidWeights, asset, val)
		}
	}

	if sum := w.Sum(); math.Abs(sum-1) > WeightTolerance {
		return fmt.Errorf("%w: weights sum to %.12f", ErrInvalidWeights, sum)
	}

	return nil
}

// Normalize scales the weights to sum to 1 and returns a new vector. A vector
// with a zero sum is returned unchanged.
func (w Weights) Normalize() Weights {
	res := make(Weights, len(w))
	sum := w.Sum()
	for asset, val := range w {
		if sum == 0 {
			res[asset] = val
			continue
		}
		res[asset] = val / sum
	}
	return res
}

// Pairs returns the weights ordered from largest to smallest
func (w Weights) Pairs() common.PairList {
	return common.SortedPairs(w)
}

// Delta returns the sum of absolute weight changes from prev to w. Assets missing
// from either vector count as a weight of 0.
func (w Weights) Delta(prev Weights) float64 {
	total := 0.0
	for asset, val := range w {
		total += math.Abs(val - prev[asset])
	}
	for asset, val := range prev {
		if _, ok := w[asset]; !ok {
			total += math.Abs(val)
		}
	}
	return total
}
