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

	"github.com/rs/zerolog/log"
)

// LogReturns converts a table of prices into a table of log returns,
// ln(price[t] / price[t-1]). Rows that have a missing or non-positive price in
// any column are removed before returns are taken so every column remains
// aligned in time. The resulting dataframe has one row less than the number of
// valid price rows and is indexed by the date of the later observation.
func (df *DataFrame) LogReturns() (*DataFrame, error) {
	if df.ColCount() == 0 {
		return nil, fmt.Errorf("%w: price table has no columns", ErrInsufficientData)
	}

	clean := df.DropInvalid()
	if dropped := df.Len() - clean.Len(); dropped > 0 {
		log.Debug().Int("Dropped", dropped).Int("Remaining", clean.Len()).Msg("removed rows with missing or non-positive prices")
	}

	if clean.Len() < 2 {
		return nil, fmt.Errorf("%w: need at least 2 valid price rows, have %d", ErrInsufficientData, clean.Len())
	}

	n := clean.Len() - 1
	rets := &DataFrame{
		Dates:    append(clean.Dates[:0:0], clean.Dates[1:]...),
		ColNames: clean.ColNames,
		Vals:     make([][]float64, clean.ColCount()),
	}

	for colIdx, col := range clean.Vals {
		rets.Vals[colIdx] = make([]float64, n)
		for rowIdx := 1; rowIdx < len(col); rowIdx++ {
			rets.Vals[colIdx][rowIdx-1] = math.Log(col[rowIdx] / col[rowIdx-1])
		}
	}

	return rets, nil
}
