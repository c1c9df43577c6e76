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
	"time"
)

// Frequency returns a data frame resampled to the requested frequency; note this
// is not an in-place function but creates a copy of the data. Period boundaries
// are taken from the dates present in the dataframe: the *Begin frequencies keep
// the first row of each period and the *End frequencies keep the last.
func (df *DataFrame) Frequency(frequency Frequency) (*DataFrame, error) {
	var samePeriod func(a, b time.Time) bool
	begin := false

	switch frequency {
	case Daily:
		return df.Copy(), nil
	case WeekBegin, WeekEnd:
		samePeriod = func(a, b time.Time) bool {
			aYear, aWeek := a.ISOWeek()
			bYear, bWeek := b.ISOWeek()
			return aYear == bYear && aWeek == bWeek
		}
		begin = frequency == WeekBegin
	case MonthBegin, MonthEnd:
		samePeriod = func(a, b time.Time) bool {
			return a.Year() == b.Year() && a.Month() == b.Month()
		}
		begin = frequency == MonthBegin
	case YearBegin, YearEnd:
		samePeriod = func(a, b time.Time) bool {
			return a.Year() == b.Year()
		}
		begin = frequency == YearBegin
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFrequency, frequency)
	}

	keep := make([]int, 0, df.Len())
	for idx, dt := range df.Dates {
		if begin {
			if idx == 0 || !samePeriod(df.Dates[idx-1], dt) {
				keep = append(keep, idx)
			}
		} else if idx == df.Len()-1 || !samePeriod(dt, df.Dates[idx+1]) {
			keep = append(keep, idx)
		}
	}

	df2 := &DataFrame{
		Dates:    make([]time.Time, len(keep)),
		ColNames: append([]string{}, df.ColNames...),
		Vals:     make([][]float64, len(df.Vals)),
	}

	for outIdx, rowIdx := range keep {
		df2.Dates[outIdx] = df.Dates[rowIdx]
	}

	for colIdx, col := range df.Vals {
		df2.Vals[colIdx] = make([]float64, len(keep))
		for outIdx, rowIdx := range keep {
			df2.Vals[colIdx][outIdx] = col[rowIdx]
		}
	}

	return df2, nil
}
