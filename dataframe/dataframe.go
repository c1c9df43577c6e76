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
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
)

// Get index of specified column; returns -1 if column doesn't exist
func (df *DataFrame) ColIndex(colName string) int {
	for idx, val := range df.ColNames {
		if colName == val {
			return idx
		}
	}

	return -1
}

// ColCount returns the number of columns in the dataframe
func (df *DataFrame) ColCount() int {
	return len(df.ColNames)
}

// Column returns the values stored in the named column. The returned slice is
// shared with the dataframe and must not be modified.
func (df *DataFrame) Column(colName string) ([]float64, error) {
	colIdx := df.ColIndex(colName)
	if colIdx == -1 {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, colName)
	}
	return df.Vals[colIdx], nil
}

// Copy creates a copy of the dataframe
func (df *DataFrame) Copy() *DataFrame {
	df2 := &DataFrame{
		ColNames: make([]string, len(df.ColNames)),
		Dates:    make([]time.Time, len(df.Dates)),
		Vals:     make([][]float64, len(df.Vals)),
	}

	copy(df2.ColNames, df.ColNames)
	copy(df2.Dates, df.Dates)

	for idx := range df2.Vals {
		df2.Vals[idx] = make([]float64, len(df.Vals[idx]))
		copy(df2.Vals[idx], df.Vals[idx])
	}

	return df2
}

// Drop removes rows that contain the value `val` in any column and returns a new dataframe
func (df *DataFrame) Drop(val float64) *DataFrame {
	isNA := math.IsNaN(val)
	return df.filterRows(func(rowVal float64) bool {
		return !(rowVal == val || (isNA && math.IsNaN(rowVal)))
	})
}

// DropInvalid removes every row where any column is missing (NaN), infinite or
// not strictly positive. Rows are dropped as a whole so that all columns stay
// aligned in time.
func (df *DataFrame) DropInvalid() *DataFrame {
	return df.filterRows(func(rowVal float64) bool {
		return !math.IsNaN(rowVal) && !math.IsInf(rowVal, 0) && rowVal > 0
	})
}

func (df *DataFrame) filterRows(keepVal func(float64) bool) *DataFrame {
	newVals := make([][]float64, len(df.Vals))
	newDates := make([]time.Time, 0, len(df.Dates))
	for colIdx := range newVals {
		newVals[colIdx] = make([]float64, 0, len(df.Dates))
	}

	for rowIdx, rowDate := range df.Dates {
		keep := true
		for _, col := range df.Vals {
			if !keepVal(col[rowIdx]) {
				keep = false
				break
			}
		}

		if keep {
			newDates = append(newDates, rowDate)
			for colIdx, col := range df.Vals {
				newVals[colIdx] = append(newVals[colIdx], col[rowIdx])
			}
		}
	}

	return &DataFrame{
		Dates:    newDates,
		ColNames: append([]string{}, df.ColNames...),
		Vals:     newVals,
	}
}

// End returns the last time in the DataFrame
func (df *DataFrame) End() time.Time {
	if len(df.Dates) == 0 {
		return time.Time{}
	}
	return df.Dates[len(df.Dates)-1]
}

// Insert a new column to the end of the dataframe
func (df *DataFrame) Insert(name string, col []float64) *DataFrame {
	if len(col) != len(df.Dates) {
		log.Panic().Int("ColLen", len(col)).Int("NumRows", len(df.Dates)).Str("Column", name).Msg("column length must equal number of rows")
	}
	df.ColNames = append(df.ColNames, name)
	df.Vals = append(df.Vals, col)
	return df
}

// Len returns the number of rows in the dataframe
func (df *DataFrame) Len() int {
	return len(df.Dates)
}

// Rows returns a new dataframe with rows in the half-open interval [begin, end)
func (df *DataFrame) Rows(begin, end int) *DataFrame {
	if begin < 0 {
		begin = 0
	}
	if end > df.Len() {
		end = df.Len()
	}
	if end < begin {
		end = begin
	}

	df2 := &DataFrame{
		Dates:    append([]time.Time{}, df.Dates[begin:end]...),
		ColNames: append([]string{}, df.ColNames...),
		Vals:     make([][]float64, len(df.Vals)),
	}
	for colIdx, col := range df.Vals {
		df2.Vals[colIdx] = append([]float64{}, col[begin:end]...)
	}
	return df2
}

// SplitRatio divides the dataframe by rows into an in-sample part holding the
// first int(n * ratio) rows and an out-of-sample part holding the remainder
func (df *DataFrame) SplitRatio(ratio float64) (*DataFrame, *DataFrame, error) {
	if math.IsNaN(ratio) || ratio <= 0 || ratio > 1 {
		return nil, nil, fmt.Errorf("%w: %f", ErrInvalidRatio, ratio)
	}

	splitIdx := int(float64(df.Len()) * ratio)
	return df.Rows(0, splitIdx), df.Rows(splitIdx, df.Len()), nil
}

// Split the dataframe into 2, with columns being in the first dataframe and
// all remaining columns in the second
func (df *DataFrame) Split(columns ...string) (*DataFrame, *DataFrame) {
	one := &DataFrame{
		Dates:    df.Dates,
		ColNames: []string{},
		Vals:     [][]float64{},
	}

	two := &DataFrame{
		Dates:    df.Dates,
		ColNames: []string{},
		Vals:     [][]float64{},
	}

	// convert requested columns to a map for easy lookup
	colMap := make(map[string]bool, len(columns))
	for _, col := range columns {
		colMap[col] = true
	}

	for idx, col := range df.ColNames {
		if _, ok := colMap[col]; ok {
			one.ColNames = append(one.ColNames, col)
			one.Vals = append(one.Vals, df.Vals[idx])
		} else {
			two.ColNames = append(two.ColNames, col)
			two.Vals = append(two.Vals, df.Vals[idx])
		}
	}

	return one, two
}

// Start returns the first date of the dataframe
func (df *DataFrame) Start() time.Time {
	if len(df.Dates) == 0 {
		return time.Time{}
	}
	return df.Dates[0]
}

// Table prints an ASCII formatted table to stdout
func (df *DataFrame) Table() string {
	if len(df.Dates) == 0 {
		return "<NO DATA>" // nothing to do as there is no data available in the dataframe
	}

	// construct table header
	tableCols := append([]string{"Date"}, df.ColNames...)

	// initialize table
	s := &strings.Builder{}
	table := tablewriter.NewWriter(s)
	table.SetHeader(tableCols)
	footer := make([]string, len(tableCols))
	footer[0] = "Num Rows"
	if len(footer) > 1 {
		footer[1] = fmt.Sprintf("%d", df.Len())
	}
	table.SetFooter(footer)
	table.SetBorder(false) // Set Border to false

	for rowIdx, date := range df.Dates {
		row := make([]string, 0, len(df.Vals)+1)
		row = append(row, date.Format("2006-01-02"))
		for _, col := range df.Vals {
			row = append(row, fmt.Sprintf("%.4f", col[rowIdx]))
		}
		table.Append(row)
	}

	table.Render()
	return s.String()
}

// Trim the dataframe to the specified date range (inclusive) and return a new dataframe
func (df *DataFrame) Trim(begin, end time.Time) *DataFrame {
	// special case 0: requested range is invalid
	if end.Before(begin) || df.Len() == 0 {
		return df.Rows(0, 0)
	}

	// Use binary search to find the index corresponding to the start and end times
	beginIdx := sort.Search(len(df.Dates), func(i int) bool {
		return !df.Dates[i].Before(begin)
	})

	endIdx := sort.Search(len(df.Dates), func(i int) bool {
		return df.Dates[i].After(end)
	})

	return df.Rows(beginIdx, endIdx)
}

// WeightedSum computes ∑ w[col] * df[col] for every row and returns the result. Columns
// that are not present in weights contribute nothing.
func (df *DataFrame) WeightedSum(weights map[string]float64) []float64 {
	res := make([]float64, df.Len())
	for colIdx, colName := range df.ColNames {
		w, ok := weights[colName]
		if !ok || w == 0 {
			continue
		}
		for rowIdx, val := range df.Vals[colIdx] {
			res[rowIdx] += w * val
		}
	}
	return res
}
