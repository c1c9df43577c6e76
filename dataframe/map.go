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
	"sort"
	"time"

	"github.com/rs/zerolog/log"
)

type DataFrameMap map[string]*DataFrame

// Drop calls dataframe.Drop on each dataframe in the map and returns a new map
func (dfMap DataFrameMap) Drop(val float64) DataFrameMap {
	newDfMap := make(DataFrameMap, len(dfMap))
	for k, v := range dfMap {
		newDfMap[k] = v.Drop(val)
	}
	return newDfMap
}

// Keys returns the map keys in sorted order
func (dfMap DataFrameMap) Keys() []string {
	keys := make([]string, 0, len(dfMap))
	for k := range dfMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DataFrame joins every dataframe in the map into a single dataframe. Only dates
// present in all dataframes are kept (inner join). Columns are appended in
// sorted key order.
func (dfMap DataFrameMap) DataFrame() *DataFrame {
	df := &DataFrame{
		Dates:    []time.Time{},
		ColNames: []string{},
		Vals:     [][]float64{},
	}

	if len(dfMap) == 0 {
		return df
	}

	keys := dfMap.Keys()

	// count how many dataframes contain each date
	counts := make(map[int64]int)
	for _, k := range keys {
		for _, dt := range dfMap[k].Dates {
			counts[dt.UnixNano()]++
		}
	}

	for _, dt := range dfMap[keys[0]].Dates {
		if counts[dt.UnixNano()] == len(dfMap) {
			df.Dates = append(df.Dates, dt)
		}
	}

	for _, k := range keys {
		src := dfMap[k]
		rowIdx := make(map[int64]int, src.Len())
		for idx, dt := range src.Dates {
			rowIdx[dt.UnixNano()] = idx
		}

		for colIdx, colName := range src.ColNames {
			col := make([]float64, len(df.Dates))
			for outIdx, dt := range df.Dates {
				col[outIdx] = src.Vals[colIdx][rowIdx[dt.UnixNano()]]
			}
			df.ColNames = append(df.ColNames, colName)
			df.Vals = append(df.Vals, col)
		}

		if len(df.Dates) < src.Len() {
			log.Debug().Str("Key", k).Int("Rows", src.Len()).Int("Aligned", len(df.Dates)).Msg("dropped unaligned dates while joining")
		}
	}

	return df
}
