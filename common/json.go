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

package common

import "math"

// Nullable returns nil for NaN and infinite values so they serialize as JSON null
func Nullable(val float64) *float64 {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return nil
	}
	return &val
}

// NullableSlice applies Nullable to every element of vals
func NullableSlice(vals []float64) []*float64 {
	res := make([]*float64, len(vals))
	for idx, val := range vals {
		res[idx] = Nullable(val)
	}
	return res
}

// NullableMap applies Nullable to every value of m
func NullableMap(m map[string]float64) map[string]*float64 {
	if m == nil {
		return nil
	}
	res := make(map[string]*float64, len(m))
	for k, val := range m {
		res[k] = Nullable(val)
	}
	return res
}
