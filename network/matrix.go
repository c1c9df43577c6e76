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

package network

import (
	"math"

	"github.com/goccy/go-json"
	"github.com/penny-vault/netfolio/common"
)

// Matrix is a square, symmetric matrix indexed by asset. Undefined entries are
// stored as math.NaN().
type Matrix struct {
	Assets []string
	Vals   [][]float64
}

func newMatrix(assets []string) *Matrix {
	m := &Matrix{
		Assets: append([]string{}, assets...),
		Vals:   make([][]float64, len(assets)),
	}
	for idx := range m.Vals {
		m.Vals[idx] = make([]float64, len(assets))
	}
	return m
}

// Len returns the number of assets in the matrix
func (m *Matrix) Len() int {
	return len(m.Assets)
}

// At returns the value at row i and column j
func (m *Matrix) At(i, j int) float64 {
	return m.Vals[i][j]
}

// Get returns the value for the pair of assets a and b. ok is false if either
// asset is not present.
func (m *Matrix) Get(a, b string) (val float64, ok bool) {
	i := m.index(a)
	j := m.index(b)
	if i == -1 || j == -1 {
		return math.NaN(), false
	}
	return m.Vals[i][j], true
}

func (m *Matrix) index(asset string) int {
	for idx, name := range m.Assets {
		if name == asset {
			return idx
		}
	}
	return -1
}

// Distance converts a similarity matrix into a distance matrix using 1 - |s|.
// Undefined similarities map to the maximum distance of 1 and the diagonal is 0.
func (m *Matrix) Distance() *Matrix {
	dist := newMatrix(m.Assets)
	for i := range m.Vals {
		for j := range m.Vals[i] {
			switch {
			case i == j:
				dist.Vals[i][j] = 0
			case math.IsNaN(m.Vals[i][j]):
				dist.Vals[i][j] = 1
			default:
				dist.Vals[i][j] = 1 - math.Abs(m.Vals[i][j])
			}
		}
	}
	return dist
}

// MarshalJSON writes the matrix with NaN entries encoded as null
func (m *Matrix) MarshalJSON() ([]byte, error) {
	vals := make([][]*float64, len(m.Vals))
	for i, row := range m.Vals {
		vals[i] = common.NullableSlice(row)
	}

	return json.Marshal(struct {
		Assets []string     `json:"assets"`
		Values [][]*float64 `json:"values"`
	}{
		Assets: m.Assets,
		Values: vals,
	})
}
