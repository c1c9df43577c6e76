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
	"fmt"
	"math"

	"github.com/penny-vault/netfolio/dataframe"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

type Kind string

// MaxConditionNumber is the largest condition number of a correlation matrix
// that is still inverted for partial correlation
const MaxConditionNumber = 1.0e12

const (
	KindCorrelation        Kind = "correlation"
	KindPartialCorrelation Kind = "partial-correlation"
	KindMutualInformation  Kind = "mutual-information"
)

// Similarity computes a pairwise similarity matrix from a table of returns
type Similarity interface {
	Kind() Kind
	Compute(returns *dataframe.DataFrame) (*Matrix, error)
}

// NewSimilarity returns the similarity measure for the requested kind
func NewSimilarity(kind Kind) (Similarity, error) {
	switch kind {
	case KindCorrelation:
		return Correlation{}, nil
	case KindPartialCorrelation:
		return PartialCorrelation{}, nil
	case KindMutualInformation:
		return MutualInformation{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSimilarity, kind)
	}
}

// Correlation is the Pearson correlation of each pair of return series
type Correlation struct{}

func (Correlation) Kind() Kind {
	return KindCorrelation
}

// Compute returns the Pearson correlation matrix of the returns. The diagonal is
// exactly 1 and every value is clamped to [-1, 1]. An asset whose returns have
// zero variance has an undefined (NaN) correlation with every other asset.
func (Correlation) Compute(returns *dataframe.DataFrame) (*Matrix, error) {
	if err := checkReturns(returns); err != nil {
		return nil, err
	}

	degenerate := degenerateAssets(returns)

	corr := newMatrix(returns.ColNames)
	n := returns.ColCount()
	for i := 0; i < n; i++ {
		corr.Vals[i][i] = 1
		for j := i + 1; j < n; j++ {
			val := math.NaN()
			if !degenerate[i] && !degenerate[j] {
				val = clamp(stat.Correlation(returns.Vals[i], returns.Vals[j], nil))
			}
			corr.Vals[i][j] = val
			corr.Vals[j][i] = val
		}
	}

	return corr, nil
}

// PartialCorrelation is the correlation of each pair of assets after removing the
// linear effect of every other asset. It is derived from the precision matrix P
// (inverse of the correlation matrix) as -P[i][j] / sqrt(P[i][i] * P[j][j]).
type PartialCorrelation struct{}

func (PartialCorrelation) Kind() Kind {
	return KindPartialCorrelation
}

func (PartialCorrelation) Compute(returns *dataframe.DataFrame) (*Matrix, error) {
	corr, err := Correlation{}.Compute(returns)
	if err != nil {
		return nil, err
	}

	degenerate := degenerateAssets(returns)
	valid := make([]int, 0, corr.Len())
	for idx := range corr.Assets {
		if !degenerate[idx] {
			valid = append(valid, idx)
		}
	}

	partial := newMatrix(corr.Assets)
	for i := range partial.Vals {
		for j := range partial.Vals[i] {
			if i == j {
				partial.Vals[i][j] = 1
			} else {
				partial.Vals[i][j] = math.NaN()
			}
		}
	}

	if len(valid) == 0 {
		return partial, nil
	}

	sym := mat.NewSymDense(len(valid), nil)
	for a, i := range valid {
		for b, j := range valid {
			sym.SetSym(a, b, corr.Vals[i][j])
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok || chol.Cond() > MaxConditionNumber {
		return nil, fmt.Errorf("%w: %d assets", ErrNotPositiveDefinite, len(valid))
	}

	precision := mat.NewSymDense(len(valid), nil)
	if err := chol.InverseTo(precision); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotPositiveDefinite, err.Error())
	}

	for a, i := range valid {
		for b, j := range valid {
			if a == b {
				continue
			}
			pij := precision.At(a, b)
			partial.Vals[i][j] = clamp(-pij / math.Sqrt(precision.At(a, a)*precision.At(b, b)))
		}
	}

	return partial, nil
}

// MutualInformation is a placeholder for an information theoretic similarity. It
// always fails rather than silently substituting another measure.
type MutualInformation struct{}

func (MutualInformation) Kind() Kind {
	return KindMutualInformation
}

func (MutualInformation) Compute(returns *dataframe.DataFrame) (*Matrix, error) {
	return nil, fmt.Errorf("%w: %s", ErrNotSupported, KindMutualInformation)
}

func checkReturns(returns *dataframe.DataFrame) error {
	if returns == nil || returns.ColCount() < 2 {
		cnt := 0
		if returns != nil {
			cnt = returns.ColCount()
		}
		return fmt.Errorf("%w: need at least 2 assets, have %d", dataframe.ErrInsufficientData, cnt)
	}

	if returns.Len() < 2 {
		return fmt.Errorf("%w: need at least 2 return observations, have %d", dataframe.ErrInsufficientData, returns.Len())
	}

	return nil
}

// degenerateAssets flags columns with zero variance (every observation equal)
func degenerateAssets(returns *dataframe.DataFrame) []bool {
	degenerate := make([]bool, returns.ColCount())
	for idx, col := range returns.Vals {
		if floats.Max(col) == floats.Min(col) {
			degenerate[idx] = true
			log.Warn().Str("Asset", returns.ColNames[idx]).Msg("asset has zero return variance; similarity is undefined")
		}
	}
	return degenerate
}

func clamp(val float64) float64 {
	if math.IsNaN(val) {
		return val
	}
	return math.Max(-1, math.Min(1, val))
}
