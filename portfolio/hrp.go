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
	"math"

	"github.com/penny-vault/netfolio/cluster"
	"github.com/penny-vault/netfolio/dataframe"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	HRPName = "hrp"

	// VarianceFloor keeps inverse-variance weights finite for flat return series
	VarianceFloor = 1.0e-10
)

// HRP is hierarchical risk parity. The budget at each node of the merge tree is
// split between its two children in inverse proportion to the variance of each
// child cluster, where the cluster variance is w'Σw for the inverse-variance
// weights w of the cluster members. An asset's weight is the product of the
// splits on the path from the root to its leaf.
type HRP struct{}

func NewHRP() Allocator {
	return &HRP{}
}

func (h *HRP) Name() string {
	return HRPName
}

func (h *HRP) Allocate(u *Universe) (Weights, error) {
	if u == nil || len(u.Assets) == 0 {
		return nil, ErrEmptyUniverse
	}

	if len(u.Assets) == 1 {
		return Weights{u.Assets[0]: 1}, nil
	}

	if u.Tree == nil || u.Returns == nil {
		return nil, fmt.Errorf("%w: hrp requires a merge tree and returns", ErrMissingInput)
	}

	cov, colIdx, err := covariance(u.Returns, u.Tree.Assets)
	if err != nil {
		return nil, err
	}

	alloc := &hrpAllocation{
		tree:    u.Tree,
		cov:     cov,
		colIdx:  colIdx,
		weights: make(Weights, u.Tree.Len()),
	}
	alloc.bisect(u.Tree.Root(), 1)

	return alloc.weights, nil
}

type hrpAllocation struct {
	tree    *cluster.MergeTree
	cov     *mat.SymDense
	colIdx  []int
	weights Weights
}

func (a *hrpAllocation) bisect(node int, budget float64) {
	if a.tree.IsLeaf(node) {
		a.weights[a.tree.Assets[node]] = budget
		return
	}

	left, right, ok := a.tree.Children(node)
	if !ok {
		log.Panic().Int("Node", node).Msg("merge tree node has no children")
	}

	varLeft := a.clusterVariance(a.tree.Leaves(left))
	varRight := a.clusterVariance(a.tree.Leaves(right))

	alpha := 0.5
	if total := varLeft + varRight; total > 0 {
		alpha = 1 - varLeft/total
	}

	a.bisect(left, budget*alpha)
	a.bisect(right, budget*(1-alpha))
}

// clusterVariance computes w'Σw using inverse-variance weights of the members
func (a *hrpAllocation) clusterVariance(leaves []int) float64 {
	n := len(leaves)
	w := mat.NewVecDense(n, nil)
	sub := mat.NewSymDense(n, nil)

	total := 0.0
	for i, leafI := range leaves {
		ci := a.colIdx[leafI]
		iv := 1 / math.Max(a.cov.At(ci, ci), VarianceFloor)
		w.SetVec(i, iv)
		total += iv
		for j := i; j < n; j++ {
			sub.SetSym(i, j, a.cov.At(ci, a.colIdx[leaves[j]]))
		}
	}
	w.ScaleVec(1/total, w)

	return mat.Inner(w, sub, w)
}

// covariance returns the sample covariance matrix of returns along with the
// column index of each asset in assets
func covariance(returns *dataframe.DataFrame, assets []string) (*mat.SymDense, []int, error) {
	if returns.Len() < 2 {
		return nil, nil, fmt.Errorf("%w: covariance needs at least 2 observations", dataframe.ErrInsufficientData)
	}

	colIdx := make([]int, len(assets))
	for idx, asset := range assets {
		colIdx[idx] = returns.ColIndex(asset)
		if colIdx[idx] == -1 {
			return nil, nil, fmt.Errorf("%w: no returns for %s", ErrMissingInput, asset)
		}
	}

	obs := mat.NewDense(returns.Len(), returns.ColCount(), nil)
	for col, vals := range returns.Vals {
		obs.SetCol(col, vals)
	}

	cov := mat.NewSymDense(returns.ColCount(), nil)
	stat.CovarianceMatrix(cov, obs, nil)
	return cov, colIdx, nil
}
