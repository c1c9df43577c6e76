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

package cluster

import (
	"fmt"
	"math"

	"github.com/penny-vault/netfolio/dataframe"
	"github.com/penny-vault/netfolio/network"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
)

type Method string

const (
	Ward     Method = "ward"
	Single   Method = "single"
	Complete Method = "complete"
	Average  Method = "average"
)

// Linkage builds a merge tree over the assets. Ward linkage clusters the
// standardized return series of each asset using euclidean distance; the other
// methods cluster the supplied distance matrix.
func Linkage(method Method, returns *dataframe.DataFrame, dist *network.Matrix) (*MergeTree, error) {
	switch method {
	case Ward:
		if returns == nil {
			return nil, fmt.Errorf("%w: ward linkage requires returns", dataframe.ErrInsufficientData)
		}
		return WardLinkage(returns)
	case Single, Complete, Average:
		if dist == nil {
			return nil, fmt.Errorf("%w: %s linkage requires a distance matrix", dataframe.ErrInsufficientData, method)
		}
		return DistanceLinkage(dist, method)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLinkage, method)
	}
}

// WardLinkage performs Ward's minimum variance clustering of the asset return
// series after standardizing each column
func WardLinkage(returns *dataframe.DataFrame) (*MergeTree, error) {
	n := returns.ColCount()
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 assets to cluster, have %d", dataframe.ErrInsufficientData, n)
	}

	features := returns.ZScore()
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
		for j := range dist[i] {
			dist[i][j] = floats.Distance(features.Vals[i], features.Vals[j], 2)
		}
	}

	return agglomerate(returns.ColNames, dist, Ward)
}

// DistanceLinkage performs single, complete or average linkage clustering on a
// precomputed distance matrix
func DistanceLinkage(dist *network.Matrix, method Method) (*MergeTree, error) {
	if method != Single && method != Complete && method != Average {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLinkage, method)
	}

	n := dist.Len()
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 assets to cluster, have %d", dataframe.ErrInsufficientData, n)
	}

	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
		for j := range d[i] {
			d[i][j] = dist.Vals[i][j]
			if math.IsNaN(d[i][j]) {
				d[i][j] = 1
			}
		}
	}

	return agglomerate(dist.Assets, d, method)
}

// agglomerate repeatedly merges the closest pair of active clusters. Ties are
// broken by the lowest pair of cluster ids. Distances to a newly formed cluster
// are derived with the Lance-Williams update for the method.
func agglomerate(assets []string, leafDist [][]float64, method Method) (*MergeTree, error) {
	n := len(assets)
	total := 2*n - 1

	dist := make([][]float64, total)
	for i := range dist {
		dist[i] = make([]float64, total)
	}
	for i := 0; i < n; i++ {
		copy(dist[i][:n], leafDist[i])
	}

	size := make([]int, total)
	active := make([]bool, total)
	for i := 0; i < n; i++ {
		size[i] = 1
		active[i] = true
	}

	tree := &MergeTree{
		Assets: append([]string{}, assets...),
		Merges: make([]Merge, 0, n-1),
	}

	for k := 0; k < n-1; k++ {
		bestI, bestJ := -1, -1
		best := math.Inf(1)
		for i := 0; i < n+k; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < n+k; j++ {
				if active[j] && dist[i][j] < best {
					best = dist[i][j]
					bestI, bestJ = i, j
				}
			}
		}

		if bestI == -1 {
			return nil, fmt.Errorf("%w: no finite distance between remaining clusters", ErrInvalidTree)
		}

		id := n + k
		active[bestI] = false
		active[bestJ] = false
		size[id] = size[bestI] + size[bestJ]

		for other := 0; other < id; other++ {
			if !active[other] {
				continue
			}
			d := update(method, dist[other][bestI], dist[other][bestJ], best, size[bestI], size[bestJ], size[other])
			dist[other][id] = d
			dist[id][other] = d
		}

		active[id] = true
		tree.Merges = append(tree.Merges, Merge{
			Left:     bestI,
			Right:    bestJ,
			Distance: best,
			Size:     size[id],
		})
	}

	log.Debug().Str("Method", string(method)).Int("Assets", n).Msg("built merge tree")
	return tree, nil
}

// update returns the distance from cluster k to the union of clusters i and j
func update(method Method, dki, dkj, dij float64, ni, nj, nk int) float64 {
	switch method {
	case Single:
		return math.Min(dki, dkj)
	case Complete:
		return math.Max(dki, dkj)
	case Average:
		return (float64(ni)*dki + float64(nj)*dkj) / float64(ni+nj)
	default:
		fi, fj, fk := float64(ni), float64(nj), float64(nk)
		sq := ((fi+fk)*dki*dki + (fj+fk)*dkj*dkj - fk*dij*dij) / (fi + fj + fk)
		return math.Sqrt(math.Max(sq, 0))
	}
}
