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
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	gnetwork "gonum.org/v1/gonum/graph/network"
)

const (
	EigenvectorMaxIterations = 100
	EigenvectorTolerance     = 1.0e-6
)

// Centrality holds per-asset node centrality scores of a graph
type Centrality struct {
	Degree      map[string]float64
	Betweenness map[string]float64
	Eigenvector map[string]float64
}

// Centralities computes degree, betweenness and eigenvector centrality for g
func Centralities(g *Graph) *Centrality {
	return &Centrality{
		Degree:      DegreeCentrality(g),
		Betweenness: BetweennessCentrality(g),
		Eigenvector: EigenvectorCentrality(g),
	}
}

// MarshalJSON encodes undefined (NaN) scores as null
func (c *Centrality) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Degree      map[string]*float64 `json:"degree"`
		Betweenness map[string]*float64 `json:"betweenness"`
		Eigenvector map[string]*float64 `json:"eigenvector"`
	}{
		Degree:      common.NullableMap(c.Degree),
		Betweenness: common.NullableMap(c.Betweenness),
		Eigenvector: common.NullableMap(c.Eigenvector),
	})
}

// DegreeCentrality is the fraction of other nodes each node is connected to.
// A graph with a single node assigns it a centrality of 1.
func DegreeCentrality(g *Graph) map[string]float64 {
	n := g.NodeCount()
	res := make(map[string]float64, n)
	for _, asset := range g.Nodes() {
		if n <= 1 {
			res[asset] = 1
			continue
		}
		res[asset] = float64(g.Degree(asset)) / float64(n-1)
	}
	return res
}

// BetweennessCentrality is the fraction of shortest paths between all other
// pairs of nodes that pass through each node. Edge weights are ignored.
func BetweennessCentrality(g *Graph) map[string]float64 {
	n := g.NodeCount()
	res := make(map[string]float64, n)
	for _, asset := range g.Nodes() {
		res[asset] = 0
	}

	if n <= 2 {
		return res
	}

	// gonum sums over ordered pairs, which for an undirected graph counts each
	// path twice; this cancels the factor 2 of the undirected normalization
	scale := float64((n - 1) * (n - 2))
	for id, val := range gnetwork.Betweenness(g.g) {
		res[g.assets[id]] = val / scale
	}

	return res
}

// EigenvectorCentrality computes the eigenvector centrality of each node using
// power iteration on A + I. Scores have unit euclidean norm. If the iteration
// does not converge every score is NaN.
func EigenvectorCentrality(g *Graph) map[string]float64 {
	return eigenvectorCentrality(g, EigenvectorMaxIterations, EigenvectorTolerance)
}

func eigenvectorCentrality(g *Graph, maxIter int, tol float64) map[string]float64 {
	n := g.NodeCount()
	res := make(map[string]float64, n)
	if n == 0 {
		return res
	}

	neighbors := make([][]int64, n)
	for idx, asset := range g.assets {
		for _, nbr := range g.Neighbors(asset) {
			neighbors[idx] = append(neighbors[idx], g.ids[nbr])
		}
	}

	x := make([]float64, n)
	for idx := range x {
		x[idx] = 1 / float64(n)
	}

	last := make([]float64, n)
	for iter := 0; iter < maxIter; iter++ {
		copy(last, x)
		for idx := range x {
			for _, nbr := range neighbors[idx] {
				x[nbr] += last[idx]
			}
		}

		norm := floats.Norm(x, 2)
		if norm == 0 {
			norm = 1
		}
		floats.Scale(1/norm, x)

		if floats.Distance(x, last, 1) < float64(n)*tol {
			for idx, asset := range g.assets {
				res[asset] = x[idx]
			}
			return res
		}
	}

	log.Warn().Int("MaxIterations", maxIter).Int("Nodes", n).Msg("eigenvector centrality did not converge")
	for _, asset := range g.assets {
		res[asset] = math.NaN()
	}
	return res
}
