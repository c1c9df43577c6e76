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
	"sort"

	"github.com/rs/zerolog/log"
)

type candidate struct {
	i, j   int
	a, b   string
	weight float64
}

// MinimumSpanningTree returns the minimum spanning tree of the complete graph
// over all assets weighted by the distance 1 - |sim|. Undefined similarities are
// treated as the maximum distance of 1. Edges are considered in order of
// (distance, asset pair) so the result is deterministic when distances tie.
func MinimumSpanningTree(sim *Matrix) *Graph {
	dist := sim.Distance()
	n := dist.Len()

	candidates := make([]candidate, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a, b := dist.Assets[i], dist.Assets[j]
			if b < a {
				a, b = b, a
			}
			candidates = append(candidates, candidate{i: i, j: j, a: a, b: b, weight: dist.Vals[i][j]})
		}
	}

	sort.SliceStable(candidates, func(x, y int) bool {
		cx, cy := candidates[x], candidates[y]
		if cx.weight != cy.weight {
			return cx.weight < cy.weight
		}
		if cx.a != cy.a {
			return cx.a < cy.a
		}
		return cx.b < cy.b
	})

	tree := NewGraph(dist.Assets)
	uf := newUnionFind(n)
	for _, c := range candidates {
		if tree.EdgeCount() == n-1 {
			break
		}
		if uf.union(c.i, c.j) {
			// both endpoints are known assets so SetEdge cannot fail
			_ = tree.SetEdge(dist.Assets[c.i], dist.Assets[c.j], c.weight)
		}
	}

	log.Debug().Int("Nodes", tree.NodeCount()).Int("Edges", tree.EdgeCount()).Msg("built minimum spanning tree")
	return tree
}

type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{
		parent: make([]int, n),
		rank:   make([]int, n),
	}
	for idx := range uf.parent {
		uf.parent[idx] = idx
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

// union merges the sets containing x and y; returns false if they were already joined
func (uf *unionFind) union(x, y int) bool {
	rx, ry := uf.find(x), uf.find(y)
	if rx == ry {
		return false
	}

	switch {
	case uf.rank[rx] < uf.rank[ry]:
		uf.parent[rx] = ry
	case uf.rank[rx] > uf.rank[ry]:
		uf.parent[ry] = rx
	default:
		uf.parent[ry] = rx
		uf.rank[rx]++
	}
	return true
}
