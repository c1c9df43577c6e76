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
	"sort"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Edge is an undirected weighted edge between two assets. From always sorts
// before To.
type Edge struct {
	From   string  `json:"source"`
	To     string  `json:"target"`
	Weight float64 `json:"weight"`
}

// Graph is an undirected weighted graph whose nodes are assets
type Graph struct {
	assets []string
	ids    map[string]int64
	g      *simple.WeightedUndirectedGraph
}

// NewGraph creates a graph with a node for every asset and no edges
func NewGraph(assets []string) *Graph {
	gr := &Graph{
		assets: append([]string{}, assets...),
		ids:    make(map[string]int64, len(assets)),
		g:      simple.NewWeightedUndirectedGraph(0, math.Inf(1)),
	}

	for idx, asset := range gr.assets {
		gr.ids[asset] = int64(idx)
		gr.g.AddNode(simple.Node(idx))
	}

	return gr
}

// SetEdge adds or replaces the edge between assets a and b
func (gr *Graph) SetEdge(a, b string, weight float64) error {
	aID, okA := gr.ids[a]
	bID, okB := gr.ids[b]
	if !okA || !okB {
		return fmt.Errorf("unknown asset in edge %s-%s", a, b)
	}
	if aID == bID {
		return fmt.Errorf("self edge on %s is not allowed", a)
	}

	gr.g.SetWeightedEdge(gr.g.NewWeightedEdge(simple.Node(aID), simple.Node(bID), weight))
	return nil
}

// Nodes returns every asset in the graph in insertion order
func (gr *Graph) Nodes() []string {
	return append([]string{}, gr.assets...)
}

// NodeCount returns the number of assets in the graph
func (gr *Graph) NodeCount() int {
	return len(gr.assets)
}

// Edges returns every edge sorted by (From, To)
func (gr *Graph) Edges() []Edge {
	edges := make([]Edge, 0)
	for _, e := range graph.WeightedEdgesOf(gr.g.WeightedEdges()) {
		from := gr.assets[e.From().ID()]
		to := gr.assets[e.To().ID()]
		if to < from {
			from, to = to, from
		}
		edges = append(edges, Edge{From: from, To: to, Weight: e.Weight()})
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})

	return edges
}

// EdgeCount returns the number of edges in the graph
func (gr *Graph) EdgeCount() int {
	return gr.g.WeightedEdges().Len()
}

// HasEdge reports whether assets a and b are adjacent
func (gr *Graph) HasEdge(a, b string) bool {
	aID, okA := gr.ids[a]
	bID, okB := gr.ids[b]
	if !okA || !okB {
		return false
	}
	return gr.g.HasEdgeBetween(aID, bID)
}

// Weight returns the weight of the edge between a and b
func (gr *Graph) Weight(a, b string) (float64, bool) {
	if !gr.HasEdge(a, b) {
		return math.NaN(), false
	}
	return gr.g.Weight(gr.ids[a], gr.ids[b])
}

// Degree returns the number of neighbors of asset; -1 if asset is not in the graph
func (gr *Graph) Degree(asset string) int {
	id, ok := gr.ids[asset]
	if !ok {
		return -1
	}
	return gr.g.From(id).Len()
}

// Neighbors returns the assets adjacent to asset in sorted order
func (gr *Graph) Neighbors(asset string) []string {
	id, ok := gr.ids[asset]
	if !ok {
		return nil
	}

	neighbors := make([]string, 0)
	for _, n := range graph.NodesOf(gr.g.From(id)) {
		neighbors = append(neighbors, gr.assets[n.ID()])
	}
	sort.Strings(neighbors)
	return neighbors
}

// IsConnected reports whether every node can reach every other node
func (gr *Graph) IsConnected() bool {
	return len(topo.ConnectedComponents(gr.g)) == 1
}

// MarshalJSON serializes the graph as a node list and a sorted edge list
func (gr *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Nodes []string `json:"nodes"`
		Edges []Edge   `json:"edges"`
	}{
		Nodes: gr.Nodes(),
		Edges: gr.Edges(),
	})
}

// ThresholdGraph builds a graph with a node for every asset and an edge between
// assets i and j whenever |sim[i][j]| > threshold. Edge weights are the signed
// similarity. Undefined similarities never produce an edge.
func ThresholdGraph(sim *Matrix, threshold float64) (*Graph, error) {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: %f", ErrInvalidThreshold, threshold)
	}

	gr := NewGraph(sim.Assets)
	for i := 0; i < sim.Len(); i++ {
		for j := i + 1; j < sim.Len(); j++ {
			val := sim.Vals[i][j]
			if math.IsNaN(val) || math.Abs(val) <= threshold {
				continue
			}
			if err := gr.SetEdge(sim.Assets[i], sim.Assets[j], val); err != nil {
				return nil, err
			}
		}
	}

	log.Debug().Float64("Threshold", threshold).Int("Nodes", gr.NodeCount()).Int("Edges", gr.EdgeCount()).Msg("built threshold graph")
	return gr, nil
}
