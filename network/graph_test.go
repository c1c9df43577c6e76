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

package network_test

import (
	"errors"
	"math"

	"github.com/goccy/go-json"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/netfolio/network"
)

func fourAssets() *network.Matrix {
	return &network.Matrix{
		Assets: []string{"A", "B", "C", "D"},
		Vals: [][]float64{
			{1, 0.9, 0.2, 0.1},
			{0.9, 1, 0.3, -0.8},
			{0.2, 0.3, 1, 0.4},
			{0.1, -0.8, 0.4, 1},
		},
	}
}

var _ = Describe("Threshold graph", func() {
	It("links the identical assets and leaves the uncorrelated asset isolated", func() {
		corr, err := network.Correlation{}.Compute(mustReturns(scenarioPrices()))
		Expect(err).To(BeNil())

		g, err := network.ThresholdGraph(corr, 0.5)
		Expect(err).To(BeNil())
		Expect(g.Nodes()).To(Equal([]string{"A1", "A2", "A3"}))
		Expect(g.HasEdge("A1", "A2")).To(BeTrue())
		Expect(g.HasEdge("A1", "A3")).To(BeFalse())
		Expect(g.HasEdge("A2", "A3")).To(BeFalse())
		Expect(g.Degree("A3")).To(Equal(0))
		Expect(g.IsConnected()).To(BeFalse())
	})

	It("keeps strong negative similarities with their sign", func() {
		g, err := network.ThresholdGraph(fourAssets(), 0.5)
		Expect(err).To(BeNil())
		Expect(g.EdgeCount()).To(Equal(2))

		w, ok := g.Weight("D", "B")
		Expect(ok).To(BeTrue())
		Expect(w).To(Equal(-0.8))

		Expect(g.Edges()).To(Equal([]network.Edge{
			{From: "A", To: "B", Weight: 0.9},
			{From: "B", To: "D", Weight: -0.8},
		}))
	})

	It("uses a strict inequality", func() {
		g, err := network.ThresholdGraph(fourAssets(), 0.9)
		Expect(err).To(BeNil())
		Expect(g.EdgeCount()).To(Equal(0))
		Expect(g.NodeCount()).To(Equal(4))
	})

	It("links every defined pair at a threshold of 0", func() {
		sim := fourAssets()
		sim.Vals[0][3] = math.NaN()
		sim.Vals[3][0] = math.NaN()

		g, err := network.ThresholdGraph(sim, 0)
		Expect(err).To(BeNil())
		Expect(g.EdgeCount()).To(Equal(5))
		Expect(g.HasEdge("A", "D")).To(BeFalse())
	})

	It("rejects thresholds outside [0, 1]", func() {
		_, err := network.ThresholdGraph(fourAssets(), 1.5)
		Expect(errors.Is(err, network.ErrInvalidThreshold)).To(BeTrue())
		_, err = network.ThresholdGraph(fourAssets(), -0.1)
		Expect(errors.Is(err, network.ErrInvalidThreshold)).To(BeTrue())
	})

	It("serializes nodes and sorted edges", func() {
		g, err := network.ThresholdGraph(fourAssets(), 0.85)
		Expect(err).To(BeNil())
		out, err := json.Marshal(g)
		Expect(err).To(BeNil())
		Expect(string(out)).To(Equal(`{"nodes":["A","B","C","D"],"edges":[{"source":"A","target":"B","weight":0.9}]}`))
	})
})

var _ = Describe("Minimum spanning tree", func() {
	It("selects the shortest distances", func() {
		tree := network.MinimumSpanningTree(fourAssets())
		Expect(tree.NodeCount()).To(Equal(4))
		Expect(tree.EdgeCount()).To(Equal(3))
		Expect(tree.IsConnected()).To(BeTrue())

		Expect(tree.HasEdge("A", "B")).To(BeTrue())
		Expect(tree.HasEdge("B", "D")).To(BeTrue())
		Expect(tree.HasEdge("C", "D")).To(BeTrue())

		w, _ := tree.Weight("B", "D")
		Expect(w).Should(BeNumerically("~", 0.2, 1e-12))
	})

	It("is idempotent", func() {
		first := network.MinimumSpanningTree(fourAssets())
		second := network.MinimumSpanningTree(fourAssets())
		Expect(second.Edges()).To(Equal(first.Edges()))
	})

	It("breaks ties by asset name", func() {
		sim := &network.Matrix{
			Assets: []string{"C", "B", "A"},
			Vals: [][]float64{
				{1, math.NaN(), math.NaN()},
				{math.NaN(), 1, math.NaN()},
				{math.NaN(), math.NaN(), 1},
			},
		}

		tree := network.MinimumSpanningTree(sim)
		Expect(tree.Edges()).To(Equal([]network.Edge{
			{From: "A", To: "B", Weight: 1},
			{From: "A", To: "C", Weight: 1},
		}))
	})

	It("spans every asset of the scenario", func() {
		corr, err := network.Correlation{}.Compute(mustReturns(scenarioPrices()))
		Expect(err).To(BeNil())

		tree := network.MinimumSpanningTree(corr)
		Expect(tree.EdgeCount()).To(Equal(2))
		Expect(tree.IsConnected()).To(BeTrue())
		Expect(tree.HasEdge("A1", "A2")).To(BeTrue())
	})

	It("has no edges for a single asset", func() {
		sim := &network.Matrix{Assets: []string{"A"}, Vals: [][]float64{{1}}}
		tree := network.MinimumSpanningTree(sim)
		Expect(tree.NodeCount()).To(Equal(1))
		Expect(tree.EdgeCount()).To(Equal(0))
		Expect(tree.IsConnected()).To(BeTrue())
	})
})
