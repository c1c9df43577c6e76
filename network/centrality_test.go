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
	"math"

	"github.com/goccy/go-json"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/netfolio/network"
)

func buildGraph(assets []string, edges [][2]string) *network.Graph {
	g := network.NewGraph(assets)
	for _, e := range edges {
		Expect(g.SetEdge(e[0], e[1], 1)).To(Succeed())
	}
	return g
}

var _ = Describe("Centrality", func() {
	var (
		path *network.Graph
		star *network.Graph
	)

	BeforeEach(func() {
		path = buildGraph([]string{"A", "B", "C", "D"}, [][2]string{{"A", "B"}, {"B", "C"}, {"C", "D"}})
		star = buildGraph([]string{"HUB", "L1", "L2", "L3"}, [][2]string{{"HUB", "L1"}, {"HUB", "L2"}, {"HUB", "L3"}})
	})

	Context("degree", func() {
		It("is the fraction of connected nodes", func() {
			deg := network.DegreeCentrality(star)
			Expect(deg["HUB"]).To(Equal(1.0))
			Expect(deg["L1"]).Should(BeNumerically("~", 1.0/3.0, 1e-12))
		})

		It("is 1 for a single node", func() {
			deg := network.DegreeCentrality(network.NewGraph([]string{"A"}))
			Expect(deg).To(Equal(map[string]float64{"A": 1}))
		})
	})

	Context("betweenness", func() {
		It("counts the shortest paths through each node", func() {
			btw := network.BetweennessCentrality(path)
			Expect(btw["A"]).To(Equal(0.0))
			Expect(btw["B"]).Should(BeNumerically("~", 2.0/3.0, 1e-12))
			Expect(btw["C"]).Should(BeNumerically("~", 2.0/3.0, 1e-12))
			Expect(btw["D"]).To(Equal(0.0))
		})

		It("is 1 for the hub of a star", func() {
			btw := network.BetweennessCentrality(star)
			Expect(btw["HUB"]).Should(BeNumerically("~", 1.0, 1e-12))
			Expect(btw["L2"]).To(Equal(0.0))
		})

		It("is 0 for every node of a graph with 2 nodes", func() {
			g := buildGraph([]string{"A", "B"}, [][2]string{{"A", "B"}})
			Expect(network.BetweennessCentrality(g)).To(Equal(map[string]float64{"A": 0, "B": 0}))
		})
	})

	Context("eigenvector", func() {
		It("is uniform on a complete graph", func() {
			g := buildGraph([]string{"A", "B", "C"}, [][2]string{{"A", "B"}, {"B", "C"}, {"A", "C"}})
			eig := network.EigenvectorCentrality(g)
			for _, val := range eig {
				Expect(val).Should(BeNumerically("~", 1/math.Sqrt(3), 1e-9))
			}
		})

		It("favors the middle of a path", func() {
			g := buildGraph([]string{"A", "B", "C"}, [][2]string{{"A", "B"}, {"B", "C"}})
			eig := network.EigenvectorCentrality(g)
			Expect(eig["A"]).Should(BeNumerically("~", 0.5, 1e-4))
			Expect(eig["B"]).Should(BeNumerically("~", math.Sqrt2/2, 1e-4))
			Expect(eig["C"]).Should(BeNumerically("~", 0.5, 1e-4))
		})

		It("is NaN for every node when the iteration does not converge", func() {
			eig := network.EigenvectorCentralityWithLimit(path, 1, network.EigenvectorTolerance)
			Expect(eig).To(HaveLen(4))
			for _, val := range eig {
				Expect(math.IsNaN(val)).To(BeTrue())
			}
		})

		It("is empty for an empty graph", func() {
			Expect(network.EigenvectorCentrality(network.NewGraph(nil))).To(BeEmpty())
		})
	})

	It("bundles every measure and encodes NaN as null", func() {
		c := network.Centralities(star)
		Expect(c.Degree).To(HaveLen(4))
		Expect(c.Betweenness).To(HaveLen(4))
		Expect(c.Eigenvector).To(HaveLen(4))

		c.Eigenvector["HUB"] = math.NaN()
		out, err := json.Marshal(c)
		Expect(err).To(BeNil())
		Expect(string(out)).To(ContainSubstring(`"HUB":null`))
	})
})
