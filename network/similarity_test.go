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
	"time"

	"github.com/goccy/go-json"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/netfolio/dataframe"
	"github.com/penny-vault/netfolio/network"
)

func dates(n int) []time.Time {
	res := make([]time.Time, n)
	for idx := range res {
		res[idx] = time.Date(2021, time.January, 4, 0, 0, 0, 0, time.UTC).AddDate(0, 0, idx)
	}
	return res
}

// scenarioPrices has two identical assets and a third that is uncorrelated with them
func scenarioPrices() *dataframe.DataFrame {
	return &dataframe.DataFrame{
		Dates:    dates(4),
		ColNames: []string{"A1", "A2", "A3"},
		Vals: [][]float64{
			{100, 110, 99, 108.9},
			{100, 110, 99, 108.9},
			{100, 110, 110, 100},
		},
	}
}

func mustReturns(prices *dataframe.DataFrame) *dataframe.DataFrame {
	rets, err := prices.LogReturns()
	Expect(err).To(BeNil())
	return rets
}

var _ = Describe("Similarity", func() {
	Context("with correlation", func() {
		var (
			rets *dataframe.DataFrame
		)

		BeforeEach(func() {
			rets = mustReturns(scenarioPrices())
		})

		It("finds identical series perfectly correlated", func() {
			corr, err := network.Correlation{}.Compute(rets)
			Expect(err).To(BeNil())

			val, ok := corr.Get("A1", "A2")
			Expect(ok).To(BeTrue())
			Expect(val).Should(BeNumerically("~", 1.0, 1e-12))

			val, _ = corr.Get("A1", "A3")
			Expect(val).Should(BeNumerically("~", 0.0, 1e-12))
		})

		It("is symmetric with a unit diagonal and values in [-1, 1]", func() {
			corr, err := network.Correlation{}.Compute(rets)
			Expect(err).To(BeNil())
			Expect(corr.Len()).To(Equal(3))

			for i := 0; i < corr.Len(); i++ {
				Expect(corr.At(i, i)).To(Equal(1.0))
				for j := 0; j < corr.Len(); j++ {
					Expect(corr.At(i, j)).To(Equal(corr.At(j, i)))
					Expect(corr.At(i, j)).Should(BeNumerically(">=", -1))
					Expect(corr.At(i, j)).Should(BeNumerically("<=", 1))
				}
			}
		})

		It("is bit-identical on repeated calls", func() {
			first, err := network.Correlation{}.Compute(rets)
			Expect(err).To(BeNil())
			second, err := network.Correlation{}.Compute(rets)
			Expect(err).To(BeNil())
			Expect(second.Vals).To(Equal(first.Vals))
		})

		It("returns NaN for assets with constant prices", func() {
			prices := &dataframe.DataFrame{
				Dates:    dates(4),
				ColNames: []string{"FLAT1", "FLAT2"},
				Vals: [][]float64{
					{10, 10, 10, 10},
					{20, 20, 20, 20},
				},
			}

			corr, err := network.Correlation{}.Compute(mustReturns(prices))
			Expect(err).To(BeNil())
			val, _ := corr.Get("FLAT1", "FLAT2")
			Expect(math.IsNaN(val)).To(BeTrue())
			Expect(corr.At(0, 0)).To(Equal(1.0))
		})

		It("requires at least 2 assets", func() {
			one, _ := rets.Split("A1")
			_, err := network.Correlation{}.Compute(one)
			Expect(errors.Is(err, dataframe.ErrInsufficientData)).To(BeTrue())
		})

		It("encodes NaN as null in JSON", func() {
			m := &network.Matrix{
				Assets: []string{"A", "B"},
				Vals:   [][]float64{{1, math.NaN()}, {math.NaN(), 1}},
			}
			out, err := json.Marshal(m)
			Expect(err).To(BeNil())
			Expect(string(out)).To(Equal(`{"assets":["A","B"],"values":[[1,null],[null,1]]}`))
		})
	})

	Context("with partial correlation", func() {
		It("matches the closed form for 3 assets", func() {
			rets := &dataframe.DataFrame{
				Dates:    dates(8),
				ColNames: []string{"X", "Y", "Z"},
				Vals: [][]float64{
					{0.01, -0.02, 0.015, 0.003, -0.007, 0.012, -0.004, 0.009},
					{0.008, -0.01, 0.02, -0.002, -0.006, 0.004, 0.001, 0.011},
					{-0.003, 0.005, 0.007, 0.01, -0.012, 0.002, 0.006, -0.001},
				},
			}

			corr, err := network.Correlation{}.Compute(rets)
			Expect(err).To(BeNil())
			partial, err := network.PartialCorrelation{}.Compute(rets)
			Expect(err).To(BeNil())

			r12, r13, r23 := corr.At(0, 1), corr.At(0, 2), corr.At(1, 2)
			expected := (r12 - r13*r23) / math.Sqrt((1-r13*r13)*(1-r23*r23))
			Expect(partial.At(0, 1)).Should(BeNumerically("~", expected, 1e-9))
			Expect(partial.At(1, 0)).Should(BeNumerically("~", expected, 1e-9))
			Expect(partial.At(2, 2)).To(Equal(1.0))
		})

		It("fails on a singular correlation matrix", func() {
			_, err := network.PartialCorrelation{}.Compute(mustReturns(scenarioPrices()))
			Expect(errors.Is(err, network.ErrNotPositiveDefinite)).To(BeTrue())
		})
	})

	Context("with mutual information", func() {
		It("fails fast instead of falling back", func() {
			sim, err := network.NewSimilarity(network.KindMutualInformation)
			Expect(err).To(BeNil())
			Expect(sim.Kind()).To(Equal(network.KindMutualInformation))

			_, err = sim.Compute(mustReturns(scenarioPrices()))
			Expect(errors.Is(err, network.ErrNotSupported)).To(BeTrue())
		})
	})

	It("rejects unknown measures", func() {
		_, err := network.NewSimilarity("cosine")
		Expect(errors.Is(err, network.ErrUnknownSimilarity)).To(BeTrue())
	})
})

var _ = Describe("Distance", func() {
	It("uses one minus the absolute similarity", func() {
		sim := &network.Matrix{
			Assets: []string{"A", "B", "C"},
			Vals: [][]float64{
				{1, -0.8, math.NaN()},
				{-0.8, 1, 0.25},
				{math.NaN(), 0.25, 1},
			},
		}

		dist := sim.Distance()
		Expect(dist.At(0, 0)).To(Equal(0.0))
		Expect(dist.At(0, 1)).Should(BeNumerically("~", 0.2, 1e-12))
		Expect(dist.At(1, 2)).Should(BeNumerically("~", 0.75, 1e-12))
		Expect(dist.At(0, 2)).To(Equal(1.0))
		Expect(dist.At(2, 0)).To(Equal(1.0))
	})
})
