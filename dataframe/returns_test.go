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

package dataframe_test

import (
	"errors"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/netfolio/dataframe"
)

var _ = Describe("When computing log returns", func() {
	It("drops missing rows and aligns the dates with the later observation", func() {
		prices := &dataframe.DataFrame{
			Dates:    []time.Time{day(0), day(1), day(2), day(3)},
			ColNames: []string{"A", "B"},
			Vals: [][]float64{
				{100, 110, math.NaN(), 121},
				{50, 55, 60, 66},
			},
		}

		rets, err := prices.LogReturns()
		Expect(err).To(BeNil())
		Expect(rets.Len()).To(Equal(2))
		Expect(rets.ColNames).To(Equal([]string{"A", "B"}))
		Expect(rets.Dates).To(Equal([]time.Time{day(1), day(3)}))
		Expect(rets.Vals[0][0]).Should(BeNumerically("~", math.Log(1.1), 1e-12))
		Expect(rets.Vals[0][1]).Should(BeNumerically("~", math.Log(1.1), 1e-12))
		Expect(rets.Vals[1][1]).Should(BeNumerically("~", math.Log(1.2), 1e-12))
	})

	It("returns a constant series for geometric prices", func() {
		prices := &dataframe.DataFrame{
			Dates:    []time.Time{day(0), day(1), day(2), day(3)},
			ColNames: []string{"A"},
			Vals:     [][]float64{{1, 2, 4, 8}},
		}

		rets, err := prices.LogReturns()
		Expect(err).To(BeNil())
		for _, r := range rets.Vals[0] {
			Expect(r).Should(BeNumerically("~", math.Ln2, 1e-12))
		}
	})

	It("does not modify its input", func() {
		prices := &dataframe.DataFrame{
			Dates:    []time.Time{day(0), day(1), day(2)},
			ColNames: []string{"A"},
			Vals:     [][]float64{{1, -2, 4}},
		}

		_, err := prices.LogReturns()
		Expect(err).To(BeNil())
		Expect(prices.Vals[0]).To(Equal([]float64{1, -2, 4}))
		Expect(prices.Len()).To(Equal(3))
	})

	It("fails with fewer than 2 valid rows", func() {
		prices := &dataframe.DataFrame{
			Dates:    []time.Time{day(0), day(1)},
			ColNames: []string{"A"},
			Vals:     [][]float64{{1, 0}},
		}

		_, err := prices.LogReturns()
		Expect(errors.Is(err, dataframe.ErrInsufficientData)).To(BeTrue())
	})

	It("fails without columns", func() {
		prices := &dataframe.DataFrame{Dates: []time.Time{day(0), day(1)}}
		_, err := prices.LogReturns()
		Expect(errors.Is(err, dataframe.ErrInsufficientData)).To(BeTrue())
	})
})
