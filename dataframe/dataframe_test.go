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

func day(n int) time.Time {
	return time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

var _ = Describe("DataFrame", func() {
	Context("with no values", func() {
		var (
			df *dataframe.DataFrame
		)

		BeforeEach(func() {
			df = &dataframe.DataFrame{}
		})

		It("has zero length", func() {
			Expect(df.Len()).To(Equal(0))
		})

		It("has zero columns", func() {
			Expect(df.ColCount()).To(Equal(0))
		})

		It("does not error on drop", func() {
			df = df.Drop(1)
			Expect(df.Len()).To(Equal(0))
		})

		It("does not error on trim", func() {
			df = df.Trim(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))
			Expect(df.Len()).To(Equal(0))
		})

		It("has zero start and end", func() {
			Expect(df.Start().IsZero()).To(BeTrue())
			Expect(df.End().IsZero()).To(BeTrue())
		})

		It("renders a placeholder table", func() {
			Expect(df.Table()).To(Equal("<NO DATA>"))
		})
	})

	Context("with 10 rows and 2 columns", func() {
		var (
			df *dataframe.DataFrame
		)

		BeforeEach(func() {
			dates := make([]time.Time, 10)
			colA := make([]float64, 10)
			colB := make([]float64, 10)
			for idx := range dates {
				dates[idx] = day(idx)
				colA[idx] = float64(idx + 1)
				colB[idx] = float64(10 * (idx + 1))
			}

			df = &dataframe.DataFrame{
				Dates:    dates,
				ColNames: []string{"A", "B"},
				Vals:     [][]float64{colA, colB},
			}
		})

		It("finds columns by name", func() {
			Expect(df.ColIndex("B")).To(Equal(1))
			Expect(df.ColIndex("C")).To(Equal(-1))

			col, err := df.Column("A")
			Expect(err).To(BeNil())
			Expect(col[9]).Should(Equal(10.0))

			_, err = df.Column("C")
			Expect(errors.Is(err, dataframe.ErrColumnNotFound)).To(BeTrue())
		})

		It("copies without sharing memory", func() {
			df2 := df.Copy()
			df2.Vals[0][0] = 100
			Expect(df.Vals[0][0]).To(Equal(1.0))
		})

		It("drops rows containing NaN", func() {
			df.Vals[1][3] = math.NaN()
			df2 := df.Drop(math.NaN())
			Expect(df2.Len()).To(Equal(9))
			Expect(df2.ColCount()).To(Equal(2))
			Expect(df2.Dates[3]).To(Equal(day(4)))
		})

		It("drops rows with non-positive values", func() {
			df.Vals[0][0] = 0
			df.Vals[1][5] = -1
			df.Vals[0][7] = math.Inf(1)
			df2 := df.DropInvalid()
			Expect(df2.Len()).To(Equal(7))
			Expect(df2.Start()).To(Equal(day(1)))
		})

		It("splits by ratio", func() {
			in, out, err := df.SplitRatio(0.7)
			Expect(err).To(BeNil())
			Expect(in.Len()).To(Equal(7))
			Expect(out.Len()).To(Equal(3))
			Expect(out.Start()).To(Equal(day(7)))
		})

		It("keeps everything in sample when the ratio is 1", func() {
			in, out, err := df.SplitRatio(1)
			Expect(err).To(BeNil())
			Expect(in.Len()).To(Equal(10))
			Expect(out.Len()).To(Equal(0))
		})

		It("rejects invalid ratios", func() {
			_, _, err := df.SplitRatio(0)
			Expect(errors.Is(err, dataframe.ErrInvalidRatio)).To(BeTrue())
			_, _, err = df.SplitRatio(1.5)
			Expect(errors.Is(err, dataframe.ErrInvalidRatio)).To(BeTrue())
		})

		It("splits by column", func() {
			one, two := df.Split("B")
			Expect(one.ColNames).To(Equal([]string{"B"}))
			Expect(two.ColNames).To(Equal([]string{"A"}))
			Expect(one.Len()).To(Equal(10))
		})

		It("trims to an inclusive range", func() {
			df2 := df.Trim(day(2), day(4))
			Expect(df2.Len()).To(Equal(3))
			Expect(df2.Start()).To(Equal(day(2)))
			Expect(df2.End()).To(Equal(day(4)))
		})

		It("computes a weighted sum", func() {
			res := df.WeightedSum(map[string]float64{"A": 0.5, "B": 0.5})
			Expect(res).To(HaveLen(10))
			Expect(res[0]).Should(BeNumerically("~", 5.5))
			Expect(res[9]).Should(BeNumerically("~", 55.0))
		})

		It("renders a table with every column", func() {
			tbl := df.Table()
			Expect(tbl).To(ContainSubstring("DATE"))
			Expect(tbl).To(ContainSubstring("2021-01-10"))
		})
	})
})

var _ = Describe("DataFrameMap", func() {
	It("inner joins frames on their dates", func() {
		dfMap := dataframe.DataFrameMap{
			"b": &dataframe.DataFrame{
				Dates:    []time.Time{day(1), day(2), day(3)},
				ColNames: []string{"B"},
				Vals:     [][]float64{{20, 30, 40}},
			},
			"a": &dataframe.DataFrame{
				Dates:    []time.Time{day(0), day(1), day(2)},
				ColNames: []string{"A"},
				Vals:     [][]float64{{1, 2, 3}},
			},
		}

		df := dfMap.DataFrame()
		Expect(df.ColNames).To(Equal([]string{"A", "B"}))
		Expect(df.Dates).To(Equal([]time.Time{day(1), day(2)}))
		Expect(df.Vals[0]).To(Equal([]float64{2, 3}))
		Expect(df.Vals[1]).To(Equal([]float64{20, 30}))
	})

	It("returns an empty frame for an empty map", func() {
		df := dataframe.DataFrameMap{}.DataFrame()
		Expect(df.Len()).To(Equal(0))
		Expect(df.ColCount()).To(Equal(0))
	})
})
