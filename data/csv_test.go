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

package data_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/netfolio/common"
	"github.com/penny-vault/netfolio/data"
)

const prices = `date,VFINX,PRIDX
2021-01-05,101.5,41.0
2021-01-04,100,40
# holiday
2021-01-06,NA,42.25
2021-01-07, 103 ,null
`

var _ = Describe("CSV", func() {
	Context("when reading prices", func() {
		It("parses and sorts the rows", func() {
			df, err := data.ReadPrices(strings.NewReader(prices))
			Expect(err).To(BeNil())
			Expect(df.ColNames).To(Equal([]string{"VFINX", "PRIDX"}))
			Expect(df.Len()).To(Equal(4))
			Expect(df.Start()).To(Equal(time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)))
			Expect(df.End()).To(Equal(time.Date(2021, 1, 7, 0, 0, 0, 0, time.UTC)))
			Expect(df.Vals[0][0]).To(Equal(100.0))
			Expect(df.Vals[0][1]).To(Equal(101.5))
			Expect(df.Vals[0][3]).To(Equal(103.0))
			Expect(df.Vals[1][2]).To(Equal(42.25))
		})

		It("treats missing tokens as NaN", func() {
			df, err := data.ReadPrices(strings.NewReader(prices))
			Expect(err).To(BeNil())
			Expect(math.IsNaN(df.Vals[0][2])).To(BeTrue())
			Expect(math.IsNaN(df.Vals[1][3])).To(BeTrue())

			df, err = data.ReadPrices(strings.NewReader("date,A\n2021-01-04,\n2021-01-05,NaN\n"))
			Expect(err).To(BeNil())
			Expect(math.IsNaN(df.Vals[0][0])).To(BeTrue())
			Expect(math.IsNaN(df.Vals[0][1])).To(BeTrue())
		})

		It("accepts a capitalized date column", func() {
			df, err := data.ReadPrices(strings.NewReader("Date,A\n2021-01-04,1\n"))
			Expect(err).To(BeNil())
			Expect(df.Len()).To(Equal(1))
		})

		DescribeTable("rejects malformed input",
			func(input string, expected error) {
				_, err := data.ReadPrices(strings.NewReader(input))
				Expect(errors.Is(err, expected)).To(BeTrue(), err.Error())
			},
			Entry("empty file", "", data.ErrInvalidHeader),
			Entry("no value columns", "date\n2021-01-04\n", data.ErrInvalidHeader),
			Entry("wrong first column", "ticker,A\n2021-01-04,1\n", data.ErrInvalidHeader),
			Entry("blank column name", "date,A,\n2021-01-04,1,2\n", data.ErrInvalidHeader),
			Entry("duplicate column", "date,A,A\n2021-01-04,1,2\n", data.ErrDuplicateColumn),
			Entry("duplicate date", "date,A\n2021-01-04,1\n2021-01-05,2\n2021-01-04,3\n", data.ErrDuplicateDate),
			Entry("bad number", "date,A\n2021-01-04,abc\n", data.ErrInvalidValue),
			Entry("bad date", "date,A\n01/04/2021,1\n", data.ErrInvalidDate),
			Entry("no rows", "date,A\n", data.ErrNoData),
		)
	})

	Context("when reading weight snapshots", func() {
		It("returns one snapshot per row", func() {
			history, err := data.ReadWeightHistory(strings.NewReader("date,A,B\n2021-02-01,0.5,0.5\n2021-01-01,1,\n"))
			Expect(err).To(BeNil())
			Expect(history).To(HaveLen(2))
			Expect(history[0]).To(HaveLen(1))
			Expect(history[0]["A"]).To(Equal(1.0))
			Expect(history[1]["B"]).To(Equal(0.5))
		})
	})

	Context("when reading returns", func() {
		It("drops missing periods", func() {
			df, err := data.ReadReturns(strings.NewReader("date,STRATEGY\n2021-01-04,0.01\n2021-01-05,NA\n2021-01-06,-0.02\n"))
			Expect(err).To(BeNil())
			Expect(df.Len()).To(Equal(2))
			Expect(df.Vals[0]).To(Equal([]float64{0.01, -0.02}))
		})

		It("requires a single column", func() {
			_, err := data.ReadReturns(strings.NewReader("date,A,B\n2021-01-04,0.01,0.02\n"))
			Expect(errors.Is(err, data.ErrInvalidHeader)).To(BeTrue())
		})
	})

	Context("when loading files", func() {
		var dir string

		BeforeEach(func() {
			dir = GinkgoT().TempDir()
		})

		It("loads prices from disk", func() {
			path := filepath.Join(dir, "prices.csv")
			Expect(os.WriteFile(path, []byte(prices), 0o600)).To(Succeed())

			df, err := data.LoadPrices(path)
			Expect(err).To(BeNil())
			Expect(df.Len()).To(Equal(4))
		})

		It("includes the path in errors", func() {
			path := filepath.Join(dir, "bad.csv")
			Expect(os.WriteFile(path, []byte("date,A,A\n"), 0o600)).To(Succeed())

			_, err := data.LoadPrices(path)
			Expect(errors.Is(err, data.ErrDuplicateColumn)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("bad.csv"))
		})

		It("loads weights and returns", func() {
			weights := filepath.Join(dir, "weights.csv")
			Expect(os.WriteFile(weights, []byte("date,A,B\n2021-01-01,0.4,0.6\n"), 0o600)).To(Succeed())
			history, err := data.LoadWeightHistory(weights)
			Expect(err).To(BeNil())
			Expect(history).To(HaveLen(1))

			returns := filepath.Join(dir, "returns.csv")
			Expect(os.WriteFile(returns, []byte("date,R\n2021-01-01,0.01\n2021-01-02,0.02\n"), 0o600)).To(Succeed())
			df, err := data.LoadReturns(returns)
			Expect(err).To(BeNil())
			Expect(df.Len()).To(Equal(2))
		})

		It("decompresses lz4 files", func() {
			path := filepath.Join(dir, "prices.csv.lz4")
			fh, err := common.CreateFile(path)
			Expect(err).To(BeNil())
			_, err = fh.Write([]byte(prices))
			Expect(err).To(BeNil())
			Expect(fh.Close()).To(Succeed())

			df, err := data.LoadPrices(path)
			Expect(err).To(BeNil())
			Expect(df.Len()).To(Equal(4))
			Expect(df.ColNames).To(Equal([]string{"VFINX", "PRIDX"}))
		})

		It("fails on a missing file", func() {
			_, err := data.LoadPrices(filepath.Join(dir, "missing.csv"))
			Expect(errors.Is(err, os.ErrNotExist)).To(BeTrue())
		})
	})
})

var _ = Describe("Interval", func() {
	It("parses optional bounds", func() {
		interval, err := data.ParseInterval("2021-01-05", "")
		Expect(err).To(BeNil())
		Expect(interval.Begin).To(Equal(time.Date(2021, 1, 5, 0, 0, 0, 0, time.UTC)))
		Expect(interval.End.IsZero()).To(BeTrue())
	})

	It("rejects inverted ranges", func() {
		_, err := data.ParseInterval("2021-02-01", "2021-01-01")
		Expect(errors.Is(err, data.ErrBeginAfterEnd)).To(BeTrue())
	})

	It("rejects bad dates", func() {
		_, err := data.ParseInterval("yesterday", "")
		Expect(errors.Is(err, data.ErrInvalidDate)).To(BeTrue())
	})

	It("trims a dataframe", func() {
		df, err := data.ReadPrices(strings.NewReader(prices))
		Expect(err).To(BeNil())

		interval, err := data.ParseInterval("2021-01-05", "2021-01-06")
		Expect(err).To(BeNil())
		trimmed := interval.Trim(df)
		Expect(trimmed.Len()).To(Equal(2))
		Expect(trimmed.Start()).To(Equal(time.Date(2021, 1, 5, 0, 0, 0, 0, time.UTC)))

		open := &data.Interval{}
		Expect(open.Trim(df).Len()).To(Equal(4))

		tail, err := data.ParseInterval("2021-01-06", "")
		Expect(err).To(BeNil())
		Expect(tail.Trim(df).Len()).To(Equal(2))
	})
})
