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

package common_test

import (
	"bytes"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/netfolio/common"
)

var _ = Describe("Util", func() {
	It("sorts pairs by descending value then key", func() {
		pairs := common.SortedPairs(map[string]float64{"B": 0.25, "A": 0.25, "C": 0.5})
		Expect(pairs).To(Equal(common.PairList{
			{Key: "C", Value: 0.5},
			{Key: "A", Value: 0.25},
			{Key: "B", Value: 0.25},
		}))
	})

	It("sorts keys", func() {
		Expect(common.SortedKeys(map[string]int{"b": 1, "a": 2, "c": 3})).To(Equal([]string{"a", "b", "c"}))
		Expect(common.SortedKeys(map[string]int{})).To(BeEmpty())
	})
})

var _ = Describe("JSON", func() {
	It("serializes undefined values as null", func() {
		out, err := json.Marshal(struct {
			A *float64            `json:"a"`
			B []*float64          `json:"b"`
			C map[string]*float64 `json:"c"`
		}{
			A: common.Nullable(math.NaN()),
			B: common.NullableSlice([]float64{1.5, math.Inf(1)}),
			C: common.NullableMap(map[string]float64{"x": math.NaN()}),
		})
		Expect(err).To(BeNil())
		Expect(string(out)).To(Equal(`{"a":null,"b":[1.5,null],"c":{"x":null}}`))
	})

	It("keeps finite values", func() {
		Expect(*common.Nullable(0.25)).To(Equal(0.25))
		Expect(common.NullableMap(nil)).To(BeNil())
	})
})

var _ = Describe("Version", func() {
	It("describes the running build", func() {
		build := common.CurrentBuild()
		Expect(build.Version).To(Equal(common.CurrentVersion))
		Expect(build.String()).To(HavePrefix("netfolio v" + common.CurrentVersion.String()))
		Expect(build.GoVersion).ToNot(BeEmpty())
	})

	It("reports unknown commit and date", func() {
		build := &common.BuildInfo{
			Version:   common.Version{Major: 2},
			GoVersion: "go1.21.3",
			Platform:  "linux/amd64",
		}
		Expect(build.String()).To(Equal("netfolio v2.0.0 linux/amd64\n\nBuild Date: unknown\nCommit: unknown\nBuilt with: go1.21.3"))
	})

	It("lists compiled-in modules", func() {
		build := &common.BuildInfo{Modules: []common.Module{
			{Path: "gonum.org/v1/gonum", Version: "v0.14.0"},
			{Path: "github.com/rs/zerolog", Version: "v1.31.0"},
		}}

		var buf bytes.Buffer
		build.WriteModules(&buf)
		out := buf.String()
		Expect(out).To(ContainSubstring("Module"))
		Expect(out).To(ContainSubstring("gonum.org/v1/gonum"))
		Expect(out).To(ContainSubstring("v1.31.0"))
	})

	It("formats pre-release versions", func() {
		v := common.Version{Major: 1, Minor: 2, Patch: 3, Suffix: "dev"}
		Expect(v.String()).To(HavePrefix("1.2.3-dev"))
		Expect(common.Version{Major: 1}.String()).To(Equal("1.0.0"))
	})
})

var _ = Describe("Files", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("round trips lz4 compressed files", func() {
		path := filepath.Join(dir, "report.json.lz4")
		contents := []byte(`{"periods":249}`)

		w, err := common.CreateFile(path)
		Expect(err).To(BeNil())
		_, err = w.Write(contents)
		Expect(err).To(BeNil())
		Expect(w.Close()).To(Succeed())

		raw, err := os.ReadFile(path)
		Expect(err).To(BeNil())
		Expect(raw).ToNot(Equal(contents))

		r, err := common.OpenFile(path)
		Expect(err).To(BeNil())
		defer r.Close()
		out, err := io.ReadAll(r)
		Expect(err).To(BeNil())
		Expect(out).To(Equal(contents))
	})

	It("leaves other files uncompressed", func() {
		path := filepath.Join(dir, "report.json")

		w, err := common.CreateFile(path)
		Expect(err).To(BeNil())
		_, err = w.Write([]byte("plain"))
		Expect(err).To(BeNil())
		Expect(w.Close()).To(Succeed())

		raw, err := os.ReadFile(path)
		Expect(err).To(BeNil())
		Expect(string(raw)).To(Equal("plain"))
	})
})
