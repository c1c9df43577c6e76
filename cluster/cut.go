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

package cluster

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Assignment maps every asset to a cluster label in 1..Count()
type Assignment struct {
	Assets []string
	Labels []int
}

// Label returns the cluster of asset or 0 if the asset is unknown
func (a *Assignment) Label(asset string) int {
	for idx, name := range a.Assets {
		if name == asset {
			return a.Labels[idx]
		}
	}
	return 0
}

// Count returns the number of distinct clusters
func (a *Assignment) Count() int {
	maxLabel := 0
	for _, label := range a.Labels {
		if label > maxLabel {
			maxLabel = label
		}
	}
	return maxLabel
}

// Members returns the assets of each cluster; Members()[0] holds cluster 1
func (a *Assignment) Members() [][]string {
	members := make([][]string, a.Count())
	for idx, label := range a.Labels {
		members[label-1] = append(members[label-1], a.Assets[idx])
	}
	return members
}

// Map returns the assignment as asset => label
func (a *Assignment) Map() map[string]int {
	res := make(map[string]int, len(a.Assets))
	for idx, name := range a.Assets {
		res[name] = a.Labels[idx]
	}
	return res
}

func (a *Assignment) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Map())
}

// Cut partitions the leaves into exactly k clusters by applying the first N-k
// merges. Requesting k >= N returns every asset in its own cluster. Cluster
// labels are numbered 1..k in order of first appearance in the asset list.
func (t *MergeTree) Cut(k int) (*Assignment, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidClusterCount, k)
	}

	n := t.Len()
	applied := n - k
	if applied < 0 {
		applied = 0
	}
	if applied > len(t.Merges) {
		applied = len(t.Merges)
	}

	return t.assign(applied), nil
}

// CutDistance partitions the leaves by applying every merge whose distance is
// less than or equal to threshold
func (t *MergeTree) CutDistance(threshold float64) *Assignment {
	applied := 0
	for _, m := range t.Merges {
		if m.Distance > threshold {
			break
		}
		applied++
	}
	return t.assign(applied)
}

func (t *MergeTree) assign(applied int) *Assignment {
	n := t.Len()
	parent := make([]int, n+applied)
	for idx := range parent {
		parent[idx] = -1
	}

	for k := 0; k < applied; k++ {
		parent[t.Merges[k].Left] = n + k
		parent[t.Merges[k].Right] = n + k
	}

	res := &Assignment{
		Assets: append([]string{}, t.Assets...),
		Labels: make([]int, n),
	}

	labels := make(map[int]int)
	for leaf := 0; leaf < n; leaf++ {
		root := leaf
		for parent[root] != -1 {
			root = parent[root]
		}

		label, ok := labels[root]
		if !ok {
			label = len(labels) + 1
			labels[root] = label
		}
		res.Labels[leaf] = label
	}

	return res
}
