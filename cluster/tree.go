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
	"errors"
	"fmt"
)

var (
	ErrInvalidClusterCount = errors.New("cluster count must be at least 1")
	ErrInvalidTree         = errors.New("merge tree is malformed")
	ErrNonMonotonic        = errors.New("merge distances are not non-decreasing")
	ErrUnknownLinkage      = errors.New("unknown linkage method")
)

// MonotonicTolerance is the amount a merge distance may drop below its
// predecessor before the tree is considered non-monotonic
const MonotonicTolerance = 1.0e-12

// Merge joins two nodes of the tree. Leaves have ids 0..N-1 and the k-th merge
// creates node N+k. Left is always the smaller of the two ids.
type Merge struct {
	Left     int     `json:"left"`
	Right    int     `json:"right"`
	Distance float64 `json:"distance"`
	Size     int     `json:"size"`
}

// MergeTree is the binary dendrogram produced by agglomerative clustering
type MergeTree struct {
	Assets []string `json:"assets"`
	Merges []Merge  `json:"merges"`
}

// Len returns the number of leaves in the tree
func (t *MergeTree) Len() int {
	return len(t.Assets)
}

// Root returns the id of the root node
func (t *MergeTree) Root() int {
	if len(t.Merges) == 0 {
		return 0
	}
	return t.Len() + len(t.Merges) - 1
}

// IsLeaf reports whether node is a leaf
func (t *MergeTree) IsLeaf(node int) bool {
	return node >= 0 && node < t.Len()
}

// Children returns the two children of an internal node; ok is false for leaves
// and unknown nodes
func (t *MergeTree) Children(node int) (left, right int, ok bool) {
	idx := node - t.Len()
	if idx < 0 || idx >= len(t.Merges) {
		return -1, -1, false
	}
	return t.Merges[idx].Left, t.Merges[idx].Right, true
}

// Leaves returns the leaf indices under node in dendrogram order (left before right)
func (t *MergeTree) Leaves(node int) []int {
	if t.IsLeaf(node) {
		return []int{node}
	}

	left, right, ok := t.Children(node)
	if !ok {
		return nil
	}
	return append(t.Leaves(left), t.Leaves(right)...)
}

// Order returns every asset in dendrogram leaf order
func (t *MergeTree) Order() []string {
	if t.Len() == 0 {
		return []string{}
	}

	leaves := t.Leaves(t.Root())
	order := make([]string, len(leaves))
	for idx, leaf := range leaves {
		order[idx] = t.Assets[leaf]
	}
	return order
}

// Validate checks the structure of the tree: N-1 merges, each node merged at most
// once, consistent sizes and non-decreasing merge distances
func (t *MergeTree) Validate() error {
	n := t.Len()
	if n == 0 {
		return fmt.Errorf("%w: no leaves", ErrInvalidTree)
	}

	if len(t.Merges) != n-1 {
		return fmt.Errorf("%w: expected %d merges, have %d", ErrInvalidTree, n-1, len(t.Merges))
	}

	size := make([]int, 2*n-1)
	used := make([]bool, 2*n-1)
	for idx := 0; idx < n; idx++ {
		size[idx] = 1
	}

	for k, m := range t.Merges {
		id := n + k
		if m.Left < 0 || m.Right < 0 || m.Left >= id || m.Right >= id || m.Left == m.Right {
			return fmt.Errorf("%w: merge %d references invalid nodes %d and %d", ErrInvalidTree, k, m.Left, m.Right)
		}

		if used[m.Left] || used[m.Right] {
			return fmt.Errorf("%w: merge %d reuses a node", ErrInvalidTree, k)
		}
		used[m.Left] = true
		used[m.Right] = true

		size[id] = size[m.Left] + size[m.Right]
		if size[id] != m.Size {
			return fmt.Errorf("%w: merge %d has size %d, expected %d", ErrInvalidTree, k, m.Size, size[id])
		}

		if k > 0 && m.Distance < t.Merges[k-1].Distance-MonotonicTolerance {
			return fmt.Errorf("%w: merge %d at %f follows %f", ErrNonMonotonic, k, m.Distance, t.Merges[k-1].Distance)
		}
	}

	return nil
}
