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

package portfolio

import (
	"fmt"
)

const (
	ClusterEqualWeightName = "cluster-equal-weight"
	EqualWeightName        = "equal-weight"
)

// ClusterEqualWeight gives each cluster an equal share of the portfolio and splits
// that share equally between the members of the cluster. Clusters come from
// Universe.Clusters or, when absent, from cutting Universe.Tree into
// Universe.ClusterCount clusters.
type ClusterEqualWeight struct{}

func NewClusterEqualWeight() Allocator {
	return &ClusterEqualWeight{}
}

func (c *ClusterEqualWeight) Name() string {
	return ClusterEqualWeightName
}

func (c *ClusterEqualWeight) Allocate(u *Universe) (Weights, error) {
	if u == nil || len(u.Assets) == 0 {
		return nil, ErrEmptyUniverse
	}

	assign := u.Clusters
	if assign == nil {
		if u.Tree == nil {
			return nil, fmt.Errorf("%w: cluster-equal-weight requires clusters or a merge tree", ErrMissingInput)
		}

		var err error
		if assign, err = u.Tree.Cut(u.ClusterCount); err != nil {
			return nil, err
		}
	}

	members := assign.Members()
	weights := make(Weights, len(assign.Assets))
	for _, group := range members {
		share := 1.0 / float64(len(members)) / float64(len(group))
		for _, asset := range group {
			weights[asset] = share
		}
	}

	return weights, nil
}

// EqualWeight assigns 1/N to each asset
type EqualWeight struct{}

func NewEqualWeight() Allocator {
	return &EqualWeight{}
}

func (e *EqualWeight) Name() string {
	return EqualWeightName
}

func (e *EqualWeight) Allocate(u *Universe) (Weights, error) {
	if u == nil || len(u.Assets) == 0 {
		return nil, ErrEmptyUniverse
	}

	return proportional(u.Assets, func(string) float64 { return 1 }), nil
}
