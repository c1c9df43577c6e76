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

	"github.com/penny-vault/netfolio/network"
)

const (
	MSTName        = "mst"
	CentralityName = "centrality"
)

// MST weights each asset in inverse proportion to its degree in the minimum
// spanning tree, favoring peripheral assets over hubs
type MST struct{}

func NewMST() Allocator {
	return &MST{}
}

func (m *MST) Name() string {
	return MSTName
}

func (m *MST) Allocate(u *Universe) (Weights, error) {
	if u == nil || len(u.Assets) == 0 {
		return nil, ErrEmptyUniverse
	}

	if u.MST == nil {
		return nil, fmt.Errorf("%w: mst strategy requires a minimum spanning tree", ErrMissingInput)
	}

	return proportional(u.Assets, func(asset string) float64 {
		deg := u.MST.Degree(asset)
		if deg < 1 {
			deg = 1
		}
		return 1 / float64(deg)
	}), nil
}

// Centrality weights each asset by 1 / (1 + degree centrality) in the threshold
// graph so tightly connected assets receive less capital
type Centrality struct{}

func NewCentrality() Allocator {
	return &Centrality{}
}

func (c *Centrality) Name() string {
	return CentralityName
}

func (c *Centrality) Allocate(u *Universe) (Weights, error) {
	if u == nil || len(u.Assets) == 0 {
		return nil, ErrEmptyUniverse
	}

	if u.Graph == nil {
		return nil, fmt.Errorf("%w: centrality strategy requires a threshold graph", ErrMissingInput)
	}

	deg := network.DegreeCentrality(u.Graph)
	return proportional(u.Assets, func(asset string) float64 {
		return 1 / (1 + deg[asset])
	}), nil
}
