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
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/penny-vault/netfolio/cluster"
	"github.com/penny-vault/netfolio/dataframe"
	"github.com/penny-vault/netfolio/network"
	"github.com/rs/zerolog/log"
)

var (
	ErrEmptyUniverse   = errors.New("universe has no assets")
	ErrUnknownStrategy = errors.New("unknown allocation strategy")
	ErrMissingInput    = errors.New("allocation strategy is missing a required input")
)

// Universe is everything an allocation strategy may draw on. Strategies only
// read the fields they need.
type Universe struct {
	Assets       []string
	Returns      *dataframe.DataFrame
	Tree         *cluster.MergeTree
	Clusters     *cluster.Assignment
	ClusterCount int
	MST          *network.Graph
	Graph        *network.Graph
}

// Allocator converts a universe into a weight vector that sums to 1
type Allocator interface {
	Name() string
	Allocate(u *Universe) (Weights, error)
}

// AllocatorFactory creates a new allocator
type AllocatorFactory func() Allocator

var (
	registryLock sync.RWMutex
	registry     = make(map[string]AllocatorFactory)
)

func init() {
	Register(HRPName, NewHRP)
	Register(ClusterEqualWeightName, NewClusterEqualWeight)
	Register(EqualWeightName, NewEqualWeight)
	Register(MSTName, NewMST)
	Register(CentralityName, NewCentrality)
}

// Register makes an allocation strategy available under name
func Register(name string, factory AllocatorFactory) {
	registryLock.Lock()
	defer registryLock.Unlock()
	registry[name] = factory
}

// New returns the allocator registered under name
func New(name string) (Allocator, error) {
	registryLock.RLock()
	defer registryLock.RUnlock()

	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	return factory(), nil
}

// Strategies lists the registered strategy names in sorted order
func Strategies() []string {
	registryLock.RLock()
	defer registryLock.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Allocate runs the named strategy and verifies the resulting weights
func Allocate(name string, u *Universe) (Weights, error) {
	if u == nil || len(u.Assets) == 0 {
		return nil, ErrEmptyUniverse
	}

	alloc, err := New(name)
	if err != nil {
		return nil, err
	}

	weights, err := alloc.Allocate(u)
	if err != nil {
		return nil, err
	}

	if err := weights.Validate(); err != nil {
		log.Error().Err(err).Str("Strategy", name).Msg("allocation produced invalid weights")
		return nil, err
	}

	log.Debug().Str("Strategy", name).Int("Assets", len(weights)).Msg("computed allocation")
	return weights, nil
}

// proportional builds weights proportional to score, normalized to sum to 1
func proportional(assets []string, score func(asset string) float64) Weights {
	w := make(Weights, len(assets))
	for _, asset := range assets {
		w[asset] = score(asset)
	}
	return w.Normalize()
}
