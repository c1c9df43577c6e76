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

package data

import (
	"os"
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/penny-vault/netfolio/dataframe"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

type cacheEntry struct {
	modTime time.Time
	size    int64
	df      *dataframe.DataFrame
}

// PriceCache keeps parsed price tables in memory keyed by file path. A cached
// table is reused while the size and modification time of its file are
// unchanged. Concurrent loads of the same file share a single read.
type PriceCache struct {
	tables *lru.Cache
	group  singleflight.Group
}

// NewPriceCache creates a cache holding at most size price tables
func NewPriceCache(size int) (*PriceCache, error) {
	tables, err := lru.New(size)
	if err != nil {
		log.Error().Err(err).Int("Size", size).Msg("could not create LRU cache")
		return nil, err
	}

	return &PriceCache{tables: tables}, nil
}

// Len returns the number of cached tables
func (pc *PriceCache) Len() int {
	return pc.tables.Len()
}

// LoadPrices returns the price table stored at path, reading the file only when
// it is not cached or has changed. Callers receive their own copy.
func (pc *PriceCache) LoadPrices(path string) (*dataframe.DataFrame, error) {
	key, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(key)
	if err != nil {
		return nil, err
	}

	if val, ok := pc.tables.Get(key); ok {
		entry := val.(*cacheEntry)
		if entry.size == info.Size() && entry.modTime.Equal(info.ModTime()) {
			log.Debug().Str("Path", key).Msg("price cache hit")
			return entry.df.Copy(), nil
		}
	}

	res, err, shared := pc.group.Do(key, func() (interface{}, error) {
		df, err := LoadPrices(key)
		if err != nil {
			return nil, err
		}

		pc.tables.Add(key, &cacheEntry{
			modTime: info.ModTime(),
			size:    info.Size(),
			df:      df,
		})
		return df, nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug().Str("Path", key).Bool("Shared", shared).Msg("price cache miss")
	return res.(*dataframe.DataFrame).Copy(), nil
}
