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

package analysis

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// AnalyzeMany analyzes every request with at most cfg.Concurrency analyses in
// flight. Results are returned in request order. The first failing request
// cancels the others and its error is returned. Requests share nothing, so
// identical requests are computed independently.
func AnalyzeMany(ctx context.Context, reqs []*Request, cfg *Config) ([]*Result, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	results := make([]*Result, len(reqs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)

	for idx, req := range reqs {
		idx, req := idx, req
		g.Go(func() error {
			if req == nil {
				return fmt.Errorf("%w: request %d is nil", ErrInvalidRequest, idx)
			}

			res, err := Analyze(ctx, req, cfg)
			if err != nil {
				return fmt.Errorf("analysis %d (%s): %w", idx, req.Name, err)
			}

			results[idx] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info().Int("Requests", len(reqs)).Int("Concurrency", cfg.Concurrency).Msg("batch analysis complete")
	return results, nil
}
