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
	"github.com/rs/zerolog"
)

func (w Weights) MarshalZerologObject(e *zerolog.Event) {
	for _, pair := range w.Pairs() {
		e.Float64(pair.Key, pair.Value)
	}
}

func (r *Report) MarshalZerologObject(e *zerolog.Event) {
	e.Int("Periods", r.Periods)
	e.Float64("MeanReturn", r.MeanReturn)
	e.Float64("Volatility", r.Volatility)
	e.Float64("SharpeRatio", r.SharpeRatio)
	e.Float64("SortinoRatio", r.SortinoRatio)
	e.Float64("MaxDrawDown", r.MaxDrawDown)
	e.Float64("CalmarRatio", r.CalmarRatio)
	e.Float64("Alpha", r.Alpha)
	e.Float64("Beta", r.Beta)
	e.Float64("Turnover", r.Turnover)
}
