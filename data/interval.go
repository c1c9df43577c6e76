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
	"fmt"
	"time"

	"github.com/penny-vault/netfolio/dataframe"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Intervals store a beginning and ending time period. A zero Begin or End leaves
// that side of the interval open.
type Interval struct {
	Begin time.Time
	End   time.Time
}

// ParseInterval builds an interval from two optional YYYY-MM-DD strings
func ParseInterval(begin, end string) (*Interval, error) {
	interval := &Interval{}

	if begin != "" {
		dt, err := time.Parse(DateLayout, begin)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDate, begin)
		}
		interval.Begin = dt
	}

	if end != "" {
		dt, err := time.Parse(DateLayout, end)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDate, end)
		}
		interval.End = dt
	}

	if err := interval.Valid(); err != nil {
		return nil, err
	}

	return interval, nil
}

// Valid checks if the given interval is valid range and returns an error if not
func (interval *Interval) Valid() error {
	if !interval.Begin.IsZero() && !interval.End.IsZero() && interval.Begin.After(interval.End) {
		return ErrBeginAfterEnd
	}

	return nil
}

// Trim restricts df to the rows inside the interval
func (interval *Interval) Trim(df *dataframe.DataFrame) *dataframe.DataFrame {
	if interval.Begin.IsZero() && interval.End.IsZero() {
		return df
	}

	begin := interval.Begin
	if begin.IsZero() {
		begin = df.Start()
	}

	end := interval.End
	if end.IsZero() {
		end = df.End()
	}

	trimmed := df.Trim(begin, end)
	log.Debug().Object("Interval", interval).Int("Rows", df.Len()).Int("Kept", trimmed.Len()).Msg("trimmed to interval")
	return trimmed
}

// MarshalZerologObject implement the log marshaller interface for zerolog
func (interval *Interval) MarshalZerologObject(e *zerolog.Event) {
	e.Time("Begin", interval.Begin).Time("End", interval.End)
}
