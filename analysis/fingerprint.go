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
	"encoding/binary"
	"encoding/hex"
	"errors"
	"io"
	"math"

	"github.com/penny-vault/netfolio/dataframe"
	"github.com/rs/zerolog/log"
	"github.com/zeebo/blake3"
)

var ErrGenerateHash = errors.New("could not generate hash")

const fingerprintSize = 16

// Fingerprint calculates a 16-byte blake3 hash of the dates, column names and
// values of df. Identical tables always produce the same fingerprint.
func Fingerprint(df *dataframe.DataFrame) (string, error) {
	h := blake3.New()
	if err := writeFrame(h, df); err != nil {
		return "", err
	}
	return digest(h)
}

func writeFrame(w io.Writer, df *dataframe.DataFrame) error {
	if df == nil {
		return nil
	}

	for _, dt := range df.Dates {
		// NOTE: casting to uint64 doesn't change the sign bit here
		if err := binary.Write(w, binary.LittleEndian, uint64(dt.UTC().Unix())); err != nil {
			log.Error().Err(err).Msg("could not write date to blake3 hasher")
			return err
		}
	}

	for idx, name := range df.ColNames {
		if _, err := w.Write([]byte(name)); err != nil {
			log.Error().Err(err).Msg("could not write column name to blake3 hasher")
			return err
		}

		for _, val := range df.Vals[idx] {
			if err := binary.Write(w, binary.LittleEndian, math.Float64bits(val)); err != nil {
				log.Error().Err(err).Msg("could not write value to blake3 hasher")
				return err
			}
		}
	}

	return nil
}

func digest(h *blake3.Hasher) (string, error) {
	buf := make([]byte, fingerprintSize)
	n, err := h.Digest().Read(buf)
	if err != nil {
		return "", err
	}
	if n != fingerprintSize {
		return "", ErrGenerateHash
	}
	return hex.EncodeToString(buf), nil
}
