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
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/penny-vault/netfolio/common"
	"github.com/penny-vault/netfolio/dataframe"
	"github.com/penny-vault/netfolio/portfolio"
	"github.com/rs/zerolog/log"
)

// DateLayout is the format of the date column
const DateLayout = "2006-01-02"

// tokens treated as a missing observation
var missingValues = []string{"", "NA", "NaN", "null"}

type csvRow struct {
	date time.Time
	line int
	vals []float64
}

// ReadPrices parses a wide table with a `date` column followed by one column per
// asset. Missing observations become NaN and rows are sorted by date.
func ReadPrices(r io.Reader) (*dataframe.DataFrame, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidHeader)
	}
	if err != nil {
		return nil, err
	}

	colNames, err := parseHeader(header)
	if err != nil {
		return nil, err
	}

	rows := make([]*csvRow, 0, 252)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		line, _ := reader.FieldPos(0)
		row, err := parseRow(record, line)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrNoData
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].date.Before(rows[j].date)
	})

	df := &dataframe.DataFrame{
		Dates:    make([]time.Time, len(rows)),
		ColNames: colNames,
		Vals:     make([][]float64, len(colNames)),
	}

	for colIdx := range df.Vals {
		df.Vals[colIdx] = make([]float64, len(rows))
	}

	for rowIdx, row := range rows {
		if rowIdx > 0 && row.date.Equal(rows[rowIdx-1].date) {
			return nil, fmt.Errorf("%w: %s on lines %d and %d", ErrDuplicateDate, row.date.Format(DateLayout), rows[rowIdx-1].line, row.line)
		}

		df.Dates[rowIdx] = row.date
		for colIdx, val := range row.vals {
			df.Vals[colIdx][rowIdx] = val
		}
	}

	log.Debug().Int("Rows", df.Len()).Strs("Columns", df.ColNames).Msg("read csv table")
	return df, nil
}

// LoadPrices reads a price table from a CSV file. Files ending in .lz4 are
// decompressed while reading.
func LoadPrices(path string) (*dataframe.DataFrame, error) {
	fh, err := common.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	df, err := ReadPrices(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return df, nil
}

// ReadWeightHistory parses a table of weight snapshots in the same layout as a
// price table. Each row is one snapshot; missing weights mean the asset was not
// held.
func ReadWeightHistory(r io.Reader) ([]portfolio.Weights, error) {
	df, err := ReadPrices(r)
	if err != nil {
		return nil, err
	}

	history := make([]portfolio.Weights, df.Len())
	for rowIdx := range history {
		history[rowIdx] = make(portfolio.Weights, df.ColCount())
		for colIdx, asset := range df.ColNames {
			val := df.Vals[colIdx][rowIdx]
			if math.IsNaN(val) {
				continue
			}
			history[rowIdx][asset] = val
		}
	}

	return history, nil
}

// LoadWeightHistory reads weight snapshots from a CSV file
func LoadWeightHistory(path string) ([]portfolio.Weights, error) {
	fh, err := common.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	history, err := ReadWeightHistory(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return history, nil
}

// ReadReturns parses a single series of per-period returns. Rows with a missing
// return are dropped.
func ReadReturns(r io.Reader) (*dataframe.DataFrame, error) {
	df, err := ReadPrices(r)
	if err != nil {
		return nil, err
	}

	if df.ColCount() != 1 {
		return nil, fmt.Errorf("%w: expected a single returns column, found %d", ErrInvalidHeader, df.ColCount())
	}

	return df.Drop(math.NaN()), nil
}

// LoadReturns reads a returns series from a CSV file
func LoadReturns(path string) (*dataframe.DataFrame, error) {
	fh, err := common.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	df, err := ReadReturns(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return df, nil
}

func parseHeader(header []string) ([]string, error) {
	if len(header) < 2 {
		return nil, fmt.Errorf("%w: need a date column and at least one value column", ErrInvalidHeader)
	}

	if !strings.EqualFold(strings.TrimSpace(header[0]), "date") {
		return nil, fmt.Errorf("%w: first column must be date, found %q", ErrInvalidHeader, header[0])
	}

	seen := make(map[string]bool, len(header))
	colNames := make([]string, 0, len(header)-1)
	for _, name := range header[1:] {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("%w: blank column name", ErrInvalidHeader)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateColumn, name)
		}
		seen[name] = true
		colNames = append(colNames, name)
	}

	return colNames, nil
}

func parseRow(record []string, line int) (*csvRow, error) {
	dt, err := time.Parse(DateLayout, strings.TrimSpace(record[0]))
	if err != nil {
		return nil, fmt.Errorf("%w: %q on line %d", ErrInvalidDate, record[0], line)
	}

	row := &csvRow{
		date: dt,
		line: line,
		vals: make([]float64, len(record)-1),
	}

	for idx, token := range record[1:] {
		token = strings.TrimSpace(token)
		if isMissing(token) {
			row.vals[idx] = math.NaN()
			continue
		}

		val, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q on line %d", ErrInvalidValue, token, line)
		}
		row.vals[idx] = val
	}

	return row, nil
}

func isMissing(token string) bool {
	for _, missing := range missingValues {
		if strings.EqualFold(token, missing) {
			return true
		}
	}
	return false
}
