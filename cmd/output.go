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

package cmd

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"github.com/penny-vault/netfolio/analysis"
	"github.com/penny-vault/netfolio/common"
	"github.com/penny-vault/netfolio/portfolio"
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
)

var ErrUnknownFormat = errors.New("unknown output format")

func checkFormat(format string) error {
	switch format {
	case FormatTable, FormatJSON:
		return nil
	default:
		return fmt.Errorf("%w: %q (expected %s or %s)", ErrUnknownFormat, format, FormatTable, FormatJSON)
	}
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// openOutput returns stdout when path is empty
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return common.CreateFile(path)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatValue renders undefined metrics as a dash
func formatValue(val float64) string {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return "-"
	}
	return fmt.Sprintf("%.4f", val)
}

func writeResults(w io.Writer, results []*analysis.Result) {
	for idx, result := range results {
		if idx > 0 {
			fmt.Fprintln(w)
		}
		writeResult(w, result)
	}
}

func writeResult(w io.Writer, result *analysis.Result) {
	title := result.Name
	if title == "" {
		title = result.ID
	}

	fmt.Fprintf(w, "%s\n", title)
	fmt.Fprintf(w, "%s\n", strings.Repeat("=", len(title)))
	fmt.Fprintf(w, "Period:      %s to %s\n", result.Start.Format("2006-01-02"), result.End.Format("2006-01-02"))
	fmt.Fprintf(w, "Strategy:    %s\n", result.Config.Strategy)
	fmt.Fprintf(w, "Fingerprint: %s\n", result.Fingerprint)
	fmt.Fprintf(w, "Clusters:    %d\n", result.Clusters.Count())
	fmt.Fprintf(w, "Edges:       %d (threshold %.2f), tree %d\n\n", result.Graph.EdgeCount(), result.Config.Threshold, result.MST.EdgeCount())

	writeWeights(w, result)
	fmt.Fprintln(w)
	writeReport(w, result.Report)
}

func writeWeights(w io.Writer, result *analysis.Result) {
	table := tablewriter.NewWriter(w)
	header := []string{"Asset", "Cluster", "Weight"}
	centrality := result.Report.Centrality
	if centrality != nil {
		header = append(header, "Degree", "Betweenness", "Eigenvector")
	}
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, pair := range result.Weights.Pairs() {
		row := []string{
			pair.Key,
			fmt.Sprintf("%d", result.Clusters.Label(pair.Key)),
			fmt.Sprintf("%.2f%%", pair.Value*100),
		}
		if centrality != nil {
			row = append(row,
				formatValue(centrality.Degree[pair.Key]),
				formatValue(centrality.Betweenness[pair.Key]),
				formatValue(centrality.Eigenvector[pair.Key]),
			)
		}
		table.Append(row)
	}

	footer := make([]string, len(header))
	footer[0] = "Total"
	footer[2] = fmt.Sprintf("%.2f%%", result.Weights.Sum()*100)
	table.SetFooter(footer)

	table.Render()
}

func writeReport(w io.Writer, report *portfolio.Report) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetBorder(false)

	metrics := report.Metrics()
	for _, name := range common.SortedKeys(metrics) {
		table.Append([]string{name, formatValue(metrics[name])})
	}
	table.SetFooter([]string{"Periods", fmt.Sprintf("%d", report.Periods)})

	table.Render()
}
