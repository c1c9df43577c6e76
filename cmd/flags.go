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
	"fmt"

	"github.com/penny-vault/netfolio/analysis"
	"github.com/penny-vault/netfolio/portfolio"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// analysisFlags maps command line flags to keys in the analysis table
var analysisFlags = map[string]string{
	"frequency":      "frequency",
	"similarity":     "similarity",
	"threshold":      "threshold",
	"cluster-count":  "cluster_count",
	"linkage":        "linkage_method",
	"strategy":       "strategy",
	"sample":         "sample",
	"split-ratio":    "split_ratio",
	"denoise-window": "denoise_window",
	"concurrency":    "concurrency",
}

func addAnalysisFlags(cmd *cobra.Command) {
	defaults := analysis.DefaultConfig()
	flags := cmd.Flags()

	flags.String("frequency", defaults.Frequency, "Resample prices before computing returns: Daily, WeekBegin, WeekEnd, MonthBegin, MonthEnd, YearBegin or YearEnd")
	flags.String("similarity", defaults.Similarity, "Similarity measure: correlation, partial-correlation or mutual-information")
	flags.Float64("threshold", defaults.Threshold, "Minimum absolute similarity for an edge in the threshold graph")
	flags.Int("cluster-count", defaults.ClusterCount, "Number of clusters to cut the merge tree into")
	flags.String("linkage", defaults.LinkageMethod, "Linkage method: ward, single, complete or average")
	flags.String("strategy", defaults.Strategy, fmt.Sprintf("Allocation strategy: %v", portfolio.Strategies()))
	flags.String("sample", defaults.Sample, "Sample window: total, in-sample or out-of-sample")
	flags.Float64("split-ratio", defaults.SplitRatio, "Fraction of periods in the in-sample window")
	flags.Int("denoise-window", defaults.DenoiseWindow, "Moving average window used to denoise returns before estimation, 0 disables")
	flags.Int("concurrency", defaults.Concurrency, "Maximum number of analyses to run at the same time")
}

// bindAnalysisFlags binds the flags of cmd to viper. Binding happens right
// before the command runs so that commands sharing the flags don't override
// each other.
func bindAnalysisFlags(cmd *cobra.Command) error {
	for flag, key := range analysisFlags {
		if err := viper.BindPFlag(analysis.ConfigKey+"."+key, cmd.Flags().Lookup(flag)); err != nil {
			return err
		}
	}
	return nil
}
