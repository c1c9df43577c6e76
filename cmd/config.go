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
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/penny-vault/netfolio/analysis"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type logSettings struct {
	Level        string `toml:"level"`
	ReportCaller bool   `toml:"report_caller"`
	Output       string `toml:"output"`
	Pretty       bool   `toml:"pretty"`
}

type settingsFile struct {
	Log      logSettings      `toml:"log"`
	Analysis *analysis.Config `toml:"analysis"`
}

var showDefaults bool

func init() {
	configCmd.Flags().BoolVar(&showDefaults, "defaults", false, "print the default configuration instead of the effective one")
	addAnalysisFlags(configCmd)

	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the configuration as TOML",
	Long: `Print the configuration after merging the config file, environment
variables and flags. The output can be saved as config.toml.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindAnalysisFlags(cmd)
	},
	Run: func(cmd *cobra.Command, args []string) {
		settings := settingsFile{
			Log: logSettings{
				Level:        viper.GetString("log.level"),
				ReportCaller: viper.GetBool("log.report_caller"),
				Output:       viper.GetString("log.output"),
				Pretty:       viper.GetBool("log.pretty"),
			},
		}

		if showDefaults {
			settings.Analysis = analysis.DefaultConfig()
		} else {
			cfg, err := analysis.ConfigFromViper()
			if err != nil {
				log.Fatal().Err(err).Msg("invalid configuration")
			}
			settings.Analysis = cfg
		}

		if err := toml.NewEncoder(os.Stdout).Encode(settings); err != nil {
			log.Fatal().Err(err).Msg("could not encode configuration")
		}
	},
}
