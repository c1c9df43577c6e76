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
	"errors"
	"fmt"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/penny-vault/netfolio/cluster"
	"github.com/penny-vault/netfolio/dataframe"
	"github.com/penny-vault/netfolio/network"
	"github.com/penny-vault/netfolio/portfolio"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

var (
	ErrInvalidConfig  = errors.New("invalid analysis configuration")
	ErrInvalidRequest = errors.New("invalid analysis request")
)

const (
	SampleTotal = "total"
	SampleIn    = "in-sample"
	SampleOut   = "out-of-sample"
	ConfigKey   = "analysis"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Config controls every stage of an analysis. Values are read from the
// `analysis` table of the configuration file.
type Config struct {
	Frequency     string  `mapstructure:"frequency" toml:"frequency" json:"frequency" default:"Daily" validate:"oneof=Daily WeekBegin WeekEnd MonthBegin MonthEnd YearBegin YearEnd"`
	Similarity    string  `mapstructure:"similarity" toml:"similarity" json:"similarity" default:"correlation" validate:"oneof=correlation partial-correlation mutual-information"`
	Threshold     float64 `mapstructure:"threshold" toml:"threshold" json:"threshold" default:"0.5" validate:"gte=0,lte=1"`
	ClusterCount  int     `mapstructure:"cluster_count" toml:"cluster_count" json:"clusterCount" default:"2" validate:"gte=1"`
	LinkageMethod string  `mapstructure:"linkage_method" toml:"linkage_method" json:"linkageMethod" default:"ward" validate:"oneof=ward single complete average"`
	Strategy      string  `mapstructure:"strategy" toml:"strategy" json:"strategy" default:"hrp" validate:"required"`
	Sample        string  `mapstructure:"sample" toml:"sample" json:"sample" default:"total" validate:"oneof=total in-sample out-of-sample"`
	SplitRatio    float64 `mapstructure:"split_ratio" toml:"split_ratio" json:"splitRatio" default:"0.7" validate:"gt=0,lte=1"`
	DenoiseWindow int     `mapstructure:"denoise_window" toml:"denoise_window" json:"denoiseWindow" default:"0" validate:"gte=0"`
	Concurrency   int     `mapstructure:"concurrency" toml:"concurrency" json:"concurrency" default:"4" validate:"gte=1"`
}

// DefaultConfig returns a configuration with every field set to its default
func DefaultConfig() *Config {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		log.Panic().Err(err).Msg("could not set configuration defaults")
	}
	return cfg
}

// ConfigFromViper starts from the defaults and overrides every key present in
// the `analysis` section of viper. Flags and environment variables bound to
// nested keys are included.
func ConfigFromViper() (*Config, error) {
	settings := struct {
		Analysis *Config `mapstructure:"analysis"`
	}{
		Analysis: DefaultConfig(),
	}

	if err := viper.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}

	if err := settings.Analysis.Validate(); err != nil {
		return nil, err
	}

	return settings.Analysis, nil
}

// Validate checks the field constraints and that the strategy is registered
func (cfg *Config) Validate() error {
	if err := validate.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			msgs := make([]string, 0, len(validationErrors))
			for _, fe := range validationErrors {
				msgs = append(msgs, fieldMessage(fe))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}

	if _, err := portfolio.New(cfg.Strategy); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}

func (cfg *Config) PriceFrequency() dataframe.Frequency {
	return dataframe.Frequency(cfg.Frequency)
}

func (cfg *Config) SimilarityKind() network.Kind {
	return network.Kind(cfg.Similarity)
}

func (cfg *Config) Linkage() cluster.Method {
	return cluster.Method(cfg.LinkageMethod)
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
