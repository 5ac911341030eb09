// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Thermoquad/cellstat/pkg/scooter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the runtime configuration merged from file, environment and flags
type Config struct {
	ClientID string `mapstructure:"client_id"`
	VIN      string `mapstructure:"vin"`
	Model    string `mapstructure:"model"`
	Logging  struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"logging"`
	Output struct {
		Format string `mapstructure:"format"`
	} `mapstructure:"output"`
	Models map[string][]string `mapstructure:"models"`
}

var (
	config Config
	labels = scooter.DefaultLabels()
)

// Output formats
const (
	formatText = "text"
	formatJSON = "json"
	formatCBOR = "cbor"
)

// bindFlags maps persistent flags onto their config keys so flags override the file
func bindFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	for key, flag := range map[string]string{
		"client_id":      "client-id",
		"vin":            "vin",
		"model":          "model",
		"logging.level":  "log-level",
		"logging.format": "log-format",
		"output.format":  "output",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

func setConfigDefaults() {
	viper.SetDefault("client_id", scooter.DefaultClientID)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", formatText)
	viper.SetDefault("output.format", formatText)
}

// loadConfig reads the optional config file and unmarshals the merged settings
func loadConfig(path string) error {
	setConfigDefaults()

	viper.SetEnvPrefix("CELLSTAT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("cellstat")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "cellstat"))
		}
		viper.AddConfigPath("/etc/cellstat")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return errors.Wrap(err, "error reading config file")
		}
	}

	config = Config{}
	if err := viper.Unmarshal(&config); err != nil {
		return errors.Wrap(err, "error unmarshaling config")
	}

	switch config.Output.Format {
	case formatText, formatJSON, formatCBOR:
	default:
		return errors.Errorf("unknown output format %q (text, json, cbor)", config.Output.Format)
	}

	return applyModelLabels(config.Models)
}

// applyModelLabels extends the NTC label table with models from the config file
func applyModelLabels(models map[string][]string) error {
	labels = scooter.DefaultLabels()
	for name, names := range models {
		if len(names) != scooter.MainNTCChannels {
			return errors.Errorf("model %q: expected %d NTC labels, got %d", name, scooter.MainNTCChannels, len(names))
		}
		var l scooter.NTCLabels
		copy(l[:], names)
		labels.Set(name, l)
	}
	return nil
}

// modelLabels returns the NTC labels for a sample, preferring the sample's own model
func modelLabels(sampleModel string) scooter.NTCLabels {
	if sampleModel != "" {
		return labels.Lookup(sampleModel)
	}
	return labels.Lookup(config.Model)
}
