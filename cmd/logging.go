// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// logger is shared by every command. Results go to stdout, logs to stderr.
var logger = logrus.New()

func setupLogging(out io.Writer) error {
	level, err := logrus.ParseLevel(config.Logging.Level)
	if err != nil {
		return errors.Wrapf(err, "invalid log level %q", config.Logging.Level)
	}

	logger.SetOutput(out)
	logger.SetLevel(level)

	switch config.Logging.Format {
	case "", formatText:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05.000",
		})
	case formatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return errors.Errorf("unknown log format %q (text, json)", config.Logging.Format)
	}

	return nil
}
