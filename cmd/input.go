// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"bytes"
	"io"
	"os"

	"github.com/Thermoquad/cellstat/pkg/scooter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// maxSampleLine bounds a single JSON line; token arrays are well under this
const maxSampleLine = 1 << 20

// openInput opens the file named by args[0], or stdin when absent or "-".
// Reading an interactive terminal is refused so the command does not hang.
func openInput(cmd *cobra.Command, args []string) (io.ReadCloser, string, error) {
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, "", errors.Wrapf(err, "unable to open %s", args[0])
		}
		return f, args[0], nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return nil, "", errors.New("no input: pass a file or pipe samples on stdin")
	}
	return io.NopCloser(in), "stdin", nil
}

// readSamples reads and parses every sample from the command input
func readSamples(cmd *cobra.Command, args []string) ([]scooter.Sample, string, error) {
	r, source, err := openInput(cmd, args)
	if err != nil {
		return nil, "", err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", errors.Wrapf(err, "unable to read %s", source)
	}

	samples, err := scooter.ParseSamples(data)
	if err != nil {
		return nil, "", errors.Wrapf(err, "unable to parse %s", source)
	}
	return samples, source, nil
}

// streamSamples calls fn for every sample as it arrives. A JSON array is read
// whole; anything else is treated as JSON lines and a bad line is reported to
// fn without stopping the stream. Returning false from fn stops reading.
func streamSamples(r io.Reader, fn func(s *scooter.Sample, err error) bool) error {
	br := bufio.NewReader(r)

	for {
		b, err := br.Peek(1)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "unable to read samples")
		}
		if !isSpace(b[0]) {
			break
		}
		br.ReadByte()
	}

	if b, _ := br.Peek(1); b[0] == '[' {
		data, err := io.ReadAll(br)
		if err != nil {
			return errors.Wrap(err, "unable to read samples")
		}
		samples, err := scooter.ParseSamples(data)
		if err != nil {
			fn(nil, err)
			return nil
		}
		for i := range samples {
			if !fn(&samples[i], nil) {
				return nil
			}
		}
		return nil
	}

	scanner := bufio.NewScanner(br)
	scanner.Buffer(make([]byte, 64*1024), maxSampleLine)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		s, err := scooter.ParseSample(line)
		if !fn(s, err) {
			return nil
		}
	}
	return errors.Wrap(scanner.Err(), "unable to read samples")
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
