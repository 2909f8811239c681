// Pyedx - EdX Learning Analytics Event Normalization and Geolocation
// Copyright 2026 EPFL Center for Digital Education (CEDE)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/epfl-cede/pyedx

package pipeline

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
)

// ErrOutputExists means the output path is already occupied and the run
// was not asked to replace it. An existing clean file is never silently
// overwritten.
var ErrOutputExists = errors.New("output file already exists")

// SaveDocuments saves documents as JSON lines, gzip-compressed when the
// path ends in .gz. With replace false an existing file fails the run
// before a single byte is written.
func SaveDocuments(path string, docs []any, replace bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !replace {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%w: %s", ErrOutputExists, path)
		}
		return err
	}

	var w io.Writer = f
	var gz *gzip.Writer
	if strings.HasSuffix(path, ".gz") {
		gz = gzip.NewWriter(f)
		w = gz
	}
	buf := bufio.NewWriter(w)

	for _, doc := range docs {
		data, err := json.Marshal(doc)
		if err != nil {
			f.Close()
			return fmt.Errorf("encode document: %w", err)
		}
		if _, err := buf.Write(append(data, '\n')); err != nil {
			f.Close()
			return err
		}
	}

	if err := buf.Flush(); err != nil {
		f.Close()
		return err
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			f.Close()
			return err
		}
	}
	return f.Close()
}

// outputExists reports whether the path is already occupied.
func outputExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
