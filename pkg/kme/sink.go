/*
 * Copyright 2021-2022 by Nedim Sabic Sabic
 * https://www.fibratus.io
 * All Rights Reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package kme

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	zstd "github.com/valyala/gozstd"
)

// Extension is the default extension of trace files.
const Extension = ".kme60"

// CompressedExtension is appended to compressed trace files.
const CompressedExtension = ".zst"

// fileSink appends records straight to the trace file. Every record is a
// single write, so an I/O failure is reported for the record that hit it.
type fileSink struct {
	f *os.File
}

func (s *fileSink) Write(b []byte) (int, error) { return s.f.Write(b) }

func (s *fileSink) Close() error { return s.f.Close() }

// zstdSink streams records through the zstd compressor.
type zstdSink struct {
	f  *os.File
	zw *zstd.Writer
}

func (s *zstdSink) Write(b []byte) (int, error) { return s.zw.Write(b) }

func (s *zstdSink) Close() error {
	err := s.zw.Close()
	s.zw.Release()
	if cerr := s.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// filename resolves the trace file name applying the default extensions.
func filename(c Config) string {
	name := c.File
	if filepath.Ext(name) == "" {
		name += Extension
	}
	if c.Compress && filepath.Ext(name) != CompressedExtension {
		name += CompressedExtension
	}
	return name
}

// isCompressed determines if the trace file is zstd-compressed.
func isCompressed(name string) bool { return filepath.Ext(name) == CompressedExtension }

// openSink creates the trace file and wraps it in the sink. The file is
// truncated if it already exists.
func openSink(name string) (io.WriteCloser, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("couldn't create %q trace file: %v", name, err)
	}
	if isCompressed(name) {
		return &zstdSink{f: f, zw: zstd.NewWriter(f)}, nil
	}
	return &fileSink{f: f}, nil
}
