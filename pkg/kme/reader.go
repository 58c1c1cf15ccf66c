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
	"errors"
	"expvar"
	"fmt"
	"io"
	"os"

	"github.com/rabbitstack/kmelog/pkg/kme/record"
	kmever "github.com/rabbitstack/kmelog/pkg/kme/version"
	zstd "github.com/valyala/gozstd"
)

var (
	errMissingVersion = errors.New("trace doesn't start with the version record")
	errMissingAnchor  = errors.New("version record is not followed by the rtc anchor")
	errMajorVer       = func(maj kmever.Version) error {
		return fmt.Errorf("incompatible trace format. Required major version %d but %d found", kmever.Major, maj)
	}
	errDuplicateVersion = errors.New("version record found after the trace preamble")
	errReadRecord       = func(err error) error { return fmt.Errorf("couldn't read trace record: %v", err) }

	readRecords = expvar.NewInt("kme.read.records")
	readBytes   = expvar.NewInt("kme.read.bytes")
)

type reader struct {
	r       io.Reader
	closers []func() error
	version *record.Record
	anchor  *record.Record
	buf     [record.EventSize]byte
}

// NewReader builds the reader on top of the trace stream. It consumes and
// validates the preamble before returning.
func NewReader(r io.Reader) (Reader, error) {
	rd := &reader{r: r}
	if err := rd.readPreamble(); err != nil {
		return nil, err
	}
	return rd, nil
}

// Open opens the trace file for reading. Files with the .zst extension are
// decompressed on the fly.
func Open(name string) (Reader, error) {
	f, err := os.Open(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%q trace file does not exist", name)
		}
		return nil, err
	}
	var r io.Reader = f
	closers := []func() error{f.Close}
	if isCompressed(name) {
		zr := zstd.NewReader(f)
		r = zr
		closers = append([]func() error{func() error { zr.Release(); return nil }}, closers...)
	}
	rd := &reader{r: r, closers: closers}
	if err := rd.readPreamble(); err != nil {
		_ = rd.Close()
		return nil, err
	}
	return rd, nil
}

func (r *reader) readPreamble() error {
	ver, err := r.read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errMissingVersion
		}
		return err
	}
	if ver.Type() != record.Version {
		return errMissingVersion
	}
	if !kmever.IsCompatible(ver.Major) {
		return errMajorVer(ver.Major)
	}
	anchor, err := r.read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errMissingAnchor
		}
		return err
	}
	if anchor.Type() != record.RTC {
		return errMissingAnchor
	}
	r.version, r.anchor = ver, anchor
	return nil
}

func (r *reader) Version() *record.Record { return r.version }

func (r *reader) Anchor() *record.Record { return r.anchor }

func (r *reader) Next() (*record.Record, error) {
	rec, err := r.read()
	if err != nil {
		return nil, err
	}
	if rec.Type() == record.Version {
		return nil, errDuplicateVersion
	}
	return rec, nil
}

// read reads the next record. It returns io.EOF only if the stream ends on
// the record boundary.
func (r *reader) read() (*record.Record, error) {
	if _, err := io.ReadFull(r.r, r.buf[:record.HeaderSize]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, errReadRecord(err)
	}
	h := record.ReadHeader(r.buf[:])
	size := h.Type().Size()
	if size == 0 {
		return nil, record.ErrUnknownType(h.Type())
	}
	if _, err := io.ReadFull(r.r, r.buf[record.HeaderSize:size]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, errReadRecord(err)
	}
	rec, err := record.Decode(r.buf[:size])
	if err != nil {
		return nil, err
	}
	readRecords.Add(1)
	readBytes.Add(int64(size))
	return rec, nil
}

func (r *reader) Close() error {
	var err error
	for _, closer := range r.closers {
		if cerr := closer(); cerr != nil && err == nil {
			err = cerr
		}
	}
	r.closers = nil
	return err
}
