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
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/rabbitstack/kmelog/pkg/event"
	"github.com/rabbitstack/kmelog/pkg/kme/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func preamble() []byte {
	b := record.AppendVersion(nil, 1000, 1)
	return record.AppendRTC(b, event.ChannelUndefined, 0, 1)
}

func TestReaderPreamble(t *testing.T) {
	_, err := NewReader(bytes.NewReader(nil))
	require.EqualError(t, err, "trace doesn't start with the version record")

	_, err = NewReader(bytes.NewReader(record.EncodeRTC(0, 1)))
	require.EqualError(t, err, "trace doesn't start with the version record")

	_, err = NewReader(bytes.NewReader(record.EncodeVersion(1000, 1)))
	require.EqualError(t, err, "version record is not followed by the rtc anchor")

	b, err := record.EncodeEvent(&event.Event{Kind: event.Data}, 0, 0)
	require.NoError(t, err)
	_, err = NewReader(bytes.NewReader(append(record.EncodeVersion(1000, 1), b...)))
	require.EqualError(t, err, "version record is not followed by the rtc anchor")

	ver := record.EncodeVersion(1000, 1)
	ver[16] = 2
	_, err = NewReader(bytes.NewReader(ver))
	require.EqualError(t, err, "incompatible trace format. Required major version 1 but 2 found")

	ver = record.EncodeVersion(1000, 1)
	ver[9] = 'X'
	_, err = NewReader(bytes.NewReader(ver))
	require.ErrorIs(t, err, record.ErrMagicMismatch)
}

func TestReaderTruncatedRecord(t *testing.T) {
	b, err := record.AppendEvent(preamble(), &event.Event{Kind: event.Data, Payload: []byte{1}}, 0, 0)
	require.NoError(t, err)

	r, err := NewReader(bytes.NewReader(b[:len(b)-10]))
	require.NoError(t, err)
	_, err = r.Next()
	require.Error(t, err)
	require.ErrorContains(t, err, "unexpected EOF")
}

func TestReaderDuplicateVersion(t *testing.T) {
	b := append(preamble(), record.EncodeVersion(1000, 1)...)
	r, err := NewReader(bytes.NewReader(b))
	require.NoError(t, err)
	_, err = r.Next()
	require.EqualError(t, err, "version record found after the trace preamble")
}

func TestReaderEOF(t *testing.T) {
	r, err := NewReader(bytes.NewReader(preamble()))
	require.NoError(t, err)
	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
	assert.NoError(t, r.Close())
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.kme60"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trace file does not exist")
}
