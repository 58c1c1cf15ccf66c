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

package logwriter

import (
	"bytes"
	"testing"

	"github.com/rabbitstack/kmelog/pkg/kme"
	"github.com/rabbitstack/kmelog/pkg/kme/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopCloser struct {
	bytes.Buffer
}

func (nopCloser) Close() error { return nil }

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("KME60")
	require.NoError(t, err)
	assert.Equal(t, KME60, f)
	assert.True(t, f.IsBinary())
	assert.Equal(t, "kme60", f.String())

	_, err = ParseFormat("csv")
	require.EqualError(t, err, `"csv" is not a supported log format`)
	assert.False(t, Format(0).IsBinary())
}

func TestNew(t *testing.T) {
	sink := &nopCloser{}
	w, err := New(KME60, sink, kme.Config{Channels: 1})
	require.NoError(t, err)
	require.True(t, w.IsBinary())
	require.NoError(t, w.WriteHeader())
	assert.Equal(t, record.VersionSize+record.RTCSize, sink.Len())

	_, err = New(Format(9), sink, kme.Config{})
	require.Error(t, err)
	_, err = Create(Format(9), kme.Config{})
	require.Error(t, err)
}
