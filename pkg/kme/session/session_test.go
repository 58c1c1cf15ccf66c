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

package session

import (
	"testing"

	kerrors "github.com/rabbitstack/kmelog/pkg/errors"
	"github.com/rabbitstack/kmelog/pkg/event"
	"github.com/rabbitstack/kmelog/pkg/kme/tick"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTransitions(t *testing.T) {
	s := New(0, 4)
	require.Equal(t, None, s.State())
	assert.Equal(t, tick.DefaultFrequency, s.Frequency())
	assert.Equal(t, uint8(4), s.Channels())

	require.ErrorIs(t, s.CanWriteRow(), kerrors.ErrHeaderNotWritten)
	needsVersion, err := s.NeedsVersion()
	require.NoError(t, err)
	require.True(t, needsVersion)

	require.NoError(t, s.MarkVersion())
	require.Equal(t, VersionWritten, s.State())
	require.ErrorIs(t, s.CanWriteRow(), kerrors.ErrHeaderNotWritten)
	needsVersion, err = s.NeedsVersion()
	require.NoError(t, err)
	require.False(t, needsVersion)

	require.NoError(t, s.MarkRTC())
	require.Equal(t, RTCWritten, s.State())
	require.NoError(t, s.CanWriteRow())
	_, err = s.NeedsVersion()
	require.ErrorIs(t, err, kerrors.ErrAlreadyInitialized)

	defined, err := s.MarkRow(1)
	require.NoError(t, err)
	require.True(t, defined)
	require.Equal(t, Any, s.State())

	defined, err = s.MarkRow(1)
	require.NoError(t, err)
	require.False(t, defined)
	require.Equal(t, Any, s.State())
	_, err = s.NeedsVersion()
	require.ErrorIs(t, err, kerrors.ErrAlreadyInitialized)
}

func TestSessionIllegalTransitions(t *testing.T) {
	s := New(1000, 1)
	require.Error(t, s.MarkRTC())
	_, err := s.MarkRow(0)
	require.Error(t, err)
	require.Equal(t, None, s.State())

	require.NoError(t, s.MarkVersion())
	require.Error(t, s.MarkVersion())
	require.Equal(t, VersionWritten, s.State())
}

func TestSessionChannelSubstitution(t *testing.T) {
	s := New(1000, 4)
	require.NoError(t, s.MarkVersion())
	require.NoError(t, s.MarkRTC())

	ch, err := s.ResolveChannel(event.ChannelUndefined)
	require.NoError(t, err)
	assert.Equal(t, event.ChannelUndefined, ch)

	ch, err = s.ResolveChannel(3)
	require.NoError(t, err)
	require.Equal(t, uint8(3), ch)
	_, err = s.MarkRow(ch)
	require.NoError(t, err)

	ch, err = s.ResolveChannel(event.ChannelUndefined)
	require.NoError(t, err)
	assert.Equal(t, uint8(3), ch)
	assert.Equal(t, uint8(3), s.LastChannel())

	_, err = s.MarkRow(event.ChannelUndefined)
	require.NoError(t, err)
	assert.Equal(t, uint8(3), s.LastChannel())

	assert.True(t, s.IsDefined(3))
	assert.False(t, s.IsDefined(0))
	assert.Equal(t, uint(1), s.DefinedChannels())
}

func TestSessionChannelRange(t *testing.T) {
	s := New(1000, 2)
	_, err := s.ResolveChannel(2)
	require.Error(t, err)
	assert.True(t, kerrors.IsEncoding(err))

	s = New(1000, 0)
	ch, err := s.ResolveChannel(200)
	require.NoError(t, err)
	assert.Equal(t, uint8(200), ch)
}

func TestSessionsDoNotShareChannelState(t *testing.T) {
	s1, s2 := New(1000, 4), New(1000, 4)
	for _, s := range []*Session{s1, s2} {
		require.NoError(t, s.MarkVersion())
		require.NoError(t, s.MarkRTC())
	}
	_, err := s1.MarkRow(2)
	require.NoError(t, err)
	assert.Equal(t, uint8(2), s1.LastChannel())
	assert.Equal(t, event.ChannelUndefined, s2.LastChannel())
}
