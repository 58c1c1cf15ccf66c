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

package record

import (
	"fmt"

	kerrors "github.com/rabbitstack/kmelog/pkg/errors"
	"github.com/rabbitstack/kmelog/pkg/event"
	kmever "github.com/rabbitstack/kmelog/pkg/kme/version"
	"github.com/rabbitstack/kmelog/pkg/util/bytes"
)

// Capacity returns the maximum payload length the event of the given kind
// and flags can carry.
func Capacity(kind event.Kind, flags event.Flags) int {
	if kind == event.Data && flags.IsSet(event.FD) {
		return MaxPayload
	}
	return MaxClassicPayload
}

// Validate checks the event fits the record layout. It never truncates the
// payload, so that the trace preserves every byte of the captured frame.
func Validate(e *event.Event) error {
	switch e.Kind {
	case event.Data, event.Error, event.Trigger:
		if n, max := len(e.Payload), Capacity(e.Kind, e.Flags); n > max {
			return kerrors.ErrPayloadTooLarge(n, max)
		}
		if e.Flags.IsSet(event.Remote) {
			if len(e.Payload) > 0 {
				return &kerrors.EncodingError{Reason: fmt.Sprintf("remote frame carries %d data bytes", len(e.Payload))}
			}
			if n, max := int(e.Length), Capacity(e.Kind, e.Flags); n > max {
				return &kerrors.EncodingError{Reason: fmt.Sprintf("remote frame requests %d bytes, at most %d allowed", n, max)}
			}
		}
	case event.RTC:
		if n := len(e.Payload); n != 0 && n != 8 {
			return &kerrors.EncodingError{Reason: fmt.Sprintf("rtc sample carries %d bytes, expected 0 or 8", n)}
		}
	default:
		return &kerrors.EncodingError{Reason: fmt.Sprintf("unsupported event kind %d", e.Kind)}
	}
	return nil
}

// AppendVersion appends the version record to dst and returns the extended buffer.
func AppendVersion(dst []byte, freq uint32, channels uint8) []byte {
	dst, b := grow(dst, VersionSize)
	putHeader(b, Version, event.ChannelUndefined, 0)
	copy(b[8:16], Magic[:])
	bytes.PutUint16(b[16:18], uint16(kmever.Major))
	bytes.PutUint16(b[18:20], uint16(kmever.Minor))
	bytes.PutUint32(b[20:24], freq)
	b[24] = channels
	return dst
}

// EncodeVersion produces the version record.
func EncodeVersion(freq uint32, channels uint8) []byte {
	return AppendVersion(make([]byte, 0, VersionSize), freq, channels)
}

// AppendRTC appends the real-time clock record to dst. The record binds the
// tick counter value to the wall clock time expressed in Unix nanoseconds.
func AppendRTC(dst []byte, ch uint8, ticks, wallclock uint64) []byte {
	dst, b := grow(dst, RTCSize)
	putHeader(b, RTC, ch, 0)
	bytes.PutUint64(b[8:16], ticks)
	bytes.PutUint64(b[16:24], wallclock)
	return dst
}

// EncodeRTC produces the real-time clock anchor record.
func EncodeRTC(ticks, wallclock uint64) []byte {
	return AppendRTC(make([]byte, 0, RTCSize), event.ChannelUndefined, ticks, wallclock)
}

// AppendEvent appends the CAN, error or trigger record to dst. The channel
// is passed explicitly because the writer resolves undefined channels. If
// the event can't be encoded, dst is returned unchanged along with the error.
func AppendEvent(dst []byte, e *event.Event, ticks uint64, ch uint8) ([]byte, error) {
	if err := Validate(e); err != nil {
		return dst, err
	}
	typ := TypeOf(e.Kind)
	if typ.Size() != EventSize {
		return dst, &kerrors.EncodingError{Reason: fmt.Sprintf("%s events are not stored in event records", e.Kind)}
	}
	flags := e.Flags
	if e.Kind == event.Error {
		flags |= event.ErrorFrame
	}
	dst, b := grow(dst, EventSize)
	putHeader(b, typ, ch, flags)
	bytes.PutUint64(b[8:16], ticks)
	bytes.PutUint32(b[16:20], e.ID)
	b[20] = uint8(len(e.Payload))
	if e.Flags.IsSet(event.Remote) {
		b[20] = e.Length
	}
	copy(b[24:24+MaxPayload], e.Payload)
	return dst, nil
}

// EncodeEvent produces the CAN, error or trigger record.
func EncodeEvent(e *event.Event, ticks uint64, ch uint8) ([]byte, error) {
	return AppendEvent(make([]byte, 0, EventSize), e, ticks, ch)
}

// grow extends the buffer by n zeroed bytes and returns the extended
// buffer along with the slice of newly added bytes.
func grow(dst []byte, n int) ([]byte, []byte) {
	l := len(dst)
	if cap(dst)-l < n {
		b := make([]byte, l, l+n)
		copy(b, dst)
		dst = b
	}
	dst = dst[:l+n]
	clear(dst[l:])
	return dst, dst[l:]
}
