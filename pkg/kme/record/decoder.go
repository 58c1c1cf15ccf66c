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
	"errors"
	"fmt"

	"github.com/rabbitstack/kmelog/pkg/event"
	kmever "github.com/rabbitstack/kmelog/pkg/kme/version"
	"github.com/rabbitstack/kmelog/pkg/util/bytes"
)

var (
	// ErrMagicMismatch signals the version record doesn't carry the trace magic
	ErrMagicMismatch = errors.New("invalid trace file magic number")
	// ErrUnknownType signals the record type is not recognized
	ErrUnknownType = func(t Type) error { return fmt.Errorf("unknown record type %#x", uint8(t)) }
	// ErrLengthMismatch signals the record length differs from the length mandated by its type
	ErrLengthMismatch = func(t Type, l uint16) error {
		return fmt.Errorf("%s record declares %d bytes but %d are expected", t, l, t.Size())
	}
	// ErrShortRecord signals the buffer is smaller than the record
	ErrShortRecord = func(n, size int) error { return fmt.Errorf("record needs %d bytes, got %d", size, n) }
	// ErrPayloadOverflow signals the payload length exceeds the capacity of the record
	ErrPayloadOverflow = func(t Type, n, max int) error {
		return fmt.Errorf("%s record declares %d payload bytes but holds at most %d", t, n, max)
	}
)

// Record is the decoded trace record.
type Record struct {
	Header Header

	// Major and Minor are the format digits of the version record.
	Major kmever.Version
	Minor kmever.Version
	// Frequency is the timer frequency in MHz declared in the version record.
	Frequency uint32
	// Channels is the number of channels declared in the version record.
	Channels uint8

	// Ticks is the tick counter value of RTC and event records.
	Ticks uint64
	// Wallclock is the Unix time in nanoseconds of the RTC record.
	Wallclock uint64

	// ID is the frame identifier or trigger mask.
	ID uint32
	// Payload holds the frame data stripped of slot padding.
	Payload []byte
	// Length is the data length requested by the remote frame.
	Length uint8
}

// Type returns the record type.
func (r *Record) Type() Type { return r.Header.Type() }

// Event rebuilds the event from the event record. Ticks are carried over
// as the timestamp, so the original timestamp is restored only for traces
// written at the default timer frequency.
func (r *Record) Event() *event.Event {
	e := &event.Event{
		Timestamp: r.Ticks,
		Channel:   r.Header.Channel(),
		ID:        r.ID,
		Flags:     r.Header.Flags(),
		Payload:   r.Payload,
		Length:    r.Length,
	}
	switch r.Type() {
	case CAN:
		e.Kind = event.Data
	case Error:
		e.Kind = event.Error
		e.Flags &^= event.ErrorFrame
	case Trigger:
		e.Kind = event.Trigger
	case RTC:
		e.Kind = event.RTC
		e.Payload = make([]byte, 8)
		bytes.PutUint64(e.Payload, r.Wallclock)
	default:
		return nil
	}
	return e
}

// Decode decodes the record that starts at the beginning of the byte slice.
func Decode(b []byte) (*Record, error) {
	if len(b) < HeaderSize {
		return nil, ErrShortRecord(len(b), HeaderSize)
	}
	h := ReadHeader(b)
	typ := h.Type()
	size := typ.Size()
	if size == 0 {
		return nil, ErrUnknownType(typ)
	}
	if int(h.Len()) != size {
		return nil, ErrLengthMismatch(typ, h.Len())
	}
	if len(b) < size {
		return nil, ErrShortRecord(len(b), size)
	}
	r := &Record{Header: h}
	switch typ {
	case Version:
		if [8]byte(b[8:16]) != Magic {
			return nil, ErrMagicMismatch
		}
		r.Major = kmever.Version(bytes.ReadUint16(b[16:18]))
		r.Minor = kmever.Version(bytes.ReadUint16(b[18:20]))
		r.Frequency = bytes.ReadUint32(b[20:24])
		r.Channels = b[24]
	case RTC:
		r.Ticks = bytes.ReadUint64(b[8:16])
		r.Wallclock = bytes.ReadUint64(b[16:24])
	default:
		r.Ticks = bytes.ReadUint64(b[8:16])
		r.ID = bytes.ReadUint32(b[16:20])
		n := int(b[20])
		if max := Capacity(kindOf(typ), h.Flags()); n > max {
			return nil, ErrPayloadOverflow(typ, n, max)
		}
		if h.Flags().IsSet(event.Remote) {
			r.Length = uint8(n)
			break
		}
		r.Payload = make([]byte, n)
		copy(r.Payload, b[24:24+n])
	}
	return r, nil
}

// kindOf returns the event kind stored in the event record type.
func kindOf(t Type) event.Kind {
	switch t {
	case Error:
		return event.Error
	case Trigger:
		return event.Trigger
	default:
		return event.Data
	}
}
