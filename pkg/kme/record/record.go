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

	"github.com/rabbitstack/kmelog/pkg/event"
	"github.com/rabbitstack/kmelog/pkg/util/bytes"
)

// Each record in the trace file starts with the fixed-size header followed
// by the body whose layout depends on the record type. All multi-byte
// fields are little-endian.
//
//	 +------+---------+--------+-------+
//	 | Type | Channel | Length | Flags |
//	 |  u8  |   u8    |  u16   |  u32  |
//	 +------+---------+--------+-------+
//
// Version record body (32 bytes total):
//
//	 | Magic [8] | Major u16 | Minor u16 | Freq MHz u32 | Channels u8 | Reserved [7] |
//
// RTC record body (24 bytes total):
//
//	 | Ticks u64 | Wall clock Unix ns u64 |
//
// CAN, error and trigger record body (88 bytes total):
//
//	 | Ticks u64 | ID u32 | Len u8 | Reserved [3] | Payload [64] |
const (
	// HeaderSize is the size of the record header
	HeaderSize = 8
	// VersionSize is the size of the version record
	VersionSize = 32
	// RTCSize is the size of the real-time clock record
	RTCSize = 24
	// EventSize is the size of the CAN, error and trigger records
	EventSize = 88
	// MaxPayload is the width of the payload slot in event records
	MaxPayload = 64
	// MaxClassicPayload is the maximum payload length of classic CAN, error and trigger records
	MaxClassicPayload = 8
)

// Magic identifies trace files. It is stored in the version record that
// opens every trace.
var Magic = [8]byte{'K', 'M', 'E', '6', '0', 0, 0, 0}

// Type describes the type of the record.
type Type uint8

const (
	// Version is the format version record type
	Version Type = iota + 1
	// RTC is the real-time clock record type
	RTC
	// CAN is the CAN data frame record type
	CAN
	// Error is the error frame record type
	Error
	// Trigger is the trigger record type
	Trigger
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case Version:
		return "version"
	case RTC:
		return "rtc"
	case CAN:
		return "can"
	case Error:
		return "error"
	case Trigger:
		return "trigger"
	default:
		return ""
	}
}

// Size returns the length of the record of this type or zero if the type is unknown.
func (t Type) Size() int {
	switch t {
	case Version:
		return VersionSize
	case RTC:
		return RTCSize
	case CAN, Error, Trigger:
		return EventSize
	default:
		return 0
	}
}

// TypeOf returns the record type that stores events of the given kind.
func TypeOf(kind event.Kind) Type {
	switch kind {
	case event.Data:
		return CAN
	case event.Error:
		return Error
	case event.RTC:
		return RTC
	case event.Trigger:
		return Trigger
	default:
		return 0
	}
}

// Header represents the prefix describing the type, channel, length and flags of each record.
type Header [HeaderSize]byte

// String returns the string representation of the record header.
func (h Header) String() string {
	return fmt.Sprintf("type: %s, channel: %d, len: %d, flags: %s", h.Type(), h.Channel(), h.Len(), h.Flags())
}

// ReadHeader reads the header from the byte slice.
func ReadHeader(b []byte) Header {
	var h Header
	copy(h[:], b)
	return h
}

// Type returns the type of this record.
func (h Header) Type() Type { return Type(h[0]) }

// Channel returns the channel of this record.
func (h Header) Channel() uint8 { return h[1] }

// Len returns the full length of the record including the header.
func (h Header) Len() uint16 { return bytes.ReadUint16(h[2:4]) }

// Flags returns record flags.
func (h Header) Flags() event.Flags { return event.Flags(bytes.ReadUint32(h[4:8])) }

func putHeader(b []byte, typ Type, ch uint8, flags event.Flags) {
	b[0] = uint8(typ)
	b[1] = ch
	bytes.PutUint16(b[2:4], uint16(typ.Size()))
	bytes.PutUint32(b[4:8], uint32(flags))
}
