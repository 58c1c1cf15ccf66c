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

package event

import (
	"fmt"
	"strings"
)

// ChannelUndefined is the channel sentinel used by the capture layer when
// the event doesn't carry the identifier of the originating bus interface.
// The writer resolves it to the last channel it has seen.
const ChannelUndefined = uint8(0xff)

// Kind designates the type of the captured bus event.
type Kind uint8

const (
	// Data is the regular CAN/CAN FD data or remote frame
	Data Kind = iota + 1
	// Error is the bus error frame
	Error
	// RTC is the real-time clock sample taken by the device
	RTC
	// Trigger is the trigger marker raised by the logger
	Trigger
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Data:
		return "data"
	case Error:
		return "error"
	case RTC:
		return "rtc"
	case Trigger:
		return "trigger"
	default:
		return "unknown"
	}
}

// Flags is the bit vector describing frame attributes.
type Flags uint32

const (
	// Extended indicates the frame uses the 29-bit identifier
	Extended Flags = 1 << iota
	// Remote indicates the remote transmission request
	Remote
	// FD indicates the CAN FD frame
	FD
	// BRS indicates the bit rate switch was requested for the data phase
	BRS
	// ESI indicates the transmitter was error passive
	ESI
	// Tx indicates the frame was transmitted by the logger itself
	Tx
	// ErrorFrame indicates the error frame
	ErrorFrame
)

// IsSet determines if the flag is set in the bit vector.
func (f Flags) IsSet(flag Flags) bool { return f&flag == flag }

// String returns the pipe-separated list of set flags.
func (f Flags) String() string {
	var flags []string
	for _, flag := range []struct {
		f Flags
		s string
	}{
		{Extended, "EXT"},
		{Remote, "RTR"},
		{FD, "FD"},
		{BRS, "BRS"},
		{ESI, "ESI"},
		{Tx, "TX"},
		{ErrorFrame, "ERR"},
	} {
		if f.IsSet(flag.f) {
			flags = append(flags, flag.s)
		}
	}
	return strings.Join(flags, "|")
}

// Event is the bus event handed over by the capture/replay layer. It is
// treated as immutable by the writer.
type Event struct {
	// Timestamp is the number of nanoseconds elapsed since the session start.
	Timestamp uint64
	// Channel is the zero-based index of the bus interface that produced the event
	// or ChannelUndefined.
	Channel uint8
	// Kind is the event kind.
	Kind Kind
	// ID is the frame identifier. For trigger events it holds the trigger mask.
	ID uint32
	// Flags contains frame attributes.
	Flags Flags
	// Length is the data length requested by the remote frame. Remote frames
	// carry no payload.
	Length uint8
	// Payload is the frame data. RTC samples optionally carry the wall clock
	// time as little-endian Unix nanoseconds.
	Payload []byte
}

// HasChannel determines if the event carries the defined channel.
func (e *Event) HasChannel() bool { return e.Channel != ChannelUndefined }

// String returns the human-readable representation of the event.
func (e *Event) String() string {
	return fmt.Sprintf("ts: %d, channel: %d, kind: %s, id: %#x, flags: %s, payload: % x",
		e.Timestamp, e.Channel, e.Kind, e.ID, e.Flags, e.Payload)
}
