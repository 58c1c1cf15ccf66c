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
	"github.com/rabbitstack/kmelog/pkg/event"
	"github.com/rabbitstack/kmelog/pkg/kme/record"
)

// Writer is the minimal interface that all trace writers need to satisfy.
// The trace file has the layout as depicted in the following diagram:
//
//	 +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	 | Version Record | Magic | Major | Minor |
//	 |         Freq MHz | Channels           |
//	 -----------------------------------------
//	 | RTC Record | Ticks | Wall clock        |
//	 -----------------------------------------
//	 | Event Record | Ticks | ID | Payload   |
//	 | ......................................|
//	 | ......................................|
//	 | ........ Event Record n  EOF          |
//	 +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//
// Writers are not safe for concurrent use. Callers that collect events from
// multiple sources must serialize calls into the writer.
type Writer interface {
	// WriteHeader emits the version record followed by the real-time clock anchor.
	// The preamble can be written only once per trace.
	WriteHeader() error
	// WriteRow encodes the event and appends exactly one record to the trace.
	WriteRow(e *event.Event) error
	// IsBinary indicates whether the writer produces binary output.
	IsBinary() bool
	// Stats returns the snapshot of the writer statistics.
	Stats() Stats
	// Close flushes and releases the underlying sink.
	Close() error
}

// Reader replays the trace record by record.
type Reader interface {
	// Version returns the version record that opens the trace.
	Version() *record.Record
	// Anchor returns the real-time clock anchor record.
	Anchor() *record.Record
	// Next returns the next record following the preamble. It returns io.EOF
	// when the trace is exhausted.
	Next() (*record.Record, error)
	// Close disposes all resources allocated by the reader.
	Close() error
}
