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
	"io"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rabbitstack/kmelog/pkg/kme/record"
)

// Stats is the snapshot of the trace writer statistics.
type Stats struct {
	File     string
	Records  uint64
	Bytes    uint64
	CAN      uint64
	Errors   uint64
	RTC      uint64
	Triggers uint64
	Rejected uint64
	Channels uint
}

type stats struct {
	file string

	recordsWritten  uint64
	bytesWritten    uint64
	canWritten      uint64
	errorsWritten   uint64
	rtcWritten      uint64
	triggersWritten uint64
	rejected        uint64
}

func (s *stats) incRecord(typ record.Type, size int) {
	atomic.AddUint64(&s.recordsWritten, 1)
	atomic.AddUint64(&s.bytesWritten, uint64(size))
	switch typ {
	case record.CAN:
		atomic.AddUint64(&s.canWritten, 1)
	case record.Error:
		atomic.AddUint64(&s.errorsWritten, 1)
	case record.RTC:
		atomic.AddUint64(&s.rtcWritten, 1)
	case record.Trigger:
		atomic.AddUint64(&s.triggersWritten, 1)
	}
}

func (s *stats) incRejected() { atomic.AddUint64(&s.rejected, 1) }

func (s *stats) snapshot() Stats {
	return Stats{
		File:     s.file,
		Records:  atomic.LoadUint64(&s.recordsWritten),
		Bytes:    atomic.LoadUint64(&s.bytesWritten),
		CAN:      atomic.LoadUint64(&s.canWritten),
		Errors:   atomic.LoadUint64(&s.errorsWritten),
		RTC:      atomic.LoadUint64(&s.rtcWritten),
		Triggers: atomic.LoadUint64(&s.triggersWritten),
		Rejected: atomic.LoadUint64(&s.rejected),
	}
}

// Render dumps the statistics table to the writer.
func (s Stats) Render(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Trace Statistics")
	t.SetStyle(table.StyleLight)

	if s.File != "" {
		t.AppendRow(table.Row{"File", s.File})
		t.AppendSeparator()
	}

	t.AppendRow(table.Row{"Records written", s.Records})
	t.AppendRow(table.Row{"CAN frames", s.CAN})
	t.AppendRow(table.Row{"Error frames", s.Errors})
	t.AppendRow(table.Row{"RTC records", s.RTC})
	t.AppendRow(table.Row{"Triggers", s.Triggers})
	t.AppendRow(table.Row{"Rejected events", s.Rejected})
	t.AppendRow(table.Row{"Defined channels", s.Channels})
	t.AppendSeparator()
	t.AppendRow(table.Row{"Trace size", humanize.Bytes(s.Bytes)})

	t.Render()
}
