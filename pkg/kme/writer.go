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
	"expvar"
	"io"
	"time"

	kerrors "github.com/rabbitstack/kmelog/pkg/errors"
	"github.com/rabbitstack/kmelog/pkg/event"
	"github.com/rabbitstack/kmelog/pkg/kme/record"
	"github.com/rabbitstack/kmelog/pkg/kme/session"
	"github.com/rabbitstack/kmelog/pkg/util/bytes"
	log "github.com/sirupsen/logrus"
	"github.com/valyala/bytebufferpool"
)

var (
	sequencingErrors = expvar.NewInt("kme.sequencing.errors")
	encodingErrors   = expvar.NewInt("kme.encoding.errors")
	sinkWriteErrors  = expvar.NewInt("kme.sink.write.errors")
	recordsWritten   = expvar.NewInt("kme.records.written")
)

// Option customizes the trace writer.
type Option func(*writer)

// WithStartTime sets the wall clock time of the session start that is stored
// in the real-time clock anchor. It defaults to the time the writer is created.
func WithStartTime(t time.Time) Option {
	return func(w *writer) {
		w.start = t
	}
}

type writer struct {
	sink  io.WriteCloser
	sess  *session.Session
	start time.Time
	// stats contains the trace statistics
	stats  *stats
	closed bool
}

// NewWriter constructs the trace writer that appends records to the sink. The
// writer takes ownership of the sink and closes it when the writer is closed.
func NewWriter(sink io.WriteCloser, c Config, opts ...Option) Writer {
	w := &writer{
		sink:  sink,
		sess:  session.New(c.Frequency, c.Channels),
		start: time.Now(),
		stats: &stats{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Create creates the trace file and constructs the writer on top of it. The
// file gets the default extension if it has none, and it is zstd-compressed
// when compression is enabled or the file name ends with the .zst extension.
func Create(c Config, opts ...Option) (Writer, error) {
	name := filename(c)
	sink, err := openSink(name)
	if err != nil {
		return nil, err
	}
	w := NewWriter(sink, c, opts...)
	w.(*writer).stats.file = name
	return w, nil
}

func (w *writer) IsBinary() bool { return true }

func (w *writer) WriteHeader() error {
	if w.closed {
		return kerrors.ErrSinkClosed
	}
	needsVersion, err := w.sess.NeedsVersion()
	if err != nil {
		sequencingErrors.Add(1)
		return err
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if needsVersion {
		buf.B = record.AppendVersion(buf.B[:0], w.sess.Frequency(), w.sess.Channels())
		if err := w.write(record.Version, buf.B); err != nil {
			return err
		}
		if err := w.sess.MarkVersion(); err != nil {
			return err
		}
	}

	buf.B = record.AppendRTC(buf.B[:0], event.ChannelUndefined, 0, uint64(w.start.UnixNano()))
	if err := w.write(record.RTC, buf.B); err != nil {
		return err
	}
	if err := w.sess.MarkRTC(); err != nil {
		return err
	}

	log.Debugf("trace preamble written. Timer frequency: %d MHz, channels: %d, start: %s",
		w.sess.Frequency(), w.sess.Channels(), w.start.Format(time.RFC3339Nano))

	return nil
}

func (w *writer) WriteRow(e *event.Event) error {
	if err := w.sess.CanWriteRow(); err != nil {
		sequencingErrors.Add(1)
		return err
	}
	if w.closed {
		return kerrors.ErrSinkClosed
	}
	ch, err := w.sess.ResolveChannel(e.Channel)
	if err != nil {
		w.reject()
		return err
	}
	ticks := w.sess.Converter().ToTicks(e.Timestamp)

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	typ := record.TypeOf(e.Kind)
	if e.Kind == event.RTC {
		if err := record.Validate(e); err != nil {
			w.reject()
			return err
		}
		buf.B = record.AppendRTC(buf.B[:0], ch, ticks, w.wallclock(e))
	} else {
		buf.B, err = record.AppendEvent(buf.B[:0], e, ticks, ch)
		if err != nil {
			w.reject()
			return err
		}
	}

	if err := w.write(typ, buf.B); err != nil {
		return err
	}

	defined, err := w.sess.MarkRow(ch)
	if err != nil {
		return err
	}
	if defined {
		log.Debugf("channel %d became defined at tick %d", ch, ticks)
	}
	return nil
}

func (w *writer) Stats() Stats {
	s := w.stats.snapshot()
	s.Channels = w.sess.DefinedChannels()
	return s
}

func (w *writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.sink.Close(); err != nil {
		sinkWriteErrors.Add(1)
		return &kerrors.SinkWriteError{Op: "trailing buffer", Err: err}
	}
	return nil
}

// wallclock resolves the Unix time in nanoseconds of the RTC sample.
func (w *writer) wallclock(e *event.Event) uint64 {
	if len(e.Payload) == 8 {
		return bytes.ReadUint64(e.Payload)
	}
	return uint64(w.start.UnixNano()) + e.Timestamp
}

func (w *writer) write(typ record.Type, b []byte) error {
	if _, err := w.sink.Write(b); err != nil {
		sinkWriteErrors.Add(1)
		log.Warnf("fail to write %s record to trace: %v", typ, err)
		return &kerrors.SinkWriteError{Op: typ.String() + " record", Err: err}
	}
	recordsWritten.Add(1)
	w.stats.incRecord(typ, len(b))
	return nil
}

func (w *writer) reject() {
	encodingErrors.Add(1)
	w.stats.incRejected()
}
