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

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rabbitstack/kmelog/pkg/candump"
	"github.com/rabbitstack/kmelog/pkg/config"
	kerrors "github.com/rabbitstack/kmelog/pkg/errors"
	"github.com/rabbitstack/kmelog/pkg/event"
	"github.com/rabbitstack/kmelog/pkg/kme"
	"github.com/rabbitstack/kmelog/pkg/kme/record"
	"github.com/rabbitstack/kmelog/pkg/logwriter"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var (
	// droppedEventsLogLimit bounds the rate of warnings about dropped events
	droppedEventsLogLimit = rate.Every(time.Second)
	droppedEventsLogBurst = 10
)

// App ties the candump parser to the log writer for conversions and the
// trace reader for dumps.
type App struct {
	config *config.Config
	parser *candump.Parser
	writer logwriter.LogWriter
	now    func() time.Time
	lim    *rate.Limiter
}

// NewApp constructs a new bootstrap application with the specified configuration.
// The configuration is passed from individual command work functions.
func NewApp(cfg *config.Config) (*App, error) {
	if err := InitConfigAndLogger(cfg); err != nil {
		return nil, err
	}
	return newApp(cfg), nil
}

func newApp(cfg *config.Config) *App {
	return &App{
		config: cfg,
		parser: candump.NewParser(cfg.Interfaces, cfg.KME.Channels),
		now:    time.Now,
		lim:    rate.NewLimiter(droppedEventsLogLimit, droppedEventsLogBurst),
	}
}

// Input opens the input configured for the conversion. Standard input is
// used when the input is empty or a dash.
func (f *App) Input() (io.ReadCloser, error) {
	name := f.config.Input
	if name == "" || name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	file, err := os.Open(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%q candump log does not exist", name)
		}
		return nil, err
	}
	return file, nil
}

// Convert reads candump frames and writes them to the trace. The trace
// session starts at the wall clock time of the first frame. An empty log
// yields a trace carrying only the preamble. Events the trace can't
// represent are dropped. Sink failures abort the conversion. Logs without
// timestamps start the session at the current time.
func (f *App) Convert(ctx context.Context, r io.Reader) (kme.Stats, error) {
	err := candump.Scan(r, f.parser, func(e *event.Event) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if f.writer == nil {
			start := f.parser.Start()
			if start.IsZero() {
				start = f.now()
			}
			if err := f.open(start); err != nil {
				return err
			}
		}
		err := f.writer.WriteRow(e)
		if kerrors.StatusOf(err) == kerrors.EncodingFailed {
			if f.lim.Allow() {
				log.Warnf("dropping %s: %v", e, err)
			}
			return nil
		}
		return err
	})
	if err == nil && f.writer == nil {
		err = f.open(f.now())
	}
	if f.writer == nil {
		return kme.Stats{}, err
	}
	if cerr := f.writer.Close(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	stats := f.writer.Stats()
	if err == nil {
		log.Infof("converted %d records from %d interface(s) into %s", stats.Records, len(f.parser.Interfaces()), stats.File)
	}
	return stats, err
}

func (f *App) open(start time.Time) error {
	var err error
	f.writer, err = logwriter.Create(f.config.Format, f.config.KME, kme.WithStartTime(start))
	if err != nil {
		return err
	}
	return f.writer.WriteHeader()
}

// Dump renders the records of the trace file to the writer. The preamble
// is rendered in the table title.
func (f *App) Dump(ctx context.Context, w io.Writer) error {
	r, err := kme.Open(f.config.Input)
	if err != nil {
		return err
	}
	defer r.Close()

	ver, anchor := r.Version(), r.Anchor()
	start := time.Unix(0, int64(anchor.Wallclock)).UTC()

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(fmt.Sprintf("KME60 %d.%d | %d MHz | %d channel(s) | %s",
		ver.Major, ver.Minor, ver.Frequency, ver.Channels, start.Format(time.RFC3339Nano)))
	t.AppendHeader(table.Row{"#", "Type", "Channel", "Ticks", "ID", "Flags", "Data"})

	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("record %d: %v", n, err)
		}
		t.AppendRow(row(n, rec))
	}
	t.Render()
	return nil
}

func row(n int, rec *record.Record) table.Row {
	ch := "-"
	if rec.Header.Channel() != event.ChannelUndefined {
		ch = fmt.Sprintf("%d", rec.Header.Channel())
	}
	switch rec.Type() {
	case record.RTC:
		wall := time.Unix(0, int64(rec.Wallclock)).UTC()
		return table.Row{n, rec.Type(), ch, rec.Ticks, "", "", wall.Format(time.RFC3339Nano)}
	default:
		data := fmt.Sprintf("% X", rec.Payload)
		if rec.Header.Flags().IsSet(event.Remote) {
			data = fmt.Sprintf("R%d", rec.Length)
		}
		return table.Row{n, rec.Type(), ch, rec.Ticks, fmt.Sprintf("%#x", rec.ID), rec.Header.Flags(), data}
	}
}
