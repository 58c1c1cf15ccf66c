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
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rabbitstack/kmelog/pkg/config"
	"github.com/rabbitstack/kmelog/pkg/event"
	"github.com/rabbitstack/kmelog/pkg/kme"
	"github.com/rabbitstack/kmelog/pkg/kme/record"
	"github.com/rabbitstack/kmelog/pkg/logwriter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const candumpLog = `# captured on the bench
(1436509052.249713) can0 123#DEADBEEF
(1436509052.250713) can1 1F334455#11.22.33
(1436509052.251713) can0 100#0102030405060708090A
(1436509053.249713) can0 20000080#0000000000000000
(1436509053.349713) can1 321##3AABB
(1436509053.449713) can0 7FF#R4
`

func testConfig(t *testing.T, compress bool) *config.Config {
	cfg := config.NewWithOpts(config.WithConvert())
	cfg.KME = kme.Config{File: filepath.Join(t.TempDir(), "bench"), Frequency: 1000, Channels: 2, Compress: compress}
	cfg.Format = logwriter.KME60
	cfg.Interfaces = map[string]uint8{"can0": 0, "can1": 1}
	return cfg
}

func TestConvert(t *testing.T) {
	for _, compress := range []bool{false, true} {
		cfg := testConfig(t, compress)
		app := newApp(cfg)

		stats, err := app.Convert(context.Background(), strings.NewReader(candumpLog))
		require.NoError(t, err)

		// the classic frame payload exceeds eight bytes, so the frame is dropped
		assert.Equal(t, uint64(1), stats.Rejected)
		assert.Equal(t, uint64(7), stats.Records)
		assert.Equal(t, uint64(4), stats.CAN)
		assert.Equal(t, uint64(1), stats.Errors)
		assert.Equal(t, uint(2), stats.Channels)

		r, err := kme.Open(stats.File)
		require.NoError(t, err)
		assert.Equal(t, uint32(1000), r.Version().Frequency)
		assert.Equal(t, uint8(2), r.Version().Channels)
		assert.Equal(t, uint64(time.Unix(1436509052, 249713000).UnixNano()), r.Anchor().Wallclock)

		var recs []*record.Record
		for {
			rec, err := r.Next()
			if err != nil {
				break
			}
			recs = append(recs, rec)
		}
		require.NoError(t, r.Close())
		require.Len(t, recs, 5)
		assert.Equal(t, uint32(0x123), recs[0].ID)
		assert.Equal(t, uint64(1_000_000), recs[1].Ticks)
		assert.Equal(t, uint8(1), recs[1].Header.Channel())
		assert.Equal(t, record.Error, recs[2].Type())
		assert.True(t, recs[3].Header.Flags().IsSet(event.FD))
		assert.True(t, recs[4].Header.Flags().IsSet(event.Remote))
		assert.Equal(t, uint8(4), recs[4].Length)
	}
}

func TestConvertEmptyLog(t *testing.T) {
	cfg := testConfig(t, false)
	app := newApp(cfg)
	now := time.Unix(1700000000, 0)
	app.now = func() time.Time { return now }

	stats, err := app.Convert(context.Background(), strings.NewReader("# nothing here\n"))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), stats.Records)
	assert.Equal(t, uint64(record.VersionSize+record.RTCSize), stats.Bytes)

	r, err := kme.Open(stats.File)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, uint64(now.UnixNano()), r.Anchor().Wallclock)
}

func TestConvertMalformedLine(t *testing.T) {
	cfg := testConfig(t, false)
	app := newApp(cfg)

	stats, err := app.Convert(context.Background(), strings.NewReader("(1436509052.249713) can0 123#DEADBEEF\ncan0\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	// the trace keeps what was written before the failure
	assert.Equal(t, uint64(3), stats.Records)
}

func TestConvertCanceled(t *testing.T) {
	cfg := testConfig(t, false)
	app := newApp(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := app.Convert(ctx, strings.NewReader(candumpLog))
	require.ErrorIs(t, err, context.Canceled)
}

func TestDump(t *testing.T) {
	cfg := testConfig(t, false)
	stats, err := newApp(cfg).Convert(context.Background(), strings.NewReader(candumpLog))
	require.NoError(t, err)

	cfg.Input = stats.File
	var b bytes.Buffer
	require.NoError(t, newApp(cfg).Dump(context.Background(), &b))
	out := b.String()
	assert.Contains(t, out, "KME60 1.0 | 1000 MHz | 2 channel(s) | 2015-07-10T06:17:32.249713Z")
	assert.Contains(t, out, "0x123")
	assert.Contains(t, out, "DE AD BE EF")
	assert.Contains(t, out, "0x1f334455")
	assert.Contains(t, out, "R4")
}

func TestDumpMissingFile(t *testing.T) {
	cfg := testConfig(t, false)
	cfg.Input = filepath.Join(t.TempDir(), "missing.kme60")
	require.Error(t, newApp(cfg).Dump(context.Background(), os.Stdout))
}

func TestInput(t *testing.T) {
	cfg := testConfig(t, false)
	app := newApp(cfg)

	r, err := app.Input()
	require.NoError(t, err)
	require.NoError(t, r.Close())

	cfg.Input = filepath.Join(t.TempDir(), "candump.log")
	_, err = app.Input()
	require.EqualError(t, err, `"`+cfg.Input+`" candump log does not exist`)

	require.NoError(t, os.WriteFile(cfg.Input, []byte(candumpLog), 0o644))
	r, err = app.Input()
	require.NoError(t, err)
	require.NoError(t, r.Close())
}
