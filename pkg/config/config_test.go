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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rabbitstack/kmelog/pkg/logwriter"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestValidate(t *testing.T) {
	var tests = []struct {
		text  string
		valid bool
		errs  int
	}{
		{text: `kme:
                 file: trace.kme60
                 frequency: 80
                 channels: 2
                 compress: true`, valid: true},
		{text: `kme:
                 frequency: -1
                 channels: 256`, valid: false, errs: 2},
		{text: `kme:
                 freq: 80`, valid: false, errs: 1},
		{text: `interfaces:
                 can0: 0
                 vcan1: 1`, valid: true},
		{text: `interfaces:
                 - can0=0
                 - vcan1=1`, valid: true},
		{text: `interfaces:
                 - can0`, valid: false, errs: -1},
		{text: `format: asc`, valid: false, errs: 1},
		{text: `logging:
                 level: info
                 formatter: yaml
                 max-backups: 0`, valid: false, errs: 2},
		{text: `outputs: {}`, valid: false, errs: 1},
	}

	for i, tt := range tests {
		var m interface{}
		err := yaml.Unmarshal([]byte(tt.text), &m)
		require.NoError(t, err)
		valid, errs := validate(m)
		if valid != tt.valid {
			t.Errorf("%d. valid mismatch: text=%q exp=%#v got=%#v errs=%#v", i, tt.text, tt.valid, valid, errs)
		} else if tt.errs >= 0 && len(errs) != tt.errs {
			t.Errorf("%d. error count mismatch: text=%q exp=%#v got=%#v errs=%#v", i, tt.text, tt.errs, len(errs), errs)
		}
	}
}

func TestDecodeInterfaces(t *testing.T) {
	var tests = []struct {
		in   interface{}
		want map[string]uint8
		err  bool
	}{
		{nil, map[string]uint8{}, false},
		{[]string(nil), map[string]uint8{}, false},
		{[]string{"can0=0", "vcan1=1"}, map[string]uint8{"can0": 0, "vcan1": 1}, false},
		{[]interface{}{"can0=2"}, map[string]uint8{"can0": 2}, false},
		{"[can0=0,can1=3]", map[string]uint8{"can0": 0, "can1": 3}, false},
		{map[string]interface{}{"can0": 1}, map[string]uint8{"can0": 1}, false},
		{[]string{"can0"}, nil, true},
		{[]string{"can0=300"}, nil, true},
	}

	for _, tt := range tests {
		m := make(map[string]uint8)
		err := decode(tt.in, &m)
		if tt.err {
			assert.Error(t, err, "%v", tt.in)
			continue
		}
		require.NoError(t, err, "%v", tt.in)
		assert.Equal(t, tt.want, m)
	}
}

func newCommand(c *Config) *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	c.MustViperize(cmd)
	return cmd
}

func TestConfigFromFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "kmelog.yml")
	require.NoError(t, os.WriteFile(file, []byte(`
kme:
  file: session.kme60
  frequency: 80
  channels: 2
interfaces:
  can0: 0
  can1: 1
logging:
  level: debug
  formatter: json
`), 0o644))

	c := NewWithOpts(WithConvert())
	cmd := newCommand(c)
	require.NoError(t, cmd.PersistentFlags().Set(configFile, file))

	require.NoError(t, c.TryLoadFile(c.File()))
	assert.True(t, c.IsLoaded())
	require.NoError(t, c.Init())
	require.NoError(t, c.Validate())

	assert.Equal(t, "session.kme60", c.KME.File)
	assert.Equal(t, uint32(80), c.KME.Frequency)
	assert.Equal(t, uint8(2), c.KME.Channels)
	assert.False(t, c.KME.Compress)
	assert.Equal(t, logwriter.KME60, c.Format)
	assert.Equal(t, map[string]uint8{"can0": 0, "can1": 1}, c.Interfaces)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "json", c.Log.Formatter)
}

func TestConfigFromFlags(t *testing.T) {
	c := NewWithOpts(WithConvert())
	cmd := newCommand(c)
	flags := cmd.PersistentFlags()
	require.NoError(t, flags.Set("kme.file", "out.kme60"))
	require.NoError(t, flags.Set("interfaces", "can0=1,can1=0"))
	require.NoError(t, flags.Set("input", "candump.log"))

	assert.Error(t, c.TryLoadFile(filepath.Join(t.TempDir(), "missing.yml")))
	assert.False(t, c.IsLoaded())
	require.NoError(t, c.Init())

	assert.Equal(t, "out.kme60", c.KME.File)
	assert.Equal(t, uint32(1000), c.KME.Frequency)
	assert.Equal(t, uint8(1), c.KME.Channels)
	assert.Equal(t, "candump.log", c.Input)
	assert.Equal(t, map[string]uint8{"can0": 1, "can1": 0}, c.Interfaces)

	// the session has a single channel, so channel 1 is out of range
	assert.EqualError(t, c.Validate(), "invalid config: can0 interface is mapped to channel 1 but the session has 1 channel(s)")
}

func TestConfigInvalidFormat(t *testing.T) {
	c := NewWithOpts(WithDump())
	cmd := newCommand(c)
	require.NoError(t, cmd.PersistentFlags().Set(format, "blf"))
	assert.EqualError(t, c.Init(), `"blf" is not a supported log format`)
}

func TestPrint(t *testing.T) {
	c := NewWithOpts(WithConvert())
	newCommand(c)
	s, err := c.Print()
	require.NoError(t, err)
	assert.Contains(t, s, "kme:")
	assert.Contains(t, s, "frequency: 1000")
	assert.Contains(t, s, "logging:")
	assert.NotContains(t, s, configFile)
}
