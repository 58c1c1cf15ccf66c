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

package tick

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToTicks(t *testing.T) {
	var tests = []struct {
		ns    uint64
		freq  uint32
		ticks uint64
	}{
		{0, DefaultFrequency, 0},
		{1_000_000, DefaultFrequency, 1_000_000},
		{math.MaxUint64, DefaultFrequency, math.MaxUint64},
		{1_000_000, 0, 1_000_000},
		{1_000_000, 80, 80_000},
		{1_000_000, 24, 24_000},
		{999, 1, 0},
		{1999, 1, 1},
		{3, 500, 1},
		{1_000, 2000, 2_000},
		{math.MaxUint64, 2000, math.MaxUint64},
		{math.MaxUint64 / 2, 2000, math.MaxUint64 - 1},
		{math.MaxUint64, 80, 1475739525896764129},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.ticks, ToTicks(tt.ns, tt.freq), "ns=%d freq=%d", tt.ns, tt.freq)
	}
}

func TestConverter(t *testing.T) {
	c := NewConverter(0)
	require.Equal(t, DefaultFrequency, c.Frequency())
	assert.Equal(t, uint64(12345), c.ToTicks(12345))

	c = NewConverter(40)
	require.Equal(t, uint32(40), c.Frequency())
	assert.Equal(t, uint64(40), c.ToTicks(1000))
}

func TestToTicksMonotonic(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for _, freq := range []uint32{1, 8, 24, 40, 80, 999, 1000, 1001, 4000, math.MaxUint32} {
		ts := make([]uint64, 500)
		for i := range ts {
			ts[i] = r.Uint64() >> uint(r.Intn(64))
		}
		sort.Slice(ts, func(i, j int) bool { return ts[i] < ts[j] })
		for i := 1; i < len(ts); i++ {
			require.LessOrEqual(t, ToTicks(ts[i-1], freq), ToTicks(ts[i], freq), "freq=%d", freq)
		}
	}
}
