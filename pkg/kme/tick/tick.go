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
	"math/bits"
)

// DefaultFrequency is the frequency, in MHz, of the hardware high-resolution
// timer. At this frequency one tick equals one nanosecond.
const DefaultFrequency = uint32(1000)

// Converter maps nanosecond timestamps into timer ticks.
type Converter struct {
	freq uint32
}

// NewConverter builds the tick converter for the given timer frequency in MHz.
// Zero frequency falls back to the default frequency.
func NewConverter(freq uint32) Converter {
	if freq == 0 {
		freq = DefaultFrequency
	}
	return Converter{freq: freq}
}

// Frequency returns the timer frequency in MHz.
func (c Converter) Frequency() uint32 { return c.freq }

// ToTicks converts the nanosecond timestamp into ticks.
func (c Converter) ToTicks(ns uint64) uint64 { return ToTicks(ns, c.freq) }

// ToTicks converts the nanosecond timestamp into ticks of the timer running
// at freq MHz. The result is truncated toward zero, and saturates at the
// maximum uint64 value if the scaled timestamp doesn't fit in 64 bits.
func ToTicks(ns uint64, freq uint32) uint64 {
	if freq == 0 || freq == DefaultFrequency {
		return ns
	}
	hi, lo := bits.Mul64(ns, uint64(freq))
	if hi >= uint64(DefaultFrequency) {
		return math.MaxUint64
	}
	q, _ := bits.Div64(hi, lo, uint64(DefaultFrequency))
	return q
}
