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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlags(t *testing.T) {
	f := Extended | FD | BRS
	assert.True(t, f.IsSet(FD))
	assert.True(t, f.IsSet(Extended|BRS))
	assert.False(t, f.IsSet(Remote))
	assert.False(t, f.IsSet(FD|Tx))
	assert.Equal(t, "EXT|FD|BRS", f.String())
	assert.Equal(t, "", Flags(0).String())
}

func TestEventString(t *testing.T) {
	e := &Event{Timestamp: 1500, Channel: 1, Kind: Data, ID: 0x123, Flags: Extended, Payload: []byte{0xde, 0xad}}
	assert.Equal(t, "ts: 1500, channel: 1, kind: data, id: 0x123, flags: EXT, payload: de ad", e.String())
	assert.True(t, e.HasChannel())
	assert.False(t, (&Event{Channel: ChannelUndefined}).HasChannel())
	assert.Equal(t, "unknown", Kind(0).String())
}
