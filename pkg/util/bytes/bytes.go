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

package bytes

import (
	"encoding/binary"
)

// ByteOrder is the byte order of all multi-byte fields in trace records.
// Trace files are portable across hosts, so the order doesn't follow the
// endianness of the machine where the capture is taken.
var ByteOrder binary.ByteOrder = binary.LittleEndian

// ReadUint16 reads the uint16 value from the byte slice.
func ReadUint16(b []byte) uint16 {
	return ByteOrder.Uint16(b)
}

// ReadUint32 reads the uint32 value from the byte slice.
func ReadUint32(b []byte) uint32 {
	return ByteOrder.Uint32(b)
}

// ReadUint64 reads the uint64 value from the byte slice.
func ReadUint64(b []byte) uint64 {
	return ByteOrder.Uint64(b)
}

// PutUint16 stores the uint16 value at the beginning of the byte slice.
func PutUint16(b []byte, v uint16) {
	ByteOrder.PutUint16(b, v)
}

// PutUint32 stores the uint32 value at the beginning of the byte slice.
func PutUint32(b []byte, v uint32) {
	ByteOrder.PutUint32(b, v)
}

// PutUint64 stores the uint64 value at the beginning of the byte slice.
func PutUint64(b []byte, v uint64) {
	ByteOrder.PutUint64(b, v)
}
