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

package version

// Version designates the type for specifying the trace format revision.
type Version uint16

const (
	// Major represents the major digit of the trace format. Incrementing the major
	// digit makes older readers incapable of replaying the trace file.
	Major Version = 1
	// Minor represents the minor digit of the trace format.
	Minor Version = 0
)

// IsCompatible determines if the trace with the given major digit can be replayed.
func IsCompatible(major Version) bool { return major == Major }
