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

package logwriter

import (
	"fmt"
	"io"
	"strings"

	"github.com/rabbitstack/kmelog/pkg/kme"
)

// Format designates the output format of the log writer.
type Format uint8

const (
	// KME60 is the fixed-record binary trace format
	KME60 Format = iota + 1
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case KME60:
		return "kme60"
	default:
		return ""
	}
}

// IsBinary indicates whether the format produces binary output. Callers
// branch on it to decide how the output file is opened and presented.
func (f Format) IsBinary() bool {
	switch f {
	case KME60:
		return true
	default:
		return false
	}
}

// ParseFormat resolves the format from its name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "kme60", "kme":
		return KME60, nil
	default:
		return 0, fmt.Errorf("%q is not a supported log format", s)
	}
}

// LogWriter is implemented by every output format.
type LogWriter = kme.Writer

// New creates the writer for the format on top of the sink. The format is
// fixed for the lifetime of the session.
func New(format Format, sink io.WriteCloser, c kme.Config, opts ...kme.Option) (LogWriter, error) {
	switch format {
	case KME60:
		return kme.NewWriter(sink, c, opts...), nil
	default:
		return nil, fmt.Errorf("unsupported log format %d", format)
	}
}

// Create creates the output file for the format and the writer on top of it.
func Create(format Format, c kme.Config, opts ...kme.Option) (LogWriter, error) {
	switch format {
	case KME60:
		return kme.Create(c, opts...)
	default:
		return nil, fmt.Errorf("unsupported log format %d", format)
	}
}
