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

package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrHeaderNotWritten is returned when an event is written before the trace preamble
	ErrHeaderNotWritten = errors.New("trace header has not been written")
	// ErrAlreadyInitialized is returned when the trace preamble is written more than once
	ErrAlreadyInitialized = errors.New("trace header has already been written")
	// ErrSinkClosed signals the writer was closed and its sink released
	ErrSinkClosed = errors.New("trace sink is closed")

	// ErrPayloadTooLarge signals the payload doesn't fit in the record payload slot
	ErrPayloadTooLarge = func(size, max int) error {
		return &EncodingError{Reason: fmt.Sprintf("payload of %d bytes exceeds the %d bytes slot", size, max)}
	}
	// ErrInvalidChannel signals the channel is outside the range of channels declared in the session
	ErrInvalidChannel = func(ch uint8, channels uint8) error {
		return &EncodingError{Reason: fmt.Sprintf("channel %d is out of range. The session declares %d channel(s)", ch, channels)}
	}
)

// EncodingError is returned when the event can't be represented in the fixed-size record.
type EncodingError struct {
	Reason string
}

// Error returns the error message.
func (e *EncodingError) Error() string {
	return "couldn't encode record: " + e.Reason
}

// SinkWriteError wraps the error returned by the underlying output sink.
type SinkWriteError struct {
	Op  string
	Err error
}

// Error returns the error message.
func (e *SinkWriteError) Error() string {
	return fmt.Sprintf("couldn't write %s to trace sink: %v", e.Op, e.Err)
}

// Unwrap returns the sink error.
func (e *SinkWriteError) Unwrap() error { return e.Err }

// IsEncoding returns true if the error is EncodingError.
func IsEncoding(err error) bool {
	var e *EncodingError
	return errors.As(err, &e)
}

// IsSinkWrite returns true if the error is SinkWriteError.
func IsSinkWrite(err error) bool {
	var e *SinkWriteError
	return errors.As(err, &e)
}

// Status is the outcome code of the writer operation.
type Status uint8

const (
	// OK designates the successful operation
	OK Status = iota
	// HeaderNotWritten designates the event write before the preamble
	HeaderNotWritten
	// AlreadyInitialized designates the repeated preamble write
	AlreadyInitialized
	// EncodingFailed designates the event that doesn't fit the record layout
	EncodingFailed
	// SinkWriteFailed designates the I/O failure of the output sink
	SinkWriteFailed
	// Unknown designates any other failure
	Unknown
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case HeaderNotWritten:
		return "header not written"
	case AlreadyInitialized:
		return "already initialized"
	case EncodingFailed:
		return "encoding error"
	case SinkWriteFailed:
		return "sink write error"
	default:
		return "unknown"
	}
}

// StatusOf classifies the error returned by the writer into the status code.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return OK
	case errors.Is(err, ErrHeaderNotWritten):
		return HeaderNotWritten
	case errors.Is(err, ErrAlreadyInitialized):
		return AlreadyInitialized
	case IsEncoding(err):
		return EncodingFailed
	case IsSinkWrite(err), errors.Is(err, ErrSinkClosed):
		return SinkWriteFailed
	default:
		return Unknown
	}
}
