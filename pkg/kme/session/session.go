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

package session

import (
	"context"
	"expvar"

	"github.com/bits-and-blooms/bitset"
	fsm "github.com/qmuntal/stateless"
	kerrors "github.com/rabbitstack/kmelog/pkg/errors"
	"github.com/rabbitstack/kmelog/pkg/event"
	"github.com/rabbitstack/kmelog/pkg/kme/tick"
	log "github.com/sirupsen/logrus"
)

var (
	// None is the initial state. Nothing has been written to the trace yet
	None = fsm.State("none")
	// VersionWritten is the state reached after the version record is emitted
	VersionWritten = fsm.State("version-written")
	// RTCWritten is the state reached after the real-time clock anchor is emitted
	RTCWritten = fsm.State("rtc-written")
	// Any is the terminal state that accepts an unbounded number of event records
	Any = fsm.State("any")

	versionTransition = fsm.Trigger("version")
	rtcTransition     = fsm.Trigger("rtc")
	rowTransition     = fsm.Trigger("row")

	sessionTransitionErrors = expvar.NewInt("kme.session.transition.errors")
)

// Session tracks which preamble records have been written to the trace and
// gates the record types that may follow. It also remembers the last defined
// channel, so events with the undefined channel inherit it. Session is not
// safe for concurrent use.
type Session struct {
	fsm      *fsm.StateMachine
	conv     tick.Converter
	channels uint8
	// last is the channel of the most recent event that carried the defined channel
	last uint8
	// defined keeps the channels that have produced at least one event
	defined *bitset.BitSet
}

// New creates the session for the timer frequency in MHz and the number of
// channels. Zero channels disables channel range validation.
func New(freq uint32, channels uint8) *Session {
	s := &Session{
		fsm:      fsm.NewStateMachine(None),
		conv:     tick.NewConverter(freq),
		channels: channels,
		last:     event.ChannelUndefined,
		defined:  bitset.New(uint(event.ChannelUndefined)),
	}

	s.fsm.Configure(None).
		Permit(versionTransition, VersionWritten)
	s.fsm.Configure(VersionWritten).
		Permit(rtcTransition, RTCWritten)
	s.fsm.Configure(RTCWritten).
		Permit(rowTransition, Any)
	s.fsm.Configure(Any).
		Ignore(rowTransition)

	s.fsm.OnTransitioned(func(ctx context.Context, transition fsm.Transition) {
		log.Debugf("trace session transitioned from %v to %v", transition.Source, transition.Destination)
	})

	return s
}

// State returns the current session state.
func (s *Session) State() fsm.State { return s.fsm.MustState() }

// Converter returns the tick converter bound to the session frequency.
func (s *Session) Converter() tick.Converter { return s.conv }

// Frequency returns the timer frequency in MHz.
func (s *Session) Frequency() uint32 { return s.conv.Frequency() }

// Channels returns the number of channels declared by the session.
func (s *Session) Channels() uint8 { return s.channels }

// LastChannel returns the last defined channel or the undefined channel
// sentinel if no event has carried the channel yet.
func (s *Session) LastChannel() uint8 { return s.last }

// IsDefined determines if the channel has produced any event in the session.
func (s *Session) IsDefined(ch uint8) bool { return s.defined.Test(uint(ch)) }

// DefinedChannels returns the number of channels that have produced events.
func (s *Session) DefinedChannels() uint { return s.defined.Count() }

// NeedsVersion determines which preamble records are still to be written.
// It returns true if the version record is missing, false if only the RTC
// anchor is missing, and ErrAlreadyInitialized once the preamble is complete.
func (s *Session) NeedsVersion() (bool, error) {
	switch s.State() {
	case None:
		return true, nil
	case VersionWritten:
		return false, nil
	default:
		return false, kerrors.ErrAlreadyInitialized
	}
}

// CanWriteRow checks whether event records may be written.
func (s *Session) CanWriteRow() error {
	switch s.State() {
	case RTCWritten, Any:
		return nil
	default:
		return kerrors.ErrHeaderNotWritten
	}
}

// ResolveChannel returns the channel that is stored in the event record.
// The undefined channel is replaced by the last defined channel.
func (s *Session) ResolveChannel(ch uint8) (uint8, error) {
	if ch == event.ChannelUndefined {
		return s.last, nil
	}
	if s.channels > 0 && ch >= s.channels {
		return ch, kerrors.ErrInvalidChannel(ch, s.channels)
	}
	return ch, nil
}

// MarkVersion records the version record was written.
func (s *Session) MarkVersion() error { return s.fire(versionTransition) }

// MarkRTC records the RTC anchor was written.
func (s *Session) MarkRTC() error { return s.fire(rtcTransition) }

// MarkRow records the event record was written on the given channel. It
// returns true if the channel became defined with this event.
func (s *Session) MarkRow(ch uint8) (bool, error) {
	if s.State() != Any {
		if err := s.fire(rowTransition); err != nil {
			return false, err
		}
	}
	if ch == event.ChannelUndefined {
		return false, nil
	}
	s.last = ch
	if s.defined.Test(uint(ch)) {
		return false, nil
	}
	s.defined.Set(uint(ch))
	return true, nil
}

func (s *Session) fire(trigger fsm.Trigger) error {
	if err := s.fsm.Fire(trigger); err != nil {
		sessionTransitionErrors.Add(1)
		return err
	}
	return nil
}
