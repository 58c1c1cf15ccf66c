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

package candump

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rabbitstack/kmelog/pkg/event"
	log "github.com/sirupsen/logrus"
)

const (
	canRtrFlag = 0x40000000
	canErrFlag = 0x20000000
	canEffMask = 0x1fffffff
	canStdMask = 0x7ff
	canErrMask = 0x1fffffff

	// fdBRS and fdESI are the flags nibble bits of CAN FD frames
	fdBRS = 0x01
	fdESI = 0x02
)

// Undefined is the interface name that maps to the undefined channel.
const Undefined = "-"

var (
	errMalformedLine = func(line string) error { return fmt.Errorf("malformed candump line: %q", line) }
	errTimestamp     = func(s string, err error) error { return fmt.Errorf("invalid %q timestamp: %v", s, err) }
	errFrame         = func(s string, reason string) error { return fmt.Errorf("invalid %q frame: %s", s, reason) }
	errTooManyIfaces = func(iface string, channels uint8) error {
		return fmt.Errorf("can't map %s interface to a channel. All %d channel(s) are taken", iface, channels)
	}
	// ErrTimeTravel signals the frame timestamp precedes the first frame of the log
	ErrTimeTravel = errors.New("frame timestamp precedes the session start")
)

// Parser turns candump log lines into bus events. Interface names are
// mapped to channel indices either from the static mapping or in the order
// of appearance. Timestamps are rebased to the first frame in the log.
type Parser struct {
	ifaces   map[string]uint8
	channels uint8
	start    time.Time
	origin   int64
	started  bool
}

// NewParser creates the candump parser. The mapping pins interface names to
// channels. If channels is not zero, no more than channels interfaces are accepted.
func NewParser(mapping map[string]uint8, channels uint8) *Parser {
	ifaces := make(map[string]uint8, len(mapping))
	for iface, ch := range mapping {
		ifaces[iface] = ch
	}
	return &Parser{ifaces: ifaces, channels: channels}
}

// Start returns the wall clock time of the first timestamped frame.
func (p *Parser) Start() time.Time { return p.start }

// Interfaces returns interface names sorted by their channel index.
func (p *Parser) Interfaces() []string {
	ifaces := make([]string, 0, len(p.ifaces))
	for iface := range p.ifaces {
		ifaces = append(ifaces, iface)
	}
	sort.Slice(ifaces, func(i, j int) bool { return p.ifaces[ifaces[i]] < p.ifaces[ifaces[j]] })
	return ifaces
}

// Parse parses the candump line in either the log file format
//
//	(1436509052.249713) can0 123#DEADBEEF
//
// or the same line without the timestamp.
func (p *Parser) Parse(line string) (*event.Event, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, errMalformedLine(line)
	}
	e := &event.Event{}
	if strings.HasPrefix(fields[0], "(") {
		ts, err := p.timestamp(fields[0])
		if err != nil {
			return nil, err
		}
		e.Timestamp = ts
		fields = fields[1:]
	}
	if len(fields) < 2 {
		return nil, errMalformedLine(line)
	}
	ch, err := p.channel(fields[0])
	if err != nil {
		return nil, err
	}
	e.Channel = ch
	if err := parseFrame(fields[1], e); err != nil {
		return nil, err
	}
	// the remaining fields carry the direction in some candump variants
	if len(fields) > 2 && fields[2] == "T" {
		e.Flags |= event.Tx
	}
	return e, nil
}

func (p *Parser) timestamp(s string) (uint64, error) {
	ns, err := parseTimestamp(strings.Trim(s, "()"))
	if err != nil {
		return 0, errTimestamp(s, err)
	}
	if !p.started {
		p.started = true
		p.origin = ns
		p.start = time.Unix(0, ns)
	}
	if ns < p.origin {
		return 0, ErrTimeTravel
	}
	return uint64(ns - p.origin), nil
}

func (p *Parser) channel(iface string) (uint8, error) {
	if iface == Undefined {
		return event.ChannelUndefined, nil
	}
	if ch, ok := p.ifaces[iface]; ok {
		return ch, nil
	}
	var next uint8
	for _, ch := range p.ifaces {
		if ch >= next {
			next = ch + 1
		}
	}
	if (p.channels > 0 && next >= p.channels) || next == event.ChannelUndefined {
		return 0, errTooManyIfaces(iface, p.channels)
	}
	p.ifaces[iface] = next
	log.Debugf("%s interface mapped to channel %d", iface, next)
	return next, nil
}

// parseTimestamp parses the seconds.fraction timestamp into Unix nanoseconds.
func parseTimestamp(s string) (int64, error) {
	secs, frac, _ := strings.Cut(s, ".")
	sec, err := strconv.ParseInt(secs, 10, 64)
	if err != nil {
		return 0, err
	}
	if len(frac) > 9 {
		frac = frac[:9]
	}
	var nsec int64
	if frac != "" {
		nsec, err = strconv.ParseInt(frac+strings.Repeat("0", 9-len(frac)), 10, 64)
		if err != nil {
			return 0, err
		}
	}
	return sec*int64(time.Second) + nsec, nil
}

// parseFrame parses the frame in the <id>#<data>, <id>#R[len] or
// <id>##<flags><data> notation.
func parseFrame(s string, e *event.Event) error {
	ids, data, ok := strings.Cut(s, "#")
	if !ok {
		return errFrame(s, "missing # separator")
	}
	id, err := strconv.ParseUint(ids, 16, 32)
	if err != nil {
		return errFrame(s, "identifier is not hexadecimal")
	}
	switch {
	case len(ids) == 3:
		if id > canStdMask {
			return errFrame(s, "standard identifier out of range")
		}
		e.ID = uint32(id)
	case len(ids) == 8:
		raw := uint32(id)
		if raw&canErrFlag != 0 {
			e.Kind = event.Error
			e.ID = raw & canErrMask
		} else {
			e.ID = raw & canEffMask
			e.Flags |= event.Extended
		}
		if raw&canRtrFlag != 0 {
			e.Flags |= event.Remote
		}
	default:
		return errFrame(s, "identifier must have 3 or 8 hex digits")
	}
	if e.Kind == 0 {
		e.Kind = event.Data
	}

	switch {
	case strings.HasPrefix(data, "#"):
		if len(data) < 2 {
			return errFrame(s, "missing CAN FD flags")
		}
		flags, err := strconv.ParseUint(data[1:2], 16, 8)
		if err != nil {
			return errFrame(s, "CAN FD flags are not hexadecimal")
		}
		e.Flags |= event.FD
		if flags&fdBRS != 0 {
			e.Flags |= event.BRS
		}
		if flags&fdESI != 0 {
			e.Flags |= event.ESI
		}
		data = data[2:]
	case strings.HasPrefix(data, "R"):
		e.Flags |= event.Remote
		if len(data) > 1 {
			n, err := strconv.ParseUint(data[1:], 16, 8)
			if err != nil || n > 8 {
				return errFrame(s, "remote frame length must be a single digit between 0 and 8")
			}
			e.Length = uint8(n)
		}
		return nil
	}

	data = strings.ReplaceAll(data, ".", "")
	payload, err := hex.DecodeString(data)
	if err != nil {
		return errFrame(s, "payload is not hexadecimal")
	}
	if len(payload) > 0 {
		e.Payload = payload
	}
	return nil
}

// Scan reads candump lines from the reader and hands each parsed event to
// the callback. Empty lines and lines starting with # are skipped. Scanning
// stops on the first error.
func Scan(r io.Reader, p *Parser, fn func(*event.Event) error) error {
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		e, err := p.Parse(line)
		if err != nil {
			return fmt.Errorf("line %d: %v", n, err)
		}
		if err := fn(e); err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
	}
	return scanner.Err()
}
