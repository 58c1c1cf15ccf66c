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

package spinner

import (
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// Spinner renders the progress indicator of long-running commands.
type Spinner struct {
	s *spinner.Spinner
}

// Show creates a new spinner that renders to the writer and starts it.
func Show(w io.Writer, prefix string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w), spinner.WithHiddenCursor(true))
	s.Prefix = "> " + prefix + " "
	s.Start()
	return &Spinner{s: s}
}

// Stop stops the spinner and leaves the message in its place.
func (s *Spinner) Stop(msg string) {
	if msg != "" {
		s.s.FinalMSG = "> " + msg + "\n"
	}
	s.s.Stop()
}
