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

import (
	"fmt"
	"io"
	"runtime"

	semver "github.com/hashicorp/go-version"
	"github.com/jedib0t/go-pretty/v6/table"
	kmever "github.com/rabbitstack/kmelog/pkg/kme/version"
)

// Version stores the SemVer release information along with the
// commit that produced the release and other useful information.
type Version struct {
	Major  int64
	Minor  int64
	Patch  int64
	Commit string
	Date   string
}

// New parses the version string and return the version instance. An
// empty version string denotes a development build.
func New(v, commit, date string) (Version, error) {
	if v == "" {
		return Version{Commit: commit, Date: date}, nil
	}
	sem, err := semver.NewSemver(v)
	if err != nil {
		return Version{}, fmt.Errorf("invalid semver release %s: %v", v, err)
	}
	segs := sem.Segments64()
	return Version{
		Major:  segs[0],
		Minor:  segs[1],
		Patch:  segs[2],
		Commit: commit,
		Date:   date,
	}, nil
}

// IsDev determines if this is a dev version.
func (v Version) IsDev() bool { return v.Major == 0 && v.Minor == 0 && v.Patch == 0 }

// String returns the release string.
func (v Version) String() string {
	if v.IsDev() {
		return "dev"
	}
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Render dumps the version information to the writer.
func (v Version) Render(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	t.AppendRow(table.Row{"Version", v.String()})
	t.AppendRow(table.Row{"Commit", v.Commit})
	t.AppendRow(table.Row{"Build date", v.Date})

	t.AppendSeparator()

	t.AppendRow(table.Row{"Trace format", fmt.Sprintf("KME60 %d.%d", kmever.Major, kmever.Minor)})
	t.AppendRow(table.Row{"Go compiler", runtime.Version()})

	t.Render()
}
