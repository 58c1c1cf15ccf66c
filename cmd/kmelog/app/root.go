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

package app

import (
	"github.com/rabbitstack/kmelog/cmd/kmelog/app/config"
	"github.com/spf13/cobra"
)

// RootCmd is the entrance to kmelog CLI
var RootCmd = &cobra.Command{
	Use:   "kmelog",
	Short: "Bus trace logger producing KME60 binary traces",
	Long: `
	kmelog converts captured bus traffic into KME60 traces. The trace is a
	sequence of fixed-size little-endian records. It opens with the version
	record and the RTC anchor, followed by CAN, error, trigger and RTC
	records timestamped in hardware timer ticks.
	`,
	SilenceUsage: true,
}

func init() {
	RootCmd.AddCommand(convertCmd)
	RootCmd.AddCommand(dumpCmd)
	RootCmd.AddCommand(config.Command)
	RootCmd.AddCommand(versionCmd)
}
