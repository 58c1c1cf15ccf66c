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

package kme

import (
	"github.com/rabbitstack/kmelog/pkg/kme/tick"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	kmeFile      = "kme.file"
	kmeFrequency = "kme.frequency"
	kmeChannels  = "kme.channels"
	kmeCompress  = "kme.compress"
)

// Config contains the settings that are bound to the trace session. They are
// immutable once the writer is created.
type Config struct {
	// File is the path of the trace file.
	File string `json:"kme.file" yaml:"kme.file"`
	// Frequency is the hardware timer frequency in MHz.
	Frequency uint32 `json:"kme.frequency" yaml:"kme.frequency"`
	// Channels is the number of bus channels in the session. Zero disables channel validation.
	Channels uint8 `json:"kme.channels" yaml:"kme.channels"`
	// Compress indicates whether the trace is compressed with zstd.
	Compress bool `json:"kme.compress" yaml:"kme.compress"`
}

// InitFromViper initializes trace configuration from Viper.
func (c *Config) InitFromViper(v *viper.Viper) {
	c.File = v.GetString(kmeFile)
	c.Frequency = v.GetUint32(kmeFrequency)
	c.Channels = uint8(v.GetUint(kmeChannels))
	c.Compress = v.GetBool(kmeCompress)
}

// AddFlags registers persistent trace flags.
func (c *Config) AddFlags(flags *pflag.FlagSet) {
	flags.StringP(kmeFile, "o", "", "The path of the output trace file")
	flags.Int(kmeFrequency, int(tick.DefaultFrequency), "Specifies the hardware timer frequency in MHz used to convert timestamps into ticks")
	flags.Int(kmeChannels, 1, "Specifies the number of bus channels in the session. Events on channels beyond this number are rejected. Zero disables the check")
	flags.Bool(kmeCompress, false, "Indicates whether the trace file is compressed with zstd")
}
