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

package config

import (
	"bytes"
	"text/template"

	"github.com/rabbitstack/kmelog/pkg/event"
)

var schema = `
{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"properties": {
		"config-file":		{"type": "string"},
		"format":			{"type": "string", "enum": ["kme60", "kme", "KME60", "KME"]},
		"input":			{"type": "string"},
		"interfaces": {
			"anyOf": [
				{
					"type": "object",
					"additionalProperties": {"type": "integer", "minimum": 0, "maximum": {{ .MaxChannel }}}
				},
				{
					"type": "array",
					"items": {"type": "string", "pattern": "^[^=]+=[0-9]+$"}
				},
				{"type": "string"},
				{"type": "null"}
			]
		},
		"kme": {
			"type": "object",
			"properties": {
				"file":			{"type": "string"},
				"frequency":	{"type": "integer", "minimum": 0, "maximum": {{ .MaxFrequency }}},
				"channels":		{"type": "integer", "minimum": 0, "maximum": {{ .MaxChannels }}},
				"compress":		{"type": "boolean"}
			},
			"additionalProperties": false
		},
		"logging": {
			"type": "object",
			"properties": {
				"level": 			{"type": "string", "enum": ["panic", "fatal", "error", "warn", "warning", "info", "debug", "trace"]},
				"max-age":			{"type": "integer"},
				"max-backups":		{"type": "integer", "minimum": 1},
				"max-size":			{"type": "integer", "minimum": 1},
				"formatter":		{"type": "string", "enum": ["json", "text"]},
				"path":				{"type": "string"},
				"log-stdout":		{"type": "boolean"}
			},
			"additionalProperties": false
		}
	},
	"additionalProperties": false
}
`

type schemaConfig struct {
	MaxChannel   uint8
	MaxChannels  uint8
	MaxFrequency uint32
}

func interpolateSchema() string {
	tmpl := template.Must(template.New("schema").Parse(schema))

	var b bytes.Buffer
	err := tmpl.Execute(&b, &schemaConfig{
		MaxChannel:   event.ChannelUndefined - 1,
		MaxChannels:  event.ChannelUndefined,
		MaxFrequency: ^uint32(0),
	})
	if err != nil {
		return ""
	}

	return b.String()
}
