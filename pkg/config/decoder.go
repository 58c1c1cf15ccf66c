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
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

func decode(input, output interface{}) error {
	var decoderConfig = &mapstructure.DecoderConfig{
		Metadata:         nil,
		Result:           output,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mappingDecodeHook(),
		),
	}
	decoder, err := mapstructure.NewDecoder(decoderConfig)
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

// mappingDecodeHook turns the name=value list representation into a map.
// The list comes either from the command line flag, where each element is
// a single mapping, or from the environment as a comma-separated string.
func mappingDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to.Kind() != reflect.Map {
			return data, nil
		}
		var items []string
		switch v := data.(type) {
		case string:
			s := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(v), "["), "]")
			if s == "" {
				return map[string]interface{}{}, nil
			}
			items = strings.Split(s, ",")
		case []string:
			items = v
		case []interface{}:
			for _, e := range v {
				s, ok := e.(string)
				if !ok {
					return nil, fmt.Errorf("expected name=value mapping but got %v", e)
				}
				items = append(items, s)
			}
		default:
			return data, nil
		}
		m := make(map[string]interface{}, len(items))
		for _, item := range items {
			name, value, ok := strings.Cut(strings.TrimSpace(item), "=")
			if !ok || name == "" || value == "" {
				return nil, fmt.Errorf("%q is not a valid name=value mapping", item)
			}
			m[name] = value
		}
		return m, nil
	}
}
