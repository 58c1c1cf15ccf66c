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

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

// validate checks the settings tree against the config schema. The returned
// errors are prefixed with the offending property.
func validate(m interface{}) (bool, []error) {
	converted, err := stringifyKeys(m, "")
	if err != nil {
		return false, []error{fmt.Errorf("fail to convert keys to string: %v", err)}
	}
	loader := gojsonschema.NewGoLoader(converted)
	sc := gojsonschema.NewStringLoader(interpolateSchema())
	r, err := gojsonschema.Validate(sc, loader)
	if err != nil {
		return false, []error{fmt.Errorf("fail to validate config through schema: %v", err)}
	}
	errs := make([]error, len(r.Errors()))
	for i, err := range r.Errors() {
		errs[i] = errors.Errorf("%s: %s", err.Field(), err.Description())
	}
	return r.Valid(), errs
}

// stringifyKeys walks the tree produced by the YAML decoder and rewrites
// all map keys to strings, which is what the schema loader expects.
func stringifyKeys(value interface{}, path string) (interface{}, error) {
	switch v := value.(type) {
	case map[string]interface{}:
		dict := make(map[string]interface{}, len(v))
		for key, entry := range v {
			e, err := stringifyKeys(entry, joinPath(path, key))
			if err != nil {
				return nil, err
			}
			dict[key] = e
		}
		return dict, nil
	case map[interface{}]interface{}:
		dict := make(map[string]interface{}, len(v))
		for k, entry := range v {
			key, ok := k.(string)
			if !ok {
				return nil, invalidKeyError(path, k)
			}
			e, err := stringifyKeys(entry, joinPath(path, key))
			if err != nil {
				return nil, err
			}
			dict[key] = e
		}
		return dict, nil
	case []interface{}:
		list := make([]interface{}, 0, len(v))
		for i, entry := range v {
			e, err := stringifyKeys(entry, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			list = append(list, e)
		}
		return list, nil
	}
	return value, nil
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func invalidKeyError(path string, key interface{}) error {
	if path == "" {
		return errors.Errorf("non-string key at top level: %#v", key)
	}
	return errors.Errorf("non-string key in %s: %#v", path, key)
}
