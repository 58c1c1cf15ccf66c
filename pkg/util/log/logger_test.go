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

package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestInitFromConfig(t *testing.T) {
	dir := t.TempDir()
	require.Error(t, InitFromConfig(Config{Path: dir, Level: "loud"}, "kmelog.log"))
	require.NoError(t, InitFromConfig(Config{Path: dir, Level: "info", Formatter: "text"}, "kmelog.log"))

	logrus.Info("kmelog initialized")

	_, err := os.Stat(filepath.Join(dir, "kmelog.log"))
	require.NoError(t, err)
}

func TestInitFromConfigCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	require.NoError(t, InitFromConfig(Config{Path: dir, Level: "debug", Formatter: "json"}, "kmelog.log"))
	logrus.Debug("trace session started")

	_, err := os.Stat(filepath.Join(dir, "kmelog.log"))
	require.NoError(t, err)
}

func TestConfigDir(t *testing.T) {
	require.Equal(t, "/var/log/kmelog", Config{Path: "/var/log/kmelog"}.Dir())
	if cache, err := os.UserCacheDir(); err == nil {
		require.Equal(t, filepath.Join(cache, "kmelog", "logs"), Config{}.Dir())
	}
}
