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

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	logLevel      = "logging.level"
	logMaxAge     = "logging.max-age"
	logMaxBackups = "logging.max-backups"
	logMaxSize    = "logging.max-size"
	logFormatter  = "logging.formatter"
	logPath       = "logging.path"
	logStdout     = "logging.log-stdout"
)

// Config holds the logging settings shared by all kmelog commands. The
// trace itself never goes through the logger, only diagnostics do.
type Config struct {
	// Level is the least severe level that reaches the log file.
	Level string `json:"logging.level" yaml:"logging.level"`
	// MaxAge is the number of days rotated log files are kept. Zero keeps them forever.
	MaxAge int `json:"logging.max-age" yaml:"logging.max-age"`
	// MaxBackups is the number of rotated log files kept.
	MaxBackups int `json:"logging.max-backups" yaml:"logging.max-backups"`
	// MaxSize is the size in megabytes that triggers the rotation.
	MaxSize int `json:"logging.max-size" yaml:"logging.max-size"`
	// Formatter is either json or text.
	Formatter string `json:"logging.formatter" yaml:"logging.formatter"`
	// Path overrides the logs directory.
	Path string `json:"logging.path" yaml:"logging.path"`
	// LogStdout mirrors log lines to standard error.
	LogStdout bool `json:"logging.log-stdout" yaml:"logging.log-stdout"`
}

// Dir returns the logs directory. Unless overridden, logs live in the
// kmelog directory of the user cache. An empty string is returned if the
// cache directory can't be resolved.
func (c Config) Dir() string {
	if c.Path != "" {
		return c.Path
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "kmelog", "logs")
}

// InitFromViper initializes logging configuration from Viper.
func (c *Config) InitFromViper(v *viper.Viper) {
	c.Level = v.GetString(logLevel)
	c.MaxAge = v.GetInt(logMaxAge)
	c.MaxBackups = v.GetInt(logMaxBackups)
	c.MaxSize = v.GetInt(logMaxSize)
	c.Formatter = v.GetString(logFormatter)
	c.Path = v.GetString(logPath)
	c.LogStdout = v.GetBool(logStdout)
}

// AddFlags registers persistent logging flags.
func (c *Config) AddFlags(flags *pflag.FlagSet) {
	flags.String(logLevel, "info", "Least severe level written to the log file (trace|debug|info|warn|error)")
	flags.Int(logMaxAge, 0, "Days to keep rotated log files. Zero keeps them forever")
	flags.Int(logMaxBackups, 5, "Number of rotated log files to keep")
	flags.Int(logMaxSize, 50, "Size in megabytes at which the log file is rotated")
	flags.String(logFormatter, "text", "Log line format (json|text)")
	flags.String(logPath, "", "Directory of the kmelog.log file. Defaults to kmelog/logs in the user cache directory")
	flags.Bool(logStdout, false, "Mirror log lines to standard error, e.g. when following a conversion")
}
