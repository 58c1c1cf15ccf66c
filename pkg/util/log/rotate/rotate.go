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

package rotate

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config is the configuration for the rotate file hook.
type Config struct {
	Filename   string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Level      logrus.Level
	Formatter  logrus.Formatter
}

// File represents the rotate file hook. Each entry is annotated with the
// source location of the log statement.
type File struct {
	config       Config
	w            io.Writer
	depth        int
	skip         int
	skipPrefixes []string
}

// NewHook builds a new rotate file hook.
func NewHook(config Config) (logrus.Hook, error) {
	if config.Filename == "" {
		return nil, fmt.Errorf("rotate hook requires the log file name")
	}
	if config.Formatter == nil {
		config.Formatter = &logrus.TextFormatter{}
	}
	hook := &File{
		config:       config,
		depth:        20,
		skip:         5,
		skipPrefixes: []string{"logrus/", "logrus@"},
	}
	hook.w = &lumberjack.Logger{
		Filename:   config.Filename,
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
	}
	return hook, nil
}

// Levels determines log levels that for which the logs are written.
func (hook *File) Levels() []logrus.Level {
	return logrus.AllLevels[:hook.config.Level+1]
}

// Fire is called by logrus when it is about to write the log entry.
func (hook *File) Fire(entry *logrus.Entry) error {
	modified := entry.WithField("source", hook.source())
	modified.Level = entry.Level
	modified.Message = entry.Message
	modified.Time = entry.Time
	b, err := hook.config.Formatter.Format(modified)
	if err != nil {
		return err
	}
	_, err = hook.w.Write(b)
	return err
}

// source returns the file:line of the first caller outside logrus.
func (hook *File) source() string {
	for i := 0; i < hook.depth; i++ {
		_, file, line, ok := runtime.Caller(hook.skip + i)
		if !ok {
			break
		}
		file = trimPath(file)
		if !hook.skipFile(file) {
			return fmt.Sprintf("%s:%d", file, line)
		}
	}
	return ""
}

func (hook *File) skipFile(file string) bool {
	for _, prefix := range hook.skipPrefixes {
		if strings.HasPrefix(file, prefix) {
			return true
		}
	}
	return false
}

// trimPath keeps the parent directory and the base name of the file.
func trimPath(file string) string {
	n := 0
	for i := len(file) - 1; i > 0; i-- {
		if file[i] == '/' {
			n++
			if n >= 2 {
				return file[i+1:]
			}
		}
	}
	return file
}
