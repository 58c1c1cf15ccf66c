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
	"os"

	"github.com/rabbitstack/kmelog/internal/bootstrap"
	"github.com/rabbitstack/kmelog/pkg/config"
	"github.com/spf13/cobra"
)

var Command = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	RunE:  printConfig,
}

var (
	// config command options
	cfg = config.NewWithOpts()
)

func init() {
	cfg.MustViperize(Command)
}

func printConfig(cmd *cobra.Command, args []string) error {
	if err := bootstrap.InitConfigAndLogger(cfg); err != nil {
		return err
	}
	s, err := cfg.Print()
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(os.Stdout, s)
	return err
}
