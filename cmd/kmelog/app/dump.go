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
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rabbitstack/kmelog/internal/bootstrap"
	"github.com/rabbitstack/kmelog/pkg/config"
	"github.com/spf13/cobra"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the records of the trace file",
	RunE:  dump,
}

var dumpConfig = config.NewWithOpts(config.WithDump())

func init() {
	dumpConfig.MustViperize(dumpCmd)
}

func dump(cmd *cobra.Command, args []string) error {
	app, err := bootstrap.NewApp(dumpConfig)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.Dump(ctx, os.Stdout)
}
