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
	"github.com/rabbitstack/kmelog/pkg/util/spinner"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert the candump log into the trace file",
	Example: `  candump -L can0 can1 | kmelog convert -o bench --interfaces can0=0,can1=1 --kme.channels 2
  kmelog convert -i candump.log -o bench.kme60 --kme.frequency 80 --kme.compress`,
	RunE: convert,
}

var convertConfig = config.NewWithOpts(config.WithConvert())

func init() {
	convertConfig.MustViperize(convertCmd)
}

func convert(cmd *cobra.Command, args []string) error {
	app, err := bootstrap.NewApp(convertConfig)
	if err != nil {
		return err
	}
	r, err := app.Input()
	if err != nil {
		return err
	}
	defer r.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	spin := spinner.Show(os.Stderr, "Converting")
	stats, err := app.Convert(ctx, r)
	if err != nil {
		spin.Stop("")
		return err
	}
	spin.Stop("Converted")
	stats.Render(os.Stdout)

	return nil
}
