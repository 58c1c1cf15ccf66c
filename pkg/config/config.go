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
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rabbitstack/kmelog/pkg/kme"
	"github.com/rabbitstack/kmelog/pkg/logwriter"
	"github.com/rabbitstack/kmelog/pkg/util/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	configFile = "config-file"
	format     = "format"
	input      = "input"
	interfaces = "interfaces"
)

// Config stores the settings of the trace conversion pipeline.
type Config struct {
	// KME contains the trace session settings.
	KME kme.Config `json:"kme" yaml:"kme"`
	// Log contains log-specific configuration options
	Log log.Config `json:"logging" yaml:"logging"`

	// Format is the output log format.
	Format logwriter.Format
	// Input is the path of the input file. The convert command reads from
	// standard input when it is empty or a dash.
	Input string
	// Interfaces maps capture interface names to bus channels.
	Interfaces map[string]uint8

	flags  *pflag.FlagSet
	viper  *viper.Viper
	opts   *Options
	loaded bool
}

// Options determines which config flags are toggled depending on the command type.
type Options struct {
	convert bool
	dump    bool
}

// Option is the type alias for the config option.
type Option func(*Options)

// WithConvert determines the convert command is executed.
func WithConvert() Option {
	return func(o *Options) {
		o.convert = true
	}
}

// WithDump determines the dump command is executed.
func WithDump() Option {
	return func(o *Options) {
		o.dump = true
	}
}

// NewWithOpts builds a new configuration store from a variety of passed options.
func NewWithOpts(options ...Option) *Config {
	opts := &Options{}

	for _, opt := range options {
		opt(opts)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	c := &Config{
		KME:        kme.Config{},
		Log:        log.Config{},
		Interfaces: make(map[string]uint8),
		viper:      v,
		flags:      new(pflag.FlagSet),
		opts:       opts,
	}

	c.addFlags()

	return c
}

// MustViperize adds the flag set to the Cobra command and binds them within the Viper flags.
func (c *Config) MustViperize(cmd *cobra.Command) {
	cmd.PersistentFlags().AddFlagSet(c.flags)
	if err := c.viper.BindPFlags(cmd.PersistentFlags()); err != nil {
		panic(err)
	}
	if c.opts.convert {
		if err := cmd.MarkPersistentFlagRequired("kme.file"); err != nil {
			panic(err)
		}
	}
	if c.opts.dump {
		if err := cmd.MarkPersistentFlagRequired(input); err != nil {
			panic(err)
		}
	}
}

// Init setups the configuration state from Viper.
func (c *Config) Init() error {
	c.KME.InitFromViper(c.viper)
	c.Log.InitFromViper(c.viper)

	c.Input = c.viper.GetString(input)

	if c.opts.convert || c.opts.dump {
		var err error
		c.Format, err = logwriter.ParseFormat(c.viper.GetString(format))
		if err != nil {
			return err
		}
	}
	if c.opts.convert {
		c.Interfaces = make(map[string]uint8)
		if err := decode(c.viper.Get(interfaces), &c.Interfaces); err != nil {
			return fmt.Errorf("couldn't decode interface mappings: %v", err)
		}
	}
	return nil
}

// TryLoadFile attempts to load the configuration file from specified path on the file system.
func (c *Config) TryLoadFile(file string) error {
	c.viper.SetConfigFile(file)
	if err := c.viper.ReadInConfig(); err != nil {
		return err
	}
	c.loaded = true
	return nil
}

// IsLoaded determines if the configuration file was loaded.
func (c *Config) IsLoaded() bool { return c.loaded }

// Validate ensures that all configuration options provided by user have the expected values. It returns
// a list of validation errors prefixed with the offending configuration property/flag.
func (c *Config) Validate() error {
	if c.loaded {
		file := c.File()
		var out interface{}
		b, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		switch filepath.Ext(file) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(b, &out)
		case ".json":
			err = json.Unmarshal(b, &out)
		default:
			return fmt.Errorf("%s is not a supported config file extension", filepath.Ext(file))
		}
		if err != nil {
			return fmt.Errorf("couldn't read the config file: %v", err)
		}
		// validate config file content
		valid, errs := validate(out)
		if !valid || len(errs) > 0 {
			return fmt.Errorf("invalid config: %v", stderrors.Join(errs...))
		}
	}
	// now validate the Viper config flags
	valid, errs := validate(c.viper.AllSettings())
	if !valid || len(errs) > 0 {
		return fmt.Errorf("invalid config: %v", stderrors.Join(errs...))
	}
	return c.validateInterfaces()
}

// validateInterfaces checks the interface mappings fit into the session channels.
func (c *Config) validateInterfaces() error {
	if c.KME.Channels == 0 {
		return nil
	}
	names := make([]string, 0, len(c.Interfaces))
	for name := range c.Interfaces {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if ch := c.Interfaces[name]; ch >= c.KME.Channels {
			return fmt.Errorf("invalid config: %s interface is mapped to channel %d but the session has %d channel(s)", name, ch, c.KME.Channels)
		}
	}
	return nil
}

// File returns the config file path.
func (c *Config) File() string { return c.viper.GetString(configFile) }

func defaultConfigFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "kmelog.yml"
	}
	return filepath.Join(dir, "kmelog", "kmelog.yml")
}

func (c *Config) addFlags() {
	c.flags.String(configFile, defaultConfigFile(), "Indicates the location of the configuration file")
	if c.opts.convert {
		c.flags.String(format, logwriter.KME60.String(), "Specifies the output log format")
		c.flags.StringP(input, "i", "", "The path of the candump log file. Frames are read from standard input if omitted")
		c.flags.StringSlice(interfaces, []string{}, "Comma-separated list of interface to channel mappings, e.g. can0=0,can1=1. Unmapped interfaces are assigned to free channels in order of appearance")
		c.KME.AddFlags(c.flags)
	}
	if c.opts.dump {
		c.flags.String(format, logwriter.KME60.String(), "Specifies the input log format")
		c.flags.StringP(input, "i", "", "The path of the trace file to dump")
	}
	c.Log.AddFlags(c.flags)
}
