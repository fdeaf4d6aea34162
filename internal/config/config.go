/*
 * config.go, part of gobalance.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

//Package config loads the settings shared by the creb command and the crebd
//server: defaults, then an optional YAML file, then CREB_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	balance "github.com/rmera/gobalance"
)

//EnvPrefix starts the name of every environment variable read by Load.
const EnvPrefix = "CREB_"

type Log struct {
	Level       string `yaml:"level" validate:"oneof=debug info warn error"`
	Development bool   `yaml:"development"`
}

type Balance struct {
	Integers bool `yaml:"integers"`
	Pivot    int  `yaml:"pivot" validate:"gte=-1"` //-1 is the last species
	Strict   bool `yaml:"strict"`
}

type Server struct {
	Addr            string        `yaml:"addr" validate:"required"`
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" validate:"gt=0"`
	MaxBatch        int           `yaml:"max_batch" validate:"gt=0"`
}

type Output struct {
	Format string `yaml:"format" validate:"oneof=text json"`
	Color  bool   `yaml:"color"`
}

//Config holds every setting.
type Config struct {
	Log     Log     `yaml:"log"`
	Balance Balance `yaml:"balance"`
	Server  Server  `yaml:"server"`
	Output  Output  `yaml:"output"`
}

//Default returns the configuration used when nothing else is given.
func Default() *Config {
	return &Config{
		Log:     Log{Level: "info"},
		Balance: Balance{Pivot: -1},
		Server: Server{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
			MaxBatch:        1000,
		},
		Output: Output{Format: "text", Color: true},
	}
}

//BalanceOptions returns the balancing options in C.
func (C *Config) BalanceOptions() *balance.Options {
	return &balance.Options{Integers: C.Balance.Integers, Pivot: C.Balance.Pivot, Strict: C.Balance.Strict}
}

//Load reads the configuration. path may be empty, in which case only the defaults
//and the environment are used. Unknown keys in the file are errors.
func Load(path string) (*Config, error) {
	C := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(C); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}
	if err := C.applyEnv(os.Getenv); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := C.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return C, nil
}

//applyEnv overlays the environment variables given by getenv on C.
func (C *Config) applyEnv(getenv func(string) string) error {
	var errs []string
	str := func(name string, dst *string) {
		if v := getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}
	boolean := func(name string, dst *bool) {
		if v := getenv(EnvPrefix + name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s%s: %q is not a boolean", EnvPrefix, name, v))
				return
			}
			*dst = b
		}
	}
	integer := func(name string, dst *int) {
		if v := getenv(EnvPrefix + name); v != "" {
			i, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s%s: %q is not an integer", EnvPrefix, name, v))
				return
			}
			*dst = i
		}
	}
	duration := func(name string, dst *time.Duration) {
		if v := getenv(EnvPrefix + name); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s%s: %q is not a duration", EnvPrefix, name, v))
				return
			}
			*dst = d
		}
	}
	str("LOG_LEVEL", &C.Log.Level)
	boolean("LOG_DEVELOPMENT", &C.Log.Development)
	boolean("INTEGERS", &C.Balance.Integers)
	integer("PIVOT", &C.Balance.Pivot)
	boolean("STRICT", &C.Balance.Strict)
	str("ADDR", &C.Server.Addr)
	duration("READ_TIMEOUT", &C.Server.ReadTimeout)
	duration("WRITE_TIMEOUT", &C.Server.WriteTimeout)
	duration("SHUTDOWN_TIMEOUT", &C.Server.ShutdownTimeout)
	if v := getenv(EnvPrefix + "MAX_BODY_BYTES"); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%sMAX_BODY_BYTES: %q is not an integer", EnvPrefix, v))
		} else {
			C.Server.MaxBodyBytes = i
		}
	}
	integer("MAX_BATCH", &C.Server.MaxBatch)
	str("FORMAT", &C.Output.Format)
	boolean("COLOR", &C.Output.Color)
	//https://no-color.org
	if getenv("NO_COLOR") != "" {
		C.Output.Color = false
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

var validate = validator.New()

//Validate checks every field of C, and returns all the problems found in one error.
func (C *Config) Validate() error {
	err := validate.Struct(C)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(strings.TrimPrefix(e.Namespace(), "Config."))
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
