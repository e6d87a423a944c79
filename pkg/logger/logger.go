/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package logger provides JSON structured logging using zerolog
package logger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var errInvalidDuration = errors.New("invalid duration")

type Config struct {
	Level      string     `json:"level" yaml:"level"`
	Debug      bool       `json:"debug" yaml:"debug"`
	Output     string     `json:"output" yaml:"output"`
	TimeFormat string     `json:"time_format" yaml:"time_format"`
	OTel       OTelConfig `json:"otel" yaml:"otel"`
}

// Duration lets OTel settings carry "5s" style values in JSON.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: %w", errInvalidDuration, err)
		}

		*d = Duration(dur)

		return nil
	default:
		return errInvalidDuration
	}
}

// Instance implements Logger without touching package-level state.
type Instance struct {
	logger zerolog.Logger
}

var _ Logger = (*Instance)(nil)

// New builds a logger from config. When OTel log export is enabled the
// stdout stream is teed into the OTLP exporter.
func New(ctx context.Context, config *Config) (*Instance, error) {
	if config == nil {
		config = DefaultConfig()
	}

	var output io.Writer = os.Stdout
	if config.Output == "stderr" {
		output = os.Stderr
	}

	level := zerolog.InfoLevel

	if config.Debug {
		level = zerolog.DebugLevel
	} else if config.Level != "" {
		var err error

		level, err = zerolog.ParseLevel(config.Level)
		if err != nil {
			return nil, err
		}
	}

	zerolog.TimeFieldFormat = time.RFC3339
	if config.TimeFormat != "" {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	if config.OTel.Enabled {
		otelWriter, err := NewOTELWriter(ctx, config.OTel)
		if err != nil {
			return nil, err
		}

		output = io.MultiWriter(output, otelWriter)
	}

	zlog := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &Instance{logger: zlog}, nil
}

// NewComponent builds a logger tagged with a component field.
func NewComponent(ctx context.Context, component string, config *Config) (*Instance, error) {
	inst, err := New(ctx, config)
	if err != nil {
		return nil, err
	}

	return &Instance{logger: inst.logger.With().Str("component", component).Logger()}, nil
}

func (l *Instance) Trace() *zerolog.Event { return l.logger.Trace() }
func (l *Instance) Debug() *zerolog.Event { return l.logger.Debug() }
func (l *Instance) Info() *zerolog.Event  { return l.logger.Info() }
func (l *Instance) Warn() *zerolog.Event  { return l.logger.Warn() }
func (l *Instance) Error() *zerolog.Event { return l.logger.Error() }
func (l *Instance) Fatal() *zerolog.Event { return l.logger.Fatal() }
func (l *Instance) Panic() *zerolog.Event { return l.logger.Panic() }
func (l *Instance) With() zerolog.Context { return l.logger.With() }

func (l *Instance) WithComponent(component string) zerolog.Logger {
	return l.logger.With().Str("component", component).Logger()
}

func (l *Instance) WithFields(fields map[string]interface{}) zerolog.Logger {
	ctx := l.logger.With()
	for key, value := range fields {
		ctx = ctx.Interface(key, value)
	}

	return ctx.Logger()
}

func (l *Instance) SetLevel(level zerolog.Level) {
	l.logger = l.logger.Level(level)
}

func (l *Instance) SetDebug(debug bool) {
	if debug {
		l.SetLevel(zerolog.DebugLevel)
	} else {
		l.SetLevel(zerolog.InfoLevel)
	}
}

// Shutdown flushes the OTel log and metrics pipelines if they were started.
func Shutdown() error {
	return ShutdownOTEL()
}
