/*
 * MIT License
 *
 * Copyright (c) 2022-2025  Arsene Tochemey Gandote
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package log

import (
	"io"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// DefaultLogger writes InfoLevel and above to stderr.
	DefaultLogger = NewZap(InfoLevel, os.Stderr)
	// DebugLogger writes DebugLevel and above to stderr.
	DebugLogger = NewZap(DebugLevel, os.Stderr)
)

// Zap implements Logger on top of go.uber.org/zap.
type Zap struct {
	logger  *zap.Logger
	sugar   *zap.SugaredLogger
	outputs []io.Writer
}

var _ Logger = (*Zap)(nil)

// NewZap builds a Zap logger writing to the given writers at the given level.
func NewZap(level Level, writers ...io.Writer) *Zap {
	syncers := make([]zapcore.WriteSyncer, 0, len(writers))
	for _, w := range writers {
		syncers = append(syncers, zapcore.AddSync(w))
	}

	cfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg), zap.CombineWriteSyncers(syncers...), toZapLevel(level))
	zapLogger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))

	return &Zap{
		logger:  zapLogger,
		sugar:   zapLogger.Sugar(),
		outputs: writers,
	}
}

func (z *Zap) Info(v ...any)                  { z.sugar.Info(v...) }
func (z *Zap) Infof(format string, v ...any)  { z.sugar.Infof(format, v...) }
func (z *Zap) Warn(v ...any)                  { z.sugar.Warn(v...) }
func (z *Zap) Warnf(format string, v ...any)  { z.sugar.Warnf(format, v...) }
func (z *Zap) Error(v ...any)                 { z.sugar.Error(v...) }
func (z *Zap) Errorf(format string, v ...any) { z.sugar.Errorf(format, v...) }
func (z *Zap) Debug(v ...any)                 { z.sugar.Debug(v...) }
func (z *Zap) Debugf(format string, v ...any) { z.sugar.Debugf(format, v...) }
func (z *Zap) Fatal(v ...any)                 { z.sugar.Fatal(v...) }
func (z *Zap) Fatalf(format string, v ...any) { z.sugar.Fatalf(format, v...) }

func (z *Zap) LogLevel() Level {
	switch z.logger.Level() {
	case zapcore.DebugLevel:
		return DebugLevel
	case zapcore.WarnLevel:
		return WarningLevel
	case zapcore.ErrorLevel:
		return ErrorLevel
	case zapcore.FatalLevel:
		return FatalLevel
	case zapcore.PanicLevel:
		return PanicLevel
	case zapcore.InfoLevel:
		return InfoLevel
	default:
		return InvalidLevel
	}
}

func (z *Zap) LogOutput() []io.Writer { return z.outputs }

// With returns a Logger annotated with the given key-value pairs.
func (z *Zap) With(keyValues ...any) Logger {
	if len(keyValues) == 0 {
		return z
	}
	fields := make([]zap.Field, 0, len(keyValues)/2+1)
	for i := 0; i < len(keyValues); i += 2 {
		key, ok := keyValues[i].(string)
		if !ok {
			continue
		}
		var val any
		if i+1 < len(keyValues) {
			val = keyValues[i+1]
		}
		fields = append(fields, zap.Any(key, val))
	}
	newLogger := z.logger.With(fields...)
	return &Zap{logger: newLogger, sugar: newLogger.Sugar(), outputs: z.outputs}
}

// Flush drains any buffered output. Only *os.File writers are synced;
// other writers are skipped. Sync errors from files, os.Stdout and
// os.Stderr included, are combined and returned.
func (z *Zap) Flush() error {
	var err error
	for _, w := range z.outputs {
		if f, ok := w.(*os.File); ok {
			if syncErr := f.Sync(); syncErr != nil {
				err = multierr.Append(err, syncErr)
			}
		}
	}
	return err
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case DebugLevel:
		return zapcore.DebugLevel
	case WarningLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	case FatalLevel:
		return zapcore.FatalLevel
	case PanicLevel:
		return zapcore.PanicLevel
	default:
		return zapcore.InfoLevel
	}
}
