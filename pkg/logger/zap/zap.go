// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package zap adapts go.uber.org/zap to the pion/logging interfaces.
package zap

import (
	"github.com/pion/logging"
	"go.uber.org/zap"
)

// Factory is a logging.LoggerFactory based on go.uber.org/zap
type Factory struct {
	logger *zap.Logger
}

// NewFactory creates a LoggerFactory from a zap.Logger.
func NewFactory(l *zap.Logger) *Factory {
	return &Factory{logger: l}
}

// NewLogger returns a logger named after scope.
func (f *Factory) NewLogger(scope string) logging.LeveledLogger {
	return &Zap{logger: f.logger.Named(scope).Sugar()}
}

// Zap is a logging.LeveledLogger based on go.uber.org/zap
type Zap struct {
	logger *zap.SugaredLogger
}

// Trace logs at debug level, zap has no lower level
func (l *Zap) Trace(msg string) { l.logger.Debug(msg) }

// Tracef logs at debug level, zap has no lower level
func (l *Zap) Tracef(format string, args ...interface{}) { l.logger.Debugf(format, args...) }

// Debug logs a debug message
func (l *Zap) Debug(msg string) { l.logger.Debug(msg) }

// Debugf logs a formatted debug message
func (l *Zap) Debugf(format string, args ...interface{}) { l.logger.Debugf(format, args...) }

// Info logs an info message
func (l *Zap) Info(msg string) { l.logger.Info(msg) }

// Infof logs a formatted info message
func (l *Zap) Infof(format string, args ...interface{}) { l.logger.Infof(format, args...) }

// Warn logs a warning
func (l *Zap) Warn(msg string) { l.logger.Warn(msg) }

// Warnf logs a formatted warning
func (l *Zap) Warnf(format string, args ...interface{}) { l.logger.Warnf(format, args...) }

// Error logs an error
func (l *Zap) Error(msg string) { l.logger.Error(msg) }

// Errorf logs a formatted error
func (l *Zap) Errorf(format string, args ...interface{}) { l.logger.Errorf(format, args...) }
