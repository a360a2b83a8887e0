// Package xlog holds the package-level logrus logger used for
// diagnostic-only output from the Bus, CPU, event stream and CLI: a plain
// text formatter, no color, no timestamp. Nothing in the core depends on
// log output for correctness.
package xlog

import "github.com/sirupsen/logrus"

var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	l.Formatter = &logrus.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: true,
		DisableSorting:   true,
		DisableQuote:     true,
	}
	return l
}

// SetLevel adjusts verbosity; the CLI exposes this via its --debug-log flag.
func SetLevel(level logrus.Level) { logger.SetLevel(level) }

func Debugf(format string, args ...interface{}) { logger.Debugf(format, args...) }
func Warnf(format string, args ...interface{})  { logger.Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { logger.Errorf(format, args...) }
func Infof(format string, args ...interface{})  { logger.Infof(format, args...) }
