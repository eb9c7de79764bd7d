package lib

import (
	"fmt"
	"testing"
)

type Logger interface {
	Debugf(format string, a ...any)
	Infof(format string, a ...any)
	Warnf(format string, a ...any)
	Errorf(format string, a ...any)
}

type NoLog struct{}

func (l *NoLog) Debugf(format string, a ...any) {}
func (l *NoLog) Infof(format string, a ...any)  {}
func (l *NoLog) Warnf(format string, a ...any)  {}
func (l *NoLog) Errorf(format string, a ...any) {}

// WithPrefix returns a logger adding "prefix: " in front of every message
func WithPrefix(logger Logger, prefix string) Logger {
	if logger == nil {
		logger = &NoLog{}
	}
	if prefix == "" {
		return logger
	}
	return &prefixLogger{
		log:    logger,
		prefix: prefix,
	}
}

type prefixLogger struct {
	log    Logger
	prefix string
}

func (l *prefixLogger) Debugf(format string, a ...any) {
	l.log.Debugf(l.prefix+": "+format, a...)
}

func (l *prefixLogger) Infof(format string, a ...any) {
	l.log.Infof(l.prefix+": "+format, a...)
}

func (l *prefixLogger) Warnf(format string, a ...any) {
	l.log.Warnf(l.prefix+": "+format, a...)
}

func (l *prefixLogger) Errorf(format string, a ...any) {
	l.log.Errorf(l.prefix+": "+format, a...)
}

type TestLogger struct {
	t      *testing.T
	prefix string
}

func NewTestLogger(t *testing.T, prefix string) *TestLogger {
	return &TestLogger{
		t:      t,
		prefix: prefix,
	}
}

func (l *TestLogger) Debugf(format string, a ...any) {
	l.logf("DEBUG", format, a...)
}

func (l *TestLogger) Infof(format string, a ...any) {
	l.logf("INFO", format, a...)
}

func (l *TestLogger) Warnf(format string, a ...any) {
	l.logf("WARN", format, a...)
}

func (l *TestLogger) Errorf(format string, a ...any) {
	l.logf("ERROR", format, a...)
}

func (l *TestLogger) logf(level, format string, a ...any) {
	l.t.Helper()
	message := fmt.Sprintf(format, a...)
	if l.prefix != "" {
		message = l.prefix + ": " + message
	}
	l.t.Logf("%-5s %s", level, message)
}
