package term

// Logger sends the messages of the library packages to the terminal
type Logger struct{}

func NewLogger() *Logger {
	return &Logger{}
}

func (l *Logger) Debugf(format string, a ...any) {
	Debugf(format, a...)
}

func (l *Logger) Infof(format string, a ...any) {
	Infof(format, a...)
}

func (l *Logger) Warnf(format string, a ...any) {
	Warnf(format, a...)
}

func (l *Logger) Errorf(format string, a ...any) {
	Errorf(format, a...)
}

// DebugLogger prints the messages of external libraries at debug level
type DebugLogger struct{}

func (l DebugLogger) Print(a ...any) {
	Debug(a...)
}

func (l DebugLogger) Printf(format string, a ...any) {
	Debugf(format, a...)
}
