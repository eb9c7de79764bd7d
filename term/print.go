package term

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/pterm/pterm"
)

type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

var (
	lvl             = LevelInfo
	out   io.Writer = os.Stderr
	mutex           = &sync.Mutex{}
)

func SetLevel(level Level) {
	mutex.Lock()
	defer mutex.Unlock()
	lvl = level
}

func GetLevel() Level {
	mutex.Lock()
	defer mutex.Unlock()
	return lvl
}

// SetOutput redirects the messages (stderr by default)
func SetOutput(w io.Writer) {
	mutex.Lock()
	defer mutex.Unlock()
	out = w
}

func printLine(level Level, color pterm.Color, message string) {
	mutex.Lock()
	defer mutex.Unlock()
	if lvl > level {
		return
	}
	fmt.Fprintln(out, color.Sprint(message))
}

func Debug(a ...interface{}) {
	printLine(LevelDebug, pterm.FgLightCyan, fmt.Sprint(a...))
}

func Debugf(format string, a ...interface{}) {
	printLine(LevelDebug, pterm.FgLightCyan, fmt.Sprintf(format, a...))
}

func Info(a ...interface{}) {
	printLine(LevelInfo, pterm.FgLightGreen, fmt.Sprint(a...))
}

func Infof(format string, a ...interface{}) {
	printLine(LevelInfo, pterm.FgLightGreen, fmt.Sprintf(format, a...))
}

func Warn(a ...interface{}) {
	printLine(LevelWarn, pterm.FgYellow, fmt.Sprint(a...))
}

func Warnf(format string, a ...interface{}) {
	printLine(LevelWarn, pterm.FgYellow, fmt.Sprintf(format, a...))
}

func Error(a ...interface{}) {
	printLine(LevelError, pterm.FgLightRed, fmt.Sprint(a...))
}

func Errorf(format string, a ...interface{}) {
	printLine(LevelError, pterm.FgLightRed, fmt.Sprintf(format, a...))
}
