package term

import (
	"bytes"
	"os"
	"testing"

	"github.com/creativeprojects/anthill/lib"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T, level Level) *bytes.Buffer {
	t.Helper()
	buffer := &bytes.Buffer{}
	pterm.DisableColor()
	SetOutput(buffer)
	SetLevel(level)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(LevelInfo)
		pterm.EnableColor()
	})
	return buffer
}

func output(buffer *bytes.Buffer) string {
	return pterm.RemoveColorFromString(buffer.String())
}

func TestLevels(t *testing.T) {
	testData := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "debug\ninfo\nwarn\nerror\n"},
		{LevelInfo, "info\nwarn\nerror\n"},
		{LevelWarn, "warn\nerror\n"},
		{LevelError, "error\n"},
	}

	for _, testItem := range testData {
		buffer := capture(t, testItem.level)
		Debug("debug")
		Info("info")
		Warnf("%s", "warn")
		Errorf("%s", "error")
		assert.Equal(t, testItem.expected, output(buffer))
		assert.Equal(t, testItem.level, GetLevel())
	}
}

func TestLogger(t *testing.T) {
	buffer := capture(t, LevelDebug)
	var logger lib.Logger = NewLogger()
	logger = lib.WithPrefix(logger, "account/inbox")

	logger.Debugf("%d messages", 10)
	logger.Errorf("failed")
	assert.Equal(t, "account/inbox: 10 messages\naccount/inbox: failed\n", output(buffer))
}

func TestDebugLogger(t *testing.T) {
	buffer := capture(t, LevelInfo)
	logger := DebugLogger{}
	logger.Printf("hidden %d", 1)
	assert.Empty(t, output(buffer))

	SetLevel(LevelDebug)
	logger.Print("visible")
	assert.Equal(t, "visible\n", output(buffer))
}
