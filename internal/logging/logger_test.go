package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestNameToLevel(t *testing.T) {
	for _, name := range []string{"disabled", "error", "warn", "info", "debug"} {
		level, ok := NameToLevel(name)
		assert.True(t, ok, name)
		assert.Equal(t, name, level.String())
	}
	_, ok := NameToLevel("verbose")
	assert.False(t, ok)
}

func TestLogger_LevelFiltering(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	logger := New(&buf, LevelInfo).Sublogger("collect")

	logger.Infof("indexed %d entries", 3)
	logger.Debugf("hidden detail")
	logger.Warn(errors.New("unreadable"))

	out := buf.String()
	assert.Contains(t, out, "[collect] indexed 3 entries")
	assert.Contains(t, out, "Warning: unreadable")
	assert.NotContains(t, out, "hidden detail")
}

func TestLogger_NilIsSilent(t *testing.T) {
	var logger *Logger
	assert.Nil(t, logger.Sublogger("x"))
	assert.Equal(t, LevelDisabled, logger.Level())
	logger.Infof("no panic")
	logger.Error(errors.New("no panic"))
}
