package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_Level(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(&buf, "debug")
	l.Debug("dealing", "room", "abc")

	assert.Contains(t, buf.String(), "dealing")
	assert.Contains(t, buf.String(), "room=abc")
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(&buf, "chatty")
	l.Debug("hidden")
	l.Info("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestComponent_Prefix(t *testing.T) {
	t.Parallel()

	l := Component("session")
	assert.Equal(t, "session", l.GetPrefix())
}
