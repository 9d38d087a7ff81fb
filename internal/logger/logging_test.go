package logger

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestNewWithConfigWritesPrefixedLines(t *testing.T) {
	var buf bytes.Buffer
	prev := output
	output = &buf
	defer func() { output = prev }()

	l := NewWithConfig("suggest", log.DebugLevel, false, false, log.TextFormatter)
	l.Debug("scanned", "terms", 3)
	l.Print("plain")

	out := buf.String()
	assert.Contains(t, out, "suggest")
	assert.Contains(t, out, "scanned")
	assert.Contains(t, out, "terms=3")
	assert.Contains(t, out, "plain")
}

func TestNewFollowsGlobalLevel(t *testing.T) {
	var buf bytes.Buffer
	prev, prevLevel := output, log.GetLevel()
	output = &buf
	defer func() {
		output = prev
		log.SetLevel(prevLevel)
	}()

	log.SetLevel(log.WarnLevel)
	l := New("x")
	l.Info("hidden")
	l.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
