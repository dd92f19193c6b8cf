package log_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/kalendas/internal/log"
)

func TestLevels(t *testing.T) {
	tests := map[string]logrus.Level{
		"debug": logrus.DebugLevel,
		"WARN":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
		"":      logrus.InfoLevel,
		"bogus": logrus.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, log.New(in, "text").Level, in)
	}
}

func TestJSONFormatWithPrefix(t *testing.T) {
	var buf bytes.Buffer
	l := log.NewWithOutput(&buf, "info", "json")

	log.Prefixed(l, "gateway").Info("listening")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "gateway", line["prefix"])
	assert.Equal(t, "listening", line["msg"])
}
