package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOutput(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		format    string
		wantLevel logrus.Level
		wantErr   bool
	}{
		{"defaults", "", "", logrus.InfoLevel, false},
		{"debug text", "debug", "text", logrus.DebugLevel, false},
		{"warn json", "warn", "JSON", logrus.WarnLevel, false},
		{"bad level", "loud", "text", 0, true},
		{"bad format", "info", "xml", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewWithOutput(&bytes.Buffer{}, tt.level, tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLevel, l.GetLevel())
		})
	}
}

func TestNewWithOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithOutput(&buf, "info", "json")
	require.NoError(t, err)

	l.WithField("routes", 3).Info("route table resolved")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "route table resolved", entry["msg"])
	assert.Equal(t, float64(3), entry["routes"])
}

func TestNewWithOutput_Text(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithOutput(&buf, "info", "text")
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
}
