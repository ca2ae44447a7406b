package logs

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"trace":   logrus.TraceLevel,
		"debug":   logrus.DebugLevel,
		"warn":    logrus.WarnLevel,
		"warning": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"fatal":   logrus.FatalLevel,
		"":        logrus.InfoLevel,
		"loud":    logrus.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Level: "debug", Format: "json", Output: &buf})
	require.NoError(t, err)

	l.WithField("user_id", "u1").Debug("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "u1", entry["user_id"])
}

func TestNewInstancesAreIndependent(t *testing.T) {
	var a, b bytes.Buffer
	la, err := New(Options{Level: "error", Output: &a})
	require.NoError(t, err)
	lb, err := New(Options{Level: "info", Output: &b})
	require.NoError(t, err)

	la.Info("dropped")
	lb.Info("kept")

	assert.Empty(t, a.String())
	assert.Contains(t, b.String(), "kept")
}

func TestNewWithFile(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "ragflowctl")
	var buf bytes.Buffer
	l, err := New(Options{File: prefix, Output: &buf})
	require.NoError(t, err)
	l.Info("to file")

	matches, err := filepath.Glob(prefix + "_*.log")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
	assert.Contains(t, buf.String(), "to file")
}

func TestNewBadFile(t *testing.T) {
	_, err := New(Options{File: filepath.Join(t.TempDir(), "missing", "dir", "log")})
	require.Error(t, err)
}
