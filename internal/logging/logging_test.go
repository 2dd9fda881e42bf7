package logging

import (
	"path/filepath"
	"testing"

	"PlayHorizon/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParsesLevelAndFormat(t *testing.T) {
	l := New(config.LogConfig{Level: "DEBUG", Format: "json"})
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	_, ok := l.Formatter.(*logrus.JSONFormatter)
	assert.True(t, ok)
}

func TestNewFallsBackToInfo(t *testing.T) {
	l := New(config.LogConfig{Level: "loud"})
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	_, ok := l.Formatter.(*logrus.TextFormatter)
	assert.True(t, ok)
}

func TestNewWritesRotatingFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	l := New(config.LogConfig{Level: "info", File: file, MaxSizeMB: 1})
	l.Info("hello")
	assert.FileExists(t, file)
}

func TestGormLogger(t *testing.T) {
	require.NotNil(t, GormLogger(logrus.New(), true))
	require.NotNil(t, GormLogger(logrus.New(), false))
}
