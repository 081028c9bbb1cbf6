package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level, env string
		debug      bool
	}{
		{"debug", "development", true},
		{"info", "production", false},
		{"", "production", false},
		{"WARN", "staging", false},
	}
	for _, tt := range tests {
		logger, err := New(tt.level, tt.env)
		require.NoError(t, err)
		assert.Equal(t, tt.debug, logger.Core().Enabled(zapcore.DebugLevel), "level %q", tt.level)
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New("loud", "production")
	assert.Error(t, err)
}
