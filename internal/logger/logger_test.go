package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_Environments(t *testing.T) {
	for _, env := range []string{"", "local", "dev", "prod"} {
		t.Run("env="+env, func(t *testing.T) {
			l, err := NewLogger(env, "")
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestNewLogger_UnknownEnvironment(t *testing.T) {
	_, err := NewLogger("staging", "")
	assert.Error(t, err)
}

func TestNewLogger_LevelOverride(t *testing.T) {
	l, err := NewLogger("prod", "warn")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	_, err = NewLogger("prod", "loud")
	assert.Error(t, err)
}

func TestFromContext(t *testing.T) {
	stored := zap.NewExample()
	ctx := ContextWithLogger(context.Background(), stored)
	assert.Same(t, stored, FromContext(ctx, nil))

	fallback := zap.NewExample()
	assert.Same(t, fallback, FromContext(context.Background(), fallback))
	assert.NotNil(t, FromContext(context.Background(), nil))
}
