package logging

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, Level(""))
	assert.Equal(t, zerolog.DebugLevel, Level("debug"))
	assert.Equal(t, zerolog.WarnLevel, Level("warn"))
	assert.Equal(t, zerolog.InfoLevel, Level("chatty"))
}

func TestSetup(t *testing.T) {
	prev := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(prev)

	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "error")
	Setup()

	assert.Equal(t, zerolog.ErrorLevel, zerolog.GlobalLevel())
}
