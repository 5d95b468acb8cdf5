package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		wantLevel zerolog.Level
		wantErr   bool
	}{
		{name: "default", config: Config{}, wantLevel: zerolog.InfoLevel},
		{name: "debug flag wins", config: Config{Debug: true, Level: "error"}, wantLevel: zerolog.DebugLevel},
		{name: "explicit level", config: Config{Level: "warn"}, wantLevel: zerolog.WarnLevel},
		{name: "stdout output", config: Config{Output: "stdout", Level: "error"}, wantLevel: zerolog.ErrorLevel},
		{name: "bad level", config: Config{Level: "loud"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Init(tt.config)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLevel, GetLogger().GetLevel())
		})
	}
}

func TestSetLevel(t *testing.T) {
	require.NoError(t, Init(Config{}))
	SetLevel(zerolog.ErrorLevel)
	assert.Equal(t, zerolog.ErrorLevel, GetLogger().GetLevel())
}

func TestNewTestLogger(t *testing.T) {
	l := NewTestLogger()
	assert.Equal(t, zerolog.Disabled, l.GetLevel())
}
