package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFor(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, LevelFor(0))
	assert.Equal(t, zerolog.InfoLevel, LevelFor(1))
	assert.Equal(t, zerolog.DebugLevel, LevelFor(2))
	assert.Equal(t, zerolog.TraceLevel, LevelFor(5))
}

func TestSetupLoggerWritesInfoToFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "amcsetup.log")
	closeLog := SetupLogger(0, logFile)
	defer func() {
		log.Logger = zerolog.Nop()
		closeLog()
	}()

	logger := GetLogger("test")
	logger.Info().Str("dir", `C:\App`).Msg("added to PATH")
	logger.Debug().Msg("hidden")

	b, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(b), "added to PATH")
	assert.Contains(t, string(b), `"component":"test"`)
	assert.NotContains(t, string(b), "hidden")
}
