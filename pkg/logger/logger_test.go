package logger_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/citrus-stock/pkg/logger"
)

func TestFromWriter_EscribeJSON(t *testing.T) {
	var buf bytes.Buffer
	log := logger.FromWriter(&buf)
	log.Info().Str("batch_id", "b-1").Msg("partida registrada")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "b-1", line["batch_id"])
	assert.Equal(t, "partida registrada", line["message"])
	assert.Contains(t, line, "time")
}

func TestNamed_AgregaComponente(t *testing.T) {
	var buf bytes.Buffer
	logger.FromWriter(&buf).Named("warehouse").Warn().Msg("x")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warehouse", line["component"])
}

func TestNop_NoEscribe(t *testing.T) {
	log := logger.Nop()
	assert.NotPanics(t, func() { log.Error().Msg("nada") })
}

func TestNew_ArchivoRotadoRespetaNivel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.log")
	log := logger.New(logger.Config{
		Env:   "production",
		Level: "warn",
		File:  logger.FileConfig{Path: path, MaxSizeMB: 1},
	})
	log.Info().Msg("descartado")
	log.Warn().Msg("guardado")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "guardado")
}
