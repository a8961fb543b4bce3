package codegen_test

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/citrus-stock/internal/infrastructure/codegen"
)

func TestQREncoder_GeneraPNGDelTamanoPedido(t *testing.T) {
	enc := codegen.NewQREncoder()
	raw, err := enc.Encode(`{"boxId":"b-1"}`, 200, 200)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestQREncoder_EntradaInvalida(t *testing.T) {
	enc := codegen.NewQREncoder()

	_, err := enc.Encode("", 200, 200)
	assert.Error(t, err)

	_, err = enc.Encode("x", 0, 200)
	assert.Error(t, err)
}
