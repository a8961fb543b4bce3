package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/citrus-stock/internal/domain"
	"github.com/jhoicas/citrus-stock/internal/domain/entity"
)

func TestParseGoodsStatus(t *testing.T) {
	st, err := entity.ParseGoodsStatus(" scanned ")
	require.NoError(t, err)
	assert.Equal(t, entity.GoodsStatusScanned, st)

	_, err = entity.ParseGoodsStatus("LOST")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParseScanMode(t *testing.T) {
	m, err := entity.ParseScanMode("shipment")
	require.NoError(t, err)
	assert.Equal(t, entity.ScanModeShipment, m)

	_, err = entity.ParseScanMode("")
	assert.ErrorIs(t, err, domain.ErrUnsupportedScanMode)
}

func TestRefreshToken_IsValid(t *testing.T) {
	now := time.Now()
	tok := &entity.RefreshToken{ExpiresAt: now.Add(time.Hour)}
	assert.True(t, tok.IsValid(now))

	tok.Revoked = true
	assert.False(t, tok.IsValid(now))

	expired := &entity.RefreshToken{ExpiresAt: now.Add(-time.Minute)}
	assert.True(t, expired.IsExpired(now))
	assert.False(t, expired.IsValid(now))
}

func TestPermission_ResourceAction(t *testing.T) {
	res, act := (&entity.Permission{Name: "batches:write"}).ResourceAction()
	assert.Equal(t, "batches", res)
	assert.Equal(t, "write", act)

	res, act = (&entity.Permission{Name: "reports"}).ResourceAction()
	assert.Equal(t, "reports", res)
	assert.Equal(t, "*", act)
}
