package utils

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundFloat(t *testing.T) {
	assert.Equal(t, 73.33, RoundFloat(73.333333, 2))
	assert.Equal(t, 73.35, RoundFloat(73.345, 2))
	assert.Equal(t, 100.0, RoundFloat(100.0, 2))
	assert.Equal(t, -2.57, RoundFloat(-2.566, 2))
}

func TestFormatPercentage(t *testing.T) {
	assert.Equal(t, "50.00", FormatPercentage(50, 100))
	assert.Equal(t, "73.33", FormatPercentage(220, 300))
	assert.Equal(t, "0.00", FormatPercentage(50, 0))
	assert.Equal(t, "0.00", FormatPercentage(50, -10))
}

func TestGenerateETag_StableForEqualInput(t *testing.T) {
	payload := map[string]any{"totalRevenue": 300.0, "netProfit": 220.0}

	first, err := GenerateETag(payload)
	require.NoError(t, err)
	second, err := GenerateETag(payload)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)

	other, err := GenerateETag(map[string]any{"totalRevenue": 301.0})
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestSendJSONSuccess_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	SendJSONSuccess(rec, map[string]string{"status": "ok"}, 201)

	assert.Equal(t, 201, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "ok", body.Data["status"])
}

func TestSendJSONError_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	SendJSONError(rec, "something failed", 400)

	assert.Equal(t, 400, rec.Code)

	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "something failed", body.Error)
}
