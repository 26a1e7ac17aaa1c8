package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultMessage(t *testing.T) {
	assert.Equal(t, "internal server error", Internal("").Message)
	assert.Equal(t, "unauthorized", Unauthorized("").Message)
	assert.Equal(t, "boom", Internal("boom").Message)
}

func TestConstructors(t *testing.T) {
	conflict := Conflict("state_conflict", "stale", map[string]int{"version": 3})
	assert.Equal(t, http.StatusConflict, conflict.Status)
	assert.Equal(t, map[string]int{"version": 3}, conflict.Details)
	assert.Equal(t, "state_conflict: stale", conflict.Error())

	validation := Validation("invalid_pattern", errors.New("all phase durations are zero"))
	assert.Equal(t, http.StatusBadRequest, validation.Status)
	assert.Equal(t, "all phase durations are zero", validation.Message)

	assert.Equal(t, http.StatusNotFound, NotFound("session_not_found", "missing").Status)
}

func TestEnvelope_Shape(t *testing.T) {
	raw, err := json.Marshal(Conflict("state_conflict", "stale", map[string]int{"version": 3}).Envelope())
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":{"code":"state_conflict","message":"stale","details":{"version":3}}}`, string(raw))

	raw, err = json.Marshal(Unauthorized("invalid token").Envelope())
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":{"code":"unauthorized","message":"invalid token"}}`, string(raw))
}
