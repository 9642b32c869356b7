package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeTransformer_Success(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "200", map[string]string{"id": "book-1"})
	require.NoError(t, err)

	raw, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":{"id":"book-1"}}`, string(raw))
}

func TestEnvelopeTransformer_Error(t *testing.T) {
	apiErr := &APIError{status: 409, Code: "DUPLICATE_REVIEW", Message: "you already reviewed this book"}

	result, err := EnvelopeTransformer(nil, "409", apiErr)
	require.NoError(t, err)

	raw, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"success":false,"error":{"code":"DUPLICATE_REVIEW","message":"you already reviewed this book"}}`,
		string(raw))
}
