package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedeemResponse_Rejected(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		rejected bool
	}{
		{name: "no success field", body: `{"redemption":{"id":9,"tokens_spent":50},"new_balance":0}`},
		{name: "success true", body: `{"success":true,"new_balance":0}`},
		{name: "success false", body: `{"success":false,"message":"Out of stock"}`, rejected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp RedeemResponse
			require.NoError(t, json.Unmarshal([]byte(tt.body), &resp))
			assert.Equal(t, tt.rejected, resp.Rejected())
		})
	}
}

func TestReflectionResponse_Rejected(t *testing.T) {
	var resp ReflectionResponse
	require.NoError(t, json.Unmarshal([]byte(`{"tokens_awarded":5,"balance":15}`), &resp))
	assert.False(t, resp.Rejected())

	require.NoError(t, json.Unmarshal([]byte(`{"success":false}`), &resp))
	assert.True(t, resp.Rejected())
}
