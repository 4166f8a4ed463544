package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNullableUnmarshal(t *testing.T) {
	type payload struct {
		StaffID      Nullable[uuid.UUID] `json:"staff_id"`
		ShippingDate Nullable[time.Time] `json:"shipping_date"`
	}

	var got payload
	require.NoError(t, json.Unmarshal([]byte(`{"staff_id": "00000000-0000-0000-0000-000000000001", "shipping_date": "2026-01-02T03:04:05Z"}`), &got))
	require.True(t, got.StaffID.Set)
	require.NotNil(t, got.StaffID.Value)
	require.Equal(t, "00000000-0000-0000-0000-000000000001", got.StaffID.Value.String())
	require.NotNil(t, got.ShippingDate.Value)
	require.Equal(t, 2026, got.ShippingDate.Value.Year())

	got = payload{}
	require.NoError(t, json.Unmarshal([]byte(`{"staff_id": null}`), &got))
	require.True(t, got.StaffID.IsNull())
	require.False(t, got.ShippingDate.Set)

	got = payload{}
	require.NoError(t, json.Unmarshal([]byte(`{}`), &got))
	require.False(t, got.StaffID.Set)
	require.False(t, got.StaffID.IsNull())
}

func TestNullableRejectsInvalidValue(t *testing.T) {
	var got struct {
		StaffID Nullable[uuid.UUID] `json:"staff_id"`
	}
	require.Error(t, json.Unmarshal([]byte(`{"staff_id": "not-a-uuid"}`), &got))
}
