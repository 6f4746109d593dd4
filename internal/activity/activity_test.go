package activity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBase(t *testing.T) EventBase {
	t.Helper()
	return EventBase{
		ExecutorID:       uuid.New(),
		ExecutorRoles:    "Admin",
		ExecutorFullName: "Jane Smith",
		Date:             time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestCreatedEventRoundTrip(t *testing.T) {
	base := testBase(t)
	raw, err := Encode(EntityCreatedEvent{EventBase: base, CreatedName: "Audit"})
	require.NoError(t, err)

	registry := NewRegistry().Register(1, 1, CreatedDecoder("Department"))

	item, err := registry.Decode(1, 1, raw)
	require.NoError(t, err)
	assert.Equal(t, base.Date, item.Date)
	assert.Equal(t, "Jane Smith", item.FullName)
	assert.Equal(t, `Department "Audit" created`, item.Message)
}

func TestUpdatedEventRoundTrip(t *testing.T) {
	base := testBase(t)
	raw, err := Encode(EntityUpdatedEvent{
		EventBase:      base,
		PreviousValues: `{"name":"Old"}`,
		CurrentValues:  `{"name":"New"}`,
	})
	require.NoError(t, err)

	registry := NewRegistry().Register(2, 1, UpdatedDecoder("Service area"))

	item, err := registry.Decode(2, 1, raw)
	require.NoError(t, err)
	assert.Equal(t, "Service area details updated", item.Message)
	assert.Equal(t, base.Date, item.Date)
}

func TestStatusEventMessage(t *testing.T) {
	raw, err := Encode(StatusChangedEvent{EventBase: testBase(t), Status: "deactivated"})
	require.NoError(t, err)

	registry := NewRegistry().Register(3, 1, StatusDecoder("Program"))

	item, err := registry.Decode(3, 1, raw)
	require.NoError(t, err)
	assert.Equal(t, "Program set to deactivated", item.Message)
}

func TestRolesEventMessage(t *testing.T) {
	registry := NewRegistry().
		Register(5, 1, RolesDecoder()).
		Register(6, 1, RolesDecoder())

	assigned, err := Encode(RolesChangedEvent{
		EventBase: testBase(t),
		Roles:     []string{"Admin", "Preparer"},
		Assigned:  true,
	})
	require.NoError(t, err)

	item, err := registry.Decode(5, 1, assigned)
	require.NoError(t, err)
	assert.Equal(t, "Roles Admin, Preparer assigned to user", item.Message)

	unassigned, err := Encode(RolesChangedEvent{
		EventBase: testBase(t),
		Roles:     []string{"Preparer"},
		Assigned:  false,
	})
	require.NoError(t, err)

	item, err = registry.Decode(6, 1, unassigned)
	require.NoError(t, err)
	assert.Equal(t, "Roles Preparer unassigned from user", item.Message)
}

func TestTenantAccessEventMessage(t *testing.T) {
	registry := NewRegistry().Register(1, 1, TenantAccessDecoder())

	raw, err := Encode(TenantAccessEvent{EventBase: testBase(t), Entered: true})
	require.NoError(t, err)

	item, err := registry.Decode(1, 1, raw)
	require.NoError(t, err)
	assert.Equal(t, "User entered the tenant", item.Message)
}

func TestDecodeUnknownPair(t *testing.T) {
	registry := NewRegistry().Register(1, 1, CreatedDecoder("Team"))

	_, err := registry.Decode(1, 2, "{}")
	assert.ErrorIs(t, err, ErrDecode)
	assert.Contains(t, err.Error(), "no decoder registered")

	_, err = registry.Decode(9, 1, "{}")
	assert.ErrorIs(t, err, ErrDecode)
}

func TestDecodeMalformedPayload(t *testing.T) {
	registry := NewRegistry().Register(1, 1, CreatedDecoder("Team"))

	_, err := registry.Decode(1, 1, "not json")
	assert.ErrorIs(t, err, ErrDecode)
}
