package core

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditTrailLog(t *testing.T) {
	sink := &recordingSink{}
	trail := NewAuditTrail(sink)

	trail.Log(context.Background(), manager, ActionApprove, "attendance", "att_1", map[string]any{"date": "2024-02-05"})

	require.Len(t, sink.entries, 1)
	entry := sink.entries[0]
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.Timestamp.IsZero())
	assert.Equal(t, manager.ID, entry.UserID)
	assert.Equal(t, manager.Name, entry.UserName)
	assert.Equal(t, ActionApprove, entry.Action)
	assert.Equal(t, "attendance", entry.Entity)
	assert.Equal(t, "att_1", entry.EntityID)

	var details map[string]string
	require.NoError(t, json.Unmarshal(entry.Details, &details))
	assert.Equal(t, "2024-02-05", details["date"])
}

func TestAuditTrailNilDetails(t *testing.T) {
	sink := &recordingSink{}
	trail := NewAuditTrail(sink)

	trail.Log(context.Background(), manager, ActionLogin, "user", "usr_1", nil)

	require.Len(t, sink.entries, 1)
	assert.Empty(t, sink.entries[0].Details)
}

func TestAuditTrailSwallowsSinkErrors(t *testing.T) {
	trail := NewAuditTrail(failingSink{})

	assert.NotPanics(t, func() {
		trail.Log(context.Background(), manager, ActionDelete, "site", "site_1", nil)
	})
}

func TestAuditTrailNilReceiver(t *testing.T) {
	var trail *AuditTrail

	assert.NotPanics(t, func() {
		trail.Log(context.Background(), manager, ActionDelete, "site", "site_1", nil)
	})
}

func TestNewID(t *testing.T) {
	id := NewID("emp_")
	assert.Contains(t, id, "emp_")
	assert.Len(t, id, len("emp_")+32)
	assert.NotContains(t, id, "-")
	assert.NotEqual(t, id, NewID("emp_"))
}
