package core

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

const (
	ActionLogin              = "LOGIN"
	ActionPasswordChange     = "PASSWORD_CHANGE"
	ActionCreate             = "CREATE"
	ActionUpdate             = "UPDATE"
	ActionDelete             = "DELETE"
	ActionMarkAttendance     = "MARK_ATTENDANCE"
	ActionBulkMarkAttendance = "BULK_MARK_ATTENDANCE"
	ActionApprove            = "APPROVE"
	ActionCalculatePayroll   = "CALCULATE_PAYROLL"
	ActionAutomatedBackup    = "AUTOMATED_BACKUP"
	ActionBackupFailed       = "AUTOMATED_BACKUP_FAILED"
	ActionManualBackup       = "MANUAL_BACKUP"
)

// AuditSink persists one audit entry.
type AuditSink interface {
	Append(ctx context.Context, entry AuditLog) error
}

// AuditTrail is the fire-and-forget audit logger. A sink failure is logged
// and swallowed: it must never change the outcome of the primary operation.
type AuditTrail struct {
	sink AuditSink
}

func NewAuditTrail(sink AuditSink) *AuditTrail {
	return &AuditTrail{sink: sink}
}

func (t *AuditTrail) Log(ctx context.Context, actor Actor, action, entity, entityID string, details any) {
	if t == nil || t.sink == nil {
		return
	}

	var raw []byte
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			log.Printf("audit: failed to encode details for %s %s: %v", action, entityID, err)
		} else {
			raw = b
		}
	}

	entry := AuditLog{
		ID:        NewID("audit_"),
		Timestamp: time.Now().UTC(),
		UserID:    actor.ID,
		UserName:  actor.Name,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Details:   raw,
	}

	if err := t.sink.Append(ctx, entry); err != nil {
		log.Printf("audit: failed to append %s %s %s: %v", action, entity, entityID, err)
	}
}
