package models

import (
	"time"

	"github.com/roach88/modelkit/internal/model"
	"github.com/roach88/modelkit/internal/model/validates"
	"github.com/roach88/modelkit/internal/scalar"
	"github.com/roach88/modelkit/internal/session"
)

var auditEventColumns = model.ColumnTypes{
	"id":          scalar.KindInt64,
	"account_id":  scalar.KindInt64,
	"action":      scalar.KindText,
	"detail":      scalar.KindText,
	"occurred_at": scalar.KindTimestamp,
}

var auditEventValidators = []model.Validator{
	validates.NotNull("action"),
	validates.NotEmpty("action"),
	validates.MaxLength("action", 64),
	validates.NotNull("occurred_at"),
}

// AuditEventDefinition returns the schema of the audit_events table with
// timestamps persisted as wall clock in loc (nil means time.Local).
func AuditEventDefinition(loc *time.Location) *model.Definition {
	return model.MustDefinition("id", "audit_events", auditEventColumns, auditEventValidators,
		model.WithLocalTime(loc))
}

// AuditEvent records one action taken on an account.
type AuditEvent struct{ *model.Instance }

// NewAuditEvents returns the audit event repository for loc.
func NewAuditEvents(reg *session.Registry, loc *time.Location, opts ...model.RepositoryOption) *model.Repository[*AuditEvent] {
	return model.NewRepository(reg, AuditEventDefinition(loc), func(i *model.Instance) *AuditEvent {
		return &AuditEvent{i}
	}, opts...)
}

func (e *AuditEvent) AccountID() (int64, bool) { return model.Field[int64](e.Instance, "account_id") }
func (e *AuditEvent) Action() (string, bool)   { return model.Field[string](e.Instance, "action") }
func (e *AuditEvent) Detail() (string, bool)   { return model.Field[string](e.Instance, "detail") }

func (e *AuditEvent) OccurredAt() (time.Time, bool) {
	return model.Field[time.Time](e.Instance, "occurred_at")
}

func (e *AuditEvent) SetAccountID(v int64) error { return model.SetField(e.Instance, "account_id", v) }
func (e *AuditEvent) SetAction(v string) error   { return model.SetField(e.Instance, "action", v) }
func (e *AuditEvent) SetDetail(v string) error   { return model.SetField(e.Instance, "detail", v) }

func (e *AuditEvent) SetOccurredAt(v time.Time) error {
	return model.SetField(e.Instance, "occurred_at", v)
}
