package models

import (
	"fmt"
	"time"

	"github.com/roach88/modelkit/internal/model"
	"github.com/roach88/modelkit/internal/session"
)

// Migration names, as accepted by the CLI.
const (
	AccountModel    = "Account"
	AuditEventModel = "AuditEvent"
)

// Catalog holds the repositories of every shipped entity type.
type Catalog struct {
	Accounts    *model.Repository[*Account]
	AuditEvents *model.Repository[*AuditEvent]
}

// Register builds the repositories on reg and registers their migrations.
// Audit event timestamps are persisted in loc.
func Register(reg *session.Registry, loc *time.Location) (*Catalog, error) {
	c := &Catalog{
		Accounts:    NewAccounts(reg),
		AuditEvents: NewAuditEvents(reg, loc),
	}

	migrations := []struct {
		name string
		m    session.Migrator
	}{
		{AccountModel, c.Accounts},
		{AuditEventModel, c.AuditEvents},
	}
	for _, mig := range migrations {
		if err := reg.RegisterMigration(mig.name, mig.m); err != nil {
			return nil, fmt.Errorf("register models: %w", err)
		}
	}
	return c, nil
}
