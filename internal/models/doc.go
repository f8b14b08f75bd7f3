// Package models declares the entity types shipped with modelkit.
//
// Account demonstrates the validator set, including a uniqueness check
// scoped to a company. AuditEvent persists its timestamps as local wall
// clock. Register wires both into a session.Registry so the CLI can migrate
// them by name.
package models
