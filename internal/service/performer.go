package service

import "context"

// PerformerSystem is the attribution sentinel used when no identity is
// available.
const PerformerSystem = "system"

// Performer carries the identity attached to a mutation by the identity/
// session provider in front of this core.
type Performer struct {
	UserID    string
	APIKey    string
	SessionID string
}

// Resolve returns the identity recorded in audit entries. The resolution
// order is a design contract: authenticated user id first, then the
// session/API-key identifier, then the "system" sentinel.
func (p Performer) Resolve() string {
	if p.UserID != "" {
		return p.UserID
	}
	if p.APIKey != "" {
		return p.APIKey
	}
	if p.SessionID != "" {
		return p.SessionID
	}
	return PerformerSystem
}

// ProjectRegistry is the external project lookup collaborator. Only
// existence is consulted here.
type ProjectRegistry interface {
	Exists(ctx context.Context, projectID string) (bool, error)
}

// StaticRegistry accepts every project id. It is the default registry for
// single-tenant deployments and tests.
type StaticRegistry struct{}

func (StaticRegistry) Exists(ctx context.Context, projectID string) (bool, error) {
	return true, nil
}
