package model

import "github.com/google/uuid"

type UserRole string

const (
	UserRoleAdmin   UserRole = "ADMIN"
	UserRoleManager UserRole = "MANAGER"
	UserRoleViewer  UserRole = "VIEWER"
)

// Principal is the authenticated caller extracted from the access token.
type Principal struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Role     UserRole
}

func (p Principal) IsAdmin() bool {
	return p.Role == UserRoleAdmin
}

func (p Principal) IsViewer() bool {
	return p.Role == UserRoleViewer
}

// CanWrite reports whether the principal may change contract state.
func (p Principal) CanWrite() bool {
	return p.Role != UserRoleViewer
}
