package model

import "github.com/google/uuid"

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleManager  Role = "MANAGER"
	RoleMechanic Role = "MECHANIC"
)

// Principal is the authenticated actor extracted from the access token.
// Managers and mechanics are scoped to a single branch; admins see all.
type Principal struct {
	UserID   uuid.UUID
	Role     Role
	BranchID *uuid.UUID
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p Principal) IsManager() bool {
	return p.Role == RoleManager
}

func (p Principal) IsMechanic() bool {
	return p.Role == RoleMechanic
}

// CanAccessBranch reports whether the principal may mutate records belonging
// to the given branch. A nil branch means the record is unassigned and any
// staff role may touch it.
func (p Principal) CanAccessBranch(branchID *uuid.UUID) bool {
	if p.IsAdmin() {
		return true
	}
	if branchID == nil || p.BranchID == nil {
		return branchID == nil
	}
	return *p.BranchID == *branchID
}
