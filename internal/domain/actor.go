package domain

import "time"

// RoleKind enumerates the roles an actor can hold.
type RoleKind string

const (
	RoleRespondent RoleKind = "respondent"
	RoleAdmin      RoleKind = "admin"
	RoleProvider   RoleKind = "provider"
	RoleSupport    RoleKind = "support"
)

// SupportLevel identifies a support line tier. Zero means "not a support agent".
type SupportLevel int16

const (
	SupportLevelNone SupportLevel = 0
	SupportLevel1    SupportLevel = 1
	SupportLevel2    SupportLevel = 2
	SupportLevel3    SupportLevel = 3
)

// Role pairs a role kind with a support level. Level is set only when
// Kind == RoleSupport; every other kind carries SupportLevelNone.
type Role struct {
	Kind  RoleKind
	Level SupportLevel
}

// SupportRole builds a support role at the given tier.
func SupportRole(level SupportLevel) Role {
	return Role{Kind: RoleSupport, Level: level}
}

// IsSupport reports whether the role is a support agent.
func (r Role) IsSupport() bool {
	return r.Kind == RoleSupport
}

// Valid checks the level-iff-support invariant.
func (r Role) Valid() bool {
	if r.Kind == RoleSupport {
		return r.Level >= SupportLevel1 && r.Level <= SupportLevel3
	}
	return r.Level == SupportLevelNone
}

// Identity holds the account fields shared by every actor.
type Identity struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor is an authenticated participant: an identity plus its role.
type Actor struct {
	Identity
	Role Role
}
