package entities

import "time"

type Role string

const (
	RoleClinician  Role = "clinician"
	RoleResearcher Role = "researcher"
	RoleAdmin      Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleClinician, RoleResearcher, RoleAdmin:
		return true
	default:
		return false
	}
}

type User struct {
	UserID       string
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
