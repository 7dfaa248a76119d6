package model

import "strings"

/**
 * @file: model_principal.go
 * @description: authenticated principal
 */

type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// ParseRole normalizes a stored role. Legacy records use "user" for members.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin
	default:
		return RoleMember
	}
}

// Principal is the authenticated actor every core operation receives
// explicitly. It is resolved fresh per request.
type Principal struct {
	ID           string `json:"id"`
	Role         Role   `json:"role"`
	Organization string `json:"organization"`
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Resource is anything the guard can make an ownership decision about.
type Resource interface {
	ResourceOwner() string
	ResourceOrganization() string
}
