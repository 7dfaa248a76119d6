package model

import (
	"net/mail"
	"strings"
	"time"

	"github.com/campuscare/campuscare/internal/engine/core"
)

/**
 * @file: model_user.go
 * @description: user model
 */

type User struct {
	ID           string    `bson:"_id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"password" json:"-"`
	Age          int       `bson:"age,omitempty" json:"age,omitempty"`
	College      string    `bson:"college,omitempty" json:"college,omitempty"`
	Phone        string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Gender       string    `bson:"gender,omitempty" json:"gender,omitempty"`
	Role         Role      `bson:"role" json:"role"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Principal projects the user onto the identity the guard works with.
func (u *User) Principal() Principal {
	return Principal{
		ID:           u.ID,
		Role:         ParseRole(string(u.Role)),
		Organization: u.College,
	}
}

func (u *User) Info() UserInfo {
	return UserInfo{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Age:     u.Age,
		College: u.College,
		Phone:   u.Phone,
		Gender:  u.Gender,
		Role:    ParseRole(string(u.Role)),
	}
}

type RegisterReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	College  string `json:"college,omitempty"`
	Age      int    `json:"age,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Gender   string `json:"gender,omitempty"`
}

func (r *RegisterReq) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.College = strings.TrimSpace(r.College)
	if r.Name == "" || r.Email == "" || r.Password == "" {
		return core.InvalidArgument("name, email and password are required")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return core.InvalidArgument("invalid email")
	}
	if r.Age < 0 {
		return core.InvalidArgument("age must not be negative")
	}
	return nil
}

type LoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginReq) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Email == "" || r.Password == "" {
		return core.InvalidArgument("email and password are required")
	}
	return nil
}

type RefreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

func (r *RefreshReq) Validate() error {
	if strings.TrimSpace(r.RefreshToken) == "" {
		return core.InvalidArgument("refreshToken is required")
	}
	return nil
}

type LoginResp struct {
	Token map[string]string `json:"token"`
	User  UserInfo          `json:"user"`
}

type UserInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Age     int    `json:"age,omitempty"`
	College string `json:"college,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Gender  string `json:"gender,omitempty"`
	Role    Role   `json:"role"`
}

type SetRoleReq struct {
	Role string `json:"role"`
}

func (r *SetRoleReq) Validate() error {
	switch strings.ToLower(strings.TrimSpace(r.Role)) {
	case string(RoleAdmin), string(RoleMember), "user":
		return nil
	}
	return core.InvalidArgument("unknown role %q", r.Role)
}

// AdminSeed describes an administrator account provisioned at startup.
type AdminSeed struct {
	Name     string `mapstructure:"name"`
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
	College  string `mapstructure:"college"`
}

func (s AdminSeed) Enabled() bool {
	return s.Email != "" && s.Password != ""
}
