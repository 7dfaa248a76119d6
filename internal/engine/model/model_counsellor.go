package model

import (
	"strings"
	"time"

	"github.com/campuscare/campuscare/internal/engine/core"
)

type Counsellor struct {
	ID           string    `bson:"_id" json:"id"`
	Organization string    `bson:"collegeName" json:"organization"`
	Name         string    `bson:"name" json:"name"`
	Phone        string    `bson:"phone,omitempty" json:"phone,omitempty"`
	RoomNumber   string    `bson:"roomNumber,omitempty" json:"roomNumber,omitempty"`
	Email        string    `bson:"email,omitempty" json:"email,omitempty"`
	Gender       string    `bson:"gender,omitempty" json:"gender,omitempty"`
	Designation  string    `bson:"designation,omitempty" json:"designation,omitempty"`
	Rating       float64   `bson:"rating" json:"rating"`
	UserID       string    `bson:"userId,omitempty" json:"userId,omitempty"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Counsellors are administered, not owned. Only admins pass the guard for
// mutations.
func (c *Counsellor) ResourceOwner() string        { return "" }
func (c *Counsellor) ResourceOrganization() string { return c.Organization }

type CounsellorReq struct {
	Organization string  `json:"organization"`
	Name         string  `json:"name"`
	Phone        string  `json:"phone,omitempty"`
	RoomNumber   string  `json:"roomNumber,omitempty"`
	Email        string  `json:"email,omitempty"`
	Gender       string  `json:"gender,omitempty"`
	Designation  string  `json:"designation,omitempty"`
	Rating       float64 `json:"rating,omitempty"`
	UserID       string  `json:"userId,omitempty"`
}

func (r *CounsellorReq) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Organization = strings.TrimSpace(r.Organization)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Name == "" {
		return core.InvalidArgument("name is required")
	}
	if r.Organization == "" {
		return core.InvalidArgument("organization is required")
	}
	if r.Rating < 0 || r.Rating > 5 {
		return core.InvalidArgument("rating must be between 0 and 5")
	}
	return nil
}

func (r *CounsellorReq) Apply(c *Counsellor) {
	c.Organization = r.Organization
	c.Name = r.Name
	c.Phone = r.Phone
	c.RoomNumber = r.RoomNumber
	c.Email = r.Email
	c.Gender = r.Gender
	c.Designation = r.Designation
	c.Rating = r.Rating
	c.UserID = r.UserID
}
