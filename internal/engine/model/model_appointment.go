package model

import (
	"strings"
	"time"

	"github.com/campuscare/campuscare/internal/engine/core"
)

/**
 * @file: model_appointment.go
 * @description: appointment model
 */

type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentPending, AppointmentConfirmed, AppointmentCompleted, AppointmentCancelled:
		return true
	}
	return false
}

type Appointment struct {
	ID           string            `bson:"_id" json:"id"`
	Organization string            `bson:"collegeName" json:"organization"`
	OwnerID      string            `bson:"userId" json:"ownerId"`
	CounselorRef string            `bson:"counsellorId,omitempty" json:"counselorRef,omitempty"`
	ScheduledAt  time.Time         `bson:"scheduledAt" json:"scheduledAt"`
	Status       AppointmentStatus `bson:"status" json:"status"`
	Notes        string            `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt    time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time         `bson:"updatedAt" json:"updatedAt"`
}

func (a *Appointment) ResourceOwner() string        { return a.OwnerID }
func (a *Appointment) ResourceOrganization() string { return a.Organization }

type CreateAppointmentReq struct {
	Organization string     `json:"organization"`
	ScheduledAt  *time.Time `json:"scheduledAt"`
	CounselorRef string     `json:"counselorRef,omitempty"`
	Notes        string     `json:"notes,omitempty"`
}

func (r *CreateAppointmentReq) Validate() error {
	r.Organization = strings.TrimSpace(r.Organization)
	if r.Organization == "" {
		return core.InvalidArgument("organization is required")
	}
	if r.ScheduledAt == nil || r.ScheduledAt.IsZero() {
		return core.InvalidArgument("scheduledAt is required")
	}
	return nil
}

// UpdateAppointmentReq changes the status and/or the editable details of an
// appointment. At least one field must be present.
type UpdateAppointmentReq struct {
	Status       *AppointmentStatus `json:"status,omitempty"`
	Notes        *string            `json:"notes,omitempty"`
	CounselorRef *string            `json:"counselorRef,omitempty"`
}

func (r *UpdateAppointmentReq) Validate() error {
	if r.Status == nil && r.Notes == nil && r.CounselorRef == nil {
		return core.InvalidArgument("nothing to update")
	}
	if r.Status != nil && !r.Status.Valid() {
		return core.InvalidArgument("unknown status %q", *r.Status)
	}
	return nil
}

// AppointmentDetails is the set of non-status fields an owner may edit.
type AppointmentDetails struct {
	Notes        *string
	CounselorRef *string
}

func (d AppointmentDetails) Empty() bool {
	return d.Notes == nil && d.CounselorRef == nil
}
