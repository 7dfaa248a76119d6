// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package service

import (
	"context"
	"errors"
	"time"

	"github.com/campuscare/campuscare/internal/engine/core"
	"github.com/campuscare/campuscare/internal/engine/guard"
	"github.com/campuscare/campuscare/internal/engine/model"
	"github.com/campuscare/campuscare/internal/engine/repo"
	"github.com/campuscare/campuscare/pkg/id"
	"github.com/campuscare/campuscare/pkg/log"
	"github.com/campuscare/campuscare/pkg/metrics"
	"github.com/campuscare/campuscare/pkg/statemachine"
)

// maxWriteAttempts bounds how often a conditional write is retried against
// fresh state before giving up with Conflict.
const maxWriteAttempts = 3

// AppointmentLifecycle is the transition table for appointment status.
// completed and cancelled are terminal.
var AppointmentLifecycle = statemachine.New(model.AppointmentPending).
	Allow(model.AppointmentPending, model.AppointmentConfirmed, model.AppointmentCancelled).
	Allow(model.AppointmentConfirmed, model.AppointmentCompleted, model.AppointmentCancelled)

type AppointmentService struct {
	appointments repo.IAppointmentRepository
	guard        *guard.Guard
	metrics      *metrics.Metrics
}

func NewAppointmentService(appointments repo.IAppointmentRepository, g *guard.Guard, m *metrics.Metrics) *AppointmentService {
	return &AppointmentService{
		appointments: appointments,
		guard:        g,
		metrics:      m,
	}
}

func (s *AppointmentService) Create(ctx context.Context, p model.Principal, req *model.CreateAppointmentReq) (*model.Appointment, error) {
	if p.ID == "" {
		return nil, core.Unauthenticated("authentication required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := check(s.metrics, s.guard.AuthorizeOrganization(p, req.Organization)); err != nil {
		return nil, err
	}

	now := time.Now()
	a := &model.Appointment{
		ID:           id.GetUUID(),
		Organization: req.Organization,
		OwnerID:      p.ID,
		CounselorRef: req.CounselorRef,
		ScheduledAt:  req.ScheduledAt.UTC(),
		Status:       AppointmentLifecycle.Initial(),
		Notes:        req.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.appointments.Create(ctx, a); err != nil {
		log.Errorw("failed to create appointment", "owner", p.ID, "error", err)
		return nil, err
	}
	log.Infow("appointment created", "id", a.ID, "owner", p.ID, "organization", a.Organization)
	return a, nil
}

func (s *AppointmentService) Get(ctx context.Context, p model.Principal, id string) (*model.Appointment, error) {
	a, err := s.appointments.GetById(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := check(s.metrics, s.guard.Authorize(p, guard.ActionRead, a)); err != nil {
		return nil, err
	}
	return a, nil
}

// Transition moves the appointment to status to. The write is conditioned on
// the status that was read; when another writer got there first the
// appointment is reloaded and every check runs again.
func (s *AppointmentService) Transition(ctx context.Context, p model.Principal, id string, to model.AppointmentStatus) (*model.Appointment, error) {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		a, err := s.appointments.GetById(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := check(s.metrics, s.guard.Authorize(p, guard.ActionUpdate, a)); err != nil {
			return nil, err
		}
		if err := AppointmentLifecycle.Transition(a.Status, to); err != nil {
			return nil, invalidTransition(a.Status, to)
		}

		updated, err := s.appointments.UpdateStatus(ctx, id, a.Status, to)
		if errors.Is(err, repo.ErrStale) {
			log.Debugw("appointment changed concurrently, retrying", "id", id, "attempt", attempt+1)
			continue
		}
		if err != nil {
			return nil, err
		}
		log.Infow("appointment transitioned", "id", id, "from", a.Status, "to", to, "by", p.ID)
		return updated, nil
	}
	return nil, core.Conflict("appointment %s is being modified concurrently", id)
}

func invalidTransition(from, to model.AppointmentStatus) *core.Error {
	next := AppointmentLifecycle.GetValidNextStates(from)
	if len(next) == 0 {
		return core.InvalidTransition("cannot move appointment from %s to %s: %s is final", from, to, from)
	}
	return core.InvalidTransition("cannot move appointment from %s to %s, expected one of %v", from, to, next)
}

func (s *AppointmentService) Cancel(ctx context.Context, p model.Principal, id string) (*model.Appointment, error) {
	return s.Transition(ctx, p, id, model.AppointmentCancelled)
}

// UpdateDetails edits notes and counsellor reference of an open appointment.
func (s *AppointmentService) UpdateDetails(ctx context.Context, p model.Principal, id string, d model.AppointmentDetails) (*model.Appointment, error) {
	if d.Empty() {
		return nil, core.InvalidArgument("nothing to update")
	}
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		a, err := s.appointments.GetById(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := check(s.metrics, s.guard.Authorize(p, guard.ActionUpdate, a)); err != nil {
			return nil, err
		}
		if AppointmentLifecycle.IsTerminal(a.Status) {
			return nil, core.InvalidTransition("appointment is %s and can no longer be edited", a.Status)
		}

		updated, err := s.appointments.UpdateDetails(ctx, id, a.Status, d)
		if errors.Is(err, repo.ErrStale) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, core.Conflict("appointment %s is being modified concurrently", id)
}

// Update applies detail edits first and then the status change, so notes can
// be written together with the transition that closes the appointment.
func (s *AppointmentService) Update(ctx context.Context, p model.Principal, id string, req *model.UpdateAppointmentReq) (*model.Appointment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var (
		a   *model.Appointment
		err error
	)
	details := model.AppointmentDetails{Notes: req.Notes, CounselorRef: req.CounselorRef}
	if !details.Empty() {
		if a, err = s.UpdateDetails(ctx, p, id, details); err != nil {
			return nil, err
		}
	}
	if req.Status != nil {
		if a, err = s.Transition(ctx, p, id, *req.Status); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (s *AppointmentService) ListMine(ctx context.Context, p model.Principal) ([]*model.Appointment, error) {
	if p.ID == "" {
		return nil, core.Unauthenticated("authentication required")
	}
	return s.appointments.ListByOwner(ctx, p.ID)
}

// ListAll is admin only. org defaults to the admin's organization; global
// admins see every organization when org is empty.
func (s *AppointmentService) ListAll(ctx context.Context, p model.Principal, org string) ([]*model.Appointment, error) {
	if err := check(s.metrics, s.guard.RequireAdmin(p)); err != nil {
		return nil, err
	}
	if org == "" && !s.guard.Policy().GlobalAdmin {
		org = p.Organization
	}
	if org != "" || !s.guard.Policy().GlobalAdmin {
		if err := check(s.metrics, s.guard.AuthorizeOrganization(p, org)); err != nil {
			return nil, err
		}
	}
	return s.appointments.ListByOrganization(ctx, org)
}
