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
	"time"

	"github.com/campuscare/campuscare/internal/engine/guard"
	"github.com/campuscare/campuscare/internal/engine/model"
	"github.com/campuscare/campuscare/internal/engine/repo"
	"github.com/campuscare/campuscare/pkg/id"
	"github.com/campuscare/campuscare/pkg/metrics"
)

type AnalyticsService struct {
	appointments repo.IAppointmentRepository
	posts        repo.IForumRepository
	snapshots    repo.IAnalyticsRepository
	guard        *guard.Guard
	metrics      *metrics.Metrics
}

func NewAnalyticsService(repos *repo.Repositories, g *guard.Guard, m *metrics.Metrics) *AnalyticsService {
	return &AnalyticsService{
		appointments: repos.Appointment,
		posts:        repos.Forum,
		snapshots:    repos.Analytics,
		guard:        g,
		metrics:      m,
	}
}

func (as *AnalyticsService) scope(p model.Principal, org string) (string, error) {
	if err := check(as.metrics, as.guard.RequireAdmin(p)); err != nil {
		return "", err
	}
	if org == "" {
		org = p.Organization
	}
	if err := check(as.metrics, as.guard.AuthorizeOrganization(p, org)); err != nil {
		return "", err
	}
	return org, nil
}

// Snapshot counts the activity of org, stores the result and returns it.
func (as *AnalyticsService) Snapshot(ctx context.Context, p model.Principal, org string) (*model.AnalyticsSnapshot, error) {
	org, err := as.scope(p, org)
	if err != nil {
		return nil, err
	}

	appointments, err := as.appointments.CountByOrganization(ctx, org)
	if err != nil {
		return nil, err
	}
	posts, err := as.posts.CountByOrganization(ctx, org)
	if err != nil {
		return nil, err
	}

	snapshot := &model.AnalyticsSnapshot{
		ID:                id.GetUUID(),
		Organization:      org,
		Timestamp:         time.Now(),
		TotalAppointments: appointments,
		ForumPostsCount:   posts,
	}
	if err := as.snapshots.Create(ctx, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// List returns the most recent snapshots of org, newest first.
func (as *AnalyticsService) List(ctx context.Context, p model.Principal, org string) ([]*model.AnalyticsSnapshot, error) {
	org, err := as.scope(p, org)
	if err != nil {
		return nil, err
	}
	return as.snapshots.ListByOrganization(ctx, org, model.MaxAnalyticsList)
}
