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

package repo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/campuscare/campuscare/internal/engine/core"
	"github.com/campuscare/campuscare/internal/engine/model"
	"github.com/campuscare/campuscare/pkg/database"
)

// ErrStale reports that a conditional write lost against a concurrent
// writer: the record exists but no longer has the expected status.
var ErrStale = errors.New("stale write")

const (
	opTimeout   = 5 * time.Second
	listTimeout = 10 * time.Second
)

type IUserRepository interface {
	// Create fails with Conflict when the email is taken.
	Create(ctx context.Context, u *model.User) error
	GetById(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// ListByOrganization lists every user when org is empty.
	ListByOrganization(ctx context.Context, org string) ([]*model.User, error)
	SetRole(ctx context.Context, id string, role model.Role) error
}

type IAppointmentRepository interface {
	Create(ctx context.Context, a *model.Appointment) error
	GetById(ctx context.Context, id string) (*model.Appointment, error)
	ListByOwner(ctx context.Context, ownerId string) ([]*model.Appointment, error)
	ListByOrganization(ctx context.Context, org string) ([]*model.Appointment, error)
	// UpdateStatus writes to only if the stored status still equals from.
	// It returns ErrStale when the status moved and NotFound when the
	// appointment is gone.
	UpdateStatus(ctx context.Context, id string, from, to model.AppointmentStatus) (*model.Appointment, error)
	// UpdateDetails has the same compare-and-set contract as UpdateStatus.
	UpdateDetails(ctx context.Context, id string, from model.AppointmentStatus, d model.AppointmentDetails) (*model.Appointment, error)
	CountByOrganization(ctx context.Context, org string) (int64, error)
}

type IForumRepository interface {
	Create(ctx context.Context, p *model.ForumPost) error
	GetById(ctx context.Context, id string) (*model.ForumPost, error)
	// List returns up to limit posts, newest first.
	List(ctx context.Context, org string, limit int64) ([]*model.ForumPost, error)
	AppendComment(ctx context.Context, id string, c model.Comment) (*model.ForumPost, error)
	IncrementUpvotes(ctx context.Context, id string) (*model.ForumPost, error)
	Delete(ctx context.Context, id string) error
	CountByOrganization(ctx context.Context, org string) (int64, error)
}

type ICounsellorRepository interface {
	Create(ctx context.Context, c *model.Counsellor) error
	GetById(ctx context.Context, id string) (*model.Counsellor, error)
	ListByOrganization(ctx context.Context, org string) ([]*model.Counsellor, error)
	Update(ctx context.Context, c *model.Counsellor) error
	Delete(ctx context.Context, id string) error
}

type IAnalyticsRepository interface {
	Create(ctx context.Context, s *model.AnalyticsSnapshot) error
	ListByOrganization(ctx context.Context, org string, limit int64) ([]*model.AnalyticsSnapshot, error)
}

// Repositories groups every repository the services need.
type Repositories struct {
	User        IUserRepository
	Appointment IAppointmentRepository
	Forum       IForumRepository
	Counsellor  ICounsellorRepository
	Analytics   IAnalyticsRepository
}

// NewRepositories builds mongo-backed repositories and ensures their indexes.
func NewRepositories(ctx context.Context, db database.MongoDB) (*Repositories, error) {
	user := NewUserRepo(db)
	if err := user.CreateIndexes(ctx); err != nil {
		return nil, err
	}
	appointment := NewAppointmentRepo(db)
	if err := appointment.CreateIndexes(ctx); err != nil {
		return nil, err
	}
	forum := NewForumRepo(db)
	if err := forum.CreateIndexes(ctx); err != nil {
		return nil, err
	}
	return &Repositories{
		User:        user,
		Appointment: appointment,
		Forum:       forum,
		Counsellor:  NewCounsellorRepo(db),
		Analytics:   NewAnalyticsRepo(db),
	}, nil
}

// translate maps driver errors onto the core taxonomy.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return core.NotFound("%s not found", what)
	case mongo.IsDuplicateKeyError(err):
		return core.Wrap(core.KindConflict, err, what+" already exists")
	}
	return err
}

var (
	_ IUserRepository        = (*UserRepo)(nil)
	_ IAppointmentRepository = (*AppointmentRepo)(nil)
	_ IForumRepository       = (*ForumRepo)(nil)
	_ ICounsellorRepository  = (*CounsellorRepo)(nil)
	_ IAnalyticsRepository   = (*AnalyticsRepo)(nil)

	_ IUserRepository        = (*MemoryUserRepo)(nil)
	_ IAppointmentRepository = (*MemoryAppointmentRepo)(nil)
	_ IForumRepository       = (*MemoryForumRepo)(nil)
	_ ICounsellorRepository  = (*MemoryCounsellorRepo)(nil)
	_ IAnalyticsRepository   = (*MemoryAnalyticsRepo)(nil)
)
