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
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/campuscare/campuscare/internal/engine/core"
	"github.com/campuscare/campuscare/internal/engine/model"
)

/**
 * @file: repo_memory.go
 * @description: in-process repositories for the memory driver and tests.
 * Every read returns a deep copy so callers never share state with the store.
 */

// NewMemoryRepositories returns empty in-memory repositories.
func NewMemoryRepositories() *Repositories {
	return &Repositories{
		User:        NewMemoryUserRepo(),
		Appointment: NewMemoryAppointmentRepo(),
		Forum:       NewMemoryForumRepo(),
		Counsellor:  NewMemoryCounsellorRepo(),
		Analytics:   NewMemoryAnalyticsRepo(),
	}
}

type MemoryUserRepo struct {
	mu      sync.RWMutex
	byId    map[string]*model.User
	byEmail map[string]string
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{
		byId:    make(map[string]*model.User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryUserRepo) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	email := strings.ToLower(u.Email)
	if _, ok := r.byEmail[email]; ok {
		return core.Conflict("user already exists")
	}
	if _, ok := r.byId[u.ID]; ok {
		return core.Conflict("user already exists")
	}
	cp := *u
	r.byId[u.ID] = &cp
	r.byEmail[email] = u.ID
	return nil
}

func (r *MemoryUserRepo) GetById(_ context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byId[id]
	if !ok {
		return nil, core.NotFound("user not found")
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[strings.ToLower(email)]
	r.mu.RUnlock()
	if !ok {
		return nil, core.NotFound("user not found")
	}
	return r.GetById(ctx, id)
}

func (r *MemoryUserRepo) SetRole(_ context.Context, id string, role model.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byId[id]
	if !ok {
		return core.NotFound("user not found")
	}
	u.Role = role
	u.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryUserRepo) ListByOrganization(_ context.Context, org string) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]*model.User, 0)
	for _, u := range r.byId {
		if org != "" && u.College != org {
			continue
		}
		cp := *u
		cp.PasswordHash = ""
		users = append(users, &cp)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

type MemoryAppointmentRepo struct {
	mu    sync.RWMutex
	items map[string]*model.Appointment
}

func NewMemoryAppointmentRepo() *MemoryAppointmentRepo {
	return &MemoryAppointmentRepo{items: make(map[string]*model.Appointment)}
}

func (r *MemoryAppointmentRepo) Create(_ context.Context, a *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[a.ID]; ok {
		return core.Conflict("appointment already exists")
	}
	cp := *a
	r.items[a.ID] = &cp
	return nil
}

func (r *MemoryAppointmentRepo) GetById(_ context.Context, id string) (*model.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.items[id]
	if !ok {
		return nil, core.NotFound("appointment not found")
	}
	cp := *a
	return &cp, nil
}

func (r *MemoryAppointmentRepo) ListByOwner(_ context.Context, ownerId string) ([]*model.Appointment, error) {
	return r.filter(func(a *model.Appointment) bool { return a.OwnerID == ownerId }), nil
}

func (r *MemoryAppointmentRepo) ListByOrganization(_ context.Context, org string) ([]*model.Appointment, error) {
	return r.filter(func(a *model.Appointment) bool { return org == "" || a.Organization == org }), nil
}

func (r *MemoryAppointmentRepo) filter(keep func(*model.Appointment) bool) []*model.Appointment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := make([]*model.Appointment, 0)
	for _, a := range r.items {
		if keep(a) {
			cp := *a
			items = append(items, &cp)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ScheduledAt.After(items[j].ScheduledAt) })
	return items
}

func (r *MemoryAppointmentRepo) UpdateStatus(_ context.Context, id string, from, to model.AppointmentStatus) (*model.Appointment, error) {
	return r.cas(id, from, func(a *model.Appointment) { a.Status = to })
}

func (r *MemoryAppointmentRepo) UpdateDetails(_ context.Context, id string, from model.AppointmentStatus, d model.AppointmentDetails) (*model.Appointment, error) {
	return r.cas(id, from, func(a *model.Appointment) {
		if d.Notes != nil {
			a.Notes = *d.Notes
		}
		if d.CounselorRef != nil {
			a.CounselorRef = *d.CounselorRef
		}
	})
}

func (r *MemoryAppointmentRepo) cas(id string, from model.AppointmentStatus, apply func(*model.Appointment)) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return nil, core.NotFound("appointment not found")
	}
	if a.Status != from {
		return nil, ErrStale
	}
	apply(a)
	a.UpdatedAt = time.Now()
	cp := *a
	return &cp, nil
}

func (r *MemoryAppointmentRepo) CountByOrganization(_ context.Context, org string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, a := range r.items {
		if a.Organization == org {
			n++
		}
	}
	return n, nil
}

type MemoryForumRepo struct {
	mu    sync.RWMutex
	posts map[string]*model.ForumPost
}

func NewMemoryForumRepo() *MemoryForumRepo {
	return &MemoryForumRepo{posts: make(map[string]*model.ForumPost)}
}

func copyPost(p *model.ForumPost) *model.ForumPost {
	cp := *p
	cp.Tags = slices.Clone(p.Tags)
	cp.Comments = append(make([]model.Comment, 0, len(p.Comments)), p.Comments...)
	return &cp
}

func (r *MemoryForumRepo) Create(_ context.Context, p *model.ForumPost) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[p.ID]; ok {
		return core.Conflict("post already exists")
	}
	r.posts[p.ID] = copyPost(p)
	return nil
}

func (r *MemoryForumRepo) GetById(_ context.Context, id string) (*model.ForumPost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, core.NotFound("post not found")
	}
	return copyPost(p), nil
}

func (r *MemoryForumRepo) List(_ context.Context, org string, limit int64) ([]*model.ForumPost, error) {
	r.mu.RLock()
	posts := make([]*model.ForumPost, 0)
	for _, p := range r.posts {
		if org == "" || p.Organization == org {
			posts = append(posts, copyPost(p))
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	if limit > 0 && int64(len(posts)) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (r *MemoryForumRepo) AppendComment(_ context.Context, id string, c model.Comment) (*model.ForumPost, error) {
	return r.mutate(id, func(p *model.ForumPost) { p.Comments = append(p.Comments, c) })
}

func (r *MemoryForumRepo) IncrementUpvotes(_ context.Context, id string) (*model.ForumPost, error) {
	return r.mutate(id, func(p *model.ForumPost) { p.Upvotes++ })
}

func (r *MemoryForumRepo) mutate(id string, apply func(*model.ForumPost)) (*model.ForumPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, core.NotFound("post not found")
	}
	apply(p)
	p.UpdatedAt = time.Now()
	return copyPost(p), nil
}

func (r *MemoryForumRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return core.NotFound("post not found")
	}
	delete(r.posts, id)
	return nil
}

func (r *MemoryForumRepo) CountByOrganization(_ context.Context, org string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, p := range r.posts {
		if p.Organization == org {
			n++
		}
	}
	return n, nil
}

type MemoryCounsellorRepo struct {
	mu    sync.RWMutex
	items map[string]*model.Counsellor
}

func NewMemoryCounsellorRepo() *MemoryCounsellorRepo {
	return &MemoryCounsellorRepo{items: make(map[string]*model.Counsellor)}
}

func (r *MemoryCounsellorRepo) Create(_ context.Context, c *model.Counsellor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[c.ID]; ok {
		return core.Conflict("counsellor already exists")
	}
	cp := *c
	r.items[c.ID] = &cp
	return nil
}

func (r *MemoryCounsellorRepo) GetById(_ context.Context, id string) (*model.Counsellor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.items[id]
	if !ok {
		return nil, core.NotFound("counsellor not found")
	}
	cp := *c
	return &cp, nil
}

func (r *MemoryCounsellorRepo) ListByOrganization(_ context.Context, org string) ([]*model.Counsellor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := make([]*model.Counsellor, 0)
	for _, c := range r.items {
		if org == "" || c.Organization == org {
			cp := *c
			items = append(items, &cp)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (r *MemoryCounsellorRepo) Update(_ context.Context, c *model.Counsellor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[c.ID]; !ok {
		return core.NotFound("counsellor not found")
	}
	c.UpdatedAt = time.Now()
	cp := *c
	r.items[c.ID] = &cp
	return nil
}

func (r *MemoryCounsellorRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return core.NotFound("counsellor not found")
	}
	delete(r.items, id)
	return nil
}

type MemoryAnalyticsRepo struct {
	mu    sync.RWMutex
	items []*model.AnalyticsSnapshot
}

func NewMemoryAnalyticsRepo() *MemoryAnalyticsRepo {
	return &MemoryAnalyticsRepo{}
}

func (r *MemoryAnalyticsRepo) Create(_ context.Context, s *model.AnalyticsSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.items = append(r.items, &cp)
	return nil
}

func (r *MemoryAnalyticsRepo) ListByOrganization(_ context.Context, org string, limit int64) ([]*model.AnalyticsSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := make([]*model.AnalyticsSnapshot, 0)
	for i := len(r.items) - 1; i >= 0; i-- {
		s := r.items[i]
		if org != "" && s.Organization != org {
			continue
		}
		cp := *s
		items = append(items, &cp)
		if limit > 0 && int64(len(items)) == limit {
			break
		}
	}
	return items, nil
}
