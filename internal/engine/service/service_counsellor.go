package service

import (
	"context"
	"time"

	"github.com/bytedance/sonic"

	"github.com/campuscare/campuscare/internal/engine/guard"
	"github.com/campuscare/campuscare/internal/engine/model"
	"github.com/campuscare/campuscare/internal/engine/repo"
	"github.com/campuscare/campuscare/pkg/cache"
	"github.com/campuscare/campuscare/pkg/id"
	"github.com/campuscare/campuscare/pkg/log"
	"github.com/campuscare/campuscare/pkg/metrics"
)

const (
	counsellorListKey = "counsellors:"
	counsellorListTTL = 30 * time.Second
)

// CounsellorService manages the counsellor directory. Listings are cached
// per organization and invalidated on every write.
type CounsellorService struct {
	counsellors repo.ICounsellorRepository
	guard       *guard.Guard
	cache       cache.ICache
	metrics     *metrics.Metrics
}

func NewCounsellorService(counsellors repo.ICounsellorRepository, g *guard.Guard, c cache.ICache, m *metrics.Metrics) *CounsellorService {
	return &CounsellorService{
		counsellors: counsellors,
		guard:       g,
		cache:       c,
		metrics:     m,
	}
}

func (cs *CounsellorService) List(ctx context.Context, p model.Principal, org string) ([]*model.Counsellor, error) {
	if org == "" {
		org = p.Organization
	}
	if err := check(cs.metrics, cs.guard.AuthorizeOrganization(p, org)); err != nil {
		return nil, err
	}

	key := counsellorListKey + org
	if cs.cache != nil {
		if data, ok := cs.cache.Get(ctx, key); ok {
			var cached []*model.Counsellor
			if err := sonic.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
			log.Warnw("discarding undecodable counsellor cache entry", "key", key)
		}
	}

	list, err := cs.counsellors.ListByOrganization(ctx, org)
	if err != nil {
		return nil, err
	}
	if cs.cache != nil {
		if err := cs.cache.Set(ctx, key, list, counsellorListTTL); err != nil {
			log.Warnw("failed to cache counsellors", "key", key, "error", err)
		}
	}
	return list, nil
}

func (cs *CounsellorService) Get(ctx context.Context, p model.Principal, id string) (*model.Counsellor, error) {
	c, err := cs.counsellors.GetById(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := check(cs.metrics, cs.guard.AuthorizeOrganization(p, c.Organization)); err != nil {
		return nil, err
	}
	return c, nil
}

func (cs *CounsellorService) Create(ctx context.Context, p model.Principal, req *model.CounsellorReq) (*model.Counsellor, error) {
	if err := check(cs.metrics, cs.guard.RequireAdmin(p)); err != nil {
		return nil, err
	}
	if req.Organization == "" {
		req.Organization = p.Organization
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := check(cs.metrics, cs.guard.AuthorizeOrganization(p, req.Organization)); err != nil {
		return nil, err
	}

	now := time.Now()
	c := &model.Counsellor{
		ID:        id.GetUUID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	req.Apply(c)
	if err := cs.counsellors.Create(ctx, c); err != nil {
		return nil, err
	}
	cs.invalidate(ctx, c.Organization)
	log.Infow("counsellor created", "id", c.ID, "organization", c.Organization, "by", p.ID)
	return c, nil
}

func (cs *CounsellorService) Update(ctx context.Context, p model.Principal, id string, req *model.CounsellorReq) (*model.Counsellor, error) {
	c, err := cs.counsellors.GetById(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := check(cs.metrics, cs.guard.Authorize(p, guard.ActionUpdate, c)); err != nil {
		return nil, err
	}
	if req.Organization == "" {
		req.Organization = c.Organization
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	// moving a counsellor needs scope over the destination too
	if req.Organization != c.Organization {
		if err := check(cs.metrics, cs.guard.AuthorizeOrganization(p, req.Organization)); err != nil {
			return nil, err
		}
	}

	previous := c.Organization
	req.Apply(c)
	c.UpdatedAt = time.Now()
	if err := cs.counsellors.Update(ctx, c); err != nil {
		return nil, err
	}
	cs.invalidate(ctx, previous, c.Organization)
	return c, nil
}

func (cs *CounsellorService) Delete(ctx context.Context, p model.Principal, id string) error {
	c, err := cs.counsellors.GetById(ctx, id)
	if err != nil {
		return err
	}
	if err := check(cs.metrics, cs.guard.Authorize(p, guard.ActionDelete, c)); err != nil {
		return err
	}
	if err := cs.counsellors.Delete(ctx, id); err != nil {
		return err
	}
	cs.invalidate(ctx, c.Organization)
	return nil
}

func (cs *CounsellorService) invalidate(ctx context.Context, orgs ...string) {
	if cs.cache == nil {
		return
	}
	keys := make([]string, 0, len(orgs))
	for _, org := range orgs {
		keys = append(keys, counsellorListKey+org)
	}
	cs.cache.Del(ctx, keys...)
}
