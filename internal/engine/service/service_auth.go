package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/campuscare/campuscare/internal/engine/core"
	"github.com/campuscare/campuscare/internal/engine/guard"
	"github.com/campuscare/campuscare/internal/engine/model"
	"github.com/campuscare/campuscare/internal/engine/repo"
	httpx "github.com/campuscare/campuscare/pkg/http"
	"github.com/campuscare/campuscare/pkg/http/jwt"
	"github.com/campuscare/campuscare/pkg/id"
	"github.com/campuscare/campuscare/pkg/log"
	"github.com/campuscare/campuscare/pkg/metrics"
)

/**
 * @file: service_auth.go
 * @description: registration, login and user profile
 */

type AuthService struct {
	users   repo.IUserRepository
	guard   *guard.Guard
	auth    httpx.Auth
	metrics *metrics.Metrics
}

func NewAuthService(users repo.IUserRepository, g *guard.Guard, auth httpx.Auth, m *metrics.Metrics) *AuthService {
	return &AuthService{
		users:   users,
		guard:   g,
		auth:    auth,
		metrics: m,
	}
}

// Register creates a member account and signs the caller in. The role is
// never taken from the request.
func (as *AuthService) Register(ctx context.Context, req *model.RegisterReq) (*model.LoginResp, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := getPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &model.User{
		ID:           id.GetUUID(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Age:          req.Age,
		College:      req.College,
		Phone:        req.Phone,
		Gender:       req.Gender,
		Role:         model.RoleMember,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err = as.users.Create(ctx, user); err != nil {
		if core.KindOf(err) == core.KindConflict {
			return nil, core.Wrap(core.KindConflict, err, httpx.UserAlreadyExist.Msg)
		}
		log.Errorw("failed to register user", "email", req.Email, "error", err)
		return nil, err
	}

	log.Infow("user registered", "userId", user.ID, "college", user.College)
	return as.signIn(user)
}

func (as *AuthService) Login(ctx context.Context, req *model.LoginReq) (*model.LoginResp, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := as.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if core.KindOf(err) == core.KindNotFound {
			return nil, &core.Error{Kind: core.KindUnauthenticated, Msg: httpx.UserIncorrectPassword.Msg}
		}
		return nil, err
	}
	if !comparePassword(user.PasswordHash, req.Password) {
		log.Debugw("incorrect password provided", "userId", user.ID)
		return nil, &core.Error{Kind: core.KindUnauthenticated, Msg: httpx.UserIncorrectPassword.Msg}
	}
	return as.signIn(user)
}

// Refresh exchanges a refresh token for a new token pair.
func (as *AuthService) Refresh(ctx context.Context, req *model.RefreshReq) (*model.LoginResp, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	userId, err := jwt.ParseRefreshToken(req.RefreshToken, as.auth.SecretKey)
	if err != nil {
		return nil, core.Wrap(core.KindUnauthenticated, err, httpx.InvalidToken.Msg)
	}
	user, err := as.users.GetById(ctx, userId)
	if err != nil {
		if core.KindOf(err) == core.KindNotFound {
			return nil, core.Unauthenticated("user no longer exists")
		}
		return nil, err
	}
	return as.signIn(user)
}

func (as *AuthService) Me(ctx context.Context, p model.Principal) (*model.UserInfo, error) {
	if p.ID == "" {
		return nil, core.Unauthenticated("authentication required")
	}
	user, err := as.users.GetById(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	info := user.Info()
	return &info, nil
}

// ListUsers lists the users of the admin's organization, or of every
// organization when admins are global.
func (as *AuthService) ListUsers(ctx context.Context, p model.Principal) ([]model.UserInfo, error) {
	if err := check(as.metrics, as.guard.RequireAdmin(p)); err != nil {
		return nil, err
	}
	org := ""
	if !as.guard.Policy().GlobalAdmin {
		if err := check(as.metrics, as.guard.AuthorizeOrganization(p, p.Organization)); err != nil {
			return nil, err
		}
		org = p.Organization
	}
	users, err := as.users.ListByOrganization(ctx, org)
	if err != nil {
		return nil, err
	}
	infos := make([]model.UserInfo, 0, len(users))
	for _, u := range users {
		infos = append(infos, u.Info())
	}
	return infos, nil
}

// SetRole changes the role of a user of the admin's organization.
func (as *AuthService) SetRole(ctx context.Context, p model.Principal, userId string, req *model.SetRoleReq) (*model.UserInfo, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := check(as.metrics, as.guard.RequireAdmin(p)); err != nil {
		return nil, err
	}
	user, err := as.users.GetById(ctx, userId)
	if err != nil {
		return nil, err
	}
	if err := check(as.metrics, as.guard.AuthorizeOrganization(p, user.College)); err != nil {
		return nil, err
	}

	role := model.ParseRole(req.Role)
	if err := as.users.SetRole(ctx, userId, role); err != nil {
		return nil, err
	}
	log.Infow("user role changed", "userId", userId, "role", role, "by", p.ID)
	user.Role = role
	info := user.Info()
	return &info, nil
}

// EnsureAdmin provisions the seed administrator, promoting an existing
// account with the same email.
func (as *AuthService) EnsureAdmin(ctx context.Context, seed model.AdminSeed) error {
	if !seed.Enabled() {
		return nil
	}
	req := &model.RegisterReq{
		Name:     seed.Name,
		Email:    seed.Email,
		Password: seed.Password,
		College:  seed.College,
	}
	if req.Name == "" {
		req.Name = "Administrator"
	}
	if err := req.Validate(); err != nil {
		return err
	}

	existing, err := as.users.GetByEmail(ctx, req.Email)
	switch {
	case err == nil:
		if existing.Role == model.RoleAdmin {
			return nil
		}
		return as.users.SetRole(ctx, existing.ID, model.RoleAdmin)
	case core.KindOf(err) != core.KindNotFound:
		return err
	}

	hash, err := getPassword(req.Password)
	if err != nil {
		return err
	}
	now := time.Now()
	admin := &model.User{
		ID:           id.GetUUID(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		College:      req.College,
		Role:         model.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := as.users.Create(ctx, admin); err != nil {
		return err
	}
	log.Infow("seed administrator created", "email", admin.Email, "college", admin.College)
	return nil
}

func (as *AuthService) signIn(user *model.User) (*model.LoginResp, error) {
	aToken, rToken, err := jwt.GenToken(user.ID, []byte(as.auth.SecretKey), as.auth.AccessTTL(), as.auth.RefreshTTL())
	if err != nil {
		log.Errorw("failed to generate tokens", "userId", user.ID, "error", err)
		return nil, err
	}
	token := jwt.TokenPair(aToken, rToken)
	token["expireAt"] = fmt.Sprintf("%d", time.Now().Add(as.auth.AccessTTL()).Unix())
	return &model.LoginResp{Token: token, User: user.Info()}, nil
}

func getPassword(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Errorw("failed to hash password", "error", err)
		return nil, err
	}
	return hash, nil
}

func comparePassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
