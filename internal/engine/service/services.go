package service

import (
	"github.com/campuscare/campuscare/internal/engine/guard"
	"github.com/campuscare/campuscare/internal/engine/repo"
	"github.com/campuscare/campuscare/pkg/cache"
	httpx "github.com/campuscare/campuscare/pkg/http"
	"github.com/campuscare/campuscare/pkg/metrics"
	"github.com/campuscare/campuscare/pkg/ws"
)

// Services 统一管理所有 service
type Services struct {
	Resolver    *PrincipalResolver
	Auth        *AuthService
	Appointment *AppointmentService
	Forum       *ForumService
	Counsellor  *CounsellorService
	Analytics   *AnalyticsService
	Stream      *ForumStream
	Broker      ws.Broker
}

// NewServices 初始化所有 service
func NewServices(
	repos *repo.Repositories,
	g *guard.Guard,
	auth httpx.Auth,
	c cache.ICache,
	broker ws.Broker,
	publisher ForumPublisher,
	m *metrics.Metrics,
) *Services {
	return &Services{
		Resolver:    NewPrincipalResolver(repos.User, auth),
		Auth:        NewAuthService(repos.User, g, auth, m),
		Appointment: NewAppointmentService(repos.Appointment, g, m),
		Forum:       NewForumService(repos.Forum, g, publisher, m),
		Counsellor:  NewCounsellorService(repos.Counsellor, g, c, m),
		Analytics:   NewAnalyticsService(repos, g, m),
		Stream:      NewForumStream(broker, g, m),
		Broker:      broker,
	}
}
