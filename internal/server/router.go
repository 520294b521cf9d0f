package server

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Abin-1409/fuel-swift/internal/catalog"
	"github.com/Abin-1409/fuel-swift/internal/config"
	"github.com/Abin-1409/fuel-swift/internal/domain"
	"github.com/Abin-1409/fuel-swift/internal/events"
	"github.com/Abin-1409/fuel-swift/internal/infra"
	"github.com/Abin-1409/fuel-swift/internal/registrations"
	"github.com/Abin-1409/fuel-swift/internal/requests"
	"github.com/Abin-1409/fuel-swift/internal/security"
	"github.com/Abin-1409/fuel-swift/internal/server/handlers"
	"github.com/Abin-1409/fuel-swift/internal/server/mw"
	"github.com/Abin-1409/fuel-swift/internal/server/resp"
	"github.com/Abin-1409/fuel-swift/internal/store"
	"github.com/Abin-1409/fuel-swift/internal/users"
)

// Handlers groups everything Mount routes to.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Users         *handlers.UsersHandler
	Catalog       *handlers.CatalogHandler
	Requests      *handlers.RequestsHandler
	Payments      *handlers.PaymentsHandler
	Registrations *handlers.RegistrationsHandler
	Agent         *handlers.AgentHandler
	WS            *handlers.WSHandler
}

func NewRouter(cfg config.Config, deps *infra.Infra, hub *events.Hub, logger *zap.Logger) http.Handler {
	if cfg.IsLocal() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = 8 << 20
	r.Use(mw.RequestID())
	r.Use(mw.Recovery(logger))
	r.Use(mw.RequestLogger(logger))
	r.Use(mw.SecurityHeaders())

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", mw.HeaderRequestID},
		ExposeHeaders: []string{mw.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if slices.Contains(cfg.CORSOrigins, "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSOrigins
	}
	r.Use(cors.New(corsCfg))
	r.Use(mw.RateLimit(deps.Redis, cfg.RateLimitRPS))

	usersRepo := users.NewRepo(deps.PG)
	catalogRepo := catalog.NewRepo(deps.PG)
	requestsRepo := requests.NewRepo(deps.PG)
	regsRepo := registrations.NewRepo(deps.PG)
	jwtm := security.NewJWTManager(cfg.JWTSigningKey, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	refreshStore := store.NewRefreshStore(deps.Redis, cfg.JWTRefreshTTL)
	stockCache := store.NewJSONCache(deps.Redis, "cache:stock", 30*time.Second)
	statsCache := store.NewJSONCache(deps.Redis, "cache:stats", cfg.StatsCacheTTL)
	publisher := deps.Publisher(hub)

	Mount(r, Handlers{
		Auth:          handlers.NewAuthHandler(logger, usersRepo, jwtm, refreshStore),
		Users:         handlers.NewUsersHandler(logger, usersRepo),
		Catalog:       handlers.NewCatalogHandler(logger, catalogRepo, usersRepo, stockCache),
		Requests:      handlers.NewRequestsHandler(logger, usersRepo, catalogRepo, requestsRepo, publisher, statsCache),
		Payments:      handlers.NewPaymentsHandler(logger, requestsRepo, deps.Gateway, publisher),
		Registrations: handlers.NewRegistrationsHandler(logger, usersRepo, regsRepo, publisher, cfg.StoragePath),
		Agent:         handlers.NewAgentHandler(logger, usersRepo, requestsRepo, publisher, statsCache),
		WS:            handlers.NewWSHandler(logger, hub, cfg.CORSOrigins),
	}, jwtm)
	return r
}

// Mount registers every route. The trailing slashes match the paths the web
// clients already call.
func Mount(r *gin.Engine, h Handlers, jwtm mw.AccessParser) {
	r.GET("/health", func(c *gin.Context) {
		resp.OK(c, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	authed := api.Group("", mw.RequireAuth(jwtm))
	admin := api.Group("", mw.RequireAuth(jwtm), mw.RequireRole(domain.UserAdmin))
	staff := api.Group("", mw.RequireAuth(jwtm), mw.RequireRole(domain.UserAdmin, domain.UserAgent))
	agent := api.Group("", mw.RequireAuth(jwtm), mw.RequireRole(domain.UserAgent))

	api.POST("/register/", h.Auth.Register)
	api.POST("/login/", h.Auth.Login)
	api.POST("/token/refresh/", h.Auth.Refresh)

	admin.GET("/users/", h.Users.List)
	authed.PUT("/users/:id/", h.Users.Update)
	admin.DELETE("/users/:id/", h.Users.Delete)

	api.GET("/services/", h.Catalog.List)
	admin.POST("/services/create/", h.Catalog.Create)
	api.GET("/services/stock/", h.Catalog.Stock)
	api.GET("/services/type/:type/", h.Catalog.ByType)
	api.GET("/services/air/prices/", h.Catalog.Prices(domain.ServiceAir))
	api.GET("/services/electric/prices/", h.Catalog.Prices(domain.ServiceEV))
	api.GET("/services/mechanical/prices/", h.Catalog.Prices(domain.ServiceMechanical))
	api.GET("/services/mechanical/mechanics", h.Catalog.Availability(domain.ServiceMechanical, "mechanics"))
	api.GET("/services/air/technicians", h.Catalog.Availability(domain.ServiceAir, "technicians"))
	api.GET("/services/electric/chargers", h.Catalog.Availability(domain.ServiceEV, "chargers"))
	admin.PUT("/services/prices/:service_type/", h.Catalog.SetPrices)
	api.GET("/services/:id/", h.Catalog.Get)
	admin.PUT("/services/:id/", h.Catalog.Update)
	admin.DELETE("/services/:id/", h.Catalog.Delete)

	api.POST("/service-request/create/", h.Requests.Create)
	authed.GET("/service-requests/", h.Requests.List)
	authed.PUT("/service-requests/:id/update-status/", h.Requests.UpdateStatus)
	admin.PUT("/service-requests/:id/assign-agent/", h.Requests.AssignAgent)
	admin.GET("/available-agents/", h.Requests.AvailableAgents)

	api.POST("/payment/create-order/", h.Payments.CreateOrder)
	api.POST("/payment/verify/", h.Payments.Verify)
	staff.PUT("/payment/:id/update-status/", h.Payments.UpdateStatus)

	api.POST("/agent-registration-request/", h.Registrations.Submit)
	admin.GET("/agent-registration-requests/", h.Registrations.List)
	admin.POST("/agent-registration-request/:id/accept/", h.Registrations.Accept)
	admin.POST("/agent-registration-request/:id/reject/", h.Registrations.Reject)
	api.GET("/agent-registration-status/", h.Registrations.Status)

	staff.GET("/agent/assigned-tasks/", h.Agent.AssignedTasks)
	staff.GET("/agent/dashboard-stats/", h.Agent.DashboardStats)
	agent.PUT("/agent/tasks/:id/update-status/", h.Agent.UpdateTaskStatus)

	r.GET("/ws/agent", mw.RequireAuth(jwtm), mw.RequireRole(domain.UserAgent), h.WS.Agent)
}
