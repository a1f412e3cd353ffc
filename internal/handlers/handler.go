package handlers

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"cyberkids_accounts/internal/logger"
	"cyberkids_accounts/internal/metrics"
	"cyberkids_accounts/internal/models"
	"cyberkids_accounts/internal/service"
)

// Handler wires HTTP layer to services, logging and metrics.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	metrics  *metrics.Metrics
}

// NewHandler constructs a new HTTP handler. log and m may be nil.
func NewHandler(services *service.Service, log *logger.Logger, m *metrics.Metrics) *Handler {
	return &Handler{services: services, log: log, metrics: m}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger, h.requestMetrics)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	h.registerAccountRoutes(router)
	h.registerLinkingRoutes(router)
	h.registerAPIRoutes(router)

	return router
}

func (h *Handler) registerAccountRoutes(r *gin.Engine) {
	r.POST("/register", h.register)
	r.POST("/login", h.login)
	r.POST("/token/refresh", h.refreshToken)
}

func (h *Handler) registerLinkingRoutes(r *gin.Engine) {
	r.GET("/students/:username", h.getStudent)
	r.POST("/children", h.createChild)
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.accountMiddleware)
	{
		api.GET("/me", h.me)
		api.GET("/children", h.requireRole(models.RoleParent), h.myChildren)
	}
}
