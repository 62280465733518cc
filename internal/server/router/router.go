package router

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MagetoJ/AviTrack/internal/domain/models"
	"github.com/MagetoJ/AviTrack/internal/server/handlers"
	"github.com/MagetoJ/AviTrack/internal/session"
)

// SessionHeader carries the session token on API requests.
const SessionHeader = "X-Session-Token"

// RequestObserver records per-route request counts.
type RequestObserver interface {
	ObserveRequest(method, route, status string)
	Handler() http.Handler
}

// Handlers groups the HTTP adapters mounted by the router.
type Handlers struct {
	Inventory *handlers.InventoryHandler
	Flock     *handlers.FlockHandler
	Staff     *handlers.StaffHandler
	Orders    *handlers.OrderHandler
	Sessions  *handlers.SessionHandler
}

// Options configures the engine.
type Options struct {
	Sessions *session.Manager
	Metrics  RequestObserver
	// ReadOnlyFlock rejects batch and field-entry writes. It is set when the
	// inventory is read from an external spreadsheet that the API cannot update.
	ReadOnlyFlock bool
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, opts Options, logger *zap.Logger) *gin.Engine {
	metrics := opts.Metrics
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))
	if metrics != nil {
		r.Use(metricsMiddleware(metrics))
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api", sessionMiddleware(opts.Sessions))
	api.POST("/sessions", h.Sessions.Create)
	api.DELETE("/sessions", requireRole(), h.Sessions.Delete)

	flockWrites := func(c *gin.Context) { c.Next() }
	if opts.ReadOnlyFlock {
		flockWrites = rejectFlockWrites
	}

	farm := api.Group("", requireRole(models.RoleAdmin, models.RoleStaff))
	farm.GET("/inventory", h.Inventory.Get)
	farm.GET("/batches", h.Inventory.ListBatches)
	farm.POST("/staff/daily-entry", flockWrites, h.Flock.DailyEntry)
	farm.POST("/staff/quarantine", flockWrites, h.Flock.Quarantine)
	farm.POST("/staff/slaughter", flockWrites, h.Flock.Slaughter)
	farm.POST("/staff/cases/:caseId/resolve", flockWrites, h.Flock.ResolveCase)
	farm.POST("/staff/checkins", h.Staff.CheckIn)

	admin := api.Group("", requireRole(models.RoleAdmin))
	admin.GET("/inventory/export", h.Inventory.Export)
	admin.POST("/batches", flockWrites, h.Flock.CreateBatch)
	admin.GET("/staff/efficiency", h.Staff.Efficiency)

	api.POST("/orders", requireRole(models.RoleCustomer, models.RoleAdmin), h.Orders.Place)

	if logger != nil {
		logger.Info("router initialized", zap.Bool("read_only_flock", opts.ReadOnlyFlock))
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}

func metricsMiddleware(m RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()))
	}
}

// sessionMiddleware attaches the session named by the token header to the
// request context. Unknown or expired tokens are rejected.
func sessionMiddleware(m *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(SessionHeader)
		if token == "" {
			c.Next()
			return
		}

		s, ok := m.Lookup(token)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
			return
		}

		c.Request = c.Request.WithContext(session.WithSession(c.Request.Context(), s))
		c.Next()
	}
}

// requireRole rejects requests without a session, or with none of the given
// roles. No roles means any signed-in user.
func requireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := session.FromContext(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session required"})
			return
		}
		if len(roles) > 0 && !s.HasRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

func rejectFlockWrites(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusConflict, gin.H{
		"error": "flock records are maintained in the spreadsheet; update them there",
	})
}
