// Package rest exposes the rabbits API over HTTP using gin.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wonderfulrabbits/rabbitsapi/internal/logging"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/models"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/services"
)

// IdentityResolver maps a bearer token to the user it names. See
// auth.IdentityResolver.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// HealthChecker reports whether the backing database is reachable.
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

type UserService interface {
	Register(ctx context.Context, req services.RegisterRequest) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*services.AuthResult, error)
	List(ctx context.Context) ([]models.UserSummary, error)
	Get(ctx context.Context, id int64) (*models.UserSummary, error)
	Update(ctx context.Context, id int64, req services.UpdateUserRequest) error
	Delete(ctx context.Context, id int64) error
}

type RabbitService interface {
	Register(ctx context.Context, req services.RegisterRabbitRequest, caller *models.User) (*models.Rabbit, error)
	Get(ctx context.Context, id int64) (*models.RabbitView, error)
	List(ctx context.Context) ([]*models.RabbitView, error)
	Update(ctx context.Context, id int64, req services.UpdateRabbitRequest) error
	Delete(ctx context.Context, id int64) error
}

type PhotoService interface {
	Upload(ctx context.Context, req services.UploadPhotoRequest) (*models.Photo, error)
	Get(ctx context.Context, id int64) (*models.Photo, error)
	List(ctx context.Context) ([]*models.Photo, error)
}

type ImageService interface {
	Upload(ctx context.Context, req services.UploadImageRequest) (*models.Image, error)
	Get(ctx context.Context, id int64) (*models.Image, []byte, error)
	List(ctx context.Context) ([]services.ImageView, error)
}

// Services bundles the business services the handlers call.
type Services struct {
	Users   UserService
	Rabbits RabbitService
	Photos  PhotoService
	Images  ImageService
}

// Options configures a Server.
type Options struct {
	Address         string
	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

type Server struct {
	opts     Options
	engine   *gin.Engine
	logger   logging.Logger
	svc      Services
	identity IdentityResolver
	health   HealthChecker
}

func NewServer(opts Options, l logging.Logger, svc Services, identity IdentityResolver, health HealthChecker) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		opts:     opts,
		engine:   gin.New(),
		logger:   l.With("module", "rest_server"),
		svc:      svc,
		identity: identity,
		health:   health,
	}
	s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	s.engine.Use(
		s.recovery(),
		requestID(),
		corsMiddleware(s.opts.CORSOrigins),
		tracing(),
		s.requestLogger(),
	)

	s.engine.GET("/health", s.healthCheck)

	api := s.engine.Group("/api", s.attachIdentity())
	authed := requireIdentity()

	u := api.Group("/users")
	u.POST("/register", s.registerUser)
	u.POST("/authenticate", s.authenticate)
	u.GET("", s.listUsers)
	u.GET("/current", authed, s.currentUser)
	u.GET("/:id", s.getUser)
	u.PUT("/:id", authed, s.updateUser)
	u.DELETE("/:id", authed, s.deleteUser)

	r := api.Group("/rabbits")
	r.POST("/register", authed, s.registerRabbit)
	r.GET("", s.listRabbits)
	r.GET("/:id", s.getRabbit)
	r.PUT("/:id", authed, s.updateRabbit)
	r.DELETE("/:id", authed, s.deleteRabbit)

	p := api.Group("/photos")
	p.POST("/upload", authed, s.uploadPhoto)
	p.GET("", s.listPhotos)
	p.GET("/:id", s.getPhoto)

	i := api.Group("/images")
	i.POST("/upload", authed, s.uploadImage)
	i.GET("", s.listImages)
	i.GET("/:id", s.getImage)
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		done <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-done
}

func (s *Server) healthCheck(c *gin.Context) {
	if err := s.health.PingContext(c.Request.Context()); err != nil {
		s.logger.Error(c.Request.Context(), "health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
