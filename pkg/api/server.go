package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/campusworks/seatwise/pkg/db"
)

type (
	// Options configures the API server
	Options struct {
		Address        string
		DisableReqLogs bool
		Database       db.Database
		Logger         *zap.Logger
	}

	// Server is the admin/dashboard HTTP surface
	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

// NewServer builds the HTTP server with all routes registered
func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	s.app.Use(middleware.Recover())

	s.app.HTTPErrorHandler = httpErrorHandler(s.opts.Logger)

	s.app.GET("/", home)

	h := &handler{database: s.opts.Database, logger: s.opts.Logger}

	v1 := s.app.Group("/v1")
	v1.POST("/batches/:id/allocation", h.runAllocation)
	v1.POST("/scoring/model", h.trainModel)
	v1.GET("/scoring/model", h.modelStatus)
	v1.GET("/students/:id/allocation", h.studentAllocation)
	v1.GET("/students/:id/recommendations", h.recommendations)
	v1.GET("/courses/:id/allocations", h.courseAllocations)
	v1.GET("/courses/:id/seat-stats", h.courseSeatStats)
	v1.GET("/batches/:id/report", h.allocationReport)
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Address)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to the Seatwise API!")
}
