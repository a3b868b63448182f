package pkg

import (
	"context"
	"errors"
	"net/http"
	"time"

	"SchoolManager/internal/auth"
	"SchoolManager/internal/class"
	"SchoolManager/internal/config"
	"SchoolManager/internal/faculty"
	"SchoolManager/internal/metrics"
	"SchoolManager/internal/role"
	"SchoolManager/internal/student"
	"SchoolManager/internal/validation"
	"SchoolManager/pkg/middleware"

	"github.com/casbin/casbin/v2"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// CoreModules provides configuration, logging and storage. The CLI commands
// that do not serve HTTP use it on its own.
var CoreModules = fx.Module("core",
	fx.Provide(config.Load),
	fx.Provide(config.NewLogger),
	fx.Provide(config.NewMongoDBClient),
	fx.Provide(metrics.New),
	fx.Provide(
		fx.Annotate(auth.NewUserRepository, fx.As(new(auth.Store)), fx.As(new(middleware.UserFinder)), fx.As(new(student.UserFinder))),
	),
	fx.Provide(auth.NewTokenIssuer),
	fx.Provide(auth.NewUserService),
)

var EchoModules = fx.Module("echo",
	fx.Provide(NewEchoServer),
	fx.Provide(validation.New),
	fx.Provide(middleware.NewDefaultEnforcer),
	fx.Provide(auth.NewAuthHandler),

	fx.Provide(fx.Annotate(role.NewRoleRepository, fx.As(new(role.Store)), fx.As(new(role.Finder)))),
	fx.Provide(role.NewRoleService),
	fx.Provide(role.NewRoleHandler),

	fx.Provide(fx.Annotate(faculty.NewFacultyRepository, fx.As(new(faculty.Store)))),
	fx.Provide(newTxRunner),
	fx.Provide(faculty.NewRegistrar),
	fx.Provide(faculty.NewFacultyService),
	fx.Provide(faculty.NewFacultyHandler),

	fx.Provide(fx.Annotate(class.NewClassRepository, fx.As(new(class.Store)))),
	fx.Provide(newTeacherChecker),
	fx.Provide(class.NewClassService),
	fx.Provide(class.NewClassHandler),

	fx.Provide(fx.Annotate(student.NewStudentRepository, fx.As(new(student.Store)))),
	fx.Provide(student.NewStudentService),
	fx.Provide(student.NewStudentHandler),

	fx.Invoke(RegisterRoutes),
)

func newTxRunner(c *config.MongoDBClient) faculty.TxRunner { return c }

func newTeacherChecker(s *faculty.FacultyService) class.TeacherChecker { return s }

func NewEchoServer(lc fx.Lifecycle, cfg *config.AppConfig, logger *zap.Logger, v *validation.Validator) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = v

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.PATCH, echo.DELETE, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("id", v.RequestID),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	}))

	addr := ":" + cfg.Port
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("server listening", zap.String("addr", addr))
			go func() {
				if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal("failed to start the server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("shutting down the server")
			return e.Shutdown(ctx)
		},
	})
	return e
}

type Handlers struct {
	fx.In

	Auth    *auth.AuthHandler
	Role    *role.RoleHandler
	Faculty *faculty.FacultyHandler
	Class   *class.ClassHandler
	Student *student.StudentHandler
}

func RegisterRoutes(
	e *echo.Echo,
	h Handlers,
	issuer *auth.TokenIssuer,
	users middleware.UserFinder,
	enforcer *casbin.Enforcer,
	db *config.MongoDBClient,
	m *metrics.Metrics,
	logger *zap.Logger,
) {
	authenticate := middleware.Authenticate(issuer, users, m, logger)

	e.POST("/signup", h.Auth.Signup)
	e.POST("/login", h.Auth.Login)
	e.POST("/student/login", h.Student.Login)
	e.POST("/faculty/login", h.Faculty.Login)
	e.POST("/change-password", h.Auth.ChangePassword, authenticate)
	e.POST("/faculty/change-password", h.Faculty.ChangePassword, authenticate, middleware.RequireRole(auth.RoleFaculty))

	e.GET("/healthz", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := db.Client.Ping(ctx, nil); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	api := e.Group("/api", authenticate, middleware.Authorize(enforcer, logger))
	api.GET("/profile", h.Auth.Profile)

	api.GET("/users", h.Auth.ListUsers)
	api.GET("/users/:id", h.Auth.GetUser)
	api.PUT("/users/:id", h.Auth.UpdateUser)

	api.POST("/faculty/add", h.Faculty.Add)
	api.GET("/faculty", h.Faculty.List)
	api.GET("/faculty/:id", h.Faculty.Get)
	api.PUT("/faculty/:id", h.Faculty.Update)
	api.PATCH("/faculty/:id/status", h.Faculty.SetStatus)

	api.POST("/roles", h.Role.Create)
	api.GET("/roles", h.Role.List)
	api.GET("/roles/:id", h.Role.Get)
	api.PUT("/roles/:id", h.Role.Update)
	api.PATCH("/roles/:id/status", h.Role.SetStatus)

	api.POST("/classes", h.Class.Create)
	api.GET("/classes", h.Class.List)
	api.GET("/classes/:id", h.Class.Get)
	api.PUT("/classes/:id", h.Class.Update)
	api.DELETE("/classes/:id", h.Class.Delete)

	api.POST("/students", h.Student.Create)
	api.GET("/students", h.Student.List)
	api.GET("/students/:id", h.Student.Get)
	api.PUT("/students/:id", h.Student.Update)
	api.PATCH("/students/:id/status", h.Student.SetStatus)
}
