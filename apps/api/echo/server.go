package echoapi

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/walimu/core"
	"github.com/trezcool/walimu/core/content"
	"github.com/trezcool/walimu/core/profile"
	"github.com/trezcool/walimu/core/user"
	filesvc "github.com/trezcool/walimu/services/files"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		UserSvc    user.Service
		ProfileSvc profile.Service
		ContentSvc content.Service
		FileSvc    filesvc.Service
		Validate   *validator.Validate
		Translator ut.Translator

		DisableReqLogs bool
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		errs     chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:     deps,
		app:      echo.New(),
		errs:     make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.HideBanner = true
	s.app.Debug = conf.Debug

	apiJWT := middleware.JWTWithConfig(newJWTConfig(conf, apiAuthErrorHandler))
	dashJWT := middleware.JWTWithConfig(newJWTConfig(conf, dashboardAuthErrorHandler))

	// public pages
	s.app.GET("/", home)
	s.app.GET("/login", loginPage)

	// uploaded media
	s.app.Static(conf.Media.BaseURL, conf.Media.Root)

	api := s.app.Group("/api")
	registerAuthAPI(api, apiJWT, conf, s.deps.UserSvc, s.deps.Validate)
	registerPublicAPI(api, s.deps.ProfileSvc, s.deps.ContentSvc)

	// authed API; every route below requires a valid session
	authed := api.Group("", apiJWT)
	registerUserAPI(authed, conf, s.deps.UserSvc, s.deps.ProfileSvc, s.deps.Validate)
	registerProfileAPI(authed, s.deps.ProfileSvc, s.deps.Validate)
	registerContentAPI(authed, s.deps.ContentSvc, s.deps.Validate)
	registerUploadAPI(authed, s.deps.FileSvc)

	// dashboard shell; failures redirect to /login, role mismatches bounce
	// between portals
	dash := s.app.Group("/dashboard", dashJWT, dashboardRoleMiddleware)
	dash.GET("", dashboardHome)
	dash.GET("/admin", adminPortal)
	dash.GET("/teacher", teacherPortal)
}

func (s *server) Start() {
	addr := fmt.Sprintf("%s:%d", s.deps.Conf.Server.Host, s.deps.Conf.Server.Port)
	if err := s.app.Start(addr); err != nil && err != http.ErrServerClosed {
		s.errs <- err
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.errs
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Walimu API!")
}

func loginPage(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"page": "login", "next": ctx.QueryParam("next")})
}

func dashboardHome(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"page": "dashboard"})
}

func adminPortal(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"page": "admin"})
}

func teacherPortal(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"page": "teacher"})
}
