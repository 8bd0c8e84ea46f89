package webserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/talkincode/storefront/internal/app"
	"github.com/talkincode/storefront/pkg/common"
	"github.com/talkincode/storefront/pkg/metrics"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// SessionName cookie session written on login and cleared on logout
const SessionName = "storefront_session"

type Server struct {
	root   *echo.Echo
	api    *echo.Group
	auth   []echo.MiddlewareFunc
	appCtx app.AppContext
}

func New(appCtx app.AppContext) *Server {
	cfg := appCtx.Config()
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	if cfg.System.Debug {
		e.Logger.SetLevel(log.DEBUG)
	} else {
		e.Logger.SetLevel(log.WARN)
	}
	e.JSONSerializer = jsonSerializer{}
	e.HTTPErrorHandler = errorHandler

	e.Use(metrics.Middleware())
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			zap.L().Error("panic recovered",
				zap.String("namespace", "http"),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.ByteString("stack", stack))
			return err
		},
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			zap.L().Info("request",
				zap.String("namespace", "http"),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP))
			return nil
		},
	}))
	if cfg.Web.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.Web.BodyLimit))
	}
	if cfg.Web.RateLimit > 0 {
		e.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/health" || c.Path() == "/metrics"
			},
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(cfg.Web.RateLimit),
				Burst:     cfg.Web.RateBurst,
				ExpiresIn: 3 * time.Minute,
			}),
			IdentifierExtractor: func(c echo.Context) (string, error) {
				return c.RealIP(), nil
			},
			DenyHandler: func(c echo.Context, identifier string, err error) error {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too Many Attempts.")
			},
		}))
	}
	secret := common.IfEmptyStr(cfg.Auth.SessionSecret, cfg.Web.Secret)
	e.Use(session.Middleware(sessions.NewCookieStore([]byte(secret))))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(appCtxKey, appCtx)
			return next(c)
		}
	})

	s := &Server{
		root:   e,
		api:    e.Group("/v1"),
		auth:   bearerAuth([]byte(cfg.Auth.JwtSecret)),
		appCtx: appCtx,
	}
	e.GET("/health", s.health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	return s
}

// GetApp application context attached to every request
func GetApp(c echo.Context) app.AppContext {
	return c.Get(appCtxKey).(app.AppContext)
}

func (s *Server) Echo() *echo.Echo {
	return s.root
}

func (s *Server) secured(m []echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(s.auth)+len(m))
	out = append(out, s.auth...)
	return append(out, m...)
}

// ApiGET registers an authenticated GET route under /v1
func (s *Server) ApiGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.api.GET(path, h, s.secured(m)...)
}

func (s *Server) ApiPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.api.POST(path, h, s.secured(m)...)
}

func (s *Server) ApiPUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.api.PUT(path, h, s.secured(m)...)
}

func (s *Server) ApiDELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.api.DELETE(path, h, s.secured(m)...)
}

// PublicPOST registers an unauthenticated POST route under /v1
func (s *Server) PublicPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.api.POST(path, h, m...)
}

func (s *Server) health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()
	if err := s.appCtx.Ping(ctx); err != nil {
		zap.L().Warn("health check failed", zap.String("namespace", "http"), zap.Error(err))
		return Failure(c, http.StatusServiceUnavailable, "Service unavailable.", nil)
	}
	return OK(c, "Service is healthy.", map[string]interface{}{
		"appid": s.appCtx.Config().System.Appid,
		"time":  time.Now().Format(time.RFC3339),
	})
}

func (s *Server) Start() error {
	cfg := s.appCtx.Config().Web
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	zap.S().Infof("Prepare to start the web server on %s", addr)
	err := s.root.Start(addr)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.root.Shutdown(ctx)
}
