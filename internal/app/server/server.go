package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
	"github.com/kalpovskii/todo/internal/app/handlers"
	"github.com/kalpovskii/todo/internal/config"
)

const apiPrefix = "/api"

type Server struct {
	http   *http.Server
	logger *log.Logger
	cfg    *config.Config
	addr   string
}

func New(cfg *config.Config, todos *handlers.TodoHandler, logger *log.Logger) *Server {
	return &Server{
		logger: logger,
		cfg:    cfg,
		http: &http.Server{
			Addr:         cfg.Addr,
			Handler:      NewRouter(cfg, todos, logger),
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
			IdleTimeout:  cfg.HTTP.IdleTimeout,
			ErrorLog:     logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel}),
		},
	}
}

// NewRouter builds the gin engine: CORS and request logging on every route,
// the static front-end for existing files, and the todo API under /api.
func NewRouter(cfg *config.Config, todos *handlers.TodoHandler, logger *log.Logger) *gin.Engine {
	gin.SetMode(cfg.Mode)

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery(), requestLogger(logger), echoRequestHeaders(), cors.New(corsConfig()))

	if isDir(cfg.StaticDir) {
		r.Use(static.Serve("/", static.LocalFile(cfg.StaticDir, false)))
	} else {
		logger.Warn("static front-end disabled", "dir", cfg.StaticDir)
	}

	todos.Register(r.Group(apiPrefix))

	r.NoMethod(handlers.MethodNotAllowed)
	r.NoRoute(handlers.NotFound)

	return r
}

// corsConfig allows every origin and method. The request origin is echoed
// back so that credentialed requests work; headers are echoed by
// echoRequestHeaders because a literal "*" does not cover credentialed
// requests.
func corsConfig() cors.Config {
	return cors.Config{
		AllowOriginFunc: func(string) bool { return true },
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
			http.MethodDelete, http.MethodHead, http.MethodOptions,
		},
		AllowCredentials: true,
		MaxAge:           10 * time.Minute,
	}
}

// echoRequestHeaders allows whatever headers a preflight asks for.
func echoRequestHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			if requested := c.GetHeader("Access-Control-Request-Headers"); requested != "" {
				c.Header("Access-Control-Allow-Headers", requested)
			}
		}
		c.Next()
	}
}

func requestLogger(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client", c.ClientIP(),
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate); len(errs) > 0 {
			logger.Error("request failed", append(fields, "err", errs.String())...)
			return
		}
		logger.Info("request", fields...)
	}
}

func isDir(dir string) bool {
	if dir == "" {
		return false
	}
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

// Start binds the listen address and serves in a background goroutine. Bind
// failures are returned directly; later serve failures arrive on the channel.
func (s *Server) Start() (<-chan error, error) {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", s.http.Addr, err)
	}
	s.addr = ln.Addr().String()
	s.logger.Info("listening", "addr", s.addr)

	errs := make(chan error, 1)
	go func() {
		if err := s.http.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()
	return errs, nil
}

// Addr is the bound address once Start has succeeded.
func (s *Server) Addr() string {
	return s.addr
}

// Stop shuts the server down, waiting up to the configured shutdown timeout.
func (s *Server) Stop(ctx context.Context) error {
	if timeout := s.cfg.HTTP.ShutdownTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.http.Shutdown(ctx)
}
