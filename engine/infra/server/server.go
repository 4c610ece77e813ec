package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/chemgate/chemgate/engine/auth"
	"github.com/chemgate/chemgate/engine/infra/cache"
	"github.com/chemgate/chemgate/engine/predict"
	"github.com/chemgate/chemgate/engine/results"
	"github.com/chemgate/chemgate/engine/task"
	"github.com/chemgate/chemgate/pkg/config"
	"github.com/chemgate/chemgate/pkg/logger"
	"github.com/gin-gonic/gin"
)

const serverShutdownTimeout = 5 * time.Second

// Server owns the HTTP listener and the services behind it.
type Server struct {
	config       *config.Config
	ctx          context.Context
	cancel       context.CancelFunc
	redis        *cache.Redis
	httpServer   *http.Server
	shutdownOnce sync.Once
}

// NewServer creates a server from the configuration attached to the context.
func NewServer(ctx context.Context) (*Server, error) {
	cfg := config.FromContext(ctx)
	if cfg == nil {
		return nil, fmt.Errorf("configuration missing from context; attach it with config.ContextWithConfig")
	}
	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		config: cfg,
		ctx:    serverCtx,
		cancel: cancel,
	}, nil
}

// Run connects the dependencies, starts the HTTP server and blocks until
// the context is canceled or a termination signal arrives.
func (s *Server) Run() error {
	log := logger.FromContext(s.ctx)
	defer s.Shutdown()

	redisClient, err := cache.NewRedis(s.ctx, &s.config.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect redis: %w", err)
	}
	s.redis = redisClient

	broker := task.NewBroker(redisClient, &s.config.Broker)
	awaiter := task.NewAwaiter(broker, s.config.Broker.PollInterval)
	gateway := predict.NewGateway(broker, awaiter, s.config.Broker.SyncTimeout)
	endpoints := predict.Endpoints()

	var authService *auth.Service
	if s.config.Auth.Enabled {
		authService = auth.NewService(redisClient, &s.config.Auth, s.config.Broker.KeyPrefix)
	}

	router := s.buildRouter(&routerDeps{
		broker:      broker,
		gateway:     gateway,
		endpoints:   endpoints,
		authService: authService,
		results:     results.NewService(broker),
	})

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-sigChan:
		log.Info("shutdown signal received", "signal", sig)
	case <-s.ctx.Done():
		log.Info("server context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// Shutdown releases the server's resources. Safe to call more than once.
func (s *Server) Shutdown() {
	s.shutdownOnce.Do(func() {
		if s.redis != nil {
			s.redis.Close()
		}
		s.cancel()
	})
}

type routerDeps struct {
	broker      *task.Broker
	gateway     *predict.Gateway
	endpoints   []*predict.Endpoint
	authService *auth.Service
	results     *results.Service
}

func (s *Server) buildRouter(deps *routerDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(logger.FromContext(s.ctx)))
	registerRoutes(r, deps)
	return r
}
