package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"linechange/internal/api"
	"linechange/internal/changeover"
	"linechange/internal/config"
	"linechange/internal/exporter"
	"linechange/internal/importer"
	"linechange/internal/metrics"
	"linechange/internal/notify"
	"linechange/internal/planning"
	"linechange/internal/store"
)

// Server HTTP服务器
type Server struct {
	router    *gin.Engine
	store     *store.Store
	publisher *notify.Publisher
	metrics   *metrics.Metrics
	handler   *api.Handler
	log       *zap.Logger
}

// NewServer 创建服务器并装配依赖
func NewServer(cfg *config.AppConfig, log *zap.Logger) (*Server, error) {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("prepare data dir: %w", err)
	}

	// 初始化 SQLite Store
	st, err := store.New(filepath.Join(dataDir, "linechange.db"))
	if err != nil {
		return nil, err
	}

	s, err := newServer(cfg, st, filepath.Join(dataDir, "uploads"), log)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return s, nil
}

// newServer 使用已打开的 Store 装配（测试使用内存库）
func newServer(cfg *config.AppConfig, st *store.Store, uploadDir string, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	layout, err := cfg.PlanLayout()
	if err != nil {
		return nil, err
	}
	registry := cfg.Registry()
	m := metrics.New()

	var (
		saver     changeover.Saver = st
		publisher *notify.Publisher
	)
	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) > 0 {
		publisher = notify.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log.Named("notify"))
		saver = notify.NewSaver(st, publisher, m, log.Named("notify"))
		log.Info("changeover events enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	planner := planning.NewPlanner(layout, registry)
	obParser := changeover.NewOBParser(cfg.OBLayout(), cfg.OB.MatchThreshold)

	handler := api.NewHandler(api.Deps{
		Store:       st,
		Importer:    importer.NewCoordinator(st, planner, m, log.Named("importer")),
		Builder:     changeover.NewBuilder(obParser, nil),
		Saver:       saver,
		Metrics:     m,
		Exporter:    exporter.NewExporter(st),
		Registry:    registry,
		UploadDir:   uploadDir,
		DefaultLine: cfg.Changeover.DefaultLine,
		Log:         log.Named("api"),
	})

	s := &Server{
		router:    gin.New(),
		store:     st,
		publisher: publisher,
		metrics:   m,
		handler:   handler,
		log:       log,
	}
	s.setupRoutes()
	return s, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	s.router.Use(gin.Recovery(), s.metrics.Middleware(), s.requestLogger())

	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	s.router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	apiGroup := s.router.Group("/api")
	{
		s.handler.RegisterRoutes(apiGroup)
	}
}

// requestLogger 请求日志
func (s *Server) requestLogger() gin.HandlerFunc {
	log := s.log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

// Handler 底层 http.Handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动服务器，ctx 取消时优雅关闭
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}

// Close 释放 Store 与事件推送连接
func (s *Server) Close() error {
	var errs []error
	if s.publisher != nil {
		errs = append(errs, s.publisher.Close())
	}
	errs = append(errs, s.store.Close())
	return errors.Join(errs...)
}

// GetStore 获取存储（用于测试）
func (s *Server) GetStore() *store.Store {
	return s.store
}
