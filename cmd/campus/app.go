package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/avolkov/campus/internal/db"
	"github.com/avolkov/campus/internal/handlers"
	"github.com/avolkov/campus/internal/logger"
	"github.com/avolkov/campus/internal/repository/postgres"
	"github.com/avolkov/campus/internal/service/auth"
	"github.com/avolkov/campus/internal/service/auth/tokencodec"
	"github.com/avolkov/campus/internal/service/mail"
	"github.com/avolkov/campus/internal/service/users"
	"github.com/avolkov/campus/internal/sessioncache"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	logger logger.Logger
	cache  *sessioncache.RedisCache
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Connect to the session cache
	cache, err := sessioncache.Connect(ctx, c.RedisAddr, c.RedisPassword)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to session cache. Err: %w", err)
	}

	// Initialize repositories and services
	userRepo := &postgres.UserRepo{DB: pool}
	userService := users.NewService(users.DefaultHasher, userRepo)

	codec, err := tokencodec.New(tokencodec.Config{
		ActivationSecret: c.ActivationSecret,
		AccessSecret:     c.AccessSecret,
		RefreshSecret:    c.RefreshSecret,
		ActivationTTL:    c.ActivationTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("error while creating token codec. Err: %w", err)
	}

	var sender mail.Sender = mail.NoOpSender{}
	if c.SMTPHost != "" {
		sender, err = mail.NewSMTPSender(mail.SMTPConfig{
			Host:     c.SMTPHost,
			Port:     c.SMTPPort,
			Username: c.SMTPUsername,
			Password: c.SMTPPassword,
			From:     c.SMTPFrom,
		})
		if err != nil {
			return nil, fmt.Errorf("error while creating mail sender. Err: %w", err)
		}
	} else {
		logger.Warn("SMTP host not set, activation mail disabled")
	}

	authService, err := auth.NewService(auth.Config{}, codec, userService, cache, sender, logger)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	mux := handlers.NewRouter(authService, authService, logger)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
		logger:     logger,
		cache:      cache,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		if err := s.cache.Close(); err != nil {
			s.logger.Error("error while closing session cache", "error", err.Error())
		}

		s.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
