package bi

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"time"

	"OrcaBI/api"
	"OrcaBI/internal/config"
	"OrcaBI/internal/dashboard"
	"OrcaBI/internal/logger"
	"OrcaBI/internal/serviceiface"
	"OrcaBI/internal/starschema"
)

type BIService struct {
	config map[string]interface{}
	store  *starschema.Store
	events *dashboard.SSEServer
	server *http.Server

	unsubscribe func()
}

func NewBIService(cfg map[string]interface{}, store *starschema.Store) serviceiface.Service {
	return &BIService{config: cfg, store: store}
}

func (s *BIService) Name() string {
	return "bi"
}

// Options resolves the service settings: config map first, environment
// variables on top.
type Options struct {
	Port           int
	Tokens         []string
	AllowAnonymous bool
	MaxUploadBytes int64
	PingInterval   time.Duration
}

func (s *BIService) Options() Options {
	opts := Options{
		Port:           config.Int(s.config["port"]),
		Tokens:         config.Strings(s.config["api_tokens"]),
		AllowAnonymous: config.Bool(s.config["allow_anonymous"]),
		MaxUploadBytes: int64(config.Int(s.config["max_upload_mb"])) << 20,
		PingInterval:   time.Duration(config.Int(s.config["ping_seconds"])) * time.Second,
	}
	if opts.Port == 0 {
		opts.Port = config.DefaultHTTPPort
	}
	opts.Port = config.EnvInt(config.EnvPort, opts.Port)
	if env := os.Getenv(config.EnvAPITokens); env != "" {
		opts.Tokens = api.ParseTokens(env)
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = config.MaxUploadBytes
	}
	if mb := config.EnvInt(config.EnvMaxUploadMB, 0); mb > 0 {
		opts.MaxUploadBytes = int64(mb) << 20
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = 30 * time.Second
	}
	return opts
}

func (s *BIService) Start() error {
	opts := s.Options()
	if len(opts.Tokens) == 0 && !opts.AllowAnonymous {
		log.Println("[WARN] bi: no API tokens configured, every request will be rejected")
	}

	s.events = dashboard.NewSSEServer(opts.PingInterval)
	s.unsubscribe = s.store.OnSwap(s.events.NotifySwap)

	authz := api.NewTokenAuthorizer(opts.Tokens, opts.AllowAnonymous)
	router := NewRouter(s.store, s.events, authz, opts.MaxUploadBytes)

	addr := fmt.Sprintf(":%d", opts.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bi: listen on %s: %w", addr, err)
	}
	s.server = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[ERROR] bi server failed: %v", err)
		}
	}()

	log.Printf("BI service started on %s", addr)
	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit("BI service started on " + addr)
	}
	return nil
}

func (s *BIService) Stop() error {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	if s.events != nil {
		s.events.Stop()
	}
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Println("BI service stopping")
	return s.server.Shutdown(ctx)
}
