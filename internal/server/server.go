package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "natgpt/docs"
	"natgpt/internal/ai"
	"natgpt/internal/ai/speech"
	"natgpt/internal/config"
	"natgpt/internal/handler"
	"natgpt/internal/pkg/jwt"
	"natgpt/internal/pkg/storagefactory"
	"natgpt/internal/realtime"
	"natgpt/internal/repository"
	"natgpt/internal/server/middleware"
	"natgpt/internal/service"
)

// Deps are the components the routes are built from.
type Deps struct {
	Repo        repository.ConversationRepository
	AI          service.AIService
	Policy      service.ConversationPolicy
	Transcriber speech.Transcriber
	Synthesizer speech.Synthesizer
	Verifier    *jwt.Verifier
	Hub         *realtime.Hub
	Checks      map[string]handler.CheckFunc
}

// Server HTTP server.
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	deps   Deps
	infra  *Infra
}

// New opens the infrastructure described by cfg and builds the server.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	infra, err := OpenInfra(ctx, cfg)
	if err != nil {
		return nil, err
	}

	aiSvc, err := ai.New(ctx, &cfg.AI, cfg.Chat.TitleMaxLength)
	if err != nil {
		_ = infra.Close(ctx)
		return nil, err
	}
	infra.Checks["ai"] = func(ctx context.Context) error {
		if !aiSvc.IsAvailable(ctx) {
			return service.ErrAIUnavailable
		}
		return nil
	}

	deps := Deps{
		Repo:   infra.Repo,
		AI:     aiSvc,
		Policy: NewPolicy(&cfg.Chat),
		Hub:    realtime.NewHub(),
		Checks: infra.Checks,
	}

	if cfg.Auth.JWTSecret != "" {
		deps.Verifier = jwt.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	} else {
		log.Warn().Msg("auth.jwt_secret not configured, all callers are anonymous")
	}

	if sc, err := speech.NewClient(&cfg.Speech); err != nil {
		log.Warn().Err(err).Msg("speech endpoints disabled")
	} else {
		deps.Transcriber = sc
		deps.Synthesizer = sc
		if cfg.Speech.CacheAudio {
			store, err := storagefactory.NewStorage(ctx, &cfg.Storage)
			if err != nil {
				log.Warn().Err(err).Msg("speech cache disabled")
			} else {
				deps.Synthesizer = speech.NewCachedSynthesizer(sc, store)
				log.Info().Str("storage", store.GetStorageType()).Msg("speech cache enabled")
			}
		}
	}

	srv := NewWithDeps(cfg, deps)
	srv.infra = infra
	return srv, nil
}

// NewWithDeps builds the server from ready components.
func NewWithDeps(cfg *config.Config, deps Deps) *Server {
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	if deps.Hub == nil {
		deps.Hub = realtime.NewHub()
	}

	srv := &Server{
		cfg:    cfg,
		engine: gin.New(),
		deps:   deps,
	}
	srv.engine.MaxMultipartMemory = 8 << 20
	srv.setupRoutes()
	return srv
}

func (s *Server) setupRoutes() {
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS(s.cfg.Server.CORSOrigins...))

	healthHandler := handler.NewHealthHandler(s.deps.Checks)
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	maxLength := s.cfg.Chat.MaxMessageLength
	convHandler := handler.NewConversationHandler(handler.ConversationUseCases{
		Create: service.NewCreateConversation(s.deps.Repo),
		List:   service.NewGetConversations(s.deps.Repo),
		Get:    service.NewGetConversation(s.deps.Repo),
		Delete: service.NewDeleteConversation(s.deps.Repo),
		Send:   service.NewSendMessage(s.deps.Repo, s.deps.AI, s.deps.Policy, maxLength),
	}, s.deps.Hub)
	completionHandler := handler.NewCompletionHandler(s.deps.AI, s.deps.Policy, ai.NewRetryPolicy(s.cfg.AI.Retry), maxLength)
	audioHandler := handler.NewAudioHandler(s.deps.Transcriber, s.deps.Synthesizer)
	eventsHandler := handler.NewEventsHandler(s.deps.Hub, nil)

	v1 := s.engine.Group("/api/v1")
	v1.Use(middleware.Auth(s.deps.Verifier, s.cfg.Auth.Required))
	{
		v1.GET("/conversations", convHandler.List)
		v1.POST("/conversations", convHandler.Create)
		v1.GET("/conversations/:id", convHandler.Get)
		v1.DELETE("/conversations/:id", convHandler.Delete)
		v1.POST("/conversations/:id/messages", convHandler.SendMessage)

		v1.GET("/chat", completionHandler.Status)
		v1.POST("/chat", completionHandler.Complete)

		v1.POST("/transcribe", audioHandler.Transcribe)
		v1.POST("/speech", audioHandler.Speech)

		v1.GET("/events", eventsHandler.Stream)
	}
}

// Run serves addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.deps.Hub.Run(hubCtx)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)

		if s.infra != nil {
			if cerr := s.infra.Close(shutdownCtx); cerr != nil {
				log.Error().Err(cerr).Msg("failed to close connections")
			}
		}
		return err
	case err := <-errCh:
		return err
	}
}

// Engine returns the gin engine (used by tests).
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Hub returns the event hub.
func (s *Server) Hub() *realtime.Hub {
	return s.deps.Hub
}
