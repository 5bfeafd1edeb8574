package server

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Webzensify/uber-web/internal/apiclient"
	"github.com/Webzensify/uber-web/internal/authflow"
	"github.com/Webzensify/uber-web/internal/config"
	"github.com/Webzensify/uber-web/internal/handler"
	"github.com/Webzensify/uber-web/internal/middleware"
	"github.com/Webzensify/uber-web/internal/router"
	"github.com/Webzensify/uber-web/internal/session"
	"github.com/Webzensify/uber-web/internal/view"
)

func NewServer(cfg config.AppConfig) *http.Server {
	var logger *zap.Logger
	var err error
	if cfg.Env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	// --- Session store ---
	store := session.NewStore(session.NewRedisKV(cfg.RedisAddr, cfg.RedisPass), cfg.SessionTTL)

	// --- Backend API client ---
	api := apiclient.New(cfg.APIBaseURL, logger)

	// --- Auth flows ---
	flows := authflow.NewManager(api, store, logger)

	// --- Views ---
	renderer, err := view.NewRenderer(logger)
	if err != nil {
		log.Fatalf("failed to parse templates: %v", err)
	}

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(api, flows, store, renderer, logger)
	ownerHandler := handler.NewOwnerHandler(api, flows, store, renderer, logger)
	adminHandler := handler.NewAdminHandler(api, flows, store, renderer, logger)

	loader := &middleware.SessionLoader{
		Store:  store,
		Secure: cfg.CookieSecure,
		TTL:    cfg.SessionTTL,
	}

	// --- Router ---
	r := chi.NewRouter()
	r = router.SetupRoutes(r, authHandler, ownerHandler, adminHandler, loader, renderer, router.Options{
		CSRFKey:      []byte(cfg.CSRFKey),
		CookieSecure: cfg.CookieSecure,
	}).(*chi.Mux)

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}
}
