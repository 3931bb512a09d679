package app

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/eduhelx/student-panel/internal/api"
	"github.com/eduhelx/student-panel/internal/config"
	"github.com/eduhelx/student-panel/internal/delivery/httpd"
	"github.com/eduhelx/student-panel/internal/host"
	"github.com/eduhelx/student-panel/internal/state"
	"github.com/eduhelx/student-panel/internal/websocket"
)

type App struct {
	server     *http.Server
	logger     zerolog.Logger
	config     *config.Config
	channel    *websocket.Channel
	controller *state.Controller
	browser    *host.Browser

	cancel context.CancelFunc
}

func New(cfg *config.Config, log zerolog.Logger) (*App, error) {
	client := api.NewClient(cfg.Extension, log)

	channel := websocket.NewChannel(
		websocketURL(cfg),
		cfg.Websocket.ReconnectDelay,
		cfg.Websocket.HandshakeTimeout,
		log,
	)

	browser := host.NewBrowser(cfg.Extension.InitialPath)
	dialog := host.LogDialog{Logger: log}
	commands := host.LogCommands{Logger: log}

	controller := state.NewController(
		client,
		channel,
		browser,
		dialog,
		commands,
		cfg.Polling,
		log,
	)

	handler := httpd.NewHandler(controller, client, channel, log)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	handler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		server:     server,
		logger:     log,
		config:     cfg,
		channel:    channel,
		controller: controller,
		browser:    browser,
	}, nil
}

// Browser exposes the path tracker so embedders can forward file browser
// navigation into the controller.
func (a *App) Browser() *host.Browser {
	return a.browser
}

func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	go a.channel.Run(ctx)
	a.controller.Start(ctx)

	a.logger.Info().Msgf("Starting student panel on %s", a.config.Server.Address)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Shutting down student panel...")

	a.controller.Stop()
	if a.cancel != nil {
		a.cancel()
	}

	return a.server.Shutdown(ctx)
}

// websocketURL derives the push endpoint from the extension base URL unless
// an explicit override is configured.
func websocketURL(cfg *config.Config) string {
	if cfg.Websocket.URL != "" {
		return cfg.Websocket.URL
	}
	base := cfg.Extension.BaseURL
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return strings.TrimRight(base, "/") +
		"/" + strings.Trim(cfg.Extension.Namespace, "/") + "/ws"
}
